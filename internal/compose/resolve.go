package compose

import (
	"fmt"
	"strings"

	apperrors "github.com/envstack/envstack/internal/errors"
	"github.com/envstack/envstack/internal/template"
)

// BindingSources holds the namespaces consulted when resolving a child
// template's parameters, in precedence order: manual overrides, the parent
// template's parameters and resources, and the sibling output registry.
type BindingSources struct {
	Manual   map[string]any
	Parent   *template.Template
	Registry *OutputRegistry
}

// ResolveBindings computes the stack parameter map for a child template. For
// every parameter the child declares, the first applicable rule wins:
//
//  1. a manual override keyed by parameter name
//  2. availabilityZone<N> resolves to the AvailabilityZone attribute of
//     parent resource privateSubnet<N>
//  3. a parent parameter of identical name resolves to a Ref
//  4. a parent resource of identical name resolves to a Ref
//  5. a recorded sibling output of identical name resolves to a GetAtt on
//     the producing stack's Outputs, plus a DependsOn edge returned to the
//     caller so the producer deploys first
//  6. otherwise the declaration is copied onto the parent and the binding
//     becomes a Ref to that new parent parameter
//
// Parameters are visited in sorted name order so repeated attachments stay
// deterministic. The returned slice carries the rule 5 dependency edges.
func ResolveBindings(child *template.Template, src BindingSources) (map[string]any, []string, error) {
	params := make(map[string]any, len(child.Parameters))
	var dependsOn []string

	selfStack := StackResourceName(child.Name())

	for _, name := range child.ParameterNames() {
		if value, ok := src.Manual[name]; ok {
			params[name] = value
			continue
		}

		if ref, ok := azSubnetAttr(name); ok {
			params[name] = ref
			continue
		}

		if src.Parent.HasParameter(name) {
			params[name] = template.Ref(name)
			continue
		}

		if src.Parent.HasResource(name) {
			params[name] = template.Ref(name)
			continue
		}

		if producer, ok := src.Registry.Producer(name); ok && producer != selfStack {
			params[name] = template.GetAtt(producer, "Outputs."+name)
			if !contains(dependsOn, producer) {
				dependsOn = append(dependsOn, producer)
			}
			continue
		}

		declaration, ok := child.Parameter(name)
		if !ok || declaration.Type == "" {
			return nil, nil, apperrors.NewBindingError(name,
				fmt.Sprintf("parameter %s of template %s has no type and cannot be copied to the parent", name, child.Name()))
		}
		src.Parent.EnsureParameter(name, declaration)
		params[name] = template.Ref(name)
	}

	return params, dependsOn, nil
}

// azSubnetAttr maps a parameter named availabilityZone<N> to the
// AvailabilityZone attribute of the parent's privateSubnet<N> resource. Names
// without a numeric index fall through to the remaining rules.
func azSubnetAttr(name string) (map[string]any, bool) {
	const prefix = "availabilityZone"
	if !strings.HasPrefix(name, prefix) {
		return nil, false
	}
	index := strings.TrimPrefix(name, prefix)
	if index == "" {
		return nil, false
	}
	for _, r := range index {
		if r < '0' || r > '9' {
			return nil, false
		}
	}
	return template.GetAtt("privateSubnet"+index, "AvailabilityZone"), true
}
