// Package compose attaches child templates to a root template, resolving
// every parameter a child declares to a value source with a fixed precedence
// chain and recording child outputs for later attachments to reference.
package compose

import "sort"

// StackResourceName returns the logical name of the stack resource that
// deploys the named child template.
func StackResourceName(childName string) string {
	return childName + "Stack"
}

// OutputRegistry records which output names each attached child declares and
// which stack resource produces each output. Later attachments bind
// parameters against recorded sibling outputs by name.
type OutputRegistry struct {
	outputs   map[string][]string
	producers map[string]string
}

// NewOutputRegistry returns an empty registry.
func NewOutputRegistry() *OutputRegistry {
	return &OutputRegistry{
		outputs:   make(map[string][]string),
		producers: make(map[string]string),
	}
}

// Record notes the outputs a child declares. Repeated recording of the same
// child is a no-op for names already present, and the first producer of an
// output name keeps it.
func (r *OutputRegistry) Record(childName string, outputNames []string) {
	recorded := r.outputs[childName]
	for _, name := range outputNames {
		if !contains(recorded, name) {
			recorded = append(recorded, name)
		}
		if _, taken := r.producers[name]; !taken {
			r.producers[name] = StackResourceName(childName)
		}
	}
	sort.Strings(recorded)
	r.outputs[childName] = recorded
}

// Producer returns the stack resource recorded as producing the named
// output.
func (r *OutputRegistry) Producer(outputName string) (string, bool) {
	stack, ok := r.producers[outputName]
	return stack, ok
}

// Outputs returns the output names recorded for a child.
func (r *OutputRegistry) Outputs(childName string) []string {
	recorded := r.outputs[childName]
	out := make([]string, len(recorded))
	copy(out, recorded)
	return out
}

// Children returns the recorded child names in sorted order.
func (r *OutputRegistry) Children() []string {
	names := make([]string, 0, len(r.outputs))
	for name := range r.outputs {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func contains(list []string, target string) bool {
	for _, item := range list {
		if item == target {
			return true
		}
	}
	return false
}
