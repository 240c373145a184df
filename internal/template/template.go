// Package template models CloudFormation templates as an in-memory graph of
// parameters, resources, mappings, and outputs, and renders them to the
// canonical JSON document format.
package template

import (
	"fmt"
	"sort"
)

// Parameter is a template parameter declaration.
type Parameter struct {
	Type                  string `json:"Type"`
	Default               any    `json:"Default,omitempty"`
	Description           string `json:"Description,omitempty"`
	AllowedPattern        string `json:"AllowedPattern,omitempty"`
	MinLength             int    `json:"MinLength,omitempty"`
	MaxLength             int    `json:"MaxLength,omitempty"`
	ConstraintDescription string `json:"ConstraintDescription,omitempty"`
	NoEcho                bool   `json:"NoEcho,omitempty"`
}

// Resource is a template resource declaration.
type Resource struct {
	Type           string         `json:"Type"`
	Properties     map[string]any `json:"Properties,omitempty"`
	DependsOn      []string       `json:"DependsOn,omitempty"`
	DeletionPolicy string         `json:"DeletionPolicy,omitempty"`
}

// Output is a template output declaration.
type Output struct {
	Description string `json:"Description,omitempty"`
	Value       any    `json:"Value"`
}

// Mapping is a two-level lookup table, e.g. region to AMI id.
type Mapping map[string]map[string]any

// Template is a single renderable CloudFormation template. A root template
// owns the composition graph; child templates are rendered and uploaded as
// separate artifacts linked to the root via a stack resource.
type Template struct {
	name        string
	Description string
	Parameters  map[string]Parameter
	Resources   map[string]Resource
	Outputs     map[string]Output
	Mappings    map[string]Mapping
}

// New creates a template with the given name. All collections are initialized
// per instance so templates never share state.
func New(name string) *Template {
	return &Template{
		name:       name,
		Parameters: make(map[string]Parameter),
		Resources:  make(map[string]Resource),
		Outputs:    make(map[string]Output),
		Mappings:   make(map[string]Mapping),
	}
}

// Name returns the template's name, unique within a composition graph.
func (t *Template) Name() string {
	return t.name
}

// AddParameter declares a parameter, overwriting any existing declaration.
func (t *Template) AddParameter(name string, p Parameter) {
	t.Parameters[name] = p
}

// EnsureParameter declares a parameter only if it is not already declared and
// returns the effective declaration. Repeated calls with the same name leave
// the first declaration in place.
func (t *Template) EnsureParameter(name string, p Parameter) Parameter {
	if existing, ok := t.Parameters[name]; ok {
		return existing
	}
	t.Parameters[name] = p
	return p
}

// Parameter returns the declaration for name.
func (t *Template) Parameter(name string) (Parameter, bool) {
	p, ok := t.Parameters[name]
	return p, ok
}

// HasParameter reports whether name is declared as a parameter.
func (t *Template) HasParameter(name string) bool {
	_, ok := t.Parameters[name]
	return ok
}

// HasResource reports whether name is declared as a resource.
func (t *Template) HasResource(name string) bool {
	_, ok := t.Resources[name]
	return ok
}

// ParameterNames returns all declared parameter names in sorted order so
// callers iterate deterministically.
func (t *Template) ParameterNames() []string {
	names := make([]string, 0, len(t.Parameters))
	for name := range t.Parameters {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// AddResource declares a resource, overwriting any existing declaration.
func (t *Template) AddResource(name string, r Resource) {
	t.Resources[name] = r
}

// AddOutput declares an output, overwriting any existing declaration.
func (t *Template) AddOutput(name string, o Output) {
	t.Outputs[name] = o
}

// OutputNames returns all declared output names in sorted order.
func (t *Template) OutputNames() []string {
	names := make([]string, 0, len(t.Outputs))
	for name := range t.Outputs {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// AddMapping installs a lookup table under the given name.
func (t *Template) AddMapping(name string, m Mapping) {
	t.Mappings[name] = m
}

// RegionMapName is the mapping templates use to look up image ids by region.
const RegionMapName = "RegionMap"

// AddRegionMapping merges a region-to-image-id table into the template's
// RegionMap mapping. Existing regions gain or overwrite keys rather than
// being replaced wholesale.
func (t *Template) AddRegionMapping(table map[string]map[string]any) {
	existing, ok := t.Mappings[RegionMapName]
	if !ok {
		existing = Mapping{}
		t.Mappings[RegionMapName] = existing
	}
	for region, values := range table {
		entry, ok := existing[region]
		if !ok {
			entry = map[string]any{}
			existing[region] = entry
		}
		for key, value := range values {
			entry[key] = value
		}
	}
}

// AddCommonParameters declares the parameters every child template receives
// from its parent: VPC identity, the shared security group, the utility
// bucket, and the indexed availability zone and subnet ids.
func (t *Template) AddCommonParameters(subnetTypes []string, azCount int) {
	t.EnsureParameter("vpcId", Parameter{
		Type:        "String",
		Description: "Resource id of the VPC this stack is deployed into",
	})
	t.EnsureParameter("vpcCidr", Parameter{
		Type:        "String",
		Description: "CIDR block claimed by the whole VPC",
	})
	t.EnsureParameter("commonSecurityGroup", Parameter{
		Type:        "String",
		Description: "Security group identifier for commonly allowed ports",
	})
	t.EnsureParameter("utilityBucket", Parameter{
		Type:        "String",
		Description: "S3 bucket name used for utility and log storage",
	})

	for i := 0; i < azCount; i++ {
		t.EnsureParameter(fmt.Sprintf("availabilityZone%d", i), Parameter{
			Type:        "String",
			Description: "Name of an availability zone the VPC is deployed to, by index",
		})
		for _, subnetType := range subnetTypes {
			t.EnsureParameter(fmt.Sprintf("%sSubnet%d", subnetType, i), Parameter{
				Type:        "String",
				Description: "Subnet id by classification and index",
			})
		}
	}
}

// NewStackResource builds the nested stack resource that attaches a child
// template at the given S3 URL to its parent.
func NewStackResource(templateURL string, params map[string]any, timeoutInMinutes int, dependsOn []string) Resource {
	return Resource{
		Type: "AWS::CloudFormation::Stack",
		Properties: map[string]any{
			"TemplateURL":      templateURL,
			"Parameters":       params,
			"TimeoutInMinutes": timeoutInMinutes,
		},
		DependsOn: dependsOn,
	}
}
