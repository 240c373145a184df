package compose

import (
	"fmt"
	"time"

	"github.com/envstack/envstack/internal/catalog"
	"github.com/envstack/envstack/internal/constants"
	"github.com/envstack/envstack/internal/template"
)

// Artifact is a rendered child template queued for upload to the template
// bucket. Key and URL are computed at attach time so the stack resource can
// reference the object before the upload runs.
type Artifact struct {
	TemplateName string
	Key          string
	URL          string
	Body         []byte
}

// Options configures a Composer for one environment.
type Options struct {
	// SubnetTypes and AZCount drive the common parameters declared on every
	// child (network.subnet_types and network.az_count config values).
	SubnetTypes []string
	AZCount     int

	// EC2KeyDefault is the default key pair name for the ec2Key parameter.
	EC2KeyDefault string

	// StackTimeoutMinutes bounds each nested stack's creation time.
	StackTimeoutMinutes int

	// TemplatePrefix and TemplateBucket locate uploaded child templates.
	TemplatePrefix string
	TemplateBucket string

	// Catalog, when set, is merged into every child's RegionMap mapping.
	Catalog catalog.ImageCatalog
}

// AttachOptions carries per-attachment inputs.
type AttachOptions struct {
	// DependsOn lists stack resources that must complete before this child.
	DependsOn []string

	// BuildHook runs after the common parameters and region mapping are
	// declared and before bindings resolve, letting the caller finish the
	// child's resource graph.
	BuildHook func(*template.Template) error
}

// Composer owns the root template's composition state: the sibling output
// registry, the composition-global manual bindings, and the queue of
// rendered child artifacts.
type Composer struct {
	root      *template.Template
	registry  *OutputRegistry
	manual    map[string]any
	opts      Options
	artifacts []Artifact

	now func() time.Time
}

// NewComposer builds a Composer around the given root template.
func NewComposer(root *template.Template, opts Options) *Composer {
	if opts.StackTimeoutMinutes <= 0 {
		opts.StackTimeoutMinutes = constants.StackCreateTimeoutMinutes
	}
	return &Composer{
		root:     root,
		registry: NewOutputRegistry(),
		manual:   make(map[string]any),
		opts:     opts,
		now:      time.Now,
	}
}

// Root returns the root template under composition.
func (c *Composer) Root() *template.Template {
	return c.root
}

// Registry returns the sibling output registry.
func (c *Composer) Registry() *OutputRegistry {
	return c.registry
}

// SetManualBinding installs a composition-global override for a parameter
// name. Manual bindings take precedence over every other binding source.
func (c *Composer) SetManualBinding(name string, value any) {
	c.manual[name] = value
}

// ManualBindings returns the live manual binding map.
func (c *Composer) ManualBindings() map[string]any {
	return c.manual
}

// AttachChild wires a child template into the root: declares the common
// parameters and region mapping on the child, runs the build hook, resolves
// every child parameter to a binding, adds the <name>Stack resource to the
// root, records the child's outputs, and queues the rendered body for
// upload.
//
// Attaching the same child twice re-renders and re-queues it but does not
// duplicate pass-through parameters on the root.
func (c *Composer) AttachChild(child *template.Template, attach AttachOptions) (*Artifact, error) {
	child.AddCommonParameters(c.opts.SubnetTypes, c.opts.AZCount)
	child.EnsureParameter("ec2Key", template.EC2KeyParameter(c.opts.EC2KeyDefault))
	if c.opts.Catalog != nil {
		c.opts.Catalog.Apply(child)
	}

	if attach.BuildHook != nil {
		if err := attach.BuildHook(child); err != nil {
			return nil, fmt.Errorf("build hook for template %s: %w", child.Name(), err)
		}
	}

	params, ruleDeps, err := ResolveBindings(child, BindingSources{
		Manual:   c.manual,
		Parent:   c.root,
		Registry: c.registry,
	})
	if err != nil {
		return nil, err
	}

	body, err := child.Render()
	if err != nil {
		return nil, fmt.Errorf("rendering template %s: %w", child.Name(), err)
	}

	key := fmt.Sprintf("%s/%s.%d.template", c.opts.TemplatePrefix, child.Name(), c.now().Unix())
	artifact := Artifact{
		TemplateName: child.Name(),
		Key:          key,
		URL:          fmt.Sprintf("https://%s.s3.amazonaws.com/%s", c.opts.TemplateBucket, key),
		Body:         body,
	}

	dependsOn := mergeDependsOn(attach.DependsOn, ruleDeps)
	c.root.AddResource(StackResourceName(child.Name()),
		template.NewStackResource(artifact.URL, params, c.opts.StackTimeoutMinutes, dependsOn))

	c.registry.Record(child.Name(), child.OutputNames())
	c.artifacts = append(c.artifacts, artifact)

	return &artifact, nil
}

// Artifacts returns the queued child template artifacts in attach order.
func (c *Composer) Artifacts() []Artifact {
	out := make([]Artifact, len(c.artifacts))
	copy(out, c.artifacts)
	return out
}

// mergeDependsOn concatenates caller edges and rule edges, dropping
// duplicates while preserving order.
func mergeDependsOn(callerDeps, ruleDeps []string) []string {
	var merged []string
	for _, dep := range append(append([]string{}, callerDeps...), ruleDeps...) {
		if dep != "" && !contains(merged, dep) {
			merged = append(merged, dep)
		}
	}
	return merged
}
