// Package environment wires configuration, template composition, artifact
// upload, and stack deployment into the create, deploy, and delete actions
// exposed by the CLI. An Environment describes one deployable stack tree:
// extensions contribute config schema fragments and build hooks, event
// handlers observe the deployment, and the actions drive the lifecycle.
package environment

import (
	"fmt"
	"sort"

	"github.com/aws/aws-sdk-go-v2/aws"
	cfntypes "github.com/aws/aws-sdk-go-v2/service/cloudformation/types"

	"github.com/envstack/envstack/internal/compose"
	"github.com/envstack/envstack/internal/config"
	"github.com/envstack/envstack/internal/constants"
	"github.com/envstack/envstack/internal/deploy"
	"github.com/envstack/envstack/internal/template"
	"github.com/envstack/envstack/internal/uploader"
)

// AWSClients groups the service clients the actions call. The CLI builds
// real clients from the shared AWS config; tests inject mocks.
type AWSClients struct {
	CloudFormation deploy.CloudFormationAPI
	S3             uploader.S3API
	SNS            deploy.SNSAPI
	SQS            deploy.SQSAPI
}

// Options configures a new Environment.
type Options struct {
	// ConfigFile is the environment config path. Empty means config.json in
	// the working directory.
	ConfigFile string

	// CreateMissing writes factory-default files (config, image catalog)
	// when they do not exist instead of failing.
	CreateMissing bool

	// Prefs supplies per-user fallbacks for the template bucket and upload
	// ACL when the config leaves them empty.
	Prefs *config.Prefs

	// Clients are the AWS service clients used by the actions.
	Clients AWSClients
}

// TemplateBuilder is the optional build capability of a registered
// extension: called during CreateAction after the root template is seeded,
// it adds resources to the root or attaches child templates.
type TemplateBuilder interface {
	Build(env *Environment) error
}

// Environment drives the lifecycle of one deployable environment.
type Environment struct {
	opts Options

	cfg      config.Config
	root     *template.Template
	composer *compose.Composer

	extensions     []config.Extension
	handlers       []deploy.EventHandler
	manualBindings map[string]any
	deployParams   map[string]string
}

// New creates an Environment. Extensions and event handlers are registered
// after construction; the config loads on first use or via LoadConfig.
func New(opts Options) *Environment {
	if opts.ConfigFile == "" {
		opts.ConfigFile = constants.DefaultEnvironmentConfigFile
	}
	return &Environment{
		opts:           opts,
		manualBindings: make(map[string]any),
		deployParams:   make(map[string]string),
	}
}

// RegisterExtension adds a config handler whose schema fragment and factory
// defaults take part in config loading. Registration must happen before the
// config loads. The handler must implement both FactoryDefaults() and
// ConfigSchema(); anything else is rejected here rather than dropped.
func (e *Environment) RegisterExtension(handler any) error {
	ext, err := config.AsExtension(handler)
	if err != nil {
		return err
	}
	e.extensions = append(e.extensions, ext)
	return nil
}

// RegisterEventHandler adds a stack event handler to the deploy monitor
// chain. The handler must implement HandleStackEvent; anything else is
// rejected here rather than dropped.
func (e *Environment) RegisterEventHandler(handler any) error {
	h, err := deploy.AsEventHandler(handler)
	if err != nil {
		return err
	}
	e.handlers = append(e.handlers, h)
	return nil
}

// SetManualBinding sets a composition-global parameter override. Manual
// bindings take precedence over every other binding rule for all children.
func (e *Environment) SetManualBinding(name string, value any) {
	e.manualBindings[name] = value
	if e.composer != nil {
		e.composer.SetManualBinding(name, value)
	}
}

// SetDeployParameter sets a runtime stack parameter passed to the deploy
// calls alongside the template body.
func (e *Environment) SetDeployParameter(name, value string) {
	e.deployParams[name] = value
}

// LoadConfig reads and validates the environment config file, merging in
// the schema fragments and defaults of every registered extension.
func (e *Environment) LoadConfig() error {
	cfg, err := config.Load(e.opts.ConfigFile, e.opts.CreateMissing, e.extensions)
	if err != nil {
		return err
	}
	e.cfg = cfg
	return nil
}

// LoadConfigFrom validates and installs an in-memory config, bypassing the
// config file entirely.
func (e *Environment) LoadConfigFrom(cfg config.Config) error {
	if err := config.Validate(config.ExtendedSchema(config.BaseSchema(), e.extensions), cfg); err != nil {
		return err
	}
	e.cfg = cfg
	return nil
}

// Config returns the loaded configuration, nil before loading.
func (e *Environment) Config() config.Config {
	return e.cfg
}

// Root returns the root template, nil before CreateAction initializes it.
func (e *Environment) Root() *template.Template {
	return e.root
}

// AttachChild composes a child template into the root. Callable from an
// extension build hook or after CreateAction has initialized the template.
func (e *Environment) AttachChild(child *template.Template, attach compose.AttachOptions) (*compose.Artifact, error) {
	if e.composer == nil {
		return nil, fmt.Errorf("root template not initialized, children attach during CreateAction")
	}
	return e.composer.AttachChild(child, attach)
}

func (e *Environment) ensureConfigLoaded() error {
	if e.cfg != nil {
		return nil
	}
	return e.LoadConfig()
}

// settings are the effective values the actions run with, resolved from the
// loaded config with per-user preference fallbacks applied.
type settings struct {
	environmentName string
	outputFile      string
	printDebug      bool
	description     string
	ec2KeyDefault   string
	timeoutMinutes  int
	templatePrefix  string
	templateBucket  string
	uploadACL       string
	utilityBucket   string
	azCount         int
	subnetTypes     []string
}

func (e *Environment) settings() settings {
	s := settings{
		environmentName: e.cfg.String("global", "environment_name", constants.ProjectName),
		outputFile:      e.cfg.String("global", "output", "environment.template"),
		printDebug:      e.cfg.Bool("global", "print_debug", false),
		description:     e.cfg.String("template", "description", "No Description Specified"),
		ec2KeyDefault:   e.cfg.String("template", "ec2_key_default", template.DefaultEC2KeyName),
		timeoutMinutes:  e.cfg.Int("template", "timeout_in_minutes", constants.StackCreateTimeoutMinutes),
		templatePrefix:  e.cfg.String("template", "s3_template_prefix", constants.TemplateOutputDir),
		templateBucket:  e.cfg.String("template", "template_bucket", ""),
		uploadACL:       e.cfg.String("template", "template_upload_acl", ""),
		utilityBucket:   e.cfg.String("template", "utility_bucket", ""),
		azCount:         e.cfg.Int("network", "az_count", 2),
		subnetTypes:     e.cfg.Strings("network", "subnet_types"),
	}
	if e.opts.Prefs != nil {
		if s.templateBucket == "" {
			s.templateBucket = e.opts.Prefs.TemplateBucket
		}
		if s.uploadACL == "" {
			s.uploadACL = e.opts.Prefs.TemplateUploadACL
		}
	}
	return s
}

// stackParameters converts the deploy parameter bindings into the
// CloudFormation parameter shape, sorted by key.
func (e *Environment) stackParameters() []cfntypes.Parameter {
	if len(e.deployParams) == 0 {
		return nil
	}

	names := make([]string, 0, len(e.deployParams))
	for name := range e.deployParams {
		names = append(names, name)
	}
	sort.Strings(names)

	params := make([]cfntypes.Parameter, 0, len(names))
	for _, name := range names {
		params = append(params, cfntypes.Parameter{
			ParameterKey:   aws.String(name),
			ParameterValue: aws.String(e.deployParams[name]),
		})
	}
	return params
}
