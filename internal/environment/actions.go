package environment

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/envstack/envstack/internal/catalog"
	"github.com/envstack/envstack/internal/compose"
	"github.com/envstack/envstack/internal/constants"
	"github.com/envstack/envstack/internal/deploy"
	"github.com/envstack/envstack/internal/output"
	"github.com/envstack/envstack/internal/template"
	"github.com/envstack/envstack/internal/uploader"
)

// CreateAction renders the environment: it seeds the root template from the
// template config section, runs every extension build hook, writes the
// rendered root into the templates directory, and uploads the queued child
// templates.
func (e *Environment) CreateAction(ctx context.Context) error {
	if err := e.ensureConfigLoaded(); err != nil {
		return err
	}

	if err := e.initializeTemplate(); err != nil {
		return err
	}

	for _, ext := range e.extensions {
		builder, ok := ext.(TemplateBuilder)
		if !ok {
			continue
		}
		if err := builder.Build(e); err != nil {
			return fmt.Errorf("extension build failed: %w", err)
		}
	}

	path, err := e.writeRootTemplate()
	if err != nil {
		return err
	}
	output.Successf("Wrote root template to %s", path)

	return e.uploadArtifacts(ctx)
}

// DeployAction deploys the root template rendered by a previous
// CreateAction. When event handlers are registered it opens a notification
// session first so no stack events are lost, then issues the
// update-or-create and monitors events until the stack reaches a terminal
// state, the handler chain drains, or the poll ceiling elapses. The session
// is torn down on every exit path, interrupts included.
func (e *Environment) DeployAction(ctx context.Context) error {
	if err := e.ensureConfigLoaded(); err != nil {
		return err
	}

	s := e.settings()
	body, err := e.loadRootTemplate(s.outputFile)
	if err != nil {
		return err
	}

	var session *deploy.Session
	if len(e.handlers) > 0 {
		session, err = deploy.OpenSession(ctx, e.opts.Clients.SNS, e.opts.Clients.SQS, s.environmentName)
		if err != nil {
			return err
		}
		defer func() {
			if cerr := session.Close(context.WithoutCancel(ctx)); cerr != nil {
				slog.Warn("Failed to tear down notification session", "error", cerr)
			}
		}()
	}

	var topicARN string
	if session != nil {
		topicARN = session.TopicARN
	}

	output.Infof("Deploying stack %s", s.environmentName)
	result, err := deploy.NewDeployer(e.opts.Clients.CloudFormation).
		EnsureDeployed(ctx, s.environmentName, body, e.stackParameters(), topicARN)
	if err != nil {
		return err
	}

	if result.NoChanges {
		output.Successf("Stack %s is already up to date", s.environmentName)
		return nil
	}

	operation := strings.ToLower(result.OperationType)
	if session == nil {
		output.Successf("Stack %s %s started", s.environmentName, operation)
		return nil
	}
	output.Infof("Stack %s started, monitoring stack events", operation)

	state, err := deploy.NewMonitor(e.opts.Clients.SQS, e.handlers).
		Run(ctx, session.QueueURL, s.environmentName)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			output.Warningf("Interrupted, tearing down stack monitor")
		}
		return err
	}

	switch state {
	case deploy.StateTerminated:
		output.Infof("Stack %s reached a terminal state", s.environmentName)
	case deploy.StateTimedOut:
		output.Warningf("Monitor timed out before stack %s reached a terminal state", s.environmentName)
	case deploy.StateDraining:
		output.Infof("All stack event handlers satisfied, monitoring stopped")
	}
	return nil
}

// DeleteAction tears down the deployed stack named by
// global.environment_name. Deletion progress is not monitored.
func (e *Environment) DeleteAction(ctx context.Context) error {
	if err := e.ensureConfigLoaded(); err != nil {
		return err
	}

	name := e.settings().environmentName
	output.Infof("Deleting stack %s", name)
	if err := deploy.NewDeployer(e.opts.Clients.CloudFormation).Delete(ctx, name); err != nil {
		return err
	}
	output.Successf("Stack %s deletion started", name)
	return nil
}

// initializeTemplate seeds the root template and the composer from the
// loaded config.
func (e *Environment) initializeTemplate() error {
	s := e.settings()

	root := template.New(s.outputFile)
	root.Description = s.description
	root.EnsureParameter("ec2Key", template.EC2KeyParameter(s.ec2KeyDefault))
	root.AddParameter("remoteAccessLocation", template.RemoteAccessParameter())
	e.addUtilityBucket(root, s.utilityBucket)

	cat, err := catalog.Load(constants.DefaultImageCatalogFile, e.opts.CreateMissing)
	if err != nil {
		return err
	}
	cat.Apply(root)

	e.root = root
	e.composer = compose.NewComposer(root, compose.Options{
		SubnetTypes:         s.subnetTypes,
		AZCount:             s.azCount,
		EC2KeyDefault:       s.ec2KeyDefault,
		StackTimeoutMinutes: s.timeoutMinutes,
		TemplatePrefix:      s.templatePrefix,
		TemplateBucket:      s.templateBucket,
		Catalog:             cat,
	})
	for name, value := range e.manualBindings {
		e.composer.SetManualBinding(name, value)
	}
	return nil
}

// addUtilityBucket wires the shared utility and log storage bucket. A
// configured bucket name is bound as-is; otherwise the root template owns a
// new bucket and exposes it as an output. Either way children receive the
// bucket through the utilityBucket manual binding.
func (e *Environment) addUtilityBucket(root *template.Template, name string) {
	if name != "" {
		e.SetManualBinding("utilityBucket", name)
		return
	}

	root.AddResource("utilityBucket", template.Resource{
		Type:           "AWS::S3::Bucket",
		DeletionPolicy: "Retain",
		Properties: map[string]any{
			"AccessControl": "BucketOwnerFullControl",
		},
	})
	root.AddOutput("utilityBucket", template.Output{
		Description: "S3 bucket name used for utility and log storage",
		Value:       template.Ref("utilityBucket"),
	})
	e.SetManualBinding("utilityBucket", template.Ref("utilityBucket"))
}

// writeRootTemplate renders the root template into the templates directory
// under the configured output filename.
func (e *Environment) writeRootTemplate() (string, error) {
	body, err := e.root.Render()
	if err != nil {
		return "", err
	}

	if err := os.MkdirAll(constants.TemplateOutputDir, constants.OutputDirPermissions); err != nil {
		return "", fmt.Errorf("failed to create template output directory: %w", err)
	}

	path := filepath.Join(constants.TemplateOutputDir, e.settings().outputFile)
	if err := os.WriteFile(path, body, constants.OutputFilePermissions); err != nil {
		return "", fmt.Errorf("failed to write root template: %w", err)
	}
	return path, nil
}

// loadRootTemplate re-reads the rendered root template from disk. Whitespace
// runs are collapsed to single spaces before the body goes to the deploy
// calls.
func (e *Environment) loadRootTemplate(outputFile string) (string, error) {
	path := filepath.Join(constants.TemplateOutputDir, outputFile)
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return "", fmt.Errorf("template at %s not found, run create first", path)
		}
		return "", fmt.Errorf("failed to read template at %s: %w", path, err)
	}
	return string(template.CollapseWhitespace(data)), nil
}

// uploadArtifacts pushes every child template queued during composition to
// the template bucket. With print_debug set, each body is also mirrored into
// the templates directory.
func (e *Environment) uploadArtifacts(ctx context.Context) error {
	artifacts := e.composer.Artifacts()
	if len(artifacts) == 0 {
		return nil
	}

	s := e.settings()
	if s.templateBucket == "" {
		return fmt.Errorf("cannot upload %d child templates: template.template_bucket is not configured", len(artifacts))
	}

	if s.printDebug {
		if err := writeArtifactsLocally(artifacts); err != nil {
			return err
		}
	}

	up := uploader.New(e.opts.Clients.S3, s.templateBucket, s.uploadACL)
	if err := up.UploadAll(ctx, artifacts); err != nil {
		return err
	}
	output.Successf("Uploaded %d child templates to s3://%s/%s", len(artifacts), s.templateBucket, s.templatePrefix)
	return nil
}

func writeArtifactsLocally(artifacts []compose.Artifact) error {
	for _, artifact := range artifacts {
		path := filepath.Join(constants.TemplateOutputDir, artifact.TemplateName+".template")
		if err := os.WriteFile(path, artifact.Body, constants.OutputFilePermissions); err != nil {
			return fmt.Errorf("failed to write debug copy of %s: %w", artifact.TemplateName, err)
		}
	}
	return nil
}
