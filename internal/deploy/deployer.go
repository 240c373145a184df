// Package deploy issues idempotent create-or-update operations against
// CloudFormation and drives the notification polling loop that tracks a
// deployment to its terminal state.
package deploy

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/cloudformation"
	"github.com/aws/aws-sdk-go-v2/service/cloudformation/types"
	"github.com/aws/smithy-go"

	"github.com/envstack/envstack/internal/constants"
	apperrors "github.com/envstack/envstack/internal/errors"
)

// CloudFormationAPI defines the interface for CloudFormation operations.
// This interface enables mocking for unit tests.
type CloudFormationAPI interface {
	CreateStack(
		ctx context.Context,
		params *cloudformation.CreateStackInput,
		optFns ...func(*cloudformation.Options),
	) (*cloudformation.CreateStackOutput, error)
	UpdateStack(
		ctx context.Context,
		params *cloudformation.UpdateStackInput,
		optFns ...func(*cloudformation.Options),
	) (*cloudformation.UpdateStackOutput, error)
	DeleteStack(
		ctx context.Context,
		params *cloudformation.DeleteStackInput,
		optFns ...func(*cloudformation.Options),
	) (*cloudformation.DeleteStackOutput, error)
}

// Result reports what EnsureDeployed did.
type Result struct {
	StackName     string
	OperationType string
	NoChanges     bool
}

// Deployer drives stack create/update/delete calls.
type Deployer struct {
	client CloudFormationAPI
}

// NewDeployer creates a Deployer with the given client.
func NewDeployer(client CloudFormationAPI) *Deployer {
	return &Deployer{client: client}
}

// EnsureDeployed updates the named stack, falling back to a create when the
// stack does not exist yet. The fallback fires only on a distinguishable
// stack-not-found error; any other update failure surfaces immediately. A
// create-path failure is terminal. An update reporting no changes is a
// successful no-op.
//
// topicARN, when non-empty, subscribes the stack's lifecycle events to the
// notification topic on both paths.
func (d *Deployer) EnsureDeployed(ctx context.Context, stackName, templateBody string, params []types.Parameter, topicARN string) (*Result, error) {
	var notificationARNs []string
	if topicARN != "" {
		notificationARNs = append(notificationARNs, topicARN)
	}

	result := &Result{StackName: stackName, OperationType: "UPDATE"}

	slog.Info("updating stack", "stack", stackName)
	_, err := d.client.UpdateStack(ctx, &cloudformation.UpdateStackInput{
		StackName:        aws.String(stackName),
		TemplateBody:     aws.String(templateBody),
		Parameters:       params,
		NotificationARNs: notificationARNs,
		Capabilities:     []types.Capability{types.CapabilityCapabilityIam},
	})
	if err == nil {
		return result, nil
	}

	if IsNoUpdates(err) {
		result.NoChanges = true
		slog.Info("no updates are to be performed", "stack", stackName)
		return result, nil
	}

	if !IsStackNotFound(err) {
		return nil, apperrors.NewDeploymentError(stackName, "update", err)
	}

	slog.Info("stack does not exist, creating", "stack", stackName)
	result.OperationType = "CREATE"
	_, err = d.client.CreateStack(ctx, &cloudformation.CreateStackInput{
		StackName:        aws.String(stackName),
		TemplateBody:     aws.String(templateBody),
		Parameters:       params,
		NotificationARNs: notificationARNs,
		Capabilities:     []types.Capability{types.CapabilityCapabilityIam},
		DisableRollback:  aws.Bool(true),
		TimeoutInMinutes: aws.Int32(constants.StackCreateTimeoutMinutes),
		Tags: []types.Tag{
			{
				Key:   aws.String("ManagedBy"),
				Value: aws.String(constants.ProjectName),
			},
		},
	})
	if err != nil {
		return nil, apperrors.NewDeploymentError(stackName, "create", err)
	}

	return result, nil
}

// Delete removes the named stack.
func (d *Deployer) Delete(ctx context.Context, stackName string) error {
	_, err := d.client.DeleteStack(ctx, &cloudformation.DeleteStackInput{
		StackName: aws.String(stackName),
	})
	if err != nil {
		return apperrors.NewDeploymentError(stackName, "delete", err)
	}
	return nil
}

// IsStackNotFound reports whether err is CloudFormation's answer for a stack
// that does not exist. The service reports it as a ValidationError whose
// message names the missing stack.
func IsStackNotFound(err error) bool {
	var apiErr smithy.APIError
	if !errors.As(err, &apiErr) {
		return false
	}
	return apiErr.ErrorCode() == "ValidationError" &&
		strings.Contains(apiErr.ErrorMessage(), "does not exist")
}

// IsNoUpdates reports whether err is CloudFormation's answer for an update
// that would change nothing.
func IsNoUpdates(err error) bool {
	var apiErr smithy.APIError
	if !errors.As(err, &apiErr) {
		return false
	}
	return apiErr.ErrorCode() == "ValidationError" &&
		strings.Contains(apiErr.ErrorMessage(), "No updates are to be performed")
}
