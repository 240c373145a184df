package deploy

import (
	"context"
	"errors"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/cloudformation"
	"github.com/aws/aws-sdk-go-v2/service/cloudformation/types"
	"github.com/aws/smithy-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/envstack/envstack/internal/errors"
)

type mockCloudFormationClient struct {
	createStackFunc func(ctx context.Context, params *cloudformation.CreateStackInput, optFns ...func(*cloudformation.Options)) (*cloudformation.CreateStackOutput, error)
	updateStackFunc func(ctx context.Context, params *cloudformation.UpdateStackInput, optFns ...func(*cloudformation.Options)) (*cloudformation.UpdateStackOutput, error)
	deleteStackFunc func(ctx context.Context, params *cloudformation.DeleteStackInput, optFns ...func(*cloudformation.Options)) (*cloudformation.DeleteStackOutput, error)
}

func (m *mockCloudFormationClient) CreateStack(ctx context.Context, params *cloudformation.CreateStackInput, optFns ...func(*cloudformation.Options)) (*cloudformation.CreateStackOutput, error) {
	if m.createStackFunc != nil {
		return m.createStackFunc(ctx, params, optFns...)
	}
	return nil, errors.New("CreateStack not implemented")
}

func (m *mockCloudFormationClient) UpdateStack(ctx context.Context, params *cloudformation.UpdateStackInput, optFns ...func(*cloudformation.Options)) (*cloudformation.UpdateStackOutput, error) {
	if m.updateStackFunc != nil {
		return m.updateStackFunc(ctx, params, optFns...)
	}
	return nil, errors.New("UpdateStack not implemented")
}

func (m *mockCloudFormationClient) DeleteStack(ctx context.Context, params *cloudformation.DeleteStackInput, optFns ...func(*cloudformation.Options)) (*cloudformation.DeleteStackOutput, error) {
	if m.deleteStackFunc != nil {
		return m.deleteStackFunc(ctx, params, optFns...)
	}
	return nil, errors.New("DeleteStack not implemented")
}

func stackNotFoundError(stackName string) error {
	return &smithy.GenericAPIError{
		Code:    "ValidationError",
		Message: "Stack with id " + stackName + " does not exist",
	}
}

func noUpdatesError() error {
	return &smithy.GenericAPIError{
		Code:    "ValidationError",
		Message: "No updates are to be performed.",
	}
}

func TestEnsureDeployedUpdatesExistingStack(t *testing.T) {
	var capturedInput *cloudformation.UpdateStackInput
	createCalls := 0

	client := &mockCloudFormationClient{
		updateStackFunc: func(_ context.Context, params *cloudformation.UpdateStackInput, _ ...func(*cloudformation.Options)) (*cloudformation.UpdateStackOutput, error) {
			capturedInput = params
			return &cloudformation.UpdateStackOutput{}, nil
		},
		createStackFunc: func(_ context.Context, _ *cloudformation.CreateStackInput, _ ...func(*cloudformation.Options)) (*cloudformation.CreateStackOutput, error) {
			createCalls++
			return &cloudformation.CreateStackOutput{}, nil
		},
	}

	params := []types.Parameter{
		{ParameterKey: aws.String("ec2Key"), ParameterValue: aws.String("ops-key")},
	}
	result, err := NewDeployer(client).EnsureDeployed(
		context.Background(), "demo", `{"Resources": {}}`, params, "arn:aws:sns:us-east-1:123456789012:demo")

	require.NoError(t, err)
	assert.Equal(t, "demo", result.StackName)
	assert.Equal(t, "UPDATE", result.OperationType)
	assert.False(t, result.NoChanges)
	assert.Equal(t, 0, createCalls)

	require.NotNil(t, capturedInput)
	assert.Equal(t, "demo", aws.ToString(capturedInput.StackName))
	assert.Equal(t, `{"Resources": {}}`, aws.ToString(capturedInput.TemplateBody))
	assert.Equal(t, params, capturedInput.Parameters)
	assert.Equal(t, []types.Capability{types.CapabilityCapabilityIam}, capturedInput.Capabilities)
	assert.Equal(t, []string{"arn:aws:sns:us-east-1:123456789012:demo"}, capturedInput.NotificationARNs)
}

func TestEnsureDeployedNoChangesIsNoOp(t *testing.T) {
	createCalls := 0

	client := &mockCloudFormationClient{
		updateStackFunc: func(_ context.Context, _ *cloudformation.UpdateStackInput, _ ...func(*cloudformation.Options)) (*cloudformation.UpdateStackOutput, error) {
			return nil, noUpdatesError()
		},
		createStackFunc: func(_ context.Context, _ *cloudformation.CreateStackInput, _ ...func(*cloudformation.Options)) (*cloudformation.CreateStackOutput, error) {
			createCalls++
			return &cloudformation.CreateStackOutput{}, nil
		},
	}

	result, err := NewDeployer(client).EnsureDeployed(
		context.Background(), "demo", "{}", nil, "")

	require.NoError(t, err)
	assert.True(t, result.NoChanges)
	assert.Equal(t, "UPDATE", result.OperationType)
	assert.Equal(t, 0, createCalls)
}

func TestEnsureDeployedCreatesMissingStack(t *testing.T) {
	var capturedInput *cloudformation.CreateStackInput
	createCalls := 0

	client := &mockCloudFormationClient{
		updateStackFunc: func(_ context.Context, _ *cloudformation.UpdateStackInput, _ ...func(*cloudformation.Options)) (*cloudformation.UpdateStackOutput, error) {
			return nil, stackNotFoundError("demo")
		},
		createStackFunc: func(_ context.Context, params *cloudformation.CreateStackInput, _ ...func(*cloudformation.Options)) (*cloudformation.CreateStackOutput, error) {
			createCalls++
			capturedInput = params
			return &cloudformation.CreateStackOutput{}, nil
		},
	}

	result, err := NewDeployer(client).EnsureDeployed(
		context.Background(), "demo", "{}", nil, "arn:aws:sns:us-east-1:123456789012:demo")

	require.NoError(t, err)
	assert.Equal(t, "CREATE", result.OperationType)
	assert.Equal(t, 1, createCalls)

	require.NotNil(t, capturedInput)
	assert.Equal(t, "demo", aws.ToString(capturedInput.StackName))
	assert.True(t, aws.ToBool(capturedInput.DisableRollback))
	assert.Equal(t, int32(60), aws.ToInt32(capturedInput.TimeoutInMinutes))
	assert.Equal(t, []types.Capability{types.CapabilityCapabilityIam}, capturedInput.Capabilities)
	assert.Equal(t, []string{"arn:aws:sns:us-east-1:123456789012:demo"}, capturedInput.NotificationARNs)
	require.Len(t, capturedInput.Tags, 1)
	assert.Equal(t, "ManagedBy", aws.ToString(capturedInput.Tags[0].Key))
	assert.Equal(t, "envstack", aws.ToString(capturedInput.Tags[0].Value))
}

func TestEnsureDeployedDoesNotCreateOnOtherErrors(t *testing.T) {
	createCalls := 0

	tests := []struct {
		name      string
		updateErr error
	}{
		{
			name: "access denied",
			updateErr: &smithy.GenericAPIError{
				Code:    "AccessDenied",
				Message: "User is not authorized to perform cloudformation:UpdateStack",
			},
		},
		{
			name: "validation error with unrelated message",
			updateErr: &smithy.GenericAPIError{
				Code:    "ValidationError",
				Message: "Template format error: JSON not well-formed",
			},
		},
		{
			name:      "transport error",
			updateErr: errors.New("connection reset by peer"),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := &mockCloudFormationClient{
				updateStackFunc: func(_ context.Context, _ *cloudformation.UpdateStackInput, _ ...func(*cloudformation.Options)) (*cloudformation.UpdateStackOutput, error) {
					return nil, tt.updateErr
				},
				createStackFunc: func(_ context.Context, _ *cloudformation.CreateStackInput, _ ...func(*cloudformation.Options)) (*cloudformation.CreateStackOutput, error) {
					createCalls++
					return &cloudformation.CreateStackOutput{}, nil
				},
			}

			result, err := NewDeployer(client).EnsureDeployed(
				context.Background(), "demo", "{}", nil, "")

			require.Error(t, err)
			assert.Nil(t, result)
			assert.Equal(t, apperrors.ErrCodeDeploymentAPI, apperrors.GetErrorCode(err))
			assert.Contains(t, err.Error(), "update failed")
			assert.Equal(t, 0, createCalls)
		})
	}
}

func TestEnsureDeployedCreateFailureIsTerminal(t *testing.T) {
	createCalls := 0

	client := &mockCloudFormationClient{
		updateStackFunc: func(_ context.Context, _ *cloudformation.UpdateStackInput, _ ...func(*cloudformation.Options)) (*cloudformation.UpdateStackOutput, error) {
			return nil, stackNotFoundError("demo")
		},
		createStackFunc: func(_ context.Context, _ *cloudformation.CreateStackInput, _ ...func(*cloudformation.Options)) (*cloudformation.CreateStackOutput, error) {
			createCalls++
			return nil, &smithy.GenericAPIError{Code: "AlreadyExistsException", Message: "Stack [demo] already exists"}
		},
	}

	result, err := NewDeployer(client).EnsureDeployed(
		context.Background(), "demo", "{}", nil, "")

	require.Error(t, err)
	assert.Nil(t, result)
	assert.Equal(t, apperrors.ErrCodeDeploymentAPI, apperrors.GetErrorCode(err))
	assert.Contains(t, err.Error(), "create failed")
	assert.Equal(t, 1, createCalls)
}

func TestEnsureDeployedWithoutTopicOmitsNotificationARNs(t *testing.T) {
	var capturedInput *cloudformation.UpdateStackInput

	client := &mockCloudFormationClient{
		updateStackFunc: func(_ context.Context, params *cloudformation.UpdateStackInput, _ ...func(*cloudformation.Options)) (*cloudformation.UpdateStackOutput, error) {
			capturedInput = params
			return &cloudformation.UpdateStackOutput{}, nil
		},
	}

	_, err := NewDeployer(client).EnsureDeployed(context.Background(), "demo", "{}", nil, "")

	require.NoError(t, err)
	require.NotNil(t, capturedInput)
	assert.Nil(t, capturedInput.NotificationARNs)
}

func TestDelete(t *testing.T) {
	var capturedName string

	client := &mockCloudFormationClient{
		deleteStackFunc: func(_ context.Context, params *cloudformation.DeleteStackInput, _ ...func(*cloudformation.Options)) (*cloudformation.DeleteStackOutput, error) {
			capturedName = aws.ToString(params.StackName)
			return &cloudformation.DeleteStackOutput{}, nil
		},
	}

	err := NewDeployer(client).Delete(context.Background(), "demo")

	require.NoError(t, err)
	assert.Equal(t, "demo", capturedName)
}

func TestDeleteError(t *testing.T) {
	client := &mockCloudFormationClient{
		deleteStackFunc: func(_ context.Context, _ *cloudformation.DeleteStackInput, _ ...func(*cloudformation.Options)) (*cloudformation.DeleteStackOutput, error) {
			return nil, errors.New("throttled")
		},
	}

	err := NewDeployer(client).Delete(context.Background(), "demo")

	require.Error(t, err)
	assert.Equal(t, apperrors.ErrCodeDeploymentAPI, apperrors.GetErrorCode(err))
	assert.Contains(t, err.Error(), "delete failed")
}

func TestIsStackNotFound(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{name: "validation error naming a missing stack", err: stackNotFoundError("demo"), want: true},
		{name: "validation error with other message", err: &smithy.GenericAPIError{Code: "ValidationError", Message: "Template format error"}, want: false},
		{name: "other code with matching message", err: &smithy.GenericAPIError{Code: "AccessDenied", Message: "Stack does not exist"}, want: false},
		{name: "plain error", err: errors.New("Stack does not exist"), want: false},
		{name: "nil", err: nil, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsStackNotFound(tt.err))
		})
	}
}

func TestIsNoUpdates(t *testing.T) {
	assert.True(t, IsNoUpdates(noUpdatesError()))
	assert.False(t, IsNoUpdates(stackNotFoundError("demo")))
	assert.False(t, IsNoUpdates(errors.New("No updates are to be performed.")))
}
