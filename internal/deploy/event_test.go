package deploy

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseEventFromEnvelope(t *testing.T) {
	message := "StackName='demo'\n" +
		"ResourceStatus='CREATE_COMPLETE'\n" +
		"ResourceType='AWS::CloudFormation::Stack'\n" +
		"LogicalResourceId='demo'\n" +
		"ResourceStatusReason='User Initiated'\n"
	envelope, err := json.Marshal(map[string]string{
		"Type":    "Notification",
		"Message": message,
	})
	require.NoError(t, err)

	event := ParseEvent(string(envelope))

	assert.Equal(t, "CREATE_COMPLETE", event.Status)
	assert.Equal(t, "AWS::CloudFormation::Stack", event.ResourceType)
	assert.Equal(t, "demo", event.LogicalID)
	assert.Equal(t, "User Initiated", event.Reason)
}

func TestParseEventRawBody(t *testing.T) {
	body := "ResourceStatus=UPDATE_IN_PROGRESS ResourceType=AWS::EC2::Instance LogicalResourceId=webServer"

	event := ParseEvent(body)

	assert.Equal(t, "UPDATE_IN_PROGRESS", event.Status)
	assert.Equal(t, "AWS::EC2::Instance", event.ResourceType)
	assert.Equal(t, "webServer", event.LogicalID)
	assert.Empty(t, event.Reason)
}

func TestParseEventProperties(t *testing.T) {
	body := "LogicalResourceId='bucket' ResourceProperties='{\"BucketName\": \"demo-artifacts\"}'"

	event := ParseEvent(body)

	assert.Equal(t, `{"BucketName": "demo-artifacts"}`, event.RawProperties)
	assert.Equal(t, map[string]any{"BucketName": "demo-artifacts"}, event.Properties)
}

func TestParseEventMalformedPropertiesKeepRawText(t *testing.T) {
	body := "LogicalResourceId='bucket' ResourceProperties='not a json object'"

	event := ParseEvent(body)

	assert.Equal(t, "not a json object", event.RawProperties)
	assert.Nil(t, event.Properties)
}

func TestParseEventUnrecognizedBody(t *testing.T) {
	event := ParseEvent(`{"Type": "SubscriptionConfirmation"}`)

	assert.Empty(t, event.Status)
	assert.Empty(t, event.LogicalID)
	assert.False(t, event.IsTerminal("demo"))
}

func TestIsTerminal(t *testing.T) {
	tests := []struct {
		name         string
		status       string
		resourceType string
		logicalID    string
		want         bool
	}{
		{name: "create complete", status: "CREATE_COMPLETE", resourceType: "AWS::CloudFormation::Stack", logicalID: "demo", want: true},
		{name: "update complete", status: "UPDATE_COMPLETE", resourceType: "AWS::CloudFormation::Stack", logicalID: "demo", want: true},
		{name: "rollback complete", status: "UPDATE_ROLLBACK_COMPLETE", resourceType: "AWS::CloudFormation::Stack", logicalID: "demo", want: true},
		{name: "create failed", status: "CREATE_FAILED", resourceType: "AWS::CloudFormation::Stack", logicalID: "demo", want: true},
		{name: "update failed", status: "UPDATE_FAILED", resourceType: "AWS::CloudFormation::Stack", logicalID: "demo", want: true},
		{name: "rollback failed", status: "UPDATE_ROLLBACK_FAILED", resourceType: "AWS::CloudFormation::Stack", logicalID: "demo", want: true},
		{name: "still in progress", status: "CREATE_IN_PROGRESS", resourceType: "AWS::CloudFormation::Stack", logicalID: "demo", want: false},
		{name: "delete is not a deploy outcome", status: "DELETE_COMPLETE", resourceType: "AWS::CloudFormation::Stack", logicalID: "demo", want: false},
		{name: "nested stack finishing", status: "CREATE_COMPLETE", resourceType: "AWS::CloudFormation::Stack", logicalID: "networkStack", want: false},
		{name: "non-stack resource", status: "CREATE_COMPLETE", resourceType: "AWS::EC2::Instance", logicalID: "demo", want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			event := Event{
				Status:       tt.status,
				ResourceType: tt.resourceType,
				LogicalID:    tt.logicalID,
			}
			assert.Equal(t, tt.want, event.IsTerminal("demo"))
		})
	}
}
