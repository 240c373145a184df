package environment

import (
	"context"
	"errors"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/cloudformation"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
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

type mockS3Client struct {
	putObjectFunc func(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

func (m *mockS3Client) PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	if m.putObjectFunc != nil {
		return m.putObjectFunc(ctx, params, optFns...)
	}
	return nil, errors.New("PutObject not implemented")
}

type mockSNSClient struct {
	createTopicFunc func(ctx context.Context, params *sns.CreateTopicInput, optFns ...func(*sns.Options)) (*sns.CreateTopicOutput, error)
	subscribeFunc   func(ctx context.Context, params *sns.SubscribeInput, optFns ...func(*sns.Options)) (*sns.SubscribeOutput, error)
	deleteTopicFunc func(ctx context.Context, params *sns.DeleteTopicInput, optFns ...func(*sns.Options)) (*sns.DeleteTopicOutput, error)
}

func (m *mockSNSClient) CreateTopic(ctx context.Context, params *sns.CreateTopicInput, optFns ...func(*sns.Options)) (*sns.CreateTopicOutput, error) {
	if m.createTopicFunc != nil {
		return m.createTopicFunc(ctx, params, optFns...)
	}
	return nil, errors.New("CreateTopic not implemented")
}

func (m *mockSNSClient) Subscribe(ctx context.Context, params *sns.SubscribeInput, optFns ...func(*sns.Options)) (*sns.SubscribeOutput, error) {
	if m.subscribeFunc != nil {
		return m.subscribeFunc(ctx, params, optFns...)
	}
	return nil, errors.New("Subscribe not implemented")
}

func (m *mockSNSClient) DeleteTopic(ctx context.Context, params *sns.DeleteTopicInput, optFns ...func(*sns.Options)) (*sns.DeleteTopicOutput, error) {
	if m.deleteTopicFunc != nil {
		return m.deleteTopicFunc(ctx, params, optFns...)
	}
	return nil, errors.New("DeleteTopic not implemented")
}

type mockSQSClient struct {
	createQueueFunc        func(ctx context.Context, params *sqs.CreateQueueInput, optFns ...func(*sqs.Options)) (*sqs.CreateQueueOutput, error)
	getQueueAttributesFunc func(ctx context.Context, params *sqs.GetQueueAttributesInput, optFns ...func(*sqs.Options)) (*sqs.GetQueueAttributesOutput, error)
	setQueueAttributesFunc func(ctx context.Context, params *sqs.SetQueueAttributesInput, optFns ...func(*sqs.Options)) (*sqs.SetQueueAttributesOutput, error)
	receiveMessageFunc     func(ctx context.Context, params *sqs.ReceiveMessageInput, optFns ...func(*sqs.Options)) (*sqs.ReceiveMessageOutput, error)
	deleteMessageFunc      func(ctx context.Context, params *sqs.DeleteMessageInput, optFns ...func(*sqs.Options)) (*sqs.DeleteMessageOutput, error)
	deleteQueueFunc        func(ctx context.Context, params *sqs.DeleteQueueInput, optFns ...func(*sqs.Options)) (*sqs.DeleteQueueOutput, error)
}

func (m *mockSQSClient) CreateQueue(ctx context.Context, params *sqs.CreateQueueInput, optFns ...func(*sqs.Options)) (*sqs.CreateQueueOutput, error) {
	if m.createQueueFunc != nil {
		return m.createQueueFunc(ctx, params, optFns...)
	}
	return nil, errors.New("CreateQueue not implemented")
}

func (m *mockSQSClient) GetQueueAttributes(ctx context.Context, params *sqs.GetQueueAttributesInput, optFns ...func(*sqs.Options)) (*sqs.GetQueueAttributesOutput, error) {
	if m.getQueueAttributesFunc != nil {
		return m.getQueueAttributesFunc(ctx, params, optFns...)
	}
	return nil, errors.New("GetQueueAttributes not implemented")
}

func (m *mockSQSClient) SetQueueAttributes(ctx context.Context, params *sqs.SetQueueAttributesInput, optFns ...func(*sqs.Options)) (*sqs.SetQueueAttributesOutput, error) {
	if m.setQueueAttributesFunc != nil {
		return m.setQueueAttributesFunc(ctx, params, optFns...)
	}
	return nil, errors.New("SetQueueAttributes not implemented")
}

func (m *mockSQSClient) ReceiveMessage(ctx context.Context, params *sqs.ReceiveMessageInput, optFns ...func(*sqs.Options)) (*sqs.ReceiveMessageOutput, error) {
	if m.receiveMessageFunc != nil {
		return m.receiveMessageFunc(ctx, params, optFns...)
	}
	return nil, errors.New("ReceiveMessage not implemented")
}

func (m *mockSQSClient) DeleteMessage(ctx context.Context, params *sqs.DeleteMessageInput, optFns ...func(*sqs.Options)) (*sqs.DeleteMessageOutput, error) {
	if m.deleteMessageFunc != nil {
		return m.deleteMessageFunc(ctx, params, optFns...)
	}
	return nil, errors.New("DeleteMessage not implemented")
}

func (m *mockSQSClient) DeleteQueue(ctx context.Context, params *sqs.DeleteQueueInput, optFns ...func(*sqs.Options)) (*sqs.DeleteQueueOutput, error) {
	if m.deleteQueueFunc != nil {
		return m.deleteQueueFunc(ctx, params, optFns...)
	}
	return nil, errors.New("DeleteQueue not implemented")
}

// sessionMocks wires SNS and SQS mocks for a notification session that opens
// cleanly, recording whether teardown ran.
func sessionMocks() (snsClient *mockSNSClient, sqsClient *mockSQSClient, topicDeleted, queueDeleted *bool) {
	topicDeleted = new(bool)
	queueDeleted = new(bool)

	snsClient = &mockSNSClient{
		createTopicFunc: func(_ context.Context, params *sns.CreateTopicInput, _ ...func(*sns.Options)) (*sns.CreateTopicOutput, error) {
			return &sns.CreateTopicOutput{
				TopicArn: aws.String("arn:aws:sns:us-east-1:123456789012:" + aws.ToString(params.Name)),
			}, nil
		},
		subscribeFunc: func(_ context.Context, _ *sns.SubscribeInput, _ ...func(*sns.Options)) (*sns.SubscribeOutput, error) {
			return &sns.SubscribeOutput{}, nil
		},
		deleteTopicFunc: func(_ context.Context, _ *sns.DeleteTopicInput, _ ...func(*sns.Options)) (*sns.DeleteTopicOutput, error) {
			*topicDeleted = true
			return &sns.DeleteTopicOutput{}, nil
		},
	}

	sqsClient = &mockSQSClient{
		createQueueFunc: func(_ context.Context, params *sqs.CreateQueueInput, _ ...func(*sqs.Options)) (*sqs.CreateQueueOutput, error) {
			return &sqs.CreateQueueOutput{
				QueueUrl: aws.String("https://sqs.us-east-1.amazonaws.com/123456789012/" + aws.ToString(params.QueueName)),
			}, nil
		},
		getQueueAttributesFunc: func(_ context.Context, _ *sqs.GetQueueAttributesInput, _ ...func(*sqs.Options)) (*sqs.GetQueueAttributesOutput, error) {
			return &sqs.GetQueueAttributesOutput{
				Attributes: map[string]string{"QueueArn": "arn:aws:sqs:us-east-1:123456789012:monitor-queue"},
			}, nil
		},
		setQueueAttributesFunc: func(_ context.Context, _ *sqs.SetQueueAttributesInput, _ ...func(*sqs.Options)) (*sqs.SetQueueAttributesOutput, error) {
			return &sqs.SetQueueAttributesOutput{}, nil
		},
		deleteQueueFunc: func(_ context.Context, _ *sqs.DeleteQueueInput, _ ...func(*sqs.Options)) (*sqs.DeleteQueueOutput, error) {
			*queueDeleted = true
			return &sqs.DeleteQueueOutput{}, nil
		},
	}

	return snsClient, sqsClient, topicDeleted, queueDeleted
}
