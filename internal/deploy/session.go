package deploy

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	sqstypes "github.com/aws/aws-sdk-go-v2/service/sqs/types"

	"github.com/envstack/envstack/internal/constants"
	apperrors "github.com/envstack/envstack/internal/errors"
)

// sessionSuffixByteSize sizes the random part of a session name.
const sessionSuffixByteSize = 4

// SNSAPI defines the interface for SNS operations the session uses.
type SNSAPI interface {
	CreateTopic(
		ctx context.Context,
		params *sns.CreateTopicInput,
		optFns ...func(*sns.Options),
	) (*sns.CreateTopicOutput, error)
	Subscribe(
		ctx context.Context,
		params *sns.SubscribeInput,
		optFns ...func(*sns.Options),
	) (*sns.SubscribeOutput, error)
	DeleteTopic(
		ctx context.Context,
		params *sns.DeleteTopicInput,
		optFns ...func(*sns.Options),
	) (*sns.DeleteTopicOutput, error)
}

// SQSAPI defines the interface for SQS operations the session and monitor
// use.
type SQSAPI interface {
	CreateQueue(
		ctx context.Context,
		params *sqs.CreateQueueInput,
		optFns ...func(*sqs.Options),
	) (*sqs.CreateQueueOutput, error)
	GetQueueAttributes(
		ctx context.Context,
		params *sqs.GetQueueAttributesInput,
		optFns ...func(*sqs.Options),
	) (*sqs.GetQueueAttributesOutput, error)
	SetQueueAttributes(
		ctx context.Context,
		params *sqs.SetQueueAttributesInput,
		optFns ...func(*sqs.Options),
	) (*sqs.SetQueueAttributesOutput, error)
	ReceiveMessage(
		ctx context.Context,
		params *sqs.ReceiveMessageInput,
		optFns ...func(*sqs.Options),
	) (*sqs.ReceiveMessageOutput, error)
	DeleteMessage(
		ctx context.Context,
		params *sqs.DeleteMessageInput,
		optFns ...func(*sqs.Options),
	) (*sqs.DeleteMessageOutput, error)
	DeleteQueue(
		ctx context.Context,
		params *sqs.DeleteQueueInput,
		optFns ...func(*sqs.Options),
	) (*sqs.DeleteQueueOutput, error)
}

// Session is the transient topic, queue, and subscription that carry stack
// lifecycle events for one deploy invocation. It exists only while the
// deploy runs; Close tears it down on every exit path.
type Session struct {
	Name     string
	TopicARN string
	QueueURL string
	QueueARN string

	snsClient SNSAPI
	sqsClient SQSAPI
}

// SessionName builds a channel name unique to this invocation so no messages
// from a previous run are picked up.
func SessionName(baseName string) string {
	return fmt.Sprintf("%s-%s-%s",
		baseName, time.Now().Format(constants.SessionNameTimeFormat), randomSuffix())
}

// randomSuffix generates a short random string using crypto/rand.
func randomSuffix() string {
	b := make([]byte, sessionSuffixByteSize)
	if _, err := rand.Read(b); err != nil {
		return hex.EncodeToString([]byte(time.Now().String()))[:sessionSuffixByteSize*2]
	}
	return hex.EncodeToString(b)
}

// OpenSession creates the notification channel: a topic and queue sharing a
// unique name, a subscription binding them, and a queue policy allowing the
// topic to send. The caller must Close the session when monitoring ends.
func OpenSession(ctx context.Context, snsClient SNSAPI, sqsClient SQSAPI, baseName string) (*Session, error) {
	s := &Session{
		Name:      SessionName(baseName),
		snsClient: snsClient,
		sqsClient: sqsClient,
	}

	topic, err := snsClient.CreateTopic(ctx, &sns.CreateTopicInput{
		Name: aws.String(s.Name),
	})
	if err != nil {
		return nil, apperrors.NewChannelError("failed to create notification topic", err)
	}
	s.TopicARN = aws.ToString(topic.TopicArn)

	queue, err := sqsClient.CreateQueue(ctx, &sqs.CreateQueueInput{
		QueueName: aws.String(s.Name),
	})
	if err != nil {
		s.Close(ctx)
		return nil, apperrors.NewChannelError("failed to create notification queue", err)
	}
	s.QueueURL = aws.ToString(queue.QueueUrl)

	attrs, err := sqsClient.GetQueueAttributes(ctx, &sqs.GetQueueAttributesInput{
		QueueUrl: aws.String(s.QueueURL),
		AttributeNames: []sqstypes.QueueAttributeName{
			sqstypes.QueueAttributeNameQueueArn,
			sqstypes.QueueAttributeNamePolicy,
		},
	})
	if err != nil {
		s.Close(ctx)
		return nil, apperrors.NewChannelError("failed to read queue attributes", err)
	}
	s.QueueARN = attrs.Attributes[string(sqstypes.QueueAttributeNameQueueArn)]

	if _, err := snsClient.Subscribe(ctx, &sns.SubscribeInput{
		TopicArn: aws.String(s.TopicARN),
		Protocol: aws.String("sqs"),
		Endpoint: aws.String(s.QueueARN),
	}); err != nil {
		s.Close(ctx)
		return nil, apperrors.NewChannelError("failed to subscribe queue to topic", err)
	}

	if err := s.ensureQueuePolicy(ctx, attrs.Attributes[string(sqstypes.QueueAttributeNamePolicy)]); err != nil {
		s.Close(ctx)
		return nil, err
	}

	slog.Debug("notification session open",
		"name", s.Name, "topic", s.TopicARN, "queue", s.QueueURL)
	return s, nil
}

// ensureQueuePolicy grants the topic permission to send into the queue. The
// policy is written once; a queue that already carries statements is left
// untouched.
func (s *Session) ensureQueuePolicy(ctx context.Context, current string) error {
	policy := map[string]any{"Version": "2008-10-17"}
	if current != "" {
		if err := json.Unmarshal([]byte(current), &policy); err != nil {
			return apperrors.NewChannelError("failed to parse queue policy", err)
		}
	}

	if _, ok := policy["Statement"]; ok {
		return nil
	}

	policy["Statement"] = []any{map[string]any{
		"Sid":       "sqs-access",
		"Effect":    "Allow",
		"Principal": map[string]any{"AWS": "*"},
		"Action":    "SQS:SendMessage",
		"Resource":  s.QueueARN,
		"Condition": map[string]any{"StringLike": map[string]any{"aws:SourceArn": s.TopicARN}},
	}}

	encoded, err := json.Marshal(policy)
	if err != nil {
		return apperrors.NewChannelError("failed to encode queue policy", err)
	}

	if _, err := s.sqsClient.SetQueueAttributes(ctx, &sqs.SetQueueAttributesInput{
		QueueUrl: aws.String(s.QueueURL),
		Attributes: map[string]string{
			string(sqstypes.QueueAttributeNamePolicy): string(encoded),
		},
	}); err != nil {
		return apperrors.NewChannelError("failed to set queue policy", err)
	}
	return nil
}

// Close tears the channel down best-effort: the topic and queue are both
// attempted regardless of individual failures.
func (s *Session) Close(ctx context.Context) error {
	var errs []error

	if s.TopicARN != "" {
		if _, err := s.snsClient.DeleteTopic(ctx, &sns.DeleteTopicInput{
			TopicArn: aws.String(s.TopicARN),
		}); err != nil {
			errs = append(errs, fmt.Errorf("delete topic %s: %w", s.TopicARN, err))
		}
	}

	if s.QueueURL != "" {
		if _, err := s.sqsClient.DeleteQueue(ctx, &sqs.DeleteQueueInput{
			QueueUrl: aws.String(s.QueueURL),
		}); err != nil {
			errs = append(errs, fmt.Errorf("delete queue %s: %w", s.QueueURL, err))
		}
	}

	if len(errs) > 0 {
		return apperrors.NewChannelError("notification session teardown incomplete", errors.Join(errs...))
	}

	slog.Debug("notification session closed", "name", s.Name)
	return nil
}
