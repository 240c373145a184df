package deploy

import (
	"context"
	"log/slog"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sqs"

	"github.com/envstack/envstack/internal/constants"
	apperrors "github.com/envstack/envstack/internal/errors"
)

// State names the condition that ended a monitoring run.
type State string

// Monitor run outcomes.
const (
	// StatePolling means the run stopped mid-poll, always alongside an error.
	StatePolling State = "POLLING"
	// StateDraining means every handler reported itself satisfied before the
	// stack finished.
	StateDraining State = "DRAINING"
	// StateTerminated means the monitored stack reached a terminal status.
	StateTerminated State = "TERMINATED"
	// StateTimedOut means the poll ceiling elapsed first.
	StateTimedOut State = "TIMED_OUT"
	// StateAborted means the context was canceled.
	StateAborted State = "ABORTED"
)

// Monitor drains stack events from a notification session queue and feeds
// them through a handler chain until the monitored stack terminates, the
// chain empties, the poll ceiling elapses, or the context is canceled.
type Monitor struct {
	sqsClient   SQSAPI
	handlers    []EventHandler
	pollTimeout time.Duration
	waitSeconds int32
	batchSize   int32
	now         func() time.Time
}

// NewMonitor creates a monitor over the given handler chain. The chain is
// copied so callers can reuse their slice.
func NewMonitor(sqsClient SQSAPI, handlers []EventHandler) *Monitor {
	chain := make([]EventHandler, len(handlers))
	copy(chain, handlers)
	return &Monitor{
		sqsClient:   sqsClient,
		handlers:    chain,
		pollTimeout: constants.MonitorPollTimeout,
		waitSeconds: constants.MonitorReceiveWaitSeconds,
		batchSize:   constants.MonitorReceiveBatchSize,
		now:         time.Now,
	}
}

// SetPollTimeout overrides the default ceiling on total polling time.
func (m *Monitor) SetPollTimeout(timeout time.Duration) {
	m.pollTimeout = timeout
}

// Run polls the queue until a stopping condition holds and reports which one
// it was. Messages are deleted from the queue after parsing and before
// dispatch. Every handler in the chain sees each event; handlers that report
// themselves satisfied leave the chain after that event's round. A terminal
// event for stackName finishes the in-flight batch before the run stops.
func (m *Monitor) Run(ctx context.Context, queueURL, stackName string) (State, error) {
	deadline := m.now().Add(m.pollTimeout)
	terminated := false

	for {
		switch {
		case ctx.Err() != nil:
			return StateAborted, ctx.Err()
		case terminated:
			return StateTerminated, nil
		case len(m.handlers) == 0:
			return StateDraining, nil
		case !m.now().Before(deadline):
			return StateTimedOut, nil
		}

		resp, err := m.sqsClient.ReceiveMessage(ctx, &sqs.ReceiveMessageInput{
			QueueUrl:            aws.String(queueURL),
			MaxNumberOfMessages: m.batchSize,
			WaitTimeSeconds:     m.waitSeconds,
		})
		if err != nil {
			if ctx.Err() != nil {
				return StateAborted, ctx.Err()
			}
			return StatePolling, apperrors.NewChannelError("failed to receive stack events", err)
		}

		for _, message := range resp.Messages {
			event := ParseEvent(aws.ToString(message.Body))

			if _, err := m.sqsClient.DeleteMessage(ctx, &sqs.DeleteMessageInput{
				QueueUrl:      aws.String(queueURL),
				ReceiptHandle: message.ReceiptHandle,
			}); err != nil {
				slog.Warn("Failed to delete stack event message", "queueURL", queueURL, "error", err)
			}

			var remaining []EventHandler
			for _, handler := range m.handlers {
				if !handler.HandleStackEvent(event) {
					remaining = append(remaining, handler)
				}
			}
			m.handlers = remaining

			if event.IsTerminal(stackName) {
				terminated = true
			}
		}
	}
}
