package deploy

import (
	"encoding/json"
	"regexp"
	"strings"

	"github.com/envstack/envstack/internal/constants"
)

// pairPattern extracts key=value and key='value' pairs from the
// semi-structured text CloudFormation publishes for each stack event.
var pairPattern = regexp.MustCompile(`(\S+)=('.*?'|\S+)`)

// terminalStatuses are the stack statuses after which the deployment
// operation will not change further without new action.
var terminalStatuses = map[string]struct{}{
	"CREATE_COMPLETE":          {},
	"UPDATE_COMPLETE":          {},
	"UPDATE_ROLLBACK_COMPLETE": {},
	"CREATE_FAILED":            {},
	"UPDATE_FAILED":            {},
	"UPDATE_ROLLBACK_FAILED":   {},
}

// Event is one parsed stack lifecycle notification.
type Event struct {
	Status       string
	ResourceType string
	LogicalID    string
	Reason       string

	// Properties holds the resource properties blob when it parses as JSON.
	Properties map[string]any

	// RawProperties always holds the blob's original text.
	RawProperties string
}

// ParseEvent extracts an Event from a raw queue message body. The body is
// expected to be an SNS envelope whose Message field carries the event text;
// a body that is not an envelope is parsed as the event text itself.
// Unknown and malformed fields degrade to empty or raw-text values, never to
// an error.
func ParseEvent(body string) Event {
	text := body
	var envelope struct {
		Message string `json:"Message"`
	}
	if err := json.Unmarshal([]byte(body), &envelope); err == nil && envelope.Message != "" {
		text = envelope.Message
	}

	pairs := make(map[string]string)
	for _, match := range pairPattern.FindAllStringSubmatch(text, -1) {
		pairs[match[1]] = strings.Trim(match[2], "'")
	}

	event := Event{
		Status:        pairs["ResourceStatus"],
		ResourceType:  pairs["ResourceType"],
		LogicalID:     pairs["LogicalResourceId"],
		Reason:        pairs["ResourceStatusReason"],
		RawProperties: pairs["ResourceProperties"],
	}

	if event.RawProperties != "" {
		var props map[string]any
		if err := json.Unmarshal([]byte(event.RawProperties), &props); err == nil {
			event.Properties = props
		}
	}

	return event
}

// IsTerminal reports whether the event marks the named stack itself reaching
// a terminal status.
func (e Event) IsTerminal(stackName string) bool {
	if e.ResourceType != constants.StackResourceType || e.LogicalID != stackName {
		return false
	}
	_, ok := terminalStatuses[e.Status]
	return ok
}
