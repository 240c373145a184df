package deploy

import (
	"encoding/json"
	"fmt"

	apperrors "github.com/envstack/envstack/internal/errors"
	"github.com/envstack/envstack/internal/output"
)

// EventHandler processes one parsed stack event. Returning true reports the
// handler's concern as satisfied; satisfied handlers leave the chain after
// the dispatch round that satisfied them.
type EventHandler interface {
	HandleStackEvent(event Event) bool
}

// AsEventHandler checks that handler implements the EventHandler contract.
func AsEventHandler(handler any) (EventHandler, error) {
	h, ok := handler.(EventHandler)
	if !ok {
		return nil, apperrors.NewRegistrationError(
			fmt.Sprintf("type %T cannot be a stack event handler, missing HandleStackEvent()", handler))
	}
	return h, nil
}

// StackProgressHandler prints stack events as they arrive and reports itself
// satisfied once the target stack reaches a terminal status, so a deploy
// carrying only this handler drains the chain exactly at termination.
type StackProgressHandler struct {
	stackName string
	verbose   bool
}

// NewStackProgressHandler creates a progress handler for the named stack.
// Verbose mode adds status reasons and resource properties to the output.
func NewStackProgressHandler(stackName string, verbose bool) *StackProgressHandler {
	return &StackProgressHandler{stackName: stackName, verbose: verbose}
}

// HandleStackEvent prints the event and reports whether the target stack
// finished.
func (h *StackProgressHandler) HandleStackEvent(event Event) bool {
	if event.Status == "" && event.LogicalID == "" {
		return false
	}

	output.Println(fmt.Sprintf("%s %s %s",
		output.StatusBadge(event.Status), event.ResourceType, event.LogicalID))

	if h.verbose {
		if event.Reason != "" {
			output.Println("  " + output.Gray(event.Reason))
		}
		if props := h.renderProperties(event); props != "" {
			output.Println(output.Gray(props))
		}
	}

	return event.IsTerminal(h.stackName)
}

// renderProperties pretty-prints parsed properties and falls back to the raw
// blob text.
func (h *StackProgressHandler) renderProperties(event Event) string {
	if event.Properties != nil {
		if encoded, err := json.MarshalIndent(event.Properties, "  ", "    "); err == nil {
			return "  " + string(encoded)
		}
	}
	if event.RawProperties != "" {
		return "  " + event.RawProperties
	}
	return ""
}
