package engine

import "time"

// Event is one element of a runner's output stream. The orchestration layer
// forwards engine events unchanged and injects its own retry and
// final-failure events with Author "system".
type Event struct {
	ID           string       `json:"id,omitempty"`
	Author       string       `json:"author"`
	Content      *Content     `json:"content,omitempty"`
	Actions      EventActions `json:"actions"`
	ErrorCode    string       `json:"error_code,omitempty"`
	ErrorMessage string       `json:"error_message,omitempty"`
	Timestamp    time.Time    `json:"timestamp,omitzero"`
}

// Content carries the message payload of an event.
type Content struct {
	Role  string `json:"role"`
	Parts []Part `json:"parts"`
}

// Part is a single content fragment. Only text parts exist at this layer.
type Part struct {
	Text string `json:"text"`
}

// EventActions carries side-channel signals attached to an event.
type EventActions struct {
	Escalate   bool           `json:"escalate,omitempty"`
	StateDelta map[string]any `json:"state_delta,omitempty"`
}

// NewUserContent builds a single-part user message.
func NewUserContent(text string) *Content {
	return &Content{Role: "user", Parts: []Part{{Text: text}}}
}

// Text returns the concatenated text of all parts, or "" for nil content.
func (c *Content) Text() string {
	if c == nil {
		return ""
	}
	var out string
	for _, p := range c.Parts {
		out += p.Text
	}
	return out
}
