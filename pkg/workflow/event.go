package workflow

import (
	"encoding/json"
	"time"
)

type EventType string

const (
	EventReasoning EventType = "reasoning"
	EventAnswer    EventType = "answer"
	EventError     EventType = "error"
	EventDone      EventType = "done"
)

// Event is one step of a streamed execution. Payload is a string for
// reasoning, *ErrorInfo for error, *Result for answer and nil for done.
type Event struct {
	Type      EventType   `json:"type"`
	Node      string      `json:"node,omitempty"`
	Payload   interface{} `json:"payload,omitempty"`
	Seq       uint64      `json:"seq"`
	Timestamp time.Time   `json:"timestamp"`
}

func (e Event) Marshal() []byte {
	b, _ := json.Marshal(e)
	return b
}
