package events

import "time"

// Event defines the contract for all system events.
type Event interface {
	// EventType returns the unique code for this event (e.g., "QUERY_PROCESSED").
	EventType() string

	// Payload returns the data associated with the event.
	Payload() map[string]interface{}

	// Timestamp returns when the event occurred.
	Timestamp() time.Time
}

const TypeQueryProcessed = "QUERY_PROCESSED"

// QueryProcessed is published once per finished workflow execution.
type QueryProcessed struct {
	RequestID  string    `json:"request_id"`
	Query      string    `json:"query"`
	Intent     string    `json:"intent"`
	Confidence string    `json:"confidence"`
	ErrorCode  string    `json:"error_code,omitempty"`
	DurationMs int64     `json:"duration_ms"`
	OccurredAt time.Time `json:"occurred_at"`
}

func (e QueryProcessed) EventType() string {
	return TypeQueryProcessed
}

func (e QueryProcessed) Payload() map[string]interface{} {
	return map[string]interface{}{
		"request_id":  e.RequestID,
		"query":       e.Query,
		"intent":      e.Intent,
		"confidence":  e.Confidence,
		"error_code":  e.ErrorCode,
		"duration_ms": e.DurationMs,
	}
}

func (e QueryProcessed) Timestamp() time.Time {
	return e.OccurredAt
}
