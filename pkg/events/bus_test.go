package events

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBusRoundTrip(t *testing.T) {
	bus := NewBus("query.processed")
	defer bus.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	messages, err := bus.Subscribe(ctx)
	require.NoError(t, err)

	sent := QueryProcessed{
		RequestID:  "req-1",
		Query:      "where is Block-8?",
		Intent:     "NAVIGATION",
		Confidence: "high",
		DurationMs: 42,
		OccurredAt: time.Now().UTC(),
	}
	require.NoError(t, bus.PublishQueryProcessed(ctx, sent))

	select {
	case msg := <-messages:
		got, err := DecodeQueryProcessed(msg)
		require.NoError(t, err)
		msg.Ack()
		assert.Equal(t, sent.RequestID, got.RequestID)
		assert.Equal(t, sent.Intent, got.Intent)
		assert.Equal(t, TypeQueryProcessed, msg.Metadata.Get("type"))
	case <-time.After(2 * time.Second):
		t.Fatal("no message delivered")
	}
}

func TestQueryProcessedPayload(t *testing.T) {
	e := QueryProcessed{RequestID: "r", ErrorCode: "AI_SERVICE_ERROR"}
	assert.Equal(t, TypeQueryProcessed, e.EventType())
	assert.Equal(t, "AI_SERVICE_ERROR", e.Payload()["error_code"])
}
