package service

import (
	"context"
	"time"

	"astu-route-be/internal/entity"
	"astu-route-be/internal/pkg/logger"
	"astu-route-be/internal/repository/contract"
	"astu-route-be/pkg/events"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/google/uuid"
)

const (
	persistTimeout  = 5 * time.Second
	redeliveryDelay = time.Second
)

// EventMirror forwards processed events to an external bus.
type EventMirror interface {
	Publish(ctx context.Context, event events.Event) error
}

type IQueryLogConsumer interface {
	Consume(ctx context.Context) error
}

type queryLogConsumer struct {
	bus    *events.Bus
	repo   contract.QueryLogRepository
	mirror EventMirror
	logger logger.ILogger
}

// NewQueryLogConsumer persists QueryProcessed events. mirror may be nil.
func NewQueryLogConsumer(
	bus *events.Bus,
	repo contract.QueryLogRepository,
	mirror EventMirror,
	log logger.ILogger,
) IQueryLogConsumer {
	return &queryLogConsumer{
		bus:    bus,
		repo:   repo,
		mirror: mirror,
		logger: log,
	}
}

func (c *queryLogConsumer) Consume(ctx context.Context) error {
	messages, err := c.bus.Subscribe(ctx)
	if err != nil {
		return err
	}

	go func() {
		for msg := range messages {
			c.processMessage(msg)
		}
	}()

	return nil
}

func (c *queryLogConsumer) processMessage(msg *message.Message) {
	ctx, cancel := context.WithTimeout(context.Background(), persistTimeout)
	defer cancel()

	event, err := events.DecodeQueryProcessed(msg)
	if err != nil {
		c.logger.Error("EVENTS", "Failed to unmarshal message", map[string]interface{}{
			"message_id": msg.UUID,
			"error":      err.Error(),
		})
		msg.Ack() // a malformed payload never gets better
		return
	}

	createdAt := event.OccurredAt
	if createdAt.IsZero() {
		createdAt = time.Now()
	}

	entry := &entity.QueryLog{
		Id:         uuid.New(),
		RequestId:  event.RequestID,
		Query:      event.Query,
		Intent:     event.Intent,
		Confidence: event.Confidence,
		ErrorCode:  event.ErrorCode,
		DurationMs: event.DurationMs,
		CreatedAt:  createdAt,
	}
	if err := c.repo.Create(ctx, entry); err != nil {
		c.logger.Error("EVENTS", "Failed to persist query log", map[string]interface{}{
			"request_id": event.RequestID,
			"error":      err.Error(),
		})
		time.Sleep(redeliveryDelay)
		msg.Nack()
		return
	}

	if c.mirror != nil {
		if err := c.mirror.Publish(ctx, event); err != nil {
			c.logger.Warn("EVENTS", "Failed to mirror event to NATS", map[string]interface{}{
				"request_id": event.RequestID,
				"error":      err.Error(),
			})
		}
	}

	c.logger.Debug("EVENTS", "Query log stored", map[string]interface{}{
		"request_id": event.RequestID,
		"intent":     event.Intent,
	})
	msg.Ack()
}
