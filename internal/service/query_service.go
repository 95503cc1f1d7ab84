package service

import (
	"context"
	"fmt"
	"time"

	"astu-route-be/internal/dto"
	"astu-route-be/internal/pkg/logger"
	"astu-route-be/pkg/events"
	"astu-route-be/pkg/workflow"

	"github.com/google/uuid"
)

// QueryRunner is the workflow entry point. *workflow.Orchestrator implements it.
type QueryRunner interface {
	Run(ctx context.Context, in workflow.Input) *workflow.QueryContext
	Stream(ctx context.Context, in workflow.Input) <-chan workflow.Event
}

type QueryEventPublisher interface {
	PublishQueryProcessed(ctx context.Context, e events.QueryProcessed) error
}

type IQueryService interface {
	Query(ctx context.Context, requestID string, req *dto.QueryRequest) *workflow.Result
	Stream(ctx context.Context, requestID string, req *dto.QueryRequest) <-chan workflow.Event
	// UpdateLocation re-plans navigation to destination from a live position.
	UpdateLocation(ctx context.Context, requestID string, req *dto.LocationUpdateRequest) *workflow.Result
}

type queryService struct {
	runner    QueryRunner
	publisher QueryEventPublisher
	logger    logger.ILogger
}

// NewQueryService wires the workflow to the query event bus. publisher may be nil.
func NewQueryService(runner QueryRunner, publisher QueryEventPublisher, log logger.ILogger) IQueryService {
	return &queryService{
		runner:    runner,
		publisher: publisher,
		logger:    log,
	}
}

func toInput(requestID string, req *dto.QueryRequest) workflow.Input {
	if requestID == "" {
		requestID = uuid.NewString()
	}
	return workflow.Input{
		RequestID: requestID,
		Query:     req.Query,
		Lat:       req.Latitude,
		Lng:       req.Longitude,
		Mode:      req.Mode,
		Urgency:   req.Urgency,
	}
}

func (s *queryService) Query(ctx context.Context, requestID string, req *dto.QueryRequest) *workflow.Result {
	started := time.Now()
	in := toInput(requestID, req)

	result := s.runner.Run(ctx, in).Result()
	s.publish(ctx, in.Query, result, started)
	return result
}

func (s *queryService) Stream(ctx context.Context, requestID string, req *dto.QueryRequest) <-chan workflow.Event {
	started := time.Now()
	in := toInput(requestID, req)

	out := make(chan workflow.Event, 16)
	go func() {
		defer close(out)

		var final *workflow.Result
		for event := range s.runner.Stream(ctx, in) {
			if r, ok := event.Payload.(*workflow.Result); ok && event.Type == workflow.EventAnswer {
				final = r
			}
			select {
			case out <- event:
			case <-ctx.Done():
			}
		}
		if final != nil {
			s.publish(ctx, in.Query, final, started)
		}
	}()
	return out
}

func (s *queryService) UpdateLocation(ctx context.Context, requestID string, req *dto.LocationUpdateRequest) *workflow.Result {
	started := time.Now()
	in := toInput(requestID, &dto.QueryRequest{
		Query:     fmt.Sprintf("Navigate to %s", req.Destination),
		Latitude:  req.Latitude,
		Longitude: req.Longitude,
		Mode:      req.Mode,
		Urgency:   req.Urgency,
	})
	in.ForcedIntent = workflow.IntentNavigation

	result := s.runner.Run(ctx, in).Result()
	s.publish(ctx, in.Query, result, started)
	return result
}

func (s *queryService) publish(ctx context.Context, query string, result *workflow.Result, started time.Time) {
	if s.publisher == nil {
		return
	}

	event := events.QueryProcessed{
		RequestID:  result.RequestID,
		Query:      query,
		Intent:     string(result.Intent),
		Confidence: string(result.Confidence),
		DurationMs: time.Since(started).Milliseconds(),
		OccurredAt: time.Now().UTC(),
	}
	if result.Error != nil {
		event.ErrorCode = string(result.Error.Code)
	}

	// The event outlives the request.
	if err := s.publisher.PublishQueryProcessed(context.WithoutCancel(ctx), event); err != nil {
		s.logger.Warn("EVENTS", "Failed to publish query event", map[string]interface{}{
			"request_id": event.RequestID,
			"error":      err.Error(),
		})
	}
}
