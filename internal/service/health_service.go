package service

import (
	"context"
	"time"

	"astu-route-be/internal/dto"
	"astu-route-be/pkg/cache"
)

const (
	StatusHealthy   = "healthy"
	StatusDegraded  = "degraded"
	StatusUnhealthy = "unhealthy"

	healthCheckTimeout = 3 * time.Second
)

const (
	serviceName    = "ASTU Route AI"
	serviceVersion = "1.0.0"
)

// AIInfo describes the configured model backends.
type AIInfo struct {
	LLMProvider       string
	LLMModel          string
	LLMReady          bool
	EmbeddingProvider string
	EmbeddingModel    string
	EmbeddingReady    bool
}

type IHealthService interface {
	Health(ctx context.Context) *dto.HealthResponse
	Database(ctx context.Context) *dto.ComponentHealth
	AI(ctx context.Context) *dto.ComponentHealth
	Cache(ctx context.Context) *dto.ComponentHealth
}

type healthService struct {
	pingDB func(ctx context.Context) error
	cache  cache.Cache
	ai     AIInfo
}

func NewHealthService(pingDB func(ctx context.Context) error, c cache.Cache, ai AIInfo) IHealthService {
	return &healthService{pingDB: pingDB, cache: c, ai: ai}
}

func (s *healthService) Health(ctx context.Context) *dto.HealthResponse {
	return &dto.HealthResponse{
		Status:  StatusHealthy,
		Service: serviceName,
		Version: serviceVersion,
	}
}

func timed(ctx context.Context, check func(ctx context.Context) error) (time.Duration, error) {
	ctx, cancel := context.WithTimeout(ctx, healthCheckTimeout)
	defer cancel()
	start := time.Now()
	err := check(ctx)
	return time.Since(start), err
}

func (s *healthService) Database(ctx context.Context) *dto.ComponentHealth {
	elapsed, err := timed(ctx, s.pingDB)
	h := &dto.ComponentHealth{Status: StatusHealthy, LatencyMs: elapsed.Milliseconds()}
	if err != nil {
		h.Status = StatusUnhealthy
		h.Detail = err.Error()
	}
	return h
}

func (s *healthService) AI(ctx context.Context) *dto.ComponentHealth {
	h := &dto.ComponentHealth{
		Status: StatusHealthy,
		Info: map[string]interface{}{
			"llm_provider":       s.ai.LLMProvider,
			"llm_model":          s.ai.LLMModel,
			"embedding_provider": s.ai.EmbeddingProvider,
			"embedding_model":    s.ai.EmbeddingModel,
		},
	}
	switch {
	case !s.ai.LLMReady && !s.ai.EmbeddingReady:
		h.Status = StatusUnhealthy
		h.Detail = "no model backend configured"
	case !s.ai.LLMReady:
		h.Status = StatusDegraded
		h.Detail = "LLM unavailable, using keyword intent rules"
	case !s.ai.EmbeddingReady:
		h.Status = StatusDegraded
		h.Detail = "embeddings unavailable, using category and lexical search"
	}
	return h
}

func (s *healthService) Cache(ctx context.Context) *dto.ComponentHealth {
	elapsed, err := timed(ctx, s.cache.Ping)
	h := &dto.ComponentHealth{
		Status:    StatusHealthy,
		LatencyMs: elapsed.Milliseconds(),
		Info:      map[string]interface{}{"backend": s.cache.Backend()},
	}
	if err != nil {
		h.Status = StatusUnhealthy
		h.Detail = err.Error()
	}
	return h
}
