package llm

import (
	"context"
	"fmt"

	"astu-route-be/pkg/metrics"

	"golang.org/x/time/rate"
)

// RateLimitedProvider gates every call on a shared token bucket and records
// call outcomes. Backends without streaming get a single-chunk stream.
type RateLimitedProvider struct {
	inner   LLMProvider
	limiter *rate.Limiter
}

var _ StreamingProvider = &RateLimitedProvider{}

func NewRateLimitedProvider(inner LLMProvider, perSecond float64, burst int) *RateLimitedProvider {
	limit := rate.Limit(perSecond)
	if perSecond <= 0 {
		limit = rate.Inf
	}
	if burst <= 0 {
		burst = 1
	}
	return &RateLimitedProvider{inner: inner, limiter: rate.NewLimiter(limit, burst)}
}

func (p *RateLimitedProvider) wait(ctx context.Context) error {
	if err := p.limiter.Wait(ctx); err != nil {
		metrics.LLMCalls.WithLabelValues("rate_limited").Inc()
		return fmt.Errorf("llm rate limit: %w", err)
	}
	return nil
}

func record(err error) {
	if err != nil {
		metrics.LLMCalls.WithLabelValues("error").Inc()
		return
	}
	metrics.LLMCalls.WithLabelValues("ok").Inc()
}

func (p *RateLimitedProvider) Chat(ctx context.Context, history []Message, opts ...Option) (string, error) {
	if err := p.wait(ctx); err != nil {
		return "", err
	}
	out, err := p.inner.Chat(ctx, history, opts...)
	record(err)
	return out, err
}

func (p *RateLimitedProvider) Generate(ctx context.Context, prompt string, opts ...Option) (string, error) {
	return p.Chat(ctx, []Message{{Role: RoleUser, Content: prompt}}, opts...)
}

func (p *RateLimitedProvider) ChatStream(ctx context.Context, history []Message, onChunk func(string) error, opts ...Option) error {
	if err := p.wait(ctx); err != nil {
		return err
	}

	streamer, ok := p.inner.(StreamingProvider)
	if !ok {
		out, err := p.inner.Chat(ctx, history, opts...)
		record(err)
		if err != nil {
			return err
		}
		return onChunk(out)
	}

	err := streamer.ChatStream(ctx, history, onChunk, opts...)
	record(err)
	return err
}
