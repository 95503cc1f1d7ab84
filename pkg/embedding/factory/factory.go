package factory

import (
	"context"
	"fmt"
	"strings"

	"astu-route-be/pkg/embedding"
	"astu-route-be/pkg/embedding/gemini"
	"astu-route-be/pkg/embedding/jina"
	"astu-route-be/pkg/embedding/ollama"
	"astu-route-be/pkg/embedding/voyage"
)

// NewEmbeddingProvider builds a provider bound to one API key. Hosted
// providers without a key return nil so callers skip the embedding tier.
func NewEmbeddingProvider(ctx context.Context, providerType, apiKey, model, baseURL string) (embedding.EmbeddingProvider, error) {
	switch strings.ToLower(providerType) {
	case "voyage":
		if apiKey == "" {
			return nil, nil
		}
		return voyage.NewVoyageProvider(apiKey, model, baseURL), nil
	case "gemini":
		if apiKey == "" {
			return nil, nil
		}
		p, err := gemini.NewGeminiProvider(ctx, apiKey, model)
		if err != nil {
			return nil, err
		}
		return p, nil
	case "jina":
		if apiKey == "" {
			return nil, nil
		}
		return jina.NewJinaProvider(apiKey, model), nil
	case "ollama":
		return ollama.NewOllamaProvider(baseURL, model), nil
	default:
		return nil, fmt.Errorf("unsupported embedding provider: %s", providerType)
	}
}
