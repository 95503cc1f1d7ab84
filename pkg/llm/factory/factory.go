package factory

import (
	"fmt"
	"strings"

	"astu-route-be/pkg/llm"
	"astu-route-be/pkg/llm/anthropic"
	"astu-route-be/pkg/llm/ollama"
	"astu-route-be/pkg/llm/openai"
)

func NewLLMProvider(providerType, modelName, baseURL, apiKey string) (llm.LLMProvider, error) {
	switch strings.ToLower(providerType) {
	case "openai", "gemini":
		return openai.NewOpenAIProvider(apiKey, modelName, baseURL), nil
	case "anthropic", "claude":
		return anthropic.NewAnthropicProvider(apiKey, modelName, baseURL), nil
	case "ollama":
		if baseURL == "" {
			baseURL = "http://localhost:11434"
		}
		return ollama.NewOllamaProvider(baseURL, modelName), nil
	default:
		return nil, fmt.Errorf("unsupported LLM provider: %s", providerType)
	}
}
