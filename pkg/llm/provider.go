package llm

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
)

const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Message represents a chat message in a provider-agnostic format
type Message struct {
	Role    string // "user", "assistant", "system"
	Content string
}

// Option allows for optional parameters like Temperature, MaxTokens, etc.
type Option func(*Options)

type Options struct {
	Temperature float64
	MaxTokens   int
	Model       string // Override default model
	JSON        bool   // Ask the backend for a JSON object
}

func WithTemperature(temp float64) Option {
	return func(o *Options) {
		o.Temperature = temp
	}
}

func WithModel(model string) Option {
	return func(o *Options) {
		o.Model = model
	}
}

func WithMaxTokens(n int) Option {
	return func(o *Options) {
		o.MaxTokens = n
	}
}

func WithJSON() Option {
	return func(o *Options) {
		o.JSON = true
	}
}

// ApplyOptions resolves options over the package defaults.
func ApplyOptions(opts ...Option) *Options {
	options := &Options{Temperature: 0.7, MaxTokens: 1024}
	for _, opt := range opts {
		opt(options)
	}
	return options
}

// LLMProvider defines the contract for any LLM backend
type LLMProvider interface {
	// Chat sends a chat history to the model and returns the response
	Chat(ctx context.Context, history []Message, options ...Option) (string, error)

	// Generate sends a single prompt to the model (convenience method)
	Generate(ctx context.Context, prompt string, options ...Option) (string, error)
}

// StreamingProvider delivers the response incrementally. Returning an error
// from onChunk stops the stream and is returned to the caller.
type StreamingProvider interface {
	LLMProvider
	ChatStream(ctx context.Context, history []Message, onChunk func(chunk string) error, options ...Option) error
}

var ErrEmptyResponse = errors.New("llm: empty response")

// StripCodeFence removes a surrounding ```json fence from model output.
func StripCodeFence(content string) string {
	content = strings.TrimSpace(content)
	content = strings.TrimPrefix(content, "```json")
	content = strings.TrimPrefix(content, "```JSON")
	content = strings.TrimPrefix(content, "```")
	content = strings.TrimSuffix(content, "```")
	return strings.TrimSpace(content)
}

// DecodeJSON unmarshals a model response, tolerating code fences.
func DecodeJSON(content string, v interface{}) error {
	cleaned := StripCodeFence(content)
	if cleaned == "" {
		return ErrEmptyResponse
	}
	return json.Unmarshal([]byte(cleaned), v)
}
