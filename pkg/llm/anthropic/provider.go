package anthropic

import (
	"context"
	"fmt"
	"strings"

	"astu-route-be/pkg/llm"

	goanthropic "github.com/liushuangls/go-anthropic/v2"
)

type AnthropicProvider struct {
	client *goanthropic.Client
	model  string
}

var _ llm.StreamingProvider = &AnthropicProvider{}

func NewAnthropicProvider(apiKey, model, baseURL string) *AnthropicProvider {
	var opts []goanthropic.ClientOption
	if baseURL != "" {
		opts = append(opts, goanthropic.WithBaseURL(baseURL))
	}
	return &AnthropicProvider{
		client: goanthropic.NewClient(apiKey, opts...),
		model:  model,
	}
}

// request splits system messages out since the Messages API takes them separately.
func (p *AnthropicProvider) request(history []llm.Message, opts ...llm.Option) goanthropic.MessagesRequest {
	options := llm.ApplyOptions(opts...)

	model := p.model
	if options.Model != "" {
		model = options.Model
	}

	var system []string
	messages := make([]goanthropic.Message, 0, len(history))
	for _, msg := range history {
		switch msg.Role {
		case llm.RoleSystem:
			system = append(system, msg.Content)
		case llm.RoleAssistant, "model":
			messages = append(messages, goanthropic.NewAssistantTextMessage(msg.Content))
		default:
			messages = append(messages, goanthropic.NewUserTextMessage(msg.Content))
		}
	}
	if options.JSON {
		system = append(system, "Respond with a single JSON object and nothing else.")
	}

	temperature := float32(options.Temperature)
	return goanthropic.MessagesRequest{
		Model:       goanthropic.Model(model),
		System:      strings.Join(system, "\n\n"),
		Messages:    messages,
		MaxTokens:   options.MaxTokens,
		Temperature: &temperature,
	}
}

func (p *AnthropicProvider) Chat(ctx context.Context, history []llm.Message, opts ...llm.Option) (string, error) {
	resp, err := p.client.CreateMessages(ctx, p.request(history, opts...))
	if err != nil {
		return "", fmt.Errorf("create messages failed: %w", err)
	}

	var sb strings.Builder
	for _, content := range resp.Content {
		if content.Text != nil {
			sb.WriteString(*content.Text)
		}
	}
	if sb.Len() == 0 {
		return "", llm.ErrEmptyResponse
	}
	return sb.String(), nil
}

func (p *AnthropicProvider) ChatStream(ctx context.Context, history []llm.Message, onChunk func(string) error, opts ...llm.Option) error {
	var chunkErr error
	_, err := p.client.CreateMessagesStream(ctx, goanthropic.MessagesStreamRequest{
		MessagesRequest: p.request(history, opts...),
		OnContentBlockDelta: func(data goanthropic.MessagesEventContentBlockDeltaData) {
			if chunkErr != nil || data.Delta.Text == nil {
				return
			}
			chunkErr = onChunk(*data.Delta.Text)
		},
	})
	if chunkErr != nil {
		return chunkErr
	}
	if err != nil {
		return fmt.Errorf("create messages stream failed: %w", err)
	}
	return nil
}

func (p *AnthropicProvider) Generate(ctx context.Context, prompt string, opts ...llm.Option) (string, error) {
	return p.Chat(ctx, []llm.Message{{Role: llm.RoleUser, Content: prompt}}, opts...)
}
