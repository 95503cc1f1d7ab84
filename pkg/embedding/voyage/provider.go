package voyage

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"astu-route-be/pkg/embedding"
)

const defaultEndpoint = "https://api.voyageai.com/v1/embeddings"

// VoyageProvider calls the Voyage AI embeddings API. Documents and POIs use
// separate keys, so one provider is built per key.
type VoyageProvider struct {
	apiKey   string
	endpoint string
	model    string
	client   *http.Client
}

var _ embedding.EmbeddingProvider = &VoyageProvider{}

func NewVoyageProvider(apiKey, model, endpoint string) *VoyageProvider {
	if endpoint == "" {
		endpoint = defaultEndpoint
	}
	if model == "" {
		model = "voyage-3-lite"
	}
	return &VoyageProvider{
		apiKey:   apiKey,
		endpoint: endpoint,
		model:    model,
		client:   &http.Client{Timeout: 60 * time.Second},
	}
}

type embeddingRequest struct {
	Input     []string `json:"input"`
	Model     string   `json:"model"`
	InputType string   `json:"input_type,omitempty"`
}

type embeddingResponse struct {
	Data []struct {
		Embedding []float32 `json:"embedding"`
		Index     int       `json:"index"`
	} `json:"data"`
	Detail string `json:"detail,omitempty"`
}

func inputType(taskType string) string {
	if taskType == embedding.TaskRetrievalDocument {
		return "document"
	}
	return "query"
}

func (p *VoyageProvider) Generate(ctx context.Context, text string, taskType string) (*embedding.EmbeddingResponse, error) {
	payload, err := json.Marshal(embeddingRequest{
		Input:     []string{text},
		Model:     p.model,
		InputType: inputType(taskType),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.endpoint, bytes.NewBuffer(payload))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+p.apiKey)

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("voyage request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("voyage api error (status %d): %s", resp.StatusCode, string(body))
	}

	var out embeddingResponse
	if err := json.Unmarshal(body, &out); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}
	if len(out.Data) == 0 || len(out.Data[0].Embedding) == 0 {
		return nil, embedding.ErrNoEmbedding
	}

	return &embedding.EmbeddingResponse{
		Embedding: embedding.EmbeddingResponseEmbedding{Values: out.Data[0].Embedding},
	}, nil
}
