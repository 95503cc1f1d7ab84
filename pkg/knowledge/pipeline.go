// Package knowledge answers campus questions from retrieved documents only.
// Anything the model cannot ground in a provided source becomes the fixed
// no-answer reply.
package knowledge

import (
	"context"
	"fmt"
	"time"

	"astu-route-be/internal/apperror"
	"astu-route-be/internal/entity"
	"astu-route-be/internal/pkg/logger"
	"astu-route-be/pkg/llm"
	"astu-route-be/pkg/resolver"

	"github.com/go-playground/validator/v10"
)

const NoAnswerText = "I don't have enough verified ASTU information to answer this accurately."

type Confidence string

const (
	ConfidenceHigh   Confidence = "high"
	ConfidenceMedium Confidence = "medium"
	ConfidenceLow    Confidence = "low"
)

type Source struct {
	ID         string  `json:"id"`
	DocumentID int64   `json:"document_id"`
	Title      string  `json:"title"`
	Similarity float64 `json:"similarity"`
}

type Answer struct {
	Text       string
	Sources    []Source
	Confidence Confidence
	// Grounded is false for the no-answer reply.
	Grounded bool
}

func NoAnswer() *Answer {
	return &Answer{Text: NoAnswerText, Sources: []Source{}, Confidence: ConfidenceLow}
}

// modelAnswer is the JSON object the model must return.
type modelAnswer struct {
	Answer      string   `json:"answer" validate:"required"`
	SourcesUsed []string `json:"sources_used" validate:"required,min=1,dive,required"`
	Confidence  string   `json:"confidence" validate:"required,oneof=high medium low"`
}

type DocumentRetriever interface {
	ResolveDocuments(ctx context.Context, query string, limit int) (*resolver.DocumentResolution, error)
}

type Config struct {
	TopK        int
	Timeout     time.Duration
	Temperature float64
}

type Pipeline struct {
	retriever DocumentRetriever
	llm       llm.LLMProvider
	validate  *validator.Validate
	config    Config
	logger    logger.ILogger
}

func NewPipeline(retriever DocumentRetriever, provider llm.LLMProvider, config Config, log logger.ILogger) *Pipeline {
	if config.TopK <= 0 {
		config.TopK = 5
	}
	if config.Timeout <= 0 {
		config.Timeout = 30 * time.Second
	}
	if config.Temperature == 0 {
		config.Temperature = 0.2
	}
	return &Pipeline{
		retriever: retriever,
		llm:       provider,
		validate:  validator.New(),
		config:    config,
		logger:    log,
	}
}

// Retrieve returns up to topK documents ranked by relevance. A non-positive
// topK uses the configured default.
func (p *Pipeline) Retrieve(ctx context.Context, query string, topK int) ([]*entity.ScoredDocument, error) {
	if topK <= 0 {
		topK = p.config.TopK
	}
	res, err := p.retriever.ResolveDocuments(ctx, query, topK)
	if err != nil {
		return nil, err
	}
	p.logger.Info("KNOWLEDGE", "Documents retrieved", map[string]interface{}{
		"count": len(res.Documents),
		"tier":  string(res.Tier),
	})
	return res.Documents, nil
}

// Generate answers query from docs. With no documents it returns the
// no-answer reply without calling the model. On any model or validation
// failure it returns the no-answer reply together with an AI service error.
func (p *Pipeline) Generate(ctx context.Context, query string, docs []*entity.ScoredDocument) (*Answer, error) {
	if len(docs) == 0 {
		return NoAnswer(), nil
	}
	if p.llm == nil {
		return NoAnswer(), apperror.AIService("llm", fmt.Errorf("no generation provider configured"))
	}

	genCtx, cancel := context.WithTimeout(ctx, p.config.Timeout)
	defer cancel()

	raw, err := p.llm.Chat(genCtx, []llm.Message{
		{Role: llm.RoleSystem, Content: systemPrompt},
		{Role: llm.RoleUser, Content: buildUserPrompt(query, docs)},
	}, llm.WithTemperature(p.config.Temperature), llm.WithJSON())
	if err != nil {
		return NoAnswer(), apperror.AIService("llm", err)
	}

	answer, err := p.parse(raw, docs)
	if err != nil {
		p.logger.Warn("KNOWLEDGE", "Rejected model answer", map[string]interface{}{
			"error":    err.Error(),
			"response": truncate(raw, 300),
		})
		return NoAnswer(), apperror.AIService("llm", err)
	}
	return answer, nil
}

// Answer runs retrieval and generation back to back.
func (p *Pipeline) Answer(ctx context.Context, query string) (*Answer, error) {
	docs, err := p.Retrieve(ctx, query, 0)
	if err != nil {
		return NoAnswer(), err
	}
	return p.Generate(ctx, query, docs)
}

func (p *Pipeline) parse(raw string, docs []*entity.ScoredDocument) (*Answer, error) {
	var out modelAnswer
	if err := llm.DecodeJSON(raw, &out); err != nil {
		return nil, fmt.Errorf("decode answer: %w", err)
	}
	if err := p.validate.Struct(out); err != nil {
		return nil, fmt.Errorf("validate answer: %w", err)
	}

	known := make(map[string]*entity.ScoredDocument, len(docs))
	for i, d := range docs {
		known[sourceID(i)] = d
	}

	sources := make([]Source, 0, len(out.SourcesUsed))
	seen := make(map[string]struct{})
	for _, id := range out.SourcesUsed {
		doc, ok := known[id]
		if !ok {
			return nil, fmt.Errorf("answer cites unknown source %q", id)
		}
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		sources = append(sources, Source{
			ID:         id,
			DocumentID: doc.Document.Id,
			Title:      doc.Document.Title,
			Similarity: doc.Similarity,
		})
	}

	return &Answer{
		Text:       out.Answer,
		Sources:    sources,
		Confidence: Confidence(out.Confidence),
		Grounded:   true,
	}, nil
}

// Titles lists source titles in citation order.
func (a *Answer) Titles() []string {
	titles := make([]string, 0, len(a.Sources))
	for _, s := range a.Sources {
		titles = append(titles, s.Title)
	}
	return titles
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
