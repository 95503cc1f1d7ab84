// Package resolver turns free-text place and topic mentions into stored
// entities. Each lookup walks a fixed chain of tiers (embedding, category
// rules, lexical match) and stops at the first tier that returns anything.
package resolver

import (
	"context"
	"errors"
	"strings"
	"time"

	"astu-route-be/internal/apperror"
	"astu-route-be/internal/entity"
	"astu-route-be/internal/pkg/logger"
	"astu-route-be/internal/repository/contract"
	"astu-route-be/internal/repository/specification"
	"astu-route-be/pkg/cache"
	"astu-route-be/pkg/embedding"
	"astu-route-be/pkg/metrics"
)

type Tier string

const (
	TierEmbedding Tier = "embedding"
	TierCategory  Tier = "category"
	TierLexical   Tier = "lexical"
	TierNone      Tier = "none"
)

const embeddingCacheTTL = 30 * time.Minute

// errTierSkipped marks a tier that could not run, as opposed to one that failed.
var errTierSkipped = errors.New("resolver: tier skipped")

type POIResolution struct {
	POIs []*entity.POI
	Tier Tier
}

func (r *POIResolution) First() *entity.POI {
	if r == nil || len(r.POIs) == 0 {
		return nil
	}
	return r.POIs[0]
}

type DocumentResolution struct {
	Documents []*entity.ScoredDocument
	Tier      Tier
}

type Config struct {
	// EmbedTimeout bounds a single embedding call.
	EmbedTimeout time.Duration
	// MinDocumentSimilarity is the cutoff for the document embedding tier.
	MinDocumentSimilarity float64
}

type Resolver struct {
	pois        contract.POIRepository
	documents   contract.DocumentRepository
	poiEmbedder embedding.EmbeddingProvider
	docEmbedder embedding.EmbeddingProvider
	cache       cache.Cache
	config      Config
	logger      logger.ILogger
}

// New builds a resolver. Either embedder and the cache may be nil; the
// embedding tier is then skipped and lookups go straight to the rule tiers.
func New(
	pois contract.POIRepository,
	documents contract.DocumentRepository,
	poiEmbedder embedding.EmbeddingProvider,
	docEmbedder embedding.EmbeddingProvider,
	c cache.Cache,
	config Config,
	log logger.ILogger,
) *Resolver {
	if config.EmbedTimeout <= 0 {
		config.EmbedTimeout = 10 * time.Second
	}
	return &Resolver{
		pois:        pois,
		documents:   documents,
		poiEmbedder: poiEmbedder,
		docEmbedder: docEmbedder,
		cache:       c,
		config:      config,
		logger:      log,
	}
}

type tier[T any] struct {
	name   Tier
	search func(ctx context.Context, query string, limit int) ([]T, error)
}

// runTiers returns the first non-empty tier result. It only fails when every
// tier that actually ran returned an error.
func runTiers[T any](ctx context.Context, log logger.ILogger, kind string, tiers []tier[T], query string, limit int) ([]T, Tier, error) {
	var (
		ran     int
		failed  int
		lastErr error
	)
	for _, t := range tiers {
		if err := ctx.Err(); err != nil {
			return nil, TierNone, err
		}
		results, err := t.search(ctx, query, limit)
		if errors.Is(err, errTierSkipped) {
			continue
		}
		ran++
		if err != nil {
			failed++
			lastErr = err
			log.Warn("RESOLVER", "Tier failed", map[string]interface{}{
				"kind":  kind,
				"tier":  string(t.name),
				"error": err.Error(),
			})
			continue
		}
		if len(results) > 0 {
			metrics.ResolverTierHits.WithLabelValues(kind, string(t.name)).Inc()
			log.Debug("RESOLVER", "Resolved", map[string]interface{}{
				"kind":    kind,
				"tier":    string(t.name),
				"query":   query,
				"matches": len(results),
			})
			return results, t.name, nil
		}
	}

	if ran > 0 && failed == ran {
		return nil, TierNone, apperror.VectorSearch(lastErr)
	}
	metrics.ResolverTierHits.WithLabelValues(kind, string(TierNone)).Inc()
	return nil, TierNone, nil
}

// ResolvePOIs finds up to limit POIs for a place mention.
func (r *Resolver) ResolvePOIs(ctx context.Context, query string, limit int) (*POIResolution, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return &POIResolution{Tier: TierNone}, nil
	}
	if limit <= 0 {
		limit = 1
	}

	tiers := []tier[*entity.POI]{
		{name: TierEmbedding, search: r.poiEmbeddingTier},
		{name: TierCategory, search: r.poiCategoryTier},
		{name: TierLexical, search: r.poiLexicalTier},
	}
	pois, t, err := runTiers(ctx, r.logger, "poi", tiers, query, limit)
	if err != nil {
		return nil, err
	}
	return &POIResolution{POIs: pois, Tier: t}, nil
}

// ResolveDocuments finds up to limit knowledge documents for a question.
// There is no category tier for documents.
func (r *Resolver) ResolveDocuments(ctx context.Context, query string, limit int) (*DocumentResolution, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return &DocumentResolution{Tier: TierNone}, nil
	}
	if limit <= 0 {
		limit = 5
	}

	tiers := []tier[*entity.ScoredDocument]{
		{name: TierEmbedding, search: r.documentEmbeddingTier},
		{name: TierLexical, search: r.documentLexicalTier},
	}
	docs, t, err := runTiers(ctx, r.logger, "document", tiers, query, limit)
	if err != nil {
		return nil, err
	}
	return &DocumentResolution{Documents: docs, Tier: t}, nil
}

func (r *Resolver) embed(ctx context.Context, provider embedding.EmbeddingProvider, kind, query string) ([]float32, error) {
	if provider == nil {
		return nil, errTierSkipped
	}

	key := cache.Key("embedding", kind, query)
	if r.cache != nil {
		var cached []float32
		if r.cache.Get(ctx, key, &cached) && len(cached) > 0 {
			return cached, nil
		}
	}

	embedCtx, cancel := context.WithTimeout(ctx, r.config.EmbedTimeout)
	defer cancel()

	res, err := provider.Generate(embedCtx, query, embedding.TaskRetrievalQuery)
	if err == nil && (res == nil || len(res.Embedding.Values) == 0) {
		err = embedding.ErrNoEmbedding
	}
	if err != nil {
		// An unavailable embedder demotes the lookup to the rule tiers.
		r.logger.Warn("RESOLVER", "Embedding unavailable", map[string]interface{}{
			"kind":  kind,
			"error": err.Error(),
		})
		return nil, errTierSkipped
	}

	if r.cache != nil {
		r.cache.Set(ctx, key, res.Embedding.Values, embeddingCacheTTL)
	}
	return res.Embedding.Values, nil
}

func (r *Resolver) poiEmbeddingTier(ctx context.Context, query string, limit int) ([]*entity.POI, error) {
	vector, err := r.embed(ctx, r.poiEmbedder, "poi", query)
	if err != nil {
		return nil, err
	}
	return r.pois.SearchSimilar(ctx, vector, limit)
}

func (r *Resolver) poiCategoryTier(ctx context.Context, query string, limit int) ([]*entity.POI, error) {
	candidates := CategoryCandidates(query)
	if len(candidates) == 0 {
		return nil, errTierSkipped
	}

	var lastErr error
	for _, category := range candidates {
		pois, err := r.pois.FindAll(ctx,
			specification.ByCategoryKeyword{Keyword: category},
			specification.OrderBy{Field: "name"},
			specification.Limit(limit),
		)
		if err != nil {
			lastErr = err
			continue
		}
		if len(pois) > 0 {
			return pois, nil
		}
	}
	return nil, lastErr
}

func (r *Resolver) poiLexicalTier(ctx context.Context, query string, limit int) ([]*entity.POI, error) {
	return r.pois.FindAll(ctx,
		specification.POITextSearch{Query: query},
		specification.OrderBy{Field: "name"},
		specification.Limit(limit),
	)
}

func (r *Resolver) documentEmbeddingTier(ctx context.Context, query string, limit int) ([]*entity.ScoredDocument, error) {
	vector, err := r.embed(ctx, r.docEmbedder, "document", query)
	if err != nil {
		return nil, err
	}
	return r.documents.SearchSimilarWithScore(ctx, vector, limit, r.config.MinDocumentSimilarity)
}

func (r *Resolver) documentLexicalTier(ctx context.Context, query string, limit int) ([]*entity.ScoredDocument, error) {
	docs, err := r.documents.FindAll(ctx,
		specification.DocumentTextSearch{Query: query},
		specification.Limit(limit),
	)
	if err != nil {
		return nil, err
	}
	scored := make([]*entity.ScoredDocument, 0, len(docs))
	for _, d := range docs {
		scored = append(scored, &entity.ScoredDocument{Document: d})
	}
	return scored, nil
}
