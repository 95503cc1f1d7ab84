package contract

import (
	"context"

	"astu-route-be/internal/entity"
	"astu-route-be/internal/repository/specification"
)

type DocumentRepository interface {
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Document, error)
	Count(ctx context.Context, specs ...specification.Specification) (int64, error)
	// SearchSimilarWithScore returns documents at or above threshold, best first.
	SearchSimilarWithScore(ctx context.Context, embedding []float32, limit int, threshold float64) ([]*entity.ScoredDocument, error)
}
