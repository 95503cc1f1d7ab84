package contract

import (
	"context"

	"astu-route-be/internal/entity"
	"astu-route-be/internal/repository/specification"
	"astu-route-be/pkg/geo"
)

type POIRepository interface {
	FindOne(ctx context.Context, specs ...specification.Specification) (*entity.POI, error)
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.POI, error)
	Count(ctx context.Context, specs ...specification.Specification) (int64, error)
	// SearchSimilar ranks POIs by cosine similarity to the embedding. No cutoff.
	SearchSimilar(ctx context.Context, embedding []float32, limit int) ([]*entity.POI, error)
	// FindNearby returns POIs within radiusKm of center, nearest first, with DistanceKm set.
	FindNearby(ctx context.Context, center geo.Point, radiusKm float64, limit int, specs ...specification.Specification) ([]*entity.POI, error)
}
