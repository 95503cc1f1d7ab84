// Package mocks holds testify mocks of the repository contracts.
package mocks

import (
	"context"

	"astu-route-be/internal/entity"
	"astu-route-be/internal/repository/specification"
	"astu-route-be/pkg/geo"

	"github.com/stretchr/testify/mock"
)

type POIRepository struct {
	mock.Mock
}

func (m *POIRepository) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.POI, error) {
	args := m.Called(ctx, specs)
	poi, _ := args.Get(0).(*entity.POI)
	return poi, args.Error(1)
}

func (m *POIRepository) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.POI, error) {
	args := m.Called(ctx, specs)
	pois, _ := args.Get(0).([]*entity.POI)
	return pois, args.Error(1)
}

func (m *POIRepository) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	args := m.Called(ctx, specs)
	return args.Get(0).(int64), args.Error(1)
}

func (m *POIRepository) SearchSimilar(ctx context.Context, embedding []float32, limit int) ([]*entity.POI, error) {
	args := m.Called(ctx, embedding, limit)
	pois, _ := args.Get(0).([]*entity.POI)
	return pois, args.Error(1)
}

func (m *POIRepository) FindNearby(ctx context.Context, center geo.Point, radiusKm float64, limit int, specs ...specification.Specification) ([]*entity.POI, error) {
	args := m.Called(ctx, center, radiusKm, limit, specs)
	pois, _ := args.Get(0).([]*entity.POI)
	return pois, args.Error(1)
}

type DocumentRepository struct {
	mock.Mock
}

func (m *DocumentRepository) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Document, error) {
	args := m.Called(ctx, specs)
	docs, _ := args.Get(0).([]*entity.Document)
	return docs, args.Error(1)
}

func (m *DocumentRepository) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	args := m.Called(ctx, specs)
	return args.Get(0).(int64), args.Error(1)
}

func (m *DocumentRepository) SearchSimilarWithScore(ctx context.Context, embedding []float32, limit int, threshold float64) ([]*entity.ScoredDocument, error) {
	args := m.Called(ctx, embedding, limit, threshold)
	docs, _ := args.Get(0).([]*entity.ScoredDocument)
	return docs, args.Error(1)
}

type QueryLogRepository struct {
	mock.Mock
}

func (m *QueryLogRepository) Create(ctx context.Context, log *entity.QueryLog) error {
	return m.Called(ctx, log).Error(0)
}

// HasSpec matches a spec list holding a T accepted by match. A nil match
// accepts any T.
func HasSpec[T specification.Specification](match func(T) bool) interface{} {
	return mock.MatchedBy(func(specs []specification.Specification) bool {
		for _, s := range specs {
			if v, ok := s.(T); ok && (match == nil || match(v)) {
				return true
			}
		}
		return false
	})
}
