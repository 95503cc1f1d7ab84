package implementation

import (
	"context"
	"errors"

	"astu-route-be/internal/entity"
	"astu-route-be/internal/mapper"
	"astu-route-be/internal/model"
	"astu-route-be/internal/repository/contract"
	"astu-route-be/internal/repository/specification"
	"astu-route-be/pkg/geo"

	"github.com/pgvector/pgvector-go"
	"gorm.io/gorm"
)

// distanceKmSQL is the haversine distance in km between (?, ?) and a row.
const distanceKmSQL = `6371 * acos(LEAST(1.0, cos(radians(?)) * cos(radians(latitude)) * cos(radians(longitude) - radians(?)) + sin(radians(?)) * sin(radians(latitude))))`

type POIRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.POIMapper
}

func NewPOIRepository(db *gorm.DB) contract.POIRepository {
	return &POIRepositoryImpl{
		db:     db,
		mapper: mapper.NewPOIMapper(),
	}
}

func (r *POIRepositoryImpl) applySpecifications(db *gorm.DB, specs ...specification.Specification) *gorm.DB {
	for _, spec := range specs {
		db = spec.Apply(db)
	}
	return db
}

func (r *POIRepositoryImpl) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.POI, error) {
	var m model.POI
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return r.mapper.ToEntity(&m), nil
}

func (r *POIRepositoryImpl) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.POI, error) {
	var models []*model.POI
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.Find(&models).Error; err != nil {
		return nil, err
	}
	entities := make([]*entity.POI, len(models))
	for i, m := range models {
		entities[i] = r.mapper.ToEntity(m)
	}
	return entities, nil
}

func (r *POIRepositoryImpl) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	var count int64
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	err := query.Model(&model.POI{}).Count(&count).Error
	return count, err
}

func (r *POIRepositoryImpl) SearchSimilar(ctx context.Context, embedding []float32, limit int) ([]*entity.POI, error) {
	if limit <= 0 {
		limit = 5
	}

	// pgvector cosine distance: 1 - distance = cosine similarity
	queryVector := pgvector.NewVector(embedding)
	var results []*model.ScoredPOI

	err := r.db.WithContext(ctx).
		Table("pois").
		Select("pois.*, 1 - (description_embedding <=> ?) AS similarity", queryVector).
		Where("description_embedding IS NOT NULL").
		Order("similarity DESC").
		Limit(limit).
		Scan(&results).Error
	if err != nil {
		return nil, err
	}

	entities := make([]*entity.POI, len(results))
	for i, res := range results {
		entities[i] = r.mapper.ToScoredEntity(res)
	}
	return entities, nil
}

func (r *POIRepositoryImpl) FindNearby(ctx context.Context, center geo.Point, radiusKm float64, limit int, specs ...specification.Specification) ([]*entity.POI, error) {
	if limit <= 0 {
		limit = 10
	}

	var results []*model.ScoredPOI
	query := r.db.WithContext(ctx).
		Table("pois").
		Select("pois.*, "+distanceKmSQL+" AS distance_km", center.Lat, center.Lng, center.Lat).
		Where(distanceKmSQL+" <= ?", center.Lat, center.Lng, center.Lat, radiusKm)
	query = r.applySpecifications(query, specs...)

	if err := query.Order("distance_km ASC").Limit(limit).Scan(&results).Error; err != nil {
		return nil, err
	}

	entities := make([]*entity.POI, len(results))
	for i, res := range results {
		entities[i] = r.mapper.ToScoredEntity(res)
	}
	return entities, nil
}
