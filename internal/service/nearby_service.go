package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"astu-route-be/internal/apperror"
	"astu-route-be/internal/dto"
	"astu-route-be/internal/entity"
	"astu-route-be/internal/pkg/logger"
	"astu-route-be/internal/repository/contract"
	"astu-route-be/internal/repository/specification"
	"astu-route-be/pkg/cache"
	"astu-route-be/pkg/geo"
	"astu-route-be/pkg/resolver"
)

const nearbyCacheTTL = 5 * time.Minute

type NearbyDefaults struct {
	Center   geo.Point
	RadiusKm float64
	Limit    int
}

type INearbyService interface {
	// FindNearby returns POIs within radiusKm of center, nearest first. An
	// empty category matches every POI.
	FindNearby(ctx context.Context, center geo.Point, category string, radiusKm float64, limit int) ([]*entity.POI, error)
	Search(ctx context.Context, req *dto.NearbyRequest) (*dto.NearbyResponse, error)
	Categories() *dto.CategoriesResponse
}

type nearbyService struct {
	pois     contract.POIRepository
	cache    cache.Cache
	defaults NearbyDefaults
	logger   logger.ILogger
}

func NewNearbyService(pois contract.POIRepository, c cache.Cache, defaults NearbyDefaults, log logger.ILogger) INearbyService {
	return &nearbyService{
		pois:     pois,
		cache:    c,
		defaults: defaults,
		logger:   log,
	}
}

func (s *nearbyService) FindNearby(ctx context.Context, center geo.Point, category string, radiusKm float64, limit int) ([]*entity.POI, error) {
	category = strings.ToLower(strings.TrimSpace(category))
	key := cache.Key("nearby",
		fmt.Sprintf("%.4f,%.4f", center.Lat, center.Lng),
		category,
		fmt.Sprintf("%.2f", radiusKm),
		fmt.Sprint(limit),
	)

	var cached []*entity.POI
	if s.cache != nil && s.cache.Get(ctx, key, &cached) {
		return cached, nil
	}

	var specs []specification.Specification
	if category != "" {
		specs = append(specs, specification.ServiceKeyword{Keyword: category})
	}
	pois, err := s.pois.FindNearby(ctx, center, radiusKm, limit, specs...)
	if err != nil {
		return nil, apperror.Database("nearby search", err)
	}

	s.logger.Debug("GEO", "Nearby search", map[string]interface{}{
		"category":  category,
		"radius_km": radiusKm,
		"found":     len(pois),
	})
	if s.cache != nil {
		s.cache.Set(ctx, key, pois, nearbyCacheTTL)
	}
	return pois, nil
}

func (s *nearbyService) Search(ctx context.Context, req *dto.NearbyRequest) (*dto.NearbyResponse, error) {
	category := strings.ToLower(strings.TrimSpace(req.Category))
	if category != "" && !resolver.IsServiceCategory(category) {
		return nil, apperror.Validation(fmt.Sprintf("Unknown category %q", req.Category)).WithDetails(map[string]interface{}{
			"categories": resolver.ServiceCategories,
		})
	}

	center := s.defaults.Center
	if req.Latitude != nil && req.Longitude != nil {
		center = geo.NewPoint(*req.Latitude, *req.Longitude)
	}
	radius := req.RadiusKm
	if radius <= 0 {
		radius = s.defaults.RadiusKm
	}
	limit := req.Limit
	if limit <= 0 {
		limit = s.defaults.Limit
	}

	pois, err := s.FindNearby(ctx, center, category, radius, limit)
	if err != nil {
		return nil, err
	}

	results := make([]dto.NearbyPOI, 0, len(pois))
	for _, p := range pois {
		results = append(results, dto.NearbyPOI{
			Id:          p.Id,
			Name:        p.Name,
			Category:    p.Category,
			Latitude:    p.Latitude,
			Longitude:   p.Longitude,
			Description: p.Description,
			DistanceKm:  p.DistanceKm,
		})
	}
	return &dto.NearbyResponse{
		Category:  category,
		Latitude:  center.Lat,
		Longitude: center.Lng,
		RadiusKm:  radius,
		Count:     len(results),
		Results:   results,
	}, nil
}

func (s *nearbyService) Categories() *dto.CategoriesResponse {
	return &dto.CategoriesResponse{Categories: resolver.ServiceCategories}
}
