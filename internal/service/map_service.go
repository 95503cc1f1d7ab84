package service

import (
	"context"
	"time"

	"astu-route-be/internal/apperror"
	"astu-route-be/internal/dto"
	"astu-route-be/internal/pkg/logger"
	"astu-route-be/internal/repository/contract"
	"astu-route-be/internal/repository/specification"
	"astu-route-be/pkg/cache"
	"astu-route-be/pkg/geo"
	"astu-route-be/pkg/resolver"
	"astu-route-be/pkg/routing"
)

const (
	mapCacheTTL      = 10 * time.Minute
	boundaryVertices = 24
)

type IMapService interface {
	Campus(ctx context.Context) (*dto.CampusMapResponse, error)
}

type mapService struct {
	pois   contract.POIRepository
	cache  cache.Cache
	region routing.Region
	logger logger.ILogger
}

func NewMapService(pois contract.POIRepository, c cache.Cache, region routing.Region, log logger.ILogger) IMapService {
	return &mapService{
		pois:   pois,
		cache:  c,
		region: region,
		logger: log,
	}
}

func (s *mapService) Campus(ctx context.Context) (*dto.CampusMapResponse, error) {
	pois, err := s.campusPOIs(ctx)
	if err != nil {
		return nil, err
	}

	ring := geo.Circle(s.region.Center, s.region.RadiusMeters, boundaryVertices)
	boundary := make([][2]float64, 0, len(ring))
	for _, p := range ring {
		boundary = append(boundary, p.Pair())
	}

	return &dto.CampusMapResponse{
		Center:       s.region.Center.Pair(),
		RadiusMeters: s.region.RadiusMeters,
		Boundary:     boundary,
		POIs:         pois,
		Categories:   resolver.ServiceCategories,
	}, nil
}

func (s *mapService) campusPOIs(ctx context.Context) ([]dto.MapPOI, error) {
	key := cache.Key("map", "campus")

	var cached []dto.MapPOI
	if s.cache != nil && s.cache.Get(ctx, key, &cached) {
		return cached, nil
	}

	pois, err := s.pois.FindAll(ctx, specification.OrderBy{Field: "name"})
	if err != nil {
		return nil, apperror.Database("campus map", err)
	}

	out := make([]dto.MapPOI, 0, len(pois))
	for _, p := range pois {
		out = append(out, dto.MapPOI{
			Id:          p.Id,
			Name:        p.Name,
			Category:    p.Category,
			Latitude:    p.Latitude,
			Longitude:   p.Longitude,
			Description: p.Description,
			Building:    p.Building,
			BlockNum:    p.BlockNum,
			Facilities:  p.Facilities,
		})
	}

	s.logger.Info("GEO", "Campus map loaded", map[string]interface{}{"pois": len(out)})
	if s.cache != nil {
		s.cache.Set(ctx, key, out, mapCacheTTL)
	}
	return out, nil
}
