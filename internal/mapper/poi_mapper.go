package mapper

import (
	"astu-route-be/internal/entity"
	"astu-route-be/internal/model"

	"github.com/pgvector/pgvector-go"
	"gorm.io/datatypes"
)

type POIMapper struct{}

func NewPOIMapper() *POIMapper {
	return &POIMapper{}
}

func (m *POIMapper) ToEntity(p *model.POI) *entity.POI {
	if p == nil {
		return nil
	}

	var embedding []float32
	if p.DescriptionEmbedding != nil {
		embedding = p.DescriptionEmbedding.Slice()
	}

	e := &entity.POI{
		Id:          p.Id,
		Name:        p.Name,
		Category:    p.Category,
		Latitude:    p.Latitude,
		Longitude:   p.Longitude,
		Description: p.Description,
		Building:    p.Building,
		BlockNum:    p.BlockNum,
		Floor:       p.Floor,
		RoomNum:     p.RoomNum,
		Capacity:    p.Capacity,
		Facilities:  []string(p.Facilities),
		Tags:        []string(p.Tags),
		OsmId:       p.OsmId,
		Embedding:   embedding,
		CreatedAt:   p.CreatedAt,
	}
	if !p.UpdatedAt.IsZero() {
		t := p.UpdatedAt
		e.UpdatedAt = &t
	}
	return e
}

func (m *POIMapper) ToScoredEntity(p *model.ScoredPOI) *entity.POI {
	if p == nil {
		return nil
	}
	e := m.ToEntity(&p.POI)
	e.Similarity = p.Similarity
	e.DistanceKm = p.DistanceKm
	return e
}

func (m *POIMapper) ToModel(e *entity.POI) *model.POI {
	if e == nil {
		return nil
	}

	var embedding *pgvector.Vector
	if len(e.Embedding) > 0 {
		v := pgvector.NewVector(e.Embedding)
		embedding = &v
	}

	return &model.POI{
		Id:                   e.Id,
		Name:                 e.Name,
		Category:             e.Category,
		Latitude:             e.Latitude,
		Longitude:            e.Longitude,
		Description:          e.Description,
		Building:             e.Building,
		BlockNum:             e.BlockNum,
		Floor:                e.Floor,
		RoomNum:              e.RoomNum,
		Capacity:             e.Capacity,
		Facilities:           datatypes.JSONSlice[string](e.Facilities),
		Tags:                 datatypes.JSONSlice[string](e.Tags),
		OsmId:                e.OsmId,
		DescriptionEmbedding: embedding,
		CreatedAt:            e.CreatedAt,
	}
}
