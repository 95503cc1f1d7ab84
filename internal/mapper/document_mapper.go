package mapper

import (
	"astu-route-be/internal/entity"
	"astu-route-be/internal/model"

	"github.com/pgvector/pgvector-go"
	"gorm.io/datatypes"
)

type DocumentMapper struct{}

func NewDocumentMapper() *DocumentMapper {
	return &DocumentMapper{}
}

func (m *DocumentMapper) ToEntity(d *model.Document) *entity.Document {
	if d == nil {
		return nil
	}
	var embedding []float32
	if d.Embedding != nil {
		embedding = d.Embedding.Slice()
	}
	return &entity.Document{
		Id:        d.Id,
		Title:     d.Title,
		Content:   d.Content,
		Source:    d.Source,
		Tags:      []string(d.Tags),
		Embedding: embedding,
		CreatedAt: d.CreatedAt,
	}
}

func (m *DocumentMapper) ToScoredEntity(d *model.ScoredDocument) *entity.ScoredDocument {
	if d == nil {
		return nil
	}
	return &entity.ScoredDocument{
		Document:   m.ToEntity(&d.Document),
		Similarity: d.Similarity,
	}
}

func (m *DocumentMapper) ToModel(e *entity.Document) *model.Document {
	if e == nil {
		return nil
	}
	var embedding *pgvector.Vector
	if len(e.Embedding) > 0 {
		v := pgvector.NewVector(e.Embedding)
		embedding = &v
	}
	return &model.Document{
		Id:        e.Id,
		Title:     e.Title,
		Content:   e.Content,
		Source:    e.Source,
		Tags:      datatypes.JSONSlice[string](e.Tags),
		Embedding: embedding,
		CreatedAt: e.CreatedAt,
	}
}
