package specification

import (
	"strings"

	"gorm.io/gorm"
)

// ByCategoryKeyword matches a category exactly or as a substring, ignoring case.
type ByCategoryKeyword struct {
	Keyword string
}

func (s ByCategoryKeyword) Apply(db *gorm.DB) *gorm.DB {
	kw := strings.ToLower(strings.TrimSpace(s.Keyword))
	return db.Where("(LOWER(category) = ? OR category ILIKE ?)", kw, "%"+kw+"%")
}

// ServiceKeyword narrows nearby searches to POIs whose category or name
// mentions the requested service.
type ServiceKeyword struct {
	Keyword string
}

func (s ServiceKeyword) Apply(db *gorm.DB) *gorm.DB {
	pattern := "%" + strings.TrimSpace(s.Keyword) + "%"
	return db.Where("(category ILIKE ? OR name ILIKE ?)", pattern, pattern)
}

// POITextSearch is the lexical fallback over name, category and description.
type POITextSearch struct {
	Query string
}

func (s POITextSearch) Apply(db *gorm.DB) *gorm.DB {
	pattern := "%" + strings.TrimSpace(s.Query) + "%"
	return db.Where("(name ILIKE ? OR category ILIKE ? OR description ILIKE ?)", pattern, pattern, pattern)
}

type HasEmbedding struct{}

func (s HasEmbedding) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("description_embedding IS NOT NULL")
}
