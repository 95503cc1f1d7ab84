package specification

import (
	"strings"

	"gorm.io/gorm"
)

// DocumentTextSearch is the lexical fallback over title, content and tags.
type DocumentTextSearch struct {
	Query string
}

func (s DocumentTextSearch) Apply(db *gorm.DB) *gorm.DB {
	pattern := "%" + strings.TrimSpace(s.Query) + "%"
	return db.Where("(title ILIKE ? OR content ILIKE ? OR tags::text ILIKE ?)", pattern, pattern, pattern)
}
