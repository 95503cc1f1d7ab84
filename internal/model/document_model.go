package model

import (
	"time"

	"github.com/pgvector/pgvector-go"
	"gorm.io/datatypes"
)

type Document struct {
	Id        int64                       `gorm:"primaryKey;autoIncrement"`
	Title     string                      `gorm:"type:varchar(500);not null"`
	Content   string                      `gorm:"type:text;not null"`
	Source    string                      `gorm:"type:varchar(500)"`
	Tags      datatypes.JSONSlice[string] `gorm:"type:jsonb"`
	Embedding *pgvector.Vector            `gorm:"type:vector(768)"`
	CreatedAt time.Time                   `gorm:"autoCreateTime"`
}

func (Document) TableName() string {
	return "documents"
}

type ScoredDocument struct {
	Document
	Similarity float64
}
