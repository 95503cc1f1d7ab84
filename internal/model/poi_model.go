package model

import (
	"time"

	"github.com/pgvector/pgvector-go"
	"gorm.io/datatypes"
)

type POI struct {
	Id                   int64                       `gorm:"primaryKey;autoIncrement"`
	Name                 string                      `gorm:"type:varchar(255);not null;index"`
	Category             string                      `gorm:"type:varchar(100);not null;index"`
	Latitude             float64                     `gorm:"not null"`
	Longitude            float64                     `gorm:"not null"`
	Description          string                      `gorm:"type:text"`
	Building             string                      `gorm:"type:varchar(100)"`
	BlockNum             string                      `gorm:"type:varchar(20)"`
	Floor                *int
	RoomNum              string                      `gorm:"type:varchar(20)"`
	Capacity             *int
	Facilities           datatypes.JSONSlice[string] `gorm:"type:jsonb"`
	Tags                 datatypes.JSONSlice[string] `gorm:"type:jsonb"`
	OsmId                string                      `gorm:"type:varchar(50);index"`
	DescriptionEmbedding *pgvector.Vector            `gorm:"type:vector"`
	CreatedAt            time.Time                   `gorm:"autoCreateTime"`
	UpdatedAt            time.Time                   `gorm:"autoUpdateTime"`
}

func (POI) TableName() string {
	return "pois"
}

// ScoredPOI is the scan target for ranked queries.
type ScoredPOI struct {
	POI
	Similarity *float64
	DistanceKm *float64
}
