package model

import (
	"time"

	"github.com/google/uuid"
)

type QueryLog struct {
	Id         uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	RequestId  string    `gorm:"type:varchar(64);index"`
	Query      string    `gorm:"type:text"`
	Intent     string    `gorm:"type:varchar(32);index"`
	Confidence string    `gorm:"type:varchar(16)"`
	ErrorCode  string    `gorm:"type:varchar(32)"`
	DurationMs int64
	CreatedAt  time.Time `gorm:"autoCreateTime"`
}

func (QueryLog) TableName() string {
	return "query_logs"
}
