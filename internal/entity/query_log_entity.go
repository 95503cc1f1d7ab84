package entity

import (
	"time"

	"github.com/google/uuid"
)

type QueryLog struct {
	Id         uuid.UUID
	RequestId  string
	Query      string
	Intent     string
	Confidence string
	ErrorCode  string
	DurationMs int64
	CreatedAt  time.Time
}
