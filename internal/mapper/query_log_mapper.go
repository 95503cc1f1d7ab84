package mapper

import (
	"astu-route-be/internal/entity"
	"astu-route-be/internal/model"
)

type QueryLogMapper struct{}

func NewQueryLogMapper() *QueryLogMapper {
	return &QueryLogMapper{}
}

func (m *QueryLogMapper) ToModel(e *entity.QueryLog) *model.QueryLog {
	if e == nil {
		return nil
	}
	return &model.QueryLog{
		Id:         e.Id,
		RequestId:  e.RequestId,
		Query:      e.Query,
		Intent:     e.Intent,
		Confidence: e.Confidence,
		ErrorCode:  e.ErrorCode,
		DurationMs: e.DurationMs,
		CreatedAt:  e.CreatedAt,
	}
}

func (m *QueryLogMapper) ToEntity(q *model.QueryLog) *entity.QueryLog {
	if q == nil {
		return nil
	}
	return &entity.QueryLog{
		Id:         q.Id,
		RequestId:  q.RequestId,
		Query:      q.Query,
		Intent:     q.Intent,
		Confidence: q.Confidence,
		ErrorCode:  q.ErrorCode,
		DurationMs: q.DurationMs,
		CreatedAt:  q.CreatedAt,
	}
}
