package contract

import (
	"context"

	"astu-route-be/internal/entity"
)

type QueryLogRepository interface {
	Create(ctx context.Context, log *entity.QueryLog) error
}
