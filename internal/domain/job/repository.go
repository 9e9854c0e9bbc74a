package job

import (
	"context"
	"time"

	"placement/internal/common"
)

type Filter struct {
	Status     Status
	Type       Type
	Department string
	// Now anchors the deadline when filtering by effective status.
	Now        time.Time
	Limit      int
	Offset     int
}

type Repository interface {
	Create(ctx context.Context, item Job) (*Job, error)
	Update(ctx context.Context, item Job) (*Job, error)
	Delete(ctx context.Context, id common.UUID) error
	GetByID(ctx context.Context, id common.UUID) (*Job, error)
	List(ctx context.Context, filter Filter) ([]Job, error)
}
