package analytics

import (
	"context"
	"time"

	"placement/internal/common"
)

type Event struct {
	ID        common.UUID       `json:"id"`
	Name      string            `json:"name"`
	UserID    *common.UUID      `json:"user_id,omitempty"`
	Payload   map[string]string `json:"payload,omitempty"`
	CreatedAt time.Time         `json:"created_at"`
}

type Repository interface {
	Create(ctx context.Context, event Event) error
}

// Multi fans an event out to every repository and returns the first error.
type Multi []Repository

func (m Multi) Create(ctx context.Context, event Event) error {
	var first error
	for _, repo := range m {
		if repo == nil {
			continue
		}
		if err := repo.Create(ctx, event); err != nil && first == nil {
			first = err
		}
	}
	return first
}
