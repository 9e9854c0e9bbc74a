package message

import (
	"context"
	"time"

	"placement/internal/common"
)

type Category string

const (
	CategoryAnnouncement Category = "announcement"
	CategoryNotification Category = "notification"
	CategoryAlert        Category = "alert"
)

type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
)

type Message struct {
	ID          common.UUID `json:"id"`
	Title       string      `json:"title"`
	Content     string      `json:"content"`
	Departments []string    `json:"departments"`
	Category    Category    `json:"category"`
	Priority    Priority    `json:"priority"`
	Pinned      bool        `json:"is_pinned"`
	SendEmail   bool        `json:"send_email"`
	AuthorID    common.UUID `json:"author_id"`
	IsRead      bool        `json:"is_read"`
	CreatedAt   time.Time   `json:"created_at"`
	UpdatedAt   time.Time   `json:"updated_at"`
}

type Repository interface {
	Create(ctx context.Context, item Message) (*Message, error)
	Update(ctx context.Context, item Message) (*Message, error)
	Delete(ctx context.Context, id common.UUID) error
	GetByID(ctx context.Context, id, readerID common.UUID) (*Message, error)
	// List returns pinned messages first; an empty department list means every message.
	List(ctx context.Context, readerID common.UUID, departments []string, limit, offset int) ([]Message, error)
	MarkRead(ctx context.Context, id, readerID common.UUID) error
}
