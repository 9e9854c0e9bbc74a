package event

import (
	"context"
	"strings"
	"time"

	"placement/internal/common"
)

type Type string

const (
	TypeWorkshop    Type = "Workshop"
	TypeRecruitment Type = "Recruitment"
	TypeInterview   Type = "Interview"
	TypeSeminar     Type = "Seminar"
)

var types = []Type{TypeWorkshop, TypeRecruitment, TypeInterview, TypeSeminar}

// ParseType is case-insensitive and returns the canonical spelling.
func ParseType(value string) (Type, bool) {
	trimmed := strings.TrimSpace(value)
	for _, item := range types {
		if strings.EqualFold(string(item), trimmed) {
			return item, true
		}
	}
	return "", false
}

// Event is a dated placement-cell activity shown on the student dashboard.
type Event struct {
	ID          common.UUID `json:"id"`
	Title       string      `json:"title"`
	Type        Type        `json:"type"`
	Date        time.Time   `json:"date"`
	Location    string      `json:"location,omitempty"`
	Description string      `json:"description,omitempty"`
	CreatedBy   common.UUID `json:"created_by"`
	CreatedAt   time.Time   `json:"created_at"`
}

type Repository interface {
	Create(ctx context.Context, item Event) (*Event, error)
	Delete(ctx context.Context, id common.UUID) error
	// Upcoming returns events dated at or after from, soonest first.
	Upcoming(ctx context.Context, from time.Time, limit int) ([]Event, error)
}
