package interview

import (
	"context"
	"time"

	"placement/internal/common"
)

type Status string

const (
	StatusScheduled   Status = "scheduled"
	StatusCompleted   Status = "completed"
	StatusCancelled   Status = "cancelled"
	StatusRescheduled Status = "rescheduled"
)

type Type string

const (
	TypeTechnical  Type = "technical"
	TypeBehavioral Type = "behavioral"
	TypeHR         Type = "HR"
	TypeFinal      Type = "final"
)

type Recommendation string

const (
	RecommendProceed  Recommendation = "proceed"
	RecommendReject   Recommendation = "reject"
	RecommendConsider Recommendation = "consider"
)

type Feedback struct {
	Rating         int            `json:"rating"`
	Strengths      string         `json:"strengths,omitempty"`
	Weaknesses     string         `json:"weaknesses,omitempty"`
	Notes          string         `json:"notes,omitempty"`
	Recommendation Recommendation `json:"recommendation"`
	CreatedAt      time.Time      `json:"created_at"`
}

type Interview struct {
	ID            common.UUID  `json:"id"`
	JobID         common.UUID  `json:"job_id"`
	StudentID     common.UUID  `json:"student_id"`
	ApplicationID *common.UUID `json:"application_id,omitempty"`
	ScheduledAt   time.Time    `json:"scheduled_at"`
	Duration      int          `json:"duration"`
	Type          Type         `json:"type"`
	Location      string       `json:"location"`
	Notes         string       `json:"notes,omitempty"`
	Status        Status       `json:"status"`
	Accepted      bool         `json:"accepted"`
	ProposedAt    *time.Time   `json:"proposed_at,omitempty"`
	Feedback      *Feedback    `json:"feedback,omitempty"`
	CreatedAt     time.Time    `json:"created_at"`
	UpdatedAt     time.Time    `json:"updated_at"`
}

type Repository interface {
	Create(ctx context.Context, item Interview) (*Interview, error)
	Update(ctx context.Context, item Interview) (*Interview, error)
	GetByID(ctx context.Context, id common.UUID) (*Interview, error)
	ListByStudent(ctx context.Context, studentID common.UUID) ([]Interview, error)
	List(ctx context.Context) ([]Interview, error)
}
