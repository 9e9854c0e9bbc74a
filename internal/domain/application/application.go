package application

import (
	"context"
	"strings"
	"time"

	"placement/internal/common"
)

type Status string

const (
	StatusPending     Status = "pending"
	StatusReviewed    Status = "reviewed"
	StatusInterviewed Status = "interviewed"
	StatusAccepted    Status = "accepted"
	StatusRejected    Status = "rejected"
)

func ParseStatus(value string) (Status, bool) {
	status := Status(strings.ToLower(strings.TrimSpace(value)))
	switch status {
	case StatusPending, StatusReviewed, StatusInterviewed, StatusAccepted, StatusRejected:
		return status, true
	default:
		return "", false
	}
}

func (s Status) Final() bool {
	return s == StatusAccepted || s == StatusRejected
}

type Application struct {
	ID          common.UUID `json:"id"`
	JobID       common.UUID `json:"job_id"`
	StudentID   common.UUID `json:"student_id"`
	Status      Status      `json:"status"`
	Resume      string      `json:"resume,omitempty"`
	CoverLetter string      `json:"cover_letter,omitempty"`
	Feedback    string      `json:"feedback,omitempty"`
	AppliedAt   time.Time   `json:"applied_date"`
	UpdatedAt   time.Time   `json:"updated_at"`
}

type Filter struct {
	JobID  common.UUID
	Status Status
}

type Repository interface {
	// Create must return a CodeAlreadyApplied error when (job, student) already exists.
	Create(ctx context.Context, item Application) (*Application, error)
	GetByID(ctx context.Context, id common.UUID) (*Application, error)
	FindByJobAndStudent(ctx context.Context, jobID, studentID common.UUID) (*Application, error)
	ListByStudent(ctx context.Context, studentID common.UUID) ([]Application, error)
	List(ctx context.Context, filter Filter) ([]Application, error)
	UpdateStatus(ctx context.Context, id common.UUID, status Status, feedback string) (*Application, error)
	HasAcceptedElsewhere(ctx context.Context, studentID, jobID common.UUID) (bool, error)
}
