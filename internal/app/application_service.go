package app

import (
	"context"
	"strings"
	"time"

	"placement/internal/common"
	"placement/internal/domain/analytics"
	"placement/internal/domain/application"
	"placement/internal/domain/auth"
	"placement/internal/domain/job"
	"placement/internal/domain/profile"
)

type ApplicationService struct {
	repo      application.Repository
	jobs      job.Repository
	students  profile.StudentRepository
	analytics analytics.Repository
	now       Clock
}

func NewApplicationService(repo application.Repository, jobs job.Repository, students profile.StudentRepository, analytics analytics.Repository) *ApplicationService {
	return &ApplicationService{repo: repo, jobs: jobs, students: students, analytics: analytics, now: time.Now}
}

type ApplyInput struct {
	Resume      string `json:"resume" validate:"omitempty,max=2048"`
	CoverLetter string `json:"cover_letter" validate:"omitempty,max=10000"`
}

type Eligibility struct {
	Eligible bool        `json:"eligible"`
	Code     common.Code `json:"code,omitempty"`
	Reason   string      `json:"reason,omitempty"`
}

// Apply records a pending application once every eligibility check passes.
func (s *ApplicationService) Apply(ctx context.Context, session auth.Session, jobID common.UUID, input ApplyInput) (*application.Application, error) {
	if err := validateInput(input); err != nil {
		return nil, err
	}
	if _, err := s.evaluate(ctx, jobID, session.UserID); err != nil {
		return nil, err
	}
	item := application.Application{
		JobID:       jobID,
		StudentID:   session.UserID,
		Status:      application.StatusPending,
		Resume:      strings.TrimSpace(input.Resume),
		CoverLetter: strings.TrimSpace(input.CoverLetter),
		AppliedAt:   s.now().UTC(),
	}
	created, err := s.repo.Create(ctx, item)
	if err != nil {
		return nil, err
	}
	_ = s.analytics.Create(ctx, analytics.Event{Name: "application.created", UserID: &session.UserID, Payload: analyticsPayload(ctx, map[string]string{"application_id": created.ID.String(), "job_id": jobID.String()})})
	return created, nil
}

// EnsureOpen runs only the job-local existence and deadline checks so callers
// can answer NotFound or Closed before spending a rate-limit slot.
func (s *ApplicationService) EnsureOpen(ctx context.Context, jobID common.UUID) error {
	item, err := s.jobs.GetByID(ctx, jobID)
	if err != nil {
		return err
	}
	if !item.AcceptsApplications(s.now()) {
		return common.NewError(common.CodeClosed, "job is closed for applications", nil)
	}
	return nil
}

// CheckEligibility runs the same checks as Apply without recording anything.
func (s *ApplicationService) CheckEligibility(ctx context.Context, session auth.Session, jobID common.UUID) (*Eligibility, error) {
	_, err := s.evaluate(ctx, jobID, session.UserID)
	if err == nil {
		return &Eligibility{Eligible: true}, nil
	}
	appErr, ok := common.As(err)
	if !ok {
		return nil, err
	}
	switch appErr.Code {
	case common.CodeClosed, common.CodeIneligible, common.CodeAlreadyApplied:
		return &Eligibility{Eligible: false, Code: appErr.Code, Reason: appErr.Message}, nil
	default:
		return nil, err
	}
}

func (s *ApplicationService) evaluate(ctx context.Context, jobID, studentID common.UUID) (*job.Job, error) {
	item, err := s.jobs.GetByID(ctx, jobID)
	if err != nil {
		return nil, err
	}
	student, err := s.students.GetByUserID(ctx, studentID)
	if err != nil && !common.Is(err, common.CodeNotFound) {
		return nil, err
	}
	if err := checkJobRules(*item, student, s.now()); err != nil {
		return nil, err
	}
	if item.ExcludePlaced {
		placed, err := s.repo.HasAcceptedElsewhere(ctx, studentID, jobID)
		if err != nil {
			return nil, err
		}
		if placed {
			return nil, common.NewError(common.CodeIneligible, "student is already placed", nil)
		}
	}
	if _, err := s.repo.FindByJobAndStudent(ctx, jobID, studentID); err == nil {
		return nil, common.NewError(common.CodeAlreadyApplied, "you have already applied for this job", nil)
	} else if !common.Is(err, common.CodeNotFound) {
		return nil, err
	}
	return item, nil
}

// UpdateStatus is admin-only and permissive: any known status may be set
// while the application is not final.
func (s *ApplicationService) UpdateStatus(ctx context.Context, session auth.Session, applicationID common.UUID, status string, feedback string) (*application.Application, error) {
	if !session.IsAdmin() {
		return nil, common.NewError(common.CodeForbidden, "only admins can change application status", nil)
	}
	next, ok := application.ParseStatus(status)
	if !ok {
		return nil, common.NewValidationError("invalid status", map[string]string{"status": "status must be pending, reviewed, interviewed, accepted, or rejected"})
	}
	current, err := s.repo.GetByID(ctx, applicationID)
	if err != nil {
		return nil, err
	}
	feedback = strings.TrimSpace(feedback)
	if feedback == "" {
		feedback = current.Feedback
	}
	if next != current.Status && current.Status.Final() {
		return nil, common.NewValidationError("application status is final", map[string]string{"status": "application is already " + string(current.Status)})
	}
	updated, err := s.repo.UpdateStatus(ctx, applicationID, next, feedback)
	if err != nil {
		return nil, err
	}
	name := "application.status_changed"
	if next == current.Status {
		name = "application.feedback_updated"
	}
	_ = s.analytics.Create(ctx, analytics.Event{Name: name, UserID: &session.UserID, Payload: analyticsPayload(ctx, map[string]string{"application_id": updated.ID.String(), "from": string(current.Status), "to": string(next)})})
	return updated, nil
}

func (s *ApplicationService) Get(ctx context.Context, session auth.Session, id common.UUID) (*application.Application, error) {
	item, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !session.CanAccess(item.StudentID) {
		return nil, common.NewError(common.CodeForbidden, "application belongs to another student", nil)
	}
	return item, nil
}

func (s *ApplicationService) ListByStudent(ctx context.Context, session auth.Session) ([]application.Application, error) {
	return s.repo.ListByStudent(ctx, session.UserID)
}

func (s *ApplicationService) List(ctx context.Context, session auth.Session, jobID, status string) ([]application.Application, error) {
	if !session.IsAdmin() {
		return nil, common.NewError(common.CodeForbidden, "only admins can list all applications", nil)
	}
	var filter application.Filter
	if strings.TrimSpace(jobID) != "" {
		parsed, err := common.ParseUUID(jobID)
		if err != nil {
			return nil, common.NewValidationError("invalid job_id", map[string]string{"job_id": "invalid uuid"})
		}
		filter.JobID = parsed
	}
	if strings.TrimSpace(status) != "" {
		parsed, ok := application.ParseStatus(status)
		if !ok {
			return nil, common.NewValidationError("invalid status", map[string]string{"status": "unknown status"})
		}
		filter.Status = parsed
	}
	return s.repo.List(ctx, filter)
}
