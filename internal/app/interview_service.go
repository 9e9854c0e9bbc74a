package app

import (
	"context"
	"strings"
	"time"

	"go.uber.org/zap"

	"placement/internal/common"
	"placement/internal/domain/analytics"
	"placement/internal/domain/application"
	"placement/internal/domain/auth"
	"placement/internal/domain/interview"
	"placement/internal/domain/job"
	"placement/internal/domain/user"
)

type InterviewService struct {
	repo         interview.Repository
	jobs         job.Repository
	applications application.Repository
	users        user.Repository
	analytics    analytics.Repository
	notifier     Notifier
	logger       Logger
	now          Clock
}

func NewInterviewService(repo interview.Repository, jobs job.Repository, applications application.Repository, users user.Repository, analytics analytics.Repository, notifier Notifier, logger Logger) *InterviewService {
	if notifier == nil {
		notifier = NopNotifier{}
	}
	return &InterviewService{repo: repo, jobs: jobs, applications: applications, users: users, analytics: analytics, notifier: notifier, logger: logOrNop(logger), now: time.Now}
}

type InterviewInput struct {
	JobID         string     `json:"job_id" validate:"required,uuid"`
	StudentID     string     `json:"student_id" validate:"required,uuid"`
	ApplicationID string     `json:"application_id" validate:"omitempty,uuid"`
	ScheduledAt   *time.Time `json:"scheduled_at" validate:"required"`
	Duration      int        `json:"duration" validate:"required,gte=5,lte=480"`
	Type          string     `json:"type" validate:"required,oneof=technical behavioral HR final"`
	Location      string     `json:"location" validate:"required,min=2"`
	Notes         string     `json:"notes" validate:"omitempty,max=4000"`
}

type ReasonInput struct {
	Reason string `json:"reason" validate:"required,min=3,max=1000"`
}

// RescheduleInput is a student's reschedule request with an optional proposed slot.
type RescheduleInput struct {
	Reason     string     `json:"reason" validate:"required,min=3,max=1000"`
	ProposedAt *time.Time `json:"proposed_at"`
}

type FeedbackInput struct {
	Rating         int    `json:"rating" validate:"required,gte=1,lte=5"`
	Strengths      string `json:"strengths" validate:"omitempty,max=4000"`
	Weaknesses     string `json:"weaknesses" validate:"omitempty,max=4000"`
	Notes          string `json:"notes" validate:"omitempty,max=4000"`
	Recommendation string `json:"recommendation" validate:"required,oneof=proceed reject consider"`
}

func (s *InterviewService) Schedule(ctx context.Context, session auth.Session, input InterviewInput) (*interview.Interview, error) {
	if !session.IsAdmin() {
		return nil, common.NewError(common.CodeForbidden, "only admins can schedule interviews", nil)
	}
	item, err := s.build(ctx, input)
	if err != nil {
		return nil, err
	}
	if !item.ScheduledAt.After(s.now()) {
		return nil, common.NewValidationError("invalid interview", map[string]string{"scheduled_at": "scheduled_at must be in the future"})
	}
	now := s.now().UTC()
	item.Status = interview.StatusScheduled
	item.CreatedAt = now
	item.UpdatedAt = now
	created, err := s.repo.Create(ctx, item)
	if err != nil {
		return nil, err
	}
	_ = s.analytics.Create(ctx, analytics.Event{Name: "interview.scheduled", UserID: &session.UserID, Payload: analyticsPayload(ctx, map[string]string{"interview_id": created.ID.String(), "student_id": created.StudentID.String()})})
	if err := s.notifier.InterviewScheduled(ctx, *created); err != nil {
		s.logger.Error("interview notification enqueue failed", zap.String("interview_id", created.ID.String()), zap.Error(err))
	}
	return created, nil
}

// Update replaces the schedule details of an interview; status, acceptance and feedback are kept.
func (s *InterviewService) Update(ctx context.Context, session auth.Session, id common.UUID, input InterviewInput) (*interview.Interview, error) {
	if !session.IsAdmin() {
		return nil, common.NewError(common.CodeForbidden, "only admins can edit interviews", nil)
	}
	current, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	item, err := s.build(ctx, input)
	if err != nil {
		return nil, err
	}
	rescheduled := !item.ScheduledAt.Equal(current.ScheduledAt)
	current.JobID = item.JobID
	current.StudentID = item.StudentID
	current.ApplicationID = item.ApplicationID
	current.ScheduledAt = item.ScheduledAt
	current.Duration = item.Duration
	current.Type = item.Type
	current.Location = item.Location
	current.Notes = item.Notes
	if rescheduled && current.Status == interview.StatusRescheduled {
		current.Status = interview.StatusScheduled
		current.Accepted = false
		current.ProposedAt = nil
	}
	return s.save(ctx, session, current, "interview.updated")
}

// Accept confirms attendance; only the invited student may accept.
func (s *InterviewService) Accept(ctx context.Context, session auth.Session, id common.UUID) (*interview.Interview, error) {
	current, err := s.own(ctx, session, id)
	if err != nil {
		return nil, err
	}
	if current.Status != interview.StatusScheduled {
		return nil, common.NewValidationError("interview cannot be accepted", map[string]string{"status": "interview is " + string(current.Status)})
	}
	current.Accepted = true
	return s.save(ctx, session, current, "interview.accepted")
}

func (s *InterviewService) RequestReschedule(ctx context.Context, session auth.Session, id common.UUID, input RescheduleInput) (*interview.Interview, error) {
	if err := validateInput(input); err != nil {
		return nil, err
	}
	if input.ProposedAt != nil && !input.ProposedAt.After(s.now()) {
		return nil, common.NewValidationError("invalid reschedule request", map[string]string{"proposed_at": "proposed_at must be in the future"})
	}
	current, err := s.own(ctx, session, id)
	if err != nil {
		return nil, err
	}
	if current.Status == interview.StatusCompleted || current.Status == interview.StatusCancelled {
		return nil, common.NewValidationError("interview cannot be rescheduled", map[string]string{"status": "interview is " + string(current.Status)})
	}
	current.Status = interview.StatusRescheduled
	current.Accepted = false
	current.ProposedAt = nil
	note := "Reschedule requested: " + strings.TrimSpace(input.Reason)
	if input.ProposedAt != nil {
		proposed := input.ProposedAt.UTC()
		current.ProposedAt = &proposed
		note += " (proposed " + proposed.Format(time.RFC3339) + ")"
	}
	current.Notes = appendNote(current.Notes, note)
	return s.save(ctx, session, current, "interview.reschedule_requested")
}

func (s *InterviewService) Cancel(ctx context.Context, session auth.Session, id common.UUID, input ReasonInput) (*interview.Interview, error) {
	if !session.IsAdmin() {
		return nil, common.NewError(common.CodeForbidden, "only admins can cancel interviews", nil)
	}
	if err := validateInput(input); err != nil {
		return nil, err
	}
	current, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if current.Status == interview.StatusCompleted {
		return nil, common.NewValidationError("interview cannot be cancelled", map[string]string{"status": "interview is completed"})
	}
	current.Status = interview.StatusCancelled
	current.Notes = appendNote(current.Notes, "Cancelled: "+strings.TrimSpace(input.Reason))
	return s.save(ctx, session, current, "interview.cancelled")
}

// AddFeedback records the panel's evaluation and completes the interview.
func (s *InterviewService) AddFeedback(ctx context.Context, session auth.Session, id common.UUID, input FeedbackInput) (*interview.Interview, error) {
	if !session.IsAdmin() {
		return nil, common.NewError(common.CodeForbidden, "only admins can add interview feedback", nil)
	}
	if err := validateInput(input); err != nil {
		return nil, err
	}
	current, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if current.Status == interview.StatusCancelled {
		return nil, common.NewValidationError("interview is cancelled", map[string]string{"status": "interview is cancelled"})
	}
	current.Feedback = &interview.Feedback{
		Rating:         input.Rating,
		Strengths:      strings.TrimSpace(input.Strengths),
		Weaknesses:     strings.TrimSpace(input.Weaknesses),
		Notes:          strings.TrimSpace(input.Notes),
		Recommendation: interview.Recommendation(input.Recommendation),
		CreatedAt:      s.now().UTC(),
	}
	current.Status = interview.StatusCompleted
	return s.save(ctx, session, current, "interview.feedback_added")
}

func (s *InterviewService) Get(ctx context.Context, session auth.Session, id common.UUID) (*interview.Interview, error) {
	item, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !session.CanAccess(item.StudentID) {
		return nil, common.NewError(common.CodeForbidden, "interview belongs to another student", nil)
	}
	return item, nil
}

func (s *InterviewService) List(ctx context.Context, session auth.Session) ([]interview.Interview, error) {
	if session.IsAdmin() {
		return s.repo.List(ctx)
	}
	return s.repo.ListByStudent(ctx, session.UserID)
}

func (s *InterviewService) own(ctx context.Context, session auth.Session, id common.UUID) (*interview.Interview, error) {
	item, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if item.StudentID != session.UserID {
		return nil, common.NewError(common.CodeForbidden, "interview belongs to another student", nil)
	}
	return item, nil
}

func (s *InterviewService) build(ctx context.Context, input InterviewInput) (interview.Interview, error) {
	if err := validateInput(input); err != nil {
		return interview.Interview{}, err
	}
	jobID, _ := common.ParseUUID(input.JobID)
	studentID, _ := common.ParseUUID(input.StudentID)
	if _, err := s.jobs.GetByID(ctx, jobID); err != nil {
		return interview.Interview{}, err
	}
	candidate, err := s.users.GetByID(ctx, studentID)
	if err != nil {
		return interview.Interview{}, err
	}
	if candidate.Role != user.RoleStudent {
		return interview.Interview{}, common.NewValidationError("invalid interview", map[string]string{"student_id": "interviews can only be scheduled for students"})
	}
	item := interview.Interview{
		JobID:       jobID,
		StudentID:   studentID,
		ScheduledAt: input.ScheduledAt.UTC(),
		Duration:    input.Duration,
		Type:        interview.Type(input.Type),
		Location:    strings.TrimSpace(input.Location),
		Notes:       strings.TrimSpace(input.Notes),
	}
	if input.ApplicationID != "" {
		applicationID, _ := common.ParseUUID(input.ApplicationID)
		linked, err := s.applications.GetByID(ctx, applicationID)
		if err != nil {
			return interview.Interview{}, err
		}
		if linked.JobID != jobID || linked.StudentID != studentID {
			return interview.Interview{}, common.NewValidationError("invalid interview", map[string]string{"application_id": "application does not match job and student"})
		}
		item.ApplicationID = &applicationID
	}
	return item, nil
}

func (s *InterviewService) save(ctx context.Context, session auth.Session, item *interview.Interview, event string) (*interview.Interview, error) {
	item.UpdatedAt = s.now().UTC()
	updated, err := s.repo.Update(ctx, *item)
	if err != nil {
		return nil, err
	}
	_ = s.analytics.Create(ctx, analytics.Event{Name: event, UserID: &session.UserID, Payload: analyticsPayload(ctx, map[string]string{"interview_id": item.ID.String(), "status": string(item.Status)})})
	return updated, nil
}

func appendNote(notes, line string) string {
	if strings.TrimSpace(notes) == "" {
		return line
	}
	return notes + "\n" + line
}
