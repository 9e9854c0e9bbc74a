package app

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"placement/internal/common"
	"placement/internal/domain/analytics"
	"placement/internal/domain/auth"
	"placement/internal/domain/job"
)

type JobService struct {
	repo      job.Repository
	analytics analytics.Repository
	notifier  Notifier
	logger    Logger
	now       Clock
}

func NewJobService(repo job.Repository, analytics analytics.Repository, notifier Notifier, logger Logger) *JobService {
	if notifier == nil {
		notifier = NopNotifier{}
	}
	return &JobService{repo: repo, analytics: analytics, notifier: notifier, logger: logOrNop(logger), now: time.Now}
}

type JobInput struct {
	Title         string     `json:"title" validate:"required,min=5,max=200"`
	Company       string     `json:"company" validate:"required,min=2,max=200"`
	Location      string     `json:"location" validate:"required,min=2,max=200"`
	Description   string     `json:"description" validate:"required,min=10"`
	Requirements  []string   `json:"requirements" validate:"required,min=1,dive,required"`
	Salary        string     `json:"salary" validate:"required,min=1"`
	Type          string     `json:"type" validate:"required,oneof=Full-time Part-time Internship Contract"`
	Departments   []string   `json:"departments" validate:"required,min=1,dive,required"`
	MinCGPA       *float64   `json:"min_cgpa" validate:"required,gte=0,lte=10"`
	Deadline      *time.Time `json:"deadline" validate:"required"`
	ExcludePlaced *bool      `json:"exclude_placed"`
	Status        string     `json:"status" validate:"omitempty,oneof=open closed"`
	Logo          string     `json:"logo" validate:"omitempty,url"`
	SendEmail     bool       `json:"send_email"`
}

func (s *JobService) Create(ctx context.Context, session auth.Session, input JobInput) (*job.Job, error) {
	if !session.IsAdmin() {
		return nil, common.NewError(common.CodeForbidden, "only admins can post jobs", nil)
	}
	item, err := s.buildJob(input)
	if err != nil {
		return nil, err
	}
	if !item.Deadline.After(s.now()) {
		return nil, common.NewValidationError("invalid job", map[string]string{"deadline": "deadline must be in the future"})
	}
	item.PostedBy = session.UserID
	created, err := s.repo.Create(ctx, item)
	if err != nil {
		return nil, err
	}
	_ = s.analytics.Create(ctx, analytics.Event{Name: "job.created", UserID: &session.UserID, Payload: analyticsPayload(ctx, map[string]string{"job_id": created.ID.String()})})
	if input.SendEmail {
		if err := s.notifier.JobPosted(ctx, *created); err != nil {
			s.logger.Error("job notification enqueue failed", zap.String("job_id", created.ID.String()), zap.Error(err))
		}
	}
	return s.present(created), nil
}

func (s *JobService) Update(ctx context.Context, session auth.Session, id common.UUID, input JobInput) (*job.Job, error) {
	if !session.IsAdmin() {
		return nil, common.NewError(common.CodeForbidden, "only admins can edit jobs", nil)
	}
	current, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	item, err := s.buildJob(input)
	if err != nil {
		return nil, err
	}
	if input.Status == "" {
		item.Status = current.Status
	}
	if input.ExcludePlaced == nil {
		item.ExcludePlaced = current.ExcludePlaced
	}
	item.ID = current.ID
	item.PostedBy = current.PostedBy
	item.CreatedAt = current.CreatedAt
	updated, err := s.repo.Update(ctx, item)
	if err != nil {
		return nil, err
	}
	_ = s.analytics.Create(ctx, analytics.Event{Name: "job.updated", UserID: &session.UserID, Payload: analyticsPayload(ctx, map[string]string{"job_id": updated.ID.String()})})
	return s.present(updated), nil
}

func (s *JobService) Delete(ctx context.Context, session auth.Session, id common.UUID) error {
	if !session.IsAdmin() {
		return common.NewError(common.CodeForbidden, "only admins can delete jobs", nil)
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	_ = s.analytics.Create(ctx, analytics.Event{Name: "job.deleted", UserID: &session.UserID, Payload: analyticsPayload(ctx, map[string]string{"job_id": id.String()})})
	return nil
}

func (s *JobService) Get(ctx context.Context, id common.UUID) (*job.Job, error) {
	item, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.present(item), nil
}

type JobQuery struct {
	Status     string
	Type       string
	Department string
	Limit      int
	Offset     int
}

func (s *JobService) List(ctx context.Context, query JobQuery) ([]job.Job, error) {
	filter := job.Filter{Now: s.now().UTC(), Limit: query.Limit, Offset: query.Offset}
	if filter.Limit <= 0 || filter.Limit > 100 {
		filter.Limit = 20
	}
	if filter.Offset < 0 {
		filter.Offset = 0
	}
	fields := map[string]string{}
	switch status := job.Status(strings.ToLower(strings.TrimSpace(query.Status))); status {
	case "", "all":
	case job.StatusOpen, job.StatusClosed:
		filter.Status = status
	default:
		fields["status"] = "status must be open or closed"
	}
	if strings.TrimSpace(query.Type) != "" && !strings.EqualFold(strings.TrimSpace(query.Type), "all") {
		parsed, ok := job.ParseType(query.Type)
		if !ok {
			fields["type"] = "type must be Full-time, Part-time, Internship, or Contract"
		}
		filter.Type = parsed
	}
	if strings.TrimSpace(query.Department) != "" {
		filter.Department = job.NormalizeDepartment(query.Department)
	}
	if len(fields) > 0 {
		return nil, common.NewValidationError("invalid filter", fields)
	}
	items, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	for i := range items {
		items[i].Status = items[i].EffectiveStatus(filter.Now)
	}
	_ = s.analytics.Create(ctx, analytics.Event{Name: "job.listed", Payload: analyticsPayload(ctx, map[string]string{"count": fmt.Sprintf("%d", len(items))})})
	return items, nil
}

func (s *JobService) buildJob(input JobInput) (job.Job, error) {
	if err := validateInput(input); err != nil {
		return job.Job{}, err
	}
	fields := map[string]string{}
	for i, department := range input.Departments {
		if !job.IsKnownDepartment(department) {
			fields[fmt.Sprintf("departments[%d]", i)] = "unknown department"
		}
	}
	if len(fields) > 0 {
		return job.Job{}, common.NewValidationError("invalid job", fields)
	}
	jobType, _ := job.ParseType(input.Type)
	status := job.StatusOpen
	if input.Status != "" {
		status = job.Status(input.Status)
	}
	excludePlaced := true
	if input.ExcludePlaced != nil {
		excludePlaced = *input.ExcludePlaced
	}
	requirements := make([]string, 0, len(input.Requirements))
	for _, req := range input.Requirements {
		requirements = append(requirements, strings.TrimSpace(req))
	}
	return job.Job{
		Title:         strings.TrimSpace(input.Title),
		Company:       strings.TrimSpace(input.Company),
		Location:      strings.TrimSpace(input.Location),
		Description:   strings.TrimSpace(input.Description),
		Requirements:  requirements,
		Salary:        strings.TrimSpace(input.Salary),
		Type:          jobType,
		Departments:   job.NormalizeDepartments(input.Departments),
		MinCGPA:       *input.MinCGPA,
		Deadline:      input.Deadline.UTC(),
		ExcludePlaced: excludePlaced,
		Status:        status,
		Logo:          strings.TrimSpace(input.Logo),
	}, nil
}

func (s *JobService) present(item *job.Job) *job.Job {
	out := *item
	out.Status = out.EffectiveStatus(s.now())
	return &out
}
