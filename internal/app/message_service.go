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
	"placement/internal/domain/message"
	"placement/internal/domain/profile"
)

type MessageService struct {
	repo      message.Repository
	students  profile.StudentRepository
	analytics analytics.Repository
	notifier  Notifier
	logger    Logger
	now       Clock
}

func NewMessageService(repo message.Repository, students profile.StudentRepository, analytics analytics.Repository, notifier Notifier, logger Logger) *MessageService {
	if notifier == nil {
		notifier = NopNotifier{}
	}
	return &MessageService{repo: repo, students: students, analytics: analytics, notifier: notifier, logger: logOrNop(logger), now: time.Now}
}

type MessageInput struct {
	Title       string   `json:"title" validate:"required,min=5,max=200"`
	Content     string   `json:"content" validate:"required,min=10"`
	Departments []string `json:"departments" validate:"required,min=1,dive,required"`
	Category    string   `json:"category" validate:"omitempty,oneof=announcement notification alert"`
	Priority    string   `json:"priority" validate:"omitempty,oneof=low medium high"`
	Pinned      bool     `json:"is_pinned"`
	SendEmail   bool     `json:"send_email"`
}

func (s *MessageService) Create(ctx context.Context, session auth.Session, input MessageInput) (*message.Message, error) {
	if !session.IsAdmin() {
		return nil, common.NewError(common.CodeForbidden, "only admins can post messages", nil)
	}
	item, err := buildMessage(input)
	if err != nil {
		return nil, err
	}
	now := s.now().UTC()
	item.AuthorID = session.UserID
	item.CreatedAt = now
	item.UpdatedAt = now
	created, err := s.repo.Create(ctx, item)
	if err != nil {
		return nil, err
	}
	_ = s.analytics.Create(ctx, analytics.Event{Name: "message.created", UserID: &session.UserID, Payload: analyticsPayload(ctx, map[string]string{"message_id": created.ID.String(), "category": string(created.Category)})})
	if created.SendEmail {
		if err := s.notifier.MessagePosted(ctx, *created); err != nil {
			s.logger.Error("message notification enqueue failed", zap.String("message_id", created.ID.String()), zap.Error(err))
		}
	}
	return created, nil
}

func (s *MessageService) Update(ctx context.Context, session auth.Session, id common.UUID, input MessageInput) (*message.Message, error) {
	if !session.IsAdmin() {
		return nil, common.NewError(common.CodeForbidden, "only admins can edit messages", nil)
	}
	current, err := s.repo.GetByID(ctx, id, session.UserID)
	if err != nil {
		return nil, err
	}
	item, err := buildMessage(input)
	if err != nil {
		return nil, err
	}
	item.ID = current.ID
	item.AuthorID = current.AuthorID
	item.CreatedAt = current.CreatedAt
	item.UpdatedAt = s.now().UTC()
	updated, err := s.repo.Update(ctx, item)
	if err != nil {
		return nil, err
	}
	_ = s.analytics.Create(ctx, analytics.Event{Name: "message.updated", UserID: &session.UserID, Payload: analyticsPayload(ctx, map[string]string{"message_id": id.String()})})
	return updated, nil
}

func (s *MessageService) Delete(ctx context.Context, session auth.Session, id common.UUID) error {
	if !session.IsAdmin() {
		return common.NewError(common.CodeForbidden, "only admins can delete messages", nil)
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	_ = s.analytics.Create(ctx, analytics.Event{Name: "message.deleted", UserID: &session.UserID, Payload: analyticsPayload(ctx, map[string]string{"message_id": id.String()})})
	return nil
}

// Get hides messages addressed to other departments from students.
func (s *MessageService) Get(ctx context.Context, session auth.Session, id common.UUID) (*message.Message, error) {
	item, err := s.repo.GetByID(ctx, id, session.UserID)
	if err != nil {
		return nil, err
	}
	if session.IsAdmin() {
		return item, nil
	}
	audience, err := s.audience(ctx, session)
	if err != nil {
		return nil, err
	}
	if !addressedTo(item.Departments, audience) {
		return nil, common.NewError(common.CodeNotFound, "message not found", nil)
	}
	return item, nil
}

// List returns pinned messages first. Students see their department's messages
// and those addressed to all departments.
func (s *MessageService) List(ctx context.Context, session auth.Session, limit, offset int) ([]message.Message, error) {
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}
	var audience []string
	if !session.IsAdmin() {
		var err error
		if audience, err = s.audience(ctx, session); err != nil {
			return nil, err
		}
	}
	items, err := s.repo.List(ctx, session.UserID, audience, limit, offset)
	if err != nil {
		return nil, err
	}
	_ = s.analytics.Create(ctx, analytics.Event{Name: "message.listed", UserID: &session.UserID, Payload: analyticsPayload(ctx, map[string]string{"count": fmt.Sprintf("%d", len(items))})})
	return items, nil
}

func (s *MessageService) MarkRead(ctx context.Context, session auth.Session, id common.UUID) error {
	if _, err := s.Get(ctx, session, id); err != nil {
		return err
	}
	return s.repo.MarkRead(ctx, id, session.UserID)
}

func (s *MessageService) audience(ctx context.Context, session auth.Session) ([]string, error) {
	audience := []string{job.DepartmentAll}
	student, err := s.students.GetByUserID(ctx, session.UserID)
	if err != nil {
		if common.Is(err, common.CodeNotFound) {
			return audience, nil
		}
		return nil, err
	}
	if student.Department != "" {
		audience = append(audience, job.NormalizeDepartment(student.Department))
	}
	return audience, nil
}

func addressedTo(departments, audience []string) bool {
	for _, department := range departments {
		for _, candidate := range audience {
			if department == candidate {
				return true
			}
		}
	}
	return false
}

func buildMessage(input MessageInput) (message.Message, error) {
	if err := validateInput(input); err != nil {
		return message.Message{}, err
	}
	fields := map[string]string{}
	for i, department := range input.Departments {
		if !job.IsKnownDepartment(department) {
			fields[fmt.Sprintf("departments[%d]", i)] = "unknown department"
		}
	}
	if len(fields) > 0 {
		return message.Message{}, common.NewValidationError("invalid message", fields)
	}
	category := message.CategoryAnnouncement
	if input.Category != "" {
		category = message.Category(input.Category)
	}
	priority := message.PriorityMedium
	if input.Priority != "" {
		priority = message.Priority(input.Priority)
	}
	return message.Message{
		Title:       strings.TrimSpace(input.Title),
		Content:     strings.TrimSpace(input.Content),
		Departments: job.NormalizeDepartments(input.Departments),
		Category:    category,
		Priority:    priority,
		Pinned:      input.Pinned,
		SendEmail:   input.SendEmail,
	}, nil
}
