package app

import (
	"context"
	"fmt"
	"strings"
	"time"

	"placement/internal/common"
	"placement/internal/domain/analytics"
	"placement/internal/domain/auth"
	"placement/internal/domain/event"
)

const (
	defaultUpcomingEvents = 10
	maxUpcomingEvents     = 50
)

type EventService struct {
	repo      event.Repository
	analytics analytics.Repository
	now       Clock
}

func NewEventService(repo event.Repository, analytics analytics.Repository) *EventService {
	return &EventService{repo: repo, analytics: analytics, now: time.Now}
}

type EventInput struct {
	Title       string     `json:"title" validate:"required,min=3,max=200"`
	Type        string     `json:"type" validate:"required"`
	Date        *time.Time `json:"date" validate:"required"`
	Location    string     `json:"location" validate:"omitempty,max=200"`
	Description string     `json:"description" validate:"omitempty,max=4000"`
}

func (s *EventService) Create(ctx context.Context, session auth.Session, input EventInput) (*event.Event, error) {
	if !session.IsAdmin() {
		return nil, common.NewError(common.CodeForbidden, "only admins can create events", nil)
	}
	if err := validateInput(input); err != nil {
		return nil, err
	}
	eventType, ok := event.ParseType(input.Type)
	if !ok {
		return nil, common.NewValidationError("invalid event", map[string]string{"type": "type must be Workshop, Recruitment, Interview, or Seminar"})
	}
	if !input.Date.After(s.now()) {
		return nil, common.NewValidationError("invalid event", map[string]string{"date": "date must be in the future"})
	}
	created, err := s.repo.Create(ctx, event.Event{
		Title:       strings.TrimSpace(input.Title),
		Type:        eventType,
		Date:        input.Date.UTC(),
		Location:    strings.TrimSpace(input.Location),
		Description: strings.TrimSpace(input.Description),
		CreatedBy:   session.UserID,
		CreatedAt:   s.now().UTC(),
	})
	if err != nil {
		return nil, err
	}
	_ = s.analytics.Create(ctx, analytics.Event{Name: "event.created", UserID: &session.UserID, Payload: analyticsPayload(ctx, map[string]string{"event_id": created.ID.String(), "type": string(created.Type)})})
	return created, nil
}

func (s *EventService) Delete(ctx context.Context, session auth.Session, id common.UUID) error {
	if !session.IsAdmin() {
		return common.NewError(common.CodeForbidden, "only admins can delete events", nil)
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	_ = s.analytics.Create(ctx, analytics.Event{Name: "event.deleted", UserID: &session.UserID, Payload: analyticsPayload(ctx, map[string]string{"event_id": id.String()})})
	return nil
}

// Upcoming lists events from now on; limit is clamped to 1..50 with 10 as the default.
func (s *EventService) Upcoming(ctx context.Context, limit int) ([]event.Event, error) {
	switch {
	case limit <= 0:
		limit = defaultUpcomingEvents
	case limit > maxUpcomingEvents:
		limit = maxUpcomingEvents
	}
	items, err := s.repo.Upcoming(ctx, s.now().UTC(), limit)
	if err != nil {
		return nil, err
	}
	_ = s.analytics.Create(ctx, analytics.Event{Name: "event.listed", Payload: analyticsPayload(ctx, map[string]string{"count": fmt.Sprintf("%d", len(items))})})
	return items, nil
}
