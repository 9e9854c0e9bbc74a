package app

import (
	"context"
	"strings"
	"time"

	"placement/internal/common"
	"placement/internal/domain/analytics"
	"placement/internal/domain/auth"
	"placement/internal/domain/job"
	"placement/internal/domain/profile"
	"placement/internal/domain/user"
)

type ProfileService struct {
	users     user.Repository
	students  profile.StudentRepository
	analytics analytics.Repository
	now       Clock
}

func NewProfileService(users user.Repository, students profile.StudentRepository, analytics analytics.Repository) *ProfileService {
	return &ProfileService{users: users, students: students, analytics: analytics, now: time.Now}
}

type ProfileView struct {
	User    *user.User              `json:"user"`
	Profile *profile.StudentProfile `json:"profile"`
}

// ProfileInput edits the self-service part of a profile. Department and CGPA
// drive eligibility and are honoured only for admins.
type ProfileInput struct {
	Phone       string              `json:"phone" validate:"omitempty,max=32"`
	Bio         string              `json:"bio" validate:"omitempty,max=2000"`
	Year        string              `json:"year" validate:"omitempty,max=20"`
	Skills      []string            `json:"skills" validate:"omitempty,max=50,dive,required,max=64"`
	SocialLinks profile.SocialLinks `json:"social_links"`
	Department  string              `json:"department"`
	CGPA        *float64            `json:"cgpa" validate:"omitempty,gte=0,lte=10"`
}

type EducationInput struct {
	Institution string     `json:"institution" validate:"required,min=2"`
	Degree      string     `json:"degree" validate:"required"`
	Field       string     `json:"field" validate:"required"`
	StartDate   *time.Time `json:"start_date" validate:"required"`
	EndDate     *time.Time `json:"end_date"`
	Current     bool       `json:"current"`
	Description string     `json:"description" validate:"omitempty,max=2000"`
}

type ExperienceInput struct {
	Company     string     `json:"company" validate:"required,min=2"`
	Position    string     `json:"position" validate:"required"`
	Location    string     `json:"location"`
	StartDate   *time.Time `json:"start_date" validate:"required"`
	EndDate     *time.Time `json:"end_date"`
	Current     bool       `json:"current"`
	Description string     `json:"description" validate:"omitempty,max=2000"`
}

func (s *ProfileService) Get(ctx context.Context, session auth.Session, userID common.UUID) (*ProfileView, error) {
	if !session.CanAccess(userID) {
		return nil, common.NewError(common.CodeForbidden, "profile belongs to another user", nil)
	}
	account, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	view := &ProfileView{User: account}
	if account.Role != user.RoleStudent {
		return view, nil
	}
	item, err := s.students.GetByUserID(ctx, userID)
	if err != nil && !common.Is(err, common.CodeNotFound) {
		return nil, err
	}
	view.Profile = item
	return view, nil
}

func (s *ProfileService) Update(ctx context.Context, session auth.Session, userID common.UUID, input ProfileInput) (*profile.StudentProfile, error) {
	if err := validateInput(input); err != nil {
		return nil, err
	}
	current, err := s.load(ctx, session, userID)
	if err != nil {
		return nil, err
	}
	current.Phone = strings.TrimSpace(input.Phone)
	current.Bio = strings.TrimSpace(input.Bio)
	current.Year = strings.TrimSpace(input.Year)
	current.Skills = trimAll(input.Skills)
	current.SocialLinks = input.SocialLinks
	if session.IsAdmin() {
		if strings.TrimSpace(input.Department) != "" {
			department := job.NormalizeDepartment(input.Department)
			if department == job.DepartmentAll || !job.IsKnownDepartment(department) {
				return nil, common.NewValidationError("invalid request", map[string]string{"department": "unknown department"})
			}
			current.Department = department
		}
		if input.CGPA != nil {
			current.CGPA = *input.CGPA
		}
	}
	return s.save(ctx, session, current, "profile.updated")
}

func (s *ProfileService) AddEducation(ctx context.Context, session auth.Session, userID common.UUID, input EducationInput) (*profile.StudentProfile, error) {
	if err := validateInput(input); err != nil {
		return nil, err
	}
	if err := checkPeriod(*input.StartDate, input.EndDate); err != nil {
		return nil, err
	}
	current, err := s.load(ctx, session, userID)
	if err != nil {
		return nil, err
	}
	current.Education = append(current.Education, profile.Education{
		ID:          common.NewUUID(),
		Institution: strings.TrimSpace(input.Institution),
		Degree:      strings.TrimSpace(input.Degree),
		Field:       strings.TrimSpace(input.Field),
		StartDate:   input.StartDate.UTC(),
		EndDate:     input.EndDate,
		Current:     input.Current,
		Description: strings.TrimSpace(input.Description),
	})
	return s.save(ctx, session, current, "profile.education_added")
}

func (s *ProfileService) DeleteEducation(ctx context.Context, session auth.Session, userID, entryID common.UUID) (*profile.StudentProfile, error) {
	current, err := s.load(ctx, session, userID)
	if err != nil {
		return nil, err
	}
	kept := make([]profile.Education, 0, len(current.Education))
	for _, entry := range current.Education {
		if entry.ID != entryID {
			kept = append(kept, entry)
		}
	}
	if len(kept) == len(current.Education) {
		return nil, common.NewError(common.CodeNotFound, "education entry not found", nil)
	}
	current.Education = kept
	return s.save(ctx, session, current, "profile.education_deleted")
}

func (s *ProfileService) AddExperience(ctx context.Context, session auth.Session, userID common.UUID, input ExperienceInput) (*profile.StudentProfile, error) {
	if err := validateInput(input); err != nil {
		return nil, err
	}
	if err := checkPeriod(*input.StartDate, input.EndDate); err != nil {
		return nil, err
	}
	current, err := s.load(ctx, session, userID)
	if err != nil {
		return nil, err
	}
	current.Experience = append(current.Experience, profile.Experience{
		ID:          common.NewUUID(),
		Company:     strings.TrimSpace(input.Company),
		Position:    strings.TrimSpace(input.Position),
		Location:    strings.TrimSpace(input.Location),
		StartDate:   input.StartDate.UTC(),
		EndDate:     input.EndDate,
		Current:     input.Current,
		Description: strings.TrimSpace(input.Description),
	})
	return s.save(ctx, session, current, "profile.experience_added")
}

func (s *ProfileService) DeleteExperience(ctx context.Context, session auth.Session, userID, entryID common.UUID) (*profile.StudentProfile, error) {
	current, err := s.load(ctx, session, userID)
	if err != nil {
		return nil, err
	}
	kept := make([]profile.Experience, 0, len(current.Experience))
	for _, entry := range current.Experience {
		if entry.ID != entryID {
			kept = append(kept, entry)
		}
	}
	if len(kept) == len(current.Experience) {
		return nil, common.NewError(common.CodeNotFound, "experience entry not found", nil)
	}
	current.Experience = kept
	return s.save(ctx, session, current, "profile.experience_deleted")
}

func (s *ProfileService) load(ctx context.Context, session auth.Session, userID common.UUID) (*profile.StudentProfile, error) {
	if !session.CanAccess(userID) {
		return nil, common.NewError(common.CodeForbidden, "profile belongs to another user", nil)
	}
	account, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if account.Role != user.RoleStudent {
		return nil, common.NewError(common.CodeNotFound, "student profile not found", nil)
	}
	current, err := s.students.GetByUserID(ctx, userID)
	if err != nil {
		if !common.Is(err, common.CodeNotFound) {
			return nil, err
		}
		current = &profile.StudentProfile{UserID: userID}
	}
	return current, nil
}

func (s *ProfileService) save(ctx context.Context, session auth.Session, item *profile.StudentProfile, event string) (*profile.StudentProfile, error) {
	item.UpdatedAt = s.now().UTC()
	saved, err := s.students.Upsert(ctx, *item)
	if err != nil {
		return nil, err
	}
	_ = s.analytics.Create(ctx, analytics.Event{Name: event, UserID: &session.UserID, Payload: analyticsPayload(ctx, map[string]string{"profile_user_id": item.UserID.String()})})
	return saved, nil
}

func checkPeriod(start time.Time, end *time.Time) error {
	if end != nil && end.Before(start) {
		return common.NewValidationError("invalid request", map[string]string{"end_date": "end_date must not be before start_date"})
	}
	return nil
}

func trimAll(values []string) []string {
	out := make([]string, 0, len(values))
	for _, value := range values {
		if trimmed := strings.TrimSpace(value); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
