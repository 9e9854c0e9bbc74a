package app

import (
	"context"
	"fmt"
	"strings"

	"placement/internal/common"
	"placement/internal/domain/analytics"
	"placement/internal/domain/auth"
	"placement/internal/domain/job"
	"placement/internal/domain/user"
)

// UserService serves the admin directory of accounts.
type UserService struct {
	users     user.Repository
	analytics analytics.Repository
}

func NewUserService(users user.Repository, analytics analytics.Repository) *UserService {
	return &UserService{users: users, analytics: analytics}
}

type DirectoryQuery struct {
	Role       string
	Department string
	Limit      int
	Offset     int
}

// ListStudents lists student accounts, optionally for one department.
func (s *UserService) ListStudents(ctx context.Context, session auth.Session, query DirectoryQuery) ([]user.DirectoryEntry, error) {
	query.Role = string(user.RoleStudent)
	return s.list(ctx, session, query)
}

// ListUsers lists every account, optionally narrowed by role or department.
func (s *UserService) ListUsers(ctx context.Context, session auth.Session, query DirectoryQuery) ([]user.DirectoryEntry, error) {
	return s.list(ctx, session, query)
}

func (s *UserService) list(ctx context.Context, session auth.Session, query DirectoryQuery) ([]user.DirectoryEntry, error) {
	if !session.IsAdmin() {
		return nil, common.NewError(common.CodeForbidden, "only admins can list users", nil)
	}
	filter := user.Filter{Limit: query.Limit, Offset: query.Offset}
	if filter.Limit <= 0 || filter.Limit > 200 {
		filter.Limit = 50
	}
	if filter.Offset < 0 {
		filter.Offset = 0
	}
	fields := map[string]string{}
	if role := user.Role(strings.ToLower(strings.TrimSpace(query.Role))); role != "" && role != "all" {
		if !role.Valid() {
			fields["role"] = "role must be student or admin"
		}
		filter.Role = role
	}
	if department := job.NormalizeDepartment(query.Department); department != "" && department != job.DepartmentAll {
		if !job.IsKnownDepartment(department) {
			fields["department"] = "unknown department"
		}
		filter.Department = department
	}
	if len(fields) > 0 {
		return nil, common.NewValidationError("invalid filter", fields)
	}
	entries, err := s.users.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	for i := range entries {
		if entries[i].Department != "" {
			entries[i].DepartmentName = job.DepartmentName(entries[i].Department)
		}
	}
	_ = s.analytics.Create(ctx, analytics.Event{Name: "user.directory_listed", UserID: &session.UserID, Payload: analyticsPayload(ctx, map[string]string{"role": string(filter.Role), "department": filter.Department, "count": fmt.Sprintf("%d", len(entries))})})
	return entries, nil
}
