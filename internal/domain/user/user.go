package user

import (
	"context"
	"strings"
	"time"

	"placement/internal/common"
)

type Role string

const (
	RoleStudent Role = "student"
	RoleAdmin   Role = "admin"
)

// ParseRole accepts only the two known roles.
func ParseRole(value string) (Role, bool) {
	switch Role(strings.ToLower(strings.TrimSpace(value))) {
	case RoleStudent:
		return RoleStudent, true
	case RoleAdmin:
		return RoleAdmin, true
	default:
		return "", false
	}
}

func (r Role) Valid() bool {
	_, ok := ParseRole(string(r))
	return ok
}

type User struct {
	ID           common.UUID `json:"id"`
	Email        string      `json:"email"`
	Name         string      `json:"name"`
	Role         Role        `json:"role"`
	PasswordHash string      `json:"-"`
	CreatedAt    time.Time   `json:"created_at"`
	UpdatedAt    time.Time   `json:"updated_at"`
}

// DirectoryEntry is an account as listed to admins, with the student's
// academic summary when a profile exists.
type DirectoryEntry struct {
	User
	Department     string   `json:"department,omitempty"`
	DepartmentName string   `json:"department_name,omitempty"`
	CGPA           *float64 `json:"cgpa,omitempty"`
}

// Filter narrows a directory listing; zero values match everything.
type Filter struct {
	Role       Role
	Department string
	Limit      int
	Offset     int
}

type Repository interface {
	Create(ctx context.Context, account User) (*User, error)
	GetByID(ctx context.Context, id common.UUID) (*User, error)
	FindByEmail(ctx context.Context, email string) (*User, error)
	ListStudentEmails(ctx context.Context, departments []string) ([]string, error)
	List(ctx context.Context, filter Filter) ([]DirectoryEntry, error)
}

func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
