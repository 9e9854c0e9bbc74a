package job

import (
	"strings"
	"time"

	"placement/internal/common"
)

type Status string

const (
	StatusOpen   Status = "open"
	StatusClosed Status = "closed"
)

type Type string

const (
	TypeFullTime   Type = "Full-time"
	TypePartTime   Type = "Part-time"
	TypeInternship Type = "Internship"
	TypeContract   Type = "Contract"
)

func ParseType(value string) (Type, bool) {
	trimmed := strings.TrimSpace(value)
	for _, t := range []Type{TypeFullTime, TypePartTime, TypeInternship, TypeContract} {
		if strings.EqualFold(trimmed, string(t)) {
			return t, true
		}
	}
	return "", false
}

type Job struct {
	ID            common.UUID `json:"id"`
	Title         string      `json:"title"`
	Company       string      `json:"company"`
	Location      string      `json:"location"`
	Description   string      `json:"description"`
	Requirements  []string    `json:"requirements"`
	Salary        string      `json:"salary"`
	Type          Type        `json:"type"`
	Departments   []string    `json:"departments"`
	MinCGPA       float64     `json:"min_cgpa"`
	Deadline      time.Time   `json:"deadline"`
	ExcludePlaced bool        `json:"exclude_placed"`
	Status        Status      `json:"status"`
	Logo          string      `json:"logo,omitempty"`
	PostedBy      common.UUID `json:"posted_by"`
	CreatedAt     time.Time   `json:"posted_date"`
	UpdatedAt     time.Time   `json:"updated_at"`
}

// AcceptsApplications reports whether the job is open and its deadline has not passed.
// The deadline itself is still inside the window.
func (j Job) AcceptsApplications(now time.Time) bool {
	return j.Status == StatusOpen && !now.After(j.Deadline)
}

// EffectiveStatus reports closed once the deadline has passed.
func (j Job) EffectiveStatus(now time.Time) Status {
	if j.AcceptsApplications(now) {
		return StatusOpen
	}
	return StatusClosed
}

// AllowsDepartment matches by code or full name; the all sentinel matches everyone.
func (j Job) AllowsDepartment(department string) bool {
	student := NormalizeDepartment(department)
	if student == "" {
		return false
	}
	for _, item := range j.Departments {
		code := NormalizeDepartment(item)
		if code == DepartmentAll || code == student {
			return true
		}
	}
	return false
}
