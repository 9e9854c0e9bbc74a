package profile

import (
	"context"
	"time"

	"placement/internal/common"
)

type Education struct {
	ID          common.UUID `json:"id"`
	Institution string      `json:"institution"`
	Degree      string      `json:"degree"`
	Field       string      `json:"field"`
	StartDate   time.Time   `json:"start_date"`
	EndDate     *time.Time  `json:"end_date,omitempty"`
	Current     bool        `json:"current"`
	Description string      `json:"description,omitempty"`
}

type Experience struct {
	ID          common.UUID `json:"id"`
	Company     string      `json:"company"`
	Position    string      `json:"position"`
	Location    string      `json:"location,omitempty"`
	StartDate   time.Time   `json:"start_date"`
	EndDate     *time.Time  `json:"end_date,omitempty"`
	Current     bool        `json:"current"`
	Description string      `json:"description,omitempty"`
}

type SocialLinks struct {
	LinkedIn  string `json:"linkedin,omitempty"`
	GitHub    string `json:"github,omitempty"`
	Portfolio string `json:"portfolio,omitempty"`
}

// StudentProfile holds the academic record used for eligibility.
type StudentProfile struct {
	UserID      common.UUID  `json:"user_id"`
	Department  string       `json:"department"`
	CGPA        float64      `json:"cgpa"`
	Year        string       `json:"year,omitempty"`
	Phone       string       `json:"phone,omitempty"`
	Bio         string       `json:"bio,omitempty"`
	Skills      []string     `json:"skills"`
	Education   []Education  `json:"education"`
	Experience  []Experience `json:"experience"`
	SocialLinks SocialLinks  `json:"social_links"`
	UpdatedAt   time.Time    `json:"updated_at"`
}

type StudentRepository interface {
	GetByUserID(ctx context.Context, userID common.UUID) (*StudentProfile, error)
	Upsert(ctx context.Context, profile StudentProfile) (*StudentProfile, error)
}
