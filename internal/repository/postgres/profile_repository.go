package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	"github.com/lib/pq"

	"placement/internal/common"
	"placement/internal/domain/profile"
)

type StudentProfileRepository struct {
	db *sql.DB
}

func NewStudentProfileRepository(db *sql.DB) *StudentProfileRepository {
	return &StudentProfileRepository{db: db}
}

func (r *StudentProfileRepository) GetByUserID(ctx context.Context, userID common.UUID) (*profile.StudentProfile, error) {
	row := r.db.QueryRowContext(ctx, `SELECT user_id, department, cgpa, year, phone, bio, skills, education, experience, social_links, updated_at
		FROM student_profiles WHERE user_id = $1`, userID)
	var item profile.StudentProfile
	var education, experience, links []byte
	if err := row.Scan(&item.UserID, &item.Department, &item.CGPA, &item.Year, &item.Phone, &item.Bio, pq.Array(&item.Skills), &education, &experience, &links, &item.UpdatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.NewError(common.CodeNotFound, "student profile not found", err)
		}
		return nil, common.NewError(common.CodeInternal, "failed to load student profile", err)
	}
	if err := json.Unmarshal(education, &item.Education); err != nil {
		return nil, common.NewError(common.CodeInternal, "failed to decode education", err)
	}
	if err := json.Unmarshal(experience, &item.Experience); err != nil {
		return nil, common.NewError(common.CodeInternal, "failed to decode experience", err)
	}
	if err := json.Unmarshal(links, &item.SocialLinks); err != nil {
		return nil, common.NewError(common.CodeInternal, "failed to decode social links", err)
	}
	return &item, nil
}

func (r *StudentProfileRepository) Upsert(ctx context.Context, item profile.StudentProfile) (*profile.StudentProfile, error) {
	if item.UpdatedAt.IsZero() {
		item.UpdatedAt = time.Now().UTC()
	}
	if item.Skills == nil {
		item.Skills = []string{}
	}
	if item.Education == nil {
		item.Education = []profile.Education{}
	}
	if item.Experience == nil {
		item.Experience = []profile.Experience{}
	}
	education, err := json.Marshal(item.Education)
	if err != nil {
		return nil, common.NewError(common.CodeInternal, "failed to encode education", err)
	}
	experience, err := json.Marshal(item.Experience)
	if err != nil {
		return nil, common.NewError(common.CodeInternal, "failed to encode experience", err)
	}
	links, err := json.Marshal(item.SocialLinks)
	if err != nil {
		return nil, common.NewError(common.CodeInternal, "failed to encode social links", err)
	}
	_, err = r.db.ExecContext(ctx, `INSERT INTO student_profiles (user_id, department, cgpa, year, phone, bio, skills, education, experience, social_links, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		ON CONFLICT (user_id) DO UPDATE SET department = EXCLUDED.department, cgpa = EXCLUDED.cgpa, year = EXCLUDED.year, phone = EXCLUDED.phone,
			bio = EXCLUDED.bio, skills = EXCLUDED.skills, education = EXCLUDED.education, experience = EXCLUDED.experience,
			social_links = EXCLUDED.social_links, updated_at = EXCLUDED.updated_at`,
		item.UserID, item.Department, item.CGPA, item.Year, item.Phone, item.Bio, pq.Array(item.Skills), string(education), string(experience), string(links), item.UpdatedAt)
	if err != nil {
		return nil, common.NewError(common.CodeInternal, "failed to save student profile", err)
	}
	return &item, nil
}
