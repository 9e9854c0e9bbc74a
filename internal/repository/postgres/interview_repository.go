package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	"placement/internal/common"
	"placement/internal/domain/interview"
)

type InterviewRepository struct {
	db *sql.DB
}

func NewInterviewRepository(db *sql.DB) *InterviewRepository {
	return &InterviewRepository{db: db}
}

const interviewColumns = `id, job_id, student_id, application_id, scheduled_at, duration_minutes, interview_type, location, notes, status, accepted, proposed_at, feedback, created_at, updated_at`

func (r *InterviewRepository) Create(ctx context.Context, item interview.Interview) (*interview.Interview, error) {
	item.ID = common.NewUUID()
	if item.CreatedAt.IsZero() {
		item.CreatedAt = time.Now().UTC()
		item.UpdatedAt = item.CreatedAt
	}
	feedback, err := encodeFeedback(item.Feedback)
	if err != nil {
		return nil, err
	}
	_, err = r.db.ExecContext(ctx, `INSERT INTO interviews (`+interviewColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)`,
		item.ID, item.JobID, item.StudentID, item.ApplicationID, item.ScheduledAt, item.Duration, item.Type, item.Location, item.Notes,
		item.Status, item.Accepted, item.ProposedAt, feedback, item.CreatedAt, item.UpdatedAt)
	if err != nil {
		return nil, common.NewError(common.CodeInternal, "failed to create interview", err)
	}
	return &item, nil
}

func (r *InterviewRepository) Update(ctx context.Context, item interview.Interview) (*interview.Interview, error) {
	if item.UpdatedAt.IsZero() {
		item.UpdatedAt = time.Now().UTC()
	}
	feedback, err := encodeFeedback(item.Feedback)
	if err != nil {
		return nil, err
	}
	result, err := r.db.ExecContext(ctx, `UPDATE interviews SET job_id = $1, student_id = $2, application_id = $3, scheduled_at = $4, duration_minutes = $5,
			interview_type = $6, location = $7, notes = $8, status = $9, accepted = $10, proposed_at = $11, feedback = $12, updated_at = $13
		WHERE id = $14`,
		item.JobID, item.StudentID, item.ApplicationID, item.ScheduledAt, item.Duration, item.Type, item.Location, item.Notes,
		item.Status, item.Accepted, item.ProposedAt, feedback, item.UpdatedAt, item.ID)
	if err != nil {
		return nil, common.NewError(common.CodeInternal, "failed to update interview", err)
	}
	rows, err := result.RowsAffected()
	if err == nil && rows == 0 {
		return nil, common.NewError(common.CodeNotFound, "interview not found", sql.ErrNoRows)
	}
	return &item, nil
}

func (r *InterviewRepository) GetByID(ctx context.Context, id common.UUID) (*interview.Interview, error) {
	item, err := scanInterview(r.db.QueryRowContext(ctx, `SELECT `+interviewColumns+` FROM interviews WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.NewError(common.CodeNotFound, "interview not found", err)
		}
		return nil, common.NewError(common.CodeInternal, "failed to load interview", err)
	}
	return item, nil
}

func (r *InterviewRepository) ListByStudent(ctx context.Context, studentID common.UUID) ([]interview.Interview, error) {
	return r.list(ctx, `SELECT `+interviewColumns+` FROM interviews WHERE student_id = $1 ORDER BY scheduled_at`, studentID)
}

func (r *InterviewRepository) List(ctx context.Context) ([]interview.Interview, error) {
	return r.list(ctx, `SELECT `+interviewColumns+` FROM interviews ORDER BY scheduled_at`)
}

func (r *InterviewRepository) list(ctx context.Context, query string, args ...any) ([]interview.Interview, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, common.NewError(common.CodeInternal, "failed to list interviews", err)
	}
	defer rows.Close()
	var items []interview.Interview
	for rows.Next() {
		item, err := scanInterview(rows)
		if err != nil {
			return nil, common.NewError(common.CodeInternal, "failed to scan interview", err)
		}
		items = append(items, *item)
	}
	if err := rows.Err(); err != nil {
		return nil, common.NewError(common.CodeInternal, "failed to list interviews", err)
	}
	return items, nil
}

func scanInterview(row scanner) (*interview.Interview, error) {
	var item interview.Interview
	var feedback []byte
	if err := row.Scan(&item.ID, &item.JobID, &item.StudentID, &item.ApplicationID, &item.ScheduledAt, &item.Duration, &item.Type, &item.Location, &item.Notes,
		&item.Status, &item.Accepted, &item.ProposedAt, &feedback, &item.CreatedAt, &item.UpdatedAt); err != nil {
		return nil, err
	}
	if len(feedback) > 0 {
		item.Feedback = &interview.Feedback{}
		if err := json.Unmarshal(feedback, item.Feedback); err != nil {
			return nil, err
		}
	}
	return &item, nil
}

func encodeFeedback(feedback *interview.Feedback) (any, error) {
	if feedback == nil {
		return nil, nil
	}
	raw, err := json.Marshal(feedback)
	if err != nil {
		return nil, common.NewError(common.CodeInternal, "failed to encode interview feedback", err)
	}
	return string(raw), nil
}
