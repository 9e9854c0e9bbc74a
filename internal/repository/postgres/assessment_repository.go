package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	"placement/internal/common"
	"placement/internal/domain/assessment"
)

type AssessmentRepository struct {
	db *sql.DB
}

func NewAssessmentRepository(db *sql.DB) *AssessmentRepository {
	return &AssessmentRepository{db: db}
}

const assessmentColumns = `id, title, description, assessment_type, deadline, duration_minutes, total_score, job_id, created_by, questions, created_at, updated_at`

func (r *AssessmentRepository) Create(ctx context.Context, item assessment.Assessment) (*assessment.Assessment, error) {
	item.ID = common.NewUUID()
	if item.CreatedAt.IsZero() {
		item.CreatedAt = time.Now().UTC()
		item.UpdatedAt = item.CreatedAt
	}
	questions, err := encodeQuestions(item.Questions)
	if err != nil {
		return nil, err
	}
	_, err = r.db.ExecContext(ctx, `INSERT INTO assessments (`+assessmentColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`,
		item.ID, item.Title, item.Description, item.Type, item.Deadline, item.Duration, item.TotalScore, item.JobID, item.CreatedBy, questions, item.CreatedAt, item.UpdatedAt)
	if err != nil {
		return nil, common.NewError(common.CodeInternal, "failed to create assessment", err)
	}
	return &item, nil
}

func (r *AssessmentRepository) Update(ctx context.Context, item assessment.Assessment) (*assessment.Assessment, error) {
	if item.UpdatedAt.IsZero() {
		item.UpdatedAt = time.Now().UTC()
	}
	questions, err := encodeQuestions(item.Questions)
	if err != nil {
		return nil, err
	}
	result, err := r.db.ExecContext(ctx, `UPDATE assessments SET title = $1, description = $2, assessment_type = $3, deadline = $4, duration_minutes = $5,
			total_score = $6, job_id = $7, questions = $8, updated_at = $9
		WHERE id = $10`,
		item.Title, item.Description, item.Type, item.Deadline, item.Duration, item.TotalScore, item.JobID, questions, item.UpdatedAt, item.ID)
	if err != nil {
		return nil, common.NewError(common.CodeInternal, "failed to update assessment", err)
	}
	rows, err := result.RowsAffected()
	if err == nil && rows == 0 {
		return nil, common.NewError(common.CodeNotFound, "assessment not found", sql.ErrNoRows)
	}
	return &item, nil
}

func (r *AssessmentRepository) Delete(ctx context.Context, id common.UUID) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM assessments WHERE id = $1`, id)
	if err != nil {
		return common.NewError(common.CodeInternal, "failed to delete assessment", err)
	}
	rows, err := result.RowsAffected()
	if err == nil && rows == 0 {
		return common.NewError(common.CodeNotFound, "assessment not found", sql.ErrNoRows)
	}
	return nil
}

func (r *AssessmentRepository) GetByID(ctx context.Context, id common.UUID) (*assessment.Assessment, error) {
	item, err := scanAssessment(r.db.QueryRowContext(ctx, `SELECT `+assessmentColumns+` FROM assessments WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.NewError(common.CodeNotFound, "assessment not found", err)
		}
		return nil, common.NewError(common.CodeInternal, "failed to load assessment", err)
	}
	return item, nil
}

func (r *AssessmentRepository) List(ctx context.Context) ([]assessment.Assessment, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+assessmentColumns+` FROM assessments ORDER BY deadline`)
	if err != nil {
		return nil, common.NewError(common.CodeInternal, "failed to list assessments", err)
	}
	defer rows.Close()
	var items []assessment.Assessment
	for rows.Next() {
		item, err := scanAssessment(rows)
		if err != nil {
			return nil, common.NewError(common.CodeInternal, "failed to scan assessment", err)
		}
		items = append(items, *item)
	}
	if err := rows.Err(); err != nil {
		return nil, common.NewError(common.CodeInternal, "failed to list assessments", err)
	}
	return items, nil
}

func scanAssessment(row scanner) (*assessment.Assessment, error) {
	var item assessment.Assessment
	var questions []byte
	if err := row.Scan(&item.ID, &item.Title, &item.Description, &item.Type, &item.Deadline, &item.Duration, &item.TotalScore, &item.JobID, &item.CreatedBy,
		&questions, &item.CreatedAt, &item.UpdatedAt); err != nil {
		return nil, err
	}
	if err := json.Unmarshal(questions, &item.Questions); err != nil {
		return nil, err
	}
	return &item, nil
}

func encodeQuestions(questions []assessment.Question) (string, error) {
	if questions == nil {
		questions = []assessment.Question{}
	}
	raw, err := json.Marshal(questions)
	if err != nil {
		return "", common.NewError(common.CodeInternal, "failed to encode questions", err)
	}
	return string(raw), nil
}

type SubmissionRepository struct {
	db *sql.DB
}

func NewSubmissionRepository(db *sql.DB) *SubmissionRepository {
	return &SubmissionRepository{db: db}
}

const submissionColumns = `id, assessment_id, student_id, answers, score, feedback, status, submitted_at`

// Create relies on assessment_submissions_student_key to refuse a second submission.
func (r *SubmissionRepository) Create(ctx context.Context, item assessment.Submission) (*assessment.Submission, error) {
	item.ID = common.NewUUID()
	if item.SubmittedAt.IsZero() {
		item.SubmittedAt = time.Now().UTC()
	}
	if item.Answers == nil {
		item.Answers = []assessment.Answer{}
	}
	answers, err := json.Marshal(item.Answers)
	if err != nil {
		return nil, common.NewError(common.CodeInternal, "failed to encode answers", err)
	}
	_, err = r.db.ExecContext(ctx, `INSERT INTO assessment_submissions (`+submissionColumns+`) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		item.ID, item.AssessmentID, item.StudentID, string(answers), item.Score, item.Feedback, item.Status, item.SubmittedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, common.NewError(common.CodeAlreadyApplied, "assessment already submitted", err)
		}
		return nil, common.NewError(common.CodeInternal, "failed to create submission", err)
	}
	return &item, nil
}

func (r *SubmissionRepository) GetByID(ctx context.Context, id common.UUID) (*assessment.Submission, error) {
	return r.get(ctx, `SELECT `+submissionColumns+` FROM assessment_submissions WHERE id = $1`, id)
}

func (r *SubmissionRepository) Find(ctx context.Context, assessmentID, studentID common.UUID) (*assessment.Submission, error) {
	return r.get(ctx, `SELECT `+submissionColumns+` FROM assessment_submissions WHERE assessment_id = $1 AND student_id = $2`, assessmentID, studentID)
}

func (r *SubmissionRepository) ListByAssessment(ctx context.Context, assessmentID common.UUID) ([]assessment.Submission, error) {
	return r.list(ctx, `SELECT `+submissionColumns+` FROM assessment_submissions WHERE assessment_id = $1 ORDER BY submitted_at`, assessmentID)
}

func (r *SubmissionRepository) ListByStudent(ctx context.Context, studentID common.UUID) ([]assessment.Submission, error) {
	return r.list(ctx, `SELECT `+submissionColumns+` FROM assessment_submissions WHERE student_id = $1 ORDER BY submitted_at`, studentID)
}

func (r *SubmissionRepository) Grade(ctx context.Context, id common.UUID, score int, feedback string) (*assessment.Submission, error) {
	result, err := r.db.ExecContext(ctx, `UPDATE assessment_submissions SET score = $1, feedback = $2, status = $3 WHERE id = $4`,
		score, feedback, assessment.SubmissionGraded, id)
	if err != nil {
		return nil, common.NewError(common.CodeInternal, "failed to grade submission", err)
	}
	rows, err := result.RowsAffected()
	if err == nil && rows == 0 {
		return nil, common.NewError(common.CodeNotFound, "submission not found", sql.ErrNoRows)
	}
	return r.GetByID(ctx, id)
}

func (r *SubmissionRepository) get(ctx context.Context, query string, args ...any) (*assessment.Submission, error) {
	item, err := scanSubmission(r.db.QueryRowContext(ctx, query, args...))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.NewError(common.CodeNotFound, "submission not found", err)
		}
		return nil, common.NewError(common.CodeInternal, "failed to load submission", err)
	}
	return item, nil
}

func (r *SubmissionRepository) list(ctx context.Context, query string, args ...any) ([]assessment.Submission, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, common.NewError(common.CodeInternal, "failed to list submissions", err)
	}
	defer rows.Close()
	var items []assessment.Submission
	for rows.Next() {
		item, err := scanSubmission(rows)
		if err != nil {
			return nil, common.NewError(common.CodeInternal, "failed to scan submission", err)
		}
		items = append(items, *item)
	}
	if err := rows.Err(); err != nil {
		return nil, common.NewError(common.CodeInternal, "failed to list submissions", err)
	}
	return items, nil
}

func scanSubmission(row scanner) (*assessment.Submission, error) {
	var item assessment.Submission
	var answers []byte
	var score sql.NullInt64
	if err := row.Scan(&item.ID, &item.AssessmentID, &item.StudentID, &answers, &score, &item.Feedback, &item.Status, &item.SubmittedAt); err != nil {
		return nil, err
	}
	if score.Valid {
		value := int(score.Int64)
		item.Score = &value
	}
	if err := json.Unmarshal(answers, &item.Answers); err != nil {
		return nil, err
	}
	return &item, nil
}
