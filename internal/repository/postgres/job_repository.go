package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/lib/pq"

	"placement/internal/common"
	"placement/internal/domain/job"
)

type JobRepository struct {
	db *sql.DB
}

func NewJobRepository(db *sql.DB) *JobRepository {
	return &JobRepository{db: db}
}

const jobColumns = `id, title, company, location, description, requirements, salary, job_type, departments, min_cgpa, deadline, exclude_placed, status, logo, posted_by, created_at, updated_at`

func (r *JobRepository) Create(ctx context.Context, item job.Job) (*job.Job, error) {
	item.ID = common.NewUUID()
	now := time.Now().UTC()
	item.CreatedAt = now
	item.UpdatedAt = now
	_, err := r.db.ExecContext(ctx, `INSERT INTO jobs (`+jobColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17)`,
		item.ID, item.Title, item.Company, item.Location, item.Description, pq.Array(item.Requirements), item.Salary, item.Type,
		pq.Array(item.Departments), item.MinCGPA, item.Deadline, item.ExcludePlaced, item.Status, item.Logo, item.PostedBy, item.CreatedAt, item.UpdatedAt)
	if err != nil {
		return nil, common.NewError(common.CodeInternal, "failed to create job", err)
	}
	return &item, nil
}

func (r *JobRepository) Update(ctx context.Context, item job.Job) (*job.Job, error) {
	item.UpdatedAt = time.Now().UTC()
	result, err := r.db.ExecContext(ctx, `UPDATE jobs SET title = $1, company = $2, location = $3, description = $4, requirements = $5, salary = $6, job_type = $7,
			departments = $8, min_cgpa = $9, deadline = $10, exclude_placed = $11, status = $12, logo = $13, updated_at = $14
		WHERE id = $15`,
		item.Title, item.Company, item.Location, item.Description, pq.Array(item.Requirements), item.Salary, item.Type,
		pq.Array(item.Departments), item.MinCGPA, item.Deadline, item.ExcludePlaced, item.Status, item.Logo, item.UpdatedAt, item.ID)
	if err != nil {
		return nil, common.NewError(common.CodeInternal, "failed to update job", err)
	}
	rows, err := result.RowsAffected()
	if err == nil && rows == 0 {
		return nil, common.NewError(common.CodeNotFound, "job not found", sql.ErrNoRows)
	}
	return &item, nil
}

func (r *JobRepository) Delete(ctx context.Context, id common.UUID) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM jobs WHERE id = $1`, id)
	if err != nil {
		return common.NewError(common.CodeInternal, "failed to delete job", err)
	}
	rows, err := result.RowsAffected()
	if err == nil && rows == 0 {
		return common.NewError(common.CodeNotFound, "job not found", sql.ErrNoRows)
	}
	return nil
}

func (r *JobRepository) GetByID(ctx context.Context, id common.UUID) (*job.Job, error) {
	item, err := scanJob(r.db.QueryRowContext(ctx, `SELECT `+jobColumns+` FROM jobs WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.NewError(common.CodeNotFound, "job not found", err)
		}
		return nil, common.NewError(common.CodeInternal, "failed to load job", err)
	}
	return item, nil
}

// List applies the filter in SQL. A job past its deadline counts as closed.
func (r *JobRepository) List(ctx context.Context, filter job.Filter) ([]job.Job, error) {
	var (
		where []string
		args  []any
	)
	arg := func(value any) string {
		args = append(args, value)
		return fmt.Sprintf("$%d", len(args))
	}
	now := filter.Now
	if now.IsZero() {
		now = time.Now().UTC()
	}
	switch filter.Status {
	case job.StatusOpen:
		where = append(where, fmt.Sprintf("status = 'open' AND deadline >= %s", arg(now)))
	case job.StatusClosed:
		where = append(where, fmt.Sprintf("(status = 'closed' OR deadline < %s)", arg(now)))
	}
	if filter.Type != "" {
		where = append(where, "job_type = "+arg(filter.Type))
	}
	if filter.Department != "" {
		where = append(where, fmt.Sprintf("(%s = ANY(departments) OR 'all' = ANY(departments))", arg(filter.Department)))
	}
	query := `SELECT ` + jobColumns + ` FROM jobs`
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY created_at DESC"
	if filter.Limit > 0 {
		query += " LIMIT " + arg(filter.Limit)
	}
	if filter.Offset > 0 {
		query += " OFFSET " + arg(filter.Offset)
	}
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, common.NewError(common.CodeInternal, "failed to list jobs", err)
	}
	defer rows.Close()
	var items []job.Job
	for rows.Next() {
		item, err := scanJob(rows)
		if err != nil {
			return nil, common.NewError(common.CodeInternal, "failed to scan job", err)
		}
		items = append(items, *item)
	}
	if err := rows.Err(); err != nil {
		return nil, common.NewError(common.CodeInternal, "failed to list jobs", err)
	}
	return items, nil
}

func scanJob(row scanner) (*job.Job, error) {
	var item job.Job
	if err := row.Scan(&item.ID, &item.Title, &item.Company, &item.Location, &item.Description, pq.Array(&item.Requirements), &item.Salary, &item.Type,
		pq.Array(&item.Departments), &item.MinCGPA, &item.Deadline, &item.ExcludePlaced, &item.Status, &item.Logo, &item.PostedBy, &item.CreatedAt, &item.UpdatedAt); err != nil {
		return nil, err
	}
	return &item, nil
}
