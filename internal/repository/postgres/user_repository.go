package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/lib/pq"

	"placement/internal/common"
	"placement/internal/domain/user"
)

type UserRepository struct {
	db *sql.DB
}

func NewUserRepository(db *sql.DB) *UserRepository {
	return &UserRepository{db: db}
}

const userColumns = `id, email, name, role, password_hash, created_at, updated_at`

func (r *UserRepository) Create(ctx context.Context, account user.User) (*user.User, error) {
	account.ID = common.NewUUID()
	now := time.Now().UTC()
	account.CreatedAt = now
	account.UpdatedAt = now
	account.Email = user.NormalizeEmail(account.Email)
	_, err := r.db.ExecContext(ctx, `INSERT INTO users (`+userColumns+`) VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		account.ID, account.Email, account.Name, account.Role, account.PasswordHash, account.CreatedAt, account.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, common.NewError(common.CodeConflict, "email already registered", err)
		}
		return nil, common.NewError(common.CodeInternal, "failed to create user", err)
	}
	return &account, nil
}

func (r *UserRepository) GetByID(ctx context.Context, id common.UUID) (*user.User, error) {
	return r.get(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id)
}

func (r *UserRepository) FindByEmail(ctx context.Context, email string) (*user.User, error) {
	return r.get(ctx, `SELECT `+userColumns+` FROM users WHERE email = $1`, user.NormalizeEmail(email))
}

// ListStudentEmails returns student addresses whose profile department is in departments.
// An empty list or one containing "all" selects every student.
func (r *UserRepository) ListStudentEmails(ctx context.Context, departments []string) ([]string, error) {
	if departments == nil {
		departments = []string{}
	}
	rows, err := r.db.QueryContext(ctx, `SELECT u.email
		FROM users u
		LEFT JOIN student_profiles p ON p.user_id = u.id
		WHERE u.role = $1
		  AND (cardinality($2::text[]) = 0 OR 'all' = ANY($2::text[]) OR p.department = ANY($2::text[]))
		ORDER BY u.email`, user.RoleStudent, pq.Array(departments))
	if err != nil {
		return nil, common.NewError(common.CodeInternal, "failed to list student emails", err)
	}
	defer rows.Close()
	var emails []string
	for rows.Next() {
		var email string
		if err := rows.Scan(&email); err != nil {
			return nil, common.NewError(common.CodeInternal, "failed to scan student email", err)
		}
		emails = append(emails, email)
	}
	if err := rows.Err(); err != nil {
		return nil, common.NewError(common.CodeInternal, "failed to list student emails", err)
	}
	return emails, nil
}

// List joins student profiles so admins see department and CGPA next to each student.
func (r *UserRepository) List(ctx context.Context, filter user.Filter) ([]user.DirectoryEntry, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT u.id, u.email, u.name, u.role, u.created_at, u.updated_at, p.department, p.cgpa
		FROM users u
		LEFT JOIN student_profiles p ON p.user_id = u.id
		WHERE ($1::text = '' OR u.role = $1::text)
		  AND ($2::text = '' OR p.department = $2::text)
		ORDER BY u.role, u.name, u.email
		LIMIT $3 OFFSET $4`, string(filter.Role), filter.Department, filter.Limit, filter.Offset)
	if err != nil {
		return nil, common.NewError(common.CodeInternal, "failed to list users", err)
	}
	defer rows.Close()
	entries := []user.DirectoryEntry{}
	for rows.Next() {
		var (
			entry      user.DirectoryEntry
			department sql.NullString
			cgpa       sql.NullFloat64
		)
		if err := rows.Scan(&entry.ID, &entry.Email, &entry.Name, &entry.Role, &entry.CreatedAt, &entry.UpdatedAt, &department, &cgpa); err != nil {
			return nil, common.NewError(common.CodeInternal, "failed to scan user", err)
		}
		entry.Department = department.String
		if cgpa.Valid {
			value := cgpa.Float64
			entry.CGPA = &value
		}
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, common.NewError(common.CodeInternal, "failed to list users", err)
	}
	return entries, nil
}

func (r *UserRepository) get(ctx context.Context, query string, arg any) (*user.User, error) {
	var account user.User
	err := r.db.QueryRowContext(ctx, query, arg).Scan(&account.ID, &account.Email, &account.Name, &account.Role, &account.PasswordHash, &account.CreatedAt, &account.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.NewError(common.CodeNotFound, "user not found", err)
		}
		return nil, common.NewError(common.CodeInternal, "failed to load user", err)
	}
	return &account, nil
}
