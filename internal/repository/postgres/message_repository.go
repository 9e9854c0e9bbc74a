package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/lib/pq"

	"placement/internal/common"
	"placement/internal/domain/message"
)

type MessageRepository struct {
	db *sql.DB
}

func NewMessageRepository(db *sql.DB) *MessageRepository {
	return &MessageRepository{db: db}
}

const messageSelect = `SELECT m.id, m.title, m.content, m.departments, m.category, m.priority, m.pinned, m.send_email, m.author_id, m.created_at, m.updated_at,
	EXISTS (SELECT 1 FROM message_reads r WHERE r.message_id = m.id AND r.user_id = $1)
	FROM messages m`

func (r *MessageRepository) Create(ctx context.Context, item message.Message) (*message.Message, error) {
	item.ID = common.NewUUID()
	now := time.Now().UTC()
	if item.CreatedAt.IsZero() {
		item.CreatedAt = now
	}
	item.UpdatedAt = item.CreatedAt
	_, err := r.db.ExecContext(ctx, `INSERT INTO messages (id, title, content, departments, category, priority, pinned, send_email, author_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
		item.ID, item.Title, item.Content, pq.Array(item.Departments), item.Category, item.Priority, item.Pinned, item.SendEmail, item.AuthorID, item.CreatedAt, item.UpdatedAt)
	if err != nil {
		return nil, common.NewError(common.CodeInternal, "failed to create message", err)
	}
	return &item, nil
}

func (r *MessageRepository) Update(ctx context.Context, item message.Message) (*message.Message, error) {
	if item.UpdatedAt.IsZero() {
		item.UpdatedAt = time.Now().UTC()
	}
	result, err := r.db.ExecContext(ctx, `UPDATE messages SET title = $1, content = $2, departments = $3, category = $4, priority = $5, pinned = $6, send_email = $7, updated_at = $8
		WHERE id = $9`,
		item.Title, item.Content, pq.Array(item.Departments), item.Category, item.Priority, item.Pinned, item.SendEmail, item.UpdatedAt, item.ID)
	if err != nil {
		return nil, common.NewError(common.CodeInternal, "failed to update message", err)
	}
	rows, err := result.RowsAffected()
	if err == nil && rows == 0 {
		return nil, common.NewError(common.CodeNotFound, "message not found", sql.ErrNoRows)
	}
	return &item, nil
}

func (r *MessageRepository) Delete(ctx context.Context, id common.UUID) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM messages WHERE id = $1`, id)
	if err != nil {
		return common.NewError(common.CodeInternal, "failed to delete message", err)
	}
	rows, err := result.RowsAffected()
	if err == nil && rows == 0 {
		return common.NewError(common.CodeNotFound, "message not found", sql.ErrNoRows)
	}
	return nil
}

func (r *MessageRepository) GetByID(ctx context.Context, id, readerID common.UUID) (*message.Message, error) {
	item, err := scanMessage(r.db.QueryRowContext(ctx, messageSelect+` WHERE m.id = $2`, readerID, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.NewError(common.CodeNotFound, "message not found", err)
		}
		return nil, common.NewError(common.CodeInternal, "failed to load message", err)
	}
	return item, nil
}

func (r *MessageRepository) List(ctx context.Context, readerID common.UUID, departments []string, limit, offset int) ([]message.Message, error) {
	if departments == nil {
		departments = []string{}
	}
	rows, err := r.db.QueryContext(ctx, messageSelect+`
		WHERE cardinality($2::text[]) = 0 OR m.departments && $2::text[]
		ORDER BY m.pinned DESC, m.created_at DESC
		LIMIT $3 OFFSET $4`, readerID, pq.Array(departments), limit, offset)
	if err != nil {
		return nil, common.NewError(common.CodeInternal, "failed to list messages", err)
	}
	defer rows.Close()
	var items []message.Message
	for rows.Next() {
		item, err := scanMessage(rows)
		if err != nil {
			return nil, common.NewError(common.CodeInternal, "failed to scan message", err)
		}
		items = append(items, *item)
	}
	if err := rows.Err(); err != nil {
		return nil, common.NewError(common.CodeInternal, "failed to list messages", err)
	}
	return items, nil
}

func (r *MessageRepository) MarkRead(ctx context.Context, id, readerID common.UUID) error {
	_, err := r.db.ExecContext(ctx, `INSERT INTO message_reads (message_id, user_id, read_at) VALUES ($1, $2, $3)
		ON CONFLICT (message_id, user_id) DO NOTHING`, id, readerID, time.Now().UTC())
	if err != nil {
		return common.NewError(common.CodeInternal, "failed to mark message read", err)
	}
	return nil
}

func scanMessage(row scanner) (*message.Message, error) {
	var item message.Message
	if err := row.Scan(&item.ID, &item.Title, &item.Content, pq.Array(&item.Departments), &item.Category, &item.Priority, &item.Pinned, &item.SendEmail,
		&item.AuthorID, &item.CreatedAt, &item.UpdatedAt, &item.IsRead); err != nil {
		return nil, err
	}
	return &item, nil
}
