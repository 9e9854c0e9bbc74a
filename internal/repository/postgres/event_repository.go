package postgres

import (
	"context"
	"database/sql"
	"time"

	"placement/internal/common"
	"placement/internal/domain/event"
)

type EventRepository struct {
	db *sql.DB
}

func NewEventRepository(db *sql.DB) *EventRepository {
	return &EventRepository{db: db}
}

const eventColumns = `id, title, event_type, starts_at, location, description, created_by, created_at`

func (r *EventRepository) Create(ctx context.Context, item event.Event) (*event.Event, error) {
	item.ID = common.NewUUID()
	if item.CreatedAt.IsZero() {
		item.CreatedAt = time.Now().UTC()
	}
	_, err := r.db.ExecContext(ctx, `INSERT INTO placement_events (`+eventColumns+`) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		item.ID, item.Title, item.Type, item.Date.UTC(), item.Location, item.Description, item.CreatedBy, item.CreatedAt)
	if err != nil {
		return nil, common.NewError(common.CodeInternal, "failed to create event", err)
	}
	return &item, nil
}

func (r *EventRepository) Delete(ctx context.Context, id common.UUID) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM placement_events WHERE id = $1`, id)
	if err != nil {
		return common.NewError(common.CodeInternal, "failed to delete event", err)
	}
	rows, err := result.RowsAffected()
	if err == nil && rows == 0 {
		return common.NewError(common.CodeNotFound, "event not found", sql.ErrNoRows)
	}
	return nil
}

func (r *EventRepository) Upcoming(ctx context.Context, from time.Time, limit int) ([]event.Event, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+eventColumns+` FROM placement_events
		WHERE starts_at >= $1 ORDER BY starts_at, title LIMIT $2`, from.UTC(), limit)
	if err != nil {
		return nil, common.NewError(common.CodeInternal, "failed to list events", err)
	}
	defer rows.Close()
	items := []event.Event{}
	for rows.Next() {
		var item event.Event
		if err := rows.Scan(&item.ID, &item.Title, &item.Type, &item.Date, &item.Location, &item.Description, &item.CreatedBy, &item.CreatedAt); err != nil {
			return nil, common.NewError(common.CodeInternal, "failed to scan event", err)
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, common.NewError(common.CodeInternal, "failed to list events", err)
	}
	return items, nil
}
