package sqlite

import (
	"context"
	"database/sql"
	"time"

	"github.com/isdelr/aurora-be/internal/models"
)

// EventRepository stores audit events in the events table.
type EventRepository struct {
	db *sql.DB
}

// CreateEvent logs a new event to the database.
func (r *EventRepository) CreateEvent(ctx context.Context, event models.Event) error {
	_, err := r.db.ExecContext(ctx,
		"INSERT INTO events (id, type, level, message, user_id, created_at) VALUES (?, ?, ?, ?, ?, ?)",
		event.ID, event.Type, event.Level, event.Message, event.UserID, event.CreatedAt.UTC(),
	)
	return err
}

// RecentEvents retrieves the most recent events from the database.
func (r *EventRepository) RecentEvents(ctx context.Context, limit int) ([]models.Event, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT id, type, level, message, user_id, created_at FROM events ORDER BY created_at DESC, rowid DESC LIMIT ?", limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	events := []models.Event{}
	for rows.Next() {
		var event models.Event
		var userID sql.NullString
		if err := rows.Scan(&event.ID, &event.Type, &event.Level, &event.Message, &userID, &event.CreatedAt); err != nil {
			return nil, err
		}
		if userID.Valid {
			id := models.UserID(userID.String)
			event.UserID = &id
		}
		events = append(events, event)
	}
	return events, rows.Err()
}

// DeleteEventsBefore removes events created before cutoff.
func (r *EventRepository) DeleteEventsBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	res, err := r.db.ExecContext(ctx, "DELETE FROM events WHERE created_at < ?", cutoff.UTC())
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
