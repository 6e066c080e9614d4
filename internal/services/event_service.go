package services

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/isdelr/aurora-be/internal/models"
	"github.com/isdelr/aurora-be/internal/repository"
	"github.com/rs/zerolog/log"
)

const (
	defaultEventLimit = 20
	maxEventLimit     = 100
)

// EventServiceProvider defines the interface for event services.
type EventServiceProvider interface {
	CreateEvent(ctx context.Context, eventType, level, message string, userID *models.UserID) error
	GetRecentEvents(ctx context.Context, limit int) ([]models.Event, error)
	PruneEvents(ctx context.Context, olderThan time.Duration) (int64, error)
}

// EventService provides business logic for the audit trail.
type EventService struct {
	repo repository.EventRepository
	now  func() time.Time
}

// NewEventService creates a new EventService.
func NewEventService(repo repository.EventRepository) *EventService {
	return &EventService{repo: repo, now: time.Now}
}

// CreateEvent logs a new event.
func (s *EventService) CreateEvent(ctx context.Context, eventType, level, message string, userID *models.UserID) error {
	return s.repo.CreateEvent(ctx, models.Event{
		ID:        models.EventID(uuid.New().String()),
		Type:      eventType,
		Level:     level,
		Message:   message,
		UserID:    userID,
		CreatedAt: s.now(),
	})
}

// GetRecentEvents returns the newest events. The limit is clamped to [1, 100]
// with 20 used for non-positive values.
func (s *EventService) GetRecentEvents(ctx context.Context, limit int) ([]models.Event, error) {
	if limit <= 0 {
		limit = defaultEventLimit
	}
	if limit > maxEventLimit {
		limit = maxEventLimit
	}
	return s.repo.RecentEvents(ctx, limit)
}

// PruneEvents deletes events older than the retention window.
func (s *EventService) PruneEvents(ctx context.Context, olderThan time.Duration) (int64, error) {
	return s.repo.DeleteEventsBefore(ctx, s.now().Add(-olderThan))
}

// record writes an audit event without failing the caller's operation.
func record(ctx context.Context, events EventServiceProvider, eventType, message string, userID models.UserID) {
	if events == nil {
		return
	}
	// The request may already be finished; the audit write should still land.
	ctx = context.WithoutCancel(ctx)
	if err := events.CreateEvent(ctx, eventType, "info", message, &userID); err != nil {
		log.Error().Err(err).Str("event_type", eventType).Str("user_id", userID.String()).Msg("Failed to record event")
	}
}
