package models

import "time"

// EventID identifies an audit event.
type EventID string

// Event represents a loggable action in the system.
type Event struct {
	ID        EventID   `json:"id" bson:"_id"`
	Type      string    `json:"type" bson:"type"`   // e.g., "post.create", "user.login"
	Level     string    `json:"level" bson:"level"` // e.g., "info", "warn", "error"
	Message   string    `json:"message" bson:"message"`
	UserID    *UserID   `json:"userId,omitempty" bson:"userId,omitempty"` // Nullable for system-wide events
	CreatedAt time.Time `json:"createdAt" bson:"createdAt"`
}

// Event types.
const (
	EventUserRegister = "user.register"
	EventUserLogin    = "user.login"
	EventPostCreate   = "post.create"
	EventPostUpdate   = "post.update"
	EventPostDelete   = "post.delete"
	EventEventsPrune  = "system.events.prune"
)
