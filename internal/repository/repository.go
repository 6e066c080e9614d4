// Package repository defines the persistence contracts shared by the SQLite
// and MongoDB backends.
package repository

import (
	"context"
	"errors"
	"time"

	"github.com/isdelr/aurora-be/internal/models"
)

var (
	// ErrNotFound is returned when no record matches the lookup.
	ErrNotFound = errors.New("record not found")
	// ErrDuplicate is returned when a unique field is already taken.
	ErrDuplicate = errors.New("duplicate record")
	// ErrNotOwner is returned by owner-conditional writes when the record exists
	// but belongs to someone else.
	ErrNotOwner = errors.New("record owned by another user")
)

// UserRepository persists user accounts.
type UserRepository interface {
	CreateUser(ctx context.Context, user models.User) error
	GetUserByID(ctx context.Context, id models.UserID) (models.User, error)
	// GetUserByEmail returns the user including the password hash.
	GetUserByEmail(ctx context.Context, email string) (models.User, error)
	UserExists(ctx context.Context, email, username string) (bool, error)
	CountUsers(ctx context.Context) (int64, error)
}

// PostRepository persists posts.
type PostRepository interface {
	// ListPosts returns every post, newest first.
	ListPosts(ctx context.Context) ([]models.Post, error)
	GetPost(ctx context.Context, id models.PostID) (models.Post, error)
	CreatePost(ctx context.Context, post models.Post) error
	// UpdateOwnedPost applies update in a single write matching both id and owner.
	// It returns ErrNotFound for an unknown id and ErrNotOwner for a foreign post.
	UpdateOwnedPost(ctx context.Context, id models.PostID, owner models.UserID, update models.PostUpdate, now time.Time) (models.Post, error)
	// DeleteOwnedPost removes the post in a single write matching both id and owner.
	DeleteOwnedPost(ctx context.Context, id models.PostID, owner models.UserID) error
	CountPosts(ctx context.Context) (int64, error)
}

// EventRepository persists audit events.
type EventRepository interface {
	CreateEvent(ctx context.Context, event models.Event) error
	RecentEvents(ctx context.Context, limit int) ([]models.Event, error)
	DeleteEventsBefore(ctx context.Context, cutoff time.Time) (int64, error)
}

// Store bundles the repositories of one backend.
type Store interface {
	Users() UserRepository
	Posts() PostRepository
	Events() EventRepository
	Ping(ctx context.Context) error
	Close(ctx context.Context) error
}
