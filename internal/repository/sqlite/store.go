// Package sqlite implements the repositories on top of database/sql and the
// pure-Go modernc SQLite driver.
package sqlite

import (
	"context"
	"database/sql"
	"errors"

	"github.com/isdelr/aurora-be/internal/repository"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

// Store provides the SQLite-backed repositories.
type Store struct {
	db     *sql.DB
	users  *UserRepository
	posts  *PostRepository
	events *EventRepository
}

// New wraps an open, migrated database.
func New(db *sql.DB) *Store {
	return &Store{
		db:     db,
		users:  &UserRepository{db: db},
		posts:  &PostRepository{db: db},
		events: &EventRepository{db: db},
	}
}

func (s *Store) Users() repository.UserRepository   { return s.users }
func (s *Store) Posts() repository.PostRepository   { return s.posts }
func (s *Store) Events() repository.EventRepository { return s.events }

// Ping verifies the database is reachable.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Close releases the connection pool.
func (s *Store) Close(context.Context) error {
	return s.db.Close()
}

type scanner interface {
	Scan(dest ...any) error
}

func isUniqueViolation(err error) bool {
	var sqliteErr *sqlite.Error
	if !errors.As(err, &sqliteErr) {
		return false
	}
	code := sqliteErr.Code()
	return code == sqlite3.SQLITE_CONSTRAINT_UNIQUE || code == sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY
}
