// Package mongodb implements the repositories on MongoDB collections.
package mongodb

import (
	"context"

	"github.com/isdelr/aurora-be/internal/repository"
	"go.mongodb.org/mongo-driver/mongo"
)

// Store provides the MongoDB-backed repositories.
type Store struct {
	client *mongo.Client
	users  *UserRepository
	posts  *PostRepository
	events *EventRepository
}

// New builds repositories over the collections of db.
func New(client *mongo.Client, db *mongo.Database) *Store {
	return &Store{
		client: client,
		users:  &UserRepository{coll: db.Collection("users")},
		posts:  &PostRepository{coll: db.Collection("posts")},
		events: &EventRepository{coll: db.Collection("events")},
	}
}

func (s *Store) Users() repository.UserRepository   { return s.users }
func (s *Store) Posts() repository.PostRepository   { return s.posts }
func (s *Store) Events() repository.EventRepository { return s.events }

func (s *Store) Ping(ctx context.Context) error {
	return s.client.Ping(ctx, nil)
}

func (s *Store) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}
