package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/isdelr/aurora-be/internal/models"
	"github.com/isdelr/aurora-be/internal/repository"
	"github.com/rs/zerolog/log"
)

// PostServiceProvider defines the interface for post services.
type PostServiceProvider interface {
	GetAllPosts(ctx context.Context) ([]models.Post, error)
	GetPostByID(ctx context.Context, id models.PostID) (models.Post, error)
	CreatePost(ctx context.Context, caller models.User, title, author, content, image string) (models.Post, error)
	UpdatePost(ctx context.Context, caller models.User, id models.PostID, update models.PostUpdate) (models.Post, error)
	DeletePost(ctx context.Context, caller models.User, id models.PostID) error
}

// PostService provides business logic for posts. Mutations are restricted to
// the post's author.
type PostService struct {
	repo      repository.PostRepository
	events    EventServiceProvider
	publisher PostPublisher
	now       func() time.Time
}

// NewPostService creates a new PostService. publisher may be nil.
func NewPostService(repo repository.PostRepository, events EventServiceProvider, publisher PostPublisher) *PostService {
	return &PostService{
		repo:      repo,
		events:    events,
		publisher: publisher,
		now:       time.Now,
	}
}

// GetAllPosts returns every post, newest first.
func (s *PostService) GetAllPosts(ctx context.Context) ([]models.Post, error) {
	return s.repo.ListPosts(ctx)
}

// GetPostByID retrieves a single post.
func (s *PostService) GetPostByID(ctx context.Context, id models.PostID) (models.Post, error) {
	post, err := s.repo.GetPost(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return models.Post{}, newClientError(ErrNotFound, "Post not found")
		}
		return models.Post{}, err
	}
	return post, nil
}

// CreatePost stores a new post owned by caller. The author display name is
// taken as given; the owner id always comes from the session.
func (s *PostService) CreatePost(ctx context.Context, caller models.User, title, author, content, image string) (models.Post, error) {
	if caller.ID == "" {
		return models.Post{}, newClientError(ErrUnauthorized, "Not authorized")
	}

	title = strings.TrimSpace(title)
	author = strings.TrimSpace(author)
	if title == "" || author == "" || content == "" {
		return models.Post{}, newClientError(ErrValidation, "Please provide all required fields")
	}

	// Version 7 ids grow with creation time, so they order posts created
	// within the same clock tick.
	id, err := uuid.NewV7()
	if err != nil {
		return models.Post{}, fmt.Errorf("failed to generate post id: %w", err)
	}

	now := s.now()
	post := models.Post{
		ID:        models.PostID(id.String()),
		Title:     title,
		Author:    author,
		AuthorID:  caller.ID,
		Content:   content,
		Image:     image,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.repo.CreatePost(ctx, post); err != nil {
		return models.Post{}, err
	}

	record(ctx, s.events, models.EventPostCreate, fmt.Sprintf("Post '%s' created.", post.Title), caller.ID)
	s.publish(ctx, models.PostCreated, post)
	return post, nil
}

// UpdatePost applies update when caller owns the post. Blank title or content
// leave the stored value as is; image is replaced whenever supplied.
func (s *PostService) UpdatePost(ctx context.Context, caller models.User, id models.PostID, update models.PostUpdate) (models.Post, error) {
	if caller.ID == "" {
		return models.Post{}, newClientError(ErrUnauthorized, "Not authorized")
	}

	post, err := s.repo.UpdateOwnedPost(ctx, id, caller.ID, update.Normalize(), s.now())
	if err != nil {
		return models.Post{}, ownershipError(err, "edit")
	}

	record(ctx, s.events, models.EventPostUpdate, fmt.Sprintf("Post '%s' updated.", post.Title), caller.ID)
	s.publish(ctx, models.PostUpdated, post)
	return post, nil
}

// DeletePost removes the post when caller owns it.
func (s *PostService) DeletePost(ctx context.Context, caller models.User, id models.PostID) error {
	if caller.ID == "" {
		return newClientError(ErrUnauthorized, "Not authorized")
	}

	if err := s.repo.DeleteOwnedPost(ctx, id, caller.ID); err != nil {
		return ownershipError(err, "delete")
	}

	record(ctx, s.events, models.EventPostDelete, fmt.Sprintf("Post %s deleted.", id), caller.ID)
	s.publish(ctx, models.PostDeleted, models.Post{ID: id, AuthorID: caller.ID})
	return nil
}

func (s *PostService) publish(ctx context.Context, action string, post models.Post) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.PublishPost(context.WithoutCancel(ctx), action, post); err != nil {
		log.Warn().Err(err).Str("action", action).Str("post_id", post.ID.String()).Msg("Failed to publish post change")
	}
}

func ownershipError(err error, verb string) error {
	switch {
	case errors.Is(err, repository.ErrNotFound):
		return newClientError(ErrNotFound, "Post not found")
	case errors.Is(err, repository.ErrNotOwner):
		return newClientError(ErrForbidden, fmt.Sprintf("Not authorized to %s this post", verb))
	default:
		return err
	}
}
