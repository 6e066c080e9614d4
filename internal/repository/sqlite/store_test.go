package sqlite

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/isdelr/aurora-be/internal/database"
	"github.com/isdelr/aurora-be/internal/models"
	"github.com/isdelr/aurora-be/internal/repository"
)

func setupStore(t *testing.T) *Store {
	t.Helper()
	db, err := database.New(filepath.Join(t.TempDir(), "aurora.db"))
	if err != nil {
		t.Fatalf("database.New: %v", err)
	}
	if err := database.Migrate(context.Background(), db); err != nil {
		t.Fatalf("database.Migrate: %v", err)
	}
	store := New(db)
	t.Cleanup(func() { _ = store.Close(context.Background()) })
	return store
}

func testUser(id, username, email string) models.User {
	now := time.Now()
	return models.User{
		ID:           models.UserID(id),
		Username:     username,
		Email:        email,
		PasswordHash: "hash",
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

func testPost(id, owner string, created time.Time) models.Post {
	return models.Post{
		ID:        models.PostID(id),
		Title:     "Title " + id,
		Author:    "alice",
		AuthorID:  models.UserID(owner),
		Content:   "body",
		CreatedAt: created,
		UpdatedAt: created,
	}
}

func TestUsersRoundTripAndDuplicates(t *testing.T) {
	ctx := context.Background()
	users := setupStore(t).Users()

	if err := users.CreateUser(ctx, testUser("u1", "alice", "a@x.com")); err != nil {
		t.Fatalf("CreateUser: %v", err)
	}

	got, err := users.GetUserByEmail(ctx, "a@x.com")
	if err != nil {
		t.Fatalf("GetUserByEmail: %v", err)
	}
	if got.ID != "u1" || got.PasswordHash != "hash" || got.CreatedAt.IsZero() {
		t.Fatalf("unexpected user %+v", got)
	}

	if err := users.CreateUser(ctx, testUser("u2", "alice", "other@x.com")); !errors.Is(err, repository.ErrDuplicate) {
		t.Fatalf("duplicate username: expected ErrDuplicate, got %v", err)
	}
	if err := users.CreateUser(ctx, testUser("u3", "bob", "a@x.com")); !errors.Is(err, repository.ErrDuplicate) {
		t.Fatalf("duplicate email: expected ErrDuplicate, got %v", err)
	}

	exists, err := users.UserExists(ctx, "nobody@x.com", "alice")
	if err != nil || !exists {
		t.Fatalf("UserExists by username: %v %v", exists, err)
	}
	exists, err = users.UserExists(ctx, "nobody@x.com", "nobody")
	if err != nil || exists {
		t.Fatalf("UserExists for a free identity: %v %v", exists, err)
	}

	if _, err := users.GetUserByID(ctx, "missing"); !errors.Is(err, repository.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	n, err := users.CountUsers(ctx)
	if err != nil || n != 1 {
		t.Fatalf("CountUsers: %d %v", n, err)
	}
}

func TestListPostsNewestFirst(t *testing.T) {
	ctx := context.Background()
	posts := setupStore(t).Posts()

	empty, err := posts.ListPosts(ctx)
	if err != nil {
		t.Fatalf("ListPosts: %v", err)
	}
	if empty == nil || len(empty) != 0 {
		t.Fatalf("expected empty non-nil slice, got %#v", empty)
	}

	base := time.Now()
	tie := base.Add(time.Minute)
	for _, p := range []models.Post{
		testPost("p1", "u1", base),
		testPost("p2", "u1", tie),
		testPost("p3", "u1", tie),
	} {
		if err := posts.CreatePost(ctx, p); err != nil {
			t.Fatalf("CreatePost: %v", err)
		}
	}

	list, err := posts.ListPosts(ctx)
	if err != nil {
		t.Fatalf("ListPosts: %v", err)
	}
	var ids []models.PostID
	for _, p := range list {
		ids = append(ids, p.ID)
	}
	want := []models.PostID{"p3", "p2", "p1"}
	if len(ids) != len(want) {
		t.Fatalf("expected %v, got %v", want, ids)
	}
	for i := range want {
		if ids[i] != want[i] {
			t.Fatalf("expected %v, got %v", want, ids)
		}
	}
}

func TestUpdateOwnedPost(t *testing.T) {
	ctx := context.Background()
	posts := setupStore(t).Posts()
	created := time.Now().Add(-time.Hour)
	p := testPost("p1", "u1", created)
	p.Image = "http://img/1.png"
	if err := posts.CreatePost(ctx, p); err != nil {
		t.Fatalf("CreatePost: %v", err)
	}

	title := "New title"
	image := ""
	updated, err := posts.UpdateOwnedPost(ctx, "p1", "u1", models.PostUpdate{Title: &title, Image: &image}, time.Now())
	if err != nil {
		t.Fatalf("UpdateOwnedPost: %v", err)
	}
	if updated.Title != "New title" || updated.Content != "body" || updated.Image != "" {
		t.Fatalf("unexpected post after update %+v", updated)
	}
	if !updated.UpdatedAt.After(updated.CreatedAt) {
		t.Fatalf("expected updatedAt to advance: %v vs %v", updated.UpdatedAt, updated.CreatedAt)
	}

	if _, err := posts.UpdateOwnedPost(ctx, "p1", "u2", models.PostUpdate{Title: &title}, time.Now()); !errors.Is(err, repository.ErrNotOwner) {
		t.Fatalf("foreign update: expected ErrNotOwner, got %v", err)
	}
	if _, err := posts.UpdateOwnedPost(ctx, "nope", "u1", models.PostUpdate{Title: &title}, time.Now()); !errors.Is(err, repository.ErrNotFound) {
		t.Fatalf("missing update: expected ErrNotFound, got %v", err)
	}

	stored, err := posts.GetPost(ctx, "p1")
	if err != nil {
		t.Fatalf("GetPost: %v", err)
	}
	if stored.Title != "New title" {
		t.Fatalf("foreign update must not change the post, got %q", stored.Title)
	}
}

func TestDeleteOwnedPost(t *testing.T) {
	ctx := context.Background()
	posts := setupStore(t).Posts()
	if err := posts.CreatePost(ctx, testPost("p1", "u1", time.Now())); err != nil {
		t.Fatalf("CreatePost: %v", err)
	}

	if err := posts.DeleteOwnedPost(ctx, "p1", "u2"); !errors.Is(err, repository.ErrNotOwner) {
		t.Fatalf("expected ErrNotOwner, got %v", err)
	}
	if err := posts.DeleteOwnedPost(ctx, "p1", "u1"); err != nil {
		t.Fatalf("DeleteOwnedPost: %v", err)
	}
	if err := posts.DeleteOwnedPost(ctx, "p1", "u1"); !errors.Is(err, repository.ErrNotFound) {
		t.Fatalf("expected ErrNotFound on second delete, got %v", err)
	}
	if _, err := posts.GetPost(ctx, "p1"); !errors.Is(err, repository.ErrNotFound) {
		t.Fatalf("expected post gone, got %v", err)
	}
}

func TestEventsRecentAndPrune(t *testing.T) {
	ctx := context.Background()
	events := setupStore(t).Events()
	now := time.Now()
	uid := models.UserID("u1")

	for i, age := range []time.Duration{72 * time.Hour, 2 * time.Hour, time.Minute} {
		event := models.Event{
			ID:        models.EventID([]string{"e1", "e2", "e3"}[i]),
			Type:      models.EventPostCreate,
			Level:     "info",
			Message:   "created",
			CreatedAt: now.Add(-age),
		}
		if i == 2 {
			event.UserID = &uid
		}
		if err := events.CreateEvent(ctx, event); err != nil {
			t.Fatalf("CreateEvent: %v", err)
		}
	}

	recent, err := events.RecentEvents(ctx, 2)
	if err != nil {
		t.Fatalf("RecentEvents: %v", err)
	}
	if len(recent) != 2 || recent[0].ID != "e3" || recent[1].ID != "e2" {
		t.Fatalf("unexpected recent events %+v", recent)
	}
	if recent[0].UserID == nil || *recent[0].UserID != uid {
		t.Fatalf("expected user id on newest event")
	}
	if recent[1].UserID != nil {
		t.Fatalf("expected nil user id for system event")
	}

	deleted, err := events.DeleteEventsBefore(ctx, now.Add(-24*time.Hour))
	if err != nil {
		t.Fatalf("DeleteEventsBefore: %v", err)
	}
	if deleted != 1 {
		t.Fatalf("expected 1 pruned event, got %d", deleted)
	}
}
