package services

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/isdelr/aurora-be/internal/database"
	"github.com/isdelr/aurora-be/internal/models"
	"github.com/isdelr/aurora-be/internal/repository/sqlite"
	"golang.org/x/crypto/bcrypt"
)

type recordedPublish struct {
	action string
	post   models.Post
}

type fakePublisher struct {
	mu    sync.Mutex
	calls []recordedPublish
	err   error
}

func (f *fakePublisher) PublishPost(_ context.Context, action string, post models.Post) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, recordedPublish{action: action, post: post})
	return f.err
}

type testEnv struct {
	users     *UserService
	posts     *PostService
	events    *EventService
	publisher *fakePublisher
}

func setupServices(t *testing.T) *testEnv {
	t.Helper()
	db, err := database.New(filepath.Join(t.TempDir(), "aurora.db"))
	if err != nil {
		t.Fatalf("database.New: %v", err)
	}
	if err := database.Migrate(context.Background(), db); err != nil {
		t.Fatalf("database.Migrate: %v", err)
	}
	store := sqlite.New(db)
	t.Cleanup(func() { _ = store.Close(context.Background()) })

	events := NewEventService(store.Events())
	pub := &fakePublisher{}
	return &testEnv{
		users:     NewUserService(store.Users(), events, bcrypt.MinCost),
		posts:     NewPostService(store.Posts(), events, pub),
		events:    events,
		publisher: pub,
	}
}

func mustRegister(t *testing.T, env *testEnv, username, email string) models.User {
	t.Helper()
	user, err := env.users.CreateUser(context.Background(), username, email, "secret1")
	if err != nil {
		t.Fatalf("CreateUser(%s): %v", username, err)
	}
	return user
}

func TestRegisterThenLogin(t *testing.T) {
	env := setupServices(t)
	ctx := context.Background()

	alice := mustRegister(t, env, "alice", "Alice@X.com ")
	if alice.PasswordHash != "" {
		t.Fatalf("password hash must not be returned")
	}
	if alice.Email != "alice@x.com" {
		t.Fatalf("expected normalized email, got %q", alice.Email)
	}

	logged, err := env.users.AuthenticateUser(ctx, "alice@x.com", "secret1")
	if err != nil {
		t.Fatalf("AuthenticateUser: %v", err)
	}
	if logged.ID != alice.ID || logged.PasswordHash != "" {
		t.Fatalf("unexpected login result %+v", logged)
	}
}

func TestRegisterRejectsDuplicatesAndBlanks(t *testing.T) {
	env := setupServices(t)
	ctx := context.Background()
	mustRegister(t, env, "alice", "a@x.com")

	if _, err := env.users.CreateUser(ctx, "alice", "b@x.com", "pw"); !errors.Is(err, ErrConflict) {
		t.Fatalf("duplicate username: expected ErrConflict, got %v", err)
	}
	if _, err := env.users.CreateUser(ctx, "bob", "A@x.com", "pw"); !errors.Is(err, ErrConflict) {
		t.Fatalf("duplicate email: expected ErrConflict, got %v", err)
	}
	if _, err := env.users.CreateUser(ctx, "dave", "d@x.com", strings.Repeat("p", 73)); !errors.Is(err, ErrValidation) {
		t.Fatalf("overlong password: expected ErrValidation, got %v", err)
	}
	if _, err := env.users.CreateUser(ctx, "erin", "e@x.com", strings.Repeat("p", 72)); err != nil {
		t.Fatalf("72 byte password must be accepted: %v", err)
	}
	_, err := env.users.CreateUser(ctx, "carol", "", "pw")
	if !errors.Is(err, ErrValidation) || err.Error() != "Please provide all fields" {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestLoginFailuresAreIndistinguishable(t *testing.T) {
	env := setupServices(t)
	ctx := context.Background()
	mustRegister(t, env, "alice", "a@x.com")

	_, wrongPassword := env.users.AuthenticateUser(ctx, "a@x.com", "nope")
	_, unknownEmail := env.users.AuthenticateUser(ctx, "ghost@x.com", "secret1")

	for _, err := range []error{wrongPassword, unknownEmail} {
		if !errors.Is(err, ErrInvalidCredentials) {
			t.Fatalf("expected ErrInvalidCredentials, got %v", err)
		}
	}
	if wrongPassword.Error() != unknownEmail.Error() {
		t.Fatalf("messages differ: %q vs %q", wrongPassword, unknownEmail)
	}

	if _, err := env.users.AuthenticateUser(ctx, "", "x"); !errors.Is(err, ErrValidation) {
		t.Fatalf("expected ErrValidation for missing email, got %v", err)
	}
}

func TestPostLifecycleAndOwnership(t *testing.T) {
	env := setupServices(t)
	ctx := context.Background()
	alice := mustRegister(t, env, "alice", "a@x.com")
	bob := mustRegister(t, env, "bob", "b@x.com")

	post, err := env.posts.CreatePost(ctx, alice, "Hi", "alice", "body", "")
	if err != nil {
		t.Fatalf("CreatePost: %v", err)
	}
	if post.AuthorID != alice.ID {
		t.Fatalf("expected author id %s, got %s", alice.ID, post.AuthorID)
	}

	title := "Hijacked"
	if _, err := env.posts.UpdatePost(ctx, bob, post.ID, models.PostUpdate{Title: &title}); !errors.Is(err, ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	} else if err.Error() != "Not authorized to edit this post" {
		t.Fatalf("unexpected message %q", err)
	}
	if err := env.posts.DeletePost(ctx, bob, post.ID); !errors.Is(err, ErrForbidden) {
		t.Fatalf("expected ErrForbidden on delete, got %v", err)
	}

	unchanged, err := env.posts.GetPostByID(ctx, post.ID)
	if err != nil {
		t.Fatalf("GetPostByID: %v", err)
	}
	if unchanged.Title != "Hi" {
		t.Fatalf("post changed by non-owner: %q", unchanged.Title)
	}

	if err := env.posts.DeletePost(ctx, alice, post.ID); err != nil {
		t.Fatalf("DeletePost: %v", err)
	}
	if _, err := env.posts.GetPostByID(ctx, post.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if _, err := env.posts.UpdatePost(ctx, alice, post.ID, models.PostUpdate{Title: &title}); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound on update of deleted post, got %v", err)
	}

	actions := []string{}
	for _, c := range env.publisher.calls {
		actions = append(actions, c.action)
	}
	if len(actions) != 2 || actions[0] != models.PostCreated || actions[1] != models.PostDeleted {
		t.Fatalf("unexpected published actions %v", actions)
	}
}

func TestUpdateKeepsBlankTitleAndContent(t *testing.T) {
	env := setupServices(t)
	ctx := context.Background()
	alice := mustRegister(t, env, "alice", "a@x.com")
	post, err := env.posts.CreatePost(ctx, alice, "Hi", "alice", "body", "http://img/1.png")
	if err != nil {
		t.Fatalf("CreatePost: %v", err)
	}

	blank := ""
	updated, err := env.posts.UpdatePost(ctx, alice, post.ID, models.PostUpdate{Title: &blank, Content: &blank, Image: &blank})
	if err != nil {
		t.Fatalf("UpdatePost: %v", err)
	}
	if updated.Title != "Hi" || updated.Content != "body" {
		t.Fatalf("blank fields must leave stored values, got %+v", updated)
	}
	if updated.Image != "" {
		t.Fatalf("expected image cleared, got %q", updated.Image)
	}
}

func TestCreatePostValidation(t *testing.T) {
	env := setupServices(t)
	ctx := context.Background()
	alice := mustRegister(t, env, "alice", "a@x.com")

	if _, err := env.posts.CreatePost(ctx, alice, "  ", "alice", "body", ""); !errors.Is(err, ErrValidation) {
		t.Fatalf("expected ErrValidation for blank title, got %v", err)
	}
	if _, err := env.posts.CreatePost(ctx, alice, "Hi", "alice", "", ""); !errors.Is(err, ErrValidation) {
		t.Fatalf("expected ErrValidation for empty content, got %v", err)
	}
	if _, err := env.posts.CreatePost(ctx, models.User{}, "Hi", "alice", "body", ""); !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized without caller, got %v", err)
	}
}

func TestListNewestFirst(t *testing.T) {
	env := setupServices(t)
	ctx := context.Background()
	alice := mustRegister(t, env, "alice", "a@x.com")

	clock := time.Now()
	env.posts.now = func() time.Time {
		clock = clock.Add(time.Second)
		return clock
	}
	for _, title := range []string{"first", "second", "third"} {
		if _, err := env.posts.CreatePost(ctx, alice, title, "alice", "body", ""); err != nil {
			t.Fatalf("CreatePost: %v", err)
		}
	}

	list, err := env.posts.GetAllPosts(ctx)
	if err != nil {
		t.Fatalf("GetAllPosts: %v", err)
	}
	if len(list) != 3 || list[0].Title != "third" || list[2].Title != "first" {
		t.Fatalf("unexpected order %+v", list)
	}
}

func TestEventsRecordedAndClamped(t *testing.T) {
	env := setupServices(t)
	ctx := context.Background()
	alice := mustRegister(t, env, "alice", "a@x.com")
	if _, err := env.users.AuthenticateUser(ctx, "a@x.com", "secret1"); err != nil {
		t.Fatalf("AuthenticateUser: %v", err)
	}

	events, err := env.events.GetRecentEvents(ctx, 0)
	if err != nil {
		t.Fatalf("GetRecentEvents: %v", err)
	}
	if len(events) != 2 {
		t.Fatalf("expected register and login events, got %d", len(events))
	}
	if events[0].Type != models.EventUserLogin || events[1].Type != models.EventUserRegister {
		t.Fatalf("unexpected event order %s, %s", events[0].Type, events[1].Type)
	}
	if events[0].UserID == nil || *events[0].UserID != alice.ID {
		t.Fatalf("expected event tied to alice")
	}

	env.events.now = func() time.Time { return time.Now().Add(48 * time.Hour) }
	pruned, err := env.events.PruneEvents(ctx, 24*time.Hour)
	if err != nil {
		t.Fatalf("PruneEvents: %v", err)
	}
	if pruned != 2 {
		t.Fatalf("expected 2 pruned events, got %d", pruned)
	}
}

func TestPublishersJoinErrors(t *testing.T) {
	ok := &fakePublisher{}
	failing := &fakePublisher{err: errors.New("broker down")}
	err := Publishers{ok, failing}.PublishPost(context.Background(), models.PostCreated, models.Post{ID: "p1"})
	if err == nil || err.Error() != "broker down" {
		t.Fatalf("expected joined error, got %v", err)
	}
	if len(ok.calls) != 1 || len(failing.calls) != 1 {
		t.Fatalf("every publisher must be called")
	}
}

func TestPostIdsFollowCreationOrder(t *testing.T) {
	env := setupServices(t)
	ctx := context.Background()
	alice := mustRegister(t, env, "alice", "a@x.com")

	frozen := time.Now()
	env.posts.now = func() time.Time { return frozen }

	var prev models.PostID
	for i := 0; i < 20; i++ {
		post, err := env.posts.CreatePost(ctx, alice, "same tick", "alice", "body", "")
		if err != nil {
			t.Fatalf("CreatePost: %v", err)
		}
		if prev != "" && post.ID <= prev {
			t.Fatalf("post id %s does not sort after %s", post.ID, prev)
		}
		prev = post.ID
	}

	list, err := env.posts.GetAllPosts(ctx)
	if err != nil {
		t.Fatalf("GetAllPosts: %v", err)
	}
	if list[0].ID != prev {
		t.Fatalf("expected the last created post first, got %s", list[0].ID)
	}
}
