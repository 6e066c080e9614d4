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
	"golang.org/x/crypto/bcrypt"
)

// UserServiceProvider defines the interface for user services.
type UserServiceProvider interface {
	GetUserByID(ctx context.Context, id models.UserID) (models.User, error)
	CreateUser(ctx context.Context, username, email, password string) (models.User, error)
	AuthenticateUser(ctx context.Context, email, password string) (models.User, error)
}

// bcrypt only reads the first 72 bytes of a password.
const maxPasswordBytes = 72

// UserService provides business logic for user management.
type UserService struct {
	repo       repository.UserRepository
	events     EventServiceProvider
	bcryptCost int
	// dummyHash is compared against when the email is unknown so both login
	// failures cost one bcrypt comparison.
	dummyHash []byte
	now       func() time.Time
}

// NewUserService creates a new UserService. Out-of-range costs fall back to bcrypt.DefaultCost.
func NewUserService(repo repository.UserRepository, events EventServiceProvider, bcryptCost int) *UserService {
	if bcryptCost < bcrypt.MinCost || bcryptCost > bcrypt.MaxCost {
		bcryptCost = bcrypt.DefaultCost
	}
	dummy, _ := bcrypt.GenerateFromPassword([]byte("aurora-dummy-password"), bcryptCost)
	return &UserService{
		repo:       repo,
		events:     events,
		bcryptCost: bcryptCost,
		dummyHash:  dummy,
		now:        time.Now,
	}
}

// GetUserByID retrieves a single user by their ID, without the password hash.
func (s *UserService) GetUserByID(ctx context.Context, id models.UserID) (models.User, error) {
	user, err := s.repo.GetUserByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return models.User{}, newClientError(ErrNotFound, "User not found")
		}
		return models.User{}, err
	}
	user.PasswordHash = ""
	return user, nil
}

// CreateUser registers a new user, hashing their password.
func (s *UserService) CreateUser(ctx context.Context, username, email, password string) (models.User, error) {
	username = strings.TrimSpace(username)
	email = models.NormalizeEmail(email)
	if username == "" || email == "" || password == "" {
		return models.User{}, newClientError(ErrValidation, "Please provide all fields")
	}
	if len(password) > maxPasswordBytes {
		return models.User{}, newClientError(ErrValidation, "Password must be at most 72 bytes")
	}

	exists, err := s.repo.UserExists(ctx, email, username)
	if err != nil {
		return models.User{}, err
	}
	if exists {
		return models.User{}, newClientError(ErrConflict, "User already exists")
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), s.bcryptCost)
	if err != nil {
		return models.User{}, fmt.Errorf("failed to hash password: %w", err)
	}

	now := s.now()
	user := models.User{
		ID:           models.UserID(uuid.New().String()),
		Username:     username,
		Email:        email,
		PasswordHash: string(hashedPassword),
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.repo.CreateUser(ctx, user); err != nil {
		// Lost a race with a concurrent signup for the same identity.
		if errors.Is(err, repository.ErrDuplicate) {
			return models.User{}, newClientError(ErrConflict, "User already exists")
		}
		return models.User{}, err
	}

	record(ctx, s.events, models.EventUserRegister, fmt.Sprintf("User '%s' registered.", user.Username), user.ID)

	// Return user without password hash
	user.PasswordHash = ""
	return user, nil
}

// AuthenticateUser verifies a user's credentials. Unknown email and wrong
// password produce the same error.
func (s *UserService) AuthenticateUser(ctx context.Context, email, password string) (models.User, error) {
	email = models.NormalizeEmail(email)
	if email == "" || password == "" {
		return models.User{}, newClientError(ErrValidation, "Please provide email and password")
	}

	user, err := s.repo.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			_ = bcrypt.CompareHashAndPassword(s.dummyHash, []byte(password))
			return models.User{}, newClientError(ErrInvalidCredentials, "Invalid credentials")
		}
		return models.User{}, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return models.User{}, newClientError(ErrInvalidCredentials, "Invalid credentials")
	}

	record(ctx, s.events, models.EventUserLogin, fmt.Sprintf("User '%s' logged in.", user.Username), user.ID)

	// Don't send the password hash to the client
	user.PasswordHash = ""
	return user, nil
}
