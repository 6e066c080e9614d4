package models

import (
	"strings"
	"time"
)

// UserID identifies a user account.
type UserID string

func (id UserID) String() string { return string(id) }

// User represents a user account in the system.
type User struct {
	ID           UserID    `json:"_id" bson:"_id"`
	Username     string    `json:"username" bson:"username"`
	Email        string    `json:"email" bson:"email"`
	PasswordHash string    `json:"-" bson:"password"` // Never expose this to the client
	CreatedAt    time.Time `json:"createdAt" bson:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt" bson:"updatedAt"`
}

// Profile is the public view of a user.
type Profile struct {
	ID       UserID `json:"_id"`
	Username string `json:"username"`
	Email    string `json:"email"`
}

// Profile strips everything but the public fields.
func (u User) Profile() Profile {
	return Profile{ID: u.ID, Username: u.Username, Email: u.Email}
}

// NormalizeEmail trims and lower-cases an email address for storage and lookup.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
