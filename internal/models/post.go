package models

import (
	"strings"
	"time"
)

// PostID identifies a post.
type PostID string

func (id PostID) String() string { return string(id) }

// Post is a blog entry owned by the user in AuthorID.
type Post struct {
	ID        PostID    `json:"_id" bson:"_id"`
	Title     string    `json:"title" bson:"title"`
	Author    string    `json:"author" bson:"author"` // display name copied at creation
	AuthorID  UserID    `json:"authorId" bson:"authorId"`
	Content   string    `json:"content" bson:"content"`
	Image     string    `json:"image" bson:"image"`
	CreatedAt time.Time `json:"createdAt" bson:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt" bson:"updatedAt"`
}

// PostUpdate carries the fields a client asked to change. A nil field was not supplied.
type PostUpdate struct {
	Title   *string `json:"title"`
	Content *string `json:"content"`
	Image   *string `json:"image"`
}

// Normalize returns the update with blank title and content dropped, so they
// leave the stored value untouched. Image is kept as given, including "".
func (u PostUpdate) Normalize() PostUpdate {
	out := PostUpdate{Image: u.Image}
	if u.Title != nil {
		if t := strings.TrimSpace(*u.Title); t != "" {
			out.Title = &t
		}
	}
	if u.Content != nil && *u.Content != "" {
		c := *u.Content
		out.Content = &c
	}
	return out
}

// Live-feed actions published for post lifecycle changes.
const (
	PostCreated = "post.created"
	PostUpdated = "post.updated"
	PostDeleted = "post.deleted"
)
