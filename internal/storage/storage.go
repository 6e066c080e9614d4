// Package storage keeps uploaded post images.
package storage

import (
	"context"
	"io"
	"path"

	"github.com/google/uuid"
)

// ImageStore saves an image under key and returns the URL clients fetch it from.
type ImageStore interface {
	Save(ctx context.Context, key string, body io.Reader, contentType string) (string, error)
}

var extensions = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/gif":  ".gif",
	"image/webp": ".webp",
}

// Extension returns the file extension for an accepted image content type.
func Extension(contentType string) (string, bool) {
	ext, ok := extensions[contentType]
	return ext, ok
}

// NewKey generates a collision-free object key for an image.
func NewKey(ext string) string {
	return path.Join("posts", uuid.New().String()+ext)
}
