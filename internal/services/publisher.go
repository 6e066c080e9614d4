package services

import (
	"context"
	"errors"

	"github.com/isdelr/aurora-be/internal/models"
)

// PostPublisher announces post lifecycle changes to live subscribers.
type PostPublisher interface {
	PublishPost(ctx context.Context, action string, post models.Post) error
}

// Publishers fans a message out to every publisher, joining their errors.
type Publishers []PostPublisher

func (p Publishers) PublishPost(ctx context.Context, action string, post models.Post) error {
	var errs []error
	for _, pub := range p {
		if err := pub.PublishPost(ctx, action, post); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
