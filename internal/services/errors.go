package services

import "errors"

// Failure classes surfaced to the HTTP layer. Services wrap them with a
// client-facing message: fmt.Errorf("%w: Post not found", ErrNotFound).
var (
	ErrValidation         = errors.New("validation failed")
	ErrConflict           = errors.New("already exists")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUnauthorized       = errors.New("unauthorized")
	ErrForbidden          = errors.New("forbidden")
	ErrNotFound           = errors.New("not found")
)

// clientError pairs a failure class with the message the client sees.
type clientError struct {
	kind    error
	message string
}

func (e *clientError) Error() string { return e.message }
func (e *clientError) Unwrap() error { return e.kind }

func newClientError(kind error, message string) error {
	return &clientError{kind: kind, message: message}
}
