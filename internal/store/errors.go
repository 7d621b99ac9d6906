package store

import (
	"errors"
	"fmt"
)

var (
	// ErrPersistence wraps every failed store call.
	ErrPersistence = errors.New("persistence error")
	// ErrMalformedFilter marks a filter or change set the store refuses to
	// turn into SQL. It is always reported together with ErrPersistence.
	ErrMalformedFilter = errors.New("malformed filter")
	// ErrInvalidPost marks input that breaks a column constraint.
	ErrInvalidPost = errors.New("invalid post")
	// ErrNotFound is returned by FindOne when no row matches.
	ErrNotFound = errors.New("post not found")
)

func persistenceErr(op string, err error) error {
	return fmt.Errorf("%w: %s: %w", ErrPersistence, op, err)
}

func malformed(op, format string, args ...any) error {
	return persistenceErr(op, fmt.Errorf("%w: "+format, append([]any{ErrMalformedFilter}, args...)...))
}
