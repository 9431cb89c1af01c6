package errors

import "errors"

var (
	ErrNotFound    = errors.New("not found")
	ErrEmptyKey    = errors.New("empty key")
	ErrInvalidData = errors.New("invalid data")

	// ErrInterrupted marks a pass cut short by a cancellation signal. It is
	// a graceful directive, not a failure: callers checkpoint and stop.
	ErrInterrupted = errors.New("run interrupted")
)
