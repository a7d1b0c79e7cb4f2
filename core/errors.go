package core

import "errors"

var (
	// ErrNotFound is returned when a task id does not exist.
	ErrNotFound = errors.New("task not found")

	// ErrEmptyName rejects candidate tasks with no name.
	ErrEmptyName = errors.New("task name must not be empty")

	// ErrEmbeddingUnavailable signals that no embedding provider is
	// configured. This is an expected state, not a failure: callers
	// degrade to text search.
	ErrEmbeddingUnavailable = errors.New("embedding provider unavailable")

	// ErrDimensionMismatch signals that the store holds vectors of a
	// different dimension than the configured provider produces. This is
	// a fatal configuration error and must never be degraded to fallback
	// search.
	ErrDimensionMismatch = errors.New("embedding dimension mismatch")
)
