package domain

import "errors"

var (
	// ErrInvalidInput indicates a malformed subject, item, or instant.
	ErrInvalidInput = errors.New("invalid input")
	// ErrStoreUnavailable indicates a transient record store failure.
	ErrStoreUnavailable = errors.New("record store unavailable")
	// ErrTimeout indicates a store call exceeded its caller-supplied deadline.
	ErrTimeout = errors.New("record store timeout")
	// ErrNotFound is reserved for operations that require a pre-existing
	// record. Statistics queries never return it; a subject without history
	// yields zero-valued statistics instead.
	ErrNotFound = errors.New("record not found")
)
