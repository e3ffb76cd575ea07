package kv

import "errors"

// Sentinel errors for storage operations.
var (
	// ErrNotFound is returned when a key does not exist or has expired.
	ErrNotFound = errors.New("kv: key not found")

	// ErrClosed is returned when an operation is attempted on a closed storage.
	ErrClosed = errors.New("kv: closed")

	// ErrEmptyKey is returned when an empty key is passed to a write operation.
	ErrEmptyKey = errors.New("kv: empty key")

	// ErrMarshal is returned when value serialization fails.
	ErrMarshal = errors.New("kv: failed to marshal value")

	// ErrUnmarshal is returned when value deserialization fails.
	ErrUnmarshal = errors.New("kv: failed to unmarshal value")
)
