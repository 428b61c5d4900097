package repository

import "errors"

// Outcomes every repository implementation must signal distinguishably.
var (
	// ErrNotFound indicates the targeted record does not exist.
	ErrNotFound = errors.New("record not found")

	// ErrDuplicate indicates a unique constraint was violated.
	ErrDuplicate = errors.New("duplicate record")

	// ErrInvalidReference indicates a referenced record is missing (foreign key).
	ErrInvalidReference = errors.New("referenced record missing")
)
