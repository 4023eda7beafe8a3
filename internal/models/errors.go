package models

import "errors"

// Sentinel errors matched with errors.Is at the API layer.
var (
	// ErrNotFound means a referenced entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrValidation means the input violates a constraint (duplicate slug,
	// cross-prompt revert, blank required field).
	ErrValidation = errors.New("validation failed")
)
