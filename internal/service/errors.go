package service

import "errors"

var (
	// ErrNotFound is returned when a referenced record does not exist or is
	// outside the caller's workspaces.
	ErrNotFound = errors.New("not found")
	// ErrInvalidInput wraps request validation failures.
	ErrInvalidInput = errors.New("invalid input")
)
