package domain

import "errors"

// Failure kinds surfaced by actions. Callers match them with errors.Is.
var (
	ErrUnauthorized         = errors.New("unauthorized")
	ErrUnauthorizedMutation = errors.New("unauthorized booking mutation")
	ErrInvalidInput         = errors.New("invalid input")
	ErrPersistence          = errors.New("persistence failure")
	ErrNotFound             = errors.New("not found")
)
