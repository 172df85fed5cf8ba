// Package errs contains sentinel errors used across layers for stable error mapping.
package errs

import (
	"errors"
	"fmt"
)

// Common sentinels across repo/service layers.
var (
	// ErrNotFound indicates the requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrUnauthorized indicates failed authentication. It never says which credential was wrong.
	ErrUnauthorized = errors.New("invalid email or password")

	// ErrUnauthenticated indicates an operation that needs a logged-in identity was called without one.
	ErrUnauthenticated = errors.New("unauthenticated: login required")

	// ErrAlreadyExists indicates a unique constraint violation.
	ErrAlreadyExists = errors.New("already exists")

	// ErrInvalidToken indicates a ciphertext that failed authentication (wrong key, corruption, tampering).
	ErrInvalidToken = errors.New("invalid token: data may be corrupted")

	// ErrPersistence indicates an I/O failure while loading or saving state.
	ErrPersistence = errors.New("persistence failure")

	// ErrValidation is the parent of all input validation errors.
	ErrValidation = errors.New("validation")
)

// Validation and uniqueness errors.
var (
	ErrEmptyUsername = fmt.Errorf("%w: empty username", ErrValidation)
	ErrInvalidEmail  = fmt.Errorf("%w: invalid email address", ErrValidation)
	ErrWeakPassword  = fmt.Errorf("%w: password must be at least 6 characters long", ErrValidation)
	ErrEmptySecret   = fmt.Errorf("%w: empty secret", ErrValidation)

	ErrUsernameTaken = fmt.Errorf("username %w", ErrAlreadyExists)
	ErrEmailTaken    = fmt.Errorf("email %w", ErrAlreadyExists)
)
