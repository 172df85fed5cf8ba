// Package repository defines storage interfaces implemented by concrete backends.
package repository

import (
	"context"

	"github.com/and161185/secure-vault/internal/model"
)

// UserRepository provides access to registered users. Records are immutable once created.
type UserRepository interface {
	// Create inserts a new user; it fails with errs.ErrUsernameTaken or errs.ErrEmailTaken.
	Create(ctx context.Context, u *model.User) error
	// GetByUsername loads a user by username.
	GetByUsername(ctx context.Context, username string) (*model.User, error)
	// GetByEmail loads a user by email. With duplicate emails in legacy data the lowest username wins.
	GetByEmail(ctx context.Context, email string) (*model.User, error)
	// ListEmails returns the emails of all users ordered by username.
	ListEmails(ctx context.Context) ([]string, error)
}
