package repository

import (
	"context"

	"github.com/and161185/secure-vault/internal/model"
)

// VaultRepository stores at most one encrypted blob per username.
type VaultRepository interface {
	// Put inserts or overwrites the blob for username.
	Put(ctx context.Context, username string, blob model.EncryptedBlob) error

	// Get returns the blob for username; ok is false when there is none.
	Get(ctx context.Context, username string) (blob model.EncryptedBlob, ok bool, err error)

	// Delete removes the blob for username and reports whether there was one.
	// Deleting a missing entry is not an error. The stored blob is never decoded.
	Delete(ctx context.Context, username string) (removed bool, err error)
}
