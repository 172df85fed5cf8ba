package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"github.com/and161185/secure-vault/internal/model"
)

// VaultRepo implements VaultRepository using PostgreSQL.
type VaultRepo struct{ db *DB }

// NewVaultRepo constructs a vault repository.
func NewVaultRepo(db *DB) *VaultRepo { return &VaultRepo{db: db} }

// Put inserts or replaces the single entry of a user.
func (r *VaultRepo) Put(ctx context.Context, username string, blob model.EncryptedBlob) error {
	const q = `
INSERT INTO vault (username, blob_enc, updated_at) VALUES ($1, $2, now())
ON CONFLICT (username) DO UPDATE SET blob_enc=EXCLUDED.blob_enc, updated_at=now()`
	if _, err := r.db.Pool.Exec(ctx, q, username, []byte(blob)); err != nil {
		return ioErr("put vault entry", err)
	}
	return nil
}

// Get returns the entry of a user, if any.
func (r *VaultRepo) Get(ctx context.Context, username string) (model.EncryptedBlob, bool, error) {
	const q = `SELECT blob_enc FROM vault WHERE username=$1`
	var blob []byte
	if err := r.db.Pool.QueryRow(ctx, q, username).Scan(&blob); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, false, nil
		}
		return nil, false, ioErr("get vault entry", err)
	}
	return model.EncryptedBlob(blob), true, nil
}

// Delete removes the entry of a user; a missing row is not an error.
func (r *VaultRepo) Delete(ctx context.Context, username string) (bool, error) {
	const q = `DELETE FROM vault WHERE username=$1`
	tag, err := r.db.Pool.Exec(ctx, q, username)
	if err != nil {
		return false, ioErr("delete vault entry", err)
	}
	return tag.RowsAffected() > 0, nil
}
