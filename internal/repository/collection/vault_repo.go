package collection

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/and161185/secure-vault/internal/crypto/codec"
	"github.com/and161185/secure-vault/internal/errs"
	"github.com/and161185/secure-vault/internal/model"
	"github.com/and161185/secure-vault/internal/persist"
)

// VaultRepo implements VaultRepository over the "vault" collection.
// Blobs are stored as text (codec.EncodeText) keyed by username.
type VaultRepo struct {
	mu    sync.Mutex
	store persist.Adapter
}

// NewVaultRepo constructs a vault repository.
func NewVaultRepo(store persist.Adapter) *VaultRepo { return &VaultRepo{store: store} }

// Put overwrites or inserts the entry for username.
func (r *VaultRepo) Put(ctx context.Context, username string, blob model.EncryptedBlob) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	all, err := r.store.LoadCollection(ctx, persist.Vault)
	if err != nil {
		return err
	}
	v, err := json.Marshal(codec.EncodeText(blob))
	if err != nil {
		return fmt.Errorf("%w: encode vault entry: %w", errs.ErrPersistence, err)
	}
	all[username] = v
	return r.store.SaveCollection(ctx, persist.Vault, all)
}

// Get returns the entry for username, if any.
func (r *VaultRepo) Get(ctx context.Context, username string) (model.EncryptedBlob, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	all, err := r.store.LoadCollection(ctx, persist.Vault)
	if err != nil {
		return nil, false, err
	}
	v, ok := all[username]
	if !ok {
		return nil, false, nil
	}
	var s string
	if err := json.Unmarshal(v, &s); err != nil {
		return nil, false, fmt.Errorf("%w: vault entry %q: %w", errs.ErrPersistence, username, err)
	}
	blob, err := codec.DecodeText(s)
	if err != nil {
		return nil, false, err
	}
	return model.EncryptedBlob(blob), true, nil
}

// Delete removes the entry for username. Missing entries are left alone without saving.
func (r *VaultRepo) Delete(ctx context.Context, username string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	all, err := r.store.LoadCollection(ctx, persist.Vault)
	if err != nil {
		return false, err
	}
	if _, ok := all[username]; !ok {
		return false, nil
	}
	delete(all, username)
	if err := r.store.SaveCollection(ctx, persist.Vault, all); err != nil {
		return false, err
	}
	return true, nil
}
