// Package collection implements repositories on top of a whole-collection persist.Adapter.
//
// Every mutation is a load-modify-save cycle of the entire collection,
// serialized by a per-repository mutex.
package collection

import (
	"context"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/gofrs/uuid/v5"

	"github.com/and161185/secure-vault/internal/errs"
	"github.com/and161185/secure-vault/internal/model"
	"github.com/and161185/secure-vault/internal/persist"
)

// userRecord is the stored form of a user under the "users" collection, keyed by username.
type userRecord struct {
	ID            uuid.UUID `json:"id"`
	Email         string    `json:"email"`
	PasswordHash  string    `json:"password_hash"` // hex
	SaltAuth      []byte    `json:"salt_auth"`
	KekSalt       []byte    `json:"kek_salt"`
	EncryptionKey []byte    `json:"encryption_key"` // wrapped
	CreatedAt     time.Time `json:"created_at"`
}

func toRecord(u *model.User) userRecord {
	return userRecord{
		ID:            u.ID,
		Email:         u.Email,
		PasswordHash:  hex.EncodeToString(u.PwdHash),
		SaltAuth:      u.SaltAuth,
		KekSalt:       u.KekSalt,
		EncryptionKey: u.WrappedKey,
		CreatedAt:     u.CreatedAt,
	}
}

func (r userRecord) toModel(username string) (*model.User, error) {
	hash, err := hex.DecodeString(r.PasswordHash)
	if err != nil {
		return nil, fmt.Errorf("%w: user %q: bad password hash", errs.ErrPersistence, username)
	}
	return &model.User{
		ID:         r.ID,
		Username:   username,
		Email:      r.Email,
		PwdHash:    hash,
		SaltAuth:   r.SaltAuth,
		KekSalt:    r.KekSalt,
		WrappedKey: r.EncryptionKey,
		CreatedAt:  r.CreatedAt,
	}, nil
}

// UserRepo implements UserRepository over the "users" collection.
type UserRepo struct {
	mu    sync.Mutex
	store persist.Adapter
}

// NewUserRepo constructs a user repository.
func NewUserRepo(store persist.Adapter) *UserRepo { return &UserRepo{store: store} }

// Create adds a user after checking username and email uniqueness.
func (r *UserRepo) Create(ctx context.Context, u *model.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	all, err := r.load(ctx)
	if err != nil {
		return err
	}
	if _, exists := all[u.Username]; exists {
		return errs.ErrUsernameTaken
	}
	for _, rec := range all {
		if rec.Email == u.Email {
			return errs.ErrEmailTaken
		}
	}
	all[u.Username] = toRecord(u)
	return r.save(ctx, all)
}

// GetByUsername looks up a user by username.
func (r *UserRepo) GetByUsername(ctx context.Context, username string) (*model.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	all, err := r.load(ctx)
	if err != nil {
		return nil, err
	}
	rec, ok := all[username]
	if !ok {
		return nil, errs.ErrNotFound
	}
	return rec.toModel(username)
}

// GetByEmail scans users in username order and returns the first with a matching email.
func (r *UserRepo) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	all, err := r.load(ctx)
	if err != nil {
		return nil, err
	}
	for _, name := range sortedNames(all) {
		if all[name].Email == email {
			return all[name].toModel(name)
		}
	}
	return nil, errs.ErrNotFound
}

// ListEmails returns all emails ordered by username.
func (r *UserRepo) ListEmails(ctx context.Context) ([]string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	all, err := r.load(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]string, 0, len(all))
	for _, name := range sortedNames(all) {
		out = append(out, all[name].Email)
	}
	return out, nil
}

func (r *UserRepo) load(ctx context.Context) (map[string]userRecord, error) {
	raw, err := r.store.LoadCollection(ctx, persist.Users)
	if err != nil {
		return nil, err
	}
	out := make(map[string]userRecord, len(raw))
	for name, v := range raw {
		var rec userRecord
		if err := json.Unmarshal(v, &rec); err != nil {
			return nil, fmt.Errorf("%w: user %q: %w", errs.ErrPersistence, name, err)
		}
		out[name] = rec
	}
	return out, nil
}

func (r *UserRepo) save(ctx context.Context, all map[string]userRecord) error {
	raw := make(map[string]json.RawMessage, len(all))
	for name, rec := range all {
		b, err := json.Marshal(rec)
		if err != nil {
			return fmt.Errorf("%w: encode user %q: %w", errs.ErrPersistence, name, err)
		}
		raw[name] = b
	}
	return r.store.SaveCollection(ctx, persist.Users, raw)
}

func sortedNames(all map[string]userRecord) []string {
	names := make([]string, 0, len(all))
	for name := range all {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
