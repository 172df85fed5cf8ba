package service

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/and161185/secure-vault/internal/crypto/codec"
	"github.com/and161185/secure-vault/internal/errs"
	"github.com/and161185/secure-vault/internal/model"
	"github.com/and161185/secure-vault/internal/repository"
	"github.com/and161185/secure-vault/internal/session"
)

// Vault defines operations over the single encrypted secret of the caller.
// The caller is the session carried by ctx; without one every method fails with errs.ErrUnauthenticated.
type Vault interface {
	// Store encrypts plaintext with the caller's key and replaces the stored entry.
	Store(ctx context.Context, plaintext []byte) (model.EncryptedBlob, error)
	// Retrieve decrypts the stored entry; ok is false when nothing is stored.
	Retrieve(ctx context.Context) (plaintext []byte, ok bool, err error)
	// Ciphertext returns the stored entry as is.
	Ciphertext(ctx context.Context) (blob model.EncryptedBlob, ok bool, err error)
	// Delete removes the stored entry, if any, and reports whether one existed.
	Delete(ctx context.Context) (removed bool, err error)
}

type VaultImpl struct {
	repo repository.VaultRepository
	log  *zap.Logger
}

// NewVault constructs Vault over a vault repository. A nil logger disables logging.
func NewVault(repo repository.VaultRepository, log *zap.Logger) *VaultImpl {
	if log == nil {
		log = zap.NewNop()
	}
	return &VaultImpl{repo: repo, log: log}
}

// Store rejects empty input, then seals and writes the entry.
func (s *VaultImpl) Store(ctx context.Context, plaintext []byte) (model.EncryptedBlob, error) {
	sess, err := session.Require(ctx)
	if err != nil {
		return nil, err
	}
	if len(plaintext) == 0 {
		return nil, errs.ErrEmptySecret
	}
	blob, err := codec.Encrypt(sess.Key, plaintext)
	if err != nil {
		return nil, fmt.Errorf("encrypt: %w", err)
	}
	if err := s.repo.Put(ctx, sess.Username, blob); err != nil {
		return nil, err
	}
	s.log.Info("vault entry stored", zap.String("username", sess.Username), zap.Int("size", len(blob)))
	return blob, nil
}

// Retrieve reads and opens the entry. Corrupted data yields errs.ErrInvalidToken and no plaintext.
func (s *VaultImpl) Retrieve(ctx context.Context) ([]byte, bool, error) {
	sess, err := session.Require(ctx)
	if err != nil {
		return nil, false, err
	}
	blob, ok, err := s.repo.Get(ctx, sess.Username)
	if err != nil || !ok {
		return nil, false, err
	}
	pt, err := codec.Decrypt(sess.Key, blob)
	if err != nil {
		s.log.Warn("vault entry rejected", zap.String("username", sess.Username), zap.Error(err))
		return nil, false, err
	}
	return pt, true, nil
}

// Ciphertext returns the raw stored entry.
func (s *VaultImpl) Ciphertext(ctx context.Context) (model.EncryptedBlob, bool, error) {
	sess, err := session.Require(ctx)
	if err != nil {
		return nil, false, err
	}
	return s.repo.Get(ctx, sess.Username)
}

// Delete removes the caller's entry without opening it, so corrupted entries can be removed too.
func (s *VaultImpl) Delete(ctx context.Context) (bool, error) {
	sess, err := session.Require(ctx)
	if err != nil {
		return false, err
	}
	removed, err := s.repo.Delete(ctx, sess.Username)
	if err != nil {
		return false, err
	}
	if removed {
		s.log.Info("vault entry deleted", zap.String("username", sess.Username))
	}
	return removed, nil
}
