// Package service contains application services for credentials and vault contents.
package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/gofrs/uuid/v5"
	"go.uber.org/zap"

	pkgcrypto "github.com/and161185/secure-vault/internal/crypto"
	"github.com/and161185/secure-vault/internal/crypto/codec"
	"github.com/and161185/secure-vault/internal/errs"
	"github.com/and161185/secure-vault/internal/model"
	"github.com/and161185/secure-vault/internal/repository"
)

// MinPasswordLen is the shortest accepted password, in characters.
const MinPasswordLen = 6

// randBytes is a test seam for pkgcrypto.RandBytes.
var randBytes = pkgcrypto.RandBytes

// Registry defines registration and authentication operations.
type Registry interface {
	// Register creates a new user and issues its encryption key.
	Register(ctx context.Context, username, email, password string) (model.Identity, error)
	// Authenticate verifies email and password and returns the identity with its key.
	Authenticate(ctx context.Context, email, password string) (model.Identity, error)
	// ListEmails returns the emails of all registered users.
	ListEmails(ctx context.Context) ([]string, error)
}

type RegistryImpl struct {
	users repository.UserRepository
	kdf   pkgcrypto.KDF
	log   *zap.Logger
	now   func() time.Time

	// dummySalt is hashed against when the email is unknown.
	dummySalt []byte
}

// NewRegistry constructs Registry with required dependencies. A nil logger disables logging.
// It fails only when the random source does.
func NewRegistry(users repository.UserRepository, kdf pkgcrypto.KDF, log *zap.Logger) (*RegistryImpl, error) {
	if log == nil {
		log = zap.NewNop()
	}
	if !kdf.Valid() {
		kdf = pkgcrypto.DefaultKDF
	}
	salt, err := randBytes(pkgcrypto.SaltLen)
	if err != nil {
		return nil, fmt.Errorf("dummy salt: %w", err)
	}
	return &RegistryImpl{users: users, kdf: kdf, log: log, now: time.Now, dummySalt: salt}, nil
}

// Register validates input, generates salts and a fresh key, and persists the user.
// Nothing is persisted when any step fails.
func (s *RegistryImpl) Register(ctx context.Context, username, email, password string) (model.Identity, error) {
	if strings.TrimSpace(username) == "" {
		return model.Identity{}, errs.ErrEmptyUsername
	}
	if err := s.usernameFree(ctx, username); err != nil {
		return model.Identity{}, err
	}
	if err := validateCredentials(email, password); err != nil {
		return model.Identity{}, err
	}
	if err := s.emailFree(ctx, email); err != nil {
		return model.Identity{}, err
	}

	uid, err := uuid.NewV4()
	if err != nil {
		return model.Identity{}, err
	}
	key, err := codec.GenerateKey()
	if err != nil {
		return model.Identity{}, fmt.Errorf("generate key: %w", err)
	}
	saltAuth, err := randBytes(pkgcrypto.SaltLen)
	if err != nil {
		return model.Identity{}, err
	}
	kekSalt, err := randBytes(pkgcrypto.SaltLen)
	if err != nil {
		return model.Identity{}, err
	}
	wrapped, err := codec.WrapKey(codec.DeriveKEK(s.kdf, []byte(password), kekSalt), key)
	if err != nil {
		return model.Identity{}, fmt.Errorf("wrap key: %w", err)
	}

	u := &model.User{
		ID:         uid,
		Username:   username,
		Email:      email,
		PwdHash:    pkgcrypto.HashPassword(s.kdf, []byte(password), saltAuth),
		SaltAuth:   saltAuth,
		KekSalt:    kekSalt,
		WrappedKey: wrapped,
		CreatedAt:  s.now().UTC(),
	}
	if err := s.users.Create(ctx, u); err != nil {
		return model.Identity{}, err
	}

	s.log.Info("user registered", zap.String("username", username), zap.String("user_id", uid.String()))
	return model.Identity{ID: uid, Username: username, Email: email, Key: key}, nil
}

// Authenticate looks the user up by email and verifies the password.
// Unknown email and wrong password produce the same errs.ErrUnauthorized.
func (s *RegistryImpl) Authenticate(ctx context.Context, email, password string) (model.Identity, error) {
	if !strings.Contains(email, "@") {
		return model.Identity{}, errs.ErrInvalidEmail
	}

	u, err := s.users.GetByEmail(ctx, email)
	if errors.Is(err, errs.ErrNotFound) {
		// same cost as a real verification
		_ = pkgcrypto.HashPassword(s.kdf, []byte(password), s.dummySalt)
		s.log.Info("login failed", zap.String("reason", "credentials"))
		return model.Identity{}, errs.ErrUnauthorized
	}
	if err != nil {
		return model.Identity{}, err
	}
	if !pkgcrypto.VerifyPassword(s.kdf, []byte(password), u.SaltAuth, u.PwdHash) {
		s.log.Info("login failed", zap.String("reason", "credentials"))
		return model.Identity{}, errs.ErrUnauthorized
	}

	key, err := codec.UnwrapKey(codec.DeriveKEK(s.kdf, []byte(password), u.KekSalt), u.WrappedKey)
	if err != nil {
		s.log.Error("unwrap key", zap.String("username", u.Username), zap.Error(err))
		return model.Identity{}, fmt.Errorf("unwrap key of %q: %w", u.Username, err)
	}

	s.log.Info("login", zap.String("username", u.Username))
	return model.Identity{ID: u.ID, Username: u.Username, Email: u.Email, Key: key}, nil
}

// ListEmails returns registered emails ordered by username.
func (s *RegistryImpl) ListEmails(ctx context.Context) ([]string, error) {
	return s.users.ListEmails(ctx)
}

// validateCredentials checks the email shape and the password length.
func validateCredentials(email, password string) error {
	if !strings.Contains(email, "@") {
		return errs.ErrInvalidEmail
	}
	if utf8.RuneCountInString(password) < MinPasswordLen {
		return errs.ErrWeakPassword
	}
	return nil
}

// usernameFree fails on a taken username before any other input is looked at.
func (s *RegistryImpl) usernameFree(ctx context.Context, username string) error {
	_, err := s.users.GetByUsername(ctx, username)
	switch {
	case err == nil:
		return errs.ErrUsernameTaken
	case errors.Is(err, errs.ErrNotFound):
		return nil
	default:
		return err
	}
}

// emailFree fails on a taken email before any key material is generated.
func (s *RegistryImpl) emailFree(ctx context.Context, email string) error {
	_, err := s.users.GetByEmail(ctx, email)
	switch {
	case err == nil:
		return errs.ErrEmailTaken
	case errors.Is(err, errs.ErrNotFound):
		return nil
	default:
		return err
	}
}
