// Package model defines domain entities used by services and repositories.
package model

import (
	"time"

	"github.com/gofrs/uuid/v5"
)

// EncryptedBlob is an opaque ciphertext produced by the secret codec.
type EncryptedBlob []byte

// User is a registered account as persisted. The encryption key is only stored wrapped.
type User struct {
	ID         uuid.UUID // random, assigned at registration
	Username   string    // unique, immutable
	Email      string    // unique
	PwdHash    []byte    // Argon2id(password, SaltAuth)
	SaltAuth   []byte    // per-user auth salt
	KekSalt    []byte    // per-user KEK salt
	WrappedKey []byte    // AEAD(encryption key) under KEK(password, KekSalt)
	CreatedAt  time.Time
}

// Identity is the result of a successful registration or login.
// Key is the plaintext per-user encryption key and never leaves memory.
type Identity struct {
	ID       uuid.UUID
	Username string
	Email    string
	Key      []byte
}

