// Package codec seals and opens vault payloads and wraps per-user keys.
//
// Blobs have the layout nonce(24) || ciphertext || tag(16) and are produced
// with XChaCha20-Poly1305. Any failure to open a blob is reported as
// errs.ErrInvalidToken.
package codec

import (
	"encoding/base64"
	"fmt"

	"golang.org/x/crypto/chacha20poly1305"

	pkgcrypto "github.com/and161185/secure-vault/internal/crypto"
	"github.com/and161185/secure-vault/internal/errs"
)

// Params
const (
	KeyLen = chacha20poly1305.KeySize
	KEKLen = chacha20poly1305.KeySize
)

var textEncoding = base64.URLEncoding

// GenerateKey returns a fresh random encryption key.
func GenerateKey() ([]byte, error) {
	return pkgcrypto.RandBytes(KeyLen)
}

// Encrypt seals plaintext under key with a random nonce.
func Encrypt(key, plaintext []byte) ([]byte, error) {
	return seal(key, plaintext)
}

// Decrypt opens a blob produced by Encrypt.
func Decrypt(key, blob []byte) ([]byte, error) {
	return open(key, blob)
}

// DeriveKEK derives a key-encryption key from password and kekSalt using Argon2id.
func DeriveKEK(kdf pkgcrypto.KDF, password, kekSalt []byte) []byte {
	return kdf.Key(password, kekSalt, KEKLen)
}

// WrapKey encrypts an encryption key with KEK.
func WrapKey(kek, key []byte) ([]byte, error) {
	return seal(kek, key)
}

// UnwrapKey decrypts a wrapped key using KEK.
func UnwrapKey(kek, wrapped []byte) ([]byte, error) {
	key, err := open(kek, wrapped)
	if err != nil {
		return nil, err
	}
	if len(key) != KeyLen {
		return nil, fmt.Errorf("unwrapped key length %d: %w", len(key), errs.ErrInvalidToken)
	}
	return key, nil
}

// EncodeText renders a blob as URL-safe base64 for text storage.
func EncodeText(blob []byte) string {
	return textEncoding.EncodeToString(blob)
}

// DecodeText reverses EncodeText.
func DecodeText(s string) ([]byte, error) {
	b, err := textEncoding.DecodeString(s)
	if err != nil {
		return nil, fmt.Errorf("decode: %w", errs.ErrInvalidToken)
	}
	return b, nil
}

func seal(key, plaintext []byte) ([]byte, error) {
	aead, err := chacha20poly1305.NewX(key)
	if err != nil {
		return nil, err
	}
	nonce, err := pkgcrypto.RandBytes(chacha20poly1305.NonceSizeX)
	if err != nil {
		return nil, err
	}
	out := make([]byte, 0, len(nonce)+len(plaintext)+aead.Overhead())
	out = append(out, nonce...)
	return aead.Seal(out, nonce, plaintext, nil), nil
}

func open(key, blob []byte) ([]byte, error) {
	aead, err := chacha20poly1305.NewX(key)
	if err != nil {
		return nil, fmt.Errorf("bad key: %w", errs.ErrInvalidToken)
	}
	if len(blob) < chacha20poly1305.NonceSizeX+aead.Overhead() {
		return nil, fmt.Errorf("blob too short: %w", errs.ErrInvalidToken)
	}
	nonce := blob[:chacha20poly1305.NonceSizeX]
	ct := blob[chacha20poly1305.NonceSizeX:]
	pt, err := aead.Open(nil, nonce, ct, nil)
	if err != nil {
		return nil, errs.ErrInvalidToken
	}
	return pt, nil
}
