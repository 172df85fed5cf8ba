// Package crypto implements password hashing and verification.
package crypto

import (
	"crypto/rand"
	"crypto/subtle"

	"golang.org/x/crypto/argon2"
)

// SaltLen is the size of per-user salts.
const SaltLen = 16

const hashLen uint32 = 32

// KDF holds Argon2id cost parameters.
type KDF struct {
	Time      uint32 // iterations
	MemoryKiB uint32
	Threads   uint8
}

// DefaultKDF is tuned for interactive logins.
var DefaultKDF = KDF{Time: 3, MemoryKiB: 64 * 1024, Threads: 1}

// Valid reports whether all parameters are non-zero.
func (k KDF) Valid() bool {
	return k.Time > 0 && k.MemoryKiB > 0 && k.Threads > 0
}

// Key derives keyLen bytes from secret and salt.
func (k KDF) Key(secret, salt []byte, keyLen uint32) []byte {
	return argon2.IDKey(secret, salt, k.Time, k.MemoryKiB, k.Threads, keyLen)
}

// RandBytes returns n cryptographically secure random bytes.
func RandBytes(n int) ([]byte, error) {
	b := make([]byte, n)
	_, err := rand.Read(b)
	return b, err
}

// HashPassword returns the Argon2id hash of password using the provided salt.
func HashPassword(kdf KDF, password, salt []byte) []byte {
	return kdf.Key(password, salt, hashLen)
}

// VerifyPassword verifies password against expected Argon2id hash and salt.
func VerifyPassword(kdf KDF, password, salt, expected []byte) bool {
	got := HashPassword(kdf, password, salt)
	return subtle.ConstantTimeCompare(got, expected) == 1
}
