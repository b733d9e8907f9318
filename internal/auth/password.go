package auth

// PASSWORD STORAGE FORMAT:
//
//	base64( salt[16] || PBKDF2-HMAC-SHA256(password, salt, iterations, 32) )
//
// The salt is stored in front of the derived key, so one column holds
// everything Verify needs. Accounts created by the original service use the
// same layout and keep working.

import (
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"fmt"

	"golang.org/x/crypto/pbkdf2"
)

const (
	defaultIterations = 100_000
	saltLen           = 16
	keyLen            = 32
)

// ErrInvalidPassword is returned by Verify when the password does not match.
var ErrInvalidPassword = errors.New("auth: invalid password")

// PasswordService hashes and verifies passwords. The iteration count is a
// field so tests can run with a cheap one.
type PasswordService struct {
	iterations int
}

// NewPasswordService creates a PasswordService with 100000 iterations.
func NewPasswordService() *PasswordService {
	return &PasswordService{iterations: defaultIterations}
}

// NewPasswordServiceForTest creates a PasswordService with a custom
// iteration count. Do NOT use in production.
func NewPasswordServiceForTest(iterations int) *PasswordService {
	return &PasswordService{iterations: iterations}
}

// Hash derives a salted hash of plaintext in the storage format above.
func (p *PasswordService) Hash(plaintext string) (string, error) {
	if plaintext == "" {
		return "", fmt.Errorf("auth: password must not be empty")
	}

	salt := make([]byte, saltLen)
	if _, err := rand.Read(salt); err != nil {
		return "", fmt.Errorf("auth: generating salt: %w", err)
	}

	key := pbkdf2.Key([]byte(plaintext), salt, p.iterations, keyLen, sha256.New)
	return base64.StdEncoding.EncodeToString(append(salt, key...)), nil
}

// Verify checks plaintext against a stored hash. It returns nil on a match,
// ErrInvalidPassword on a mismatch, and a different error when the stored
// value is malformed.
//
// subtle.ConstantTimeCompare keeps the comparison time independent of how
// many leading bytes match.
func (p *PasswordService) Verify(hash, plaintext string) error {
	raw, err := base64.StdEncoding.DecodeString(hash)
	if err != nil {
		return fmt.Errorf("auth: decoding password hash: %w", err)
	}
	if len(raw) != saltLen+keyLen {
		return fmt.Errorf("auth: password hash has %d bytes, want %d", len(raw), saltLen+keyLen)
	}

	salt, stored := raw[:saltLen], raw[saltLen:]
	derived := pbkdf2.Key([]byte(plaintext), salt, p.iterations, keyLen, sha256.New)
	if subtle.ConstantTimeCompare(stored, derived) != 1 {
		return ErrInvalidPassword
	}
	return nil
}
