package identity

import (
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// PasswordHasher is a one-way, salted transform of plaintext passwords.
// Hashing the same plaintext twice yields different outputs; Verify is the
// only way to recover truth.
type PasswordHasher interface {
	Hash(plaintext string) (string, error)
	Verify(plaintext, hash string) bool
}

// BcryptHasher hashes passwords with bcrypt. The cost factor scales the
// work required per hash, bounding brute-force throughput.
type BcryptHasher struct {
	cost int
}

// NewBcryptHasher creates a hasher with the given cost. Out-of-range costs
// fall back to bcrypt's default.
func NewBcryptHasher(cost int) *BcryptHasher {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	return &BcryptHasher{cost: cost}
}

func (h *BcryptHasher) Hash(plaintext string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword(truncate(plaintext), h.cost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(hash), nil
}

func (h *BcryptHasher) Verify(plaintext, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), truncate(plaintext)) == nil
}

// truncate caps input at bcrypt's 72-byte limit. The algorithm ignores
// bytes past that point anyway; Go's implementation rejects longer input
// instead of silently dropping it, so longer passwords (allowed up to 100
// characters) are capped here.
func truncate(plaintext string) []byte {
	b := []byte(plaintext)
	if len(b) > 72 {
		b = b[:72]
	}
	return b
}
