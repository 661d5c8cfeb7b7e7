package service

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

const (
	SchemeSHA256 = "sha256"
	SchemeBcrypt = "bcrypt"
)

// PasswordHasher turns a plaintext password into the stored digest and
// checks a plaintext against a stored digest.
//
// Deterministic reports whether equal inputs always yield equal digests,
// which decides whether a credential check can run as a single store
// lookup on (login, digest) or must fetch the row and compare.
type PasswordHasher interface {
	Hash(plaintext string) (string, error)
	Verify(plaintext, digest string) bool
	Deterministic() bool
}

func NewPasswordHasher(scheme string) (PasswordHasher, error) {
	switch scheme {
	case "", SchemeSHA256:
		return sha256Hasher{}, nil
	case SchemeBcrypt:
		return bcryptHasher{}, nil
	default:
		return nil, fmt.Errorf("unknown password scheme %q", scheme)
	}
}

// sha256Hasher reproduces the legacy stored-record format: an unsalted
// hex digest. Known weakness; bcrypt is the opt-in replacement, but
// switching changes the shape of already-stored records.
type sha256Hasher struct{}

func (sha256Hasher) Hash(plaintext string) (string, error) {
	sum := sha256.Sum256([]byte(plaintext))
	return hex.EncodeToString(sum[:]), nil
}

func (h sha256Hasher) Verify(plaintext, digest string) bool {
	hashed, _ := h.Hash(plaintext)
	return hashed == digest
}

func (sha256Hasher) Deterministic() bool { return true }

type bcryptHasher struct{}

func (bcryptHasher) Hash(plaintext string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(plaintext), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

func (bcryptHasher) Verify(plaintext, digest string) bool {
	return bcrypt.CompareHashAndPassword([]byte(digest), []byte(plaintext)) == nil
}

func (bcryptHasher) Deterministic() bool { return false }
