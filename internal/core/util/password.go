package util

import (
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"

	"securetodo/internal/core/port"
)

const (
	SchemeSHA256 = "sha256"
	SchemeBcrypt = "bcrypt"
)

// NewPasswordHasher picks the hasher for scheme. An empty scheme means sha256.
func NewPasswordHasher(scheme string, bcryptCost int) (port.PasswordHasher, error) {
	switch scheme {
	case "", SchemeSHA256:
		return Sha256Hasher{}, nil
	case SchemeBcrypt:
		return NewBcryptHasher(bcryptCost), nil
	default:
		return nil, fmt.Errorf("unknown password scheme %q", scheme)
	}
}

// Sha256Hasher is a single unsalted SHA-256 round, hex encoded. Equal passwords
// give equal digests and precomputed tables apply; use BcryptHasher to harden.
type Sha256Hasher struct{}

func (Sha256Hasher) Scheme() string {
	return SchemeSHA256
}

func (Sha256Hasher) Hash(password string) (string, error) {
	return HashPassword(password), nil
}

func (Sha256Hasher) Verify(password, digest string) (bool, error) {
	computed := HashPassword(password)

	return subtle.ConstantTimeCompare([]byte(computed), []byte(digest)) == 1, nil
}

func HashPassword(password string) string {
	sum := sha256.Sum256([]byte(password))

	return hex.EncodeToString(sum[:])
}

// BcryptHasher stores the per-user salt inside the bcrypt string itself.
type BcryptHasher struct {
	cost int
}

func NewBcryptHasher(cost int) BcryptHasher {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}

	return BcryptHasher{cost: cost}
}

func (BcryptHasher) Scheme() string {
	return SchemeBcrypt
}

func (h BcryptHasher) Hash(password string) (string, error) {
	encrypted, err := bcrypt.GenerateFromPassword([]byte(password), h.cost)

	if err != nil {
		return "", err
	}

	return string(encrypted), nil
}

func (BcryptHasher) Verify(password, digest string) (bool, error) {
	err := bcrypt.CompareHashAndPassword([]byte(digest), []byte(password))

	if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
		return false, nil
	}

	if err != nil {
		return false, err
	}

	return true, nil
}
