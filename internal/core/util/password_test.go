package util

import (
	"strings"
	"testing"

	. "github.com/onsi/gomega"
	"github.com/stretchr/testify/assert"
	"golang.org/x/crypto/bcrypt"
)

func TestHashPassword(t *testing.T) {
	RegisterTestingT(t)

	t.Run("should match the known sha256 vector", func(t *testing.T) {
		Expect(HashPassword("abc")).To(Equal("ba7816bf8f01cfea414140de5dae2223b00361a396177a9cb410ff61f20015ad"))
	})

	t.Run("should be deterministic and fixed length", func(t *testing.T) {
		first := HashPassword("pw1")

		Expect(HashPassword("pw1")).To(Equal(first))
		Expect(first).To(HaveLen(64))
		Expect(strings.ToLower(first)).To(Equal(first))
	})

	t.Run("should not collide for distinct passwords", func(t *testing.T) {
		seen := map[string]string{}

		for _, pw := range []string{"", "a", "A", "pw1", "pw2", "pw1 ", "correct horse battery staple"} {
			digest := HashPassword(pw)
			other, dup := seen[digest]

			assert.False(t, dup, "%q collides with %q", pw, other)
			seen[digest] = pw
		}
	})
}

func TestSha256Hasher_Verify(t *testing.T) {
	hasher := Sha256Hasher{}
	digest, err := hasher.Hash("pw1")
	assert.NoError(t, err)

	ok, err := hasher.Verify("pw1", digest)
	assert.NoError(t, err)
	assert.True(t, ok)

	ok, err = hasher.Verify("pw2", digest)
	assert.NoError(t, err)
	assert.False(t, ok)
}

func TestBcryptHasher(t *testing.T) {
	hasher := NewBcryptHasher(bcrypt.MinCost)

	t.Run("should salt equal passwords differently", func(t *testing.T) {
		first, err := hasher.Hash("pw1")
		assert.NoError(t, err)

		second, err := hasher.Hash("pw1")
		assert.NoError(t, err)

		assert.NotEqual(t, first, second)
	})

	t.Run("should verify the right password only", func(t *testing.T) {
		digest, _ := hasher.Hash("pw1")

		ok, err := hasher.Verify("pw1", digest)
		assert.NoError(t, err)
		assert.True(t, ok)

		ok, err = hasher.Verify("nope", digest)
		assert.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("should surface a malformed digest as an error", func(t *testing.T) {
		ok, err := hasher.Verify("pw1", HashPassword("pw1"))

		assert.Error(t, err)
		assert.False(t, ok)
	})
}

func TestNewPasswordHasher(t *testing.T) {
	h, err := NewPasswordHasher("", 0)
	assert.NoError(t, err)
	assert.Equal(t, SchemeSHA256, h.Scheme())

	h, err = NewPasswordHasher(SchemeBcrypt, 0)
	assert.NoError(t, err)
	assert.Equal(t, SchemeBcrypt, h.Scheme())

	_, err = NewPasswordHasher("md5", 0)
	assert.Error(t, err)
}
