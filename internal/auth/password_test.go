package auth

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestHasherRoundTrip(t *testing.T) {
	h := NewHasher(bcrypt.MinCost)

	digest, err := h.Hash("correct horse")
	require.NoError(t, err)

	assert.NotEqual(t, "correct horse", digest)
	assert.True(t, h.Verify("correct horse", digest))
	assert.False(t, h.Verify("battery staple", digest))
}

func TestHasherTruncatesLongPasswords(t *testing.T) {
	h := NewHasher(bcrypt.MinCost)
	long := strings.Repeat("a", 100)

	digest, err := h.Hash(long)
	require.NoError(t, err)

	assert.True(t, h.Verify(long, digest))
	assert.True(t, h.Verify(strings.Repeat("a", 72)+"different tail", digest))
	assert.False(t, h.Verify(strings.Repeat("a", 71), digest))
}

func TestHasherNullAndEmptyDigest(t *testing.T) {
	h := NewHasher(bcrypt.MinCost)

	_, err := h.HashPtr(nil)
	assert.ErrorIs(t, err, ErrNullPassword)

	pw := "secret"
	digest, err := h.HashPtr(&pw)
	require.NoError(t, err)
	assert.True(t, h.Verify(pw, digest))

	assert.False(t, h.Verify("secret", ""))
}

func TestNewHasherFallsBackToDefaultCost(t *testing.T) {
	assert.Equal(t, bcrypt.DefaultCost, NewHasher(0).cost)
	assert.Equal(t, bcrypt.MinCost, NewHasher(bcrypt.MinCost).cost)
}
