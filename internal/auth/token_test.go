package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClock struct{ t time.Time }

func (c *fakeClock) Now() time.Time          { return c.t }
func (c *fakeClock) Advance(d time.Duration) { c.t = c.t.Add(d) }

func newTestTokens(t *testing.T, clock *fakeClock) *TokenManager {
	t.Helper()
	m, err := NewTokenManager("test-secret", "HS256", time.Hour, WithClock(clock.Now))
	require.NoError(t, err)
	return m
}

func TestTokenValidUntilExpiry(t *testing.T) {
	clock := &fakeClock{t: time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)}
	tokens := newTestTokens(t, clock)

	token, err := tokens.Issue("42")
	require.NoError(t, err)

	claims, err := tokens.Validate(token)
	require.NoError(t, err)
	assert.Equal(t, uint(42), claims.UserID)
	assert.Equal(t, "42", claims.Subject)
	assert.True(t, clock.t.Add(time.Hour).Equal(claims.ExpiresAt))

	clock.Advance(59 * time.Minute)
	_, err = tokens.Validate(token)
	assert.NoError(t, err)

	clock.Advance(2 * time.Minute)
	_, err = tokens.Validate(token)
	assert.ErrorIs(t, err, ErrExpiredToken)
}

func TestTokenRejectsWrongSecret(t *testing.T) {
	clock := &fakeClock{t: time.Now()}
	tokens := newTestTokens(t, clock)

	other, err := NewTokenManager("other-secret", "HS256", time.Hour, WithClock(clock.Now))
	require.NoError(t, err)
	token, err := other.Issue("1")
	require.NoError(t, err)

	_, err = tokens.Validate(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestTokenRejectsGarbageAndOtherAlgorithms(t *testing.T) {
	clock := &fakeClock{t: time.Now()}
	tokens := newTestTokens(t, clock)

	_, err := tokens.Validate("not-a-jwt")
	assert.ErrorIs(t, err, ErrInvalidToken)

	hs512, err := NewTokenManager("test-secret", "HS512", time.Hour, WithClock(clock.Now))
	require.NoError(t, err)
	token, err := hs512.Issue("1")
	require.NoError(t, err)
	_, err = tokens.Validate(token)
	assert.ErrorIs(t, err, ErrInvalidToken)

	none, err := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.RegisteredClaims{
		Subject:   "1",
		ExpiresAt: jwt.NewNumericDate(clock.t.Add(time.Hour)),
	}).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)
	_, err = tokens.Validate(none)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestTokenMalformedSubject(t *testing.T) {
	clock := &fakeClock{t: time.Now()}
	tokens := newTestTokens(t, clock)

	for _, sub := range []string{"", "abc", "-3", "0"} {
		token, err := tokens.Issue(sub)
		require.NoError(t, err)

		_, err = tokens.Validate(token)
		assert.ErrorIs(t, err, ErrMalformedToken, "subject %q", sub)
		assert.Equal(t, 401, StatusFor(err))
	}
}

func TestNewTokenManagerRejectsBadConfig(t *testing.T) {
	_, err := NewTokenManager("", "HS256", time.Hour)
	assert.Error(t, err)

	_, err = NewTokenManager("s", "RS256", time.Hour)
	assert.Error(t, err)

	_, err = NewTokenManager("s", "HS256", 0)
	assert.Error(t, err)
}
