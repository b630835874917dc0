package auth

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func createUser(t *testing.T, e *testEnv, email string) *User {
	t.Helper()
	u, err := e.svc.Register(context.Background(), RegisterInput{Email: ptr(email), Password: ptr("secret123")})
	require.NoError(t, err)
	return u
}

func TestResolverPrefersBearerOverCookie(t *testing.T) {
	e := newTestEnv(t)
	alice := createUser(t, e, "alice@example.com")
	bob := createUser(t, e, "bob@example.com")

	aliceToken, err := e.tokens.IssueForUser(alice.ID)
	require.NoError(t, err)
	bobToken, err := e.tokens.IssueForUser(bob.ID)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+aliceToken)
	req.AddCookie(&http.Cookie{Name: "access_token", Value: bobToken})

	user, err := e.resolver.Resolve(req)
	require.NoError(t, err)
	assert.Equal(t, alice.ID, user.ID)
}

func TestResolverBearerSchemeIsCaseInsensitive(t *testing.T) {
	e := newTestEnv(t)
	alice := createUser(t, e, "alice@example.com")
	token, err := e.tokens.IssueForUser(alice.ID)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "bEaReR "+token)

	id, err := e.resolver.ResolveUserID(req)
	require.NoError(t, err)
	assert.Equal(t, alice.ID, id)
}

func TestResolverFallsBackToCookie(t *testing.T) {
	e := newTestEnv(t)
	alice := createUser(t, e, "alice@example.com")
	token, err := e.tokens.IssueForUser(alice.ID)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Basic dXNlcjpwYXNz")
	req.AddCookie(&http.Cookie{Name: "access_token", Value: token})

	user, err := e.resolver.Resolve(req)
	require.NoError(t, err)
	assert.Equal(t, alice.ID, user.ID)
}

func TestResolverErrors(t *testing.T) {
	e := newTestEnv(t)
	alice := createUser(t, e, "alice@example.com")

	valid, err := e.tokens.IssueForUser(alice.ID)
	require.NoError(t, err)
	ghost, err := e.tokens.IssueForUser(999)
	require.NoError(t, err)
	subjectless, err := e.tokens.Issue("not-a-number")
	require.NoError(t, err)

	withBearer := func(tok string) *http.Request {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Authorization", "Bearer "+tok)
		return req
	}

	_, err = e.resolver.Resolve(httptest.NewRequest(http.MethodGet, "/", nil))
	assert.ErrorIs(t, err, ErrUnauthenticated)
	assert.EqualError(t, err, "Authentication required")

	_, err = e.resolver.Resolve(withBearer("garbage"))
	assert.EqualError(t, err, "Invalid token")

	_, err = e.resolver.Resolve(withBearer(subjectless))
	assert.EqualError(t, err, "Invalid token")

	_, err = e.resolver.Resolve(withBearer(ghost))
	assert.ErrorIs(t, err, ErrUserNotFound)
	assert.EqualError(t, err, "User not found")

	e.clock.Advance(2 * time.Hour)
	_, err = e.resolver.Resolve(withBearer(valid))
	assert.ErrorIs(t, err, ErrExpiredToken)
	assert.EqualError(t, err, "Token expired")
	assert.Equal(t, http.StatusUnauthorized, StatusFor(err))
}
