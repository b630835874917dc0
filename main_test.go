package main

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/ProfitPath/PP-Backend/internal/config"
	"github.com/ProfitPath/PP-Backend/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig(env string) config.Config {
	return config.Config{
		JWTSecretKey:           "test-secret",
		JWTAlgorithm:           "HS256",
		JWTExpireMinutes:       60,
		Env:                    env,
		CookieName:             "access_token",
		CookieSameSite:         "lax",
		AllowedOrigins:         []string{"http://localhost:3000"},
		FrontendURL:            "http://localhost:3000",
		OAuthSuccessPath:       "/dashboard",
		FMPBaseURL:             "http://127.0.0.1:0",
		AuthRateLimitPerMinute: 100,
	}
}

func newTestServer(t *testing.T, env string) http.Handler {
	t.Helper()
	h, states, err := newServer(testConfig(env), testutil.NewDB(t), slog.New(slog.NewTextHandler(io.Discard, nil)))
	require.NoError(t, err)
	require.NotNil(t, states)
	return h
}

func send(t *testing.T, h http.Handler, method, path, bearer string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var rd io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		rd = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, path, rd)
	req.Header.Set("Content-Type", "application/json")
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestRoot(t *testing.T) {
	h := newTestServer(t, "development")

	rec := send(t, h, http.MethodGet, "/", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestRegisterLoginAndUseAPI(t *testing.T) {
	h := newTestServer(t, "development")

	rec := send(t, h, http.MethodPost, "/auth/register", "", map[string]string{
		"email":    "trader@example.com",
		"password": "secret123",
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = send(t, h, http.MethodPost, "/auth/login", "", map[string]string{
		"email":    "trader@example.com",
		"password": "secret123",
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var login struct {
		AccessToken string `json:"access_token"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &login))
	require.NotEmpty(t, login.AccessToken)

	rec = send(t, h, http.MethodGet, "/auth/me", login.AccessToken, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var me struct {
		ID    uint   `json:"id"`
		Email string `json:"email"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &me))
	assert.Equal(t, uint(1), me.ID)
	assert.Equal(t, "trader@example.com", me.Email)

	rec = send(t, h, http.MethodPost, "/watchlist", login.AccessToken, map[string]string{"symbol": "NVDA"})
	assert.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	rec = send(t, h, http.MethodGet, "/risk-management/settings", login.AccessToken, nil)
	assert.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = send(t, h, http.MethodPost, "/chat/message", login.AccessToken, map[string]string{"message": "hi"})
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)

	rec = send(t, h, http.MethodGet, "/market-data/price/AAPL", login.AccessToken, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestProtectedRoutesRequireAuth(t *testing.T) {
	h := newTestServer(t, "development")

	for _, path := range []string{"/watchlist", "/pattern-trends", "/portfolio", "/chat/messages", "/users/theme"} {
		rec := send(t, h, http.MethodGet, path, "", nil)
		assert.Equal(t, http.StatusUnauthorized, rec.Code, path)
	}
}

func TestDebugRoutesHiddenInProduction(t *testing.T) {
	dev := newTestServer(t, "development")
	assert.Equal(t, http.StatusOK, send(t, dev, http.MethodGet, "/debug/echo", "", nil).Code)
	assert.Equal(t, http.StatusOK, send(t, dev, http.MethodGet, "/debug/oauth", "", nil).Code)

	prod := newTestServer(t, "production")
	assert.Equal(t, http.StatusNotFound, send(t, prod, http.MethodGet, "/debug/echo", "", nil).Code)
	assert.Equal(t, http.StatusNotFound, send(t, prod, http.MethodGet, "/debug/oauth", "", nil).Code)
}
