package auth

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/ProfitPath/PP-Backend/internal/middleware"
	"github.com/ProfitPath/PP-Backend/internal/testutil"
	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type testEnv struct {
	db        *gorm.DB
	store     *Store
	svc       *Service
	tokens    *TokenManager
	clock     *fakeClock
	resolver  *Resolver
	states    *StateStore
	providers map[string]*Provider
	handler   *Handler
	router    http.Handler
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestEnv(t *testing.T, configure ...func(*Options, map[string]*Provider)) *testEnv {
	t.Helper()

	gdb := testutil.NewDB(t, &User{}, &OAuthSession{})
	clock := &fakeClock{t: time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)}

	tokens, err := NewTokenManager("test-secret", "HS256", time.Hour, WithClock(clock.Now))
	require.NoError(t, err)

	store := NewStore(gdb)
	svc := NewService(store, NewHasher(bcrypt.MinCost), tokens, discardLogger())
	svc.now = clock.Now
	resolver := NewResolver(tokens, store, "access_token")
	states := NewStateStore(gdb, 24*time.Hour)
	states.now = clock.Now

	providers := NewProviderRegistry(ProviderCredentials{}, ProviderCredentials{})
	opts := Options{
		Env:         "development",
		Cookie:      CookieConfig{Name: "access_token", SameSite: "lax"},
		FrontendURL: "http://localhost:3000",
	}
	for _, fn := range configure {
		fn(&opts, providers)
	}

	h := NewHandler(svc, resolver, providers, states, discardLogger(), opts)

	authMW := middleware.AuthMiddleware(resolver)
	limit := middleware.RateLimit(middleware.NewIPRateLimiter(1000))

	r := chi.NewRouter()
	r.Mount("/auth", SetupRoutes(h, authMW, limit))
	r.Mount("/users", SetupUserRoutes(h, authMW))

	return &testEnv{
		db:        gdb,
		store:     store,
		svc:       svc,
		tokens:    tokens,
		clock:     clock,
		resolver:  resolver,
		states:    states,
		providers: providers,
		handler:   h,
		router:    r,
	}
}

// do sends one request through the router. body is JSON-encoded when non-nil.
func (e *testEnv) do(t *testing.T, method, path string, body any, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	t.Helper()

	var rd io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		rd = bytes.NewReader(b)
	}

	req := httptest.NewRequest(method, path, rd)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for _, c := range cookies {
		req.AddCookie(c)
	}

	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), "body: %s", rec.Body.String())
	return out
}

func cookieNamed(rec *httptest.ResponseRecorder, name string) *http.Cookie {
	for _, c := range rec.Result().Cookies() {
		if c.Name == name {
			return c
		}
	}
	return nil
}

func ptr(s string) *string { return &s }

func newRequest(t *testing.T, method, path string) *http.Request {
	t.Helper()
	return httptest.NewRequest(method, path, nil)
}

func serve(e *testEnv, req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, req)
	return rec
}
