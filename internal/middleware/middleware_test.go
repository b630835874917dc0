package middleware_test

import (
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"

	"github.com/ProfitPath/PP-Backend/internal/httputil"
	"github.com/ProfitPath/PP-Backend/internal/middleware"
	"github.com/ProfitPath/PP-Backend/internal/utils"
)

var errUnauthenticated = httputil.NewError(http.StatusUnauthorized, "Authentication required")

// mockResolver implements middleware.IdentityResolver without any database dependency.
type mockResolver struct {
	userID uint
	err    error
}

func (m mockResolver) ResolveUserID(r *http.Request) (uint, error) {
	return m.userID, m.err
}

// call wraps a simple 200-OK inner handler in the provided middleware and
// returns the recorded response.
func call(t *testing.T, mw func(http.Handler) http.Handler, req *http.Request) *httptest.ResponseRecorder {
	t.Helper()

	inner := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	rec := httptest.NewRecorder()
	mw(inner).ServeHTTP(rec, req)
	return rec
}

// TestAuthMiddleware_ResolverError verifies that a resolver failure is reported
// with its own status and message.
func TestAuthMiddleware_ResolverError(t *testing.T) {
	mw := middleware.AuthMiddleware(mockResolver{err: errUnauthenticated})

	rec := call(t, mw, httptest.NewRequest(http.MethodGet, "/test", nil))

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("expected 401, got %d", rec.Code)
	}
	body := rec.Body.String()
	if !strings.Contains(body, "Authentication required") {
		t.Errorf("expected body to contain %q, got: %q", "Authentication required", body)
	}
}

// TestAuthMiddleware_ValidUser verifies that the resolved user id is injected
// into the request context.
func TestAuthMiddleware_ValidUser(t *testing.T) {
	const wantUserID uint = 42

	inner := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUserID, ok := utils.GetUserIDFromContext(r.Context())
		if !ok {
			http.Error(w, "userID not in context", http.StatusInternalServerError)
			return
		}
		if gotUserID != wantUserID {
			http.Error(w, "wrong userID in context: "+strconv.Itoa(int(gotUserID)), http.StatusInternalServerError)
			return
		}
		w.WriteHeader(http.StatusOK)
	})

	handler := middleware.AuthMiddleware(mockResolver{userID: wantUserID})(inner)

	req := httptest.NewRequest(http.MethodGet, "/test", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("expected 200, got %d; body: %s", rec.Code, rec.Body.String())
	}
}

// TestCORSMiddleware_AllowedOrigin verifies that an allow-listed origin is echoed
// back with credentials enabled.
func TestCORSMiddleware_AllowedOrigin(t *testing.T) {
	mw := middleware.CORSMiddleware([]string{"http://localhost:3000"})

	req := httptest.NewRequest(http.MethodGet, "/test", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	rec := call(t, mw, req)

	if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "http://localhost:3000" {
		t.Errorf("expected origin to be echoed, got %q", got)
	}
	if got := rec.Header().Get("Access-Control-Allow-Credentials"); got != "true" {
		t.Errorf("expected credentials allowed, got %q", got)
	}
}

// TestCORSMiddleware_UnknownOrigin verifies that other origins get no grant.
func TestCORSMiddleware_UnknownOrigin(t *testing.T) {
	mw := middleware.CORSMiddleware([]string{"http://localhost:3000"})

	req := httptest.NewRequest(http.MethodGet, "/test", nil)
	req.Header.Set("Origin", "https://evil.example")
	rec := call(t, mw, req)

	if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "" {
		t.Errorf("expected no allow-origin header, got %q", got)
	}
}

// TestCORSMiddleware_Preflight verifies that OPTIONS is answered without
// reaching the inner handler.
func TestCORSMiddleware_Preflight(t *testing.T) {
	mw := middleware.CORSMiddleware([]string{"http://localhost:3000"})

	req := httptest.NewRequest(http.MethodOptions, "/test", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	rec := call(t, mw, req)

	if rec.Code != http.StatusNoContent {
		t.Errorf("expected 204, got %d", rec.Code)
	}
}

// TestRateLimit_BlocksAfterBurst verifies that a client gets 429 once its
// per-minute allowance is spent while other clients are unaffected.
func TestRateLimit_BlocksAfterBurst(t *testing.T) {
	mw := middleware.RateLimit(middleware.NewIPRateLimiter(2))

	send := func(addr string) int {
		req := httptest.NewRequest(http.MethodPost, "/login", nil)
		req.RemoteAddr = addr
		return call(t, mw, req).Code
	}

	for i := 0; i < 2; i++ {
		if code := send("10.0.0.1:1234"); code != http.StatusOK {
			t.Fatalf("request %d: expected 200, got %d", i, code)
		}
	}
	if code := send("10.0.0.1:5678"); code != http.StatusTooManyRequests {
		t.Errorf("expected 429, got %d", code)
	}
	if code := send("10.0.0.2:1234"); code != http.StatusOK {
		t.Errorf("expected other client to pass, got %d", code)
	}
}
