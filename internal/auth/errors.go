package auth

import (
	"errors"
	"net/http"

	"github.com/ProfitPath/PP-Backend/internal/httputil"
)

var (
	ErrValidation         = httputil.NewError(http.StatusBadRequest, "Invalid request")
	ErrDuplicateIdentity  = httputil.NewError(http.StatusBadRequest, "Email already registered")
	ErrInvalidCredentials = httputil.NewError(http.StatusBadRequest, "Invalid email/username or password")

	ErrUnauthenticated = httputil.NewError(http.StatusUnauthorized, "Authentication required")
	ErrExpiredToken    = httputil.NewError(http.StatusUnauthorized, "Token expired")
	ErrInvalidToken    = httputil.NewError(http.StatusUnauthorized, "Invalid token")
	ErrUserNotFound    = httputil.NewError(http.StatusUnauthorized, "User not found")

	// ErrMalformedToken is a signed, unexpired token whose subject is unusable.
	ErrMalformedToken = ErrInvalidToken.With("Invalid token subject")

	ErrOAuthConfiguration = httputil.NewError(http.StatusInternalServerError, "OAuth provider is not configured")
	ErrOAuthProtocol      = httputil.NewError(http.StatusBadRequest, "OAuth login failed")
	ErrMissingEmail       = httputil.NewError(http.StatusBadRequest, "OAuth provider did not return an email address")

	ErrNullPassword = errors.New("password must not be null")
)

// StatusFor maps an auth error to its HTTP status; unknown errors are 500.
func StatusFor(err error) int {
	return httputil.StatusFor(err)
}
