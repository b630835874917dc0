package auth

import (
	"errors"
	"net/http"
	"strings"
)

// Resolver turns request credentials into a user. A bearer Authorization
// header wins over the session cookie.
type Resolver struct {
	tokens     *TokenManager
	store      *Store
	cookieName string
}

func NewResolver(tokens *TokenManager, store *Store, cookieName string) *Resolver {
	if cookieName == "" {
		cookieName = "access_token"
	}
	return &Resolver{tokens: tokens, store: store, cookieName: cookieName}
}

func (res *Resolver) Resolve(r *http.Request) (*User, error) {
	raw := res.extractToken(r)
	if raw == "" {
		return nil, ErrUnauthenticated
	}

	claims, err := res.tokens.Validate(raw)
	if err != nil {
		if errors.Is(err, ErrExpiredToken) {
			return nil, ErrExpiredToken
		}
		return nil, ErrInvalidToken
	}

	user, err := res.store.FindByID(r.Context(), claims.UserID)
	if errors.Is(err, ErrNotFound) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, err
	}
	return user, nil
}

// ResolveUserID satisfies middleware.IdentityResolver.
func (res *Resolver) ResolveUserID(r *http.Request) (uint, error) {
	user, err := res.Resolve(r)
	if err != nil {
		return 0, err
	}
	return user.ID, nil
}

func (res *Resolver) extractToken(r *http.Request) string {
	if token := bearerToken(r.Header.Get("Authorization")); token != "" {
		return token
	}
	if c, err := r.Cookie(res.cookieName); err == nil {
		return strings.TrimSpace(c.Value)
	}
	return ""
}

func bearerToken(header string) string {
	const prefix = "bearer "
	if len(header) < len(prefix) || !strings.EqualFold(header[:len(prefix)], prefix) {
		return ""
	}
	return strings.TrimSpace(header[len(prefix):])
}
