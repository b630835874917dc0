// Package debug serves cookie and token diagnostics for non-production
// deployments.
package debug

import (
	"errors"
	"net/http"

	"github.com/ProfitPath/PP-Backend/internal/auth"
	"github.com/ProfitPath/PP-Backend/internal/httputil"
)

const testCookieName = "debug_cookie"

type Handler struct {
	tokens      *auth.TokenManager
	cookie      auth.CookieAttributes
	providers   map[string]*auth.Provider
	frontendURL string
}

func NewHandler(tokens *auth.TokenManager, cookie auth.CookieAttributes, providers map[string]*auth.Provider, frontendURL string) *Handler {
	return &Handler{tokens: tokens, cookie: cookie, providers: providers, frontendURL: frontendURL}
}

func (h *Handler) Echo(w http.ResponseWriter, r *http.Request) {
	_, cookieErr := r.Cookie(h.cookie.Name)

	httputil.WriteJSON(w, http.StatusOK, map[string]any{
		"url":                          r.URL.String(),
		"origin_header":                r.Header.Get("Origin"),
		"cookie_header":                r.Header.Get("Cookie"),
		"access_token_cookie_present":  cookieErr == nil,
		"authorization_header_present": r.Header.Get("Authorization") != "",
		"samesite":                     sameSiteName(h.cookie.SameSite),
		"secure":                       h.cookie.Secure,
	})
}

// Decode validates the auth cookie and reports what it contains.
func (h *Handler) Decode(w http.ResponseWriter, r *http.Request) {
	c, err := r.Cookie(h.cookie.Name)
	if err != nil || c.Value == "" {
		httputil.WriteJSON(w, http.StatusOK, map[string]any{
			"cookie_present": false,
			"decoded":        nil,
			"error":          "No cookie received",
		})
		return
	}

	claims, err := h.tokens.Validate(c.Value)
	switch {
	case err == nil:
		httputil.WriteJSON(w, http.StatusOK, map[string]any{
			"cookie_present": true,
			"decoded": map[string]any{
				"sub": claims.Subject,
				"exp": claims.ExpiresAt.Unix(),
			},
		})
	case errors.Is(err, auth.ErrExpiredToken):
		httputil.WriteJSON(w, http.StatusOK, map[string]any{"cookie_present": true, "error": "Token expired"})
	default:
		httputil.WriteJSON(w, http.StatusOK, map[string]any{"cookie_present": true, "error": "JWTError: " + err.Error()})
	}
}

func (h *Handler) SetTestCookie(w http.ResponseWriter, r *http.Request) {
	auth.SetAuthCookie(w, h.cookie.Named(testCookieName), "test123")
	httputil.WriteJSON(w, http.StatusOK, map[string]string{"message": "Test cookie set"})
}

type providerStatus struct {
	Configured   bool   `json:"configured"`
	ClientID     string `json:"client_id"`
	ClientSecret string `json:"client_secret"`
	RedirectURI  string `json:"redirect_uri"`
}

// OAuth reports which providers are configured. Secrets are never echoed and
// client ids are cut short.
func (h *Handler) OAuth(w http.ResponseWriter, r *http.Request) {
	providers := make(map[string]providerStatus, len(h.providers))
	for name, p := range h.providers {
		providers[name] = providerStatus{
			Configured:   p.Configured(),
			ClientID:     redactClientID(p.OAuth2.ClientID),
			ClientSecret: presence(p.OAuth2.ClientSecret),
			RedirectURI:  p.RedirectURI,
		}
	}

	httputil.WriteJSON(w, http.StatusOK, map[string]any{
		"status":       "ok",
		"providers":    providers,
		"frontend_url": h.frontendURL,
	})
}

const clientIDPrefix = 20

func redactClientID(id string) string {
	if id == "" {
		return "EMPTY"
	}
	if len(id) > clientIDPrefix {
		id = id[:clientIDPrefix]
	}
	return id + "..."
}

func presence(secret string) string {
	if secret == "" {
		return "EMPTY"
	}
	return "SET"
}

func sameSiteName(s http.SameSite) string {
	switch s {
	case http.SameSiteStrictMode:
		return "strict"
	case http.SameSiteNoneMode:
		return "none"
	default:
		return "lax"
	}
}
