package auth

import (
	"net/http"
	"strings"
	"time"
)

const (
	// CookieMaxAge is the identity cookie lifetime in seconds.
	CookieMaxAge = 86400

	OAuthSessionCookie = "oauth_session"
)

type CookieConfig struct {
	Name     string
	Secure   bool
	SameSite string
	Domain   string
}

// CookieAttributes is everything needed to set or clear one cookie.
type CookieAttributes struct {
	Name     string
	HttpOnly bool
	Secure   bool
	SameSite http.SameSite
	Domain   string
	MaxAge   int
	Path     string
}

// CookiePolicy resolves the cookie attributes for an environment. Production
// always gets Secure and SameSite=None so the cross-site frontend can send
// the cookie; elsewhere the configured values apply and Domain is left unset.
func CookiePolicy(env string, cfg CookieConfig) CookieAttributes {
	name := cfg.Name
	if name == "" {
		name = "access_token"
	}

	attrs := CookieAttributes{
		Name:     name,
		HttpOnly: true,
		MaxAge:   CookieMaxAge,
		Path:     "/",
	}

	if IsProduction(env) {
		attrs.Secure = true
		attrs.SameSite = http.SameSiteNoneMode
		attrs.Domain = strings.TrimSpace(cfg.Domain)
		return attrs
	}

	attrs.Secure = cfg.Secure
	attrs.SameSite = ParseSameSite(cfg.SameSite)
	return attrs
}

// Named returns a copy of the policy for a different cookie.
func (a CookieAttributes) Named(name string) CookieAttributes {
	a.Name = name
	return a
}

// WithMaxAge returns a copy of the policy with a different lifetime.
func (a CookieAttributes) WithMaxAge(d time.Duration) CookieAttributes {
	a.MaxAge = int(d / time.Second)
	return a
}

func (a CookieAttributes) cookie(value string, maxAge int) *http.Cookie {
	return &http.Cookie{
		Name:     a.Name,
		Value:    value,
		Path:     a.Path,
		Domain:   a.Domain,
		MaxAge:   maxAge,
		HttpOnly: a.HttpOnly,
		Secure:   a.Secure,
		SameSite: a.SameSite,
	}
}

func SetAuthCookie(w http.ResponseWriter, attrs CookieAttributes, value string) {
	http.SetCookie(w, attrs.cookie(value, attrs.MaxAge))
}

// ClearAuthCookie expires the cookie using the same name, path and domain it was set with.
func ClearAuthCookie(w http.ResponseWriter, attrs CookieAttributes) {
	http.SetCookie(w, attrs.cookie("", -1))
}

func ParseSameSite(s string) http.SameSite {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "strict":
		return http.SameSiteStrictMode
	case "none":
		return http.SameSiteNoneMode
	default:
		return http.SameSiteLaxMode
	}
}

func IsProduction(env string) bool {
	return strings.EqualFold(strings.TrimSpace(env), "production")
}
