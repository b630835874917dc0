package auth

import (
	"net/http"
	"strings"

	"github.com/ProfitPath/PP-Backend/internal/httputil"
	"github.com/go-chi/chi/v5"
)

var errUnknownProvider = httputil.NewError(http.StatusNotFound, "Unknown OAuth provider")

func (h *Handler) provider(r *http.Request) (*Provider, error) {
	p, ok := h.providers[chi.URLParam(r, "provider")]
	if !ok {
		return nil, errUnknownProvider
	}
	if !p.Configured() {
		return nil, ErrOAuthConfiguration.Withf("%s OAuth is not configured", p.Name)
	}
	return p, nil
}

// OAuthLogin starts the authorization-code flow and redirects to the provider.
func (h *Handler) OAuthLogin(w http.ResponseWriter, r *http.Request) {
	p, err := h.provider(r)
	if err != nil {
		httputil.WriteErr(w, err)
		return
	}

	redirectURI, err := h.redirectURI(r, p)
	if err != nil {
		httputil.WriteErr(w, err)
		return
	}

	sess, err := h.states.Begin(r.Context(), p.Name, redirectURI)
	if err != nil {
		httputil.WriteErr(w, err)
		return
	}

	SetAuthCookie(w, h.cookie.Named(OAuthSessionCookie).WithMaxAge(h.states.TTL()), sess.SessionID)
	http.Redirect(w, r, p.AuthCodeURL(sess.State, sess.CodeVerifier, redirectURI), http.StatusFound)
}

// OAuthCallback finishes the flow: it checks state, exchanges the code, maps
// the profile to a local account and hands the browser an identity cookie.
func (h *Handler) OAuthCallback(w http.ResponseWriter, r *http.Request) {
	p, err := h.provider(r)
	if err != nil {
		httputil.WriteErr(w, err)
		return
	}

	q := r.URL.Query()
	if e := q.Get("error"); e != "" {
		msg := "OAuth error: " + e
		if desc := q.Get("error_description"); desc != "" {
			msg += " (" + desc + ")"
		}
		httputil.WriteErr(w, ErrOAuthProtocol.With(msg))
		return
	}

	code := q.Get("code")
	if code == "" {
		httputil.WriteErr(w, ErrOAuthProtocol.With("Missing authorization code"))
		return
	}

	var sessionID string
	if c, err := r.Cookie(OAuthSessionCookie); err == nil {
		sessionID = c.Value
	}
	ClearAuthCookie(w, h.cookie.Named(OAuthSessionCookie))

	sess, err := h.states.Consume(r.Context(), sessionID, p.Name, q.Get("state"))
	if err != nil {
		httputil.WriteErr(w, err)
		return
	}

	token, err := p.Exchange(r.Context(), code, sess.CodeVerifier, sess.RedirectURI)
	if err != nil {
		h.log.WarnContext(r.Context(), "oauth code exchange failed", "provider", p.Name, "error", err)
		httputil.WriteErr(w, err)
		return
	}

	profile, err := p.FetchProfile(r.Context(), token)
	if err != nil {
		h.log.WarnContext(r.Context(), "oauth profile fetch failed", "provider", p.Name, "error", err)
		httputil.WriteErr(w, err)
		return
	}

	user, err := h.svc.GetOrCreateOAuthUser(r.Context(), profile)
	if err != nil {
		httputil.WriteErr(w, err)
		return
	}

	accessToken, err := h.svc.IssueToken(user)
	if err != nil {
		httputil.WriteErr(w, err)
		return
	}

	SetAuthCookie(w, h.cookie, accessToken)
	http.Redirect(w, r, h.opts.FrontendURL+h.opts.OAuthSuccessPath, http.StatusFound)
}

// redirectURI returns the configured callback URL. Outside production a
// missing one is derived from the request, swapping /login for /callback.
func (h *Handler) redirectURI(r *http.Request, p *Provider) (string, error) {
	if p.RedirectURI != "" {
		return p.RedirectURI, nil
	}
	if IsProduction(h.opts.Env) {
		return "", ErrOAuthConfiguration.Withf("%s_REDIRECT_URI must be set in production", strings.ToUpper(p.Name))
	}

	scheme := "http"
	if r.TLS != nil {
		scheme = "https"
	}
	if fwd := r.Header.Get("X-Forwarded-Proto"); fwd != "" {
		scheme = fwd
	}

	path := strings.TrimSuffix(r.URL.Path, "/login") + "/callback"
	return scheme + "://" + r.Host + path, nil
}
