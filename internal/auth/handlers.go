package auth

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/ProfitPath/PP-Backend/internal/httputil"
	"github.com/ProfitPath/PP-Backend/internal/utils"
)

type Options struct {
	Env              string
	Cookie           CookieConfig
	FrontendURL      string
	OAuthSuccessPath string
}

type Handler struct {
	svc       *Service
	resolver  *Resolver
	providers map[string]*Provider
	states    *StateStore
	cookie    CookieAttributes
	opts      Options
	log       *slog.Logger
}

func NewHandler(svc *Service, resolver *Resolver, providers map[string]*Provider, states *StateStore, log *slog.Logger, opts Options) *Handler {
	if log == nil {
		log = slog.Default()
	}
	if opts.OAuthSuccessPath == "" {
		opts.OAuthSuccessPath = "/dashboard"
	}
	return &Handler{
		svc:       svc,
		resolver:  resolver,
		providers: providers,
		states:    states,
		cookie:    CookiePolicy(opts.Env, opts.Cookie),
		opts:      opts,
		log:       log,
	}
}

func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var in RegisterInput
	if err := httputil.DecodeJSON(r, &in); err != nil {
		httputil.WriteErr(w, err)
		return
	}

	if _, err := h.svc.Register(r.Context(), in); err != nil {
		httputil.WriteErr(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, map[string]string{"message": "User registered successfully"})
}

type loginResponse struct {
	Message     string `json:"message"`
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var in LoginInput
	if err := httputil.DecodeJSON(r, &in); err != nil {
		httputil.WriteErr(w, err)
		return
	}

	_, token, err := h.svc.Login(r.Context(), in)
	if err != nil {
		httputil.WriteErr(w, err)
		return
	}

	SetAuthCookie(w, h.cookie, token)
	httputil.WriteJSON(w, http.StatusOK, loginResponse{
		Message:     "Login successful",
		AccessToken: token,
		TokenType:   "bearer",
	})
}

// Logout only clears the cookie; issued tokens stay valid until they expire.
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	ClearAuthCookie(w, h.cookie)
	httputil.WriteJSON(w, http.StatusOK, map[string]string{"message": "Logged out"})
}

type MeResponse struct {
	ID                 uint    `json:"id"`
	Email              *string `json:"email"`
	Username           *string `json:"username"`
	Name               *string `json:"name"`
	Provider           string  `json:"provider"`
	Theme              string  `json:"theme"`
	DisclaimerAccepted bool    `json:"disclaimer_accepted"`
}

func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	user, err := h.resolver.Resolve(r)
	if err != nil {
		httputil.WriteErr(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, MeResponse{
		ID:                 user.ID,
		Email:              user.Email,
		Username:           user.Username,
		Name:               user.Name,
		Provider:           user.Provider,
		Theme:              user.Theme,
		DisclaimerAccepted: user.DisclaimerAcceptedAt != nil,
	})
}

type changePasswordRequest struct {
	OldPassword string `json:"old_password"`
	NewPassword string `json:"new_password"`
}

func (h *Handler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	userID, ok := utils.GetUserIDFromContext(r.Context())
	if !ok {
		httputil.WriteErr(w, ErrUnauthenticated)
		return
	}

	var req changePasswordRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		httputil.WriteErr(w, err)
		return
	}

	if err := h.svc.ChangePassword(r.Context(), userID, req.OldPassword, req.NewPassword); err != nil {
		httputil.WriteErr(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, map[string]string{"message": "Password updated successfully"})
}

type acceptDisclaimerRequest struct {
	Accepted bool `json:"accepted"`
}

func (h *Handler) AcceptDisclaimer(w http.ResponseWriter, r *http.Request) {
	userID, ok := utils.GetUserIDFromContext(r.Context())
	if !ok {
		httputil.WriteErr(w, ErrUnauthenticated)
		return
	}

	var req acceptDisclaimerRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		httputil.WriteErr(w, err)
		return
	}
	if !req.Accepted {
		httputil.WriteErr(w, ErrValidation.With("Disclaimer must be accepted"))
		return
	}

	at, err := h.svc.AcceptDisclaimer(r.Context(), userID)
	if err != nil {
		httputil.WriteErr(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, map[string]string{
		"message":                "Disclaimer accepted",
		"disclaimer_accepted_at": at.Format(time.RFC3339),
	})
}

func (h *Handler) GetTheme(w http.ResponseWriter, r *http.Request) {
	user, err := h.resolver.Resolve(r)
	if err != nil {
		httputil.WriteErr(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]string{"theme": user.Theme})
}

// PutTheme takes the theme from the query string, or from a JSON body.
func (h *Handler) PutTheme(w http.ResponseWriter, r *http.Request) {
	userID, ok := utils.GetUserIDFromContext(r.Context())
	if !ok {
		httputil.WriteErr(w, ErrUnauthenticated)
		return
	}

	theme := r.URL.Query().Get("theme")
	if theme == "" {
		var body struct {
			Theme string `json:"theme"`
		}
		if err := httputil.DecodeJSON(r, &body); err != nil {
			httputil.WriteErr(w, err)
			return
		}
		theme = body.Theme
	}

	saved, err := h.svc.SetTheme(r.Context(), userID, theme)
	if err != nil {
		httputil.WriteErr(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]string{"theme": saved})
}
