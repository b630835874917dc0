package auth

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// SetupRoutes mounts under /auth. authMW guards the routes that need a user
// in context; limit throttles credential guessing on register and login.
func SetupRoutes(h *Handler, authMW, limit func(http.Handler) http.Handler) http.Handler {
	r := chi.NewRouter()

	r.Group(func(r chi.Router) {
		r.Use(limit)
		r.Post("/register", h.Register)
		r.Post("/login", h.Login)
	})
	r.Post("/logout", h.Logout)
	r.Get("/me", h.Me)

	r.Get("/{provider}/login", h.OAuthLogin)
	r.Get("/{provider}/callback", h.OAuthCallback)

	r.Group(func(r chi.Router) {
		r.Use(authMW)
		r.Post("/change-password", h.ChangePassword)
		r.Post("/accept-disclaimer", h.AcceptDisclaimer)
	})

	return r
}

// SetupUserRoutes mounts under /users. GET /theme resolves the caller itself
// since it needs the whole user row.
func SetupUserRoutes(h *Handler, authMW func(http.Handler) http.Handler) http.Handler {
	r := chi.NewRouter()

	r.Get("/theme", h.GetTheme)
	r.With(authMW).Put("/theme", h.PutTheme)

	return r
}
