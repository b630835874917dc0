package symbols

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

func SetupRoutes(h *Handler, authMW func(http.Handler) http.Handler) http.Handler {
	r := chi.NewRouter()
	r.Use(authMW)

	r.Get("/", h.List)
	r.Post("/", h.Add)
	r.Delete("/{symbol}", h.Remove)
	if h.kind.AllowClear {
		r.Delete("/", h.Clear)
	}

	return r
}
