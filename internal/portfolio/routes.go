package portfolio

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

func SetupRoutes(h *Handler, authMW func(http.Handler) http.Handler) http.Handler {
	r := chi.NewRouter()
	r.Use(authMW)

	r.Get("/", h.List)
	r.Post("/", h.Create)
	r.Delete("/{item_id}", h.Delete)

	return r
}
