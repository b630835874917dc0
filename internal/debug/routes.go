package debug

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

func SetupRoutes(h *Handler) http.Handler {
	r := chi.NewRouter()

	r.Get("/echo", h.Echo)
	r.Get("/decode", h.Decode)
	r.Get("/set-test-cookie", h.SetTestCookie)
	r.Get("/oauth", h.OAuth)

	return r
}
