package marketdata

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/ProfitPath/PP-Backend/internal/httputil"
	"github.com/go-chi/chi/v5"
)

type Handler struct {
	client *Client
}

func NewHandler(client *Client) *Handler {
	return &Handler{client: client}
}

func (h *Handler) GetPrice(w http.ResponseWriter, r *http.Request) {
	ticker := strings.ToUpper(strings.TrimSpace(chi.URLParam(r, "ticker")))

	start := time.Now()
	quote, err := h.client.Price(r.Context(), ticker)
	httputil.AddServerTiming(w, "fmp", time.Since(start))

	var upstream *UpstreamError
	switch {
	case err == nil:
		httputil.WriteJSON(w, http.StatusOK, quote)
	case errors.Is(err, ErrNotConfigured):
		httputil.WriteError(w, http.StatusBadRequest, "FMP API key not configured")
	case errors.Is(err, ErrTickerNotFound):
		httputil.WriteError(w, http.StatusNotFound, "Stock ticker not found")
	case errors.As(err, &upstream):
		httputil.WriteError(w, upstream.StatusCode, "Failed to fetch data from FMP")
	default:
		httputil.WriteError(w, http.StatusInternalServerError, "An unexpected error occurred: "+err.Error())
	}
}
