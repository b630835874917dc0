package symbols

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/ProfitPath/PP-Backend/internal/httputil"
	"github.com/ProfitPath/PP-Backend/internal/utils"
	"github.com/go-chi/chi/v5"
	"gorm.io/gorm"
)

var (
	ErrEmptySymbol = httputil.NewError(http.StatusBadRequest, "Symbol cannot be empty")
	ErrDuplicate   = httputil.NewError(http.StatusBadRequest, "Symbol already tracked")
	ErrNotFound    = httputil.NewError(http.StatusNotFound, "Symbol not found")
)

type Handler struct {
	db   *gorm.DB
	kind Kind
}

func NewHandler(db *gorm.DB, kind Kind) *Handler {
	return &Handler{db: db, kind: kind}
}

func normalize(symbol string) string {
	return strings.ToUpper(strings.TrimSpace(symbol))
}

// List returns the user's symbols, oldest first.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	userID, _ := utils.GetUserIDFromContext(r.Context())

	items := []TrackedSymbol{}
	err := h.db.WithContext(r.Context()).
		Where("user_id = ? AND list = ?", userID, h.kind.List).
		Order("created_at ASC, id ASC").
		Find(&items).Error
	if err != nil {
		httputil.WriteErr(w, fmt.Errorf("fetch %s: %w", h.kind.Label, err))
		return
	}

	httputil.WriteJSON(w, http.StatusOK, map[string]any{"items": items})
}

type addRequest struct {
	Symbol string `json:"symbol"`
}

func (h *Handler) Add(w http.ResponseWriter, r *http.Request) {
	userID, _ := utils.GetUserIDFromContext(r.Context())

	var req addRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		httputil.WriteErr(w, err)
		return
	}

	symbol := normalize(req.Symbol)
	if symbol == "" {
		httputil.WriteErr(w, ErrEmptySymbol)
		return
	}

	var existing TrackedSymbol
	err := h.db.WithContext(r.Context()).
		Where("user_id = ? AND list = ? AND symbol = ?", userID, h.kind.List, symbol).
		First(&existing).Error
	if err == nil {
		httputil.WriteErr(w, ErrDuplicate.With("Symbol already in "+h.kind.Label))
		return
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		httputil.WriteErr(w, err)
		return
	}

	item := TrackedSymbol{UserID: userID, List: h.kind.List, Symbol: symbol}
	if err := h.db.WithContext(r.Context()).Create(&item).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			httputil.WriteErr(w, ErrDuplicate.With("Symbol already in "+h.kind.Label))
			return
		}
		httputil.WriteErr(w, fmt.Errorf("add symbol: %w", err))
		return
	}

	httputil.WriteJSON(w, http.StatusCreated, item)
}

func (h *Handler) Remove(w http.ResponseWriter, r *http.Request) {
	userID, _ := utils.GetUserIDFromContext(r.Context())
	symbol := normalize(chi.URLParam(r, "symbol"))

	res := h.db.WithContext(r.Context()).
		Where("user_id = ? AND list = ? AND symbol = ?", userID, h.kind.List, symbol).
		Delete(&TrackedSymbol{})
	if res.Error != nil {
		httputil.WriteErr(w, fmt.Errorf("remove symbol: %w", res.Error))
		return
	}
	if res.RowsAffected == 0 {
		httputil.WriteErr(w, ErrNotFound.With("Symbol not found in "+h.kind.Label))
		return
	}

	httputil.WriteJSON(w, http.StatusOK, map[string]string{
		"message": fmt.Sprintf("Removed %s from %s", symbol, h.kind.Label),
	})
}

func (h *Handler) Clear(w http.ResponseWriter, r *http.Request) {
	userID, _ := utils.GetUserIDFromContext(r.Context())

	res := h.db.WithContext(r.Context()).
		Where("user_id = ? AND list = ?", userID, h.kind.List).
		Delete(&TrackedSymbol{})
	if res.Error != nil {
		httputil.WriteErr(w, fmt.Errorf("clear %s: %w", h.kind.Label, res.Error))
		return
	}

	httputil.WriteJSON(w, http.StatusOK, map[string]string{
		"message": fmt.Sprintf("Cleared %d items from %s", res.RowsAffected, h.kind.Label),
	})
}
