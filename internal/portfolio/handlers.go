package portfolio

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/ProfitPath/PP-Backend/internal/httputil"
	"github.com/ProfitPath/PP-Backend/internal/utils"
	"github.com/go-chi/chi/v5"
	"gorm.io/gorm"
)

var (
	ErrItemNotFound = httputil.NewError(http.StatusNotFound, "Item not found")
	ErrInvalidItem  = httputil.NewError(http.StatusBadRequest, "Invalid portfolio item")
)

type Handler struct {
	db *gorm.DB
}

func NewHandler(db *gorm.DB) *Handler {
	return &Handler{db: db}
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	userID, _ := utils.GetUserIDFromContext(r.Context())

	items := []Item{}
	if err := h.db.WithContext(r.Context()).Where("owner_id = ?", userID).Order("id ASC").Find(&items).Error; err != nil {
		httputil.WriteErr(w, fmt.Errorf("fetch portfolio: %w", err))
		return
	}

	httputil.WriteJSON(w, http.StatusOK, items)
}

type createRequest struct {
	Ticker   string `json:"ticker"`
	Quantity int    `json:"quantity"`
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	userID, _ := utils.GetUserIDFromContext(r.Context())

	var req createRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		httputil.WriteErr(w, err)
		return
	}

	ticker := strings.ToUpper(strings.TrimSpace(req.Ticker))
	if ticker == "" {
		httputil.WriteErr(w, ErrInvalidItem.With("Ticker cannot be empty"))
		return
	}
	if req.Quantity <= 0 {
		httputil.WriteErr(w, ErrInvalidItem.With("Quantity must be positive"))
		return
	}

	item := Item{OwnerID: userID, Ticker: ticker, Quantity: req.Quantity}
	if err := h.db.WithContext(r.Context()).Create(&item).Error; err != nil {
		httputil.WriteErr(w, fmt.Errorf("create portfolio item: %w", err))
		return
	}

	httputil.WriteJSON(w, http.StatusOK, item)
}

// Delete removes one of the user's items and returns it.
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	userID, _ := utils.GetUserIDFromContext(r.Context())

	itemID, err := strconv.ParseUint(chi.URLParam(r, "item_id"), 10, 0)
	if err != nil {
		httputil.WriteErr(w, ErrInvalidItem.With("Invalid item id"))
		return
	}

	var item Item
	err = h.db.WithContext(r.Context()).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("id = ? AND owner_id = ?", itemID, userID).First(&item).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrItemNotFound
			}
			return err
		}
		return tx.Delete(&item).Error
	})
	if err != nil {
		httputil.WriteErr(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, item)
}
