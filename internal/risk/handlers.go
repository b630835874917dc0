package risk

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/ProfitPath/PP-Backend/internal/httputil"
	"github.com/ProfitPath/PP-Backend/internal/utils"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var ErrNegativeValue = httputil.NewError(http.StatusBadRequest, "Risk values must not be negative")

type Handler struct {
	db *gorm.DB
}

func NewHandler(db *gorm.DB) *Handler {
	return &Handler{db: db}
}

// GetSettings returns the user's settings, creating the defaults on first read.
func (h *Handler) GetSettings(w http.ResponseWriter, r *http.Request) {
	userID, _ := utils.GetUserIDFromContext(r.Context())
	db := h.db.WithContext(r.Context())

	var s Settings
	err := db.Where("user_id = ?", userID).First(&s).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		s = defaults(userID)
		// A concurrent first read may have inserted the row already.
		err = db.Clauses(clause.OnConflict{DoNothing: true}).Create(&s).Error
		if err == nil && s.ID == 0 {
			err = db.Where("user_id = ?", userID).First(&s).Error
		}
	}
	if err != nil {
		httputil.WriteErr(w, fmt.Errorf("load risk settings: %w", err))
		return
	}

	httputil.WriteJSON(w, http.StatusOK, s)
}

type settingsRequest struct {
	MaxPositionSize float64 `json:"max_position_size"`
	StopLoss        float64 `json:"stop_loss"`
	TakeProfit      float64 `json:"take_profit"`
}

// PutSettings replaces the user's settings; omitted fields take their defaults.
func (h *Handler) PutSettings(w http.ResponseWriter, r *http.Request) {
	userID, _ := utils.GetUserIDFromContext(r.Context())

	req := settingsRequest{
		MaxPositionSize: DefaultMaxPositionSize,
		StopLoss:        DefaultStopLoss,
		TakeProfit:      DefaultTakeProfit,
	}
	if err := httputil.DecodeJSON(r, &req); err != nil {
		httputil.WriteErr(w, err)
		return
	}
	if req.MaxPositionSize < 0 || req.StopLoss < 0 || req.TakeProfit < 0 {
		httputil.WriteErr(w, ErrNegativeValue)
		return
	}

	s := Settings{
		UserID:          userID,
		MaxPositionSize: req.MaxPositionSize,
		StopLoss:        req.StopLoss,
		TakeProfit:      req.TakeProfit,
	}
	db := h.db.WithContext(r.Context())
	err := db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"max_position_size", "stop_loss", "take_profit", "updated_at"}),
	}).Create(&s).Error
	if err == nil {
		err = db.Where("user_id = ?", userID).First(&s).Error
	}
	if err != nil {
		httputil.WriteErr(w, fmt.Errorf("save risk settings: %w", err))
		return
	}

	httputil.WriteJSON(w, http.StatusOK, s)
}
