package risk

import "time"

const (
	DefaultMaxPositionSize = 10.0
	DefaultStopLoss        = 5.0
	DefaultTakeProfit      = 15.0
)

// Settings are a user's risk-management preferences, stored as percentages.
type Settings struct {
	ID              uint      `gorm:"primaryKey" json:"id"`
	UserID          uint      `gorm:"not null;uniqueIndex" json:"user_id"`
	MaxPositionSize float64   `gorm:"not null" json:"max_position_size"`
	StopLoss        float64   `gorm:"not null" json:"stop_loss"`
	TakeProfit      float64   `gorm:"not null" json:"take_profit"`
	UpdatedAt       time.Time `json:"updated_at"`
}

func (Settings) TableName() string { return "risk_settings" }

func defaults(userID uint) Settings {
	return Settings{
		UserID:          userID,
		MaxPositionSize: DefaultMaxPositionSize,
		StopLoss:        DefaultStopLoss,
		TakeProfit:      DefaultTakeProfit,
	}
}
