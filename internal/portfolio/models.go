package portfolio

import "time"

type Item struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	OwnerID   uint      `gorm:"not null;index" json:"owner_id"`
	Ticker    string    `gorm:"not null;size:16" json:"ticker"`
	Quantity  int       `gorm:"not null" json:"quantity"`
	CreatedAt time.Time `json:"created_at"`
}

func (Item) TableName() string { return "portfolio_items" }
