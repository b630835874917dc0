package symbols

import "time"

// TrackedSymbol is one ticker on one of a user's symbol lists.
type TrackedSymbol struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uint      `gorm:"not null;uniqueIndex:idx_tracked_symbol" json:"-"`
	List      string    `gorm:"not null;size:32;uniqueIndex:idx_tracked_symbol" json:"-"`
	Symbol    string    `gorm:"not null;size:16;uniqueIndex:idx_tracked_symbol" json:"symbol"`
	CreatedAt time.Time `json:"created_at"`
}

// Kind describes one symbol list: its storage key, the name used in
// messages, and whether the whole list may be cleared at once.
type Kind struct {
	List       string
	Label      string
	AllowClear bool
}

var (
	Watchlist     = Kind{List: "watchlist", Label: "watchlist", AllowClear: true}
	PatternTrends = Kind{List: "pattern_trends", Label: "pattern trends"}
)
