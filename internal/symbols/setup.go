package symbols

import (
	"fmt"

	"gorm.io/gorm"
)

func Init(db *gorm.DB) error {
	if err := db.AutoMigrate(&TrackedSymbol{}); err != nil {
		return fmt.Errorf("auto-migrate symbol tables: %w", err)
	}
	return nil
}
