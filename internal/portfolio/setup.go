package portfolio

import (
	"fmt"

	"gorm.io/gorm"
)

func Init(db *gorm.DB) error {
	if err := db.AutoMigrate(&Item{}); err != nil {
		return fmt.Errorf("auto-migrate portfolio tables: %w", err)
	}
	return nil
}
