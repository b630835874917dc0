package risk

import (
	"fmt"

	"gorm.io/gorm"
)

func Init(db *gorm.DB) error {
	if err := db.AutoMigrate(&Settings{}); err != nil {
		return fmt.Errorf("auto-migrate risk tables: %w", err)
	}
	return nil
}
