package chat

import (
	"fmt"

	"gorm.io/gorm"
)

func Init(db *gorm.DB) error {
	if err := db.AutoMigrate(&ChatMessage{}); err != nil {
		return fmt.Errorf("auto-migrate chat tables: %w", err)
	}
	return nil
}
