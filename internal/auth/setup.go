package auth

import (
	"fmt"

	"gorm.io/gorm"
)

func Init(db *gorm.DB) error {
	if err := db.AutoMigrate(&User{}, &OAuthSession{}); err != nil {
		return fmt.Errorf("auto-migrate auth tables: %w", err)
	}
	return nil
}
