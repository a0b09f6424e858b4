package persistence

import (
	"fmt"

	"github.com/confluxhq/conflux/internal/database"
)

// AutoMigrate runs gorm auto migration for the tables this core owns.
func AutoMigrate(db database.Database) error {
	if err := db.GORM().AutoMigrate(
		&VectorDocumentModel{},
		&ProviderSettingModel{},
	); err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}
	return nil
}
