package database

import (
	"fmt"

	"gorm.io/gorm"

	"github.com/targc/tasksync/pkg/models"
)

// AutoMigrate creates the replicated tables plus the audit log. Both
// stores carry the same schema.
func AutoMigrate(db *gorm.DB) error {
	err := db.AutoMigrate(
		&models.Company{},
		&models.User{},
		&models.Task{},
		&models.SyncLog{},
	)

	if err != nil {
		return fmt.Errorf("failed to auto migrate: %w", err)
	}

	return nil
}
