package database

import (
	"fmt"

	"github.com/pageza/mealplanner/backend/internal/models"
	"gorm.io/gorm"
)

// Migrate brings the schema up to date. On PostgreSQL the pgvector extension
// is created first so recipe embeddings get a native vector column.
func Migrate(db *gorm.DB) error {
	if db.Dialector.Name() == "postgres" {
		if err := db.Exec("CREATE EXTENSION IF NOT EXISTS vector").Error; err != nil {
			return fmt.Errorf("failed to enable pgvector: %w", err)
		}
	}

	if err := db.AutoMigrate(models.All()...); err != nil {
		return fmt.Errorf("failed to migrate schema: %w", err)
	}
	return nil
}
