package database

import (
	"fmt"

	"github.com/go-gormigrate/gormigrate/v2"
	"github.com/okabelab/graymeter/internal/logging"
	"gorm.io/gorm"
)

// RunMigrations runs any pending database migrations using gormigrate
func RunMigrations() error {
	logging.InfoWithComponent(logging.ComponentDatabase, "running database migrations")

	m := gormigrate.New(DB, gormigrate.DefaultOptions, []*gormigrate.Migration{
		{
			ID: "202608200000_add_diff_count_to_result_rows",
			Migrate: func(tx *gorm.DB) error {
				if tx.Migrator().HasColumn(&ResultRow{}, "diff_count") {
					return nil
				}
				if err := tx.Exec("ALTER TABLE result_rows ADD COLUMN diff_count INTEGER NOT NULL DEFAULT 0").Error; err != nil {
					return fmt.Errorf("failed to add diff_count column: %w", err)
				}
				return nil
			},
			Rollback: func(tx *gorm.DB) error {
				// SQLite doesn't support dropping columns easily, so we'll leave it
				return nil
			},
		},
		{
			ID: "202608200001_index_result_rows_created_at",
			Migrate: func(tx *gorm.DB) error {
				if tx.Migrator().HasIndex(&ResultRow{}, "CreatedAt") {
					return nil
				}
				return tx.Migrator().CreateIndex(&ResultRow{}, "CreatedAt")
			},
			Rollback: func(tx *gorm.DB) error {
				return tx.Migrator().DropIndex(&ResultRow{}, "CreatedAt")
			},
		},
	})

	// Set initial schema if this is a fresh database
	m.InitSchema(func(tx *gorm.DB) error {
		for _, model := range GetAllModels() {
			if err := tx.AutoMigrate(model); err != nil {
				return fmt.Errorf("failed to migrate %T: %w", model, err)
			}
		}
		return nil
	})

	if err := m.Migrate(); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	logging.InfoWithComponent(logging.ComponentDatabase, "migrations completed")
	return nil
}
