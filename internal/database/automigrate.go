package database

import (
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"campus-events-api/internal/domain"
)

// modelInfo holds information about a domain model and its table name
type modelInfo struct {
	model     interface{}
	tableName string
}

func models() []modelInfo {
	return []modelInfo{
		{&domain.Event{}, "events"},
		{&domain.Participation{}, "participations"},
	}
}

// AutoMigrate creates or updates the tables for all domain models
func AutoMigrate(db *gorm.DB) error {
	for _, m := range models() {
		if err := db.AutoMigrate(m.model); err != nil {
			return fmt.Errorf("failed to migrate table %s: %w", m.tableName, err)
		}
	}
	return nil
}

// SafeAutoMigrate migrates one table at a time, logging whether each table
// was created or only had its schema updated
func SafeAutoMigrate(db *gorm.DB, logger *zap.Logger) error {
	migrator := db.Migrator()
	all := models()

	logger.Info("Starting auto-migration", zap.Int("total_models", len(all)))

	for _, m := range all {
		existed := migrator.HasTable(m.model)

		if err := db.AutoMigrate(m.model); err != nil {
			logger.Error("Failed to migrate table",
				zap.String("table", m.tableName),
				zap.Bool("table_existed", existed),
				zap.Error(err),
			)
			return fmt.Errorf("failed to migrate table %s: %w", m.tableName, err)
		}

		logger.Info("Migrated table",
			zap.String("table", m.tableName),
			zap.Bool("was_existing", existed),
		)
	}

	return nil
}

// SafeAutoMigrateWithRetry runs SafeAutoMigrate up to maxRetries times with linear backoff
func SafeAutoMigrateWithRetry(db *gorm.DB, logger *zap.Logger, maxRetries int) error {
	var err error

	for attempt := 1; attempt <= maxRetries; attempt++ {
		err = SafeAutoMigrate(db, logger)
		if err == nil {
			return nil
		}

		if attempt < maxRetries {
			backoff := time.Duration(attempt) * time.Second
			logger.Warn("Migration attempt failed, retrying",
				zap.Int("attempt", attempt),
				zap.Int("max_retries", maxRetries),
				zap.Duration("backoff", backoff),
				zap.Error(err),
			)
			time.Sleep(backoff)
		}
	}

	return fmt.Errorf("migration failed after %d attempts: %w", maxRetries, err)
}
