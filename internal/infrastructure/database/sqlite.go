package database

import (
	"fmt"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/teich/phone-gate-bridge/internal/infrastructure/repositories"
)

// Open opens the durable event store. WAL mode plus a busy timeout lets
// concurrent webhook requests append without tripping over SQLite's single
// writer.
func Open(path string) (*gorm.DB, error) {
	dsn := fmt.Sprintf("file:%s?_journal_mode=WAL&_busy_timeout=5000", path)
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open event store at %s: %w", path, err)
	}
	return db, nil
}

// AutoMigrate creates or updates the event store schema
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(&repositories.DBCallEvent{})
}
