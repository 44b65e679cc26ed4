package database

import (
	"fmt"

	"github.com/atikwanduka/watrack/internal/clicks"
	"github.com/atikwanduka/watrack/internal/messages"
	sqlite "github.com/glebarez/sqlite"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Open establishes a SQLite connection and ensures both tables exist.
// Schema initialization is idempotent: running it against a store that
// already holds data is safe and changes nothing.
func Open(path string, logger *zap.Logger) (*gorm.DB, error) {
	if path == "" {
		return nil, fmt.Errorf("database path is required")
	}

	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{})
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(1)

	if err := db.AutoMigrate(&clicks.ClickEvent{}, &messages.InboundMessage{}); err != nil {
		return nil, err
	}

	if logger != nil {
		logger.Info("database initialized", zap.String("path", path))
	}

	return db, nil
}
