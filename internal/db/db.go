package db

import (
	"fmt"

	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"research-summary/internal/config"
	"research-summary/internal/history"
)

var DB *gorm.DB

// Open connects to the configured database without migrating it.
func Open(driver, dsn string) (*gorm.DB, error) {
	var dialector gorm.Dialector
	switch driver {
	case "postgres":
		dialector = postgres.Open(dsn)
	case "sqlite":
		dialector = sqlite.Open(dsn)
	default:
		return nil, fmt.Errorf("unsupported database driver %q", driver)
	}
	return gorm.Open(dialector, &gorm.Config{Logger: logger.Default.LogMode(logger.Warn)})
}

// Init connects and migrates the history tables. It is a no-op when no
// driver is configured; DB then stays nil and history is disabled.
func Init(cfg *config.Config, log *zap.Logger) error {
	if cfg.Database.Driver == "" {
		log.Info("database not configured, history disabled")
		return nil
	}
	db, err := Open(cfg.Database.Driver, cfg.Database.DSN)
	if err != nil {
		return err
	}

	if err := db.AutoMigrate(&history.Record{}); err != nil {
		return err
	}

	DB = db
	log.Info("database connected and migrated", zap.String("driver", cfg.Database.Driver))
	return nil
}
