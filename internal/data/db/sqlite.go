package db

import (
	"fmt"
	"strings"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormLogger "gorm.io/gorm/logger"

	"github.com/yungbote/tenderbridge-backend/internal/platform/logger"
)

// OpenSQLite opens a file backed (or ":memory:") database for the CLI and
// for tests. A single connection keeps in-memory databases coherent.
func OpenSQLite(path string, logg *logger.Logger) (*gorm.DB, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		path = "tenderbridge.db"
	}
	dsn := path
	if !strings.HasPrefix(dsn, "file:") && dsn != ":memory:" {
		dsn = "file:" + dsn + "?_foreign_keys=off&_busy_timeout=5000"
	}
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		DisableForeignKeyConstraintWhenMigrating: true,
		Logger:                                   newGormLogger(gormLogger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite %q: %w", path, err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to access sqlite pool: %w", err)
	}
	sqlDB.SetMaxOpenConns(1)
	if logg != nil {
		logg.Debug("Opened sqlite database", "path", path)
	}
	return db, nil
}

// Open selects a driver by name ("postgres" or "sqlite").
func Open(driver, sqlitePath string, logg *logger.Logger) (*gorm.DB, error) {
	switch strings.ToLower(strings.TrimSpace(driver)) {
	case "", "postgres", "postgresql":
		svc, err := NewPostgresService(logg)
		if err != nil {
			return nil, err
		}
		return svc.DB(), nil
	case "sqlite", "sqlite3":
		return OpenSQLite(sqlitePath, logg)
	default:
		return nil, fmt.Errorf("unknown db driver %q", driver)
	}
}
