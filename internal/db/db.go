// Package db provides the GORM-based persistence layer for PureStream:
// curated collection entries, cache metadata and viewer profiles.
// It uses the pure-Go SQLite driver.
package db

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/purestream711/PureStream-sub004/internal/models"
)

// SchemaVersion is bumped whenever a migration changes stored data semantics.
const SchemaVersion = "1"

// ErrNotFound is returned when a requested record does not exist.
var ErrNotFound = errors.New("record not found")

// DB wraps the GORM database connection with PureStream-specific operations.
type DB struct {
	*gorm.DB
	path string
}

// Config holds database configuration options.
type Config struct {
	Path        string
	Debug       bool
	MaxIdleConn int
	MaxOpenConn int
}

// DefaultConfig returns sensible defaults.
func DefaultConfig(path string) Config {
	return Config{
		Path:        path,
		Debug:       false,
		MaxIdleConn: 1,
		MaxOpenConn: 1,
	}
}

// New creates a new database connection and runs migrations.
func New(cfg Config) (*DB, error) {
	dir := filepath.Dir(cfg.Path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	logLevel := logger.Silent
	if cfg.Debug {
		logLevel = logger.Info
	}

	// DELETE journal mode: WAL has visibility issues with the pure-Go driver.
	dsn := fmt.Sprintf("%s?_pragma=journal_mode(DELETE)&_pragma=busy_timeout(5000)&_pragma=foreign_keys(ON)", cfg.Path)

	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:                 logger.Default.LogMode(logLevel),
		SkipDefaultTransaction: true,
	})
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("get sql.DB: %w", err)
	}
	sqlDB.SetMaxIdleConns(cfg.MaxIdleConn)
	sqlDB.SetMaxOpenConns(cfg.MaxOpenConn)
	sqlDB.SetConnMaxLifetime(time.Hour)

	wrapped := &DB{DB: db, path: cfg.Path}

	if err := wrapped.migrate(); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	if err := wrapped.seedSettings(); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("seed settings: %w", err)
	}

	return wrapped, nil
}

// migrate runs GORM auto-migrations for all models.
func (db *DB) migrate() error {
	return db.AutoMigrate(
		&models.Profile{},
		&models.CollectionEntry{},
		&models.CacheMetadata{},
		&models.Setting{},
	)
}

// seedSettings inserts default settings if not present.
func (db *DB) seedSettings() error {
	defaults := []models.Setting{
		{Key: models.SettingSchemaVersion, Value: SchemaVersion},
	}

	for _, s := range defaults {
		if err := db.Where("key = ?", s.Key).FirstOrCreate(&s).Error; err != nil {
			return err
		}
	}
	return nil
}

// Path returns the database file path.
func (db *DB) Path() string {
	return db.path
}

// Close closes the database connection.
func (db *DB) Close() error {
	sqlDB, err := db.DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// Transaction executes fc within a database transaction.
// The callback receives a *DB bound to the transaction; returning an error
// rolls back, returning nil commits.
func (d *DB) Transaction(fc func(tx *DB) error) error {
	return d.DB.Transaction(func(tx *gorm.DB) error {
		return fc(&DB{DB: tx, path: d.path})
	})
}

// Stats summarizes the stored cache state.
type Stats struct {
	Profiles       int64
	Entries        int64
	MetadataRows   int64
	DatabaseBytes  int64
	CollectedAtUTC time.Time
}

// GetStats returns aggregate statistics about the database.
func (db *DB) GetStats() (*Stats, error) {
	var stats Stats

	if err := db.Model(&models.Profile{}).Count(&stats.Profiles).Error; err != nil {
		return nil, fmt.Errorf("count profiles: %w", err)
	}
	if err := db.Model(&models.CollectionEntry{}).Count(&stats.Entries).Error; err != nil {
		return nil, fmt.Errorf("count entries: %w", err)
	}
	if err := db.Model(&models.CacheMetadata{}).Count(&stats.MetadataRows).Error; err != nil {
		return nil, fmt.Errorf("count metadata: %w", err)
	}

	if info, err := os.Stat(db.path); err == nil {
		stats.DatabaseBytes = info.Size()
	}
	stats.CollectedAtUTC = time.Now().UTC()

	return &stats, nil
}
