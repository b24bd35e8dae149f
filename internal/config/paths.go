package config

import (
	"path/filepath"

	"github.com/adrg/xdg"
)

// Paths contains commonly used file paths.
type Paths struct {
	Database string // SQLite database: profiles, collection entries, cache metadata
	Catalog  string // bbolt catalog cache
	Config   string // Config file
	Logs     string // Log directory
	Locks    string // Per-profile curation lock files
}

// GetPaths returns all commonly used paths based on config.
func GetPaths(cfg *Config) Paths {
	return Paths{
		Database: filepath.Join(cfg.BaseDir, "purestream.db"),
		Catalog:  filepath.Join(cfg.BaseDir, "catalog", "catalog.bolt"),
		Config:   filepath.Join(cfg.BaseDir, "config.yaml"),
		Logs:     filepath.Join(cfg.BaseDir, "logs"),
		Locks:    filepath.Join(cfg.BaseDir, "locks"),
	}
}

// DefaultBaseDir returns the default data directory ($XDG_DATA_HOME/purestream).
func DefaultBaseDir() string {
	return filepath.Join(xdg.DataHome, "purestream")
}

// DefaultConfigDir returns $XDG_CONFIG_HOME/purestream.
func DefaultConfigDir() string {
	return filepath.Join(xdg.ConfigHome, "purestream")
}
