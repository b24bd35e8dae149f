package models

import "time"

// CacheType identifies a cached entity class. Each class has its own TTL.
type CacheType string

const (
	CacheTypeLibraries CacheType = "libraries"
	CacheTypeMovies    CacheType = "movies"
	CacheTypeShows     CacheType = "shows"
	CacheTypeDashboard CacheType = "dashboard"
)

// CacheMetadata records when a cached scope was last refreshed.
// It is the single source of truth for TTL decisions.
type CacheMetadata struct {
	Key           string    `gorm:"primaryKey;size:255" json:"key"`
	CacheType     CacheType `gorm:"size:32;not null;index" json:"cache_type"`
	ProfileID     string    `gorm:"size:64;not null;index" json:"profile_id"`
	LibraryID     *string   `gorm:"size:128" json:"library_id,omitempty"`
	LastRefreshed time.Time `gorm:"not null" json:"last_refreshed"`
	ItemCount     int       `gorm:"default:0" json:"item_count"`
	IsComplete    bool      `gorm:"default:false" json:"is_complete"`
}

// TableName specifies the table name for GORM.
func (CacheMetadata) TableName() string {
	return "cache_metadata"
}
