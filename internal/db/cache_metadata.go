package db

import (
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/purestream711/PureStream-sub004/internal/models"
)

// GetMetadata returns the cache metadata stored under key, or nil when the
// scope has never been cached.
func (db *DB) GetMetadata(key string) (*models.CacheMetadata, error) {
	var meta models.CacheMetadata
	err := db.First(&meta, "key = ?", key).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &meta, nil
}

// UpsertMetadata inserts or replaces a cache metadata record.
func (db *DB) UpsertMetadata(meta *models.CacheMetadata) error {
	return db.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "key"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"cache_type", "profile_id", "library_id", "last_refreshed", "item_count", "is_complete",
		}),
	}).Create(meta).Error
}

// ListMetadata returns cache metadata ordered by key. An empty profileID
// lists every profile.
func (db *DB) ListMetadata(profileID string) ([]models.CacheMetadata, error) {
	q := db.Order("key ASC")
	if profileID != "" {
		q = q.Where("profile_id = ?", profileID)
	}

	var metas []models.CacheMetadata
	err := q.Find(&metas).Error
	return metas, err
}

// DeleteMetadata removes a cache metadata record.
func (db *DB) DeleteMetadata(key string) error {
	return db.Delete(&models.CacheMetadata{}, "key = ?", key).Error
}
