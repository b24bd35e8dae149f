package db

import (
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/purestream711/PureStream-sub004/internal/models"
)

// GetSetting retrieves a setting value. Missing keys return "".
func (db *DB) GetSetting(key string) (string, error) {
	var s models.Setting
	err := db.First(&s, "key = ?", key).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", nil
		}
		return "", err
	}
	return s.Value, nil
}

// SetSetting upserts a setting value.
func (db *DB) SetSetting(key, value string) error {
	s := models.Setting{Key: key, Value: value}
	return db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "key"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
	}).Create(&s).Error
}

// GetOrCreateTrackingID returns the persistent telemetry tracking ID, creating
// one if it doesn't exist. On any error it falls back to a per-session ID.
func (db *DB) GetOrCreateTrackingID() string {
	id, err := db.GetSetting(models.SettingTrackingID)
	if err != nil {
		return uuid.New().String()
	}
	if id != "" {
		return id
	}

	id = uuid.New().String()
	// The generated ID is still usable for this session if saving fails.
	_ = db.SetSetting(models.SettingTrackingID, id)
	return id
}
