package models

import "time"

// Setting is a key/value row for process-wide state such as the telemetry
// tracking id and schema version.
type Setting struct {
	Key       string    `gorm:"primaryKey;size:100" json:"key"`
	Value     string    `gorm:"type:text" json:"value"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

// TableName specifies the table name for GORM.
func (Setting) TableName() string {
	return "settings"
}

// Common setting keys.
const (
	SettingSchemaVersion = "schema_version"
	SettingTrackingID    = "tracking_id"
)
