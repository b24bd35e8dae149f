package db

import (
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/purestream711/PureStream-sub004/internal/models"
)

// ErrProfileNotFound is returned when a profile id is unknown.
var ErrProfileNotFound = fmt.Errorf("profile %w", ErrNotFound)

// GetProfile returns the profile with the given id.
func (db *DB) GetProfile(id string) (*models.Profile, error) {
	var p models.Profile
	if err := db.First(&p, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: %s", ErrProfileNotFound, id)
		}
		return nil, err
	}
	return &p, nil
}

// CreateProfile inserts a new profile. Profiles created without dashboard
// collections get the default non-AI set.
func (db *DB) CreateProfile(p *models.Profile) error {
	if p.ID == "" {
		return errors.New("profile id is required")
	}
	if p.DashboardCollections == nil {
		p.DashboardCollections = models.DefaultDashboardCollections()
	}
	if p.SelectedLibraries == nil {
		p.SelectedLibraries = []string{}
	}
	return db.Create(p).Error
}

// UpdateProfile persists every field of an existing profile as one record.
func (db *DB) UpdateProfile(p *models.Profile) error {
	res := db.Model(p).Select("*").Omit("created_at").Updates(p)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("%w: %s", ErrProfileNotFound, p.ID)
	}
	return nil
}

// ListProfiles returns all profiles ordered by id.
func (db *DB) ListProfiles() ([]models.Profile, error) {
	var profiles []models.Profile
	err := db.Order("id ASC").Find(&profiles).Error
	return profiles, err
}

// DeleteProfile removes a profile together with its cached entries and metadata.
func (db *DB) DeleteProfile(id string) error {
	return db.Transaction(func(tx *DB) error {
		if err := tx.Where("profile_id = ?", id).Delete(&models.CollectionEntry{}).Error; err != nil {
			return err
		}
		if err := tx.Where("profile_id = ?", id).Delete(&models.CacheMetadata{}).Error; err != nil {
			return err
		}
		res := tx.Delete(&models.Profile{}, "id = ?", id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return fmt.Errorf("%w: %s", ErrProfileNotFound, id)
		}
		return nil
	})
}
