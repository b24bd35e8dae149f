package db

import (
	"context"
	"fmt"
	"time"

	"github.com/purestream711/PureStream-sub004/internal/models"
)

// CurationCommit is everything a successful curation run writes.
type CurationCommit struct {
	ProfileID   string
	Generations []models.CollectionGeneration
	Profile     *models.Profile
	Metadata    *models.CacheMetadata
	CommittedAt time.Time
}

// CommitCuration writes the new collection generation, the updated profile and
// the dashboard cache metadata in a single transaction. A cancelled context
// rolls the whole commit back.
func (db *DB) CommitCuration(ctx context.Context, c CurationCommit) error {
	if c.Profile == nil || c.Profile.ID != c.ProfileID {
		return fmt.Errorf("commit curation: profile mismatch for %q", c.ProfileID)
	}
	at := c.CommittedAt
	if at.IsZero() {
		at = time.Now().UTC()
	}

	scoped := &DB{DB: db.WithContext(ctx), path: db.path}
	return scoped.Transaction(func(tx *DB) error {
		if err := tx.replaceGeneration(c.ProfileID, c.Generations, at); err != nil {
			return err
		}
		if err := tx.UpdateProfile(c.Profile); err != nil {
			return fmt.Errorf("update profile: %w", err)
		}
		if c.Metadata != nil {
			if err := tx.UpsertMetadata(c.Metadata); err != nil {
				return fmt.Errorf("upsert metadata: %w", err)
			}
		}
		return nil
	})
}
