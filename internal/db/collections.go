package db

import (
	"fmt"
	"time"

	"github.com/purestream711/PureStream-sub004/internal/models"
)

// insertBatchSize bounds the rows per INSERT statement.
const insertBatchSize = 200

// ReplaceCollectionEntries atomically swaps one collection's entries for the
// given ordered item ids.
func (db *DB) ReplaceCollectionEntries(profileID, collectionID string, orderedItemIDs []string) error {
	gen := models.CollectionGeneration{CollectionID: collectionID, ItemIDs: orderedItemIDs}
	now := time.Now().UTC()

	return db.Transaction(func(tx *DB) error {
		if err := tx.Where("profile_id = ? AND collection_id = ?", profileID, collectionID).
			Delete(&models.CollectionEntry{}).Error; err != nil {
			return fmt.Errorf("delete entries: %w", err)
		}
		return tx.insertEntries(gen.Entries(profileID, now))
	})
}

// ReplaceGeneration atomically replaces every cached entry of a profile with
// a new generation. Readers observe either the old or the new generation.
func (db *DB) ReplaceGeneration(profileID string, generations []models.CollectionGeneration) error {
	return db.Transaction(func(tx *DB) error {
		return tx.replaceGeneration(profileID, generations, time.Now().UTC())
	})
}

// replaceGeneration must run inside a transaction.
func (db *DB) replaceGeneration(profileID string, generations []models.CollectionGeneration, cachedAt time.Time) error {
	if err := db.Where("profile_id = ?", profileID).Delete(&models.CollectionEntry{}).Error; err != nil {
		return fmt.Errorf("delete generation: %w", err)
	}

	var entries []models.CollectionEntry
	for _, gen := range generations {
		entries = append(entries, gen.Entries(profileID, cachedAt)...)
	}
	return db.insertEntries(entries)
}

func (db *DB) insertEntries(entries []models.CollectionEntry) error {
	if len(entries) == 0 {
		return nil
	}
	if err := db.CreateInBatches(&entries, insertBatchSize).Error; err != nil {
		return fmt.Errorf("insert entries: %w", err)
	}
	return nil
}

// GetEntriesForCollection returns a collection's entries in order.
func (db *DB) GetEntriesForCollection(profileID, collectionID string) ([]models.CollectionEntry, error) {
	var entries []models.CollectionEntry
	err := db.Where("profile_id = ? AND collection_id = ?", profileID, collectionID).
		Order("sort_order ASC").
		Find(&entries).Error
	return entries, err
}

// CountEntries returns the number of cached entries per collection id.
func (db *DB) CountEntries(profileID string) (map[string]int, error) {
	var rows []struct {
		CollectionID string
		Total        int
	}
	err := db.Model(&models.CollectionEntry{}).
		Select("collection_id, COUNT(*) AS total").
		Where("profile_id = ?", profileID).
		Group("collection_id").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	counts := make(map[string]int, len(rows))
	for _, r := range rows {
		counts[r.CollectionID] = r.Total
	}
	return counts, nil
}

// ClearForProfile removes every cached entry and cache metadata row of a profile.
func (db *DB) ClearForProfile(profileID string) error {
	return db.Transaction(func(tx *DB) error {
		if err := tx.Where("profile_id = ?", profileID).Delete(&models.CollectionEntry{}).Error; err != nil {
			return fmt.Errorf("delete entries: %w", err)
		}
		if err := tx.Where("profile_id = ?", profileID).Delete(&models.CacheMetadata{}).Error; err != nil {
			return fmt.Errorf("delete metadata: %w", err)
		}
		return nil
	})
}
