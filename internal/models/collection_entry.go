package models

import (
	"fmt"
	"time"
)

// CollectionEntry is one cached item of a curated collection.
// Order is dense and 0-based within a (profile, collection) generation.
type CollectionEntry struct {
	ID           string    `gorm:"primaryKey;size:255" json:"id"`
	ProfileID    string    `gorm:"size:64;not null;uniqueIndex:idx_entry_unique,priority:1;index:idx_entry_lookup,priority:1" json:"profile_id"`
	CollectionID string    `gorm:"size:128;not null;uniqueIndex:idx_entry_unique,priority:2;index:idx_entry_lookup,priority:2" json:"collection_id"`
	ItemID       string    `gorm:"size:128;not null;uniqueIndex:idx_entry_unique,priority:3" json:"item_id"`
	Order        int       `gorm:"column:sort_order;not null;index:idx_entry_lookup,priority:3" json:"order"`
	CachedAt     time.Time `gorm:"not null" json:"cached_at"`
}

// TableName specifies the table name for GORM.
func (CollectionEntry) TableName() string {
	return "collection_entries"
}

// CollectionEntryID builds the composite entry id.
func CollectionEntryID(profileID, collectionID, itemID string) string {
	return fmt.Sprintf("%s:%s:%s", profileID, collectionID, itemID)
}

// CollectionGeneration is the ordered item list of one collection produced by
// a single curation run.
type CollectionGeneration struct {
	CollectionID string
	ItemIDs      []string
}

// Entries expands the generation into rows with dense order values.
// Repeated item ids keep their first position only.
func (g CollectionGeneration) Entries(profileID string, cachedAt time.Time) []CollectionEntry {
	entries := make([]CollectionEntry, 0, len(g.ItemIDs))
	seen := make(map[string]struct{}, len(g.ItemIDs))
	for _, itemID := range g.ItemIDs {
		if _, dup := seen[itemID]; dup {
			continue
		}
		seen[itemID] = struct{}{}
		entries = append(entries, CollectionEntry{
			ID:           CollectionEntryID(profileID, g.CollectionID, itemID),
			ProfileID:    profileID,
			CollectionID: g.CollectionID,
			ItemID:       itemID,
			Order:        len(entries),
			CachedAt:     cachedAt,
		})
	}
	return entries
}
