package models

import (
	"sort"
	"time"
)

// CollectionType classifies dashboard collections by origin.
type CollectionType string

const (
	CollectionAIRecommendation CollectionType = "ai_recommendation"
	CollectionRecentlyAdded    CollectionType = "recently_added"
	CollectionContinueWatching CollectionType = "continue_watching"
	CollectionLibrary          CollectionType = "library"
	CollectionCustom           CollectionType = "custom"
)

// DashboardCollection is the presentation projection of a cached collection.
type DashboardCollection struct {
	ID        string         `json:"id"`
	Title     string         `json:"title"`
	Type      CollectionType `json:"type"`
	IsEnabled bool           `json:"is_enabled"`
	Order     int            `json:"order"`
	ItemCount int            `json:"item_count"`
}

// IsAI reports whether the collection was produced by curation.
func (c DashboardCollection) IsAI() bool {
	return c.Type == CollectionAIRecommendation
}

// Profile is a viewer profile. Curation owns LastCurationAt, FeaturedItemID
// and the AI entries of DashboardCollections.
type Profile struct {
	ID                   string                `gorm:"primaryKey;size:64" json:"id"`
	Name                 string                `gorm:"size:255" json:"name"`
	SelectedLibraries    []string              `gorm:"serializer:json;type:text" json:"selected_libraries"`
	DashboardCollections []DashboardCollection `gorm:"serializer:json;type:text" json:"dashboard_collections"`
	LastCurationAt       *time.Time            `json:"last_curation_at,omitempty"`
	FeaturedItemID       *string               `gorm:"size:128" json:"featured_item_id,omitempty"`
	CreatedAt            time.Time             `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt            time.Time             `gorm:"autoUpdateTime" json:"updated_at"`
}

// TableName specifies the table name for GORM.
func (Profile) TableName() string {
	return "profiles"
}

// EnabledCollections returns enabled dashboard collections sorted by order.
func (p *Profile) EnabledCollections() []DashboardCollection {
	out := make([]DashboardCollection, 0, len(p.DashboardCollections))
	for _, c := range p.DashboardCollections {
		if c.IsEnabled {
			out = append(out, c)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Order < out[j].Order })
	return out
}

// FindCollection returns the dashboard collection with the given id.
func (p *Profile) FindCollection(id string) (DashboardCollection, bool) {
	for _, c := range p.DashboardCollections {
		if c.ID == id {
			return c, true
		}
	}
	return DashboardCollection{}, false
}

// DefaultDashboardCollections are the non-AI collections seeded into new profiles.
func DefaultDashboardCollections() []DashboardCollection {
	return []DashboardCollection{
		{ID: "continue_watching", Title: "Continue Watching", Type: CollectionContinueWatching, IsEnabled: true, Order: 0},
		{ID: "recently_added", Title: "Recently Added", Type: CollectionRecentlyAdded, IsEnabled: true, Order: 1},
	}
}
