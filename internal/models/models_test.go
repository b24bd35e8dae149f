package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCollectionGeneration_Entries(t *testing.T) {
	now := time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)
	gen := CollectionGeneration{CollectionID: "ai:trending", ItemIDs: []string{"b", "a", "c"}}

	entries := gen.Entries("p1", now)
	require.Len(t, entries, 3)

	for i, e := range entries {
		assert.Equal(t, i, e.Order)
		assert.Equal(t, "p1", e.ProfileID)
		assert.Equal(t, "ai:trending", e.CollectionID)
		assert.Equal(t, now, e.CachedAt)
	}
	assert.Equal(t, "p1:ai:trending:b", entries[0].ID)
	assert.Equal(t, "c", entries[2].ItemID)
}

func TestCollectionGeneration_EntriesSkipsDuplicates(t *testing.T) {
	gen := CollectionGeneration{CollectionID: "ai:action", ItemIDs: []string{"x", "y", "x", "z"}}

	entries := gen.Entries("p1", time.Now())
	require.Len(t, entries, 3)
	assert.Equal(t, []string{"x", "y", "z"}, []string{entries[0].ItemID, entries[1].ItemID, entries[2].ItemID})
	assert.Equal(t, 2, entries[2].Order)
}

func TestProfile_EnabledCollections(t *testing.T) {
	p := &Profile{DashboardCollections: []DashboardCollection{
		{ID: "c", Order: 2, IsEnabled: true},
		{ID: "a", Order: 0, IsEnabled: true},
		{ID: "hidden", Order: 1, IsEnabled: false},
	}}

	got := p.EnabledCollections()
	require.Len(t, got, 2)
	assert.Equal(t, "a", got[0].ID)
	assert.Equal(t, "c", got[1].ID)
}

func TestProfile_FindCollection(t *testing.T) {
	p := &Profile{DashboardCollections: DefaultDashboardCollections()}

	c, ok := p.FindCollection("recently_added")
	assert.True(t, ok)
	assert.Equal(t, CollectionRecentlyAdded, c.Type)

	_, ok = p.FindCollection("missing")
	assert.False(t, ok)
}

func TestCategory_CollectionID(t *testing.T) {
	c := Category{ID: "top_rated"}
	assert.Equal(t, "ai:top_rated", c.CollectionID())
}

func TestDashboardCollection_IsAI(t *testing.T) {
	assert.True(t, DashboardCollection{Type: CollectionAIRecommendation}.IsAI())
	assert.False(t, DashboardCollection{Type: CollectionRecentlyAdded}.IsAI())
}

func TestCatalogItem_SortKey(t *testing.T) {
	assert.Equal(t, "Batman, The", CatalogItem{Title: "The Batman", SortTitle: "Batman, The"}.SortKey())
	assert.Equal(t, "Dune", CatalogItem{Title: "Dune"}.SortKey())
	assert.False(t, CatalogItem{}.HasYear())
	assert.True(t, CatalogItem{Year: IntPtr(2021)}.HasYear())
}
