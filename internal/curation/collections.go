package curation

import (
	"sort"

	"github.com/purestream711/PureStream-sub004/internal/models"
)

// aiCollections builds one dashboard collection per category with matches.
func aiCollections(batches []categoryBatch) []models.DashboardCollection {
	var out []models.DashboardCollection
	for _, b := range batches {
		if len(b.ItemIDs) == 0 {
			continue
		}
		out = append(out, models.DashboardCollection{
			ID:        b.Category.CollectionID(),
			Title:     b.Category.Title,
			Type:      models.CollectionAIRecommendation,
			IsEnabled: true,
			ItemCount: len(b.ItemIDs),
		})
	}
	return out
}

// mergeCollections drops the previous AI collections, puts the new ones first
// and renumbers every order by position.
func mergeCollections(existing, ai []models.DashboardCollection) []models.DashboardCollection {
	kept := make([]models.DashboardCollection, 0, len(existing))
	for _, c := range existing {
		if !c.IsAI() {
			kept = append(kept, c)
		}
	}
	sort.SliceStable(kept, func(i, j int) bool { return kept[i].Order < kept[j].Order })

	out := make([]models.DashboardCollection, 0, len(ai)+len(kept))
	out = append(out, ai...)
	out = append(out, kept...)
	for i := range out {
		out[i].Order = i
	}
	return out
}
