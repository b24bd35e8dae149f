// Package dashboard projects cached curation results for presentation. It
// reads cached state only and never triggers a run.
package dashboard

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/purestream711/PureStream-sub004/internal/cache"
	"github.com/purestream711/PureStream-sub004/internal/models"
)

// ErrCollectionNotFound is returned for ids not on the profile's dashboard.
var ErrCollectionNotFound = errors.New("collection not found")

// Store is the cached state the dashboard reads.
type Store interface {
	GetProfile(id string) (*models.Profile, error)
	GetMetadata(key string) (*models.CacheMetadata, error)
	GetEntriesForCollection(profileID, collectionID string) ([]models.CollectionEntry, error)
}

// Catalog resolves cached item ids to catalog items.
type Catalog interface {
	ItemsByID(ctx context.Context, profileID string, libraryIDs []string, ids []string) (map[string]models.CatalogItem, error)
}

// View is a profile's dashboard.
type View struct {
	ProfileID      string                       `json:"profile_id"`
	Collections    []models.DashboardCollection `json:"collections"`
	FeaturedItemID *string                      `json:"featured_item_id,omitempty"`
	Featured       *models.CatalogItem          `json:"featured,omitempty"`
	LastCuration   *time.Time                   `json:"last_curation,omitempty"`
	Stale          bool                         `json:"stale"`
}

// CollectionView is one collection resolved to catalog items, in cached order.
type CollectionView struct {
	Collection models.DashboardCollection `json:"collection"`
	Items      []models.CatalogItem       `json:"items"`
	// Missing counts cached entries whose item has left the catalog cache.
	Missing int `json:"missing"`
}

// Service builds dashboard views.
type Service struct {
	store   Store
	catalog Catalog
	policy  cache.Policy
}

// NewService creates a Service. catalog may be nil, in which case items are
// not resolved.
func NewService(store Store, catalog Catalog) *Service {
	return &Service{store: store, catalog: catalog}
}

// WithPolicy sets the TTL policy, mainly to inject a clock.
func (s *Service) WithPolicy(p cache.Policy) *Service {
	s.policy = p
	return s
}

// Dashboard returns the enabled collections ordered by position, with the
// featured item and cache staleness.
func (s *Service) Dashboard(ctx context.Context, profileID string) (*View, error) {
	profile, err := s.store.GetProfile(profileID)
	if err != nil {
		return nil, err
	}
	meta, err := s.store.GetMetadata(cache.DashboardKey(profileID))
	if err != nil {
		return nil, fmt.Errorf("read dashboard metadata: %w", err)
	}

	view := &View{
		ProfileID:      profileID,
		Collections:    profile.EnabledCollections(),
		FeaturedItemID: profile.FeaturedItemID,
		LastCuration:   profile.LastCurationAt,
		Stale:          s.policy.MetadataNeedsRefresh(meta, false),
	}

	if s.catalog != nil && profile.FeaturedItemID != nil {
		id := *profile.FeaturedItemID
		items, err := s.catalog.ItemsByID(ctx, profileID, profile.SelectedLibraries, []string{id})
		if err != nil {
			return nil, fmt.Errorf("resolve featured item: %w", err)
		}
		if item, ok := items[id]; ok {
			view.Featured = &item
		}
	}
	return view, nil
}

// Collection resolves one collection's cached entries. Entries whose item is
// no longer cached are skipped and counted in Missing.
func (s *Service) Collection(ctx context.Context, profileID, collectionID string) (*CollectionView, error) {
	profile, err := s.store.GetProfile(profileID)
	if err != nil {
		return nil, err
	}
	col, ok := profile.FindCollection(collectionID)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrCollectionNotFound, collectionID)
	}

	entries, err := s.store.GetEntriesForCollection(profileID, collectionID)
	if err != nil {
		return nil, fmt.Errorf("read entries: %w", err)
	}

	view := &CollectionView{Collection: col, Items: []models.CatalogItem{}}
	if len(entries) == 0 || s.catalog == nil {
		return view, nil
	}

	ids := make([]string, len(entries))
	for i, e := range entries {
		ids[i] = e.ItemID
	}
	items, err := s.catalog.ItemsByID(ctx, profileID, profile.SelectedLibraries, ids)
	if err != nil {
		return nil, fmt.Errorf("resolve items: %w", err)
	}
	for _, id := range ids {
		item, ok := items[id]
		if !ok {
			view.Missing++
			continue
		}
		view.Items = append(view.Items, item)
	}
	return view, nil
}
