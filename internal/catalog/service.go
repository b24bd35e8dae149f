package catalog

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"github.com/purestream711/PureStream-sub004/internal/cache"
	"github.com/purestream711/PureStream-sub004/internal/models"
)

const defaultChunkSize = 50

// ErrNoRemote is returned by refresh operations when no remote catalog is wired.
var ErrNoRemote = errors.New("no remote catalog configured")

// RemoteCatalog is the media server the catalog cache mirrors.
type RemoteCatalog interface {
	GetLibraries(ctx context.Context) ([]models.Library, error)
	// GetLibraryItems returns one page of items and the library's total.
	GetLibraryItems(ctx context.Context, libraryID string, offset, limit int) ([]models.CatalogItem, int, error)
}

// MetadataStore persists cache metadata. *db.DB satisfies it.
type MetadataStore interface {
	GetMetadata(key string) (*models.CacheMetadata, error)
	UpsertMetadata(meta *models.CacheMetadata) error
}

// RefreshResult reports what a refresh did.
type RefreshResult struct {
	LibraryID string
	FromCache bool
	Count     int
	Evicted   int
}

// Service coordinates the catalog store, its metadata and the remote catalog.
// Reads and writes are locked per (profile, library).
type Service struct {
	store  *Store
	mapper *Mapper
	meta   MetadataStore
	remote RemoteCatalog
	policy cache.Policy
	locks  *keyedLocks
	logger *log.Logger
}

// NewService creates a catalog service. remote may be nil for a read-only cache.
func NewService(store *Store, mapper *Mapper, meta MetadataStore, remote RemoteCatalog, logger *log.Logger) *Service {
	if logger == nil {
		logger = log.Default()
	}
	if mapper == nil {
		mapper = NewMapper(store.codec, logger)
	}
	return &Service{
		store:  store,
		mapper: mapper,
		meta:   meta,
		remote: remote,
		policy: cache.NewPolicy(),
		locks:  newKeyedLocks(),
		logger: logger,
	}
}

// WithPolicy swaps the freshness policy, mostly for tests.
func (s *Service) WithPolicy(p cache.Policy) *Service {
	s.policy = p
	return s
}

// GetCatalogItems returns the union of cached items across libraryIDs.
// Libraries are visited in the given order; within a library items are
// ordered by sort title then id, so the scan order is stable.
func (s *Service) GetCatalogItems(ctx context.Context, profileID string, libraryIDs []string) ([]models.CatalogItem, error) {
	var items []models.CatalogItem
	seen := make(map[string]struct{}, len(libraryIDs))

	for _, libID := range libraryIDs {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if _, dup := seen[libID]; dup {
			continue
		}
		seen[libID] = struct{}{}

		libItems, err := s.libraryItems(profileID, libID)
		if err != nil {
			s.logger.Error("read catalog library", "profile", profileID, "library", libID, "err", err)
			return nil, fmt.Errorf("read library %s: %w", libID, err)
		}
		items = append(items, libItems...)
	}

	s.logger.Debug("catalog read", "profile", profileID, "libraries", len(seen), "items", len(items))
	return items, nil
}

func (s *Service) libraryItems(profileID, libraryID string) ([]models.CatalogItem, error) {
	l := s.locks.get(profileID, libraryID)
	l.RLock()
	records, err := s.store.Records(profileID, libraryID)
	l.RUnlock()
	if err != nil {
		return nil, err
	}

	items := make([]models.CatalogItem, 0, len(records))
	for _, rec := range records {
		items = append(items, s.mapper.ToDomain(rec))
	}
	sort.SliceStable(items, func(i, j int) bool {
		ki, kj := strings.ToLower(items[i].SortKey()), strings.ToLower(items[j].SortKey())
		if ki != kj {
			return ki < kj
		}
		return items[i].ID < items[j].ID
	})
	return items, nil
}

// ItemsByID resolves item ids within a profile's libraries. Unknown ids are
// absent from the result.
func (s *Service) ItemsByID(ctx context.Context, profileID string, libraryIDs []string, ids []string) (map[string]models.CatalogItem, error) {
	items, err := s.GetCatalogItems(ctx, profileID, libraryIDs)
	if err != nil {
		return nil, err
	}

	want := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		want[id] = struct{}{}
	}
	out := make(map[string]models.CatalogItem, len(ids))
	for _, item := range items {
		if _, ok := want[item.ID]; ok {
			out[item.ID] = item
		}
	}
	return out, nil
}

// Import replaces a library's cached items and marks its metadata complete.
func (s *Service) Import(ctx context.Context, profileID string, lib models.Library, items []models.CatalogItem) (RefreshResult, error) {
	if err := ctx.Err(); err != nil {
		return RefreshResult{}, err
	}

	cachedAt := s.now()

	records := make([]models.CatalogRecord, 0, len(items))
	for _, item := range items {
		if item.Type == "" {
			item.Type = lib.Type
		}
		item.LibraryID = lib.ID
		rec := s.mapper.ToRecord(item)
		rec.ProfileID = profileID
		rec.CachedAt = cachedAt
		records = append(records, rec)
	}

	l := s.locks.get(profileID, lib.ID)
	l.Lock()
	defer l.Unlock()

	evicted, err := s.store.PutRecords(profileID, lib.ID, records, true)
	if err != nil {
		s.logger.Error("write catalog library", "profile", profileID, "library", lib.ID, "err", err)
		return RefreshResult{}, fmt.Errorf("write library %s: %w", lib.ID, err)
	}

	libID := lib.ID
	meta := &models.CacheMetadata{
		Key:           cache.CatalogKey(profileID, lib.ID, cache.CatalogTypeFor(lib.Type)),
		CacheType:     cache.CatalogTypeFor(lib.Type),
		ProfileID:     profileID,
		LibraryID:     &libID,
		LastRefreshed: cachedAt,
		ItemCount:     len(records) - evicted,
		IsComplete:    true,
	}
	if s.meta != nil {
		if err := s.meta.UpsertMetadata(meta); err != nil {
			s.logger.Error("upsert catalog metadata", "key", meta.Key, "err", err)
			return RefreshResult{}, fmt.Errorf("upsert metadata: %w", err)
		}
	}

	s.logger.Info("catalog library cached", "profile", profileID, "library", lib.ID, "items", len(records), "evicted", evicted)
	return RefreshResult{LibraryID: lib.ID, Count: len(records) - evicted, Evicted: evicted}, nil
}

// Refresh pulls a library from the remote catalog when its metadata says the
// cached copy is stale, or when force is set.
func (s *Service) Refresh(ctx context.Context, profileID string, lib models.Library, force bool) (RefreshResult, error) {
	key := cache.CatalogKey(profileID, lib.ID, cache.CatalogTypeFor(lib.Type))
	if s.meta != nil {
		meta, err := s.meta.GetMetadata(key)
		if err != nil {
			return RefreshResult{}, fmt.Errorf("read metadata: %w", err)
		}
		if !s.policy.MetadataNeedsRefresh(meta, force) {
			s.logger.Debug("catalog fresh", "profile", profileID, "library", lib.ID, "count", meta.ItemCount)
			return RefreshResult{LibraryID: lib.ID, FromCache: true, Count: meta.ItemCount}, nil
		}
	}
	if s.remote == nil {
		return RefreshResult{}, ErrNoRemote
	}

	s.logger.Debug("catalog stale, fetching", "profile", profileID, "library", lib.ID)
	items, err := fetchAll(ctx, func(ctx context.Context, offset, limit int) ([]models.CatalogItem, int, error) {
		return s.remote.GetLibraryItems(ctx, lib.ID, offset, limit)
	}, defaultChunkSize)
	if err != nil {
		s.logger.Error("fetch library items", "profile", profileID, "library", lib.ID, "err", err)
		return RefreshResult{}, err
	}

	return s.Import(ctx, profileID, lib, items)
}

// Libraries returns the library listing, refreshing it from the remote
// catalog once the listing TTL has passed.
func (s *Service) Libraries(ctx context.Context, profileID string, force bool) ([]models.Library, error) {
	key := cache.LibraryKey(profileID)
	var meta *models.CacheMetadata
	if s.meta != nil {
		var err error
		if meta, err = s.meta.GetMetadata(key); err != nil {
			return nil, fmt.Errorf("read metadata: %w", err)
		}
	}

	if s.remote == nil || !s.policy.MetadataNeedsRefresh(meta, force) {
		return s.store.Libraries(profileID)
	}

	libs, err := s.remote.GetLibraries(ctx)
	if err != nil {
		s.logger.Error("fetch libraries", "profile", profileID, "err", err)
		return nil, err
	}
	if err := s.store.PutLibraries(profileID, libs); err != nil {
		return nil, fmt.Errorf("write libraries: %w", err)
	}

	if s.meta != nil {
		if err := s.meta.UpsertMetadata(&models.CacheMetadata{
			Key:           key,
			CacheType:     models.CacheTypeLibraries,
			ProfileID:     profileID,
			LastRefreshed: s.now(),
			ItemCount:     len(libs),
			IsComplete:    true,
		}); err != nil {
			return nil, fmt.Errorf("upsert metadata: %w", err)
		}
	}
	return libs, nil
}

func (s *Service) now() time.Time {
	if s.policy.Now == nil {
		return time.Now().UTC()
	}
	return s.policy.Now().UTC()
}

// Counts returns cached item counts per media type.
func (s *Service) Counts(profileID string) (map[models.MediaType]int, error) {
	return s.store.Counts(profileID)
}

// InvalidateProfile drops a profile's cached catalog.
func (s *Service) InvalidateProfile(profileID string) error {
	return s.store.DeleteProfile(profileID)
}

// InvalidateLibrary drops one library's cached items.
func (s *Service) InvalidateLibrary(profileID, libraryID string) error {
	l := s.locks.get(profileID, libraryID)
	l.Lock()
	defer l.Unlock()
	return s.store.DeleteLibrary(profileID, libraryID)
}

func fetchAll[T any](
	ctx context.Context,
	fetch func(ctx context.Context, offset, limit int) ([]T, int, error),
	chunkSize int,
) ([]T, error) {
	if chunkSize <= 0 {
		chunkSize = defaultChunkSize
	}

	var all []T
	offset := 0

	for {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		items, total, err := fetch(ctx, offset, chunkSize)
		if err != nil {
			return nil, err
		}

		all = append(all, items...)

		if len(all) >= total || len(items) == 0 {
			break
		}
		offset += chunkSize
	}

	return all, nil
}
