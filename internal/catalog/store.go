package catalog

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/charmbracelet/log"
	bolt "go.etcd.io/bbolt"

	"github.com/purestream711/PureStream-sub004/internal/models"
)

// Bucket layout: profiles/<profile>/libs/<library>/<item id> -> record,
// profiles/<profile>/meta/libraries -> library listing.
var (
	bucketProfiles = []byte("profiles")
	bucketLibs     = []byte("libs")
	bucketMeta     = []byte("meta")
	keyLibraries   = []byte("libraries")
)

// Limits caps the number of cached items per profile and media type.
// Zero means unlimited.
type Limits struct {
	MaxMovies int
	MaxShows  int
}

func (l Limits) max(t models.MediaType) int {
	if t == models.MediaTypeShow {
		return l.MaxShows
	}
	return l.MaxMovies
}

// Store persists catalog records in bbolt. Writes are atomic per call;
// scope locking is done by Service.
type Store struct {
	db     *bolt.DB
	codec  Codec
	limits Limits
	logger *log.Logger
}

// StoreOptions configures OpenStore.
type StoreOptions struct {
	Codec  Codec
	Limits Limits
	Logger *log.Logger
}

// OpenStore opens (creating if needed) the bbolt file at path.
func OpenStore(path string, opts StoreOptions) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("create catalog directory: %w", err)
	}

	db, err := bolt.Open(path, 0600, &bolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("open catalog store: %w", err)
	}

	err = db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(bucketProfiles)
		return err
	})
	if err != nil {
		_ = db.Close()
		return nil, err
	}

	if opts.Codec == nil {
		opts.Codec = JSONCodec{}
	}
	if opts.Logger == nil {
		opts.Logger = log.Default()
	}
	return &Store{db: db, codec: opts.Codec, limits: opts.Limits, logger: opts.Logger}, nil
}

// Close closes the underlying bbolt file.
func (s *Store) Close() error {
	return s.db.Close()
}

// PutRecords writes records into a library. With replace set, the library's
// previous records are dropped first. The profile ceilings are enforced in
// the same transaction by evicting the oldest CachedAt first; the number of
// evicted records is returned.
func (s *Store) PutRecords(profileID, libraryID string, records []models.CatalogRecord, replace bool) (int, error) {
	evicted := 0
	err := s.db.Update(func(tx *bolt.Tx) error {
		libs, err := profileSubBucket(tx, profileID, bucketLibs, true)
		if err != nil {
			return err
		}

		if replace && libs.Bucket([]byte(libraryID)) != nil {
			if err := libs.DeleteBucket([]byte(libraryID)); err != nil {
				return fmt.Errorf("drop library: %w", err)
			}
		}
		lib, err := libs.CreateBucketIfNotExists([]byte(libraryID))
		if err != nil {
			return err
		}

		for _, rec := range records {
			data, err := s.codec.Marshal(rec)
			if err != nil {
				return fmt.Errorf("encode record %s: %w", rec.ID, err)
			}
			if err := lib.Put([]byte(rec.ID), data); err != nil {
				return err
			}
		}

		evicted, err = s.enforceLimits(libs)
		return err
	})
	return evicted, err
}

type evictionCandidate struct {
	library  []byte
	id       []byte
	cachedAt time.Time
}

// enforceLimits evicts oldest-first per media type until the ceilings hold.
// Ties on CachedAt are broken by item id.
func (s *Store) enforceLimits(libs *bolt.Bucket) (int, error) {
	byType := make(map[models.MediaType][]evictionCandidate)

	err := libs.ForEachBucket(func(name []byte) error {
		lib := libs.Bucket(name)
		libName := append([]byte(nil), name...)
		return lib.ForEach(func(k, v []byte) error {
			var rec models.CatalogRecord
			if err := s.codec.Unmarshal(v, &rec); err != nil {
				// Unreadable records carry a zero CachedAt and sort first.
				byType[models.MediaTypeMovie] = append(byType[models.MediaTypeMovie], evictionCandidate{library: libName, id: append([]byte(nil), k...)})
				return nil
			}
			t := rec.Type
			if t == "" {
				t = models.MediaTypeMovie
			}
			byType[t] = append(byType[t], evictionCandidate{
				library:  libName,
				id:       append([]byte(nil), k...),
				cachedAt: rec.CachedAt,
			})
			return nil
		})
	})
	if err != nil {
		return 0, err
	}

	evicted := 0
	for t, cands := range byType {
		limit := s.limits.max(t)
		if limit <= 0 || len(cands) <= limit {
			continue
		}
		sort.Slice(cands, func(i, j int) bool {
			if !cands[i].cachedAt.Equal(cands[j].cachedAt) {
				return cands[i].cachedAt.Before(cands[j].cachedAt)
			}
			return string(cands[i].id) < string(cands[j].id)
		})
		for _, c := range cands[:len(cands)-limit] {
			if err := libs.Bucket(c.library).Delete(c.id); err != nil {
				return evicted, err
			}
			evicted++
		}
		s.logger.Debug("evicted catalog records", "type", t, "count", len(cands)-limit, "limit", limit)
	}
	return evicted, nil
}

// Records returns every readable record of a library in key order.
// Records that fail to decode are skipped and logged.
func (s *Store) Records(profileID, libraryID string) ([]models.CatalogRecord, error) {
	var out []models.CatalogRecord
	err := s.db.View(func(tx *bolt.Tx) error {
		libs, err := profileSubBucket(tx, profileID, bucketLibs, false)
		if err != nil || libs == nil {
			return err
		}
		lib := libs.Bucket([]byte(libraryID))
		if lib == nil {
			return nil
		}
		return lib.ForEach(func(k, v []byte) error {
			var rec models.CatalogRecord
			if err := s.codec.Unmarshal(v, &rec); err != nil {
				s.logger.Warn("skip unreadable catalog record", "profile", profileID, "library", libraryID, "item", string(k), "err", err)
				return nil
			}
			out = append(out, rec)
			return nil
		})
	})
	return out, err
}

// Counts returns the number of cached records per media type for a profile.
func (s *Store) Counts(profileID string) (map[models.MediaType]int, error) {
	counts := make(map[models.MediaType]int)
	err := s.db.View(func(tx *bolt.Tx) error {
		libs, err := profileSubBucket(tx, profileID, bucketLibs, false)
		if err != nil || libs == nil {
			return err
		}
		return libs.ForEachBucket(func(name []byte) error {
			return libs.Bucket(name).ForEach(func(_, v []byte) error {
				var rec models.CatalogRecord
				if s.codec.Unmarshal(v, &rec) == nil {
					counts[rec.Type]++
				}
				return nil
			})
		})
	})
	return counts, err
}

// PutLibraries stores a profile's library listing.
func (s *Store) PutLibraries(profileID string, libs []models.Library) error {
	data, err := s.codec.Marshal(libs)
	if err != nil {
		return err
	}
	return s.db.Update(func(tx *bolt.Tx) error {
		meta, err := profileSubBucket(tx, profileID, bucketMeta, true)
		if err != nil {
			return err
		}
		return meta.Put(keyLibraries, data)
	})
}

// Libraries returns a profile's cached library listing.
func (s *Store) Libraries(profileID string) ([]models.Library, error) {
	var libs []models.Library
	err := s.db.View(func(tx *bolt.Tx) error {
		meta, err := profileSubBucket(tx, profileID, bucketMeta, false)
		if err != nil || meta == nil {
			return err
		}
		data := meta.Get(keyLibraries)
		if data == nil {
			return nil
		}
		return s.codec.Unmarshal(data, &libs)
	})
	return libs, err
}

// DeleteLibrary drops one library's records.
func (s *Store) DeleteLibrary(profileID, libraryID string) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		libs, err := profileSubBucket(tx, profileID, bucketLibs, false)
		if err != nil || libs == nil {
			return err
		}
		err = libs.DeleteBucket([]byte(libraryID))
		if errors.Is(err, bolt.ErrBucketNotFound) {
			return nil
		}
		return err
	})
}

// DeleteProfile drops everything cached for a profile.
func (s *Store) DeleteProfile(profileID string) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		err := tx.Bucket(bucketProfiles).DeleteBucket([]byte(profileID))
		if errors.Is(err, bolt.ErrBucketNotFound) {
			return nil
		}
		return err
	})
}

// profileSubBucket resolves profiles/<profile>/<name>. When create is false a
// missing bucket yields (nil, nil).
func profileSubBucket(tx *bolt.Tx, profileID string, name []byte, create bool) (*bolt.Bucket, error) {
	root := tx.Bucket(bucketProfiles)
	if root == nil {
		return nil, errors.New("catalog store not initialized")
	}

	if !create {
		p := root.Bucket([]byte(profileID))
		if p == nil {
			return nil, nil
		}
		return p.Bucket(name), nil
	}

	p, err := root.CreateBucketIfNotExists([]byte(profileID))
	if err != nil {
		return nil, err
	}
	return p.CreateBucketIfNotExists(name)
}
