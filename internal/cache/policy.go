// Package cache holds the TTL staleness policy and cache key layout shared by
// the catalog cache and the curation cache.
package cache

import (
	"time"

	"github.com/purestream711/PureStream-sub004/internal/models"
)

// Per-class TTLs. Each cache class refreshes on its own clock.
const (
	LibraryTTL   = 24 * time.Hour
	CatalogTTL   = 6 * time.Hour
	DashboardTTL = time.Hour
)

// Default per-profile catalog ceilings.
const (
	DefaultMaxMovies = 5000
	DefaultMaxShows  = 2000
)

// TTLFor returns the TTL of a cache class. Unknown classes get the shortest TTL.
func TTLFor(t models.CacheType) time.Duration {
	switch t {
	case models.CacheTypeLibraries:
		return LibraryTTL
	case models.CacheTypeMovies, models.CacheTypeShows:
		return CatalogTTL
	default:
		return DashboardTTL
	}
}

// Policy evaluates cache freshness against a clock.
type Policy struct {
	Now func() time.Time
}

// NewPolicy returns a Policy on the wall clock.
func NewPolicy() Policy {
	return Policy{Now: time.Now}
}

func (p Policy) now() time.Time {
	if p.Now == nil {
		return time.Now()
	}
	return p.Now()
}

// IsValid reports whether something cached at cachedAt is still fresh.
func (p Policy) IsValid(cachedAt time.Time, ttl time.Duration) bool {
	return p.now().Sub(cachedAt) < ttl
}

// ShouldRefresh reports whether a cached scope must be refetched.
func (p Policy) ShouldRefresh(cachedAt time.Time, ttl time.Duration, force bool) bool {
	return force || !p.IsValid(cachedAt, ttl)
}

// MetadataNeedsRefresh applies ShouldRefresh to a metadata record. A missing
// or incomplete record always needs a refresh.
func (p Policy) MetadataNeedsRefresh(meta *models.CacheMetadata, force bool) bool {
	if meta == nil || !meta.IsComplete {
		return true
	}
	return p.ShouldRefresh(meta.LastRefreshed, TTLFor(meta.CacheType), force)
}

// Age returns how long ago cachedAt was.
func (p Policy) Age(cachedAt time.Time) time.Duration {
	return p.now().Sub(cachedAt)
}

var defaultPolicy = NewPolicy()

// IsValid reports freshness on the wall clock.
func IsValid(cachedAt time.Time, ttl time.Duration) bool {
	return defaultPolicy.IsValid(cachedAt, ttl)
}

// ShouldRefresh reports refresh eligibility on the wall clock.
func ShouldRefresh(cachedAt time.Time, ttl time.Duration, force bool) bool {
	return defaultPolicy.ShouldRefresh(cachedAt, ttl, force)
}
