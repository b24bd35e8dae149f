package cache

import (
	"fmt"

	"github.com/purestream711/PureStream-sub004/internal/models"
)

// LibraryKey is the metadata key of a profile's library listing.
func LibraryKey(profileID string) string {
	return fmt.Sprintf("library:%s", profileID)
}

// CatalogKey is the metadata key of one library's movies or shows.
func CatalogKey(profileID, libraryID string, t models.CacheType) string {
	return fmt.Sprintf("catalog:%s:%s:%s", profileID, libraryID, t)
}

// DashboardKey is the metadata key of a profile's curated dashboard.
func DashboardKey(profileID string) string {
	return fmt.Sprintf("dashboard:%s", profileID)
}

// CatalogTypeFor maps a media type to its catalog cache class.
func CatalogTypeFor(t models.MediaType) models.CacheType {
	if t == models.MediaTypeShow {
		return models.CacheTypeShows
	}
	return models.CacheTypeMovies
}
