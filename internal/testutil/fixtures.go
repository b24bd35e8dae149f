package testutil

import (
	"time"

	"github.com/purestream711/PureStream-sub004/internal/models"
)

// Movie returns a minimal movie catalog item.
func Movie(id, title string, year int) models.CatalogItem {
	return item(id, title, year, models.MediaTypeMovie)
}

// Show returns a minimal show catalog item.
func Show(id, title string, year int) models.CatalogItem {
	return item(id, title, year, models.MediaTypeShow)
}

func item(id, title string, year int, t models.MediaType) models.CatalogItem {
	added := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	return models.CatalogItem{
		ID:        id,
		Title:     title,
		SortTitle: title,
		Year:      models.IntPtr(year),
		Type:      t,
		AddedAt:   added,
		UpdatedAt: added,
	}
}

// Candidate returns a recommendation candidate.
func Candidate(title string, year int) models.CandidateRecommendation {
	return models.CandidateRecommendation{Title: title, Year: year}
}

// Clock is a settable time source for TTL tests.
type Clock struct {
	T time.Time
}

// NewClock returns a clock fixed at t.
func NewClock(t time.Time) *Clock { return &Clock{T: t} }

// Now returns the current fake time.
func (c *Clock) Now() time.Time { return c.T }

// Advance moves the clock forward.
func (c *Clock) Advance(d time.Duration) { c.T = c.T.Add(d) }
