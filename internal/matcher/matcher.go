package matcher

import (
	"strings"

	"github.com/purestream711/PureStream-sub004/internal/models"
)

// Tier identifies which rule produced a match.
type Tier int

const (
	TierNone Tier = iota
	TierExact
	TierContainment
	TierSimilarity
)

func (t Tier) String() string {
	switch t {
	case TierExact:
		return "exact"
	case TierContainment:
		return "containment"
	case TierSimilarity:
		return "similarity"
	default:
		return "none"
	}
}

// Defaults for Matcher.
const (
	DefaultYearTolerance = 1
	DefaultMinSimilarity = 0.8
)

// MatchResult is the catalog item chosen for one candidate.
type MatchResult struct {
	Candidate models.CandidateRecommendation
	Item      models.CatalogItem
	Tier      Tier
}

// Matcher holds the matching thresholds.
type Matcher struct {
	YearTolerance int
	MinSimilarity float64
}

// New returns a Matcher with the default thresholds.
func New() *Matcher {
	return &Matcher{YearTolerance: DefaultYearTolerance, MinSimilarity: DefaultMinSimilarity}
}

// MatchCandidates matches with the default thresholds.
func MatchCandidates(candidates []models.CandidateRecommendation, catalog []models.CatalogItem) []MatchResult {
	return New().MatchCandidates(candidates, catalog)
}

type indexedItem struct {
	item  models.CatalogItem
	title string
}

// MatchCandidates returns at most one match per candidate, in candidate
// order. Candidates without a match are omitted. Within a tier the first
// catalog item in iteration order wins; a higher tier always beats a lower
// tier regardless of catalog position.
func (m *Matcher) MatchCandidates(candidates []models.CandidateRecommendation, catalog []models.CatalogItem) []MatchResult {
	index := make([]indexedItem, 0, len(catalog))
	for _, item := range catalog {
		if item.Year == nil {
			continue
		}
		index = append(index, indexedItem{item: item, title: Normalize(item.Title)})
	}

	results := make([]MatchResult, 0, len(candidates))
	for _, c := range candidates {
		if r, ok := m.match(c, index); ok {
			results = append(results, r)
		}
	}
	return results
}

// Match finds the catalog item for a single candidate.
func (m *Matcher) Match(c models.CandidateRecommendation, catalog []models.CatalogItem) (MatchResult, bool) {
	results := m.MatchCandidates([]models.CandidateRecommendation{c}, catalog)
	if len(results) == 0 {
		return MatchResult{}, false
	}
	return results[0], true
}

func (m *Matcher) match(c models.CandidateRecommendation, index []indexedItem) (MatchResult, bool) {
	title := Normalize(c.Title)
	if title == "" {
		return MatchResult{}, false
	}

	tiers := []struct {
		tier Tier
		ok   func(catalogTitle string) bool
	}{
		{TierExact, func(ct string) bool { return ct == title }},
		{TierContainment, func(ct string) bool {
			return ct != "" && (strings.Contains(title, ct) || strings.Contains(ct, title))
		}},
		{TierSimilarity, func(ct string) bool { return Similarity(title, ct) >= m.MinSimilarity }},
	}

	for _, t := range tiers {
		for _, ix := range index {
			if !m.yearsClose(c.Year, *ix.item.Year) {
				continue
			}
			if t.ok(ix.title) {
				return MatchResult{Candidate: c, Item: ix.item, Tier: t.tier}, true
			}
		}
	}
	return MatchResult{}, false
}

func (m *Matcher) yearsClose(a, b int) bool {
	d := a - b
	if d < 0 {
		d = -d
	}
	return d <= m.YearTolerance
}

// Items extracts the matched catalog items in result order.
func Items(results []MatchResult) []models.CatalogItem {
	items := make([]models.CatalogItem, len(results))
	for i, r := range results {
		items[i] = r.Item
	}
	return items
}
