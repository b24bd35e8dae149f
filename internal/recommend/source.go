// Package recommend produces candidate titles for curation categories.
package recommend

import (
	"context"
	"errors"

	"github.com/purestream711/PureStream-sub004/internal/models"
)

// ErrUnavailable marks a failed category call: transport errors, an open
// circuit, or a payload that is not a candidate list at all.
var ErrUnavailable = errors.New("recommendation source unavailable")

// Source returns candidates for one category. Calls for different categories
// succeed or fail independently.
type Source interface {
	GetCandidates(ctx context.Context, category models.Category, limit int) (Batch, error)
}

// Named is implemented by sources that can identify themselves in errors.
type Named interface {
	Name() string
}

// SourceName returns src's name, or "recommendation" when it has none.
func SourceName(src Source) string {
	if n, ok := src.(Named); ok && n.Name() != "" {
		return n.Name()
	}
	return "recommendation"
}

// Batch is the outcome of one successful category call.
type Batch struct {
	Candidates []models.CandidateRecommendation
	Malformed  []Malformed
}

// Malformed describes one payload element that could not be used.
type Malformed struct {
	Index  int
	Raw    string
	Reason string
}

// StaticSource serves fixed candidate lists keyed by category id.
// Unknown categories yield an empty batch.
type StaticSource map[string][]models.CandidateRecommendation

// Name implements Named.
func (StaticSource) Name() string { return "static" }

// GetCandidates implements Source.
func (s StaticSource) GetCandidates(ctx context.Context, category models.Category, limit int) (Batch, error) {
	if err := ctx.Err(); err != nil {
		return Batch{}, err
	}
	candidates := s[category.ID]
	if limit > 0 && len(candidates) > limit {
		candidates = candidates[:limit]
	}
	out := make([]models.CandidateRecommendation, len(candidates))
	copy(out, candidates)
	return Batch{Candidates: out}, nil
}
