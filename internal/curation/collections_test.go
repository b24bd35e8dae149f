package curation

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"testing"

	"github.com/purestream711/PureStream-sub004/internal/models"
	"github.com/stretchr/testify/assert"
)

func TestMergeCollections(t *testing.T) {
	existing := []models.DashboardCollection{
		{ID: "recently_added", Type: models.CollectionRecentlyAdded, IsEnabled: true, Order: 5},
		{ID: "ai:old", Type: models.CollectionAIRecommendation, IsEnabled: true, Order: 0},
		{ID: "continue_watching", Type: models.CollectionContinueWatching, IsEnabled: true, Order: 1},
		{ID: "custom", Type: models.CollectionCustom, IsEnabled: false, Order: 9},
	}
	ai := []models.DashboardCollection{
		{ID: "ai:trending", Type: models.CollectionAIRecommendation, IsEnabled: true},
		{ID: "ai:action", Type: models.CollectionAIRecommendation, IsEnabled: true},
	}

	got := mergeCollections(existing, ai)

	var ids []string
	for i, c := range got {
		assert.Equal(t, i, c.Order)
		ids = append(ids, c.ID)
	}
	assert.Equal(t, []string{"ai:trending", "ai:action", "continue_watching", "recently_added", "custom"}, ids)
	assert.False(t, got[4].IsEnabled, "disabled collections keep their flag")
}

func TestMergeCollections_NoAI(t *testing.T) {
	got := mergeCollections(models.DefaultDashboardCollections(), nil)
	assert.Len(t, got, 2)
	assert.Equal(t, "continue_watching", got[0].ID)
}

func TestErrorMatching(t *testing.T) {
	inner := errors.New("connection reset")
	err := fmt.Errorf("wrapped: %w", &Error{Kind: SourceUnavailable, Stage: StageFetchingCandidates, Category: "trending", Err: inner})

	assert.ErrorIs(t, err, ErrSourceUnavailable)
	assert.NotErrorIs(t, err, ErrEmptyCatalog)
	assert.ErrorIs(t, err, inner)
	assert.Equal(t, SourceUnavailable, KindOf(err))
	assert.Equal(t, Kind(0), KindOf(inner))
	assert.Contains(t, err.Error(), "source_unavailable during fetching_candidates (category trending)")
}

func TestKindAndStageStrings(t *testing.T) {
	assert.Equal(t, "empty_catalog", EmptyCatalog.String())
	assert.Equal(t, "malformed_candidate", MalformedCandidate.String())
	assert.Equal(t, "persistence_failure", PersistenceFailure.String())
	assert.Equal(t, "selecting_featured", StageSelectingFeatured.String())
	assert.True(t, StageDone.Terminal())
	assert.True(t, StageFailed.Terminal())
	assert.False(t, StageMatching.Terminal())
}

func TestParseFailurePolicy(t *testing.T) {
	assert.Equal(t, BestEffort, ParseFailurePolicy("best_effort"))
	assert.Equal(t, FailFast, ParseFailurePolicy("fail_fast"))
	assert.Equal(t, FailFast, ParseFailurePolicy(""))
	assert.Equal(t, "best_effort", BestEffort.String())
}

func TestLockPath(t *testing.T) {
	a := lockPath("/locks", "a/b")
	b := lockPath("/locks", "a_b")

	assert.NotEqual(t, a, b)
	assert.Equal(t, "/locks", filepath.Dir(a))
	assert.True(t, strings.HasPrefix(filepath.Base(a), "curate-a_b-"))
	assert.True(t, strings.HasSuffix(a, ".lock"))
	assert.Equal(t, a, lockPath("/locks", "a/b"))
}
