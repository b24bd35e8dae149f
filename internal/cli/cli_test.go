package cli

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/purestream711/PureStream-sub004/internal/config"
	"github.com/purestream711/PureStream-sub004/internal/curation"
	"github.com/purestream711/PureStream-sub004/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRootCmd_Structure(t *testing.T) {
	assert.Equal(t, "purestream", rootCmd.Use)
	assert.NotEmpty(t, rootCmd.Short)
	assert.NotEmpty(t, rootCmd.Long)
}

func TestRootCmd_HasSubcommands(t *testing.T) {
	var names []string
	for _, cmd := range rootCmd.Commands() {
		names = append(names, cmd.Name())
	}

	for _, want := range []string{"curate", "dashboard", "collection", "cache", "catalog", "profile"} {
		assert.Contains(t, names, want)
	}
}

func TestCacheCmd_Subcommands(t *testing.T) {
	var names []string
	for _, cmd := range cacheCmd.Commands() {
		names = append(names, cmd.Name())
	}
	assert.ElementsMatch(t, []string{"status", "clear"}, names)
}

func TestCurateCmd_Flags(t *testing.T) {
	for _, name := range []string{"force", "if-stale", "best-effort", "candidates", "quiet"} {
		assert.NotNil(t, curateCmd.Flags().Lookup(name), "missing flag %s", name)
	}
	assert.Equal(t, "q", curateCmd.Flags().Lookup("quiet").Shorthand)
}

func TestClassifyError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"curation kind", &curation.Error{Kind: curation.EmptyCatalog, Stage: curation.StageMatching}, "empty_catalog"},
		{"wrapped curation kind", fmt.Errorf("run: %w", &curation.Error{Kind: curation.SourceUnavailable}), "source_unavailable"},
		{"cancelled", fmt.Errorf("fetch: %w", context.Canceled), "cancelled"},
		{"deadline", context.DeadlineExceeded, "cancelled"},
		{"busy", curation.ErrBusy, "busy"},
		{"config", errors.New("load config: bad yaml"), "config_error"},
		{"database", errors.New("initialize database: locked"), "database_error"},
		{"network", errors.New("connection refused"), "network_error"},
		{"not found", errors.New("profile not found"), "not_found_error"},
		{"validation", errors.New("invalid value"), "validation_error"},
		{"unknown", errors.New("boom"), "unknown_error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, classifyError(tt.err))
		})
	}
}

func TestTrackCLIError_NilPassthrough(t *testing.T) {
	assert.NoError(t, trackCLIError("curate", nil))
	err := errors.New("x")
	assert.Same(t, err, trackCLIError("curate", err))
}

func TestFormatAge(t *testing.T) {
	ref := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	tests := []struct {
		diff time.Duration
		want string
	}{
		{10 * time.Second, "just now"},
		{time.Minute, "1 minute ago"},
		{5 * time.Minute, "5 minutes ago"},
		{time.Hour, "1 hour ago"},
		{3 * time.Hour, "3 hours ago"},
		{24 * time.Hour, "1 day ago"},
		{3 * 24 * time.Hour, "3 days ago"},
		{30 * 24 * time.Hour, "2024-03-01"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, formatAge(tt.diff, ref), tt.diff.String())
	}
}

func TestRenderTable(t *testing.T) {
	out := renderTable([]string{"ID", "COUNT"}, [][]string{{"movies", "12"}, {"short"}}, []columnAlignment{alignLeft, alignRight})

	assert.Contains(t, out, "ID")
	assert.Contains(t, out, "COUNT")
	assert.Contains(t, out, "movies")
	assert.Contains(t, out, "12")
	assert.Empty(t, renderTable(nil, nil, nil))
}

func TestYearString(t *testing.T) {
	year := 1999
	assert.Equal(t, "1999", yearString(&year))
	assert.Equal(t, "-", yearString(nil))
}

func TestLoadCandidates(t *testing.T) {
	dir := t.TempDir()

	good := filepath.Join(dir, "good.json")
	require.NoError(t, os.WriteFile(good, []byte(`{"trending":[{"title":"Heat","year":1995}]}`), 0o644))
	src, err := loadCandidates(good)
	require.NoError(t, err)
	require.Len(t, src["trending"], 1)
	assert.Equal(t, "Heat", src["trending"][0].Title)

	bad := filepath.Join(dir, "bad.json")
	require.NoError(t, os.WriteFile(bad, []byte(`not json`), 0o644))
	_, err = loadCandidates(bad)
	assert.Error(t, err)

	_, err = loadCandidates(filepath.Join(dir, "missing.json"))
	assert.Error(t, err)
}

func TestGuardConfig_BurstMatchesCategories(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Curation.RequestsPerMinute = 10
	cfg.Curation.BreakerThreshold = 5
	cfg.Curation.Categories = []models.Category{
		{ID: "a"}, {ID: "b"}, {ID: "c"}, {ID: "d"}, {ID: "e"},
	}

	gc := guardConfig(cfg)
	assert.Equal(t, 10, gc.RequestsPerMinute)
	assert.Equal(t, uint32(5), gc.FailureThreshold)
	assert.Equal(t, 5, gc.Burst)

	cfg.Curation.Categories = cfg.Curation.Categories[:1]
	assert.Equal(t, 3, guardConfig(cfg).Burst)
}

func TestProgressBar(t *testing.T) {
	bar := NewProgressBar(4, 8)
	bar.Update(2, "matching")
	out := bar.Render()
	assert.Contains(t, out, "matching")
	assert.Contains(t, out, "2/4")
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var buf bytes.Buffer
	rootCmd.SetOut(&buf)
	rootCmd.SetErr(&buf)
	rootCmd.SetArgs(args)
	err := rootCmd.ExecuteContext(context.Background())
	return buf.String(), err
}

func writeExport(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "libraries.json"),
		[]byte(`[{"id":"lib-movies","title":"Movies","type":"movie"}]`), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "lib-movies.json"), []byte(`[
		{"id":"m1","library_id":"lib-movies","title":"Heat","year":1995,"type":"movie"},
		{"id":"m2","library_id":"lib-movies","title":"The Matrix","year":1999,"type":"movie"},
		{"id":"m3","library_id":"lib-movies","title":"Alien","year":1979,"type":"movie"}
	]`), 0o644))
	return dir
}

func TestEndToEnd_SyncCurateDashboard(t *testing.T) {
	home := t.TempDir()
	t.Setenv("PURESTREAM_HOME", home)
	t.Setenv("OPENAI_API_KEY", "")
	t.Setenv("ANTHROPIC_API_KEY", "")
	t.Setenv("OPENROUTER_API_KEY", "")

	export := writeExport(t)
	candidates := filepath.Join(t.TempDir(), "candidates.json")
	require.NoError(t, os.WriteFile(candidates, []byte(`{
		"trending": [
			{"title": "Heat", "year": 1995},
			{"title": "the matrix", "year": 1998},
			{"title": "Not In Catalog", "year": 2001}
		]
	}`), 0o644))

	out, err := run(t, "profile", "create", "alice", "--name", "Alice")
	require.NoError(t, err, out)
	assert.Contains(t, out, "Created profile alice")

	out, err = run(t, "profile", "list")
	require.NoError(t, err, out)
	assert.Contains(t, out, "Alice")

	out, err = run(t, "catalog", "sync", "alice", "--from", export)
	require.NoError(t, err, out)
	assert.Contains(t, out, "lib-movies")
	assert.Contains(t, out, "remote")

	out, err = run(t, "curate", "alice", "--candidates", candidates, "--quiet")
	require.NoError(t, err, out)
	assert.Contains(t, out, "Curated alice")
	assert.Contains(t, out, "2 matched of 3 candidates")

	out, err = run(t, "dashboard", "alice")
	require.NoError(t, err, out)
	assert.Contains(t, out, "Trending Now")
	assert.Contains(t, out, "Recently Added")
	assert.NotContains(t, out, "stale")

	out, err = run(t, "collection", "alice", "ai:trending")
	require.NoError(t, err, out)
	assert.Contains(t, out, "Heat")
	assert.Contains(t, out, "The Matrix")
	assert.NotContains(t, out, "Alien")

	out, err = run(t, "curate", "alice", "--candidates", candidates, "--if-stale", "--quiet")
	require.NoError(t, err, out)
	assert.Contains(t, out, "is fresh")

	out, err = run(t, "cache", "status", "alice")
	require.NoError(t, err, out)
	assert.Contains(t, out, "dashboard")
	assert.Contains(t, out, "Catalog: 3 movies")

	out, err = run(t, "cache", "clear", "alice")
	require.NoError(t, err, out)
	assert.Contains(t, out, "Cleared collections for alice")
}

func TestEndToEnd_UnknownProfile(t *testing.T) {
	t.Setenv("PURESTREAM_HOME", t.TempDir())

	_, err := run(t, "dashboard", "nobody")
	assert.Error(t, err)
}
