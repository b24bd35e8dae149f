package catalog

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/purestream711/PureStream-sub004/internal/models"
)

func testStore(t *testing.T, limits Limits) *Store {
	t.Helper()
	s, err := OpenStore(filepath.Join(t.TempDir(), "catalog.db"), StoreOptions{Limits: limits, Logger: quietLogger()})
	require.NoError(t, err)
	t.Cleanup(func() {
		if err := s.Close(); err != nil {
			t.Logf("close store: %v", err)
		}
	})
	return s
}

func record(id string, typ models.MediaType, cachedAt time.Time) models.CatalogRecord {
	return models.CatalogRecord{ID: id, Title: "Title " + id, Year: models.IntPtr(2020), Type: typ, CachedAt: cachedAt}
}

func recordIDs(recs []models.CatalogRecord) []string {
	out := make([]string, len(recs))
	for i, r := range recs {
		out[i] = r.ID
	}
	return out
}

func TestStore_PutAndRead(t *testing.T) {
	s := testStore(t, Limits{})
	now := time.Now().UTC()

	_, err := s.PutRecords("p1", "lib", []models.CatalogRecord{
		record("b", models.MediaTypeMovie, now),
		record("a", models.MediaTypeMovie, now),
	}, false)
	require.NoError(t, err)

	recs, err := s.Records("p1", "lib")
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, recordIDs(recs))

	missing, err := s.Records("p2", "lib")
	require.NoError(t, err)
	assert.Empty(t, missing)

	missing, err = s.Records("p1", "other")
	require.NoError(t, err)
	assert.Empty(t, missing)
}

func TestStore_ReplaceDropsPreviousRecords(t *testing.T) {
	s := testStore(t, Limits{})
	now := time.Now().UTC()

	_, err := s.PutRecords("p1", "lib", []models.CatalogRecord{record("a", models.MediaTypeMovie, now)}, false)
	require.NoError(t, err)
	_, err = s.PutRecords("p1", "lib", []models.CatalogRecord{record("b", models.MediaTypeMovie, now)}, true)
	require.NoError(t, err)

	recs, err := s.Records("p1", "lib")
	require.NoError(t, err)
	assert.Equal(t, []string{"b"}, recordIDs(recs))
}

func TestStore_EvictsOldestFirst(t *testing.T) {
	s := testStore(t, Limits{MaxMovies: 3, MaxShows: 1})
	base := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

	_, err := s.PutRecords("p1", "old", []models.CatalogRecord{
		record("m-old-1", models.MediaTypeMovie, base),
		record("m-old-2", models.MediaTypeMovie, base.Add(time.Minute)),
	}, false)
	require.NoError(t, err)

	evicted, err := s.PutRecords("p1", "new", []models.CatalogRecord{
		record("m-new-1", models.MediaTypeMovie, base.Add(time.Hour)),
		record("m-new-2", models.MediaTypeMovie, base.Add(time.Hour)),
		record("s-1", models.MediaTypeShow, base.Add(time.Hour)),
	}, false)
	require.NoError(t, err)
	assert.Equal(t, 1, evicted)

	old, err := s.Records("p1", "old")
	require.NoError(t, err)
	assert.Equal(t, []string{"m-old-2"}, recordIDs(old))

	counts, err := s.Counts("p1")
	require.NoError(t, err)
	assert.Equal(t, 3, counts[models.MediaTypeMovie])
	assert.Equal(t, 1, counts[models.MediaTypeShow])
}

func TestStore_EvictionTieBreaksByID(t *testing.T) {
	s := testStore(t, Limits{MaxMovies: 1})
	at := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

	_, err := s.PutRecords("p1", "lib", []models.CatalogRecord{
		record("b", models.MediaTypeMovie, at),
		record("a", models.MediaTypeMovie, at),
	}, false)
	require.NoError(t, err)

	recs, err := s.Records("p1", "lib")
	require.NoError(t, err)
	assert.Equal(t, []string{"b"}, recordIDs(recs))
}

func TestStore_CeilingsArePerProfile(t *testing.T) {
	s := testStore(t, Limits{MaxMovies: 1})
	now := time.Now().UTC()

	_, err := s.PutRecords("p1", "lib", []models.CatalogRecord{record("a", models.MediaTypeMovie, now)}, false)
	require.NoError(t, err)
	_, err = s.PutRecords("p2", "lib", []models.CatalogRecord{record("b", models.MediaTypeMovie, now)}, false)
	require.NoError(t, err)

	for _, p := range []string{"p1", "p2"} {
		recs, err := s.Records(p, "lib")
		require.NoError(t, err)
		assert.Len(t, recs, 1, p)
	}
}

func TestStore_Libraries(t *testing.T) {
	s := testStore(t, Limits{})

	libs, err := s.Libraries("p1")
	require.NoError(t, err)
	assert.Empty(t, libs)

	want := []models.Library{{ID: "lib", Title: "Movies", Type: models.MediaTypeMovie}}
	require.NoError(t, s.PutLibraries("p1", want))

	libs, err = s.Libraries("p1")
	require.NoError(t, err)
	assert.Equal(t, want, libs)
}

func TestStore_Delete(t *testing.T) {
	s := testStore(t, Limits{})
	now := time.Now().UTC()

	_, err := s.PutRecords("p1", "a", []models.CatalogRecord{record("1", models.MediaTypeMovie, now)}, false)
	require.NoError(t, err)
	_, err = s.PutRecords("p1", "b", []models.CatalogRecord{record("2", models.MediaTypeMovie, now)}, false)
	require.NoError(t, err)

	require.NoError(t, s.DeleteLibrary("p1", "a"))
	require.NoError(t, s.DeleteLibrary("p1", "a"), "deleting twice is fine")
	require.NoError(t, s.DeleteLibrary("nobody", "a"))

	recs, err := s.Records("p1", "a")
	require.NoError(t, err)
	assert.Empty(t, recs)

	require.NoError(t, s.DeleteProfile("p1"))
	require.NoError(t, s.DeleteProfile("p1"))

	recs, err = s.Records("p1", "b")
	require.NoError(t, err)
	assert.Empty(t, recs)
}
