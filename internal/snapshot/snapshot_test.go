package snapshot

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/dailytrending/trendwatch/pkg/pipeline"
)

func TestSaveLoadRoundTrip(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "data", "trends.json")
	records := []pipeline.TrendRecord{{
		ID:          "hackernews:abc",
		Title:       "Observatory Spots Interstellar Comet",
		URL:         "https://example.com/comet",
		Source:      "hackernews",
		Score:       2.1,
		Velocity:    44.5,
		Badge:       pipeline.BadgeSteady,
		Keywords:    []string{"observatory", "spots", "interstellar", "comet"},
		Timestamp:   time.Date(2026, time.August, 30, 9, 0, 0, 0, time.UTC),
		Language:    "en",
		Category:    "science",
		Status:      pipeline.StatusNew,
		SourceCount: 1,
	}}

	require.NoError(t, Save(path, records))

	loaded, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, records, loaded)
}

func TestLoadMissingFile(t *testing.T) {
	t.Parallel()

	_, err := Load(filepath.Join(t.TempDir(), "nope.json"))
	require.Error(t, err)
}

func TestLoadCorruptFile(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "trends.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o644))

	_, err := Load(path)
	require.Error(t, err)
}

func TestSaveNilWritesEmptyList(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "trends.json")
	require.NoError(t, Save(path, nil))

	loaded, err := Load(path)
	require.NoError(t, err)
	require.Empty(t, loaded)
}

func TestSaveReplacesExisting(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "trends.json")
	require.NoError(t, Save(path, []pipeline.TrendRecord{{ID: "a", Title: "Old"}}))
	require.NoError(t, Save(path, []pipeline.TrendRecord{{ID: "b", Title: "New"}}))

	loaded, err := Load(path)
	require.NoError(t, err)
	require.Len(t, loaded, 1)
	require.Equal(t, "b", loaded[0].ID)

	// No temp files left behind.
	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	require.Len(t, entries, 1)
}
