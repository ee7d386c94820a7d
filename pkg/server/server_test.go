package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/dailytrending/trendwatch/internal/store"
	"github.com/dailytrending/trendwatch/pkg/pipeline"
)

type fakeStore struct {
	latest  *store.Run
	records []pipeline.TrendRecord
	runs    []store.Run
}

func (f *fakeStore) SaveRun(ctx context.Context, result *pipeline.Result) (int64, error) {
	return 0, nil
}

func (f *fakeStore) GetRun(ctx context.Context, id int64) (*store.Run, error) {
	return f.latest, nil
}

func (f *fakeStore) LatestRun(ctx context.Context) (*store.Run, error) {
	return f.latest, nil
}

func (f *fakeStore) ListRuns(ctx context.Context, opts store.RunListOpts) ([]store.Run, error) {
	return f.runs, nil
}

func (f *fakeStore) RunRecords(ctx context.Context, runID int64) ([]pipeline.TrendRecord, error) {
	return f.records, nil
}

func (f *fakeStore) PruneRuns(ctx context.Context, olderThan time.Time) (int64, error) {
	return 0, nil
}

func (f *fakeStore) Close() error { return nil }

func populatedStore() *fakeStore {
	return &fakeStore{
		latest: &store.Run{
			ID:         7,
			StartedAt:  time.Date(2026, time.August, 30, 6, 0, 0, 0, time.UTC),
			Total:      2,
			FreshRatio: 0.5,
			Warnings:   []string{"source devto skipped: timeout"},
		},
		records: []pipeline.TrendRecord{
			{ID: "a", Title: "First Story", Category: "news", Velocity: 60},
			{ID: "b", Title: "Second Story", Category: "tech", Velocity: 40},
		},
		runs: []store.Run{{ID: 7}, {ID: 6}},
	}
}

func get(t *testing.T, handler http.Handler, path string) map[string]any {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)
	require.Equal(t, http.StatusOK, rr.Code)

	var body map[string]any
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
	return body
}

func TestHealth(t *testing.T) {
	t.Parallel()

	body := get(t, New(&fakeStore{}, 0).Handler(), "/health")
	require.Equal(t, "ok", body["status"])
}

func TestTrendsLatestRun(t *testing.T) {
	t.Parallel()

	body := get(t, New(populatedStore(), 0).Handler(), "/api/v1/trends")
	require.Equal(t, float64(7), body["run_id"])
	require.Equal(t, float64(2), body["count"])
}

func TestTrendsEmptyArchive(t *testing.T) {
	t.Parallel()

	body := get(t, New(&fakeStore{}, 0).Handler(), "/api/v1/trends")
	require.Equal(t, float64(0), body["count"])
}

func TestTrendsLimitAndCategory(t *testing.T) {
	t.Parallel()

	handler := New(populatedStore(), 0).Handler()

	body := get(t, handler, "/api/v1/trends?limit=1")
	require.Equal(t, float64(1), body["count"])

	body = get(t, handler, "/api/v1/trends?category=tech")
	require.Equal(t, float64(1), body["count"])
	data := body["data"].([]any)
	first := data[0].(map[string]any)
	require.Equal(t, "Second Story", first["title"])

	// The category filter runs before the limit, so a tight limit does not
	// truncate away records the filter would have matched.
	body = get(t, handler, "/api/v1/trends?category=tech&limit=1")
	require.Equal(t, float64(1), body["count"])
	data = body["data"].([]any)
	first = data[0].(map[string]any)
	require.Equal(t, "Second Story", first["title"])
}

func TestRuns(t *testing.T) {
	t.Parallel()

	body := get(t, New(populatedStore(), 0).Handler(), "/api/v1/runs")
	require.Equal(t, float64(2), body["count"])
}

func TestSummary(t *testing.T) {
	t.Parallel()

	body := get(t, New(populatedStore(), 0).Handler(), "/api/v1/summary")
	require.Equal(t, float64(7), body["run_id"])
	require.Equal(t, false, body["aborted"])
	require.InDelta(t, 0.5, body["fresh_ratio"].(float64), 1e-9)
}

func TestMethodNotAllowed(t *testing.T) {
	t.Parallel()

	req := httptest.NewRequest(http.MethodPost, "/api/v1/trends", nil)
	rr := httptest.NewRecorder()
	New(&fakeStore{}, 0).Handler().ServeHTTP(rr, req)
	require.Equal(t, http.StatusMethodNotAllowed, rr.Code)
}
