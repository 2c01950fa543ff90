package web

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestVisitLog(t *testing.T) *VisitLog {
	t.Helper()
	v, err := OpenVisitLog(context.Background(), ":memory:", slog.New(slog.NewTextHandler(io.Discard, nil)))
	require.NoError(t, err)
	t.Cleanup(func() { v.Close() })
	return v
}

func TestVisitLogStats(t *testing.T) {
	v := openTestVisitLog(t)
	ctx := context.Background()
	now := time.Date(2026, 10, 18, 15, 0, 0, 0, time.UTC)

	record := func(at time.Time, ip string) {
		v.now = func() time.Time { return at }
		require.NoError(t, v.Record(ctx, ip, "test-agent", "/"))
	}
	record(now.Add(-time.Hour), "192.0.2.1")
	record(now.Add(-2*time.Hour), "192.0.2.1")
	record(now.Add(-20*time.Hour), "192.0.2.2")
	record(now.Add(-3*24*time.Hour), "192.0.2.3")
	record(now.Add(-30*24*time.Hour), "192.0.2.4")

	v.now = func() time.Time { return now }
	stats, err := v.Stats(ctx)
	require.NoError(t, err)

	assert.Equal(t, VisitStats{
		TotalVisits:    5,
		UniqueVisitors: 4,
		VisitsToday:    2,
		VisitsThisWeek: 4,
	}, stats)
}

func TestVisitLogEmptyStats(t *testing.T) {
	stats, err := openTestVisitLog(t).Stats(context.Background())
	require.NoError(t, err)
	assert.Equal(t, VisitStats{}, stats)
}

func TestVisitLogCleanup(t *testing.T) {
	v := openTestVisitLog(t)
	ctx := context.Background()
	now := time.Date(2026, 10, 18, 12, 0, 0, 0, time.UTC)

	v.now = func() time.Time { return now.AddDate(-2, 0, 0) }
	require.NoError(t, v.Record(ctx, "192.0.2.1", "", "/"))
	v.now = func() time.Time { return now }
	require.NoError(t, v.Record(ctx, "192.0.2.1", "", "/"))

	removed, err := v.Cleanup(ctx, visitRetention)
	require.NoError(t, err)
	assert.Equal(t, int64(1), removed)

	stats, err := v.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), stats.TotalVisits)
}

func TestHashIP(t *testing.T) {
	v := openTestVisitLog(t)

	h := v.hashIP("192.0.2.1")
	assert.Len(t, h, 16)
	assert.Equal(t, h, v.hashIP("192.0.2.1"))
	assert.NotEqual(t, h, v.hashIP("192.0.2.2"))
	assert.NotContains(t, h, "192")

	other := openTestVisitLog(t)
	assert.NotEqual(t, h, other.hashIP("192.0.2.1"), "salt is per process")
}

func TestVisitMiddleware(t *testing.T) {
	v := openTestVisitLog(t)
	h, err := NewHandler(Options{
		Source: staticSource(mustJSON(t, sampleDocument())),
		Visits: v,
		Logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	})
	require.NoError(t, err)

	send := func(path, remote string, dnt bool) {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		req.RemoteAddr = remote
		if dnt {
			req.Header.Set("DNT", "1")
		}
		h.ServeHTTP(httptest.NewRecorder(), req)
	}

	send("/", "192.0.2.1:1000", false)
	send("/", "192.0.2.1:1001", false)
	send("/", "192.0.2.2:1000", false)
	send("/", "192.0.2.3:1000", true)
	send("/sections", "192.0.2.4:1000", false)
	send("/static/css/site.css", "192.0.2.5:1000", false)
	send("/Portfolio.json", "192.0.2.6:1000", false)
	v.pending.Wait()

	rec := get(t, h, "/api/stats")
	require.Equal(t, http.StatusOK, rec.Code)

	var stats VisitStats
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &stats))
	assert.Equal(t, int64(3), stats.TotalVisits)
	assert.Equal(t, int64(2), stats.UniqueVisitors)
	assert.Equal(t, int64(3), stats.VisitsToday)
}

func TestVisitLogNeverStoresRawIP(t *testing.T) {
	v := openTestVisitLog(t)
	require.NoError(t, v.Record(context.Background(), "198.51.100.7", "agent", "/"))

	var stored string
	require.NoError(t, v.db.QueryRow(`SELECT hashed_ip FROM visits`).Scan(&stored))
	assert.NotEqual(t, "198.51.100.7", stored)
	assert.Equal(t, v.hashIP("198.51.100.7"), stored)
}
