package controllers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"trainlog/internal/analytics"
	"trainlog/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestDashboardController(dash *mockDashboard, journal *mockJournal, cache *testutil.MockCache) *DashboardController {
	dc := NewDashboardController(&testutil.MockLogger{}, dash, journal, cache)
	dc.now = func() time.Time { return fixedNow }
	return dc
}

func sampleReport() analytics.Report {
	report := analytics.EmptyReport()
	report.Stats.TotalSessions = 3
	report.Stats.AvgRPE = 6.5
	report.Stats.RPEDistribution[7] = 2
	report.Skips = append(report.Skips,
		analytics.Skip{ResponseID: "r1", EntryID: "e1", QuestionID: "q1", Answer: "hard", Reason: analytics.SkipMalformedRPE},
		analytics.Skip{ResponseID: "r2", EntryID: "e1", QuestionID: "gone", Answer: "x", Reason: analytics.SkipMissingQuestion},
	)
	return report
}

func TestGetDashboard_RequiresUser(t *testing.T) {
	dash := &mockDashboard{report: sampleReport()}
	dc := newTestDashboardController(dash, &mockJournal{}, testutil.NewMockCache())

	rr := httptest.NewRecorder()
	dc.GetDashboard(rr, httptest.NewRequest(http.MethodGet, "/analytics/dashboard", nil))

	assert.Equal(t, http.StatusUnauthorized, rr.Code)
	assert.Equal(t, 0, dash.calls)
}

func TestGetDashboard_ReturnsStats(t *testing.T) {
	dash := &mockDashboard{report: sampleReport()}
	dc := newTestDashboardController(dash, &mockJournal{}, testutil.NewMockCache())

	req := httptest.NewRequest(http.MethodGet, "/analytics/dashboard?period=7d", nil)
	req.Header.Set("X-User-ID", "u1")
	rr := httptest.NewRecorder()
	dc.GetDashboard(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "application/json", rr.Header().Get("Content-Type"))
	assert.Equal(t, []string{"7d"}, dash.periods)

	var body map[string]any
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
	assert.Equal(t, float64(3), body["total_sessions"])
	assert.Equal(t, 6.5, body["avg_rpe"])
	assert.Equal(t, map[string]any{"7": float64(2)}, body["rpe_distribution"])
	assert.Equal(t, []any{}, body["weekly_volume"])
	assert.NotContains(t, body, "skips")
}

func TestGetDashboard_DefaultPeriod(t *testing.T) {
	dash := &mockDashboard{report: sampleReport()}
	dc := newTestDashboardController(dash, &mockJournal{}, testutil.NewMockCache())

	rr := httptest.NewRecorder()
	dc.GetDashboard(rr, httptest.NewRequest(http.MethodGet, "/analytics/dashboard?user=u1", nil))

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, []string{"30d"}, dash.periods)
}

func TestGetDashboard_ServedFromCache(t *testing.T) {
	dash := &mockDashboard{report: sampleReport()}
	cache := testutil.NewMockCache()
	dc := newTestDashboardController(dash, &mockJournal{revision: 4}, cache)

	for i := 0; i < 3; i++ {
		rr := httptest.NewRecorder()
		dc.GetDashboard(rr, httptest.NewRequest(http.MethodGet, "/analytics/dashboard?user=u1&period=6m", nil))
		assert.Equal(t, http.StatusOK, rr.Code)
	}

	assert.Equal(t, 1, dash.calls)
	_, ok := cache.Get(`dash:"u1":"6m":4:29869200`)
	assert.True(t, ok)
}

func TestGetDashboard_RevisionInvalidatesCache(t *testing.T) {
	dash := &mockDashboard{report: sampleReport()}
	journal := &mockJournal{}
	dc := newTestDashboardController(dash, journal, testutil.NewMockCache())

	req := func() {
		rr := httptest.NewRecorder()
		dc.GetDashboard(rr, httptest.NewRequest(http.MethodGet, "/analytics/dashboard?user=u1", nil))
	}
	req()
	journal.revision++
	req()

	assert.Equal(t, 2, dash.calls)
}

func TestGetDashboard_CacheIsPerUser(t *testing.T) {
	dash := &mockDashboard{report: sampleReport()}
	dc := newTestDashboardController(dash, &mockJournal{}, testutil.NewMockCache())

	for _, user := range []string{"u1", "u2"} {
		rr := httptest.NewRecorder()
		dc.GetDashboard(rr, httptest.NewRequest(http.MethodGet, "/analytics/dashboard?user="+user, nil))
	}
	assert.Equal(t, 2, dash.calls)
}

func TestGetSkips_ReturnsDiagnostics(t *testing.T) {
	dash := &mockDashboard{report: sampleReport()}
	dc := newTestDashboardController(dash, &mockJournal{}, testutil.NewMockCache())

	req := httptest.NewRequest(http.MethodGet, "/analytics/skips?period=all", nil)
	req.Header.Set("X-User-ID", "u1")
	rr := httptest.NewRecorder()
	dc.GetSkips(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)
	var body skipsResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
	assert.Equal(t, "all", body.Period)
	assert.Equal(t, 2, body.Total)
	assert.Equal(t, 1, body.Counts[analytics.SkipMalformedRPE])
	assert.Equal(t, 1, body.Counts[analytics.SkipMissingQuestion])
	require.Len(t, body.Skips, 2)
	assert.Equal(t, "hard", body.Skips[0].Answer)
}

func TestGetSkips_RequiresUser(t *testing.T) {
	dc := newTestDashboardController(&mockDashboard{}, &mockJournal{}, testutil.NewMockCache())

	rr := httptest.NewRecorder()
	dc.GetSkips(rr, httptest.NewRequest(http.MethodGet, "/analytics/skips", nil))
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
}

func TestDashboardAndSkipsUseSeparateCacheKeys(t *testing.T) {
	dash := &mockDashboard{report: sampleReport()}
	dc := newTestDashboardController(dash, &mockJournal{}, testutil.NewMockCache())

	rr := httptest.NewRecorder()
	dc.GetDashboard(rr, httptest.NewRequest(http.MethodGet, "/analytics/dashboard?user=u1", nil))
	rr = httptest.NewRecorder()
	dc.GetSkips(rr, httptest.NewRequest(http.MethodGet, "/analytics/skips?user=u1", nil))

	var body skipsResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
	assert.Equal(t, 2, body.Total)
	assert.Equal(t, 2, dash.calls)
}

func TestGetSummary_ReturnsWidgetFields(t *testing.T) {
	dash := &mockDashboard{summary: analytics.Summary{
		LastSession:    &analytics.LastSession{Date: "15/10/26", RPE: "7", SessionType: "Gi", Rounds: "5"},
		WeeklySessions: 3,
		CurrentStreak:  2,
		AvgRPE:         6.5,
	}}
	cache := testutil.NewMockCache()
	dc := newTestDashboardController(dash, &mockJournal{revision: 1}, cache)

	for i := 0; i < 2; i++ {
		rr := httptest.NewRecorder()
		dc.GetSummary(rr, httptest.NewRequest(http.MethodGet, "/analytics/summary?user=u1", nil))
		require.Equal(t, http.StatusOK, rr.Code)

		var body map[string]any
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
		assert.Equal(t, float64(3), body["weekly_sessions"])
		assert.Equal(t, float64(2), body["current_streak"])
		assert.Equal(t, "15/10/26", body["last_session"].(map[string]any)["date"])
	}

	assert.Equal(t, 1, dash.calls)
	_, ok := cache.Get(`summary:"u1":"all":1:29869200`)
	assert.True(t, ok)
}

func TestGetSummary_EmptyJournal(t *testing.T) {
	dc := newTestDashboardController(&mockDashboard{}, &mockJournal{}, testutil.NewMockCache())

	rr := httptest.NewRecorder()
	dc.GetSummary(rr, httptest.NewRequest(http.MethodGet, "/analytics/summary?user=u1", nil))

	require.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"last_session":null,"weekly_sessions":0,"current_streak":0,"avg_rpe":0,"pending_count":0}`, rr.Body.String())
}

func TestGetSummary_RequiresUser(t *testing.T) {
	dc := newTestDashboardController(&mockDashboard{}, &mockJournal{}, testutil.NewMockCache())

	rr := httptest.NewRecorder()
	dc.GetSummary(rr, httptest.NewRequest(http.MethodGet, "/analytics/summary", nil))
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
}

func TestCacheKey_ColonsCannotCollide(t *testing.T) {
	dc := newTestDashboardController(&mockDashboard{}, &mockJournal{}, testutil.NewMockCache())

	assert.NotEqual(t, dc.cacheKey("dash", "alice:7d", "x"), dc.cacheKey("dash", "alice", "7d:x"))
}

func TestGetDashboard_ColonUserServedOwnReport(t *testing.T) {
	dash := &mockDashboard{report: sampleReport()}
	dc := newTestDashboardController(dash, &mockJournal{}, testutil.NewMockCache())

	rr := httptest.NewRecorder()
	dc.GetDashboard(rr, httptest.NewRequest(http.MethodGet, "/analytics/dashboard?user=alice&period=7d:x", nil))
	rr = httptest.NewRecorder()
	dc.GetDashboard(rr, httptest.NewRequest(http.MethodGet, "/analytics/dashboard?user=alice:7d&period=x", nil))

	assert.Equal(t, 2, dash.calls)
}

func TestGetDashboard_DegradedReportNotCached(t *testing.T) {
	dash := &mockDashboard{report: analytics.FailedReport()}
	cache := testutil.NewMockCache()
	dc := newTestDashboardController(dash, &mockJournal{}, cache)

	for i := 0; i < 2; i++ {
		rr := httptest.NewRecorder()
		dc.GetDashboard(rr, httptest.NewRequest(http.MethodGet, "/analytics/dashboard?user=u1", nil))
		require.Equal(t, http.StatusOK, rr.Code)
	}

	assert.Equal(t, 2, dash.calls)
	assert.Empty(t, cache.Data)

	dash.report = sampleReport()
	rr := httptest.NewRecorder()
	dc.GetDashboard(rr, httptest.NewRequest(http.MethodGet, "/analytics/dashboard?user=u1", nil))

	var body map[string]any
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
	assert.Equal(t, float64(3), body["total_sessions"])
	assert.Len(t, cache.Data, 1)
}

func TestGetSummary_DegradedSummaryNotCached(t *testing.T) {
	dash := &mockDashboard{summary: analytics.Summary{Degraded: true}}
	cache := testutil.NewMockCache()
	dc := newTestDashboardController(dash, &mockJournal{}, cache)

	rr := httptest.NewRecorder()
	dc.GetSummary(rr, httptest.NewRequest(http.MethodGet, "/analytics/summary?user=u1", nil))

	require.Equal(t, http.StatusOK, rr.Code)
	assert.NotContains(t, rr.Body.String(), "Degraded")
	assert.Empty(t, cache.Data)
}
