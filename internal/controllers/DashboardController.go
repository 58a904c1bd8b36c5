package controllers

import (
	"fmt"
	"net/http"
	"time"

	json "github.com/goccy/go-json"

	"trainlog/internal/analytics"
	"trainlog/internal/providers"
	"trainlog/internal/services"
)

type DashboardController struct {
	logger    providers.Logger
	dashboard services.DashboardServiceInterface
	journal   services.JournalServiceInterface
	cache     providers.CacheProviderInterface
	now       func() time.Time
}

type skipsResponse struct {
	Period string                       `json:"period"`
	Total  int                          `json:"total"`
	Counts map[analytics.SkipReason]int `json:"counts"`
	Skips  []analytics.Skip             `json:"skips"`
}

func NewDashboardController(logger providers.Logger, dashboard services.DashboardServiceInterface, journal services.JournalServiceInterface, cache providers.CacheProviderInterface) *DashboardController {
	return &DashboardController{
		logger:    logger,
		dashboard: dashboard,
		journal:   journal,
		cache:     cache,
		now:       time.Now,
	}
}

// cacheKey changes whenever the journal is written to and at every minute
// boundary, so "today" and "this month" cannot go stale for long. User and
// period are quoted because both are client supplied and may contain ':'.
func (dc *DashboardController) cacheKey(kind, user, period string) string {
	return fmt.Sprintf("%s:%q:%q:%d:%d", kind, user, period, dc.journal.Revision(), dc.now().Unix()/60)
}

func (dc *DashboardController) period(r *http.Request) string {
	if p := r.URL.Query().Get("period"); p != "" {
		return p
	}
	return dc.dashboard.DefaultPeriod()
}

// serveFromCacheOrCompute caches the computed body unless compute reports a
// degraded result, so a failed read is not served after the store recovers.
func (dc *DashboardController) serveFromCacheOrCompute(w http.ResponseWriter, cacheKey string, compute func() (any, bool)) {
	if data, ok := dc.cache.Get(cacheKey); ok {
		writeRaw(w, http.StatusOK, data)
		return
	}

	body, degraded := compute()
	gson, err := json.Marshal(body)
	if err != nil {
		dc.logger.Errorf(providers.TypeAnalytics, "encode dashboard: %s", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	if !degraded {
		dc.cache.Set(cacheKey, gson)
	}
	writeRaw(w, http.StatusOK, gson)
}

func (dc *DashboardController) GetDashboard(w http.ResponseWriter, r *http.Request) {
	user := userFromRequest(r)
	if user == "" {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}
	period := dc.period(r)
	dc.serveFromCacheOrCompute(w, dc.cacheKey("dash", user, period), func() (any, bool) {
		report := dc.dashboard.GetDashboard(r.Context(), user, period)
		return report.Stats, report.Degraded
	})
}

func (dc *DashboardController) GetSkips(w http.ResponseWriter, r *http.Request) {
	user := userFromRequest(r)
	if user == "" {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}
	period := dc.period(r)
	dc.serveFromCacheOrCompute(w, dc.cacheKey("skips", user, period), func() (any, bool) {
		report := dc.dashboard.GetDashboard(r.Context(), user, period)
		return skipsResponse{
			Period: period,
			Total:  len(report.Skips),
			Counts: report.SkipCounts(),
			Skips:  report.Skips,
		}, report.Degraded
	})
}

func (dc *DashboardController) GetSummary(w http.ResponseWriter, r *http.Request) {
	user := userFromRequest(r)
	if user == "" {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}
	dc.serveFromCacheOrCompute(w, dc.cacheKey("summary", user, "all"), func() (any, bool) {
		summary := dc.dashboard.GetSummary(r.Context(), user)
		return summary, summary.Degraded
	})
}
