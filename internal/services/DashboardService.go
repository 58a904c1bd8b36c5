package services

import (
	"context"
	"fmt"
	"time"

	"trainlog/internal/analytics"
	"trainlog/internal/providers"
	"trainlog/internal/storage"
	"trainlog/internal/structures"
)

type DashboardServiceInterface interface {
	GetDashboard(ctx context.Context, userID, period string) analytics.Report
	GetSummary(ctx context.Context, userID string) analytics.Summary
	DefaultPeriod() string
}

// DashboardService loads a user's journal and runs the aggregation engine
// over it. It never fails: store errors and panics yield the empty report.
type DashboardService struct {
	store         storage.RecordStore
	engine        *analytics.Engine
	logger        providers.Logger
	metrics       providers.MetricsProviderInterface
	defaultPeriod string
	now           func() time.Time
}

func NewDashboardService(conf *structures.Config, store storage.RecordStore, logger providers.Logger, metrics providers.MetricsProviderInterface) DashboardServiceInterface {
	period := conf.Analytics.DefaultPeriod
	if period == "" {
		period = string(analytics.Period30Days)
	}
	return &DashboardService{
		store:         store,
		engine:        analytics.NewEngine(conf.Analytics.SubmissionKeywords, providers.Location(conf)),
		logger:        logger,
		metrics:       metrics,
		defaultPeriod: period,
		now:           time.Now,
	}
}

func (s *DashboardService) DefaultPeriod() string {
	return s.defaultPeriod
}

func (s *DashboardService) GetDashboard(ctx context.Context, userID, period string) (report analytics.Report) {
	if period == "" {
		period = s.defaultPeriod
	}
	start := time.Now()

	defer func() {
		if r := recover(); r != nil {
			s.logger.Errorf(providers.TypeAnalytics, "dashboard for user %s panicked: %v", userID, r)
			s.metrics.IncDashboardFailures()
			report = analytics.FailedReport()
		}
	}()

	snap, err := s.load(ctx, userID)
	if err != nil {
		s.logger.Errorf(providers.TypeAnalytics, "dashboard for user %s: %s", userID, err)
		s.metrics.IncDashboardFailures()
		return analytics.FailedReport()
	}

	report = s.engine.Compute(snap, userID, period, s.now())

	s.metrics.ObserveDashboardDuration(period, time.Since(start))
	for reason, n := range report.SkipCounts() {
		s.metrics.IncSkippedResponses(string(reason), n)
	}
	if len(report.Skips) > 0 {
		s.logger.Debugf(providers.TypeAnalytics, "user %s period %s: %d responses skipped", userID, period, len(report.Skips))
	}
	return report
}

// GetSummary returns the all-time widget summary. Like GetDashboard it
// degrades to a zero summary on failure.
func (s *DashboardService) GetSummary(ctx context.Context, userID string) (summary analytics.Summary) {
	defer func() {
		if r := recover(); r != nil {
			s.logger.Errorf(providers.TypeAnalytics, "summary for user %s panicked: %v", userID, r)
			s.metrics.IncDashboardFailures()
			summary = analytics.Summary{Degraded: true}
		}
	}()

	snap, err := s.load(ctx, userID)
	if err != nil {
		s.logger.Errorf(providers.TypeAnalytics, "summary for user %s: %s", userID, err)
		s.metrics.IncDashboardFailures()
		return analytics.Summary{Degraded: true}
	}
	return s.engine.Summarize(snap, userID, s.now())
}

func (s *DashboardService) load(ctx context.Context, userID string) (analytics.Snapshot, error) {
	questions, err := s.store.ListQuestions(ctx)
	if err != nil {
		return analytics.Snapshot{}, fmt.Errorf("list questions: %w", err)
	}
	entries, err := s.store.ListEntries(ctx, userID)
	if err != nil {
		return analytics.Snapshot{}, fmt.Errorf("list entries: %w", err)
	}
	responses, err := s.store.ListResponses(ctx, userID)
	if err != nil {
		return analytics.Snapshot{}, fmt.Errorf("list responses: %w", err)
	}
	return analytics.Snapshot{Questions: questions, Entries: entries, Responses: responses}, nil
}
