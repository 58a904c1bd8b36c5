package analytics

import "trainlog/internal/models"

// Fixed keys of the rounds-by-session-type breakdown.
const (
	SessionGi   = "Gi"
	SessionNoGi = "No Gi"
	SessionBoth = "Both"
)

// Snapshot is the materialized input of one dashboard computation.
type Snapshot struct {
	Questions []models.Question
	Entries   []models.Entry
	Responses []models.Response
}

type MonthlyPoint struct {
	Month    string `json:"month"`
	Sessions int    `json:"sessions"`
}

type RPEPoint struct {
	Date string `json:"date"`
	RPE  int    `json:"rpe"`
}

type VolumePoint struct {
	Period    string `json:"week"`
	DateRange string `json:"date_range"`
	Rounds    int    `json:"rounds"`
	Sessions  int    `json:"sessions"`
}

type CorrelationPoint struct {
	RPE    int `json:"rpe"`
	Rounds int `json:"rounds"`
}

type DashboardStatistics struct {
	TotalSessions        int                `json:"total_sessions"`
	ThisMonth            int                `json:"this_month"`
	AvgRPE               float64            `json:"avg_rpe"`
	TotalRounds          int                `json:"total_rounds"`
	SessionTypes         map[string]int     `json:"session_types"`
	TrainingTypes        map[string]int     `json:"training_types"`
	Submissions          map[string]int     `json:"submissions"`
	Positions            map[string]int     `json:"positions"`
	RPEDistribution      map[int]int        `json:"rpe_distribution"`
	MonthlyTrend         []MonthlyPoint     `json:"monthly_trend"`
	RPETrend             []RPEPoint         `json:"rpe_trend"`
	WeeklyVolume         []VolumePoint      `json:"weekly_volume"`
	RoundsBySessionType  map[string]int     `json:"rounds_by_session_type"`
	RPERoundsCorrelation []CorrelationPoint `json:"rpe_rounds_correlation"`
}

// EmptyStatistics is the zero dashboard: every scalar is zero and every
// collection is empty but non-nil so it renders as {} or [].
func EmptyStatistics() DashboardStatistics {
	return DashboardStatistics{
		SessionTypes:         make(map[string]int),
		TrainingTypes:        make(map[string]int),
		Submissions:          make(map[string]int),
		Positions:            make(map[string]int),
		RPEDistribution:      make(map[int]int),
		MonthlyTrend:         make([]MonthlyPoint, 0),
		RPETrend:             make([]RPEPoint, 0),
		WeeklyVolume:         make([]VolumePoint, 0),
		RoundsBySessionType:  make(map[string]int),
		RPERoundsCorrelation: make([]CorrelationPoint, 0),
	}
}

type SkipReason string

const (
	SkipMissingQuestion   SkipReason = "missing_question"
	SkipMalformedRPE      SkipReason = "malformed_rpe"
	SkipMalformedRounds   SkipReason = "malformed_rounds"
	SkipTechniqueUnparsed SkipReason = "technique_unparsed"
)

// Skip records a response that was left out of the aggregate.
type Skip struct {
	ResponseID string     `json:"response_id"`
	EntryID    string     `json:"entry_id"`
	QuestionID string     `json:"question_id"`
	Answer     string     `json:"answer"`
	Reason     SkipReason `json:"reason"`
}

// Report is the result of one dashboard computation. Degraded marks the
// empty stand-in returned when the journal could not be read.
type Report struct {
	Stats    DashboardStatistics `json:"stats"`
	Skips    []Skip              `json:"skips"`
	Degraded bool                `json:"-"`
}

func EmptyReport() Report {
	return Report{Stats: EmptyStatistics(), Skips: make([]Skip, 0)}
}

// FailedReport is the empty report served when the journal cannot be read.
func FailedReport() Report {
	r := EmptyReport()
	r.Degraded = true
	return r
}

func (r Report) SkipCounts() map[SkipReason]int {
	counts := make(map[SkipReason]int)
	for _, s := range r.Skips {
		counts[s.Reason]++
	}
	return counts
}
