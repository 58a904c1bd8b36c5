package analytics

import (
	"fmt"
	"sort"
	"testing"
	"time"

	"trainlog/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Friday, 16 October 2026, noon UTC.
var testNow = time.Date(2026, time.October, 16, 12, 0, 0, 0, time.UTC)

const (
	qSession  = "q-session"
	qRPE      = "q-rpe"
	qTraining = "q-training"
	qTech     = "q-tech"
	qRounds   = "q-rounds"
	qNotes    = "q-notes"
)

type journalBuilder struct {
	snap Snapshot
	seq  int
}

// newJournal seeds the default questions without role tags so the label
// rules are exercised.
func newJournal() *journalBuilder {
	ids := []string{qSession, qRPE, qTraining, qTech, qRounds, qNotes}
	b := &journalBuilder{}
	for i, q := range models.DefaultQuestions()[:len(ids)] {
		q.ID = ids[i]
		q.Role = models.RoleNone
		b.snap.Questions = append(b.snap.Questions, q)
	}
	return b
}

func (b *journalBuilder) entry(user string, date time.Time, answers map[string]string) string {
	b.seq++
	id := fmt.Sprintf("e%d", b.seq)
	b.snap.Entries = append(b.snap.Entries, models.Entry{ID: id, UserID: user, Date: date, SessionType: models.DefaultSessionKind})

	keys := make([]string, 0, len(answers))
	for k := range answers {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, qid := range keys {
		b.snap.Responses = append(b.snap.Responses, models.Response{
			ID:         id + "-" + qid,
			EntryID:    id,
			QuestionID: qid,
			Answer:     answers[qid],
		})
	}
	return id
}

func daysAgo(n int) time.Time {
	return testNow.AddDate(0, 0, -n)
}

func newTestEngine() *Engine {
	return NewEngine(nil, time.UTC)
}

func TestCompute_EmptyInputEveryPeriod(t *testing.T) {
	e := newTestEngine()
	for _, p := range append(Periods, Period("bogus")) {
		r := e.Compute(Snapshot{}, "u1", string(p), testNow)
		assert.Equal(t, EmptyStatistics(), r.Stats, "period %s", p)
		assert.Empty(t, r.Skips)
	}
}

func TestCompute_EmptyWindowIsZeroed(t *testing.T) {
	b := newJournal()
	b.entry("u1", daysAgo(40), map[string]string{qRPE: "7", qRounds: "5"})

	r := newTestEngine().Compute(b.snap, "u1", "7d", testNow)
	assert.Equal(t, EmptyStatistics(), r.Stats)
}

func TestCompute_PeriodMonotonicity(t *testing.T) {
	b := newJournal()
	for _, d := range []int{1, 5, 10, 20, 40, 100, 200, 300, 400} {
		b.entry("u1", daysAgo(d), map[string]string{qRPE: "5"})
	}
	e := newTestEngine()

	counts := make(map[Period]int)
	for _, p := range Periods {
		counts[p] = e.Compute(b.snap, "u1", string(p), testNow).Stats.TotalSessions
	}

	assert.Equal(t, 2, counts[Period7Days])
	assert.Equal(t, 4, counts[Period30Days])
	assert.Equal(t, 6, counts[Period6Months])
	assert.Equal(t, 8, counts[Period1Year])
	assert.Equal(t, 9, counts[PeriodAll])
	assert.GreaterOrEqual(t, counts[PeriodAll], counts[Period1Year])
	assert.GreaterOrEqual(t, counts[Period1Year], counts[Period6Months])
	assert.GreaterOrEqual(t, counts[Period6Months], counts[Period30Days])
	assert.GreaterOrEqual(t, counts[Period30Days], counts[Period7Days])

	unknown := e.Compute(b.snap, "u1", "fortnight", testNow).Stats.TotalSessions
	assert.Equal(t, counts[PeriodAll], unknown)
}

func TestCompute_SkipOnMalformedRounds(t *testing.T) {
	b := newJournal()
	bad := b.entry("u1", daysAgo(2), map[string]string{qRPE: "5", qRounds: "abc"})
	b.entry("u1", daysAgo(1), map[string]string{qRPE: "6", qRounds: "4"})

	r := newTestEngine().Compute(b.snap, "u1", "30d", testNow)

	assert.Equal(t, 4, r.Stats.TotalRounds)
	assert.Equal(t, []CorrelationPoint{{RPE: 6, Rounds: 4}}, r.Stats.RPERoundsCorrelation)
	assert.Equal(t, 5.5, r.Stats.AvgRPE)
	require.Len(t, r.Skips, 1)
	assert.Equal(t, SkipMalformedRounds, r.Skips[0].Reason)
	assert.Equal(t, bad, r.Skips[0].EntryID)
	assert.Equal(t, "abc", r.Skips[0].Answer)
}

func TestCompute_SkipOnMalformedRPE(t *testing.T) {
	b := newJournal()
	b.entry("u1", daysAgo(2), map[string]string{qRPE: "hard", qRounds: "3"})
	b.entry("u1", daysAgo(1), map[string]string{qRPE: "8", qRounds: "2"})

	r := newTestEngine().Compute(b.snap, "u1", "30d", testNow)

	assert.Equal(t, 8.0, r.Stats.AvgRPE)
	assert.Equal(t, map[int]int{8: 1}, r.Stats.RPEDistribution)
	assert.Equal(t, 5, r.Stats.TotalRounds)
	assert.Equal(t, map[SkipReason]int{SkipMalformedRPE: 1}, r.SkipCounts())
}

func TestCompute_TechniqueSplit(t *testing.T) {
	b := newJournal()
	b.entry("u1", daysAgo(1), map[string]string{qTech: "Mount - Cross Collar Choke"})
	b.entry("u1", daysAgo(2), map[string]string{qTech: "Closed Guard - Armbar"})
	b.entry("u1", daysAgo(3), map[string]string{qTech: "Half Guard - Sweeps"})
	b.entry("u1", daysAgo(4), map[string]string{qTech: "Guard passing drills"})

	r := newTestEngine().Compute(b.snap, "u1", "30d", testNow)

	assert.Equal(t, map[string]int{"Mount": 1, "Closed Guard": 1, "Half Guard": 1}, r.Stats.Positions)
	assert.Equal(t, map[string]int{"Cross Collar Choke": 1, "Armbar": 1}, r.Stats.Submissions)
	assert.Equal(t, map[SkipReason]int{SkipTechniqueUnparsed: 1}, r.SkipCounts())
}

func TestCompute_TechniqueBlankHalvesStillCount(t *testing.T) {
	b := newJournal()
	b.entry("u1", daysAgo(1), map[string]string{qTech: "Mount - "})
	b.entry("u1", daysAgo(2), map[string]string{qTech: " - Armbar"})

	r := newTestEngine().Compute(b.snap, "u1", "30d", testNow)

	assert.Equal(t, map[string]int{"Mount": 1, "": 1}, r.Stats.Positions)
	assert.Equal(t, map[string]int{"Armbar": 1}, r.Stats.Submissions)
	assert.Empty(t, r.Skips)
}

func TestCompute_SubmissionKeysKeepLiteralText(t *testing.T) {
	b := newJournal()
	b.entry("u1", daysAgo(1), map[string]string{qTech: "Closed Guard - Armbar"})
	b.entry("u1", daysAgo(2), map[string]string{qTech: "Closed Guard - armbar"})

	r := newTestEngine().Compute(b.snap, "u1", "30d", testNow)

	assert.Equal(t, map[string]int{"Armbar": 1, "armbar": 1}, r.Stats.Submissions)
	assert.Equal(t, map[string]int{"Closed Guard": 2}, r.Stats.Positions)
}

func TestCompute_AverageRPE(t *testing.T) {
	tests := []struct {
		name    string
		answers []string
		want    float64
	}{
		{"whole", []string{"5", "7", "6"}, 6.0},
		{"rounded up", []string{"7", "8", "8"}, 7.7},
		{"rounded down", []string{"4", "4", "5"}, 4.3},
		{"single", []string{"9"}, 9.0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := newJournal()
			for i, a := range tt.answers {
				b.entry("u1", daysAgo(i+1), map[string]string{qRPE: a})
			}
			r := newTestEngine().Compute(b.snap, "u1", "30d", testNow)
			assert.Equal(t, tt.want, r.Stats.AvgRPE)
		})
	}
}

func TestCompute_NoRPEAnswersAverageZero(t *testing.T) {
	b := newJournal()
	b.entry("u1", daysAgo(1), map[string]string{qRounds: "6"})

	r := newTestEngine().Compute(b.snap, "u1", "30d", testNow)
	assert.Equal(t, 0.0, r.Stats.AvgRPE)
	assert.Empty(t, r.Stats.RPEDistribution)
	assert.Empty(t, r.Stats.RPETrend)
}

func TestCompute_RoundsBySessionTypeFixedKeys(t *testing.T) {
	b := newJournal()
	b.entry("u1", daysAgo(1), map[string]string{qSession: "No Gi", qRounds: "5"})
	b.entry("u1", daysAgo(2), map[string]string{qSession: "Drilling", qRounds: "3"})

	r := newTestEngine().Compute(b.snap, "u1", "30d", testNow)

	assert.Equal(t, map[string]int{SessionGi: 0, SessionNoGi: 5, SessionBoth: 0}, r.Stats.RoundsBySessionType)
	assert.Equal(t, map[string]int{"No Gi": 1, "Drilling": 1}, r.Stats.SessionTypes)
	assert.Equal(t, 8, r.Stats.TotalRounds)
}

func TestCompute_TrainingTypesHistogram(t *testing.T) {
	b := newJournal()
	b.entry("u1", daysAgo(1), map[string]string{qTraining: "Open Mat"})
	b.entry("u1", daysAgo(2), map[string]string{qTraining: "Open Mat"})
	b.entry("u1", daysAgo(3), map[string]string{qTraining: "Regular Class"})
	b.entry("u1", daysAgo(4), map[string]string{qTraining: ""})

	r := newTestEngine().Compute(b.snap, "u1", "30d", testNow)
	assert.Equal(t, map[string]int{"Open Mat": 2, "Regular Class": 1}, r.Stats.TrainingTypes)
}

func TestCompute_RPEDistribution(t *testing.T) {
	b := newJournal()
	for i, a := range []string{"5", "7", "7", " 9 "} {
		b.entry("u1", daysAgo(i+1), map[string]string{qRPE: a})
	}

	r := newTestEngine().Compute(b.snap, "u1", "30d", testNow)
	assert.Equal(t, map[int]int{5: 1, 7: 2, 9: 1}, r.Stats.RPEDistribution)
}

func TestCompute_MissingQuestionExcluded(t *testing.T) {
	b := newJournal()
	id := b.entry("u1", daysAgo(1), map[string]string{qRPE: "6"})
	b.snap.Responses = append(b.snap.Responses, models.Response{ID: "orphan", EntryID: id, QuestionID: "deleted", Answer: "9"})

	r := newTestEngine().Compute(b.snap, "u1", "30d", testNow)

	assert.Equal(t, 6.0, r.Stats.AvgRPE)
	require.Len(t, r.Skips, 1)
	assert.Equal(t, SkipMissingQuestion, r.Skips[0].Reason)
	assert.Equal(t, "orphan", r.Skips[0].ResponseID)
}

func TestCompute_RoleTagWinsOverLabel(t *testing.T) {
	b := newJournal()
	b.snap.Questions = append(b.snap.Questions, models.Question{ID: "q-effort", Label: "How hard was today?", Role: models.RoleRPE})
	b.entry("u1", daysAgo(1), map[string]string{"q-effort": "8", qNotes: "7"})

	r := newTestEngine().Compute(b.snap, "u1", "30d", testNow)
	assert.Equal(t, 8.0, r.Stats.AvgRPE)
	assert.Equal(t, map[int]int{8: 1}, r.Stats.RPEDistribution)
}

func TestCompute_OtherUsersIgnored(t *testing.T) {
	b := newJournal()
	b.entry("u1", daysAgo(1), map[string]string{qRounds: "4"})
	b.entry("u2", daysAgo(1), map[string]string{qRounds: "10"})

	r := newTestEngine().Compute(b.snap, "u1", "all", testNow)
	assert.Equal(t, 1, r.Stats.TotalSessions)
	assert.Equal(t, 4, r.Stats.TotalRounds)
}

func TestCompute_ThisMonthIndependentOfPeriod(t *testing.T) {
	b := newJournal()
	b.entry("u1", time.Date(2026, time.October, 2, 18, 0, 0, 0, time.UTC), nil)
	b.entry("u1", time.Date(2026, time.October, 14, 18, 0, 0, 0, time.UTC), nil)
	b.entry("u1", time.Date(2026, time.September, 30, 18, 0, 0, 0, time.UTC), nil)

	r := newTestEngine().Compute(b.snap, "u1", "7d", testNow)
	assert.Equal(t, 1, r.Stats.TotalSessions)
	assert.Equal(t, 2, r.Stats.ThisMonth)

	r = newTestEngine().Compute(b.snap, "u1", "this_month", testNow)
	assert.Equal(t, 2, r.Stats.TotalSessions)
	assert.Equal(t, 2, r.Stats.ThisMonth)
}

func TestCompute_RPETrendKeepsLastTen(t *testing.T) {
	b := newJournal()
	for day := 12; day >= 1; day-- {
		b.entry("u1", time.Date(2026, time.October, day, 19, 0, 0, 0, time.UTC), map[string]string{qRPE: fmt.Sprint(day % 10)})
	}
	b.entry("u1", time.Date(2026, time.October, 13, 19, 0, 0, 0, time.UTC), map[string]string{qRounds: "3"})

	r := newTestEngine().Compute(b.snap, "u1", "30d", testNow)

	require.Len(t, r.Stats.RPETrend, 10)
	assert.Equal(t, RPEPoint{Date: "03/10", RPE: 3}, r.Stats.RPETrend[0])
	assert.Equal(t, RPEPoint{Date: "12/10", RPE: 2}, r.Stats.RPETrend[9])
}

func TestCompute_TrendsAreChronological(t *testing.T) {
	b := newJournal()
	b.entry("u1", time.Date(2026, time.October, 16, 9, 0, 0, 0, time.UTC), map[string]string{qRounds: "5"})
	b.entry("u1", time.Date(2026, time.October, 10, 0, 0, 0, 0, time.UTC), map[string]string{qRounds: "3"})
	b.entry("u1", time.Date(2026, time.October, 9, 23, 0, 0, 0, time.UTC), map[string]string{qRounds: "2"})
	b.entry("u1", time.Date(2026, time.July, 4, 10, 0, 0, 0, time.UTC), nil)

	r := newTestEngine().Compute(b.snap, "u1", "30d", testNow)

	assert.Equal(t, []VolumePoint{
		{Period: "Week 1", DateRange: "19/09 - 25/09", Rounds: 0, Sessions: 0},
		{Period: "Week 2", DateRange: "26/09 - 02/10", Rounds: 0, Sessions: 0},
		{Period: "Week 3", DateRange: "03/10 - 09/10", Rounds: 2, Sessions: 1},
		{Period: "Week 4", DateRange: "10/10 - 16/10", Rounds: 8, Sessions: 2},
	}, r.Stats.WeeklyVolume)

	assert.Equal(t, []MonthlyPoint{
		{Month: "May 2026", Sessions: 0},
		{Month: "Jun 2026", Sessions: 0},
		{Month: "Jul 2026", Sessions: 1},
		{Month: "Aug 2026", Sessions: 0},
		{Month: "Sep 2026", Sessions: 0},
		{Month: "Oct 2026", Sessions: 3},
	}, r.Stats.MonthlyTrend)
}

func TestCompute_DailyVolumeForSevenDays(t *testing.T) {
	b := newJournal()
	b.entry("u1", time.Date(2026, time.October, 16, 7, 0, 0, 0, time.UTC), map[string]string{qRounds: "4"})
	b.entry("u1", time.Date(2026, time.October, 14, 20, 0, 0, 0, time.UTC), map[string]string{qRounds: "6"})

	r := newTestEngine().Compute(b.snap, "u1", "7d", testNow)

	require.Len(t, r.Stats.WeeklyVolume, 7)
	assert.Equal(t, VolumePoint{Period: "Sat", DateRange: "10/10"}, r.Stats.WeeklyVolume[0])
	assert.Equal(t, VolumePoint{Period: "Wed", DateRange: "14/10", Rounds: 6, Sessions: 1}, r.Stats.WeeklyVolume[4])
	assert.Equal(t, VolumePoint{Period: "Fri", DateRange: "16/10", Rounds: 4, Sessions: 1}, r.Stats.WeeklyVolume[6])
}

func TestCompute_CorrelationNeedsBothValues(t *testing.T) {
	b := newJournal()
	b.entry("u1", daysAgo(1), map[string]string{qRPE: "7", qRounds: "6"})
	b.entry("u1", daysAgo(2), map[string]string{qRPE: "4"})
	b.entry("u1", daysAgo(3), map[string]string{qRounds: "2"})
	b.entry("u1", daysAgo(4), map[string]string{qRPE: "3", qRounds: "0"})

	r := newTestEngine().Compute(b.snap, "u1", "30d", testNow)

	assert.Equal(t, []CorrelationPoint{{RPE: 3, Rounds: 0}, {RPE: 7, Rounds: 6}}, r.Stats.RPERoundsCorrelation)
}

func TestCompute_DoesNotMutateSnapshot(t *testing.T) {
	b := newJournal()
	b.entry("u1", daysAgo(1), map[string]string{qRPE: "7"})
	b.entry("u1", daysAgo(5), map[string]string{qRPE: "5"})
	first := b.snap.Entries[0].ID

	newTestEngine().Compute(b.snap, "u1", "30d", testNow)
	assert.Equal(t, first, b.snap.Entries[0].ID)
}
