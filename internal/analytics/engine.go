package analytics

import (
	"math"
	"sort"
	"strconv"
	"strings"
	"time"

	"trainlog/internal/models"
)

const (
	monthlyTrendSize = 6
	rpeTrendSize     = 10
)

// Engine folds a user's journal into dashboard statistics. It keeps no state
// between calls and may be shared by concurrent requests.
type Engine struct {
	parser   *TechniqueParser
	location *time.Location
}

// NewEngine builds an engine. Calendar boundaries (days, months) are taken in
// loc; a nil loc means time.Local.
func NewEngine(submissionKeywords []string, loc *time.Location) *Engine {
	if loc == nil {
		loc = time.Local
	}
	return &Engine{
		parser:   NewTechniqueParser(submissionKeywords),
		location: loc,
	}
}

// entryFacts holds the first parsed value of each per-entry answer.
type entryFacts struct {
	rpe         *int
	rounds      *int
	roundsSum   int
	sessionType string
}

type aggregation struct {
	stats     DashboardStatistics
	skips     []Skip
	facts     map[string]*entryFacts
	rpeSum    int
	rpeCount  int
	techParse *TechniqueParser
}

// Compute builds the dashboard of userID for period as seen at now.
func (e *Engine) Compute(snap Snapshot, userID, period string, now time.Time) Report {
	now = now.In(e.location)
	window := NewWindow(period, now)

	userEntries := make([]models.Entry, 0)
	windowed := make([]models.Entry, 0)
	for _, entry := range snap.Entries {
		if entry.UserID != userID {
			continue
		}
		userEntries = append(userEntries, entry)
		if window.Contains(entry.Date) {
			windowed = append(windowed, entry)
		}
	}
	if len(windowed) == 0 {
		return EmptyReport()
	}
	sortByDate(windowed)

	agg := &aggregation{
		stats:     EmptyStatistics(),
		skips:     make([]Skip, 0),
		facts:     make(map[string]*entryFacts, len(windowed)),
		techParse: e.parser,
	}
	for _, entry := range windowed {
		agg.facts[entry.ID] = &entryFacts{}
	}

	questions := make(map[string]*models.Question, len(snap.Questions))
	for i := range snap.Questions {
		questions[snap.Questions[i].ID] = &snap.Questions[i]
	}
	for _, r := range snap.Responses {
		facts, ok := agg.facts[r.EntryID]
		if !ok {
			continue
		}
		agg.addResponse(r, questions[r.QuestionID], facts)
	}

	agg.stats.TotalSessions = len(windowed)
	agg.stats.ThisMonth = e.countThisMonth(userEntries, now)
	if agg.rpeCount > 0 {
		agg.stats.AvgRPE = math.Round(float64(agg.rpeSum)/float64(agg.rpeCount)*10) / 10
	}
	agg.roundsBySessionType(windowed)
	agg.correlation(windowed)
	agg.rpeTrend(windowed, e.location)
	agg.stats.WeeklyVolume = agg.volume(windowed, VolumeBuckets(period, now))
	agg.stats.MonthlyTrend = monthlyTrend(userEntries, MonthBuckets(monthlyTrendSize, now))

	return Report{Stats: agg.stats, Skips: agg.skips}
}

func (a *aggregation) addResponse(r models.Response, q *models.Question, facts *entryFacts) {
	if q == nil {
		a.skip(r, SkipMissingQuestion)
		return
	}

	switch Classify(q) {
	case models.RoleRPE:
		v, ok := parseRPE(r.Answer)
		if !ok {
			a.skip(r, SkipMalformedRPE)
			return
		}
		a.rpeSum += v
		a.rpeCount++
		a.stats.RPEDistribution[v]++
		if facts.rpe == nil {
			facts.rpe = &v
		}
	case models.RoleRounds:
		v, ok := parseRounds(r.Answer)
		if !ok {
			a.skip(r, SkipMalformedRounds)
			return
		}
		a.stats.TotalRounds += v
		facts.roundsSum += v
		if facts.rounds == nil {
			facts.rounds = &v
		}
	case models.RoleSessionType:
		if strings.TrimSpace(r.Answer) == "" {
			return
		}
		a.stats.SessionTypes[r.Answer]++
		if facts.sessionType == "" {
			facts.sessionType = r.Answer
		}
	case models.RoleTrainingType:
		if strings.TrimSpace(r.Answer) == "" {
			return
		}
		a.stats.TrainingTypes[r.Answer]++
	case models.RoleTechnique:
		tech, ok := a.techParse.Parse(r.Answer)
		if !ok {
			a.skip(r, SkipTechniqueUnparsed)
			return
		}
		a.stats.Positions[tech.Position]++
		if tech.Submission {
			a.stats.Submissions[tech.Skill]++
		}
	}
}

func (a *aggregation) skip(r models.Response, reason SkipReason) {
	a.skips = append(a.skips, Skip{
		ResponseID: r.ID,
		EntryID:    r.EntryID,
		QuestionID: r.QuestionID,
		Answer:     r.Answer,
		Reason:     reason,
	})
}

func (a *aggregation) roundsBySessionType(entries []models.Entry) {
	breakdown := map[string]int{SessionGi: 0, SessionNoGi: 0, SessionBoth: 0}
	for _, entry := range entries {
		facts := a.facts[entry.ID]
		if facts.sessionType == "" || facts.rounds == nil {
			continue
		}
		if _, ok := breakdown[facts.sessionType]; ok {
			breakdown[facts.sessionType] += *facts.rounds
		}
	}
	a.stats.RoundsBySessionType = breakdown
}

func (a *aggregation) correlation(entries []models.Entry) {
	for _, entry := range entries {
		facts := a.facts[entry.ID]
		if facts.rpe == nil || facts.rounds == nil {
			continue
		}
		a.stats.RPERoundsCorrelation = append(a.stats.RPERoundsCorrelation, CorrelationPoint{
			RPE:    *facts.rpe,
			Rounds: *facts.rounds,
		})
	}
}

// rpeTrend expects entries in chronological order.
func (a *aggregation) rpeTrend(entries []models.Entry, loc *time.Location) {
	points := make([]RPEPoint, 0, len(entries))
	for _, entry := range entries {
		facts := a.facts[entry.ID]
		if facts.rpe == nil {
			continue
		}
		points = append(points, RPEPoint{
			Date: entry.Date.In(loc).Format(dayLayout),
			RPE:  *facts.rpe,
		})
	}
	if len(points) > rpeTrendSize {
		points = points[len(points)-rpeTrendSize:]
	}
	a.stats.RPETrend = points
}

func (a *aggregation) volume(entries []models.Entry, buckets []Bucket) []VolumePoint {
	points := make([]VolumePoint, 0, len(buckets))
	for _, b := range buckets {
		p := VolumePoint{Period: b.Label, DateRange: b.DateRange}
		for _, entry := range entries {
			if !b.Contains(entry.Date) {
				continue
			}
			p.Sessions++
			p.Rounds += a.facts[entry.ID].roundsSum
		}
		points = append(points, p)
	}
	return points
}

func monthlyTrend(entries []models.Entry, buckets []Bucket) []MonthlyPoint {
	points := make([]MonthlyPoint, 0, len(buckets))
	for _, b := range buckets {
		p := MonthlyPoint{Month: b.Label}
		for _, entry := range entries {
			if b.Contains(entry.Date) {
				p.Sessions++
			}
		}
		points = append(points, p)
	}
	return points
}

func (e *Engine) countThisMonth(entries []models.Entry, now time.Time) int {
	n := 0
	for _, entry := range entries {
		if sameMonth(entry.Date.In(e.location), now) {
			n++
		}
	}
	return n
}

func sortByDate(entries []models.Entry) {
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].Date.Before(entries[j].Date)
	})
}

func parseRPE(answer string) (int, bool) {
	v, err := strconv.Atoi(strings.TrimSpace(answer))
	if err != nil {
		return 0, false
	}
	return v, true
}

// parseRounds accepts unsigned decimal integers only.
func parseRounds(answer string) (int, bool) {
	s := strings.TrimSpace(answer)
	if s == "" {
		return 0, false
	}
	for _, c := range s {
		if c < '0' || c > '9' {
			return 0, false
		}
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return 0, false
	}
	return v, true
}
