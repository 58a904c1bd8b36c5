package analytics

import (
	"math"
	"time"

	"trainlog/internal/models"
)

const lastSessionLayout = "02/01/06"

// LastSession shows the raw answers of the most recent session. Missing
// answers fall back to "N/A" (rpe), "Training" (session type) and "0" (rounds).
type LastSession struct {
	Date         string `json:"date"`
	RPE          string `json:"rpe"`
	SessionType  string `json:"session_type"`
	TrainingType string `json:"training_type"`
	Rounds       string `json:"rounds"`
	Summary      string `json:"summary"`
}

// Summary is the compact all-time view used by small widgets.
type Summary struct {
	LastSession    *LastSession `json:"last_session"`
	WeeklySessions int          `json:"weekly_sessions"`
	CurrentStreak  int          `json:"current_streak"`
	AvgRPE         float64      `json:"avg_rpe"`
	PendingCount   int          `json:"pending_count"`
	Degraded       bool         `json:"-"`
}

// Summarize builds the widget summary over the user's completed entries.
// Pending entries are only counted in PendingCount. WeeklySessions counts
// entries from now-7d on; CurrentStreak counts consecutive calendar days
// with a session, ending today or yesterday.
func (e *Engine) Summarize(snap Snapshot, userID string, now time.Time) Summary {
	now = now.In(e.location)

	pending := 0
	entries := make([]models.Entry, 0)
	for _, entry := range snap.Entries {
		if entry.UserID != userID {
			continue
		}
		if entry.Pending {
			pending++
			continue
		}
		entries = append(entries, entry)
	}
	if len(entries) == 0 {
		return Summary{PendingCount: pending}
	}
	sortByDate(entries)

	owned := make(map[string]struct{}, len(entries))
	for _, entry := range entries {
		owned[entry.ID] = struct{}{}
	}
	questions := make(map[string]*models.Question, len(snap.Questions))
	for i := range snap.Questions {
		questions[snap.Questions[i].ID] = &snap.Questions[i]
	}

	latest := entries[len(entries)-1]
	last := &LastSession{
		Date:        latest.Date.In(e.location).Format(lastSessionLayout),
		RPE:         "N/A",
		SessionType: "Training",
		Rounds:      "0",
	}
	seen := make(map[models.Role]bool)
	rpeSum, rpeCount := 0, 0

	for _, r := range snap.Responses {
		if _, ok := owned[r.EntryID]; !ok {
			continue
		}
		role := Classify(questions[r.QuestionID])
		if role == models.RoleRPE {
			if v, ok := parseRPE(r.Answer); ok {
				rpeSum += v
				rpeCount++
			}
		}
		if r.EntryID != latest.ID || seen[role] {
			continue
		}
		seen[role] = true
		switch role {
		case models.RoleRPE:
			last.RPE = r.Answer
		case models.RoleSessionType:
			last.SessionType = r.Answer
		case models.RoleTrainingType:
			last.TrainingType = r.Answer
		case models.RoleRounds:
			last.Rounds = r.Answer
		case models.RoleSummary:
			last.Summary = r.Answer
		}
	}

	summary := Summary{
		LastSession:    last,
		WeeklySessions: countSince(entries, now.AddDate(0, 0, -7)),
		CurrentStreak:  e.streak(entries, now),
		PendingCount:   pending,
	}
	if rpeCount > 0 {
		summary.AvgRPE = math.Round(float64(rpeSum)/float64(rpeCount)*10) / 10
	}
	return summary
}

func countSince(entries []models.Entry, start time.Time) int {
	n := 0
	for _, entry := range entries {
		if !entry.Date.Before(start) {
			n++
		}
	}
	return n
}

// streak expects entries in chronological order.
func (e *Engine) streak(entries []models.Entry, now time.Time) int {
	days := make(map[time.Time]struct{}, len(entries))
	for _, entry := range entries {
		days[startOfDay(entry.Date.In(e.location))] = struct{}{}
	}

	day := startOfDay(now)
	if _, ok := days[day]; !ok {
		day = day.AddDate(0, 0, -1)
	}
	n := 0
	for {
		if _, ok := days[day]; !ok {
			return n
		}
		n++
		day = day.AddDate(0, 0, -1)
	}
}
