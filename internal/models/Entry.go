package models

import "time"

// DefaultSessionKind is the session tag stored when the client does not send one.
const DefaultSessionKind = "training"

// Entry is one logged session. Entries created from a watch activity start
// out Pending and carry the activity figures until the athlete completes
// the journal for them.
type Entry struct {
	ID              string    `json:"id"`
	UserID          string    `json:"user_id"`
	Date            time.Time `json:"date"`
	SessionType     string    `json:"session_type"`
	CreatedAt       time.Time `json:"created_at"`
	Pending         bool      `json:"is_pending"`
	ActivityID      string    `json:"activity_id,omitempty"`
	DurationMinutes int       `json:"duration_minutes,omitempty"`
	Calories        int       `json:"calories_burned,omitempty"`
	AvgHeartRate    int       `json:"avg_heart_rate,omitempty"`
	MaxHeartRate    int       `json:"max_heart_rate,omitempty"`
}
