package analytics

import (
	"fmt"
	"time"
)

type Period string

const (
	Period7Days     Period = "7d"
	Period30Days    Period = "30d"
	PeriodThisMonth Period = "this_month"
	Period6Months   Period = "6m"
	Period1Year     Period = "1y"
	PeriodAll       Period = "all"
)

// Periods lists the period keywords the dashboard understands.
var Periods = []Period{Period7Days, Period30Days, PeriodThisMonth, Period6Months, Period1Year, PeriodAll}

const (
	dayLayout   = "02/01"
	monthLayout = "Jan 2006"
)

// Window is the lower time bound selected by a period. An unbounded window
// admits every entry.
type Window struct {
	Start   time.Time
	Bounded bool
}

func NewWindow(period string, now time.Time) Window {
	switch Period(period) {
	case Period7Days:
		return Window{Start: now.AddDate(0, 0, -7), Bounded: true}
	case Period30Days:
		return Window{Start: now.AddDate(0, 0, -30), Bounded: true}
	case PeriodThisMonth:
		return Window{Start: startOfMonth(now), Bounded: true}
	case Period6Months:
		return Window{Start: now.AddDate(0, 0, -180), Bounded: true}
	case Period1Year:
		return Window{Start: now.AddDate(0, 0, -365), Bounded: true}
	default:
		return Window{}
	}
}

func (w Window) Contains(t time.Time) bool {
	return !w.Bounded || !t.Before(w.Start)
}

// Bucket is a half-open interval [Start, End) of a trend series.
type Bucket struct {
	Label     string
	DateRange string
	Start     time.Time
	End       time.Time
}

func (b Bucket) Contains(t time.Time) bool {
	return !t.Before(b.Start) && t.Before(b.End)
}

// VolumeBuckets returns the volume breakdown of a period, oldest first.
func VolumeBuckets(period string, now time.Time) []Bucket {
	switch Period(period) {
	case Period7Days:
		return dailyBuckets(7, now)
	case Period6Months:
		return MonthBuckets(6, now)
	case Period1Year:
		return MonthBuckets(12, now)
	default:
		return weeklyBuckets(4, now)
	}
}

func dailyBuckets(n int, now time.Time) []Bucket {
	today := startOfDay(now)
	buckets := make([]Bucket, 0, n)
	for i := 0; i < n; i++ {
		start := today.AddDate(0, 0, -i)
		buckets = append(buckets, Bucket{
			Label:     start.Format("Mon"),
			DateRange: start.Format(dayLayout),
			Start:     start,
			End:       start.AddDate(0, 0, 1),
		})
	}
	return chronological(buckets)
}

// weeklyBuckets are aligned on whole days so the newest week ends with today.
func weeklyBuckets(n int, now time.Time) []Bucket {
	tomorrow := startOfDay(now).AddDate(0, 0, 1)
	buckets := make([]Bucket, 0, n)
	for i := 0; i < n; i++ {
		end := tomorrow.AddDate(0, 0, -7*i)
		start := end.AddDate(0, 0, -7)
		buckets = append(buckets, Bucket{
			Label:     fmt.Sprintf("Week %d", n-i),
			DateRange: dateRange(start, end),
			Start:     start,
			End:       end,
		})
	}
	return chronological(buckets)
}

// MonthBuckets returns n calendar months ending with the month of now, oldest first.
func MonthBuckets(n int, now time.Time) []Bucket {
	current := startOfMonth(now)
	buckets := make([]Bucket, 0, n)
	for i := 0; i < n; i++ {
		start := current.AddDate(0, -i, 0)
		end := start.AddDate(0, 1, 0)
		buckets = append(buckets, Bucket{
			Label:     start.Format(monthLayout),
			DateRange: dateRange(start, end),
			Start:     start,
			End:       end,
		})
	}
	return chronological(buckets)
}

func dateRange(start, end time.Time) string {
	return start.Format(dayLayout) + " - " + end.AddDate(0, 0, -1).Format(dayLayout)
}

func chronological(buckets []Bucket) []Bucket {
	for i, j := 0, len(buckets)-1; i < j; i, j = i+1, j-1 {
		buckets[i], buckets[j] = buckets[j], buckets[i]
	}
	return buckets
}

func startOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

func startOfMonth(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, t.Location())
}

func sameMonth(a, b time.Time) bool {
	return a.Year() == b.Year() && a.Month() == b.Month()
}
