package usage

import (
	"sort"
	"time"

	"github.com/kailas-cloud/kidprint/internal/domain/usage/budget"
)

// DayLayout is the calendar-day key format used in persisted state.
const DayLayout = "2006-01-02"

// DayKey returns the calendar day of t in loc.
func DayKey(t time.Time, loc *time.Location) string {
	if loc == nil {
		loc = time.Local
	}
	return t.In(loc).Format(DayLayout)
}

// Record is the print count for one calendar day.
type Record struct {
	Day   string `json:"day"`
	Count int    `json:"count"`
}

// State is the persisted quota document: one count per calendar day plus
// the day of the most recent rollover check.
type State struct {
	DailyCounts map[string]int `json:"daily_counts"`
	LastReset   string         `json:"last_reset"`
}

// NewState returns an empty state.
func NewState() State {
	return State{DailyCounts: make(map[string]int)}
}

// Normalize repairs a decoded state: nil map, negative counts and
// malformed day keys are dropped. Returns the number of dropped entries.
func (s *State) Normalize() int {
	if s.DailyCounts == nil {
		s.DailyCounts = make(map[string]int)
	}
	dropped := 0
	for day, count := range s.DailyCounts {
		if _, err := time.Parse(DayLayout, day); err != nil || count < 0 {
			delete(s.DailyCounts, day)
			dropped++
		}
	}
	if s.LastReset != "" {
		if _, err := time.Parse(DayLayout, s.LastReset); err != nil {
			s.LastReset = ""
		}
	}
	return dropped
}

// Clone returns a deep copy.
func (s State) Clone() State {
	c := State{DailyCounts: make(map[string]int, len(s.DailyCounts)), LastReset: s.LastReset}
	for k, v := range s.DailyCounts {
		c.DailyCounts[k] = v
	}
	return c
}

// Records returns the per-day counts ordered by day.
func (s State) Records() []Record {
	out := make([]Record, 0, len(s.DailyCounts))
	for day, count := range s.DailyCounts {
		out = append(out, Record{Day: day, Count: count})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Day < out[j].Day })
	return out
}

// Stats is a point-in-time view of today's quota.
type Stats struct {
	TodayCount int    `json:"today_count"`
	DailyLimit int    `json:"daily_limit"`
	Remaining  int    `json:"remaining"`
	CanPrint   bool   `json:"can_print"`
	LastReset  string `json:"last_reset"`
	TotalDays  int    `json:"total_days"`
}

// Report is the daily usage report served by the admin API.
type Report struct {
	day         string
	periodStart int64
	periodEnd   int64
	prints      int
	budget      budget.Budget
	history     []Record
}

// NewReport creates a usage report.
func NewReport(day string, start, end int64, prints int, b budget.Budget, history []Record) Report {
	return Report{
		day:         day,
		periodStart: start,
		periodEnd:   end,
		prints:      prints,
		budget:      b,
		history:     history,
	}
}

// Day returns the reported calendar day.
func (r *Report) Day() string { return r.day }

// PeriodStart returns the day start timestamp (unix millis).
func (r *Report) PeriodStart() int64 { return r.periodStart }

// PeriodEnd returns the day end timestamp (unix millis).
func (r *Report) PeriodEnd() int64 { return r.periodEnd }

// Prints returns the number of prints recorded for the day.
func (r *Report) Prints() int { return r.prints }

// Budget returns the quota status.
func (r *Report) Budget() budget.Budget { return r.budget }

// History returns all retained per-day records.
func (r *Report) History() []Record { return r.history }
