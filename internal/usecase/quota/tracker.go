// Package quota enforces the daily print limit.
package quota

import (
	"context"
	"sync"
	"time"

	"github.com/coder/quartz"
	"go.uber.org/zap"

	"github.com/kailas-cloud/kidprint/internal/domain"
	"github.com/kailas-cloud/kidprint/internal/domain/usage"
	"github.com/kailas-cloud/kidprint/internal/metrics"
)

// StateStore is the persistence interface for the quota document.
// Save receives the complete state and must replace what was stored.
type StateStore interface {
	Load(ctx context.Context) (usage.State, error)
	Save(ctx context.Context, state usage.State) error
}

// Option configures a Tracker.
type Option func(*Tracker)

// WithClock sets the clock used for day boundaries.
func WithClock(c quartz.Clock) Option {
	return func(t *Tracker) { t.clock = c }
}

// WithLocation sets the time zone that defines a calendar day. Defaults to time.Local.
func WithLocation(loc *time.Location) Option {
	return func(t *Tracker) {
		if loc != nil {
			t.loc = loc
		}
	}
}

// Tracker counts prints per calendar day with optional persistence.
// Every accessor runs the day-rollover check first. Mutations are flushed
// to the store synchronously while the lock is held; a failed flush is
// logged and the in-memory state stays authoritative.
type Tracker struct {
	mu     sync.Mutex
	limit  int
	state  usage.State
	store  StateStore
	clock  quartz.Clock
	loc    *time.Location
	logger *zap.Logger
}

// NewTracker creates a tracker with the given daily limit.
func NewTracker(limit int, logger *zap.Logger, opts ...Option) (*Tracker, error) {
	if limit <= 0 {
		return nil, domain.ErrInvalidLimit
	}
	t := &Tracker{
		limit:  limit,
		state:  usage.NewState(),
		clock:  quartz.NewReal(),
		loc:    time.Local,
		logger: logger,
	}
	for _, opt := range opts {
		opt(t)
	}
	return t, nil
}

// WithStore attaches a persistence store and loads the current state.
// An unreadable or corrupt store starts the tracker from an empty state.
func (t *Tracker) WithStore(ctx context.Context, store StateStore) *Tracker {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.store = store
	state, err := store.Load(ctx)
	if err != nil {
		metrics.QuotaStoreErrorsTotal.WithLabelValues("load").Inc()
		t.logger.Warn("Failed to load quota state, starting empty", zap.Error(err))
		state = usage.NewState()
	}
	if dropped := state.Normalize(); dropped > 0 {
		t.logger.Warn("Dropped invalid quota records", zap.Int("dropped", dropped))
	}
	t.state = state

	t.logger.Info("Quota loaded from store",
		zap.String("last_reset", t.state.LastReset),
		zap.Int("days", len(t.state.DailyCounts)),
	)
	return t
}

// TodayCount returns the number of prints recorded today.
func (t *Tracker) TodayCount(ctx context.Context) int {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.resetIfNeeded(ctx)
	return t.todayCount()
}

// CanPrint reports whether another print fits into today's limit.
func (t *Tracker) CanPrint(ctx context.Context) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.resetIfNeeded(ctx)
	count := t.todayCount()
	ok := count < t.limit
	t.logger.Debug("Print check",
		zap.Int("count", count),
		zap.Int("limit", t.limit),
		zap.Bool("allowed", ok),
	)
	return ok
}

// RecordPrint charges one print to today and returns the new count.
// Callers charge only after the print sink accepted the job.
func (t *Tracker) RecordPrint(ctx context.Context) int {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.resetIfNeeded(ctx)
	today := t.today()
	t.state.DailyCounts[today]++
	t.persist(ctx)

	count := t.state.DailyCounts[today]
	t.logger.Info("Print recorded", zap.Int("count", count), zap.Int("limit", t.limit))
	return count
}

// Remaining returns the prints left today, never negative.
func (t *Tracker) Remaining(ctx context.Context) int {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.resetIfNeeded(ctx)
	return t.remaining()
}

// SetDailyLimit changes the limit. Non-positive values are rejected.
func (t *Tracker) SetDailyLimit(n int) error {
	if n <= 0 {
		t.logger.Warn("Rejected daily limit", zap.Int("limit", n))
		return domain.ErrInvalidLimit
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	old := t.limit
	t.limit = n
	metrics.QuotaRemaining.Set(float64(t.remaining()))
	t.logger.Info("Daily limit updated", zap.Int("old", old), zap.Int("new", n))
	return nil
}

// DailyLimit returns the current limit.
func (t *Tracker) DailyLimit() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.limit
}

// CountFor returns the count recorded for day (YYYY-MM-DD).
// The second result is false when the day has no record.
func (t *Tracker) CountFor(ctx context.Context, day string) (int, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.resetIfNeeded(ctx)
	n, ok := t.state.DailyCounts[day]
	return n, ok
}

// History returns all retained per-day records ordered by day.
func (t *Tracker) History(ctx context.Context) []usage.Record {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.resetIfNeeded(ctx)
	return t.state.Records()
}

// Stats returns a snapshot of today's quota.
func (t *Tracker) Stats(ctx context.Context) usage.Stats {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.resetIfNeeded(ctx)
	count := t.todayCount()
	return usage.Stats{
		TodayCount: count,
		DailyLimit: t.limit,
		Remaining:  t.remaining(),
		CanPrint:   count < t.limit,
		LastReset:  t.state.LastReset,
		TotalDays:  len(t.state.DailyCounts),
	}
}

// Today returns the current calendar day key.
func (t *Tracker) Today() string {
	return t.today()
}

// Location returns the time zone of the day boundary.
func (t *Tracker) Location() *time.Location { return t.loc }

// Now returns the tracker clock's current time.
func (t *Tracker) Now() time.Time { return t.clock.Now() }

func (t *Tracker) today() string {
	return usage.DayKey(t.clock.Now(), t.loc)
}

func (t *Tracker) todayCount() int {
	return t.state.DailyCounts[t.today()]
}

func (t *Tracker) remaining() int {
	r := t.limit - t.todayCount()
	if r < 0 {
		return 0
	}
	return r
}

// resetIfNeeded advances LastReset when the calendar day changed.
// Earlier days keep their records. Caller holds mu.
func (t *Tracker) resetIfNeeded(ctx context.Context) {
	defer func() { metrics.QuotaRemaining.Set(float64(t.remaining())) }()

	today := t.today()
	if t.state.LastReset == today {
		return
	}

	t.logger.Info("New day detected",
		zap.String("was", t.state.LastReset),
		zap.String("now", today),
	)
	t.state.LastReset = today
	t.persist(ctx)
}

// persist flushes the state. Caller holds mu.
func (t *Tracker) persist(ctx context.Context) {
	if t.store == nil {
		return
	}
	if err := t.store.Save(ctx, t.state.Clone()); err != nil {
		metrics.QuotaStoreErrorsTotal.WithLabelValues("save").Inc()
		t.logger.Error("Failed to persist quota state", zap.Error(err))
	}
}
