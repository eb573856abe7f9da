package usage

import (
	"context"
	"fmt"
	"time"

	"github.com/kailas-cloud/kidprint/internal/domain"
	domusage "github.com/kailas-cloud/kidprint/internal/domain/usage"
	"github.com/kailas-cloud/kidprint/internal/domain/usage/budget"
)

// Service handles usage reporting.
type Service struct {
	qr QuotaReader
}

// New creates a Service.
func New(qr QuotaReader) *Service {
	return &Service{qr: qr}
}

// GetReport builds the report for today, including all retained history.
func (s *Service) GetReport(ctx context.Context) domusage.Report {
	stats := s.qr.Stats(ctx)
	start, end := s.bounds(s.qr.Now())

	b := budget.New(stats.DailyLimit, stats.Remaining, !stats.CanPrint, end.UnixMilli())
	today := domusage.DayKey(start, s.qr.Location())
	return domusage.NewReport(today, start.UnixMilli(), end.UnixMilli(), stats.TodayCount, b, s.qr.History(ctx))
}

// GetDayReport builds the report for one calendar day (YYYY-MM-DD).
// Past days are measured against the current limit.
func (s *Service) GetDayReport(ctx context.Context, day string) (domusage.Report, error) {
	t, err := time.ParseInLocation(domusage.DayLayout, day, s.location())
	if err != nil {
		return domusage.Report{}, fmt.Errorf("%w: %q", domain.ErrInvalidDay, day)
	}

	if day == domusage.DayKey(s.qr.Now(), s.qr.Location()) {
		return s.GetReport(ctx), nil
	}

	count, ok := s.qr.CountFor(ctx, day)
	if !ok {
		return domusage.Report{}, fmt.Errorf("usage for %s: %w", day, domain.ErrNotFound)
	}

	limit := s.qr.Stats(ctx).DailyLimit
	remaining := limit - count
	if remaining < 0 {
		remaining = 0
	}
	start, end := s.bounds(t)
	b := budget.New(limit, remaining, count >= limit, end.UnixMilli())
	history := []domusage.Record{{Day: day, Count: count}}
	return domusage.NewReport(day, start.UnixMilli(), end.UnixMilli(), count, b, history), nil
}

// bounds returns the start of t's calendar day and the start of the next one.
func (s *Service) bounds(t time.Time) (time.Time, time.Time) {
	t = t.In(s.location())
	start := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
	return start, start.AddDate(0, 0, 1)
}

func (s *Service) location() *time.Location {
	if loc := s.qr.Location(); loc != nil {
		return loc
	}
	return time.Local
}
