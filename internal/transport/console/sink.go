package console

import (
	"context"

	"go.uber.org/zap"

	"github.com/kailas-cloud/kidprint/internal/domain"
	"github.com/kailas-cloud/kidprint/internal/domain/phrase"
	"github.com/kailas-cloud/kidprint/internal/metrics"
)

// LogSink is a feedback sink that only logs the phrase the kiosk would speak.
type LogSink struct {
	catalog *phrase.Catalog
	logger  *zap.Logger
}

// NewLogSink creates a LogSink.
func NewLogSink(catalog *phrase.Catalog, logger *zap.Logger) *LogSink {
	return &LogSink{catalog: catalog, logger: logger}
}

// Emit implements domain.FeedbackSink.
func (s *LogSink) Emit(_ context.Context, fb domain.Feedback) {
	s.logger.Info("Feedback",
		zap.String("kind", string(fb.Kind)),
		zap.String("text", s.catalog.Text(fb)),
		zap.Int("remaining", fb.Remaining),
		zap.String("cycle_id", fb.CycleID),
	)
	metrics.FeedbackTotal.WithLabelValues(string(fb.Kind), "ok").Inc()
}
