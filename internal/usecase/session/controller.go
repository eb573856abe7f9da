// Package session runs the listen, decide, print and feedback cycle.
package session

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/coder/quartz"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/kailas-cloud/kidprint/internal/domain"
	"github.com/kailas-cloud/kidprint/internal/logger"
	"github.com/kailas-cloud/kidprint/internal/metrics"
)

// Config holds the loop timings.
type Config struct {
	ListenTimeout time.Duration
	RetryDelay    time.Duration
}

// Option configures a Controller.
type Option func(*Controller)

// WithClock sets the clock used for the retry delay and cycle timing.
func WithClock(c quartz.Clock) Option {
	return func(ctrl *Controller) { ctrl.clock = c }
}

// Controller processes one utterance at a time.
// Quota is checked before content safety and charged only after the
// print sink accepted the job.
type Controller struct {
	cfg         Config
	quota       QuotaStore
	gate        ContentGate
	interpreter CommandInterpreter
	source      domain.SpeechSource
	feedback    domain.FeedbackSink
	printer     domain.PrintSink
	clock       quartz.Clock
	logger      *zap.Logger
	state       atomic.Int32
}

// New creates a Controller.
func New(
	cfg Config,
	quota QuotaStore, gate ContentGate, interpreter CommandInterpreter,
	source domain.SpeechSource, feedback domain.FeedbackSink, printer domain.PrintSink,
	logger *zap.Logger, opts ...Option,
) *Controller {
	c := &Controller{
		cfg:         cfg,
		quota:       quota,
		gate:        gate,
		interpreter: interpreter,
		source:      source,
		feedback:    feedback,
		printer:     printer,
		clock:       quartz.NewReal(),
		logger:      logger,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// State returns the current cycle state.
func (c *Controller) State() State {
	return State(c.state.Load())
}

func (c *Controller) setState(s State) {
	c.state.Store(int32(s))
}

// Run emits the welcome feedback and processes cycles until ctx is cancelled.
// Collaborator failures end the cycle, wait RetryDelay and continue.
func (c *Controller) Run(ctx context.Context) error {
	c.logger.Info("Session started",
		zap.Duration("listen_timeout", c.cfg.ListenTimeout),
		zap.Duration("retry_delay", c.cfg.RetryDelay),
	)
	c.feedback.Emit(ctx, domain.Feedback{Kind: domain.FeedbackWelcome, Remaining: c.quota.Remaining(ctx)})

	for {
		if ctx.Err() != nil {
			c.logger.Info("Session stopped")
			return nil
		}

		if _, err := c.Cycle(ctx); err != nil && ctx.Err() == nil {
			c.logger.Warn("Cycle failed, retrying", zap.Error(err), zap.Duration("delay", c.cfg.RetryDelay))
			c.wait(ctx, c.cfg.RetryDelay)
		}
	}
}

// wait blocks for d or until ctx is done. Returns false if ctx ended first.
func (c *Controller) wait(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return true
	}
	t := c.clock.NewTimer(d, "session", "retry")
	defer t.Stop()

	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}

// Cycle listens once and runs the result through the pipeline.
// It returns the context error if ctx was cancelled before a decision,
// and a non-nil error alongside DecisionFailed for collaborator failures.
func (c *Controller) Cycle(ctx context.Context) (domain.Decision, error) {
	cycleID := uuid.NewString()
	ctx, log := logger.WithCycle(ctx, c.logger, cycleID)
	start := c.clock.Now()
	defer func() {
		metrics.CycleDuration.Observe(c.clock.Since(start).Seconds())
	}()

	c.setState(StateListening)
	res := c.source.Listen(ctx, c.cfg.ListenTimeout)
	if ctx.Err() != nil {
		c.setState(StateIdle)
		log.Debug("Listen interrupted")
		return "", ctx.Err()
	}
	metrics.ListenTotal.WithLabelValues(res.Kind.String()).Inc()

	switch res.Kind {
	case domain.ListenNoSpeech:
		log.Debug("No speech detected")
		return c.finish(ctx, cycleID, domain.DecisionNoIntentDetected), nil
	case domain.ListenFailed:
		log.Warn("Speech recognition failed", zap.Error(res.Err))
		err := res.Err
		if err == nil {
			err = domain.ErrRecognitionFailed
		}
		return c.finish(ctx, cycleID, domain.DecisionFailed), fmt.Errorf("listen: %w", err)
	default:
		return c.process(ctx, cycleID, res.Utterance)
	}
}

// Process runs one utterance through the pipeline and emits its feedback.
func (c *Controller) Process(ctx context.Context, u domain.Utterance) domain.Decision {
	cycleID := uuid.NewString()
	ctx, _ = logger.WithCycle(ctx, c.logger, cycleID)
	d, _ := c.process(ctx, cycleID, u)
	return d
}

func (c *Controller) process(ctx context.Context, cycleID string, u domain.Utterance) (domain.Decision, error) {
	log := logger.FromContext(ctx)
	log.Info("Heard", zap.String("text", u.Text), zap.String("language", string(u.Language)))

	c.setState(StateInterpreting)
	cmd := c.interpreter.Interpret(u.Text)
	if !cmd.IsPrint() {
		return c.finish(ctx, cycleID, domain.DecisionNoIntentDetected), nil
	}

	c.setState(StateQuotaCheck)
	if !c.quota.CanPrint(ctx) {
		log.Info("Daily limit reached")
		return c.finish(ctx, cycleID, domain.DecisionQuotaExceeded), nil
	}

	c.setState(StateSafetyCheck)
	verdict := c.gate.Check(u.Text)
	if !verdict.Safe {
		metrics.ContentBlockedTotal.WithLabelValues(string(verdict.Reason)).Inc()
		log.Info("Content blocked", zap.String("reason", string(verdict.Reason)))
		return c.finish(ctx, cycleID, domain.DecisionContentBlocked), nil
	}

	c.setState(StateDispatching)
	job := domain.PrintJob{
		Text:    u.Text,
		Kind:    cmd.Kind,
		Title:   "kidprint-" + cycleID[:8],
		CycleID: cycleID,
	}
	if err := c.printer.Submit(ctx, job); err != nil {
		metrics.PrintsTotal.WithLabelValues("error").Inc()
		if ctx.Err() != nil {
			c.setState(StateIdle)
			log.Info("Print interrupted", zap.Error(err))
			return domain.DecisionFailed, ctx.Err()
		}
		log.Error("Print failed", zap.Error(err))
		return c.finish(ctx, cycleID, domain.DecisionFailed), fmt.Errorf("print: %w", err)
	}
	metrics.PrintsTotal.WithLabelValues("ok").Inc()

	// The job is out; the charge must survive a cancellation from here on.
	count := c.quota.RecordPrint(context.WithoutCancel(ctx))
	log.Info("Print accepted", zap.String("kind", string(job.Kind)), zap.Int("today", count))

	if ctx.Err() != nil {
		c.setState(StateIdle)
		metrics.DecisionsTotal.WithLabelValues(string(domain.DecisionPrintAccepted)).Inc()
		return domain.DecisionPrintAccepted, nil
	}
	return c.finish(ctx, cycleID, domain.DecisionPrintAccepted), nil
}

// finish emits the feedback for d and returns the controller to Idle.
func (c *Controller) finish(ctx context.Context, cycleID string, d domain.Decision) domain.Decision {
	metrics.DecisionsTotal.WithLabelValues(string(d)).Inc()

	fb := domain.Feedback{Kind: d.Feedback(), Remaining: -1, CycleID: cycleID}
	if d == domain.DecisionPrintAccepted || d == domain.DecisionQuotaExceeded {
		fb.Remaining = c.quota.Remaining(ctx)
	}

	c.setState(StateFeedbackEmitted)
	c.feedback.Emit(ctx, fb)
	c.setState(StateIdle)
	return d
}
