package session

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/coder/quartz"
	"go.uber.org/goleak"
	"go.uber.org/zap"

	"github.com/kailas-cloud/kidprint/internal/domain"
	"github.com/kailas-cloud/kidprint/internal/usecase/command"
	"github.com/kailas-cloud/kidprint/internal/usecase/content"
	"github.com/kailas-cloud/kidprint/internal/usecase/quota"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

// --- Speech source ---

// scriptedSource returns the scripted results in order, then blocks until
// ctx is cancelled. drained is closed on the first call past the script.
type scriptedSource struct {
	mu      sync.Mutex
	results []domain.ListenResult
	calls   int
	drained chan struct{}
	once    sync.Once
}

func newScriptedSource(results ...domain.ListenResult) *scriptedSource {
	return &scriptedSource{results: results, drained: make(chan struct{})}
}

func (s *scriptedSource) Listen(ctx context.Context, _ time.Duration) domain.ListenResult {
	s.mu.Lock()
	if s.calls < len(s.results) {
		r := s.results[s.calls]
		s.calls++
		s.mu.Unlock()
		return r
	}
	s.mu.Unlock()

	s.once.Do(func() { close(s.drained) })
	<-ctx.Done()
	return domain.NoSpeech()
}

// funcSource delegates to a function.
type funcSource func(ctx context.Context) domain.ListenResult

func (f funcSource) Listen(ctx context.Context, _ time.Duration) domain.ListenResult {
	return f(ctx)
}

// --- Feedback sink ---

type recordingSink struct {
	mu     sync.Mutex
	events []domain.Feedback
}

func (r *recordingSink) Emit(_ context.Context, fb domain.Feedback) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, fb)
}

func (r *recordingSink) all() []domain.Feedback {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]domain.Feedback(nil), r.events...)
}

func (r *recordingSink) kinds() []domain.FeedbackKind {
	var out []domain.FeedbackKind
	for _, fb := range r.all() {
		out = append(out, fb.Kind)
	}
	return out
}

// --- Print sink ---

type fakePrinter struct {
	mu     sync.Mutex
	jobs   []domain.PrintJob
	err    error
	submit func(ctx context.Context, job domain.PrintJob) error
}

func (p *fakePrinter) Submit(ctx context.Context, job domain.PrintJob) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.submit != nil {
		if err := p.submit(ctx, job); err != nil {
			return err
		}
	}
	if p.err != nil {
		return p.err
	}
	p.jobs = append(p.jobs, job)
	return nil
}

func (p *fakePrinter) printed() []domain.PrintJob {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]domain.PrintJob(nil), p.jobs...)
}

// --- Spies ---

type spyQuota struct {
	inner QuotaStore
	mu    sync.Mutex
	calls int
}

func (s *spyQuota) touch() {
	s.mu.Lock()
	s.calls++
	s.mu.Unlock()
}

func (s *spyQuota) CanPrint(ctx context.Context) bool {
	s.touch()
	return s.inner.CanPrint(ctx)
}

func (s *spyQuota) RecordPrint(ctx context.Context) int {
	s.touch()
	return s.inner.RecordPrint(ctx)
}

func (s *spyQuota) Remaining(ctx context.Context) int {
	s.touch()
	return s.inner.Remaining(ctx)
}

func (s *spyQuota) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls
}

type spyGate struct {
	inner ContentGate
	mu    sync.Mutex
	calls int
}

func (s *spyGate) Check(text string) domain.Verdict {
	s.mu.Lock()
	s.calls++
	s.mu.Unlock()
	return s.inner.Check(text)
}

func (s *spyGate) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls
}

// --- Fixture ---

type fixture struct {
	ctrl    *Controller
	tracker *quota.Tracker
	quota   *spyQuota
	gate    *spyGate
	sink    *recordingSink
	printer *fakePrinter
	clock   *quartz.Mock
}

func newFixture(t *testing.T, limit int, source domain.SpeechSource) *fixture {
	t.Helper()
	clock := quartz.NewMock(t)

	tracker, err := quota.NewTracker(limit, zap.NewNop(), quota.WithClock(clock), quota.WithLocation(time.UTC))
	if err != nil {
		t.Fatalf("NewTracker: %v", err)
	}
	gate := content.New(content.Config{
		MaxLength:    200,
		MaxRepeat:    5,
		BlockedTerms: []string{"perkele", "helvetti", "saatana", "vittu", "jumalauta"},
	}, zap.NewNop())
	interpreter := command.New(
		[]string{"tulosta", "kirjoita", "piirtää", "kuva", "tee"},
		[]string{"kuva", "piirros"},
	)

	f := &fixture{
		tracker: tracker,
		quota:   &spyQuota{inner: tracker},
		gate:    &spyGate{inner: gate},
		sink:    &recordingSink{},
		printer: &fakePrinter{},
		clock:   clock,
	}
	if source == nil {
		source = newScriptedSource()
	}
	f.ctrl = New(
		Config{ListenTimeout: 5 * time.Second, RetryDelay: time.Second},
		f.quota, f.gate, interpreter,
		source, f.sink, f.printer,
		zap.NewNop(), WithClock(clock),
	)
	return f
}

func utter(text string) domain.Utterance {
	return domain.Utterance{Text: text, Language: domain.DefaultLanguage}
}
