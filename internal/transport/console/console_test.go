package console

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/coder/quartz"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/kailas-cloud/kidprint/internal/domain"
	"github.com/kailas-cloud/kidprint/internal/domain/phrase"
)

func TestSource_ReadsLines(t *testing.T) {
	src := NewSource(strings.NewReader("tulosta kissa\n\n  Hei siellä  \n"), domain.DefaultLanguage, nil, zap.NewNop())
	ctx := context.Background()

	res := src.Listen(ctx, 5*time.Second)
	if res.Kind != domain.ListenUtterance || res.Utterance.Text != "tulosta kissa" {
		t.Fatalf("first listen = %+v", res)
	}
	if res.Utterance.Language != domain.DefaultLanguage {
		t.Errorf("language = %q", res.Utterance.Language)
	}

	if res := src.Listen(ctx, 5*time.Second); res.Kind != domain.ListenNoSpeech {
		t.Errorf("blank line: expected no_speech, got %s", res.Kind)
	}

	if res := src.Listen(ctx, 5*time.Second); res.Utterance.Text != "Hei siellä" {
		t.Errorf("expected trimmed text, got %q", res.Utterance.Text)
	}
}

func TestSource_TimeoutIsNoSpeech(t *testing.T) {
	pr, pw := io.Pipe()
	defer pw.Close()

	clock := quartz.NewMock(t)
	src := NewSource(pr, domain.DefaultLanguage, clock, zap.NewNop())

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	trap := clock.Trap().NewTimer("console", "listen")
	defer trap.Close()

	done := make(chan domain.ListenResult, 1)
	go func() { done <- src.Listen(ctx, 5*time.Second) }()

	trap.MustWait(ctx).MustRelease(ctx)
	clock.Advance(5 * time.Second).MustWait(ctx)

	select {
	case res := <-done:
		if res.Kind != domain.ListenNoSpeech {
			t.Errorf("expected no_speech, got %s", res.Kind)
		}
	case <-ctx.Done():
		t.Fatal("listen did not time out")
	}
}

func TestSource_CancelledIsNoSpeech(t *testing.T) {
	pr, pw := io.Pipe()
	defer pw.Close()

	src := NewSource(pr, domain.DefaultLanguage, nil, zap.NewNop())
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if res := src.Listen(ctx, time.Minute); res.Kind != domain.ListenNoSpeech {
		t.Errorf("expected no_speech, got %s", res.Kind)
	}
}

func TestSource_ReadErrorIsRecognitionFailure(t *testing.T) {
	pr, pw := io.Pipe()
	readErr := errors.New("tty gone")
	_ = pw.CloseWithError(readErr)

	src := NewSource(pr, domain.DefaultLanguage, nil, zap.NewNop())

	res := src.Listen(context.Background(), 5*time.Second)
	if res.Kind != domain.ListenFailed || !errors.Is(res.Err, readErr) {
		t.Errorf("expected failed with read error, got %+v", res)
	}
}

func TestLogSink_LogsPhrase(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	sink := NewLogSink(phrase.New(nil), zap.New(core))

	sink.Emit(context.Background(), domain.Feedback{
		Kind:      domain.FeedbackPrintAccepted,
		Remaining: 2,
		CycleID:   "c-1",
	})

	entries := logs.FilterMessage("Feedback").All()
	if len(entries) != 1 {
		t.Fatalf("expected 1 log entry, got %d", len(entries))
	}
	fields := entries[0].ContextMap()
	if fields["kind"] != "print_accepted" || fields["cycle_id"] != "c-1" {
		t.Errorf("unexpected fields: %v", fields)
	}
	if !strings.Contains(fields["text"].(string), "2 tulostusta") {
		t.Errorf("text = %q, want remaining announcement", fields["text"])
	}
}
