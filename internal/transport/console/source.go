// Package console provides a stdin speech source and a log-only feedback sink
// for running the kiosk without audio hardware.
package console

import (
	"bufio"
	"context"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/coder/quartz"
	"go.uber.org/zap"

	"github.com/kailas-cloud/kidprint/internal/domain"
)

// Source reads one utterance per input line.
// A blank line or no line within the timeout is NoSpeech. After EOF every
// Listen waits out its timeout and reports NoSpeech.
type Source struct {
	lines    chan string
	language domain.Language
	clock    quartz.Clock
	logger   *zap.Logger

	mu  sync.Mutex
	err error
}

// NewSource starts reading r in the background.
func NewSource(r io.Reader, language domain.Language, clock quartz.Clock, logger *zap.Logger) *Source {
	if clock == nil {
		clock = quartz.NewReal()
	}
	s := &Source{
		lines:    make(chan string),
		language: language,
		clock:    clock,
		logger:   logger,
	}
	go s.read(r)
	return s
}

func (s *Source) read(r io.Reader) {
	defer close(s.lines)

	sc := bufio.NewScanner(r)
	for sc.Scan() {
		s.lines <- sc.Text()
	}
	if err := sc.Err(); err != nil {
		s.mu.Lock()
		s.err = err
		s.mu.Unlock()
		s.logger.Warn("Console input failed", zap.Error(err))
		return
	}
	s.logger.Info("Console input closed")
}

// Listen implements domain.SpeechSource.
func (s *Source) Listen(ctx context.Context, timeout time.Duration) domain.ListenResult {
	t := s.clock.NewTimer(timeout, "console", "listen")
	defer t.Stop()

	select {
	case <-ctx.Done():
		return domain.NoSpeech()
	case <-t.C:
		return domain.NoSpeech()
	case line, ok := <-s.lines:
		if !ok {
			if err := s.readErr(); err != nil {
				return domain.RecognitionFailed(err)
			}
			return s.waitOut(ctx, t)
		}
		text := strings.TrimSpace(line)
		if text == "" {
			return domain.NoSpeech()
		}
		return domain.Heard(text, s.language)
	}
}

// waitOut blocks until the listen timer fires or ctx ends.
func (s *Source) waitOut(ctx context.Context, t *quartz.Timer) domain.ListenResult {
	select {
	case <-ctx.Done():
	case <-t.C:
	}
	return domain.NoSpeech()
}

func (s *Source) readErr() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.err
}
