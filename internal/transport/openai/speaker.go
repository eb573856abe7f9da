package openai

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"path/filepath"
	"sync"
	"time"

	openai "github.com/sashabaranov/go-openai"
	"github.com/spf13/afero"
	"go.uber.org/zap"

	"github.com/kailas-cloud/kidprint/internal/domain"
	"github.com/kailas-cloud/kidprint/internal/domain/phrase"
	"github.com/kailas-cloud/kidprint/internal/metrics"
	"github.com/kailas-cloud/kidprint/internal/transport/alsa"
)

// Player plays encoded audio.
type Player interface {
	Play(ctx context.Context, audio []byte, format alsa.Format) error
}

// SpeakerConfig holds the text-to-speech settings.
type SpeakerConfig struct {
	APIKey    string
	BaseURL   string
	Model     string
	Voice     string
	Speed     float64
	AssetsDir string // optional recorded clips named <kind>.wav
	Fs        afero.Fs
	Catalog   *phrase.Catalog
	Logger    *zap.Logger
}

// Speaker is a feedback sink that speaks Finnish phrases.
// A recorded clip in the assets directory replaces the synthesized message;
// remaining-print announcements are always synthesized.
// Synthesized audio is cached by text for the process lifetime.
type Speaker struct {
	client    *openai.Client
	model     openai.SpeechModel
	voice     openai.SpeechVoice
	speed     float64
	assetsDir string
	fs        afero.Fs
	catalog   *phrase.Catalog
	player    Player
	logger    *zap.Logger

	mu    sync.Mutex
	cache map[string][]byte
}

// NewSpeaker creates a Speaker playing through player.
func NewSpeaker(cfg *SpeakerConfig, player Player) *Speaker {
	fsys := cfg.Fs
	if fsys == nil {
		fsys = afero.NewOsFs()
	}
	catalog := cfg.Catalog
	if catalog == nil {
		catalog = phrase.New(nil)
	}
	return &Speaker{
		client:    newClient(cfg.APIKey, cfg.BaseURL),
		model:     openai.SpeechModel(cfg.Model),
		voice:     openai.SpeechVoice(cfg.Voice),
		speed:     cfg.Speed,
		assetsDir: cfg.AssetsDir,
		fs:        fsys,
		catalog:   catalog,
		player:    player,
		logger:    cfg.Logger,
		cache:     make(map[string][]byte),
	}
}

// Emit implements domain.FeedbackSink. Failures are logged and counted.
func (s *Speaker) Emit(ctx context.Context, fb domain.Feedback) {
	if err := s.speak(ctx, fb); err != nil {
		metrics.FeedbackTotal.WithLabelValues(string(fb.Kind), "error").Inc()
		s.logger.Warn("Failed to play feedback",
			zap.String("kind", string(fb.Kind)),
			zap.String("cycle_id", fb.CycleID),
			zap.Error(err),
		)
		return
	}
	metrics.FeedbackTotal.WithLabelValues(string(fb.Kind), "ok").Inc()
}

func (s *Speaker) speak(ctx context.Context, fb domain.Feedback) error {
	clip, err := s.asset(fb.Kind)
	if err != nil {
		return err
	}
	if clip != nil {
		if err := s.player.Play(ctx, clip, alsa.FormatWAV); err != nil {
			return err
		}
	} else if err := s.say(ctx, s.catalog.Message(fb.Kind)); err != nil {
		return err
	}

	if a := s.catalog.Announcement(fb); a != "" {
		return s.say(ctx, a)
	}
	return nil
}

// asset returns the recorded clip for kind, or nil if there is none.
func (s *Speaker) asset(kind domain.FeedbackKind) ([]byte, error) {
	if s.assetsDir == "" {
		return nil, nil
	}
	path := filepath.Join(s.assetsDir, string(kind)+".wav")
	data, err := afero.ReadFile(s.fs, path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("read clip %s: %w", path, err)
	}
	return data, nil
}

func (s *Speaker) say(ctx context.Context, text string) error {
	audio, err := s.synthesize(ctx, text)
	if err != nil {
		return err
	}
	return s.player.Play(ctx, audio, alsa.FormatMP3)
}

func (s *Speaker) synthesize(ctx context.Context, text string) ([]byte, error) {
	s.mu.Lock()
	cached, ok := s.cache[text]
	s.mu.Unlock()
	if ok {
		return cached, nil
	}

	req := openai.CreateSpeechRequest{
		Model:          s.model,
		Input:          text,
		Voice:          s.voice,
		ResponseFormat: openai.SpeechResponseFormatMp3,
		Speed:          s.speed,
	}

	start := time.Now()
	resp, err := s.client.CreateSpeech(ctx, req)
	if err != nil {
		metrics.OpenAIRequestsTotal.WithLabelValues("speech", "error").Inc()
		return nil, parseAPIError(err, domain.ErrSynthesisFailed)
	}
	defer resp.Close()

	audio, err := io.ReadAll(resp)
	metrics.OpenAIRequestDuration.WithLabelValues("speech").Observe(time.Since(start).Seconds())
	if err != nil {
		metrics.OpenAIRequestsTotal.WithLabelValues("speech", "error").Inc()
		return nil, fmt.Errorf("read speech: %v: %w", err, domain.ErrSynthesisFailed)
	}
	if len(audio) == 0 {
		metrics.OpenAIRequestsTotal.WithLabelValues("speech", "error").Inc()
		return nil, fmt.Errorf("empty speech response: %w", domain.ErrSynthesisFailed)
	}
	metrics.OpenAIRequestsTotal.WithLabelValues("speech", "success").Inc()

	s.mu.Lock()
	s.cache[text] = audio
	s.mu.Unlock()
	return audio, nil
}
