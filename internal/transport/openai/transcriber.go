// Package openai reaches the OpenAI-compatible audio API for speech-to-text and text-to-speech.
package openai

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"github.com/kailas-cloud/kidprint/internal/domain"
	"github.com/kailas-cloud/kidprint/internal/metrics"
)

// wavHeaderSize is the size of a canonical PCM WAV header; shorter recordings hold no audio.
const wavHeaderSize = 44

// Recorder captures a WAV recording of the given length.
type Recorder interface {
	Record(ctx context.Context, d time.Duration) ([]byte, error)
}

// TranscriberConfig holds the speech-to-text settings.
type TranscriberConfig struct {
	APIKey          string
	BaseURL         string
	Model           string
	Language        domain.Language
	PhraseTimeLimit time.Duration
	Logger          *zap.Logger
}

// Transcriber is a speech source: it records one phrase and transcribes it with Whisper.
type Transcriber struct {
	client      *openai.Client
	model       string
	language    domain.Language
	phraseLimit time.Duration
	recorder    Recorder
	logger      *zap.Logger
}

// NewTranscriber creates a Transcriber recording through rec.
func NewTranscriber(cfg *TranscriberConfig, rec Recorder) *Transcriber {
	return &Transcriber{
		client:      newClient(cfg.APIKey, cfg.BaseURL),
		model:       cfg.Model,
		language:    cfg.Language,
		phraseLimit: cfg.PhraseTimeLimit,
		recorder:    rec,
		logger:      cfg.Logger,
	}
}

// Listen implements domain.SpeechSource. It records for timeout, capped at the
// phrase time limit. Silence and empty transcripts are reported as NoSpeech.
func (t *Transcriber) Listen(ctx context.Context, timeout time.Duration) domain.ListenResult {
	d := timeout
	if t.phraseLimit > 0 && d > t.phraseLimit {
		d = t.phraseLimit
	}

	audio, err := t.recorder.Record(ctx, d)
	if err != nil {
		if ctx.Err() != nil {
			return domain.NoSpeech()
		}
		return domain.RecognitionFailed(fmt.Errorf("%w: record: %w", domain.ErrRecognitionFailed, err))
	}
	if len(audio) <= wavHeaderSize {
		return domain.NoSpeech()
	}

	req := openai.AudioRequest{
		Model:    t.model,
		FilePath: "utterance.wav",
		Reader:   bytes.NewReader(audio),
		Language: isoLanguage(t.language),
	}

	start := time.Now()
	resp, err := t.client.CreateTranscription(ctx, req)
	metrics.OpenAIRequestDuration.WithLabelValues("transcription").Observe(time.Since(start).Seconds())
	if err != nil {
		metrics.OpenAIRequestsTotal.WithLabelValues("transcription", "error").Inc()
		if ctx.Err() != nil {
			return domain.NoSpeech()
		}
		return domain.RecognitionFailed(parseAPIError(err, domain.ErrRecognitionFailed))
	}
	metrics.OpenAIRequestsTotal.WithLabelValues("transcription", "success").Inc()

	text := strings.TrimSpace(resp.Text)
	if text == "" {
		return domain.NoSpeech()
	}
	t.logger.Debug("Transcribed", zap.String("text", text))
	return domain.Heard(text, t.language)
}

// HealthCheck verifies API availability via ListModels (free endpoint).
func (t *Transcriber) HealthCheck(ctx context.Context) error {
	if _, err := t.client.ListModels(ctx); err != nil {
		return fmt.Errorf("list models: %w", err)
	}
	return nil
}

func newClient(apiKey, baseURL string) *openai.Client {
	clientCfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		clientCfg.BaseURL = baseURL
	}
	return openai.NewClientWithConfig(clientCfg)
}

// isoLanguage converts "fi-FI" to the ISO-639-1 code Whisper expects.
func isoLanguage(lang domain.Language) string {
	code, _, _ := strings.Cut(string(lang), "-")
	return strings.ToLower(code)
}

// parseAPIError extracts a human-readable error from the API response, wrapped with wrap.
func parseAPIError(err, wrap error) error {
	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		detail := extractDetail(reqErr.Body)
		if detail == "" {
			detail = string(reqErr.Body)
		}
		return fmt.Errorf("audio API error %d: %s: %w", reqErr.HTTPStatusCode, detail, wrap)
	}

	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return fmt.Errorf("audio API error %d: %s: %w", apiErr.HTTPStatusCode, apiErr.Message, wrap)
	}

	return fmt.Errorf("audio request failed: %v: %w", err, wrap)
}

// extractDetail extracts the "detail" field from a JSON error body.
func extractDetail(body []byte) string {
	var parsed struct {
		Detail string `json:"detail"`
	}
	if json.Unmarshal(body, &parsed) == nil && parsed.Detail != "" {
		return parsed.Detail
	}
	return ""
}
