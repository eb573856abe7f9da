package domain

import (
	"context"
	"time"
)

// Language is a BCP 47 tag reported by the speech recognizer (e.g. "fi-FI").
type Language string

// DefaultLanguage is the kiosk's spoken language.
const DefaultLanguage Language = "fi-FI"

// Utterance is one transcribed unit of speech. Consumed once, never persisted.
type Utterance struct {
	Text     string
	Language Language
}

// ListenKind tags the variant held by a ListenResult.
type ListenKind int

// Listen result variants.
const (
	ListenUtterance ListenKind = iota
	ListenNoSpeech
	ListenFailed
)

func (k ListenKind) String() string {
	switch k {
	case ListenUtterance:
		return "utterance"
	case ListenNoSpeech:
		return "no_speech"
	case ListenFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// ListenResult is the outcome of one listen call:
// an utterance, no speech within the timeout, or a recognition failure.
type ListenResult struct {
	Kind      ListenKind
	Utterance Utterance
	Err       error
}

// Heard wraps a recognized utterance.
func Heard(text string, lang Language) ListenResult {
	return ListenResult{Kind: ListenUtterance, Utterance: Utterance{Text: text, Language: lang}}
}

// NoSpeech reports that nothing was said before the timeout.
func NoSpeech() ListenResult {
	return ListenResult{Kind: ListenNoSpeech}
}

// RecognitionFailed reports a recognizer failure with its reason.
func RecognitionFailed(err error) ListenResult {
	return ListenResult{Kind: ListenFailed, Err: err}
}

// SpeechSource delivers transcribed utterances. Listen blocks for at most timeout.
type SpeechSource interface {
	Listen(ctx context.Context, timeout time.Duration) ListenResult
}
