// Package command extracts print intent from transcribed speech.
package command

import (
	"strings"

	"github.com/kailas-cloud/kidprint/internal/domain"
)

// Interpreter decides whether text asks for a print by keyword containment.
// No stemming: inflected forms match only when they contain a keyword.
type Interpreter struct {
	printKeywords   []string
	pictureKeywords []string
}

// New creates an Interpreter. Keywords are matched lower-cased; blanks are ignored.
func New(printKeywords, pictureKeywords []string) *Interpreter {
	return &Interpreter{
		printKeywords:   normalize(printKeywords),
		pictureKeywords: normalize(pictureKeywords),
	}
}

// IsPrintRequest reports whether text contains any print keyword.
func (i *Interpreter) IsPrintRequest(text string) bool {
	return firstMatch(strings.ToLower(text), i.printKeywords) != ""
}

// Interpret returns the intent and job kind for text.
func (i *Interpreter) Interpret(text string) domain.Command {
	lower := strings.ToLower(text)

	kw := firstMatch(lower, i.printKeywords)
	if kw == "" {
		return domain.Command{Intent: domain.IntentNone}
	}

	kind := domain.JobText
	if firstMatch(lower, i.pictureKeywords) != "" {
		kind = domain.JobPicture
	}
	return domain.Command{Intent: domain.IntentPrint, Kind: kind, Keyword: kw}
}

// Keywords returns the configured print keywords.
func (i *Interpreter) Keywords() []string {
	return append([]string(nil), i.printKeywords...)
}

func normalize(words []string) []string {
	out := make([]string, 0, len(words))
	for _, w := range words {
		w = strings.ToLower(strings.TrimSpace(w))
		if w != "" {
			out = append(out, w)
		}
	}
	return out
}

func firstMatch(lower string, keywords []string) string {
	for _, kw := range keywords {
		if strings.Contains(lower, kw) {
			return kw
		}
	}
	return ""
}
