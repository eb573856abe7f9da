// Package content classifies free text as safe for a child to print.
package content

import (
	"strings"
	"sync"
	"unicode/utf8"

	"go.uber.org/zap"

	"github.com/kailas-cloud/kidprint/internal/domain"
)

// Config holds the gate thresholds and term sets.
type Config struct {
	MaxLength        int // runes
	MaxRepeat        int // longest allowed run of one character
	BlockedTerms     []string
	SafeTerms        []string
	EducationalTerms []string
	Suggestions      []string
}

// Gate checks texts against the blocked-term set and anti-spam limits.
// The term sets can be extended at runtime from the admin API.
type Gate struct {
	mu          sync.RWMutex
	maxLength   int
	maxRepeat   int
	blocked     []string
	safe        []string
	educational []string
	suggestions []string
	logger      *zap.Logger
}

// New creates a Gate. Terms are matched lower-cased.
func New(cfg Config, logger *zap.Logger) *Gate {
	g := &Gate{
		maxLength:   cfg.MaxLength,
		maxRepeat:   cfg.MaxRepeat,
		suggestions: append([]string(nil), cfg.Suggestions...),
		logger:      logger,
	}
	g.blocked = addTerms(nil, cfg.BlockedTerms)
	g.safe = addTerms(nil, cfg.SafeTerms)
	g.educational = addTerms(nil, cfg.EducationalTerms)

	logger.Info("Content gate initialized",
		zap.Int("blocked_terms", len(g.blocked)),
		zap.Int("safe_terms", len(g.safe)),
		zap.Int("max_length", g.maxLength),
		zap.Int("max_repeat", g.maxRepeat),
	)
	return g
}

// IsSafe reports whether text may be printed.
func (g *Gate) IsSafe(text string) bool {
	return g.Check(text).Safe
}

// Check classifies text. Reason names the first failing check in the
// order empty, length, blocked term, repeated characters.
func (g *Gate) Check(text string) domain.Verdict {
	g.mu.RLock()
	defer g.mu.RUnlock()

	lower := strings.ToLower(text)
	v := domain.Verdict{
		Educational: containsAny(lower, g.educational) != "",
		KidFriendly: containsAny(lower, g.safe) != "",
	}

	switch {
	case strings.TrimSpace(text) == "":
		v.Reason = domain.ReasonEmpty
	case g.maxLength > 0 && utf8.RuneCountInString(text) > g.maxLength:
		v.Reason = domain.ReasonTooLong
		g.logger.Warn("Content too long", zap.Int("length", utf8.RuneCountInString(text)))
	default:
		if term := containsAny(lower, g.blocked); term != "" {
			v.Reason = domain.ReasonBlockedTerm
			v.Term = term
			g.logger.Warn("Blocked inappropriate content", zap.String("term", term))
		} else if g.maxRepeat > 0 && longestRun(text) > g.maxRepeat {
			v.Reason = domain.ReasonRepeatedChars
			g.logger.Warn("Repeated character pattern", zap.Int("threshold", g.maxRepeat))
		}
	}

	v.Safe = v.Reason == domain.ReasonNone
	return v
}

// IsEducational reports whether text mentions an educational term.
func (g *Gate) IsEducational(text string) bool {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return containsAny(strings.ToLower(text), g.educational) != ""
}

// AddBlockedTerm adds a term to the blocked set for the process lifetime.
func (g *Gate) AddBlockedTerm(term string) error {
	term = normalizeTerm(term)
	if term == "" {
		return domain.ErrEmptyTerm
	}
	g.mu.Lock()
	g.blocked = addTerms(g.blocked, []string{term})
	g.mu.Unlock()

	g.logger.Info("Added blocked term", zap.String("term", term))
	return nil
}

// AddSafeTerm adds a term to the kid-friendly set for the process lifetime.
func (g *Gate) AddSafeTerm(term string) error {
	term = normalizeTerm(term)
	if term == "" {
		return domain.ErrEmptyTerm
	}
	g.mu.Lock()
	g.safe = addTerms(g.safe, []string{term})
	g.mu.Unlock()

	g.logger.Info("Added safe term", zap.String("term", term))
	return nil
}

// Suggestions returns kid-friendly prompts to offer after a blocked request.
func (g *Gate) Suggestions() []string {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return append([]string(nil), g.suggestions...)
}

func normalizeTerm(term string) string {
	return strings.ToLower(strings.TrimSpace(term))
}

// addTerms appends normalized, non-empty terms that are not yet present.
func addTerms(dst, terms []string) []string {
	for _, t := range terms {
		t = normalizeTerm(t)
		if t == "" || containsTerm(dst, t) {
			continue
		}
		dst = append(dst, t)
	}
	return dst
}

func containsTerm(terms []string, t string) bool {
	for _, x := range terms {
		if x == t {
			return true
		}
	}
	return false
}

// containsAny returns the first term found in lower, or "".
func containsAny(lower string, terms []string) string {
	for _, t := range terms {
		if strings.Contains(lower, t) {
			return t
		}
	}
	return ""
}

// longestRun returns the length of the longest run of one repeated rune.
func longestRun(text string) int {
	longest, run := 0, 0
	var prev rune = -1
	for _, r := range text {
		if r == prev {
			run++
		} else {
			prev, run = r, 1
		}
		if run > longest {
			longest = run
		}
	}
	return longest
}
