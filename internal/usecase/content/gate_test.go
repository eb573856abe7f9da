package content

import (
	"errors"
	"strings"
	"testing"

	"go.uber.org/zap"

	"github.com/kailas-cloud/kidprint/internal/domain"
)

func newTestGate() *Gate {
	return New(Config{
		MaxLength:        200,
		MaxRepeat:        5,
		BlockedTerms:     []string{"perkele", "helvetti", "saatana", "vittu", "jumalauta"},
		SafeTerms:        []string{"kissa", "koira", "aurinko"},
		EducationalTerms: []string{"laske", "kirjain", "numero", "tiede"},
		Suggestions:      []string{"Mitä jos tulostaisimme kuvan kissasta?"},
	}, zap.NewNop())
}

func TestGate_Check(t *testing.T) {
	g := newTestGate()

	tests := []struct {
		name   string
		text   string
		safe   bool
		reason domain.BlockReason
	}{
		{"empty", "", false, domain.ReasonEmpty},
		{"whitespace only", "   \t", false, domain.ReasonEmpty},
		{"plain request", "tulosta kissa", true, domain.ReasonNone},
		{"blocked term", "tulosta perkele", false, domain.ReasonBlockedTerm},
		{"blocked term uppercase", "Tulosta PERKELE nyt", false, domain.ReasonBlockedTerm},
		{"blocked term as substring", "voi saatanan kissa", false, domain.ReasonBlockedTerm},
		{"exactly max length", strings.Repeat("ab", 100), true, domain.ReasonNone},
		{"over max length", strings.Repeat("ab", 125), false, domain.ReasonTooLong},
		{"run of seven", "aaaaaaa tulosta", false, domain.ReasonRepeatedChars},
		{"run of six", "aaaaaa", false, domain.ReasonRepeatedChars},
		{"run of five allowed", "aaaaa tulosta", true, domain.ReasonNone},
		{"repeated spaces", "tulosta" + strings.Repeat(" ", 6) + "kissa", false, domain.ReasonRepeatedChars},
		{"non-ascii run", "ääääääää", false, domain.ReasonRepeatedChars},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := g.Check(tt.text)
			if v.Safe != tt.safe {
				t.Errorf("Check(%q).Safe = %v, want %v", tt.text, v.Safe, tt.safe)
			}
			if v.Reason != tt.reason {
				t.Errorf("Check(%q).Reason = %q, want %q", tt.text, v.Reason, tt.reason)
			}
			if g.IsSafe(tt.text) != tt.safe {
				t.Errorf("IsSafe(%q) disagrees with Check", tt.text)
			}
		})
	}
}

func TestGate_LengthCountsRunes(t *testing.T) {
	g := newTestGate()

	// 200 two-byte runes: 400 bytes, still within the limit.
	text := strings.Repeat("äö", 100)
	if !g.IsSafe(text) {
		t.Error("expected 200-rune text to be safe")
	}
}

func TestGate_BlockedTermReported(t *testing.T) {
	g := newTestGate()

	v := g.Check("tulosta vittu")
	if v.Term != "vittu" {
		t.Errorf("expected matched term vittu, got %q", v.Term)
	}
}

func TestGate_Tags(t *testing.T) {
	g := newTestGate()

	v := g.Check("tulosta kissa joka laskee")
	if !v.KidFriendly {
		t.Error("expected kid-friendly tag")
	}
	if !v.Educational {
		t.Error("expected educational tag")
	}
}

func TestGate_IsEducational(t *testing.T) {
	g := newTestGate()

	tests := []struct {
		text string
		want bool
	}{
		{"Opetellaan KIRJAIN A", true},
		{"laske numerot", true},
		{"tulosta kissa", false},
		{"", false},
		// independent of safety
		{"perkele tiede", true},
	}

	for _, tt := range tests {
		if got := g.IsEducational(tt.text); got != tt.want {
			t.Errorf("IsEducational(%q) = %v, want %v", tt.text, got, tt.want)
		}
	}
}

func TestGate_AddBlockedTerm(t *testing.T) {
	g := newTestGate()

	if !g.IsSafe("tulosta hölmö") {
		t.Fatal("expected text to be safe before adding term")
	}
	if err := g.AddBlockedTerm("  HÖLMÖ "); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if g.IsSafe("tulosta hölmö") {
		t.Error("expected text to be blocked after adding term")
	}
}

func TestGate_AddSafeTerm(t *testing.T) {
	g := newTestGate()

	if g.Check("tulosta dinosaurus").KidFriendly {
		t.Fatal("expected no kid-friendly tag before adding term")
	}
	if err := g.AddSafeTerm("Dinosaurus"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !g.Check("tulosta dinosaurus").KidFriendly {
		t.Error("expected kid-friendly tag after adding term")
	}
}

func TestGate_AddEmptyTerm(t *testing.T) {
	g := newTestGate()

	if err := g.AddBlockedTerm("  "); !errors.Is(err, domain.ErrEmptyTerm) {
		t.Errorf("AddBlockedTerm: expected ErrEmptyTerm, got %v", err)
	}
	if err := g.AddSafeTerm(""); !errors.Is(err, domain.ErrEmptyTerm) {
		t.Errorf("AddSafeTerm: expected ErrEmptyTerm, got %v", err)
	}
}

func TestGate_SuggestionsAreCopied(t *testing.T) {
	g := newTestGate()

	s := g.Suggestions()
	if len(s) != 1 {
		t.Fatalf("expected 1 suggestion, got %d", len(s))
	}
	s[0] = "changed"
	if g.Suggestions()[0] == "changed" {
		t.Error("Suggestions must return a copy")
	}
}

func TestLongestRun(t *testing.T) {
	tests := []struct {
		text string
		want int
	}{
		{"", 0},
		{"a", 1},
		{"abc", 1},
		{"aabbbc", 3},
		{"xaaaaaaa", 7},
	}
	for _, tt := range tests {
		if got := longestRun(tt.text); got != tt.want {
			t.Errorf("longestRun(%q) = %d, want %d", tt.text, got, tt.want)
		}
	}
}
