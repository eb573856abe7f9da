// Package phrase holds the spoken Finnish feedback texts.
package phrase

import (
	"fmt"

	"github.com/kailas-cloud/kidprint/internal/domain"
)

// Defaults are the built-in feedback texts by kind.
var Defaults = map[domain.FeedbackKind]string{
	domain.FeedbackWelcome:          "Tervetuloa! Sano mitä haluat tulostaa.",
	domain.FeedbackPrintAccepted:    "Hienoa! Tulostus onnistui.",
	domain.FeedbackQuotaExceeded:    "Olet jo tulostanut tarpeeksi tänään. Yritä huomenna uudelleen.",
	domain.FeedbackContentBlocked:   "Tuo ei ole sopivaa. Voisimme tulostaa jotain mukavampaa?",
	domain.FeedbackNoIntentDetected: "Sano esimerkiksi: tulosta kissa.",
	domain.FeedbackError:            "Pahoittelen, tapahtui virhe. Yritä uudelleen.",
}

// Catalog resolves feedback events to spoken text.
type Catalog struct {
	texts map[domain.FeedbackKind]string
}

// New creates a Catalog. overrides maps feedback kind names to replacement texts;
// unknown kinds and empty texts are ignored.
func New(overrides map[string]string) *Catalog {
	texts := make(map[domain.FeedbackKind]string, len(Defaults))
	for k, v := range Defaults {
		texts[k] = v
	}
	for k, v := range overrides {
		kind := domain.FeedbackKind(k)
		if _, ok := Defaults[kind]; ok && v != "" {
			texts[kind] = v
		}
	}
	return &Catalog{texts: texts}
}

// Message returns the fixed text for kind.
func (c *Catalog) Message(kind domain.FeedbackKind) string {
	if s, ok := c.texts[kind]; ok {
		return s
	}
	return c.texts[domain.FeedbackError]
}

// Announcement returns the remaining-prints sentence that follows fb's
// message, or "" when fb carries none. Welcome and print-accepted feedback
// with a known remaining count are announced.
func (c *Catalog) Announcement(fb domain.Feedback) string {
	if fb.Remaining < 0 {
		return ""
	}
	switch fb.Kind {
	case domain.FeedbackWelcome, domain.FeedbackPrintAccepted:
		return Remaining(fb.Remaining)
	default:
		return ""
	}
}

// Text returns the full utterance for fb.
func (c *Catalog) Text(fb domain.Feedback) string {
	msg := c.Message(fb.Kind)
	if a := c.Announcement(fb); a != "" {
		return msg + " " + a
	}
	return msg
}

// Remaining announces how many prints are left today.
func Remaining(n int) string {
	switch {
	case n <= 0:
		return "Sinulla ei ole enää tulostuksia jäljellä tänään."
	case n == 1:
		return "Sinulla on vielä yksi tulostus jäljellä tänään."
	default:
		return fmt.Sprintf("Sinulla on vielä %d tulostusta jäljellä tänään.", n)
	}
}
