package phrase

import (
	"testing"

	"github.com/kailas-cloud/kidprint/internal/domain"
)

func TestDefaults_CoverAllKinds(t *testing.T) {
	for _, k := range domain.AllFeedbackKinds {
		if Defaults[k] == "" {
			t.Errorf("missing default text for %q", k)
		}
	}
}

func TestCatalog_Text(t *testing.T) {
	c := New(nil)

	tests := []struct {
		name string
		fb   domain.Feedback
		want string
	}{
		{
			name: "print accepted announces remaining",
			fb:   domain.Feedback{Kind: domain.FeedbackPrintAccepted, Remaining: 3},
			want: "Hienoa! Tulostus onnistui. Sinulla on vielä 3 tulostusta jäljellä tänään.",
		},
		{
			name: "last print",
			fb:   domain.Feedback{Kind: domain.FeedbackPrintAccepted, Remaining: 0},
			want: "Hienoa! Tulostus onnistui. Sinulla ei ole enää tulostuksia jäljellä tänään.",
		},
		{
			name: "unknown remaining",
			fb:   domain.Feedback{Kind: domain.FeedbackPrintAccepted, Remaining: -1},
			want: "Hienoa! Tulostus onnistui.",
		},
		{
			name: "quota exceeded has no announcement",
			fb:   domain.Feedback{Kind: domain.FeedbackQuotaExceeded, Remaining: 0},
			want: "Olet jo tulostanut tarpeeksi tänään. Yritä huomenna uudelleen.",
		},
		{
			name: "unknown kind falls back to error",
			fb:   domain.Feedback{Kind: "bogus", Remaining: -1},
			want: Defaults[domain.FeedbackError],
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := c.Text(tt.fb); got != tt.want {
				t.Errorf("Text() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestNew_Overrides(t *testing.T) {
	c := New(map[string]string{
		"welcome": "Moi!",
		"error":   "",
		"bogus":   "ignored",
	})

	if got := c.Message(domain.FeedbackWelcome); got != "Moi!" {
		t.Errorf("welcome = %q, want override", got)
	}
	if got := c.Message(domain.FeedbackError); got != Defaults[domain.FeedbackError] {
		t.Errorf("empty override must keep default, got %q", got)
	}
	if got := c.Message("bogus"); got != Defaults[domain.FeedbackError] {
		t.Errorf("unknown kind = %q", got)
	}
}

func TestRemaining(t *testing.T) {
	tests := map[int]string{
		-2: "Sinulla ei ole enää tulostuksia jäljellä tänään.",
		0:  "Sinulla ei ole enää tulostuksia jäljellä tänään.",
		1:  "Sinulla on vielä yksi tulostus jäljellä tänään.",
		7:  "Sinulla on vielä 7 tulostusta jäljellä tänään.",
	}
	for n, want := range tests {
		if got := Remaining(n); got != want {
			t.Errorf("Remaining(%d) = %q, want %q", n, got, want)
		}
	}
}
