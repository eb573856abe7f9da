package domain

// Decision is the outcome of one pipeline cycle.
type Decision string

// Pipeline decisions.
const (
	DecisionPrintAccepted    Decision = "print_accepted"
	DecisionQuotaExceeded    Decision = "quota_exceeded"
	DecisionContentBlocked   Decision = "content_blocked"
	DecisionNoIntentDetected Decision = "no_intent_detected"
	DecisionFailed           Decision = "failed"
)

// FeedbackKind is a categorized outcome signal for the audio output.
type FeedbackKind string

// Feedback kinds.
const (
	FeedbackWelcome          FeedbackKind = "welcome"
	FeedbackPrintAccepted    FeedbackKind = "print_accepted"
	FeedbackQuotaExceeded    FeedbackKind = "quota_exceeded"
	FeedbackContentBlocked   FeedbackKind = "content_blocked"
	FeedbackNoIntentDetected FeedbackKind = "no_intent_detected"
	FeedbackError            FeedbackKind = "error"
)

// AllFeedbackKinds lists every feedback kind.
var AllFeedbackKinds = []FeedbackKind{
	FeedbackWelcome,
	FeedbackPrintAccepted,
	FeedbackQuotaExceeded,
	FeedbackContentBlocked,
	FeedbackNoIntentDetected,
	FeedbackError,
}

// Feedback returns the feedback kind emitted for a decision.
func (d Decision) Feedback() FeedbackKind {
	switch d {
	case DecisionPrintAccepted:
		return FeedbackPrintAccepted
	case DecisionQuotaExceeded:
		return FeedbackQuotaExceeded
	case DecisionContentBlocked:
		return FeedbackContentBlocked
	case DecisionNoIntentDetected:
		return FeedbackNoIntentDetected
	default:
		return FeedbackError
	}
}

// Feedback is one event for the feedback sink.
// Remaining is the number of prints left today, or -1 when unknown.
type Feedback struct {
	Kind      FeedbackKind
	Remaining int
	CycleID   string
}
