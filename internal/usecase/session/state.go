package session

// State is the controller's position in the current cycle.
type State int32

// Cycle states. Every cycle ends in FeedbackEmitted and returns to Idle.
const (
	StateIdle State = iota
	StateListening
	StateInterpreting
	StateQuotaCheck
	StateSafetyCheck
	StateDispatching
	StateFeedbackEmitted
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateListening:
		return "listening"
	case StateInterpreting:
		return "interpreting"
	case StateQuotaCheck:
		return "quota_check"
	case StateSafetyCheck:
		return "safety_check"
	case StateDispatching:
		return "dispatching"
	case StateFeedbackEmitted:
		return "feedback_emitted"
	default:
		return "unknown"
	}
}
