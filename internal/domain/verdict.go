package domain

// BlockReason names the content check that rejected a text.
type BlockReason string

// Block reasons, in evaluation order.
const (
	ReasonNone          BlockReason = ""
	ReasonEmpty         BlockReason = "empty"
	ReasonTooLong       BlockReason = "too_long"
	ReasonBlockedTerm   BlockReason = "blocked_term"
	ReasonRepeatedChars BlockReason = "repeated_chars"
)

// Verdict is the content gate's classification of a text.
type Verdict struct {
	Safe        bool
	Reason      BlockReason
	Term        string // matched blocked term, if any
	Educational bool
	KidFriendly bool
}
