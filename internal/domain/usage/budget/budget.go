package budget

// Budget is a snapshot of the daily print quota.
type Budget struct {
	printsLimit     int
	printsRemaining int
	isExhausted     bool
	resetsAt        int64 // unix millis, converted to ISO 8601 at transport layer
}

// New creates a Budget snapshot.
func New(limit, remaining int, isExhausted bool, resetsAt int64) Budget {
	return Budget{
		printsLimit:     limit,
		printsRemaining: remaining,
		isExhausted:     isExhausted,
		resetsAt:        resetsAt,
	}
}

// PrintsLimit returns the daily print cap.
func (b Budget) PrintsLimit() int { return b.printsLimit }

// PrintsRemaining returns prints left today.
func (b Budget) PrintsRemaining() int { return b.printsRemaining }

// IsExhausted reports whether today's quota is spent.
func (b Budget) IsExhausted() bool { return b.isExhausted }

// ResetsAt returns the next day boundary (unix millis).
func (b Budget) ResetsAt() int64 { return b.resetsAt }
