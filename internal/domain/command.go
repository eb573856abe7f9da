package domain

// Intent is what the speaker asked for.
type Intent string

// Intents recognized by the command interpreter.
const (
	IntentNone  Intent = "none"
	IntentPrint Intent = "print"
)

// JobKind selects how a print request is rendered.
type JobKind string

// Print job kinds.
const (
	JobText    JobKind = "text"
	JobPicture JobKind = "picture"
)

// Command is an interpreted utterance.
type Command struct {
	Intent  Intent
	Kind    JobKind
	Keyword string // first matching print keyword, empty for IntentNone
}

// IsPrint reports whether the command requests printing.
func (c Command) IsPrint() bool { return c.Intent == IntentPrint }
