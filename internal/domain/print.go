package domain

// PrintJob is a request handed to the print sink.
type PrintJob struct {
	Text    string
	Kind    JobKind
	Title   string
	CycleID string
}
