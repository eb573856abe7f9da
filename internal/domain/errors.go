package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidLimit signals a non-positive daily print limit.
	ErrInvalidLimit = errors.New("daily limit must be positive")
	// ErrEmptyTerm signals a blank content term.
	ErrEmptyTerm = errors.New("term must not be empty")
	// ErrPrintFailed signals a print job the sink did not accept.
	ErrPrintFailed = errors.New("print failed")
	// ErrNoPrinter signals that no printer is available.
	ErrNoPrinter = errors.New("no printer available")
	// ErrRecognitionFailed signals a speech recognition service failure.
	ErrRecognitionFailed = errors.New("speech recognition failed")
	// ErrSynthesisFailed signals a text-to-speech failure.
	ErrSynthesisFailed = errors.New("speech synthesis failed")
	// ErrInvalidDay signals a malformed calendar day (want YYYY-MM-DD).
	ErrInvalidDay = errors.New("invalid day")
	// ErrNotFound signals a missing resource.
	ErrNotFound = errors.New("not found")
)

// PrintError wraps ErrPrintFailed with the printer that rejected the job.
type PrintError struct {
	Printer string
	Err     error
}

func (e *PrintError) Error() string {
	if e.Printer == "" {
		return fmt.Sprintf("%s: %v", ErrPrintFailed.Error(), e.Err)
	}
	return fmt.Sprintf("%s on %q: %v", ErrPrintFailed.Error(), e.Printer, e.Err)
}

func (e *PrintError) Unwrap() []error { return []error{ErrPrintFailed, e.Err} }

// NewPrintError creates a print error for the given printer.
func NewPrintError(printer string, err error) error {
	return &PrintError{Printer: printer, Err: err}
}
