package session

import (
	"context"

	"github.com/kailas-cloud/kidprint/internal/domain"
)

// QuotaStore is the daily print quota as seen by the pipeline.
type QuotaStore interface {
	CanPrint(ctx context.Context) bool
	RecordPrint(ctx context.Context) int
	Remaining(ctx context.Context) int
}

// ContentGate classifies text before printing.
type ContentGate interface {
	Check(text string) domain.Verdict
}

// CommandInterpreter extracts print intent from text.
type CommandInterpreter interface {
	Interpret(text string) domain.Command
}
