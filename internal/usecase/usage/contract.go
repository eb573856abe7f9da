package usage

import (
	"context"
	"time"

	domusage "github.com/kailas-cloud/kidprint/internal/domain/usage"
)

// QuotaReader provides read-only access to the print quota.
type QuotaReader interface {
	Stats(ctx context.Context) domusage.Stats
	CountFor(ctx context.Context, day string) (int, bool)
	History(ctx context.Context) []domusage.Record
	Now() time.Time
	Location() *time.Location
}
