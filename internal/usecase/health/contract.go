package health

import "context"

// StoragePinger checks quota storage availability.
type StoragePinger interface {
	Ping(ctx context.Context) error
}

// Checker checks an external collaborator (printer, speech service).
type Checker interface {
	HealthCheck(ctx context.Context) error
}
