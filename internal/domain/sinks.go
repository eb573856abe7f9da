package domain

import "context"

// FeedbackSink turns feedback events into something the child hears.
// Emit is side-effect only; failures are the sink's to log.
type FeedbackSink interface {
	Emit(ctx context.Context, fb Feedback)
}

// PrintSink submits print jobs. Any non-nil error is a failed print.
type PrintSink interface {
	Submit(ctx context.Context, job PrintJob) error
}

// HealthChecker verifies a collaborator's availability.
type HealthChecker interface {
	HealthCheck(ctx context.Context) error
}
