package health

import "context"

// Status represents the aggregated health status.
type Status string

const (
	// Healthy indicates all components are operational.
	Healthy Status = "ok"
	// Degraded indicates partial failure.
	Degraded Status = "degraded"
	// Unhealthy indicates total failure.
	Unhealthy Status = "error"
)

// CheckResult represents an individual component health check outcome.
type CheckResult string

const (
	// CheckOK indicates a passing health check.
	CheckOK CheckResult = "ok"
	// CheckError indicates a failing health check.
	CheckError CheckResult = "error"
)

// Report aggregates health check results.
type Report struct {
	Status Status
	Checks map[string]CheckResult
}

// Service coordinates health checks.
type Service struct {
	storage StoragePinger
	printer Checker
	speech  Checker
}

// New creates a Service. printer and speech can be nil.
func New(storage StoragePinger, printer, speech Checker) *Service {
	return &Service{storage: storage, printer: printer, speech: speech}
}

// Check runs health checks against all components.
// Any failing check is Degraded; Unhealthy means every check failed.
func (s *Service) Check(ctx context.Context) Report {
	checks := make(map[string]CheckResult)

	checks["storage"] = result(s.storage.Ping(ctx))
	if s.printer != nil {
		checks["printer"] = result(s.printer.HealthCheck(ctx))
	}
	if s.speech != nil {
		checks["speech"] = result(s.speech.HealthCheck(ctx))
	}

	failed := 0
	for _, v := range checks {
		if v == CheckError {
			failed++
		}
	}

	status := Healthy
	switch {
	case failed == len(checks):
		status = Unhealthy
	case failed > 0:
		status = Degraded
	}

	return Report{Status: status, Checks: checks}
}

func result(err error) CheckResult {
	if err != nil {
		return CheckError
	}
	return CheckOK
}
