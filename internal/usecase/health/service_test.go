package health

import (
	"context"
	"errors"
	"testing"
)

// --- Mocks ---

type mockStoragePinger struct {
	err error
}

func (m *mockStoragePinger) Ping(_ context.Context) error { return m.err }

type mockChecker struct {
	err error
}

func (m *mockChecker) HealthCheck(_ context.Context) error { return m.err }

// --- Tests ---

func TestCheck(t *testing.T) {
	down := errors.New("down")

	tests := []struct {
		name    string
		storage error
		printer Checker
		speech  Checker
		status  Status
		checks  map[string]CheckResult
	}{
		{
			name:    "all healthy",
			printer: &mockChecker{},
			speech:  &mockChecker{},
			status:  Healthy,
			checks:  map[string]CheckResult{"storage": CheckOK, "printer": CheckOK, "speech": CheckOK},
		},
		{
			name:    "storage error",
			storage: down,
			printer: &mockChecker{},
			speech:  &mockChecker{},
			status:  Degraded,
			checks:  map[string]CheckResult{"storage": CheckError, "printer": CheckOK, "speech": CheckOK},
		},
		{
			name:    "printer error",
			printer: &mockChecker{err: down},
			status:  Degraded,
			checks:  map[string]CheckResult{"storage": CheckOK, "printer": CheckError},
		},
		{
			name:    "everything down",
			storage: down,
			printer: &mockChecker{err: down},
			speech:  &mockChecker{err: down},
			status:  Unhealthy,
			checks:  map[string]CheckResult{"storage": CheckError, "printer": CheckError, "speech": CheckError},
		},
		{
			name:   "storage only",
			status: Healthy,
			checks: map[string]CheckResult{"storage": CheckOK},
		},
		{
			name:    "storage only, failing",
			storage: down,
			status:  Unhealthy,
			checks:  map[string]CheckResult{"storage": CheckError},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := New(&mockStoragePinger{err: tt.storage}, tt.printer, tt.speech)
			r := svc.Check(context.Background())

			if r.Status != tt.status {
				t.Errorf("expected %q, got %q", tt.status, r.Status)
			}
			if len(r.Checks) != len(tt.checks) {
				t.Fatalf("expected checks %v, got %v", tt.checks, r.Checks)
			}
			for k, want := range tt.checks {
				if r.Checks[k] != want {
					t.Errorf("check %s: expected %q, got %q", k, want, r.Checks[k])
				}
			}
		})
	}
}
