package health

import (
	"context"
	"errors"
	"testing"
	"time"
)

// --- Mocks ---

type mockChecker struct {
	err error
}

func (m *mockChecker) HealthCheck(_ context.Context) error { return m.err }

type slowChecker struct{}

func (slowChecker) HealthCheck(ctx context.Context) error {
	<-ctx.Done()
	return ctx.Err()
}

// --- Tests ---

func TestCheck_NoChecks(t *testing.T) {
	r := New().Check(context.Background())

	if r.Status != Healthy {
		t.Errorf("expected %q, got %q", Healthy, r.Status)
	}
	if len(r.Checks) != 0 {
		t.Errorf("expected no checks, got %v", r.Checks)
	}
}

func TestCheck_AllHealthy(t *testing.T) {
	svc := New().WithCheck("embedding", &mockChecker{}).WithCheck("generator", &mockChecker{})
	r := svc.Check(context.Background())

	if r.Status != Healthy {
		t.Errorf("expected %q, got %q", Healthy, r.Status)
	}
	if r.Checks["embedding"] != CheckOK {
		t.Errorf("expected embedding %q, got %q", CheckOK, r.Checks["embedding"])
	}
	if r.Checks["generator"] != CheckOK {
		t.Errorf("expected generator %q, got %q", CheckOK, r.Checks["generator"])
	}
}

func TestCheck_PartialFailureDegraded(t *testing.T) {
	svc := New().
		WithCheck("embedding", &mockChecker{err: errors.New("timeout")}).
		WithCheck("downstream", &mockChecker{})
	r := svc.Check(context.Background())

	if r.Status != Degraded {
		t.Errorf("expected %q, got %q", Degraded, r.Status)
	}
	if r.Checks["embedding"] != CheckError {
		t.Errorf("expected embedding %q, got %q", CheckError, r.Checks["embedding"])
	}
	if r.Checks["downstream"] != CheckOK {
		t.Errorf("expected downstream %q, got %q", CheckOK, r.Checks["downstream"])
	}
}

func TestCheck_AllFailedUnhealthy(t *testing.T) {
	svc := New().WithCheck("downstream", &mockChecker{err: errors.New("conn refused")})
	r := svc.Check(context.Background())

	if r.Status != Unhealthy {
		t.Errorf("expected %q, got %q", Unhealthy, r.Status)
	}
}

func TestCheck_NilCheckerIgnored(t *testing.T) {
	r := New().WithCheck("embedding", nil).Check(context.Background())

	if _, ok := r.Checks["embedding"]; ok {
		t.Error("nil checker should not be registered")
	}
}

func TestCheck_Timeout(t *testing.T) {
	svc := New().WithTimeout(10 * time.Millisecond).WithCheck("slow", slowChecker{})

	start := time.Now()
	r := svc.Check(context.Background())

	if r.Checks["slow"] != CheckError {
		t.Errorf("expected slow check to fail, got %q", r.Checks["slow"])
	}
	if time.Since(start) > time.Second {
		t.Error("timeout not applied")
	}
}
