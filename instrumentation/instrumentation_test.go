package instrumentation

import (
	"context"
	"errors"
	"testing"
)

func TestNew_Disabled(t *testing.T) {
	inst, err := New(Config{Enabled: false})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	defer inst.Shutdown(context.Background())

	if inst.Metrics() == nil {
		t.Error("Metrics() nil even with no-op providers")
	}
	if inst.MeterProvider() == nil {
		t.Error("MeterProvider() nil")
	}
	if inst.TracerProvider() == nil {
		t.Error("TracerProvider() nil")
	}
}

func TestNew_DefaultsServiceName(t *testing.T) {
	inst, err := New(Config{})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	defer inst.Shutdown(context.Background())

	if inst.config.ServiceName != "authkit" {
		t.Errorf("ServiceName = %q, want %q", inst.config.ServiceName, "authkit")
	}
	if inst.config.ServiceVersion != DefaultServiceVersion {
		t.Errorf("ServiceVersion = %q, want %q", inst.config.ServiceVersion, DefaultServiceVersion)
	}
}

func TestMeterAndTracerScopes(t *testing.T) {
	inst, err := New(Config{})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	defer inst.Shutdown(context.Background())

	if inst.Meter("store") == nil {
		t.Error("Meter() returned nil")
	}
	if inst.Tracer("store") == nil {
		t.Error("Tracer() returned nil")
	}
}

func TestShutdown_Idempotent(t *testing.T) {
	inst, err := New(Config{})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	ctx := context.Background()
	if err := inst.Shutdown(ctx); err != nil {
		t.Errorf("first Shutdown() error = %v", err)
	}
	if err := inst.Shutdown(ctx); err != nil {
		t.Errorf("second Shutdown() error = %v", err)
	}
}

func TestMetrics_RecordersAreSafe(t *testing.T) {
	inst, err := New(Config{})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	defer inst.Shutdown(context.Background())

	ctx := context.Background()
	m := inst.Metrics()

	// All recorders must work against no-op providers.
	m.RecordLogin(ctx)
	m.RecordLoginFailure(ctx, "invalid_input")
	m.RecordLogout(ctx)
	m.RecordSessionExpired(ctx, "idle_timeout")
	m.RecordRateLimitExceeded(ctx, "login")
	m.RecordSuspiciousInput(ctx, "name")
	m.RecordProgressUpdate(ctx, true)
	m.RecordNoteOperation(ctx, "add")
	m.RecordPersist(ctx, 1.5, nil)
	m.RecordPersist(ctx, 1.5, errors.New("boom"))
}

func TestMetrics_NilReceiver(t *testing.T) {
	var m *Metrics
	ctx := context.Background()

	// A store without instrumentation attached records into a nil Metrics.
	m.RecordLogin(ctx)
	m.RecordLogout(ctx)
	m.RecordPersist(ctx, 0, nil)
}
