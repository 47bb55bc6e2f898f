package instrumentation

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Metrics holds all metric instruments for the authkit library
type Metrics struct {
	// Session lifecycle
	LoginsTotal        metric.Int64Counter
	LoginFailuresTotal metric.Int64Counter
	LogoutsTotal       metric.Int64Counter
	SessionsExpired    metric.Int64Counter

	// Security
	RateLimitExceeded metric.Int64Counter
	SuspiciousInput   metric.Int64Counter

	// Profile mutations
	ProgressUpdates metric.Int64Counter
	NoteOperations  metric.Int64Counter

	// Persistence
	PersistOperationsTotal metric.Int64Counter
	PersistDuration        metric.Float64Histogram
	PersistErrorsTotal     metric.Int64Counter
}

// newMetrics creates and registers all metric instruments
func newMetrics(inst *Instrumentation) (*Metrics, error) {
	meter := inst.Meter("store")
	m := &Metrics{}

	var err error
	m.LoginsTotal, err = meter.Int64Counter(
		"authkit.logins.total",
		metric.WithDescription("Total number of successful logins"),
		metric.WithUnit("{login}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create logins.total counter: %w", err)
	}

	m.LoginFailuresTotal, err = meter.Int64Counter(
		"authkit.login.failures.total",
		metric.WithDescription("Total number of rejected login attempts"),
		metric.WithUnit("{attempt}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create login.failures.total counter: %w", err)
	}

	m.LogoutsTotal, err = meter.Int64Counter(
		"authkit.logouts.total",
		metric.WithDescription("Total number of explicit sign-outs"),
		metric.WithUnit("{logout}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create logouts.total counter: %w", err)
	}

	m.SessionsExpired, err = meter.Int64Counter(
		"authkit.sessions.expired",
		metric.WithDescription("Number of sessions invalidated by idle timeout or reload checks"),
		metric.WithUnit("{session}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create sessions.expired counter: %w", err)
	}

	m.RateLimitExceeded, err = meter.Int64Counter(
		"authkit.ratelimit.exceeded",
		metric.WithDescription("Number of operations rejected by rate limiting"),
		metric.WithUnit("{rejection}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create ratelimit.exceeded counter: %w", err)
	}

	m.SuspiciousInput, err = meter.Int64Counter(
		"authkit.input.suspicious",
		metric.WithDescription("Number of inputs rejected by suspicious-content heuristics"),
		metric.WithUnit("{rejection}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create input.suspicious counter: %w", err)
	}

	m.ProgressUpdates, err = meter.Int64Counter(
		"authkit.progress.updates",
		metric.WithDescription("Number of roadmap progress updates"),
		metric.WithUnit("{update}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create progress.updates counter: %w", err)
	}

	m.NoteOperations, err = meter.Int64Counter(
		"authkit.notes.operations",
		metric.WithDescription("Number of note add/update/delete operations"),
		metric.WithUnit("{operation}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create notes.operations counter: %w", err)
	}

	m.PersistOperationsTotal, err = meter.Int64Counter(
		"authkit.persist.operations.total",
		metric.WithDescription("Number of encrypted profile persistence operations"),
		metric.WithUnit("{operation}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create persist.operations.total counter: %w", err)
	}

	m.PersistDuration, err = meter.Float64Histogram(
		"authkit.persist.duration",
		metric.WithDescription("Encrypted profile persistence duration in milliseconds"),
		metric.WithUnit("ms"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create persist.duration histogram: %w", err)
	}

	m.PersistErrorsTotal, err = meter.Int64Counter(
		"authkit.persist.errors.total",
		metric.WithDescription("Number of failed persistence operations"),
		metric.WithUnit("{error}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create persist.errors.total counter: %w", err)
	}

	return m, nil
}

// RecordLogin records a successful login
func (m *Metrics) RecordLogin(ctx context.Context) {
	if m == nil {
		return
	}
	m.LoginsTotal.Add(ctx, 1)
}

// RecordLoginFailure records a rejected login attempt with its rejection kind
func (m *Metrics) RecordLoginFailure(ctx context.Context, kind string) {
	if m == nil {
		return
	}
	m.LoginFailuresTotal.Add(ctx, 1, metric.WithAttributes(
		attribute.String("kind", kind),
	))
}

// RecordLogout records an explicit sign-out
func (m *Metrics) RecordLogout(ctx context.Context) {
	if m == nil {
		return
	}
	m.LogoutsTotal.Add(ctx, 1)
}

// RecordSessionExpired records a session invalidated for the given reason
func (m *Metrics) RecordSessionExpired(ctx context.Context, reason string) {
	if m == nil {
		return
	}
	m.SessionsExpired.Add(ctx, 1, metric.WithAttributes(
		attribute.String("reason", reason),
	))
}

// RecordRateLimitExceeded records a rate-limited operation
func (m *Metrics) RecordRateLimitExceeded(ctx context.Context, limiterType string) {
	if m == nil {
		return
	}
	m.RateLimitExceeded.Add(ctx, 1, metric.WithAttributes(
		attribute.String("limiter", limiterType),
	))
}

// RecordSuspiciousInput records an input rejected by the heuristics
func (m *Metrics) RecordSuspiciousInput(ctx context.Context, field string) {
	if m == nil {
		return
	}
	m.SuspiciousInput.Add(ctx, 1, metric.WithAttributes(
		attribute.String("field", field),
	))
}

// RecordProgressUpdate records a roadmap progress update
func (m *Metrics) RecordProgressUpdate(ctx context.Context, completed bool) {
	if m == nil {
		return
	}
	m.ProgressUpdates.Add(ctx, 1, metric.WithAttributes(
		attribute.Bool("completed", completed),
	))
}

// RecordNoteOperation records a note mutation ("add", "update", "delete")
func (m *Metrics) RecordNoteOperation(ctx context.Context, op string) {
	if m == nil {
		return
	}
	m.NoteOperations.Add(ctx, 1, metric.WithAttributes(
		attribute.String("operation", op),
	))
}

// RecordPersist records a persistence operation with its outcome and duration
func (m *Metrics) RecordPersist(ctx context.Context, durationMs float64, err error) {
	if m == nil {
		return
	}
	m.PersistOperationsTotal.Add(ctx, 1, metric.WithAttributes(
		attribute.Bool("success", err == nil),
	))
	m.PersistDuration.Record(ctx, durationMs)
	if err != nil {
		m.PersistErrorsTotal.Add(ctx, 1)
	}
}
