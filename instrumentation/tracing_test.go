package instrumentation

import (
	"context"
	"errors"
	"testing"

	"go.opentelemetry.io/otel/attribute"
)

func TestRecordError(t *testing.T) {
	inst, err := New(Config{Enabled: true})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	defer func() { _ = inst.Shutdown(context.Background()) }()

	_, span := inst.Tracer("storage").Start(context.Background(), "test-span")
	defer span.End()

	RecordError(span, errors.New("slot write failed"))
	RecordError(span, nil)
	RecordError(nil, errors.New("nil span"))

	// Should not panic
}

func TestSetSpanSuccess(t *testing.T) {
	inst, err := New(Config{Enabled: true})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	defer func() { _ = inst.Shutdown(context.Background()) }()

	_, span := inst.Tracer("storage").Start(context.Background(), "test-span")
	defer span.End()

	SetSpanSuccess(span)
	SetSpanSuccess(nil)

	// Should not panic
}

func TestSetSpanError(t *testing.T) {
	inst, err := New(Config{Enabled: true})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	defer func() { _ = inst.Shutdown(context.Background()) }()

	_, span := inst.Tracer("storage").Start(context.Background(), "test-span")
	defer span.End()

	SetSpanError(span, "stored profile discarded: version_mismatch")
	SetSpanError(nil, "nil span")

	// Should not panic
}

func TestSetSpanAttributes(t *testing.T) {
	inst, err := New(Config{Enabled: true})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	defer func() { _ = inst.Shutdown(context.Background()) }()

	_, span := inst.Tracer("storage").Start(context.Background(), "test-span")
	defer span.End()

	SetSpanAttributes(span, attribute.String(AttrSlotOperation, "persist"))
	SetSpanAttributes(nil, attribute.String(AttrSlotOperation, "persist"))

	// Should not panic
}

func TestAddSlotAttributes(t *testing.T) {
	inst, err := New(Config{Enabled: true})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	defer func() { _ = inst.Shutdown(context.Background()) }()

	_, span := inst.Tracer("storage").Start(context.Background(), "test-span")
	defer span.End()

	AddSlotAttributes(span, "persist", 512)
	AddSlotAttributes(span, "", 0)
	AddSlotAttributes(nil, "load", 128)

	// Should not panic
}
