package instrumentation

import (
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// Common span attribute keys
//
// SECURITY WARNING: Never put actual sensitive values (session tokens,
// envelope keys, raw names or email addresses) in traces. Only record
// metadata such as operation names, outcomes and payload sizes. Traces are
// often persisted for extended periods and replicated across monitoring
// infrastructure, so a leaked credential in a span outlives the session
// it belongs to.
const (
	// Storage slot attributes - SAFE to use for metadata only
	AttrSlotOperation = "slot.operation" // Slot operation (persist, load, clear)
	AttrSlotResult    = "slot.result"    // Operation outcome (success, error)
	AttrEnvelopeSize  = "slot.envelope_size"

	// Session attributes - SAFE to use for metadata only
	AttrSessionEvent   = "session.event"          // Lifecycle event (login, logout, timeout)
	AttrDiscardReason  = "session.discard_reason" // Why a stored session was discarded
	AttrProfileIDHash  = "session.profile_id_hash"
	AttrSecurityArea   = "security.area"               // Subsystem (validation, ratelimit, crypto)
	AttrRateLimiter    = "security.rate_limiter.type"  // Which limiter rejected
	AttrAuditEventType = "security.audit.event_type"   // Audit event emitted alongside the span
	AttrCryptoOp       = "security.crypto.operation"   // Envelope operation (encrypt, decrypt)

	// RESERVED - DO NOT USE: never set these to actual credential values.
	// Use boolean flags like "token_present" instead.
	AttrSessionToken = "session.token" //nolint:gosec // RESERVED - use "token_present" instead
	AttrEnvelopeKey  = "slot.envelope_key"
)

// RecordError records an error on a span with proper status codes (nil-safe)
func RecordError(span trace.Span, err error) {
	if span != nil && err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
}

// SetSpanSuccess marks a span as successful (nil-safe)
func SetSpanSuccess(span trace.Span) {
	if span != nil {
		span.SetStatus(codes.Ok, "")
	}
}

// SetSpanError sets an error status on a span (nil-safe)
// This is a convenience wrapper that safely handles nil spans
func SetSpanError(span trace.Span, message string) {
	if span != nil {
		span.SetStatus(codes.Error, message)
	}
}

// SetSpanAttributes sets attributes on a span (nil-safe)
// This is a convenience wrapper that safely handles nil spans
func SetSpanAttributes(span trace.Span, attrs ...attribute.KeyValue) {
	if span != nil {
		span.SetAttributes(attrs...)
	}
}

// AddSlotAttributes adds common storage slot attributes to a span (nil-safe)
func AddSlotAttributes(span trace.Span, operation string, envelopeSize int) {
	if operation != "" {
		SetSpanAttributes(span, attribute.String(AttrSlotOperation, operation))
	}
	if envelopeSize > 0 {
		SetSpanAttributes(span, attribute.Int(AttrEnvelopeSize, envelopeSize))
	}
}
