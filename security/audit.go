// Package security provides the security primitives for the profile store:
// input sanitization and validation, keyed rate limiting, session token
// management, envelope encryption, and audit logging.
package security

import (
	"crypto/sha256"
	"encoding/hex"
	"log/slog"
	"time"
)

// Auditor handles security event logging with PII protection.
type Auditor struct {
	logger  *slog.Logger
	enabled bool
}

// NewAuditor creates a new security auditor
func NewAuditor(logger *slog.Logger, enabled bool) *Auditor {
	if logger == nil {
		logger = slog.Default()
	}
	return &Auditor{
		logger:  logger,
		enabled: enabled,
	}
}

// Event represents a security audit event
type Event struct {
	Type      string
	UserID    string
	Details   map[string]any
	Timestamp time.Time
}

// LogEvent logs a security event with hashed PII
func (a *Auditor) LogEvent(event Event) {
	if a == nil || !a.enabled {
		return
	}

	event.Timestamp = time.Now()

	a.logger.Warn("security_audit",
		"event_type", event.Type,
		"user_id_hash", hashForLogging(event.UserID),
		"details", event.Details,
		"timestamp", event.Timestamp,
	)
}

// Log records an event of the given type with free-form details and no user attribution.
func (a *Auditor) Log(eventType string, details map[string]any) {
	a.LogEvent(Event{Type: eventType, Details: details})
}

// LogForUser records an event attributed to a user. The user ID is hashed before logging.
func (a *Auditor) LogForUser(eventType, userID string, details map[string]any) {
	a.LogEvent(Event{Type: eventType, UserID: userID, Details: details})
}

// LogLogin logs a successful login
func (a *Auditor) LogLogin(userID, emailPrefix string) {
	a.LogEvent(Event{
		Type:   EventLogin,
		UserID: userID,
		Details: map[string]any{
			"email_prefix_hash": hashForLogging(emailPrefix),
		},
	})
}

// LogLogout logs an explicit sign-out
func (a *Auditor) LogLogout(userID string) {
	a.LogEvent(Event{
		Type:   EventLogout,
		UserID: userID,
	})
}

// LogRateLimitExceeded logs a rate limit violation for a keyed attempt window
func (a *Auditor) LogRateLimitExceeded(key string, attempts int) {
	a.LogEvent(Event{
		Type: EventRateLimitExceeded,
		Details: map[string]any{
			"key_hash": hashForLogging(key),
			"attempts": attempts,
		},
	})
}

// LogSessionInvalid logs a discarded stored session with the reason it was rejected
func (a *Auditor) LogSessionInvalid(eventType, userID string) {
	a.LogEvent(Event{
		Type:   eventType,
		UserID: userID,
	})
}

// hashForLogging creates a SHA256 hash of sensitive data for logging
func hashForLogging(sensitive string) string {
	if sensitive == "" {
		return "<empty>"
	}
	hash := sha256.Sum256([]byte(sensitive))
	return hex.EncodeToString(hash[:])[:16]
}
