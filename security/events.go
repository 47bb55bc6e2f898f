package security

// Event type constants for security audit logging.
// These constants ensure consistency across the codebase and prevent typos
// when logging security-relevant events.
const (
	// Session lifecycle events

	// EventLogin is logged when a profile is created through a successful login
	EventLogin = "user_login"

	// EventLogout is logged when the user signs out explicitly
	EventLogout = "user_logout"

	// EventSessionExpired is logged when a stored session exceeds the idle timeout
	EventSessionExpired = "session_expired"

	// EventSessionTimeout is logged when the idle-timeout checker forces a sign-out
	EventSessionTimeout = "session_timeout"

	// EventInvalidSessionToken is logged when a stored session token fails the shape check
	EventInvalidSessionToken = "invalid_session_token"

	// EventSecurityVersionMismatch is logged when a stored profile was written by an
	// incompatible schema/encryption generation and is discarded
	EventSecurityVersionMismatch = "security_version_mismatch"

	// Input validation events

	// EventSuspiciousInput is logged when free-text input matches a disallowed pattern
	EventSuspiciousInput = "suspicious_input_detected"

	// EventSuspiciousLogin is logged when login fields match the suspicious-content heuristics
	EventSuspiciousLogin = "suspicious_login_attempt"

	// EventInvalidLoginInput is logged when login name or email fail validation
	EventInvalidLoginInput = "invalid_login_input"

	// EventInvalidProgressItem is logged when a progress update names a malformed item key
	EventInvalidProgressItem = "invalid_progress_item"

	// EventInvalidNoteContent is logged when note text fails validation
	EventInvalidNoteContent = "invalid_note_content"

	// EventUntrustedImageDomain is logged when an image URL points outside the allow-list
	EventUntrustedImageDomain = "untrusted_image_domain"

	// EventInvalidURLFormat is logged when a URL cannot be parsed
	EventInvalidURLFormat = "invalid_url_format"

	// Rate limiting events

	// EventRateLimitExceeded is logged when a keyed attempt window is saturated
	EventRateLimitExceeded = "rate_limit_exceeded"

	// EventAccountLocked is logged when both the short-window and fallback login
	// limiters reject the same client
	EventAccountLocked = "account_locked"

	// EventNoteRateLimit is logged when note creation exceeds the burst threshold
	EventNoteRateLimit = "note_rate_limit_reached"

	// Persistence events

	// EventProfileSaved is logged after the encrypted profile is written to the slot
	EventProfileSaved = "user_data_saved"

	// EventProfileSaveError is logged when encryption or the slot write fails
	EventProfileSaveError = "user_data_save_error"

	// EventProfileLoadError is logged when a stored profile cannot be read back
	EventProfileLoadError = "user_data_load_error"

	// EventEncryptionFailed is logged when envelope encryption fails
	EventEncryptionFailed = "encryption_failed"

	// EventDecryptionFailed is logged when envelope decryption fails or the
	// envelope is past its maximum age
	EventDecryptionFailed = "decryption_failed"

	// Progress events

	// EventCourseCompleted is logged the first time every roadmap item is marked complete
	EventCourseCompleted = "course_completed"

	// Note events

	// EventNoteAdded is logged when a note is appended
	EventNoteAdded = "note_added"

	// EventNoteUpdated is logged when a note is edited in place
	EventNoteUpdated = "note_updated"

	// EventNoteDeleted is logged when a note is removed
	EventNoteDeleted = "note_deleted"

	// Operational events

	// EventSecurityHeartbeat is logged periodically while a session is active,
	// summarizing progress and note counts for monitoring
	EventSecurityHeartbeat = "periodic_security_check"
)
