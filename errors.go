package authkit

import (
	"errors"
	"fmt"
)

// Error kinds as constants. The set is closed; callers can switch on
// ErrorKind to decide recovery.
const (
	// KindInvalidInput means the input failed validation or sanitization.
	// Recoverable: the user corrects and retries.
	KindInvalidInput = "invalid_input"

	// KindRateLimited means too many attempts inside the window.
	// Recoverable after cooldown.
	KindRateLimited = "rate_limited"

	// KindSuspiciousContent means a heuristic matched a disallowed pattern.
	// Treated like invalid input but additionally audited.
	KindSuspiciousContent = "suspicious_content"

	// KindSessionInvalid means the persisted record is corrupt, expired, or
	// version-mismatched. Not user-correctable; forces fresh login.
	KindSessionInvalid = "session_invalid"

	// KindCryptoUnavailable means no cryptographic primitive was available.
	KindCryptoUnavailable = "crypto_unavailable"

	// KindPersistenceFailure means encryption or the storage write failed.
	// The system never degrades to unencrypted storage.
	KindPersistenceFailure = "persistence_failure"
)

// AuthError carries a machine-readable kind plus a human message.
type AuthError struct {
	Kind    string // one of the Kind* constants
	Message string // human-readable description
}

// Error implements the error interface
func (e *AuthError) Error() string {
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

// NewAuthError creates a new typed error
func NewAuthError(kind, message string) *AuthError {
	return &AuthError{Kind: kind, Message: message}
}

// Constructors for each kind, matching the recovery taxonomy above.
var (
	ErrInvalidInput = func(msg string) *AuthError {
		return NewAuthError(KindInvalidInput, msg)
	}

	ErrRateLimited = func(msg string) *AuthError {
		return NewAuthError(KindRateLimited, msg)
	}

	ErrSuspiciousContent = func(msg string) *AuthError {
		return NewAuthError(KindSuspiciousContent, msg)
	}

	ErrSessionInvalid = func(msg string) *AuthError {
		return NewAuthError(KindSessionInvalid, msg)
	}

	ErrCryptoUnavailable = func(msg string) *AuthError {
		return NewAuthError(KindCryptoUnavailable, msg)
	}

	ErrPersistenceFailure = func(msg string) *AuthError {
		return NewAuthError(KindPersistenceFailure, msg)
	}
)

// ErrorKind returns the kind of err if it is an *AuthError, or "" otherwise.
func ErrorKind(err error) string {
	var ae *AuthError
	if errors.As(err, &ae) {
		return ae.Kind
	}
	return ""
}
