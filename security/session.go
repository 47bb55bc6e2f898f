package security

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"regexp"
	"strings"
	"time"
)

const (
	// SessionTokenLength is the fixed length of session tokens. Both
	// generation and shape validation use this value.
	SessionTokenLength = 43

	// DefaultSessionTimeout is the idle timeout after which a session is
	// forcibly invalidated.
	DefaultSessionTimeout = 20 * time.Minute
)

var sessionTokenPattern = regexp.MustCompile(fmt.Sprintf(`^[A-Za-z0-9]{%d}$`, SessionTokenLength))

// GenerateSessionToken returns a cryptographically random opaque session
// token: exactly SessionTokenLength alphanumeric characters, built by
// stripping padding and symbol characters from base64-encoded random bytes.
func GenerateSessionToken() (string, error) {
	var b strings.Builder
	b.Grow(SessionTokenLength)

	for b.Len() < SessionTokenLength {
		raw := make([]byte, 32)
		if _, err := rand.Read(raw); err != nil {
			return "", fmt.Errorf("failed to generate session token: %w", err)
		}

		encoded := base64.StdEncoding.EncodeToString(raw)
		for _, c := range encoded {
			if b.Len() == SessionTokenLength {
				break
			}
			if (c >= 'A' && c <= 'Z') || (c >= 'a' && c <= 'z') || (c >= '0' && c <= '9') {
				b.WriteRune(c)
			}
		}
	}

	return b.String(), nil
}

// IsValidSessionToken reports whether token matches the opaque-token shape:
// exactly SessionTokenLength alphanumeric characters. A stored profile whose
// token fails this check must be treated as corrupt and discarded.
func IsValidSessionToken(token string) bool {
	return sessionTokenPattern.MatchString(token)
}

// SessionExpired reports whether a session whose last activity was at
// lastActivity has exceeded the idle timeout as of now. A zero lastActivity
// is treated as expired.
func SessionExpired(lastActivity, now time.Time, timeout time.Duration) bool {
	if lastActivity.IsZero() {
		return true
	}
	return now.Sub(lastActivity) >= timeout
}
