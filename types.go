// Package authkit implements the client-side security and session-persistence
// core of the learning academy: an encrypted, locally persisted user profile
// with progress tracking and notes, gated by session tokens, idle timeouts,
// input validation and rate limiting.
package authkit

import (
	"encoding/json"
	"fmt"
	"time"
)

// CurrentSecurityVersion tags the schema/encryption generation that produces
// persisted records. A stored profile carrying any other version is discarded
// on load; there is no migration path.
const CurrentSecurityVersion = 2

// Profile is the persisted per-user record and the sole unit of persisted
// identity. It exists only while a session is active.
type Profile struct {
	// ID is an opaque unique identifier, generated at creation, immutable.
	ID string `json:"id"`

	// Name and Email are sanitized, validated at creation, and immutable after.
	Name  string `json:"name"`
	Email string `json:"email"`

	// Progress maps roadmap item keys to completion flags.
	Progress map[string]bool `json:"progress"`

	// Notes is an ordered sequence of sanitized text blocks. Deleting a note
	// shifts subsequent indices down.
	Notes []string `json:"notes"`

	// CompletionDate is set exactly once, the instant every roadmap item is
	// complete, and never cleared.
	CompletionDate *time.Time `json:"completionDate,omitempty"`

	// LastActivity is refreshed on every mutating operation and on successful
	// reload; it drives the idle timeout.
	LastActivity time.Time `json:"lastActivity"`

	// SessionToken is the opaque per-session credential, created at login and
	// re-validated on load.
	SessionToken string `json:"sessionToken"`

	// SecurityVersion identifies the generation that produced this record.
	SecurityVersion int `json:"securityVersion"`
}

// Clone returns a deep copy of the profile, so callers can read a snapshot
// without aliasing the store's internal state.
func (p *Profile) Clone() *Profile {
	if p == nil {
		return nil
	}

	clone := *p

	clone.Progress = make(map[string]bool, len(p.Progress))
	for k, v := range p.Progress {
		clone.Progress[k] = v
	}

	clone.Notes = append([]string(nil), p.Notes...)

	if p.CompletionDate != nil {
		d := *p.CompletionDate
		clone.CompletionDate = &d
	}

	return &clone
}

// CompletedCount returns the number of roadmap items marked complete.
func (p *Profile) CompletedCount() int {
	n := 0
	for _, done := range p.Progress {
		if done {
			n++
		}
	}
	return n
}

// encodeProfile serializes a profile to the JSON payload sealed into the
// storage envelope.
func encodeProfile(p *Profile) (string, error) {
	data, err := json.Marshal(p)
	if err != nil {
		return "", fmt.Errorf("encode profile: %w", err)
	}
	return string(data), nil
}

// decodeProfile parses a profile payload recovered from the envelope.
func decodeProfile(data string) (*Profile, error) {
	var p Profile
	if err := json.Unmarshal([]byte(data), &p); err != nil {
		return nil, fmt.Errorf("decode profile: %w", err)
	}
	if p.Progress == nil {
		p.Progress = make(map[string]bool)
	}
	if p.Notes == nil {
		p.Notes = []string{}
	}
	return &p, nil
}
