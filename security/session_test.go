package security

import (
	"testing"
	"time"
)

func TestGenerateSessionToken(t *testing.T) {
	seen := make(map[string]bool)

	for i := 0; i < 50; i++ {
		token, err := GenerateSessionToken()
		if err != nil {
			t.Fatalf("GenerateSessionToken() error = %v", err)
		}
		if len(token) != SessionTokenLength {
			t.Fatalf("token length = %d, want %d", len(token), SessionTokenLength)
		}
		if !IsValidSessionToken(token) {
			t.Fatalf("generated token %q failed validation", token)
		}
		if seen[token] {
			t.Fatalf("duplicate token generated: %q", token)
		}
		seen[token] = true
	}
}

func TestIsValidSessionToken(t *testing.T) {
	valid, err := GenerateSessionToken()
	if err != nil {
		t.Fatalf("GenerateSessionToken() error = %v", err)
	}

	tests := []struct {
		name  string
		token string
		want  bool
	}{
		{"generated token", valid, true},
		{"empty", "", false},
		{"too short", "abc123", false},
		{"too long", valid + "x", false},
		{"contains hyphen", valid[:42] + "-", false},
		{"contains plus", valid[:42] + "+", false},
		{"contains slash", valid[:42] + "/", false},
		{"contains space", valid[:42] + " ", false},
		{"all zeros right length", "0000000000000000000000000000000000000000000", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsValidSessionToken(tt.token); got != tt.want {
				t.Errorf("IsValidSessionToken(%q) = %v, want %v", tt.token, got, tt.want)
			}
		})
	}
}

func TestSessionExpired(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	timeout := 20 * time.Minute

	tests := []struct {
		name         string
		lastActivity time.Time
		want         bool
	}{
		{"just active", now.Add(-time.Second), false},
		{"well within timeout", now.Add(-10 * time.Minute), false},
		{"exactly at timeout", now.Add(-timeout), true},
		{"past timeout", now.Add(-timeout - time.Second), true},
		{"zero last activity", time.Time{}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := SessionExpired(tt.lastActivity, now, timeout); got != tt.want {
				t.Errorf("SessionExpired(%v) = %v, want %v", tt.lastActivity, got, tt.want)
			}
		})
	}
}
