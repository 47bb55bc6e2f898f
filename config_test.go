package authkit

import (
	"testing"
	"time"

	"github.com/mlacademy/authkit/security"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.TotalRoadmapItems != 16 {
		t.Errorf("TotalRoadmapItems = %d, want 16", cfg.TotalRoadmapItems)
	}
	if cfg.MaxNoteLength != 2000 {
		t.Errorf("MaxNoteLength = %d, want 2000", cfg.MaxNoteLength)
	}
	if cfg.Session.Timeout != 20*time.Minute {
		t.Errorf("Session.Timeout = %v, want 20m", cfg.Session.Timeout)
	}
	if cfg.Session.IdleCheckInterval != 30*time.Second {
		t.Errorf("Session.IdleCheckInterval = %v, want 30s", cfg.Session.IdleCheckInterval)
	}
	if cfg.Session.HeartbeatInterval != 5*time.Minute {
		t.Errorf("Session.HeartbeatInterval = %v, want 5m", cfg.Session.HeartbeatInterval)
	}
	if cfg.RateLimit.LoginMaxAttempts != 3 || cfg.RateLimit.LoginWindow != 10*time.Minute {
		t.Errorf("login limiter = %d/%v, want 3/10m",
			cfg.RateLimit.LoginMaxAttempts, cfg.RateLimit.LoginWindow)
	}
	if cfg.RateLimit.FallbackMaxAttempts != 5 || cfg.RateLimit.FallbackWindow != time.Hour {
		t.Errorf("fallback limiter = %d/%v, want 5/1h",
			cfg.RateLimit.FallbackMaxAttempts, cfg.RateLimit.FallbackWindow)
	}
	if cfg.RateLimit.NoteBurst != 5 {
		t.Errorf("NoteBurst = %d, want 5", cfg.RateLimit.NoteBurst)
	}
	if !cfg.Security.EnableAuditLogging {
		t.Error("audit logging disabled by default")
	}
	if cfg.Security.MaxEnvelopeAge != security.DefaultMaxEnvelopeAge {
		t.Errorf("MaxEnvelopeAge = %v, want %v", cfg.Security.MaxEnvelopeAge, security.DefaultMaxEnvelopeAge)
	}
}

func TestApplyDefaults(t *testing.T) {
	cfg := &Config{TotalRoadmapItems: 8}
	cfg.applyDefaults()

	if cfg.TotalRoadmapItems != 8 {
		t.Errorf("TotalRoadmapItems = %d, explicit value overwritten", cfg.TotalRoadmapItems)
	}
	if cfg.MaxNoteLength != 2000 {
		t.Errorf("MaxNoteLength = %d, want default 2000", cfg.MaxNoteLength)
	}
	if cfg.Session.Timeout != 20*time.Minute {
		t.Errorf("Session.Timeout = %v, want default 20m", cfg.Session.Timeout)
	}
	if cfg.RateLimit.LoginMaxAttempts != 3 {
		t.Errorf("LoginMaxAttempts = %d, want default 3", cfg.RateLimit.LoginMaxAttempts)
	}
	if cfg.Logger == nil {
		t.Error("Logger not defaulted")
	}
}

func TestConfigFromEnv(t *testing.T) {
	t.Setenv("AUTHKIT_TOTAL_ROADMAP_ITEMS", "24")
	t.Setenv("AUTHKIT_MAX_NOTE_LENGTH", "500")
	t.Setenv("AUTHKIT_SESSION_TIMEOUT", "45m")
	t.Setenv("AUTHKIT_RATELIMIT_LOGIN_MAX_ATTEMPTS", "10")
	t.Setenv("AUTHKIT_SECURITY_ENABLE_AUDIT_LOGGING", "false")
	t.Setenv("AUTHKIT_SECURITY_REQUIRE_HTTPS", "true")

	cfg, err := ConfigFromEnv()
	if err != nil {
		t.Fatalf("ConfigFromEnv() error = %v", err)
	}

	if cfg.TotalRoadmapItems != 24 {
		t.Errorf("TotalRoadmapItems = %d, want 24", cfg.TotalRoadmapItems)
	}
	if cfg.MaxNoteLength != 500 {
		t.Errorf("MaxNoteLength = %d, want 500", cfg.MaxNoteLength)
	}
	if cfg.Session.Timeout != 45*time.Minute {
		t.Errorf("Session.Timeout = %v, want 45m", cfg.Session.Timeout)
	}
	if cfg.RateLimit.LoginMaxAttempts != 10 {
		t.Errorf("LoginMaxAttempts = %d, want 10", cfg.RateLimit.LoginMaxAttempts)
	}
	if cfg.Security.EnableAuditLogging {
		t.Error("EnableAuditLogging = true, want false")
	}
	if !cfg.Security.RequireHTTPS {
		t.Error("RequireHTTPS = false, want true")
	}

	// Untouched settings keep their defaults.
	if cfg.RateLimit.NoteBurst != 5 {
		t.Errorf("NoteBurst = %d, want default 5", cfg.RateLimit.NoteBurst)
	}
}

func TestConfigFromEnv_Defaults(t *testing.T) {
	cfg, err := ConfigFromEnv()
	if err != nil {
		t.Fatalf("ConfigFromEnv() error = %v", err)
	}
	if cfg.TotalRoadmapItems != 16 {
		t.Errorf("TotalRoadmapItems = %d, want default 16", cfg.TotalRoadmapItems)
	}
}
