package authkit

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/caarlos0/env/v11"

	"github.com/mlacademy/authkit/security"
)

// Config holds the profile store configuration.
// Structured using composition for better organization and maintainability.
type Config struct {
	// TotalRoadmapItems is the externally defined number of progress items.
	// CompletionDate is stamped when this many items are complete.
	// Default: 16
	TotalRoadmapItems int `env:"AUTHKIT_TOTAL_ROADMAP_ITEMS"`

	// MaxNoteLength bounds note text at mutation time. Default: 2000
	MaxNoteLength int `env:"AUTHKIT_MAX_NOTE_LENGTH"`

	// Session holds session timeout and timer settings
	Session SessionConfig `envPrefix:"AUTHKIT_SESSION_"`

	// RateLimit holds rate limiting configuration
	RateLimit RateLimitConfig `envPrefix:"AUTHKIT_RATELIMIT_"`

	// Security holds security settings (secure by default)
	Security SecurityConfig `envPrefix:"AUTHKIT_SECURITY_"`

	// Logger for structured logging (optional, uses default if not provided)
	Logger *slog.Logger `env:"-"`
}

// SessionConfig holds session lifecycle settings
type SessionConfig struct {
	// Timeout is the idle timeout after which a session is invalidated.
	// Default: 20 minutes
	Timeout time.Duration `env:"TIMEOUT"`

	// IdleCheckInterval is how often the background checker polls elapsed
	// idle time. Default: 30 seconds
	IdleCheckInterval time.Duration `env:"IDLE_CHECK_INTERVAL"`

	// HeartbeatInterval is how often the security heartbeat emits a periodic
	// audit event while a session is active. Default: 5 minutes
	HeartbeatInterval time.Duration `env:"HEARTBEAT_INTERVAL"`
}

// RateLimitConfig holds rate limiting configuration
type RateLimitConfig struct {
	// LoginMaxAttempts is the short-window login attempt budget per client
	// fingerprint. Default: 3
	LoginMaxAttempts int `env:"LOGIN_MAX_ATTEMPTS"`

	// LoginWindow is the short sliding window. Default: 10 minutes
	LoginWindow time.Duration `env:"LOGIN_WINDOW"`

	// FallbackMaxAttempts is the looser long-window budget applied once the
	// short window is saturated. Default: 5
	FallbackMaxAttempts int `env:"FALLBACK_MAX_ATTEMPTS"`

	// FallbackWindow is the long sliding window. Default: 1 hour
	FallbackWindow time.Duration `env:"FALLBACK_WINDOW"`

	// NoteBurst is the maximum number of notes that can be created in quick
	// succession. Default: 5
	NoteBurst int `env:"NOTE_BURST"`

	// NoteInterval is the sustained pace at which the note budget refills,
	// one note per interval. Default: 10 seconds
	NoteInterval time.Duration `env:"NOTE_INTERVAL"`
}

// SecurityConfig holds security settings (secure by default)
type SecurityConfig struct {
	// EnableAuditLogging enables security audit logging.
	// Logs session events, profile mutations, and violations (PII hashed).
	EnableAuditLogging bool `env:"ENABLE_AUDIT_LOGGING"`

	// RequireHTTPS rejects non-HTTPS image URLs during validation.
	RequireHTTPS bool `env:"REQUIRE_HTTPS"`

	// MaxEnvelopeAge is how long stored envelopes remain decryptable.
	// Default: 30 days
	MaxEnvelopeAge time.Duration `env:"MAX_ENVELOPE_AGE"`
}

// DefaultConfig returns a config populated with the default values.
func DefaultConfig() *Config {
	return &Config{
		TotalRoadmapItems: 16,
		MaxNoteLength:     2000,
		Session: SessionConfig{
			Timeout:           security.DefaultSessionTimeout,
			IdleCheckInterval: 30 * time.Second,
			HeartbeatInterval: 5 * time.Minute,
		},
		RateLimit: RateLimitConfig{
			LoginMaxAttempts:    3,
			LoginWindow:         10 * time.Minute,
			FallbackMaxAttempts: 5,
			FallbackWindow:      time.Hour,
			NoteBurst:           5,
			NoteInterval:        10 * time.Second,
		},
		Security: SecurityConfig{
			EnableAuditLogging: true,
			MaxEnvelopeAge:     security.DefaultMaxEnvelopeAge,
		},
	}
}

// ConfigFromEnv returns the default config overridden by AUTHKIT_* environment
// variables.
func ConfigFromEnv() (*Config, error) {
	cfg := DefaultConfig()
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	return cfg, nil
}

// applyDefaults fills zero values so a partially populated config is usable.
func (c *Config) applyDefaults() {
	defaults := DefaultConfig()

	if c.TotalRoadmapItems <= 0 {
		c.TotalRoadmapItems = defaults.TotalRoadmapItems
	}
	if c.MaxNoteLength <= 0 {
		c.MaxNoteLength = defaults.MaxNoteLength
	}
	if c.Session.Timeout <= 0 {
		c.Session.Timeout = defaults.Session.Timeout
	}
	if c.Session.IdleCheckInterval <= 0 {
		c.Session.IdleCheckInterval = defaults.Session.IdleCheckInterval
	}
	if c.Session.HeartbeatInterval <= 0 {
		c.Session.HeartbeatInterval = defaults.Session.HeartbeatInterval
	}
	if c.RateLimit.LoginMaxAttempts <= 0 {
		c.RateLimit.LoginMaxAttempts = defaults.RateLimit.LoginMaxAttempts
	}
	if c.RateLimit.LoginWindow <= 0 {
		c.RateLimit.LoginWindow = defaults.RateLimit.LoginWindow
	}
	if c.RateLimit.FallbackMaxAttempts <= 0 {
		c.RateLimit.FallbackMaxAttempts = defaults.RateLimit.FallbackMaxAttempts
	}
	if c.RateLimit.FallbackWindow <= 0 {
		c.RateLimit.FallbackWindow = defaults.RateLimit.FallbackWindow
	}
	if c.RateLimit.NoteBurst <= 0 {
		c.RateLimit.NoteBurst = defaults.RateLimit.NoteBurst
	}
	if c.RateLimit.NoteInterval <= 0 {
		c.RateLimit.NoteInterval = defaults.RateLimit.NoteInterval
	}
	if c.Security.MaxEnvelopeAge <= 0 {
		c.Security.MaxEnvelopeAge = defaults.Security.MaxEnvelopeAge
	}
	if c.Logger == nil {
		c.Logger = slog.Default()
	}
}
