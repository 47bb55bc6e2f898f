package authkit

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/time/rate"

	"github.com/mlacademy/authkit/instrumentation"
	"github.com/mlacademy/authkit/internal/util"
	"github.com/mlacademy/authkit/security"
	"github.com/mlacademy/authkit/storage"
)

// suspiciousLoginPatterns reject login fields that look like probing or
// injection attempts rather than a real name/email.
var suspiciousLoginPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)admin`),
	regexp.MustCompile(`(?i)root`),
	regexp.MustCompile(`(?i)test`),
	regexp.MustCompile(`(?i)null`),
	regexp.MustCompile(`(?i)undefined`),
	regexp.MustCompile(`(?i)<script`),
	regexp.MustCompile(`(?i)javascript:`),
	regexp.MustCompile(`(?i)data:`),
}

// ProfileStore owns the authenticated user's profile and orchestrates its
// lifecycle: login, reload from the encrypted slot, progress and note
// mutations, and forced sign-out on idle timeout. It is either SignedOut
// (Profile returns nil) or SignedIn.
//
// All mutating methods persist the full record through the envelope codec
// before returning; a nil error means the change is durably stored. The
// store never writes the profile in clear text, not even as a fallback.
type ProfileStore struct {
	mu      sync.Mutex
	profile *Profile

	slot      storage.ProfileSlot
	codec     *security.Codec
	auditor   *security.Auditor
	validator *security.Validator

	loginLimiter    *security.AttemptLimiter
	fallbackLimiter *security.AttemptLimiter
	noteLimiter     *rate.Limiter

	now     func() time.Time
	config  *Config
	logger  *slog.Logger
	metrics *instrumentation.Metrics
	tracer  trace.Tracer

	stopTimers chan struct{}
	stopOnce   sync.Once
	started    bool
}

// NewProfileStore creates a profile store over the given slot.
// A nil config selects the defaults.
func NewProfileStore(slot storage.ProfileSlot, config *Config) (*ProfileStore, error) {
	if slot == nil {
		return nil, fmt.Errorf("profile slot is required")
	}
	if config == nil {
		config = DefaultConfig()
	}
	config.applyDefaults()

	auditor := security.NewAuditor(config.Logger, config.Security.EnableAuditLogging)

	s := &ProfileStore{
		slot:      slot,
		codec:     security.NewCodecWithMaxAge(config.Security.MaxEnvelopeAge, auditor),
		auditor:   auditor,
		validator: security.NewValidator(auditor, &security.ValidatorConfig{RequireHTTPS: config.Security.RequireHTTPS}),
		loginLimiter: security.NewAttemptLimiter(
			config.RateLimit.LoginMaxAttempts, config.RateLimit.LoginWindow, auditor, config.Logger),
		fallbackLimiter: security.NewAttemptLimiter(
			config.RateLimit.FallbackMaxAttempts, config.RateLimit.FallbackWindow, auditor, config.Logger),
		noteLimiter: rate.NewLimiter(rate.Every(config.RateLimit.NoteInterval), config.RateLimit.NoteBurst),
		now:         time.Now,
		config:      config,
		logger:      config.Logger,
		stopTimers:  make(chan struct{}),
	}

	return s, nil
}

// SetInstrumentation attaches OpenTelemetry metrics and tracing. Call before Start.
func (s *ProfileStore) SetInstrumentation(inst *instrumentation.Instrumentation) {
	if inst != nil {
		s.metrics = inst.Metrics()
		s.tracer = inst.Tracer("storage")
	}
}

// startSlotSpan starts a new span for a storage slot operation.
// Returns a context with the span attached and the span itself.
func (s *ProfileStore) startSlotSpan(ctx context.Context, operation string) (context.Context, trace.Span) {
	if s.tracer == nil {
		return ctx, trace.SpanFromContext(ctx)
	}

	return s.tracer.Start(ctx, fmt.Sprintf("storage.%s", operation),
		trace.WithAttributes(
			attribute.String(instrumentation.AttrSlotOperation, operation),
		))
}

// setNowFunc overrides every internal time source, for deterministic tests.
func (s *ProfileStore) setNowFunc(now func() time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.now = now
	s.codec.SetNowFunc(now)
	s.loginLimiter.SetNowFunc(now)
	s.fallbackLimiter.SetNowFunc(now)
}

// Validator exposes the input/URL validator so UI collaborators can pre-check
// fields and external resource URLs without duplicating security state.
func (s *ProfileStore) Validator() *security.Validator {
	return s.validator
}

// Start restores any persisted session and starts the idle-timeout checker
// and the security heartbeat. The timers run until Stop is called.
func (s *ProfileStore) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.started {
		s.mu.Unlock()
		return fmt.Errorf("profile store already started")
	}
	s.started = true
	s.mu.Unlock()

	if err := s.Load(ctx); err != nil {
		s.logger.Error("Failed to restore persisted session", "error", err)
	}

	go s.idleCheckLoop()
	go s.heartbeatLoop()

	return nil
}

// Stop tears the store down: both background timers and the limiter cleanup
// goroutines stop together. Safe to call multiple times.
func (s *ProfileStore) Stop() {
	s.stopOnce.Do(func() {
		close(s.stopTimers)
		s.loginLimiter.Stop()
		s.fallbackLimiter.Stop()
		s.logger.Debug("Profile store stopped")
	})
}

// Profile returns a snapshot of the signed-in profile, or nil when signed out.
// Callers must mutate only through the store's methods.
func (s *ProfileStore) Profile() *Profile {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.profile.Clone()
}

// Login validates and sanitizes the submitted name and email, applies both
// login rate limiters keyed by the client fingerprint, and on success mints
// a fresh profile with empty progress and notes, persists it encrypted, and
// transitions the store to SignedIn.
func (s *ProfileStore) Login(ctx context.Context, name, email, fingerprint string) (*Profile, error) {
	if !s.loginLimiter.Allow(fingerprint) {
		if !s.fallbackLimiter.Allow("hourly_" + fingerprint) {
			s.auditor.Log(security.EventAccountLocked, map[string]any{
				"fingerprint": util.SafeTruncate(fingerprint, 40),
			})
			s.metrics.RecordLoginFailure(ctx, KindRateLimited)
			return nil, ErrRateLimited("account temporarily locked, please try again later")
		}
		s.metrics.RecordLoginFailure(ctx, KindRateLimited)
		return nil, ErrRateLimited("too many login attempts, please wait before trying again")
	}

	sanitizedName := security.SanitizePlainText(strings.TrimSpace(name))
	sanitizedEmail := security.SanitizePlainText(strings.TrimSpace(email))

	if !s.validator.ValidateName(sanitizedName) {
		s.auditor.Log(security.EventInvalidLoginInput, map[string]any{
			"field": "name",
			"name":  util.SafeTruncate(sanitizedName, 10),
		})
		s.metrics.RecordLoginFailure(ctx, KindInvalidInput)
		return nil, ErrInvalidInput("name contains invalid characters or is too short or long")
	}

	if !s.validator.ValidateEmail(sanitizedEmail) {
		s.auditor.Log(security.EventInvalidLoginInput, map[string]any{
			"field": "email",
			"email": util.SafeTruncate(sanitizedEmail, 20),
		})
		s.metrics.RecordLoginFailure(ctx, KindInvalidInput)
		return nil, ErrInvalidInput("invalid email address")
	}

	if loginFieldsSuspicious(sanitizedName, sanitizedEmail) {
		s.auditor.Log(security.EventSuspiciousLogin, map[string]any{
			"name":  util.SafeTruncate(sanitizedName, 10),
			"email": util.SafeTruncate(sanitizedEmail, 20),
		})
		s.metrics.RecordLoginFailure(ctx, KindSuspiciousContent)
		s.metrics.RecordSuspiciousInput(ctx, "login")
		return nil, ErrSuspiciousContent("please use a valid name and email address")
	}

	token, err := security.GenerateSessionToken()
	if err != nil {
		return nil, ErrCryptoUnavailable(fmt.Sprintf("cannot create session token: %v", err))
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	profile := &Profile{
		ID:              uuid.NewString(),
		Name:            sanitizedName,
		Email:           sanitizedEmail,
		Progress:        make(map[string]bool),
		Notes:           []string{},
		LastActivity:    s.now(),
		SessionToken:    token,
		SecurityVersion: CurrentSecurityVersion,
	}

	if err := s.persist(ctx, profile); err != nil {
		return nil, err
	}
	s.profile = profile

	s.auditor.LogLogin(profile.ID, util.SafeTruncate(sanitizedEmail, 20))
	s.metrics.RecordLogin(ctx)

	return profile.Clone(), nil
}

// Logout discards the in-memory profile and removes the persisted record
// entirely, transitioning the store to SignedOut.
func (s *ProfileStore) Logout(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.logoutLocked(ctx)
}

func (s *ProfileStore) logoutLocked(ctx context.Context) error {
	if s.profile != nil {
		s.auditor.LogLogout(s.profile.ID)
		s.metrics.RecordLogout(ctx)
	}
	s.profile = nil

	ctx, span := s.startSlotSpan(ctx, "clear")
	defer span.End()

	if err := s.slot.Clear(ctx); err != nil {
		instrumentation.RecordError(span, err)
		return ErrPersistenceFailure(fmt.Sprintf("cannot clear stored profile: %v", err))
	}
	instrumentation.SetSpanSuccess(span)
	return nil
}

// Load attempts to restore a persisted session. The stored record is
// discarded, never partially recovered, if decryption fails, the security
// version mismatches, the idle timeout has elapsed, or the session token
// fails the shape check. On success the profile is restored and its
// LastActivity refreshed.
func (s *ProfileStore) Load(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	ctx, span := s.startSlotSpan(ctx, "load")
	defer span.End()

	envelope, err := s.slot.Read(ctx)
	if errors.Is(err, storage.ErrNotFound) {
		instrumentation.SetSpanSuccess(span)
		return nil
	}
	if err != nil {
		instrumentation.RecordError(span, err)
		return ErrPersistenceFailure(fmt.Sprintf("cannot read stored profile: %v", err))
	}
	instrumentation.AddSlotAttributes(span, "", len(envelope))

	payload, err := s.codec.Decrypt(envelope)
	if err != nil {
		s.auditor.Log(security.EventProfileLoadError, map[string]any{"error": err.Error()})
		return s.discardStored(ctx, "decryption_failed")
	}

	stored, err := decodeProfile(payload)
	if err != nil {
		s.auditor.Log(security.EventProfileLoadError, map[string]any{"error": err.Error()})
		return s.discardStored(ctx, "malformed_profile")
	}

	if stored.SecurityVersion != CurrentSecurityVersion {
		s.auditor.Log(security.EventSecurityVersionMismatch, map[string]any{
			"stored":  stored.SecurityVersion,
			"current": CurrentSecurityVersion,
		})
		return s.discardStored(ctx, "version_mismatch")
	}

	if security.SessionExpired(stored.LastActivity, s.now(), s.config.Session.Timeout) {
		s.auditor.LogSessionInvalid(security.EventSessionExpired, stored.ID)
		return s.discardStored(ctx, "idle_timeout")
	}

	if !security.IsValidSessionToken(stored.SessionToken) {
		s.auditor.LogSessionInvalid(security.EventInvalidSessionToken, stored.ID)
		return s.discardStored(ctx, "invalid_token")
	}

	stored.LastActivity = s.now()
	if err := s.persist(ctx, stored); err != nil {
		return err
	}
	s.profile = stored

	instrumentation.SetSpanSuccess(span)
	return nil
}

// discardStored clears both the in-memory profile and the storage slot.
// Called with the mutex held.
func (s *ProfileStore) discardStored(ctx context.Context, reason string) error {
	s.profile = nil
	s.metrics.RecordSessionExpired(ctx, reason)

	span := trace.SpanFromContext(ctx)
	instrumentation.SetSpanAttributes(span, attribute.String(instrumentation.AttrDiscardReason, reason))
	instrumentation.SetSpanError(span, "stored profile discarded: "+reason)

	if err := s.slot.Clear(ctx); err != nil {
		return ErrPersistenceFailure(fmt.Sprintf("cannot clear stored profile: %v", err))
	}
	return nil
}

// SetProgress upserts the completion flag for a roadmap item, refreshing the
// session. A malformed item key is audited and silently ignored. The first
// time every item is complete, CompletionDate is stamped exactly once.
func (s *ProfileStore) SetProgress(ctx context.Context, itemID string, completed bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.profile == nil {
		return ErrSessionInvalid("not signed in")
	}

	if !s.validator.Validate(itemID, 100) {
		s.auditor.LogForUser(security.EventInvalidProgressItem, s.profile.ID, map[string]any{
			"item_id": util.SafeTruncate(itemID, 40),
		})
		return nil
	}

	updated := s.profile.Clone()
	updated.Progress[itemID] = completed
	updated.LastActivity = s.now()

	firstCompletion := false
	if updated.CompletionDate == nil && updated.CompletedCount() == s.config.TotalRoadmapItems {
		completedAt := s.now()
		updated.CompletionDate = &completedAt
		firstCompletion = true
	}

	if err := s.persist(ctx, updated); err != nil {
		return err
	}
	s.profile = updated

	if firstCompletion {
		s.auditor.LogForUser(security.EventCourseCompleted, updated.ID, nil)
	}
	s.metrics.RecordProgressUpdate(ctx, completed)

	return nil
}

// AddNote sanitizes and validates the note text, enforces the creation burst
// limit, then appends the note and persists. Bounds are enforced here, at
// mutation time, not at render time.
func (s *ProfileStore) AddNote(ctx context.Context, text string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.profile == nil {
		return ErrSessionInvalid("not signed in")
	}

	sanitized := security.SanitizePlainText(strings.TrimSpace(text))
	if !s.validator.Validate(sanitized, s.config.MaxNoteLength) {
		s.auditor.LogForUser(security.EventInvalidNoteContent, s.profile.ID, nil)
		return ErrInvalidInput("note is empty, too long, or contains disallowed content")
	}

	if !s.noteLimiter.Allow() {
		s.auditor.LogForUser(security.EventNoteRateLimit, s.profile.ID, nil)
		s.metrics.RecordRateLimitExceeded(ctx, "note")
		return ErrRateLimited("notes are being created too quickly, please slow down")
	}

	updated := s.profile.Clone()
	updated.Notes = append(updated.Notes, sanitized)
	updated.LastActivity = s.now()

	if err := s.persist(ctx, updated); err != nil {
		return err
	}
	s.profile = updated

	s.auditor.LogForUser(security.EventNoteAdded, updated.ID, nil)
	s.metrics.RecordNoteOperation(ctx, "add")

	return nil
}

// UpdateNote replaces the note at index in place after sanitizing and
// validating the replacement text.
func (s *ProfileStore) UpdateNote(ctx context.Context, index int, text string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.profile == nil {
		return ErrSessionInvalid("not signed in")
	}
	if index < 0 || index >= len(s.profile.Notes) {
		return ErrInvalidInput("note index out of range")
	}

	sanitized := security.SanitizePlainText(strings.TrimSpace(text))
	if !s.validator.Validate(sanitized, s.config.MaxNoteLength) {
		s.auditor.LogForUser(security.EventInvalidNoteContent, s.profile.ID, map[string]any{
			"index": index,
		})
		return ErrInvalidInput("note is empty, too long, or contains disallowed content")
	}

	updated := s.profile.Clone()
	updated.Notes[index] = sanitized
	updated.LastActivity = s.now()

	if err := s.persist(ctx, updated); err != nil {
		return err
	}
	s.profile = updated

	s.auditor.LogForUser(security.EventNoteUpdated, updated.ID, map[string]any{"index": index})
	s.metrics.RecordNoteOperation(ctx, "update")

	return nil
}

// DeleteNote removes the note at index, shifting subsequent indices down.
func (s *ProfileStore) DeleteNote(ctx context.Context, index int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.profile == nil {
		return ErrSessionInvalid("not signed in")
	}
	if index < 0 || index >= len(s.profile.Notes) {
		return ErrInvalidInput("note index out of range")
	}

	updated := s.profile.Clone()
	updated.Notes = append(updated.Notes[:index], updated.Notes[index+1:]...)
	updated.LastActivity = s.now()

	if err := s.persist(ctx, updated); err != nil {
		return err
	}
	s.profile = updated

	s.auditor.LogForUser(security.EventNoteDeleted, updated.ID, map[string]any{"index": index})
	s.metrics.RecordNoteOperation(ctx, "delete")

	return nil
}

// persist seals the profile into an envelope and writes it to the slot.
// It does not return until the write succeeds or fails; on failure the
// record is NOT cached in clear text anywhere.
// Called with the mutex held.
func (s *ProfileStore) persist(ctx context.Context, p *Profile) error {
	ctx, span := s.startSlotSpan(ctx, "persist")
	defer span.End()

	start := time.Now()

	payload, err := encodeProfile(p)
	if err != nil {
		instrumentation.RecordError(span, err)
		return ErrPersistenceFailure(err.Error())
	}

	envelope, err := s.codec.Encrypt(payload)
	if err != nil {
		s.auditor.LogForUser(security.EventProfileSaveError, p.ID, map[string]any{"error": err.Error()})
		s.metrics.RecordPersist(ctx, float64(time.Since(start).Milliseconds()), err)
		instrumentation.RecordError(span, err)
		return ErrCryptoUnavailable(fmt.Sprintf("cannot encrypt profile: %v", err))
	}
	instrumentation.AddSlotAttributes(span, "", len(envelope))

	if err := s.slot.Write(ctx, envelope); err != nil {
		s.auditor.LogForUser(security.EventProfileSaveError, p.ID, map[string]any{"error": err.Error()})
		s.metrics.RecordPersist(ctx, float64(time.Since(start).Milliseconds()), err)
		instrumentation.RecordError(span, err)
		return ErrPersistenceFailure(fmt.Sprintf("cannot write profile: %v", err))
	}

	s.auditor.LogForUser(security.EventProfileSaved, p.ID, nil)
	s.metrics.RecordPersist(ctx, float64(time.Since(start).Milliseconds()), nil)
	instrumentation.SetSpanSuccess(span)

	return nil
}

// idleCheckLoop polls elapsed idle time and forces a sign-out once the
// session timeout is exceeded.
func (s *ProfileStore) idleCheckLoop() {
	ticker := time.NewTicker(s.config.Session.IdleCheckInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.checkSessionTimeout()
		case <-s.stopTimers:
			return
		}
	}
}

// checkSessionTimeout signs the user out when the idle timeout has elapsed.
func (s *ProfileStore) checkSessionTimeout() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.profile == nil {
		return
	}
	if !security.SessionExpired(s.profile.LastActivity, s.now(), s.config.Session.Timeout) {
		return
	}

	ctx := context.Background()
	s.auditor.LogSessionInvalid(security.EventSessionTimeout, s.profile.ID)
	s.metrics.RecordSessionExpired(ctx, "idle_timeout")

	if err := s.logoutLocked(ctx); err != nil {
		s.logger.Error("Failed to clear profile on session timeout", "error", err)
	}
}

// heartbeatLoop periodically emits an audit event summarizing the current
// session for security monitoring.
func (s *ProfileStore) heartbeatLoop() {
	ticker := time.NewTicker(s.config.Session.HeartbeatInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.emitHeartbeat()
		case <-s.stopTimers:
			return
		}
	}
}

func (s *ProfileStore) emitHeartbeat() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.profile == nil {
		return
	}

	s.auditor.LogForUser(security.EventSecurityHeartbeat, s.profile.ID, map[string]any{
		"progress_count": len(s.profile.Progress),
		"note_count":     len(s.profile.Notes),
		"last_activity":  s.profile.LastActivity,
	})
}

// loginFieldsSuspicious applies the suspicious-content heuristics to both
// login fields.
func loginFieldsSuspicious(name, email string) bool {
	for _, re := range suspiciousLoginPatterns {
		if re.MatchString(name) || re.MatchString(email) {
			return true
		}
	}
	return false
}
