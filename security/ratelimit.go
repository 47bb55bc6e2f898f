package security

import (
	"container/list"
	"log/slog"
	"sync"
	"time"
)

const (
	// DefaultAttemptCleanupInterval is how often the cleanup goroutine runs
	DefaultAttemptCleanupInterval = 15 * time.Minute

	// DefaultMaxAttemptEntries is the maximum number of keys to track
	DefaultMaxAttemptEntries = 10000
)

// attemptEntry tracks attempt timestamps for a single key
type attemptEntry struct {
	key        string
	attempts   []time.Time // timestamps of recent attempts
	lastAccess time.Time   // last time this entry was accessed
}

// AttemptLimiter provides keyed sliding-window rate limiting for sensitive
// operations such as login. Each limiter instance maintains fully independent
// state, so a short-window and a long-window limiter can be layered.
// LRU eviction bounds memory growth under distributed abuse.
type AttemptLimiter struct {
	entries         map[string]*list.Element // key -> list element
	lruList         *list.List               // LRU list of *attemptEntry
	mu              sync.RWMutex
	maxAttempts     int           // maximum attempts per time window
	window          time.Duration // time window for rate limiting
	maxEntries      int           // maximum number of keys to track
	now             func() time.Time
	auditor         *Auditor
	logger          *slog.Logger
	cleanupInterval time.Duration
	stopCleanup     chan struct{}
	stopOnce        sync.Once

	// Statistics
	totalBlocked   int64
	totalAllowed   int64
	totalEvictions int64
	totalCleanups  int64
}

// NewAttemptLimiter creates an attempt limiter allowing maxAttempts per
// window per key, with default entry and cleanup settings.
func NewAttemptLimiter(maxAttempts int, window time.Duration, auditor *Auditor, logger *slog.Logger) *AttemptLimiter {
	return NewAttemptLimiterWithConfig(maxAttempts, window, DefaultMaxAttemptEntries, auditor, logger)
}

// NewAttemptLimiterWithConfig creates an attempt limiter with a custom
// maximum number of tracked keys.
func NewAttemptLimiterWithConfig(maxAttempts int, window time.Duration, maxEntries int, auditor *Auditor, logger *slog.Logger) *AttemptLimiter {
	return newAttemptLimiterWithCleanupInterval(maxAttempts, window, maxEntries, DefaultAttemptCleanupInterval, auditor, logger)
}

// newAttemptLimiterWithCleanupInterval creates a limiter with a custom cleanup interval (for testing)
func newAttemptLimiterWithCleanupInterval(maxAttempts int, window time.Duration, maxEntries int, cleanupInterval time.Duration, auditor *Auditor, logger *slog.Logger) *AttemptLimiter {
	if logger == nil {
		logger = slog.Default()
	}
	if maxAttempts <= 0 {
		maxAttempts = 1
		logger.Warn("Invalid maxAttempts, using minimum", "maxAttempts", maxAttempts)
	}
	if window <= 0 {
		window = time.Minute
		logger.Warn("Invalid window, using default", "window", window)
	}
	if maxEntries < 0 {
		maxEntries = DefaultMaxAttemptEntries
		logger.Warn("Invalid maxEntries, using default", "maxEntries", maxEntries)
	}
	if cleanupInterval <= 0 {
		cleanupInterval = DefaultAttemptCleanupInterval
	}

	rl := &AttemptLimiter{
		entries:         make(map[string]*list.Element),
		lruList:         list.New(),
		maxAttempts:     maxAttempts,
		window:          window,
		maxEntries:      maxEntries,
		now:             time.Now,
		auditor:         auditor,
		logger:          logger,
		cleanupInterval: cleanupInterval,
		stopCleanup:     make(chan struct{}),
	}

	go rl.cleanupLoop()

	return rl
}

// SetNowFunc overrides the limiter's time source. Intended for tests.
func (rl *AttemptLimiter) SetNowFunc(now func() time.Time) {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	rl.now = now
}

// Allow records an attempt for key and reports whether it fits inside the
// sliding window. Once the window is saturated it returns false and logs a
// rate-limit-exceeded event; the caller should deny and ask to retry later.
func (rl *AttemptLimiter) Allow(key string) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	windowStart := now.Add(-rl.window)

	if elem, exists := rl.entries[key]; exists {
		rl.lruList.MoveToFront(elem)
		entry := elem.Value.(*attemptEntry)
		entry.lastAccess = now

		// Discard timestamps outside the window (in-place filtering)
		n := 0
		for _, t := range entry.attempts {
			if t.After(windowStart) {
				entry.attempts[n] = t
				n++
			}
		}
		entry.attempts = entry.attempts[:n]

		if len(entry.attempts) >= rl.maxAttempts {
			rl.totalBlocked++
			rl.auditor.LogRateLimitExceeded(key, len(entry.attempts))
			rl.logger.Warn("Attempt rate limit exceeded",
				"attempts_in_window", len(entry.attempts),
				"max_attempts", rl.maxAttempts,
				"window", rl.window,
				"total_blocked", rl.totalBlocked)
			return false
		}

		entry.attempts = append(entry.attempts, now)
		rl.totalAllowed++
		return true
	}

	// New key - evict the least recently used entry if at capacity
	if rl.maxEntries > 0 && len(rl.entries) >= rl.maxEntries {
		rl.evictLRU()
	}

	entry := &attemptEntry{
		key:        key,
		attempts:   []time.Time{now},
		lastAccess: now,
	}
	elem := rl.lruList.PushFront(entry)
	rl.entries[key] = elem

	rl.totalAllowed++
	return true
}

// evictLRU removes the least recently used entry.
// Must be called with mutex locked.
func (rl *AttemptLimiter) evictLRU() {
	elem := rl.lruList.Back()
	if elem == nil {
		return
	}

	entry := elem.Value.(*attemptEntry)
	delete(rl.entries, entry.key)
	rl.lruList.Remove(elem)
	rl.totalEvictions++

	rl.logger.Debug("Attempt limiter LRU eviction",
		"total_evictions", rl.totalEvictions,
		"current_entries", len(rl.entries))
}

// cleanupLoop periodically removes inactive entries to prevent memory leaks
func (rl *AttemptLimiter) cleanupLoop() {
	ticker := time.NewTicker(rl.cleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			rl.Cleanup()
		case <-rl.stopCleanup:
			return
		}
	}
}

// Cleanup removes entries that haven't been accessed in 2x the window duration.
func (rl *AttemptLimiter) Cleanup() {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	maxIdleTime := rl.window * 2
	removed := 0

	var next *list.Element
	for elem := rl.lruList.Front(); elem != nil; elem = next {
		next = elem.Next()
		entry := elem.Value.(*attemptEntry)

		if now.Sub(entry.lastAccess) > maxIdleTime {
			delete(rl.entries, entry.key)
			rl.lruList.Remove(elem)
			removed++
		}
	}

	if removed > 0 {
		rl.totalCleanups++
		rl.logger.Debug("Attempt limiter cleanup completed",
			"removed", removed,
			"remaining", len(rl.entries),
			"total_cleanups", rl.totalCleanups)
	}
}

// Stop gracefully stops the cleanup goroutine.
// Safe to call multiple times concurrently.
func (rl *AttemptLimiter) Stop() {
	rl.stopOnce.Do(func() {
		close(rl.stopCleanup)
		rl.logger.Debug("Attempt limiter stopped")
	})
}

// AttemptStats holds attempt limiter statistics for monitoring
type AttemptStats struct {
	CurrentEntries int     // Current number of tracked keys
	MaxEntries     int     // Maximum allowed entries (0 = unlimited)
	TotalBlocked   int64   // Total attempts blocked
	TotalAllowed   int64   // Total attempts allowed
	TotalEvictions int64   // Total number of LRU evictions
	TotalCleanups  int64   // Total number of cleanup operations
	MaxAttempts    int     // Maximum attempts per window
	Window         string  // Time window duration
	MemoryPressure float64 // Percentage of max capacity used (0-100)
}

// GetStats returns current limiter statistics for monitoring and alerting
func (rl *AttemptLimiter) GetStats() AttemptStats {
	rl.mu.RLock()
	defer rl.mu.RUnlock()

	stats := AttemptStats{
		CurrentEntries: len(rl.entries),
		MaxEntries:     rl.maxEntries,
		TotalBlocked:   rl.totalBlocked,
		TotalAllowed:   rl.totalAllowed,
		TotalEvictions: rl.totalEvictions,
		TotalCleanups:  rl.totalCleanups,
		MaxAttempts:    rl.maxAttempts,
		Window:         rl.window.String(),
	}

	if rl.maxEntries > 0 {
		stats.MemoryPressure = float64(stats.CurrentEntries) / float64(stats.MaxEntries) * 100.0
	}

	return stats
}
