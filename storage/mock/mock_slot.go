// Package mock provides a mock implementation of the profile slot for testing.
package mock

import (
	"context"
	"sync"

	"github.com/mlacademy/authkit/storage"
)

// Slot is a mock profile slot for testing. Each operation delegates to an
// overridable function field, so tests can inject failures or observe calls.
type Slot struct {
	mu       sync.Mutex
	envelope string
	present  bool

	ReadFunc  func(ctx context.Context) (string, error)
	WriteFunc func(ctx context.Context, envelope string) error
	ClearFunc func(ctx context.Context) error

	CallCounts map[string]int
}

var _ storage.ProfileSlot = (*Slot)(nil)

// New creates a mock slot with default in-memory behavior.
func New() *Slot {
	m := &Slot{
		CallCounts: make(map[string]int),
	}

	m.ReadFunc = func(ctx context.Context) (string, error) {
		m.mu.Lock()
		defer m.mu.Unlock()
		if !m.present {
			return "", storage.ErrNotFound
		}
		return m.envelope, nil
	}

	m.WriteFunc = func(ctx context.Context, envelope string) error {
		m.mu.Lock()
		defer m.mu.Unlock()
		m.envelope = envelope
		m.present = true
		return nil
	}

	m.ClearFunc = func(ctx context.Context) error {
		m.mu.Lock()
		defer m.mu.Unlock()
		m.envelope = ""
		m.present = false
		return nil
	}

	return m
}

// Read implements storage.ProfileSlot.
func (m *Slot) Read(ctx context.Context) (string, error) {
	m.count("Read")
	return m.ReadFunc(ctx)
}

// Write implements storage.ProfileSlot.
func (m *Slot) Write(ctx context.Context, envelope string) error {
	m.count("Write")
	return m.WriteFunc(ctx, envelope)
}

// Clear implements storage.ProfileSlot.
func (m *Slot) Clear(ctx context.Context) error {
	m.count("Clear")
	return m.ClearFunc(ctx)
}

// Seed stores an envelope directly, bypassing the function fields.
func (m *Slot) Seed(envelope string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.envelope = envelope
	m.present = true
}

// Stored returns the current envelope and whether one is present.
func (m *Slot) Stored() (string, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.envelope, m.present
}

func (m *Slot) count(op string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.CallCounts[op]++
}
