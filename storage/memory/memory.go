// Package memory provides an in-memory implementation of the profile slot.
// It is suitable for development and testing.
package memory

import (
	"context"
	"sync"

	"github.com/mlacademy/authkit/storage"
)

// Slot is an in-memory profile slot.
type Slot struct {
	mu       sync.RWMutex
	envelope string
	present  bool
}

// Compile-time interface check
var _ storage.ProfileSlot = (*Slot)(nil)

// New creates an empty in-memory slot.
func New() *Slot {
	return &Slot{}
}

// Read returns the stored envelope, or storage.ErrNotFound if empty.
func (s *Slot) Read(ctx context.Context) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.present {
		return "", storage.ErrNotFound
	}
	return s.envelope, nil
}

// Write replaces the stored envelope.
func (s *Slot) Write(ctx context.Context, envelope string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.envelope = envelope
	s.present = true
	return nil
}

// Clear removes the stored envelope.
func (s *Slot) Clear(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.envelope = ""
	s.present = false
	return nil
}
