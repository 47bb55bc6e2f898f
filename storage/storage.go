// Package storage defines the interface for persisting the encrypted profile
// envelope. The profile store treats the slot as opaque text in, opaque text
// out; backends must never inspect or transform the envelope.
//
// Implementations are provided in subpackages:
//   - storage/memory: in-memory slot for development and testing
//   - storage/mock: mock slot for unit testing
//   - storage/sqlite: durable single-row SQLite slot
package storage

import (
	"context"
	"errors"
)

// ErrNotFound is returned by Read when no envelope has been written or the
// slot has been cleared.
var ErrNotFound = errors.New("profile slot: not found")

// ProfileSlot is one externally-addressed key holding the serialized,
// encrypted profile envelope. It is the only interface to the outside
// persistence layer. All methods accept context.Context for tracing and
// cancellation.
type ProfileSlot interface {
	// Read returns the stored envelope, or ErrNotFound if the slot is empty.
	Read(ctx context.Context) (string, error)

	// Write replaces the stored envelope.
	Write(ctx context.Context, envelope string) error

	// Clear removes the stored envelope entirely. Clearing an already-empty
	// slot is not an error.
	Clear(ctx context.Context) error
}
