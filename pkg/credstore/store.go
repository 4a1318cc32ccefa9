// Package credstore persists per-user Google credentials for zephyr.
//
// Each user identity owns at most one record: an opaque serialized
// credential blob produced by the OAuth flow. Saves are upserts with
// last-write-wins semantics; there is no merge and no delete path.
package credstore

import (
	"context"
	"errors"
	"time"
)

// ErrUnavailable is returned when the backing store cannot be reached.
// Callers must not treat this as "no credentials": doing so would strip
// a user's authentication whenever the store blips.
var ErrUnavailable = errors.New("credstore: backing store unavailable")

// Record is one stored credential blob keyed by user identity.
type Record struct {
	Identity  string
	Blob      []byte
	UpdatedAt time.Time
}

// Store defines the interface for credential persistence backends.
type Store interface {
	// Save upserts the blob for the given identity, replacing any
	// previous blob entirely.
	Save(ctx context.Context, identity string, blob []byte) error

	// Load retrieves the stored blob for the identity.
	// Returns (nil, nil) when no record exists; absence is not an error.
	Load(ctx context.Context, identity string) ([]byte, error)

	// Close releases any resources held by the store.
	Close() error
}
