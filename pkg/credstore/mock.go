package credstore

import (
	"context"
	"sync"
)

// Mock is an in-memory Store for testing.
// Behavior can be overridden per call via the configurable func fields.
type Mock struct {
	mu      sync.RWMutex
	records map[string][]byte

	// Configurable behavior
	SaveFunc func(ctx context.Context, identity string, blob []byte) error
	LoadFunc func(ctx context.Context, identity string) ([]byte, error)
}

// NewMock creates an empty in-memory store.
func NewMock() *Mock {
	return &Mock{records: make(map[string][]byte)}
}

// Save stores the blob, or delegates to SaveFunc when set.
func (m *Mock) Save(ctx context.Context, identity string, blob []byte) error {
	if m.SaveFunc != nil {
		return m.SaveFunc(ctx, identity, blob)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := make([]byte, len(blob))
	copy(cp, blob)
	m.records[identity] = cp
	return nil
}

// Load returns the stored blob, or delegates to LoadFunc when set.
func (m *Mock) Load(ctx context.Context, identity string) ([]byte, error) {
	if m.LoadFunc != nil {
		return m.LoadFunc(ctx, identity)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	blob, ok := m.records[identity]
	if !ok {
		return nil, nil
	}
	cp := make([]byte, len(blob))
	copy(cp, blob)
	return cp, nil
}

// Close is a no-op for the mock.
func (m *Mock) Close() error {
	return nil
}

// Ensure Mock implements Store
var _ Store = (*Mock)(nil)
