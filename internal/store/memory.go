package store

import (
	"context"
	"sync"

	"contentstudio/internal/core"
)

// Memory holds the encoded collection in process memory. It round-trips
// through JSON like the other backends so callers never share slices with it.
type Memory struct {
	mu    sync.Mutex
	data  []byte
	saves int
}

// NewMemory returns an empty in-memory backend.
func NewMemory() *Memory {
	return &Memory{}
}

// Load implements Backend.
func (m *Memory) Load(ctx context.Context) ([]core.HistoryEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return decode(m.data)
}

// Save implements Backend.
func (m *Memory) Save(ctx context.Context, entries []core.HistoryEntry) error {
	data, err := encode(entries)
	if err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data = data
	m.saves++
	return nil
}

// Raw returns the stored bytes.
func (m *Memory) Raw() []byte {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]byte(nil), m.data...)
}

// SetRaw replaces the stored bytes, e.g. to simulate a corrupt store.
func (m *Memory) SetRaw(data []byte) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data = append([]byte(nil), data...)
}

// Saves reports how many times Save succeeded.
func (m *Memory) Saves() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.saves
}

// Close implements Backend.
func (m *Memory) Close() error { return nil }
