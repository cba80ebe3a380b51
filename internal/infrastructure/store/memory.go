package store

import (
	"context"
	"sync"
)

// Memory is an in-process Store
type Memory struct {
	mu   sync.RWMutex
	data map[string][]byte
}

// NewMemory creates an empty memory store
func NewMemory() *Memory {
	return &Memory{data: make(map[string][]byte)}
}

// Get returns a copy of the stored value
func (m *Memory) Get(ctx context.Context, key string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	data, ok := m.data[key]
	if !ok {
		return nil, ErrNotFound
	}
	return append([]byte(nil), data...), nil
}

// Set stores a copy of data
func (m *Memory) Set(ctx context.Context, key string, data []byte) error {
	if err := ctx.Err(); err != nil {
		return writeFailure(key, err)
	}

	m.mu.Lock()
	m.data[key] = append([]byte(nil), data...)
	m.mu.Unlock()
	return nil
}

// Close is a no-op
func (m *Memory) Close() error {
	return nil
}
