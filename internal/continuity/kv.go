package continuity

import (
	"context"
	"errors"
	"sync"
	"time"
)

// ErrNotFound signals an absent key. Adapters map their own sentinel onto it.
var ErrNotFound = errors.New("continuity: key not found")

// KV is the persistence port the continuity layer writes through. Production
// uses the Redis adapter; tests substitute the in-memory map.
type KV interface {
	Get(ctx context.Context, sessionKey, name string) (string, error)
	Set(ctx context.Context, sessionKey, name, value string, ttl time.Duration) error
	Delete(ctx context.Context, sessionKey, name string) error
}

// MemoryKV is an in-memory KV double.
type MemoryKV struct {
	mu   sync.Mutex
	data map[string]string
}

// NewMemoryKV returns an empty in-memory store.
func NewMemoryKV() *MemoryKV {
	return &MemoryKV{data: make(map[string]string)}
}

func (m *MemoryKV) Get(ctx context.Context, sessionKey, name string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	value, ok := m.data[sessionKey+":"+name]
	if !ok {
		return "", ErrNotFound
	}
	return value, nil
}

func (m *MemoryKV) Set(ctx context.Context, sessionKey, name, value string, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[sessionKey+":"+name] = value
	return nil
}

func (m *MemoryKV) Delete(ctx context.Context, sessionKey, name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data, sessionKey+":"+name)
	return nil
}
