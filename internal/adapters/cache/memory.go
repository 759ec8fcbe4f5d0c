package cache

import (
	"context"
	"sync"
	"time"
)

type entry struct {
	value     []byte
	expiresAt time.Time
}

// Memory is an in-process Store. Expired entries are dropped on read and
// swept on every write once the map grows past sweepAt entries.
type Memory struct {
	mu      sync.RWMutex
	entries map[string]entry
	now     func() time.Time
	sweepAt int
}

var _ Store = (*Memory)(nil)

// NewMemory creates an empty in-process cache.
func NewMemory() *Memory {
	return &Memory{entries: make(map[string]entry), now: time.Now, sweepAt: 256}
}

// Get returns a copy-free view of the stored bytes; callers must not modify it.
func (m *Memory) Get(_ context.Context, key string) ([]byte, bool, error) {
	m.mu.RLock()
	e, ok := m.entries[key]
	m.mu.RUnlock()
	if !ok || !m.now().Before(e.expiresAt) {
		return nil, false, nil
	}
	return e.value, true, nil
}

// Set stores value until now+ttl.
func (m *Memory) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	now := m.now()
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries[key] = entry{value: value, expiresAt: now.Add(ttl)}
	if len(m.entries) > m.sweepAt {
		for k, e := range m.entries {
			if !now.Before(e.expiresAt) {
				delete(m.entries, k)
			}
		}
	}
	return nil
}

// Delete removes keys. Missing keys are ignored.
func (m *Memory) Delete(_ context.Context, keys ...string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, k := range keys {
		delete(m.entries, k)
	}
	return nil
}

// Len returns the number of stored entries, including expired ones not yet swept.
func (m *Memory) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.entries)
}
