package store

import (
	"context"
	"sync"
	"time"
)

type memoryEntry struct {
	count   int64
	resetAt time.Time
}

// Memory is an in-memory implementation of Store.
// Suitable for single-instance deployments and development.
type Memory struct {
	mu      sync.RWMutex
	entries map[string]*memoryEntry
	now     func() time.Time
	stopCh  chan struct{}
}

// MemoryOption configures a Memory store.
type MemoryOption func(*Memory)

// WithClock overrides the clock used for window calculations.
// Tests use this to simulate window expiry without sleeping.
func WithClock(now func() time.Time) MemoryOption {
	return func(m *Memory) {
		m.now = now
	}
}

// NewMemory creates a new in-memory store with periodic cleanup of
// expired windows.
func NewMemory(opts ...MemoryOption) *Memory {
	m := &Memory{
		entries: make(map[string]*memoryEntry),
		now:     time.Now,
		stopCh:  make(chan struct{}),
	}
	for _, opt := range opts {
		opt(m)
	}

	go m.sweep()
	return m
}

func (m *Memory) Take(_ context.Context, key string, limit int64, window time.Duration) (Result, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	entry, exists := m.entries[key]

	if !exists || now.After(entry.resetAt) || window == 0 {
		entry = &memoryEntry{
			count:   0,
			resetAt: now.Add(window),
		}
		m.entries[key] = entry
	}

	if entry.count >= limit {
		return Result{Allowed: false, Remaining: 0, ResetAt: entry.resetAt}, nil
	}

	entry.count++
	return Result{
		Allowed:   true,
		Remaining: limit - entry.count,
		ResetAt:   entry.resetAt,
	}, nil
}

func (m *Memory) Get(_ context.Context, key string) (int64, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	entry, exists := m.entries[key]
	if !exists || m.now().After(entry.resetAt) {
		return 0, nil
	}

	return entry.count, nil
}

func (m *Memory) Reset(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.entries, key)
	return nil
}

func (m *Memory) Close() error {
	close(m.stopCh)
	return nil
}

func (m *Memory) sweep() {
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			now := m.now()
			var expiredKeys []string

			m.mu.RLock()
			for key, entry := range m.entries {
				if now.After(entry.resetAt) {
					expiredKeys = append(expiredKeys, key)
				}
			}
			m.mu.RUnlock()

			if len(expiredKeys) > 0 {
				m.mu.Lock()
				for _, key := range expiredKeys {
					if entry, ok := m.entries[key]; ok && now.After(entry.resetAt) {
						delete(m.entries, key)
					}
				}
				m.mu.Unlock()
			}
		case <-m.stopCh:
			return
		}
	}
}
