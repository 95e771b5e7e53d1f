package store

import (
	"context"
	"sync"
	"testing"
	"time"
)

func TestMemory_Take(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name          string
		setup         func(*Memory)
		limit         int64
		window        time.Duration
		wantAllowed   bool
		wantRemaining int64
	}{
		{
			name:          "first take starts a window",
			limit:         3,
			window:        time.Minute,
			wantAllowed:   true,
			wantRemaining: 2,
		},
		{
			name: "take within window decrements remaining",
			setup: func(m *Memory) {
				m.entries["test:key"] = &memoryEntry{count: 1, resetAt: now.Add(time.Minute)}
			},
			limit:         3,
			window:        time.Minute,
			wantAllowed:   true,
			wantRemaining: 1,
		},
		{
			name: "at limit blocks without incrementing",
			setup: func(m *Memory) {
				m.entries["test:key"] = &memoryEntry{count: 3, resetAt: now.Add(time.Minute)}
			},
			limit:         3,
			window:        time.Minute,
			wantAllowed:   false,
			wantRemaining: 0,
		},
		{
			name: "expired window restarts",
			setup: func(m *Memory) {
				m.entries["test:key"] = &memoryEntry{count: 3, resetAt: now.Add(-time.Second)}
			},
			limit:         3,
			window:        time.Minute,
			wantAllowed:   true,
			wantRemaining: 2,
		},
		{
			name:          "zero limit blocks permanently",
			limit:         0,
			window:        time.Minute,
			wantAllowed:   false,
			wantRemaining: 0,
		},
		{
			name: "zero window always starts fresh",
			setup: func(m *Memory) {
				m.entries["test:key"] = &memoryEntry{count: 99, resetAt: now.Add(time.Hour)}
			},
			limit:         3,
			window:        0,
			wantAllowed:   true,
			wantRemaining: 2,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := NewMemory(WithClock(func() time.Time { return now }))
			defer m.Close()

			if tt.setup != nil {
				tt.setup(m)
			}

			got, err := m.Take(context.Background(), "test:key", tt.limit, tt.window)
			if err != nil {
				t.Fatalf("Take() error = %v", err)
			}
			if got.Allowed != tt.wantAllowed {
				t.Errorf("Take() allowed = %v, want %v", got.Allowed, tt.wantAllowed)
			}
			if got.Remaining != tt.wantRemaining {
				t.Errorf("Take() remaining = %d, want %d", got.Remaining, tt.wantRemaining)
			}
		})
	}
}

func TestMemory_Take_Sequence(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	m := NewMemory(WithClock(func() time.Time { return now }))
	defer m.Close()

	ctx := context.Background()
	key := "ip-A"

	want := []struct {
		allowed   bool
		remaining int64
	}{
		{true, 2},
		{true, 1},
		{true, 0},
		{false, 0},
	}

	for i, w := range want {
		got, err := m.Take(ctx, key, 3, time.Minute)
		if err != nil {
			t.Fatalf("Take() error = %v", err)
		}
		if got.Allowed != w.allowed || got.Remaining != w.remaining {
			t.Errorf("call %d: got (%v, %d), want (%v, %d)",
				i+1, got.Allowed, got.Remaining, w.allowed, w.remaining)
		}
	}

	// Blocked calls are idempotent: count must not grow past the limit.
	count, err := m.Get(ctx, key)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if count != 3 {
		t.Errorf("Get() = %d, want 3", count)
	}
}

func TestMemory_Take_WindowExpiry(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	m := NewMemory(WithClock(func() time.Time { return now }))
	defer m.Close()

	ctx := context.Background()

	for i := 0; i < 4; i++ {
		m.Take(ctx, "key", 3, time.Minute)
	}

	// Advance past the window; the next take starts a fresh window.
	now = now.Add(time.Minute + time.Second)

	got, err := m.Take(ctx, "key", 3, time.Minute)
	if err != nil {
		t.Fatalf("Take() error = %v", err)
	}
	if !got.Allowed || got.Remaining != 2 {
		t.Errorf("after expiry: got (%v, %d), want (true, 2)", got.Allowed, got.Remaining)
	}
	if want := now.Add(time.Minute); !got.ResetAt.Equal(want) {
		t.Errorf("ResetAt = %v, want %v", got.ResetAt, want)
	}
}

func TestMemory_Reset(t *testing.T) {
	m := NewMemory()
	defer m.Close()

	ctx := context.Background()
	m.Take(ctx, "key", 5, time.Minute)
	m.Take(ctx, "key", 5, time.Minute)

	if err := m.Reset(ctx, "key"); err != nil {
		t.Fatalf("Reset() error = %v", err)
	}

	count, _ := m.Get(ctx, "key")
	if count != 0 {
		t.Errorf("Get() after reset = %d, want 0", count)
	}
}

func TestMemory_Take_Concurrent(t *testing.T) {
	m := NewMemory()
	defer m.Close()

	ctx := context.Background()
	const workers = 20
	const limit = 10

	var wg sync.WaitGroup
	allowed := make(chan bool, workers)

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			res, err := m.Take(ctx, "shared", limit, time.Minute)
			if err != nil {
				t.Error(err)
				return
			}
			allowed <- res.Allowed
		}()
	}
	wg.Wait()
	close(allowed)

	var granted int
	for ok := range allowed {
		if ok {
			granted++
		}
	}
	if granted != limit {
		t.Errorf("granted %d requests, want exactly %d", granted, limit)
	}
}
