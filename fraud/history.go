package fraud

import (
	"context"
	"sync"
	"time"
)

// maxHistoryPerActor caps each actor's event history. The oldest
// events are evicted first once the cap is reached.
const maxHistoryPerActor = 100

// History stores bounded per-actor event histories.
// Implementations must be safe for concurrent use.
type History interface {
	// Append records an event against the actor, evicting the oldest
	// entry when the actor is at capacity.
	Append(ctx context.Context, actor string, event Event) error

	// Events returns the actor's recorded events, oldest first.
	// Returns an empty slice for unknown actors.
	Events(ctx context.Context, actor string) ([]Event, error)

	// Close releases any resources held by the history.
	Close() error
}

// MemoryHistory is an in-memory implementation of History.
// Suitable for single-instance deployments and development.
type MemoryHistory struct {
	mu     sync.RWMutex
	events map[string][]Event
}

// NewMemoryHistory creates an empty in-memory history.
func NewMemoryHistory() *MemoryHistory {
	return &MemoryHistory{
		events: make(map[string][]Event),
	}
}

func (h *MemoryHistory) Append(_ context.Context, actor string, event Event) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	events := append(h.events[actor], event)
	if len(events) > maxHistoryPerActor {
		events = events[len(events)-maxHistoryPerActor:]
	}
	h.events[actor] = events
	return nil
}

func (h *MemoryHistory) Events(_ context.Context, actor string) ([]Event, error) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	events := h.events[actor]
	out := make([]Event, len(events))
	copy(out, events)
	return out, nil
}

func (h *MemoryHistory) Close() error {
	return nil
}

// since filters events to those recorded at or after the cutoff.
func since(events []Event, cutoff time.Time) []Event {
	var out []Event
	for _, e := range events {
		if !e.Timestamp.Before(cutoff) {
			out = append(out, e)
		}
	}
	return out
}
