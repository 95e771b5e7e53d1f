// Package store provides storage backends for rate limit counters.
//
// Two implementations are available: Memory for single-instance
// deployments and development, and Redis for distributed deployments.
// Both preserve the same window semantics: calls made while a window
// is blocked do not consume quota or extend the window.
package store

import (
	"context"
	"time"
)

// Result describes the outcome of a Take call.
type Result struct {
	// Allowed reports whether the request fits in the current window.
	Allowed bool

	// Remaining is the number of requests left in the current window.
	// Zero when blocked.
	Remaining int64

	// ResetAt is when the current window expires and the counter resets.
	ResetAt time.Time
}

// Store defines the interface for rate limit counter backends.
// Implementations must be safe for concurrent use.
type Store interface {
	// Take attempts to consume one request from the window for key.
	// A new window starts when no entry exists or the previous window
	// has expired. When the counter has reached limit, Take returns a
	// blocked Result without incrementing.
	//
	// A limit of 0 blocks permanently. A window of 0 starts a fresh
	// window on every call, which effectively disables limiting.
	Take(ctx context.Context, key string, limit int64, window time.Duration) (Result, error)

	// Get retrieves the current count for the given key without
	// consuming quota. Returns 0 if the key doesn't exist.
	Get(ctx context.Context, key string) (int64, error)

	// Reset removes the counter for the given key.
	Reset(ctx context.Context, key string) error

	// Close releases any resources held by the store.
	Close() error
}
