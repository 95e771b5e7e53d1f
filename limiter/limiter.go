// Package limiter implements sliding-window rate limiting over a
// pluggable counter store.
//
// The limiter counts requests per key against a time-bounded quota.
// Each key's window starts on its first request and resets when it
// expires. Calls made while a window is blocked are idempotent: they
// do not consume quota or extend the block.
//
//	st := store.NewMemory()
//	defer st.Close()
//	l := limiter.New(st)
//	res, _ := l.Check(ctx, clientIP, limiter.Config{
//		Window:      time.Minute,
//		MaxRequests: 100,
//	})
//	if !res.Allowed {
//		// reject
//	}
package limiter

import (
	"context"
	"time"

	"github.com/vendorly/secgate/limiter/store"
)

// KeyFunc derives a storage key from a caller-supplied identifier.
type KeyFunc func(identifier string) string

// Config describes one rate limit. Immutable; supplied per call site.
type Config struct {
	// Window is the duration of each counting window.
	// A zero window disables limiting (every call starts fresh).
	Window time.Duration

	// MaxRequests is the quota per window. Zero blocks permanently.
	MaxRequests int64

	// KeyFunc optionally transforms the identifier into the storage
	// key. When nil the identifier is used directly.
	KeyFunc KeyFunc
}

// Result reports a single rate limit decision.
type Result struct {
	// Allowed reports whether the request may proceed.
	Allowed bool

	// Remaining is the quota left in the current window.
	Remaining int64

	// ResetAt is when the current window expires.
	ResetAt time.Time
}

// Limiter checks identifiers against per-call-site limits using a
// shared counter store.
type Limiter struct {
	store store.Store
}

// New creates a Limiter backed by the given store.
func New(st store.Store) *Limiter {
	return &Limiter{store: st}
}

// Check consumes one request from the identifier's window and reports
// the decision. With the in-memory store this cannot fail; with Redis
// a backend error is returned and the caller decides whether to fail
// open or closed.
func (l *Limiter) Check(ctx context.Context, identifier string, cfg Config) (Result, error) {
	key := identifier
	if cfg.KeyFunc != nil {
		key = cfg.KeyFunc(identifier)
	}

	res, err := l.store.Take(ctx, key, cfg.MaxRequests, cfg.Window)
	if err != nil {
		return Result{}, err
	}

	return Result{
		Allowed:   res.Allowed,
		Remaining: res.Remaining,
		ResetAt:   res.ResetAt,
	}, nil
}
