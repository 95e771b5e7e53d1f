package compliance

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// Profile is the exportable shape of a user account.
type Profile struct {
	UserID     string    `json:"userId"`
	Email      string    `json:"email,omitempty"`
	Name       string    `json:"name,omitempty"`
	CreatedAt  time.Time `json:"createdAt"`
	LastActive time.Time `json:"lastActive"`
}

// Order is a single purchase record.
type Order struct {
	OrderID   string    `json:"orderId"`
	UserID    string    `json:"userId"`
	Total     float64   `json:"total"`
	CreatedAt time.Time `json:"createdAt"`
}

// Preferences holds a user's notification and locale settings.
type Preferences struct {
	UserID        string          `json:"userId"`
	Notifications map[string]bool `json:"notificationPreferences"`
	Locale        string          `json:"locale,omitempty"`
}

// Activity is one entry in a user's activity log.
type Activity struct {
	UserID    string    `json:"userId"`
	Type      string    `json:"activityType"`
	Timestamp time.Time `json:"timestamp"`
}

// Repository abstracts the user data stores the compliance workflows
// read from and write to. The manager never knows what backs it.
type Repository interface {
	Profile(ctx context.Context, userID string) (Profile, error)
	Orders(ctx context.Context, userID string) ([]Order, error)
	Preferences(ctx context.Context, userID string) (Preferences, error)
	Activity(ctx context.Context, userID string) ([]Activity, error)

	// MarkForDeletion soft-deletes the user. The mark is the durable
	// source of truth for erasure.
	MarkForDeletion(ctx context.Context, userID string) error

	// Anonymize strips or hashes personally identifying fields from
	// residual records that cannot be deleted outright.
	Anonymize(ctx context.Context, userID string) error
}

// MemoryRepository is an in-memory Repository for development and
// tests. Safe for concurrent use.
type MemoryRepository struct {
	mu          sync.RWMutex
	profiles    map[string]Profile
	orders      map[string][]Order
	preferences map[string]Preferences
	activity    map[string][]Activity
	deleted     map[string]bool
}

// NewMemoryRepository creates an empty in-memory repository.
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		profiles:    make(map[string]Profile),
		orders:      make(map[string][]Order),
		preferences: make(map[string]Preferences),
		activity:    make(map[string][]Activity),
		deleted:     make(map[string]bool),
	}
}

// AddUser seeds the repository with a user's records.
func (r *MemoryRepository) AddUser(profile Profile, orders []Order, prefs Preferences, activity []Activity) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.profiles[profile.UserID] = profile
	r.orders[profile.UserID] = orders
	r.preferences[profile.UserID] = prefs
	r.activity[profile.UserID] = activity
}

func (r *MemoryRepository) Profile(_ context.Context, userID string) (Profile, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.profiles[userID]
	if !ok {
		return Profile{}, fmt.Errorf("profile for user %s: %w", userID, ErrUserNotFound)
	}
	return p, nil
}

func (r *MemoryRepository) Orders(_ context.Context, userID string) ([]Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if _, ok := r.profiles[userID]; !ok {
		return nil, fmt.Errorf("orders for user %s: %w", userID, ErrUserNotFound)
	}
	out := make([]Order, len(r.orders[userID]))
	copy(out, r.orders[userID])
	return out, nil
}

func (r *MemoryRepository) Preferences(_ context.Context, userID string) (Preferences, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.preferences[userID]
	if !ok {
		return Preferences{}, fmt.Errorf("preferences for user %s: %w", userID, ErrUserNotFound)
	}
	return p, nil
}

func (r *MemoryRepository) Activity(_ context.Context, userID string) ([]Activity, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if _, ok := r.profiles[userID]; !ok {
		return nil, fmt.Errorf("activity for user %s: %w", userID, ErrUserNotFound)
	}
	out := make([]Activity, len(r.activity[userID]))
	copy(out, r.activity[userID])
	return out, nil
}

func (r *MemoryRepository) MarkForDeletion(_ context.Context, userID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.profiles[userID]; !ok {
		return fmt.Errorf("mark user %s: %w", userID, ErrUserNotFound)
	}
	r.deleted[userID] = true
	return nil
}

func (r *MemoryRepository) Anonymize(_ context.Context, userID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.profiles[userID]
	if !ok {
		return fmt.Errorf("anonymize user %s: %w", userID, ErrUserNotFound)
	}
	p.Email = ""
	p.Name = ""
	r.profiles[userID] = p
	return nil
}

// MarkedForDeletion reports whether the user carries the soft-delete
// mark. Test helper.
func (r *MemoryRepository) MarkedForDeletion(userID string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.deleted[userID]
}
