package fraud

import "time"

// EventType classifies a security event.
type EventType string

// Event type constants. Using constants keeps event classification
// consistent across callers and log pipelines.
const (
	// EventLoginAttempt is recorded for every authentication attempt.
	EventLoginAttempt EventType = "login_attempt"

	// EventPaymentAttempt is recorded when a payment is initiated.
	EventPaymentAttempt EventType = "payment_attempt"

	// EventAPIRequest is recorded for generic API traffic.
	EventAPIRequest EventType = "api_request"

	// EventSuspiciousActivity is recorded when a caller has already
	// classified the behavior as suspicious.
	EventSuspiciousActivity EventType = "suspicious_activity"
)

// Event is a single security-relevant occurrence attributed to an
// actor. Events are immutable once constructed; they are appended to
// the actor's history and never mutated.
type Event struct {
	Type      EventType      `json:"type"`
	UserID    string         `json:"userId,omitempty"`
	IP        string         `json:"ip"`
	UserAgent string         `json:"userAgent"`
	Timestamp time.Time      `json:"timestamp"`
	Metadata  map[string]any `json:"metadata,omitempty"`
}

// Actor returns the identifier the event is attributed to: the user ID
// when known, otherwise the source IP.
func (e Event) Actor() string {
	if e.UserID != "" {
		return e.UserID
	}
	return e.IP
}
