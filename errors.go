package secgate

import (
	"encoding/json"
	"net/http"
)

// Error represents a structured API error response.
//
// SECURITY: messages sent to clients are generic by design. Internal
// reasons for a refusal (reputation hits, fraud scores, fingerprints)
// belong in logs, never in the response body.
type Error struct {
	Type    string `json:"type"`
	Code    string `json:"code,omitempty"`
	Message string `json:"message"`
	Status  int    `json:"-"`

	// RetryAfter is the number of seconds until the client may retry.
	// Only set on rate limit errors.
	RetryAfter int `json:"retryAfter,omitempty"`
}

type errorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`

	RetryAfter int `json:"retryAfter,omitempty"`
}

// Error implements the error interface.
func (e *Error) Error() string {
	return e.Message
}

// Is implements errors.Is for comparing error types.
func (e *Error) Is(target error) bool {
	if e == nil {
		return target == nil
	}
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Type == t.Type && e.Code == t.Code
}

// WithRetryAfter returns a copy of the error carrying a retry hint.
func (e *Error) WithRetryAfter(seconds int) *Error {
	if e == nil {
		return nil
	}
	dup := *e
	dup.RetryAfter = seconds
	return &dup
}

// Predefined sentinel errors.
var (
	ErrRateLimited = &Error{
		Type:    "Too Many Requests",
		Code:    "rate_limit_exceeded",
		Message: "Rate limit exceeded. Please try again later.",
		Status:  http.StatusTooManyRequests,
	}
	ErrActionNotPermitted = &Error{
		Type:    "Forbidden",
		Code:    "action_not_permitted",
		Message: "This action is not permitted.",
		Status:  http.StatusForbidden,
	}
	ErrInternal = &Error{
		Type:    "Internal Server Error",
		Code:    "internal",
		Message: "An internal error occurred. Please try again later.",
		Status:  http.StatusInternalServerError,
	}
)

// writeError serializes the error as the JSON body the middleware
// contract promises: {error, message, retryAfter}.
func writeError(w http.ResponseWriter, e *Error) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(e.Status)
	_ = json.NewEncoder(w).Encode(errorResponse{
		Error:      e.Type,
		Message:    e.Message,
		RetryAfter: e.RetryAfter,
	})
}
