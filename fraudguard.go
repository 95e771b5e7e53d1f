package secgate

import (
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/nhalm/canonlog"

	"github.com/vendorly/secgate/fraud"
)

// FraudGuardMiddleware scores requests through a fraud detector and
// refuses blocked ones.
//
// SECURITY: the response for a blocked request is a generic 403. The
// score, risk level, and triggered reasons are written to the
// canonical log only, never disclosed to the actor.
type FraudGuardMiddleware struct {
	detector  *fraud.Detector
	eventType fraud.EventType
	userIDFn  func(*http.Request) string
	logging   bool
}

// FraudGuardOption configures the middleware.
type FraudGuardOption func(*FraudGuardMiddleware)

// FraudGuardWithUserID supplies the authenticated user ID for the
// event, typically from the request context. Without it, events are
// attributed to the source IP.
func FraudGuardWithUserID(fn func(*http.Request) string) FraudGuardOption {
	return func(m *FraudGuardMiddleware) {
		m.userIDFn = fn
	}
}

// FraudGuardWithCanonlog logs each decision through a canonical log
// line per request, including the matched chi route pattern.
func FraudGuardWithCanonlog() FraudGuardOption {
	return func(m *FraudGuardMiddleware) {
		m.logging = true
	}
}

// FraudGuard creates middleware that scores every request as an event
// of the given type and refuses requests the detector blocks.
func FraudGuard(detector *fraud.Detector, eventType fraud.EventType, opts ...FraudGuardOption) func(http.Handler) http.Handler {
	m := &FraudGuardMiddleware{
		detector:  detector,
		eventType: eventType,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m.Handler
}

// Handler returns the middleware handler.
func (m *FraudGuardMiddleware) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if m.logging {
			ctx = canonlog.NewContext(ctx)
			r = r.WithContext(ctx)
			defer canonlog.Flush(ctx)
		}

		event := fraud.Event{
			Type:      m.eventType,
			IP:        clientIP(r),
			UserAgent: r.Header.Get("User-Agent"),
			Timestamp: time.Now(),
		}
		if m.userIDFn != nil {
			event.UserID = m.userIDFn(r)
		}

		score := m.detector.Detect(ctx, event)

		if m.logging {
			route := r.URL.Path
			if rctx := chi.RouteContext(ctx); rctx != nil {
				if pattern := rctx.RoutePattern(); pattern != "" {
					route = pattern
				}
			}
			canonlog.InfoAddMany(ctx, map[string]any{
				"route":         route,
				"fraud_score":   score.Score,
				"fraud_risk":    string(score.RiskLevel),
				"fraud_blocked": score.Blocked,
			})
			if len(score.Reasons) > 0 {
				canonlog.InfoAdd(ctx, "fraud_reasons", strings.Join(score.Reasons, "; "))
			}
		}

		if score.Blocked {
			writeError(w, ErrActionNotPermitted)
			return
		}

		next.ServeHTTP(w, r)
	})
}
