// Rate limiting middleware for Chi and standard http.Handler.
//
// Key dimensions (IP, user agent, header, endpoint) are added via
// functional options and combined with ":" into one storage key. With
// no options, requests are identified by client IP plus a short
// digest of the User-Agent header, so distinct clients behind one NAT
// are limited separately.
//
// All responses carry X-RateLimit-Limit, X-RateLimit-Remaining, and
// X-RateLimit-Reset (epoch seconds). Blocked requests receive 429
// with a JSON body of the form {error, message, retryAfter}.
//
//	st := store.NewMemory()
//	defer st.Close()
//	r.Use(secgate.RateLimit(st, 100, time.Minute))
//
// Multi-dimensional:
//
//	r.Use(secgate.RateLimit(st, 100, time.Minute,
//	    secgate.RateLimitWithName("api"),
//	    secgate.RateLimitWithRealIP(),
//	    secgate.RateLimitWithEndpoint(),
//	))
//
// For distributed deployments, use the Redis store. The in-memory
// store is only suitable for single-instance deployments.

package secgate

import (
	"encoding/base64"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/nhalm/canonlog"

	"github.com/vendorly/secgate/limiter"
	"github.com/vendorly/secgate/limiter/store"
)

// rateLimitKeyFunc extracts one key component from a request.
// Returning an empty string indicates the component is missing.
type rateLimitKeyFunc func(*http.Request) string

// RateLimitMiddleware is the configured rate limiting middleware.
type RateLimitMiddleware struct {
	limiter *limiter.Limiter
	cfg     limiter.Config
	name    string
	keyFns  []rateLimitKeyFunc
	logging bool
}

// RateLimitOption configures the middleware.
type RateLimitOption func(*RateLimitMiddleware)

// RateLimitWithName sets a prefix for storage keys. Use to prevent
// collisions when layering multiple rate limiters on one store.
func RateLimitWithName(name string) RateLimitOption {
	return func(m *RateLimitMiddleware) {
		m.name = name
	}
}

// RateLimitWithIP keys on the client IP from RemoteAddr.
// Use for direct connections without a proxy.
func RateLimitWithIP() RateLimitOption {
	return func(m *RateLimitMiddleware) {
		m.keyFns = append(m.keyFns, clientIP)
	}
}

// RateLimitWithRealIP keys on the client IP from X-Forwarded-For or
// X-Real-IP. If neither header is present, limiting is skipped for
// that request.
//
// SECURITY: only use behind a trusted reverse proxy that sets these
// headers. Without one, clients can spoof X-Forwarded-For to bypass
// rate limits.
func RateLimitWithRealIP() RateLimitOption {
	return func(m *RateLimitMiddleware) {
		m.keyFns = append(m.keyFns, realIP)
	}
}

// RateLimitWithUserAgent keys on a short digest of the User-Agent
// header. Combine with an IP dimension to separate clients that share
// an address.
func RateLimitWithUserAgent() RateLimitOption {
	return func(m *RateLimitMiddleware) {
		m.keyFns = append(m.keyFns, userAgentDigest)
	}
}

// RateLimitWithEndpoint keys on the HTTP method and path.
func RateLimitWithEndpoint() RateLimitOption {
	return func(m *RateLimitMiddleware) {
		m.keyFns = append(m.keyFns, func(r *http.Request) string {
			var sb strings.Builder
			sb.Grow(len(r.Method) + 1 + len(r.URL.Path))
			sb.WriteString(r.Method)
			sb.WriteByte(':')
			sb.WriteString(r.URL.Path)
			return sb.String()
		})
	}
}

// RateLimitWithHeader keys on a header value. If the header is
// missing, limiting is skipped for that request.
func RateLimitWithHeader(header string) RateLimitOption {
	return func(m *RateLimitMiddleware) {
		m.keyFns = append(m.keyFns, func(r *http.Request) string {
			return r.Header.Get(header)
		})
	}
}

// RateLimitWithCanonlog logs each decision (key, remaining, allowed)
// through a canonical log line per request.
func RateLimitWithCanonlog() RateLimitOption {
	return func(m *RateLimitMiddleware) {
		m.logging = true
	}
}

// RateLimit creates rate limiting middleware over the given store.
func RateLimit(st store.Store, maxRequests int64, window time.Duration, opts ...RateLimitOption) func(http.Handler) http.Handler {
	m := &RateLimitMiddleware{
		limiter: limiter.New(st),
		cfg: limiter.Config{
			Window:      window,
			MaxRequests: maxRequests,
		},
	}
	for _, opt := range opts {
		opt(m)
	}
	if len(m.keyFns) == 0 {
		m.keyFns = []rateLimitKeyFunc{clientIdentifier}
	}
	return m.Handler
}

// Handler returns the middleware handler.
func (m *RateLimitMiddleware) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		key := m.requestKey(r)
		if key == "" {
			next.ServeHTTP(w, r)
			return
		}

		ctx := r.Context()
		if m.logging {
			ctx = canonlog.NewContext(ctx)
			r = r.WithContext(ctx)
			defer canonlog.Flush(ctx)
		}

		res, err := m.limiter.Check(ctx, key, m.cfg)
		if err != nil {
			if m.logging {
				canonlog.ErrorAdd(ctx, err)
			}
			writeError(w, ErrInternal)
			return
		}

		w.Header().Set("X-RateLimit-Limit", strconv.FormatInt(m.cfg.MaxRequests, 10))
		w.Header().Set("X-RateLimit-Remaining", strconv.FormatInt(res.Remaining, 10))
		w.Header().Set("X-RateLimit-Reset", strconv.FormatInt(res.ResetAt.Unix(), 10))

		if m.logging {
			canonlog.InfoAddMany(ctx, map[string]any{
				"ratelimit_key":       key,
				"ratelimit_remaining": res.Remaining,
				"ratelimit_allowed":   res.Allowed,
			})
		}

		if !res.Allowed {
			retryAfter := int(time.Until(res.ResetAt).Seconds() + 0.999)
			if retryAfter < 0 {
				retryAfter = 0
			}
			w.Header().Set("Retry-After", strconv.Itoa(retryAfter))
			writeError(w, ErrRateLimited.WithRetryAfter(retryAfter))
			return
		}

		next.ServeHTTP(w, r)
	})
}

// requestKey combines the configured dimensions with ":".
// Skippable dimensions (headers, real IP) that are missing make the
// whole key empty, which skips limiting for the request.
func (m *RateLimitMiddleware) requestKey(r *http.Request) string {
	parts := make([]string, 0, len(m.keyFns)+1)
	if m.name != "" {
		parts = append(parts, m.name)
	}
	for _, fn := range m.keyFns {
		part := fn(r)
		if part == "" {
			return ""
		}
		parts = append(parts, part)
	}
	return strings.Join(parts, ":")
}

// clientIdentifier is the default key: client IP plus a short digest
// of the User-Agent, mirroring the ingress event shape of the
// storefront callers.
func clientIdentifier(r *http.Request) string {
	ip := clientIP(r)
	if ip == "" {
		ip = "unknown"
	}
	return ip + ":" + userAgentDigest(r)
}

func clientIP(r *http.Request) string {
	ip, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return ip
}

func realIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		if idx := strings.Index(xff, ","); idx != -1 {
			return strings.TrimSpace(xff[:idx])
		}
		return strings.TrimSpace(xff)
	}
	if rip := r.Header.Get("X-Real-IP"); rip != "" {
		return strings.TrimSpace(rip)
	}
	return ""
}

func userAgentDigest(r *http.Request) string {
	ua := r.Header.Get("User-Agent")
	if ua == "" {
		ua = "unknown"
	}
	digest := base64.StdEncoding.EncodeToString([]byte(ua))
	if len(digest) > 10 {
		digest = digest[:10]
	}
	return digest
}
