// Package fraud scores security events against a set of independent
// risk signals: IP reputation, request velocity, location anomalies,
// payment heuristics, device fingerprinting, and time-of-day patterns.
//
// Signals are additive. Each check contributes a fixed amount to the
// total, so any combination of signals can fire on one event and the
// score never decreases as more evidence accumulates. Thresholds map
// the total to a risk level and a block decision.
//
// Detect never fails: unknown actors score zero, and lookup errors
// degrade to the benign default for that check. Every evaluated event
// is appended to the actor's history so later evaluations see it.
package fraud

import (
	"context"
	"log/slog"
	"regexp"
	"time"
)

// RiskLevel buckets a score for human consumption and policy.
type RiskLevel string

const (
	RiskLow      RiskLevel = "low"
	RiskMedium   RiskLevel = "medium"
	RiskHigh     RiskLevel = "high"
	RiskCritical RiskLevel = "critical"
)

// Score contributions per signal.
const (
	scoreMaliciousIP   = 40
	scoreHighVelocity  = 25
	scoreGeoAnomaly    = 20
	scoreHighValue     = 15
	scoreBotAgent      = 30
	scoreFlaggedDevice = 25
	scoreMissingAgent  = 20
	scoreOddHours      = 15
)

// Risk band thresholds.
const (
	thresholdCritical = 80
	thresholdHigh     = 60
	thresholdMedium   = 40
)

// Detection limits.
const (
	velocityWindow    = time.Minute
	velocityMaxEvents = 10
	timePatternWindow = 24 * time.Hour
)

// DefaultPaymentThreshold is the transaction amount above which the
// high-value payment signal fires. Denominated in the marketplace's
// minor currency unit.
const DefaultPaymentThreshold = 50000

var botAgentPattern = regexp.MustCompile(`(?i)bot|crawler|spider`)

// Score is the detector's verdict on a single event.
type Score struct {
	// Score is the summed risk total, 0-100 in practice.
	Score int `json:"score"`

	// Reasons lists the signals that fired, in evaluation order.
	Reasons []string `json:"reasons"`

	// RiskLevel buckets the score.
	RiskLevel RiskLevel `json:"riskLevel"`

	// Blocked reports whether policy says the action must be refused.
	Blocked bool `json:"blocked"`
}

// Detector evaluates events. Construct with New.
type Detector struct {
	history          History
	reputation       IPReputation
	geo              GeoResolver
	paymentThreshold float64
	now              func() time.Time
	logger           *slog.Logger
}

// Option configures a Detector.
type Option func(*Detector)

// WithGeoResolver overrides the location anomaly backend. The default
// delegates to the IP reputation source.
func WithGeoResolver(g GeoResolver) Option {
	return func(d *Detector) {
		d.geo = g
	}
}

// WithPaymentThreshold overrides the high-value payment cutoff.
func WithPaymentThreshold(amount float64) Option {
	return func(d *Detector) {
		d.paymentThreshold = amount
	}
}

// WithClock overrides the clock used for velocity and time-pattern
// windows. Tests use this to build deterministic histories.
func WithClock(now func() time.Time) Option {
	return func(d *Detector) {
		d.now = now
	}
}

// WithLogger overrides the logger used to report degraded checks, such
// as a failing history backend.
func WithLogger(logger *slog.Logger) Option {
	return func(d *Detector) {
		if logger != nil {
			d.logger = logger
		}
	}
}

// New creates a Detector. The reputation source doubles as the
// location anomaly backend unless WithGeoResolver is given.
func New(history History, reputation IPReputation, opts ...Option) *Detector {
	d := &Detector{
		history:          history,
		reputation:       reputation,
		paymentThreshold: DefaultPaymentThreshold,
		now:              time.Now,
		logger:           slog.Default(),
	}
	for _, opt := range opts {
		opt(d)
	}
	if d.geo == nil {
		if g, ok := reputation.(GeoResolver); ok {
			d.geo = g
		} else {
			d.geo = reputationGeo{rep: reputation}
		}
	}
	return d
}

// Detect scores the event and records it in the actor's history.
// It always returns a usable Score; an event with no history and no
// risk signals scores zero, low, unblocked.
func (d *Detector) Detect(ctx context.Context, event Event) Score {
	var total int
	reasons := []string{}

	if bad, err := d.reputation.IsMalicious(ctx, event.IP); err == nil && bad {
		total += scoreMaliciousIP
		reasons = append(reasons, "known malicious IP address")
	}

	// History informs the velocity and time-pattern checks. A lookup
	// failure degrades both to their benign defaults.
	history, err := d.history.Events(ctx, event.Actor())
	if err != nil {
		d.logger.Warn("event history lookup failed", "error", err, "event_type", string(event.Type))
		history = nil
	}

	now := d.now()
	if len(since(history, now.Add(-velocityWindow))) > velocityMaxEvents {
		total += scoreHighVelocity
		reasons = append(reasons, "unusually high request frequency")
	}

	if event.Type == EventLoginAttempt && event.UserID != "" && d.geo != nil {
		if anomaly, err := d.geo.Resolve(ctx, event.UserID, event.IP); err == nil && anomaly.Suspicious {
			total += scoreGeoAnomaly
			reasons = append(reasons, "login from unusual location: "+anomaly.Location)
		}
	}

	if event.Type == EventPaymentAttempt {
		if amount, ok := metadataAmount(event.Metadata); ok && amount > d.paymentThreshold {
			total += scoreHighValue
			reasons = append(reasons, "high value transaction")
		}
	}

	deviceScore, deviceReasons := d.analyzeDevice(ctx, event)
	total += deviceScore
	reasons = append(reasons, deviceReasons...)

	recent := since(history, now.Add(-timePatternWindow))
	if oddHourMajority(recent) {
		total += scoreOddHours
		reasons = append(reasons, "unusual activity hours")
	}

	score := Score{Score: total, Reasons: reasons}
	switch {
	case total >= thresholdCritical:
		score.RiskLevel = RiskCritical
		score.Blocked = true
	case total >= thresholdHigh:
		score.RiskLevel = RiskHigh
		score.Blocked = true
	case total >= thresholdMedium:
		score.RiskLevel = RiskMedium
	default:
		score.RiskLevel = RiskLow
	}

	// Detection always learns from the event it evaluates, including
	// events judged benign. An append failure must not fail the
	// verdict, but persistent history loss has to be observable.
	if err := d.history.Append(ctx, event.Actor(), event); err != nil {
		d.logger.Warn("event history append failed", "error", err, "event_type", string(event.Type))
	}

	return score
}

// analyzeDevice fingerprints the client. IP reputation is consulted
// again here on purpose: device risk and address risk are independent
// evidentiary signals and both are allowed to fire.
func (d *Detector) analyzeDevice(ctx context.Context, event Event) (int, []string) {
	var score int
	var reasons []string

	if botAgentPattern.MatchString(event.UserAgent) {
		score += scoreBotAgent
		reasons = append(reasons, "bot-like user agent detected")
	}

	if bad, err := d.reputation.IsMalicious(ctx, event.IP); err == nil && bad {
		score += scoreFlaggedDevice
		reasons = append(reasons, "IP address flagged for suspicious activity")
	}

	if event.UserAgent == "" || event.UserAgent == "unknown" {
		score += scoreMissingAgent
		reasons = append(reasons, "missing or suspicious user agent")
	}

	return score, reasons
}

// oddHourMajority reports whether more than half of the events fall
// in the 02:00-06:59 local window.
func oddHourMajority(events []Event) bool {
	if len(events) == 0 {
		return false
	}
	var odd int
	for _, e := range events {
		hour := e.Timestamp.Local().Hour()
		if hour >= 2 && hour <= 6 {
			odd++
		}
	}
	return float64(odd) > float64(len(events))*0.5
}

// metadataAmount extracts a numeric "amount" from event metadata.
// JSON decoding produces float64; direct construction may use ints.
func metadataAmount(metadata map[string]any) (float64, bool) {
	v, ok := metadata["amount"]
	if !ok {
		return 0, false
	}
	switch n := v.(type) {
	case float64:
		return n, true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	default:
		return 0, false
	}
}
