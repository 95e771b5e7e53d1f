package fraud

import (
	"context"
	"sync"
)

// IPReputation answers whether an address is known to be malicious.
// Production deployments back this with a threat intelligence feed.
type IPReputation interface {
	IsMalicious(ctx context.Context, ip string) (bool, error)
}

// GeoAnomaly describes the outcome of a location consistency check.
type GeoAnomaly struct {
	Suspicious bool
	Location   string
}

// GeoResolver checks whether an address is consistent with a user's
// established location. Implementations typically call a geo-IP
// provider.
type GeoResolver interface {
	Resolve(ctx context.Context, userID, ip string) (GeoAnomaly, error)
}

// Blocklist is a static, mutable in-memory IPReputation.
// It also serves as the default GeoResolver: an address on the
// blocklist is treated as location-anomalous. Swap in a real geo-IP
// backed GeoResolver for independent location analysis.
type Blocklist struct {
	mu  sync.RWMutex
	ips map[string]struct{}
}

// NewBlocklist creates a blocklist seeded with the given addresses.
func NewBlocklist(ips ...string) *Blocklist {
	b := &Blocklist{ips: make(map[string]struct{}, len(ips))}
	for _, ip := range ips {
		b.ips[ip] = struct{}{}
	}
	return b
}

// Add inserts addresses into the blocklist.
func (b *Blocklist) Add(ips ...string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, ip := range ips {
		b.ips[ip] = struct{}{}
	}
}

// Remove deletes addresses from the blocklist.
func (b *Blocklist) Remove(ips ...string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, ip := range ips {
		delete(b.ips, ip)
	}
}

func (b *Blocklist) IsMalicious(_ context.Context, ip string) (bool, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	_, ok := b.ips[ip]
	return ok, nil
}

func (b *Blocklist) Resolve(ctx context.Context, _ string, ip string) (GeoAnomaly, error) {
	return reputationGeo{rep: b}.Resolve(ctx, "", ip)
}

// reputationGeo adapts any IPReputation into the default GeoResolver:
// an address the reputation source flags is treated as
// location-anomalous. The detector falls back to this wrapper so the
// geo signal cannot be dropped by construction.
type reputationGeo struct {
	rep IPReputation
}

func (g reputationGeo) Resolve(ctx context.Context, _ string, ip string) (GeoAnomaly, error) {
	bad, err := g.rep.IsMalicious(ctx, ip)
	if err != nil {
		return GeoAnomaly{}, err
	}
	if bad {
		return GeoAnomaly{Suspicious: true, Location: "unverified"}, nil
	}
	return GeoAnomaly{Suspicious: false, Location: "established"}, nil
}
