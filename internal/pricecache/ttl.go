package pricecache

import (
	"time"

	"github.com/ndewijer/Wealth-Tracker-Backend/internal/model"
)

// Default freshness windows per category.
const (
	TTLEquity    = time.Hour        // exchange traded, intraday moves matter
	TTLCrypto    = 15 * time.Minute // trades around the clock
	TTLCommodity = time.Hour
	TTLFX        = time.Hour
	TTLFund      = 24 * time.Hour // funds publish one NAV per day
	TTLCash      = 0              // never priced, never cached
)

// TTLPolicy maps a category to how long a cached price stays fresh.
type TTLPolicy map[model.Category]time.Duration

// DefaultTTLPolicy returns the built in freshness windows.
func DefaultTTLPolicy() TTLPolicy {
	return TTLPolicy{
		model.CategoryEquity:    TTLEquity,
		model.CategoryCrypto:    TTLCrypto,
		model.CategoryCommodity: TTLCommodity,
		model.CategoryFX:        TTLFX,
		model.CategoryFund:      TTLFund,
		model.CategoryCash:      TTLCash,
	}
}

// For returns the TTL of c. Categories missing from the policy fall back to
// the default table.
func (p TTLPolicy) For(c model.Category) time.Duration {
	if ttl, ok := p[c]; ok {
		return ttl
	}
	return DefaultTTLPolicy()[c]
}

// Merge returns a copy of p with every entry of overrides applied.
func (p TTLPolicy) Merge(overrides map[model.Category]time.Duration) TTLPolicy {
	out := make(TTLPolicy, len(p)+len(overrides))
	for c, ttl := range p {
		out[c] = ttl
	}
	for c, ttl := range overrides {
		out[c] = ttl
	}
	return out
}
