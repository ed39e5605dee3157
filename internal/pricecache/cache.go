// Package pricecache remembers the last known good price per symbol and
// decides, per category, whether that price is still fresh.
//
// The cache never evicts: an expired record is still the best fallback when
// every provider fails, so staleness is a property reported to callers, not a
// reason to drop data.
package pricecache

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/ndewijer/Wealth-Tracker-Backend/internal/apperrors"
	"github.com/ndewijer/Wealth-Tracker-Backend/internal/model"
)

// Cache wraps a Store with TTL semantics.
type Cache struct {
	store Store
	now   func() time.Time
}

// Option configures a Cache.
type Option func(*Cache)

// WithClock replaces time.Now, mainly for tests.
func WithClock(now func() time.Time) Option {
	return func(c *Cache) {
		c.now = now
	}
}

// New creates a Cache backed by store.
func New(store Store, opts ...Option) *Cache {
	c := &Cache{
		store: store,
		now:   time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Get returns the cached record for symbol regardless of its age.
func (c *Cache) Get(ctx context.Context, symbol string) (model.PriceRecord, bool, error) {
	rec, ok, err := c.store.Get(ctx, normalizeKey(symbol))
	if err != nil {
		return model.PriceRecord{}, false, fmt.Errorf("price cache get %s: %w", symbol, err)
	}
	return rec, ok, nil
}

// Set stores rec. Freshness is decided on read by IsStale, so every valid
// record is kept, whatever its category's TTL. A zero RefreshedAt is stamped
// with the current time.
func (c *Cache) Set(ctx context.Context, rec model.PriceRecord) error {
	if strings.TrimSpace(rec.Symbol) == "" {
		return fmt.Errorf("price cache set: %w", apperrors.ErrInvalidSymbol)
	}
	if rec.Price.IsNegative() {
		return fmt.Errorf("price cache set %s: %w", rec.Symbol, apperrors.ErrNegativeAmount)
	}

	rec.Symbol = normalizeKey(rec.Symbol)
	if rec.RefreshedAt.IsZero() {
		rec.RefreshedAt = c.now().UTC()
	}
	if rec.ObservedAt.IsZero() {
		rec.ObservedAt = rec.RefreshedAt
	}

	if err := c.store.Put(ctx, rec); err != nil {
		return fmt.Errorf("price cache set %s: %w", rec.Symbol, err)
	}
	return nil
}

// IsStale reports whether rec is older than ttl. A ttl of zero or less never
// expires, which is how quasi-static categories opt out of refreshing.
func (c *Cache) IsStale(rec model.PriceRecord, ttl time.Duration) bool {
	if ttl <= 0 {
		return false
	}
	return c.now().Sub(rec.RefreshedAt) > ttl
}

// Fresh returns the cached record only when it exists and is within ttl.
func (c *Cache) Fresh(ctx context.Context, symbol string, ttl time.Duration) (model.PriceRecord, bool, error) {
	rec, ok, err := c.Get(ctx, symbol)
	if err != nil || !ok {
		return model.PriceRecord{}, false, err
	}
	if c.IsStale(rec, ttl) {
		return model.PriceRecord{}, false, nil
	}
	return rec, true, nil
}

func normalizeKey(symbol string) string {
	return strings.ToUpper(strings.TrimSpace(symbol))
}
