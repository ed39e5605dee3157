package pricing

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/samber/lo"
	"github.com/shopspring/decimal"

	"github.com/ndewijer/Wealth-Tracker-Backend/internal/apperrors"
	"github.com/ndewijer/Wealth-Tracker-Backend/internal/model"
	"github.com/ndewijer/Wealth-Tracker-Backend/internal/pricecache"
	"github.com/ndewijer/Wealth-Tracker-Backend/internal/yahoo"
)

// Status tags how a Resolution was obtained.
type Status int

const (
	// StatusFailed means no provider answered and nothing was cached.
	StatusFailed Status = iota
	// StatusFresh means a provider just answered or the cache was within TTL.
	StatusFresh
	// StatusStale means every provider failed and the last known price was used.
	StatusStale
)

func (s Status) String() string {
	switch s {
	case StatusFresh:
		return "fresh"
	case StatusStale:
		return "stale"
	default:
		return "failed"
	}
}

// DefaultProviderTimeout bounds a single provider call.
const DefaultProviderTimeout = 10 * time.Second

const searchCacheTTL = 10 * time.Minute

// Attempt records one provider call made while resolving.
type Attempt struct {
	Provider string
	Err      error
	Duration time.Duration
}

// Resolution is the outcome of resolving one instrument.
// Record is only meaningful when Status is not StatusFailed.
type Resolution struct {
	Instrument model.Instrument
	Record     model.PriceRecord
	Status     Status
	FromCache  bool
	Attempts   []Attempt
	Err        error
}

// OK reports whether the resolution carries a usable price.
func (r Resolution) OK() bool {
	return r.Status != StatusFailed
}

// ResolverConfig wires a Resolver.
type ResolverConfig struct {
	Chains          Chains
	Cache           *pricecache.Cache
	TTL             pricecache.TTLPolicy
	ProviderTimeout time.Duration
	// Search is optional; without it Search returns ErrProviderNotConfigured.
	Search yahoo.Client
	Logger zerolog.Logger
	Now    func() time.Time
}

// Resolver turns an instrument into a price: cache first, then each
// provider of the category's chain, then the last known price.
type Resolver struct {
	chains  Chains
	cache   *pricecache.Cache
	ttl     pricecache.TTLPolicy
	timeout time.Duration
	search  yahoo.Client
	log     zerolog.Logger
	now     func() time.Time

	searchMu    sync.Mutex
	searchCache map[string]searchEntry
}

type searchEntry struct {
	results []model.SearchResult
	at      time.Time
}

// NewResolver creates a Resolver from cfg, filling in defaults.
func NewResolver(cfg ResolverConfig) *Resolver {
	r := &Resolver{
		chains:      cfg.Chains,
		cache:       cfg.Cache,
		ttl:         cfg.TTL,
		timeout:     cfg.ProviderTimeout,
		search:      cfg.Search,
		log:         cfg.Logger.With().Str("component", "resolver").Logger(),
		now:         cfg.Now,
		searchCache: make(map[string]searchEntry),
	}
	if r.ttl == nil {
		r.ttl = pricecache.DefaultTTLPolicy()
	}
	if r.timeout <= 0 {
		r.timeout = DefaultProviderTimeout
	}
	if r.now == nil {
		r.now = time.Now
	}
	return r
}

// TTL returns the freshness window used for category.
func (r *Resolver) TTL(category model.Category) time.Duration {
	return r.ttl.For(category)
}

// Resolve returns the best available price for inst.
//
// Order of preference:
//  1. CASH is always 1 in its own currency.
//  2. A cache entry younger than the category TTL.
//  3. The first provider in the chain returning a positive, finite price.
//     The result is written back to the cache.
//  4. The last cached price, whatever its age, tagged StatusStale.
//
// Cache read and write errors are logged and never fail the resolution.
//
// Parameters:
//   - ctx: Bounds the whole resolution; each provider call gets its own timeout on top
//   - inst: The instrument to price
//
// Returns:
//   - Resolution: Always returned; check Status or OK()
func (r *Resolver) Resolve(ctx context.Context, inst model.Instrument) Resolution {
	inst.Symbol = strings.ToUpper(strings.TrimSpace(inst.Symbol))
	res := Resolution{Instrument: inst}
	log := r.log.With().Str("symbol", inst.Symbol).Str("category", string(inst.Category)).Logger()

	if inst.Category == model.CategoryCash {
		return r.cash(inst)
	}

	ttl := r.ttl.For(inst.Category)

	cached, hasCached, err := r.cache.Get(ctx, inst.Symbol)
	if err != nil {
		log.Warn().Err(err).Msg("price cache read failed")
	}
	if hasCached && !r.cache.IsStale(cached, ttl) {
		res.Status = StatusFresh
		res.Record = cached
		res.FromCache = true
		return res
	}

	providers := r.chains.For(inst.Category)
	for _, p := range providers {
		if ctx.Err() != nil {
			break
		}

		start := time.Now()
		q, err := r.quote(ctx, p, inst)
		res.Attempts = append(res.Attempts, Attempt{Provider: p.Name(), Err: err, Duration: time.Since(start)})
		if err != nil {
			log.Warn().Err(err).Str("provider", p.Name()).Msg("provider failed")
			continue
		}

		now := r.now().UTC()
		rec := model.PriceRecord{
			Symbol:      inst.Symbol,
			Price:       decimal.NewFromFloat(q.Price),
			Currency:    quoteCurrency(q, inst),
			Provider:    p.Name(),
			ObservedAt:  q.ObservedAt.UTC(),
			RefreshedAt: now,
		}
		if q.ObservedAt.IsZero() {
			rec.ObservedAt = now
		}

		if err := r.cache.Set(ctx, rec); err != nil {
			log.Warn().Err(err).Msg("price cache write failed")
		}

		log.Debug().Str("provider", p.Name()).Str("price", rec.Price.String()).Str("currency", rec.Currency).Msg("price resolved")
		res.Status = StatusFresh
		res.Record = rec
		return res
	}

	if len(providers) == 0 {
		res.Err = fmt.Errorf("%s (%s): %w", inst.Symbol, inst.Category, apperrors.ErrNoProviders)
	} else {
		res.Err = fmt.Errorf("%s: %w", inst.Symbol, errors.Join(
			append([]error{apperrors.ErrAllProvidersFailed}, attemptErrors(res.Attempts)...)...,
		))
	}

	if hasCached {
		// Rewriting with the same RefreshedAt keeps the record as it was.
		if err := r.cache.Set(ctx, cached); err != nil {
			log.Warn().Err(err).Msg("price cache write failed")
		}
		log.Warn().Time("refreshedAt", cached.RefreshedAt).Msg("using stale price")
		res.Status = StatusStale
		res.Record = cached
		return res
	}

	log.Error().Err(res.Err).Msg("price unresolved")
	res.Status = StatusFailed
	return res
}

// Cached resolves inst from the price cache alone: within TTL is
// StatusFresh, older is StatusStale, absent is StatusFailed with
// ErrPriceNotFound. Providers are never called.
func (r *Resolver) Cached(ctx context.Context, inst model.Instrument) Resolution {
	inst.Symbol = strings.ToUpper(strings.TrimSpace(inst.Symbol))
	if inst.Category == model.CategoryCash {
		return r.cash(inst)
	}

	res := Resolution{Instrument: inst, FromCache: true}
	rec, ok, err := r.cache.Get(ctx, inst.Symbol)
	switch {
	case err != nil:
		res.Err = err
		return res
	case !ok:
		res.Err = fmt.Errorf("%s: %w", inst.Symbol, apperrors.ErrPriceNotFound)
		return res
	}

	res.Record = rec
	res.Status = StatusFresh
	if r.cache.IsStale(rec, r.ttl.For(inst.Category)) {
		res.Status = StatusStale
	}
	return res
}

func (r *Resolver) cash(inst model.Instrument) Resolution {
	now := r.now().UTC()
	return Resolution{
		Instrument: inst,
		Status:     StatusFresh,
		Record: model.PriceRecord{
			Symbol:      inst.Symbol,
			Price:       decimal.NewFromInt(1),
			Currency:    cashCurrency(inst),
			Provider:    "cash",
			ObservedAt:  now,
			RefreshedAt: now,
		},
	}
}

func (r *Resolver) quote(ctx context.Context, p Provider, inst model.Instrument) (Quote, error) {
	callCtx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	q, err := p.Quote(callCtx, inst)
	if err != nil {
		return Quote{}, err
	}
	if !validPrice(q.Price) {
		return Quote{}, fmt.Errorf("%s returned %v: %w", p.Name(), q.Price, apperrors.ErrInvalidPrice)
	}
	return q, nil
}

func attemptErrors(attempts []Attempt) []error {
	return lo.FilterMap(attempts, func(a Attempt, _ int) (error, bool) {
		return a.Err, a.Err != nil
	})
}

func quoteCurrency(q Quote, inst model.Instrument) string {
	if c := strings.ToUpper(strings.TrimSpace(q.Currency)); c != "" {
		return c
	}
	if c := DetectCurrency(q.Symbol); c != "" {
		return c
	}
	if c := DetectCurrency(inst.Symbol); c != "" {
		return c
	}
	return "USD"
}

func cashCurrency(inst model.Instrument) string {
	if inst.Currency != "" {
		return strings.ToUpper(inst.Currency)
	}
	return inst.Symbol
}

// Search looks up symbols matching query on Yahoo.
//
// Spelling variations are tried on the primary host first ("BTC EUR" also
// as "BTC-EUR" and "BTCEUR"); when none of them returns anything the raw
// query is retried on the secondary host. Results are cached for ten minutes;
// expired entries are dropped whenever a new result is stored.
func (r *Resolver) Search(ctx context.Context, query string) ([]model.SearchResult, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, apperrors.ErrInvalidSymbol
	}
	if r.search == nil {
		return nil, fmt.Errorf("symbol search: %w", apperrors.ErrProviderNotConfigured)
	}

	key := strings.ToUpper(query)
	r.searchMu.Lock()
	if e, ok := r.searchCache[key]; ok && r.now().Sub(e.at) < searchCacheTTL {
		r.searchMu.Unlock()
		return e.results, nil
	}
	r.searchMu.Unlock()

	var (
		quotes  []yahoo.SearchQuote
		lastErr error
	)
	for _, variant := range queryVariations(query) {
		found, err := r.search.Search(ctx, variant, yahoo.HostQuery1)
		if err != nil {
			lastErr = err
			r.log.Debug().Err(err).Str("query", variant).Msg("search variant failed")
			continue
		}
		quotes = append(quotes, found...)
	}

	if len(quotes) == 0 {
		found, err := r.search.Search(ctx, query, yahoo.HostQuery2)
		if err != nil {
			if lastErr != nil {
				return nil, fmt.Errorf("symbol search %q: %w", query, errors.Join(lastErr, err))
			}
			return nil, fmt.Errorf("symbol search %q: %w", query, err)
		}
		quotes = found
	}

	results := lo.Map(lo.UniqBy(quotes, func(q yahoo.SearchQuote) string { return q.Symbol }),
		func(q yahoo.SearchQuote, _ int) model.SearchResult {
			name := q.LongName
			if name == "" {
				name = q.ShortName
			}
			return model.SearchResult{
				Symbol:    q.Symbol,
				Name:      name,
				Exchange:  q.Exchange,
				QuoteType: q.QuoteType,
			}
		})

	now := r.now()
	r.searchMu.Lock()
	for k, e := range r.searchCache {
		if now.Sub(e.at) >= searchCacheTTL {
			delete(r.searchCache, k)
		}
	}
	r.searchCache[key] = searchEntry{results: results, at: now}
	r.searchMu.Unlock()

	return results, nil
}

func queryVariations(query string) []string {
	q := strings.TrimSpace(query)
	return lo.Uniq([]string{
		q,
		strings.Join(strings.Fields(q), "-"),
		strings.ReplaceAll(q, " ", ""),
		strings.ReplaceAll(q, "-", " "),
	})
}
