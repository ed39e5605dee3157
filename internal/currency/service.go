package currency

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/samber/lo"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/singleflight"

	"github.com/ndewijer/Wealth-Tracker-Backend/internal/model"
)

// DefaultFetchTimeout bounds a live rate fetch.
const DefaultFetchTimeout = 2500 * time.Millisecond

// alwaysRequired are fetched even when nobody holds them.
var alwaysRequired = []string{"EUR", "USD", "TRY"}

// RateStore persists the latest rate per currency.
type RateStore interface {
	GetRates(ctx context.Context) ([]model.ExchangeRate, error)
	UpsertRates(ctx context.Context, rates []model.ExchangeRate) error
}

// HoldingCurrencies lists currencies with an open position.
type HoldingCurrencies interface {
	HeldCurrencies(ctx context.Context) ([]string, error)
}

// ServiceConfig wires a Service.
type ServiceConfig struct {
	Store    RateStore
	Holdings HoldingCurrencies
	// Sources are tried in order until every required currency has a rate.
	Sources    []Source
	Timeout    time.Duration
	QuietHours QuietHours
	Logger     zerolog.Logger
	Now        func() time.Time
}

// Service layers exchange rates: the fallback table, then stored rates,
// then live rates when the stored ones are missing or stale.
type Service struct {
	store    RateStore
	holdings HoldingCurrencies
	sources  []Source
	timeout  time.Duration
	quiet    QuietHours
	log      zerolog.Logger
	now      func() time.Time

	group singleflight.Group
}

// NewService creates a Service from cfg.
func NewService(cfg ServiceConfig) *Service {
	s := &Service{
		store:    cfg.Store,
		holdings: cfg.Holdings,
		sources:  cfg.Sources,
		timeout:  cfg.Timeout,
		quiet:    cfg.QuietHours,
		log:      cfg.Logger.With().Str("component", "currency").Logger(),
		now:      cfg.Now,
	}
	if s.timeout <= 0 {
		s.timeout = DefaultFetchTimeout
	}
	if s.now == nil {
		s.now = time.Now
	}
	return s
}

// InQuietHours reports whether t falls in the configured quiet window.
func (s *Service) InQuietHours(t time.Time) bool {
	return s.quiet.Contains(t)
}

// Rates returns every known rate relative to EUR.
//
// Stored rates override the fallback table. When a required currency has
// no stored rate, or its rate was updated before the start of the current
// hour, live sources are consulted unless the current time is in quiet
// hours. Fetch failures are logged; the stored and fallback layers are
// still returned.
//
// Concurrent callers share a single load.
//
// Returns:
//   - model.Rates: Never nil; always contains at least the fallback table
//   - error: Only when the rate store cannot be read
func (s *Service) Rates(ctx context.Context) (model.Rates, error) {
	v, err, _ := s.group.Do("rates", func() (any, error) {
		return s.load(context.WithoutCancel(ctx), false)
	})
	rates, _ := v.(model.Rates)
	if rates == nil {
		rates = FallbackRates()
	}
	return rates.Clone(), err
}

// Refresh fetches live rates for every required and fallback currency,
// ignoring staleness and quiet hours.
//
// Returns:
//   - model.Rates: The layered rates after the refresh
//   - error: When the store fails or no source returned any rate
func (s *Service) Refresh(ctx context.Context) (model.Rates, error) {
	v, err, _ := s.group.Do("refresh", func() (any, error) {
		return s.load(context.WithoutCancel(ctx), true)
	})
	rates, _ := v.(model.Rates)
	if rates == nil {
		rates = FallbackRates()
	}
	return rates.Clone(), err
}

// Stored returns the persisted rate rows, for display.
func (s *Service) Stored(ctx context.Context) ([]model.ExchangeRate, error) {
	return s.store.GetRates(ctx)
}

// RequiredCurrencies returns EUR, USD, TRY and every currency with an open
// position, sorted.
func (s *Service) RequiredCurrencies(ctx context.Context) ([]string, error) {
	required := slices.Clone(alwaysRequired)
	if s.holdings != nil {
		held, err := s.holdings.HeldCurrencies(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to list held currencies: %w", err)
		}
		required = append(required, held...)
	}

	required = lo.Uniq(lo.FilterMap(required, func(c string, _ int) (string, bool) {
		c = strings.ToUpper(strings.TrimSpace(c))
		return c, c != ""
	}))
	slices.Sort(required)
	return required, nil
}

func (s *Service) load(ctx context.Context, force bool) (model.Rates, error) {
	rates := FallbackRates()

	stored, err := s.store.GetRates(ctx)
	if err != nil {
		s.log.Error().Err(err).Msg("failed to read stored exchange rates, using fallback table")
		return rates, fmt.Errorf("failed to read exchange rates: %w", err)
	}
	byCurrency := make(map[string]model.ExchangeRate, len(stored))
	for _, r := range stored {
		if r.Rate.IsPositive() {
			rates[r.Currency] = r.Rate
			byCurrency[r.Currency] = r
		}
	}

	required, err := s.RequiredCurrencies(ctx)
	if err != nil {
		s.log.Warn().Err(err).Msg("using default required currencies")
		required = slices.Clone(alwaysRequired)
	}

	now := s.now()
	var wanted []string
	if force {
		wanted = lo.Uniq(append(required, lo.Keys(Fallback)...))
	} else {
		if s.quiet.Contains(now) {
			return rates, nil
		}
		wanted = lo.Filter(required, func(c string, _ int) bool {
			r, ok := byCurrency[c]
			return !ok || isStale(r.UpdatedAt, now)
		})
	}
	wanted = lo.Without(wanted, model.BaseCurrency)
	slices.Sort(wanted)
	if len(wanted) == 0 {
		return rates, nil
	}

	fetched, err := s.fetch(ctx, wanted)
	if err != nil {
		s.log.Warn().Err(err).Strs("currencies", wanted).Msg("live exchange rate fetch failed")
		if force {
			return rates, err
		}
		return rates, nil
	}

	updatedAt := now.UTC()
	rows := make([]model.ExchangeRate, 0, len(fetched))
	for cur, rate := range fetched {
		rates[cur] = rate
		rows = append(rows, model.ExchangeRate{Currency: cur, Rate: rate, UpdatedAt: updatedAt})
	}
	if err := s.store.UpsertRates(ctx, rows); err != nil {
		s.log.Error().Err(err).Msg("failed to store exchange rates")
	}

	s.log.Info().Int("count", len(rows)).Msg("exchange rates updated")
	return rates, nil
}

// fetch asks each source in turn for the currencies still missing.
func (s *Service) fetch(ctx context.Context, currencies []string) (map[string]decimal.Decimal, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	out := make(map[string]decimal.Decimal, len(currencies))
	var errs []error
	for _, src := range s.sources {
		missing := lo.Filter(currencies, func(c string, _ int) bool {
			_, ok := out[c]
			return !ok
		})
		if len(missing) == 0 {
			break
		}

		got, err := src.Fetch(ctx, missing)
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", src.Name(), err))
			continue
		}
		for c, r := range got {
			out[c] = r
		}
	}

	if len(out) == 0 {
		if len(errs) == 0 {
			return nil, errors.New("no exchange rate sources configured")
		}
		return nil, errors.Join(errs...)
	}
	return out, nil
}

// isStale reports whether updatedAt lies before the start of now's hour.
func isStale(updatedAt, now time.Time) bool {
	return updatedAt.Before(now.Truncate(time.Hour))
}
