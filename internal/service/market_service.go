package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/ndewijer/Wealth-Tracker-Backend/internal/apperrors"
	"github.com/ndewijer/Wealth-Tracker-Backend/internal/currency"
	"github.com/ndewijer/Wealth-Tracker-Backend/internal/model"
	"github.com/ndewijer/Wealth-Tracker-Backend/internal/pricing"
)

// MarketService exposes single instrument lookups and exchange rates
// independent of any portfolio.
type MarketService struct {
	resolver *pricing.Resolver
	rates    *currency.Service
	log      zerolog.Logger
}

// NewMarketService creates a new MarketService.
func NewMarketService(resolver *pricing.Resolver, rates *currency.Service, logger zerolog.Logger) *MarketService {
	return &MarketService{
		resolver: resolver,
		rates:    rates,
		log:      logger.With().Str("component", "market").Logger(),
	}
}

// Price resolves one instrument through the cache and provider chain.
//
// Parameters:
//   - ctx: Request context; bounds every provider call
//   - inst: Symbol and category are required, exchange and currency are hints
//
// Returns:
//   - pricing.Resolution: The resolution, also on failure so callers can report attempts
//   - error: ErrInvalidSymbol, ErrInvalidCategory, or the resolution error when no price is available
func (s *MarketService) Price(ctx context.Context, inst model.Instrument) (pricing.Resolution, error) {
	inst.Symbol = strings.ToUpper(strings.TrimSpace(inst.Symbol))
	if inst.Symbol == "" {
		return pricing.Resolution{}, apperrors.ErrInvalidSymbol
	}
	if !inst.Category.Valid() {
		return pricing.Resolution{}, fmt.Errorf("%w: %q", apperrors.ErrInvalidCategory, inst.Category)
	}

	res := s.resolver.Resolve(ctx, inst)
	if !res.OK() {
		s.log.Warn().Err(res.Err).Str("symbol", inst.Symbol).Msg("price lookup failed")
		return res, res.Err
	}
	return res, nil
}

// Search looks up symbols matching query.
func (s *MarketService) Search(ctx context.Context, query string) ([]model.SearchResult, error) {
	return s.resolver.Search(ctx, query)
}

// ExchangeRates returns the rates currently in effect.
// Reading never fails on a provider outage; the stored and fallback layers
// are served instead.
func (s *MarketService) ExchangeRates(ctx context.Context) (model.RateTable, error) {
	rates, err := s.rates.Rates(ctx)
	if err != nil {
		return model.RateTable{}, fmt.Errorf("%w: %w", apperrors.ErrFailedToRetrieveRates, err)
	}

	stored, err := s.rates.Stored(ctx)
	if err != nil {
		return model.RateTable{}, fmt.Errorf("%w: %w", apperrors.ErrFailedToRetrieveRates, err)
	}

	table := model.RateTable{
		Base:      model.BaseCurrency,
		Rates:     rates,
		UpdatedAt: make(map[string]time.Time, len(stored)),
	}
	for _, r := range stored {
		table.UpdatedAt[r.Currency] = r.UpdatedAt
	}
	return table, nil
}
