package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/ndewijer/Wealth-Tracker-Backend/internal/currency"
	"github.com/ndewijer/Wealth-Tracker-Backend/internal/model"
	"github.com/ndewijer/Wealth-Tracker-Backend/internal/pricing"
	"github.com/ndewijer/Wealth-Tracker-Backend/internal/repository"
)

// DefaultRunDeadline bounds a whole price update run.
const DefaultRunDeadline = 4 * time.Minute

// PriceUpdateService refreshes the price of every held instrument, then
// the exchange rates, then records a snapshot per portfolio.
type PriceUpdateService struct {
	holdingRepo *repository.HoldingRepository
	resolver    *pricing.Resolver
	rates       *currency.Service
	valuation   *ValuationService
	concurrency int
	deadline    time.Duration
	log         zerolog.Logger

	// running guards against overlapping runs from the scheduler and the HTTP trigger.
	running sync.Mutex
}

// NewPriceUpdateService creates a new PriceUpdateService.
// Non-positive concurrency or deadline fall back to DefaultConcurrency and DefaultRunDeadline.
func NewPriceUpdateService(
	holdingRepo *repository.HoldingRepository,
	resolver *pricing.Resolver,
	rates *currency.Service,
	valuation *ValuationService,
	concurrency int,
	deadline time.Duration,
	logger zerolog.Logger,
) *PriceUpdateService {
	if concurrency < 1 {
		concurrency = DefaultConcurrency
	}
	if deadline <= 0 {
		deadline = DefaultRunDeadline
	}
	return &PriceUpdateService{
		holdingRepo: holdingRepo,
		resolver:    resolver,
		rates:       rates,
		valuation:   valuation,
		concurrency: concurrency,
		deadline:    deadline,
		log:         logger.With().Str("component", "price-update").Logger(),
	}
}

// InQuietHours reports whether t falls in the window where scheduled runs
// are skipped.
func (s *PriceUpdateService) InQuietHours(t time.Time) bool {
	return s.rates.InQuietHours(t)
}

// Run performs one full price update.
//
// Process:
//  1. Collect the distinct instruments of every open holding in a
//     non-archived portfolio, CASH excluded.
//  2. Skip instruments whose cached price is still within TTL.
//  3. Resolve the rest, at most concurrency at a time, under the run deadline.
//     A failing symbol never aborts the batch.
//  4. Refresh exchange rates; failures leave the stored and fallback rates in place.
//  5. Value every portfolio with the gathered prices and record today's snapshot,
//     then today's benchmark prices. This step runs even when the deadline has
//     passed so partial results persist.
//
// Returns:
//   - model.PriceUpdateSummary: Success is false only when the run could not start
func (s *PriceUpdateService) Run(ctx context.Context) (summary model.PriceUpdateSummary) {
	s.running.Lock()
	defer s.running.Unlock()

	start := time.Now()
	summary = model.PriceUpdateSummary{
		Outcomes:   []model.SymbolOutcome{},
		Snapshots:  []model.SnapshotOutcome{},
		Benchmarks: []model.BenchmarkOutcome{},
	}
	defer func() {
		summary.Duration = time.Since(start).Round(time.Millisecond).String()
	}()

	runCtx, cancel := context.WithTimeout(ctx, s.deadline)
	defer cancel()

	holdings, err := s.holdingRepo.GetActiveHoldings(runCtx)
	if err != nil {
		s.log.Error().Err(err).Msg("failed to load holdings")
		summary.Reason = fmt.Sprintf("failed to load holdings: %v", err)
		return summary
	}

	insts := instruments(holdings)
	summary.TotalSymbols = len(insts)
	s.log.Info().Int("symbols", len(insts)).Msg("price update started")

	resolutions := make([]pricing.Resolution, len(insts))
	outcomes := make([]model.SymbolOutcome, len(insts))

	var g errgroup.Group
	g.SetLimit(s.concurrency)
	for i, inst := range insts {
		i, inst := i, inst
		g.Go(func() error {
			resolutions[i], outcomes[i] = s.update(runCtx, inst)
			return nil
		})
	}
	_ = g.Wait()

	known := make(map[string]pricing.Resolution, len(resolutions))
	for i, o := range outcomes {
		known[resolutions[i].Instrument.Symbol] = resolutions[i]
		switch o.Status {
		case model.OutcomeUpdated:
			summary.UpdatedCount++
		case model.OutcomeStale:
			summary.StaleCount++
		case model.OutcomeSkipped:
			summary.SkippedCount++
		default:
			summary.FailedCount++
		}
	}
	summary.Outcomes = outcomes

	rates, err := s.rates.Refresh(runCtx)
	if err != nil {
		s.log.Warn().Err(err).Msg("exchange rate refresh failed, using stored rates")
	}

	run, err := s.valuation.SnapshotAll(context.WithoutCancel(ctx), known, rates)
	if err != nil {
		s.log.Error().Err(err).Msg("failed to record snapshots")
	}
	summary.Snapshots = run.Portfolios
	summary.Benchmarks = run.Benchmarks

	summary.Success = true
	s.log.Info().
		Int("updated", summary.UpdatedCount).
		Int("stale", summary.StaleCount).
		Int("failed", summary.FailedCount).
		Int("skipped", summary.SkippedCount).
		Dur("took", time.Since(start)).
		Msg("price update finished")

	return summary
}

// update resolves one instrument unless its cached price is still fresh.
func (s *PriceUpdateService) update(ctx context.Context, inst model.Instrument) (pricing.Resolution, model.SymbolOutcome) {
	outcome := model.SymbolOutcome{Symbol: inst.Symbol, Category: inst.Category}

	cached := s.resolver.Cached(ctx, inst)
	if cached.Status == pricing.StatusFresh {
		outcome.Status = model.OutcomeSkipped
		fill(&outcome, cached.Record)
		return cached, outcome
	}

	// Out of time: keep whatever the cache still has.
	if err := ctx.Err(); err != nil {
		outcome.Error = err.Error()
		if cached.OK() {
			outcome.Status = model.OutcomeStale
			fill(&outcome, cached.Record)
			cached.Err = err
			return cached, outcome
		}
		outcome.Status = model.OutcomeFailed
		return pricing.Resolution{Instrument: inst, Err: err}, outcome
	}

	res := s.resolver.Resolve(ctx, inst)
	switch res.Status {
	case pricing.StatusFresh:
		outcome.Status = model.OutcomeUpdated
		fill(&outcome, res.Record)
	case pricing.StatusStale:
		outcome.Status = model.OutcomeStale
		fill(&outcome, res.Record)
		outcome.Error = res.Err.Error()
	default:
		outcome.Status = model.OutcomeFailed
		if res.Err != nil {
			outcome.Error = res.Err.Error()
		}
	}
	return res, outcome
}

func fill(o *model.SymbolOutcome, rec model.PriceRecord) {
	o.Provider = rec.Provider
	o.Price = rec.Price.String()
	o.Currency = rec.Currency
}
