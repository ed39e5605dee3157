package service

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/samber/lo"
	"golang.org/x/sync/errgroup"

	"github.com/ndewijer/Wealth-Tracker-Backend/internal/apperrors"
	"github.com/ndewijer/Wealth-Tracker-Backend/internal/currency"
	"github.com/ndewijer/Wealth-Tracker-Backend/internal/model"
	"github.com/ndewijer/Wealth-Tracker-Backend/internal/pricing"
	"github.com/ndewijer/Wealth-Tracker-Backend/internal/repository"
	"github.com/ndewijer/Wealth-Tracker-Backend/internal/snapshot"
	"github.com/ndewijer/Wealth-Tracker-Backend/internal/valuation"
)

// DefaultConcurrency bounds parallel price resolutions.
const DefaultConcurrency = 5

// resolveFunc is either Resolver.Resolve or Resolver.Cached.
type resolveFunc func(ctx context.Context, inst model.Instrument) pricing.Resolution

// ValuationService values portfolios and records their daily snapshots.
type ValuationService struct {
	portfolioRepo *repository.PortfolioRepository
	holdingRepo   *repository.HoldingRepository
	resolver      *pricing.Resolver
	rates         *currency.Service
	recorder      *snapshot.Recorder
	benchmarks    *snapshot.BenchmarkRecorder
	concurrency   int
	log           zerolog.Logger
	now           func() time.Time
}

// NewValuationService creates a new ValuationService.
// concurrency bounds how many instruments are resolved at once; values
// below one use DefaultConcurrency. A nil benchmarks recorder disables
// benchmark prices.
func NewValuationService(
	portfolioRepo *repository.PortfolioRepository,
	holdingRepo *repository.HoldingRepository,
	resolver *pricing.Resolver,
	rates *currency.Service,
	recorder *snapshot.Recorder,
	benchmarks *snapshot.BenchmarkRecorder,
	concurrency int,
	logger zerolog.Logger,
) *ValuationService {
	if concurrency < 1 {
		concurrency = DefaultConcurrency
	}
	return &ValuationService{
		portfolioRepo: portfolioRepo,
		holdingRepo:   holdingRepo,
		resolver:      resolver,
		rates:         rates,
		recorder:      recorder,
		benchmarks:    benchmarks,
		concurrency:   concurrency,
		log:           logger.With().Str("component", "valuation").Logger(),
		now:           time.Now,
	}
}

// ValuatePortfolio computes the current value of one portfolio.
//
// Every distinct non-cash symbol is resolved through the cache and provider
// chain, at most concurrency at a time. Exchange rates come from the
// currency service; a rate store failure is logged and the fallback table
// is used.
//
// Parameters:
//   - ctx: Request context; cancelling it stops outstanding provider calls
//   - portfolioID: The portfolio to value
//   - reportingCurrency: Optional ISO code; empty uses the portfolio's own reporting currency
//
// Returns:
//   - valuation.Result: Unrounded totals and positions
//   - error: ErrPortfolioNotFound, ErrUnknownCurrency, or a wrapped ErrFailedToValuate
func (s *ValuationService) ValuatePortfolio(ctx context.Context, portfolioID, reportingCurrency string) (valuation.Result, error) {
	portfolio, err := s.portfolioRepo.GetPortfolioOnID(ctx, portfolioID)
	if err != nil {
		return valuation.Result{}, err
	}

	reportingCurrency = strings.ToUpper(strings.TrimSpace(reportingCurrency))
	if reportingCurrency == "" {
		reportingCurrency = portfolio.ReportingCurrency
	}

	holdings, err := s.holdingRepo.GetHoldingsByPortfolio(ctx, portfolioID)
	if err != nil {
		return valuation.Result{}, fmt.Errorf("%w: %w", apperrors.ErrFailedToValuate, err)
	}

	prices := s.resolveAll(ctx, instruments(holdings), nil, s.resolver.Resolve)

	rates, err := s.rates.Rates(ctx)
	if err != nil {
		s.log.Warn().Err(err).Msg("exchange rates degraded to fallback table")
	}

	return valuation.Valuate(holdings, prices, rates, reportingCurrency)
}

// Snapshots returns the recorded daily totals of a portfolio between from
// and to, inclusive.
// Returns apperrors.ErrPortfolioNotFound when the portfolio does not exist
// and apperrors.ErrInvalidDateRange when from is after to.
func (s *ValuationService) Snapshots(ctx context.Context, portfolioID string, from, to time.Time) ([]model.Snapshot, error) {
	if _, err := s.portfolioRepo.GetPortfolioOnID(ctx, portfolioID); err != nil {
		return nil, err
	}
	return s.recorder.History(ctx, portfolioID, from, to)
}

// SnapshotAll values every non-archived portfolio and records today's snapshot
// for each, then records today's price of every benchmark.
//
// known carries resolutions already obtained by the caller, keyed by upper
// case symbol. Portfolio holdings missing from it are read from the price
// cache only, so valuing portfolios never calls a provider. Benchmarks
// missing from it go through the full resolver, since nothing else keeps
// their cache warm. A portfolio whose valuation fails is reported in its
// outcome and does not stop the others.
//
// Callers should pass a context that outlives their own deadline: snapshots
// for the prices gathered so far are still worth persisting.
func (s *ValuationService) SnapshotAll(ctx context.Context, known map[string]pricing.Resolution, rates model.Rates) (model.SnapshotRun, error) {
	run := model.SnapshotRun{
		Portfolios: []model.SnapshotOutcome{},
		Benchmarks: []model.BenchmarkOutcome{},
	}

	portfolios, err := s.portfolioRepo.GetPortfolios(ctx, model.PortfolioFilter{})
	if err != nil {
		return run, fmt.Errorf("%w: %w", apperrors.ErrFailedToRetrievePortfolios, err)
	}

	if rates == nil {
		if rates, err = s.rates.Rates(ctx); err != nil {
			s.log.Warn().Err(err).Msg("exchange rates degraded to fallback table")
		}
	}

	at := s.now()
	for _, p := range portfolios {
		outcome := model.SnapshotOutcome{PortfolioID: p.ID, Currency: p.ReportingCurrency}

		result, err := s.valuateWith(ctx, p, known, rates)
		if err != nil {
			s.log.Error().Err(err).Str("portfolioId", p.ID).Msg("snapshot valuation failed")
			outcome.Error = err.Error()
			run.Portfolios = append(run.Portfolios, outcome)
			continue
		}

		outcome.TotalValue = result.TotalValue.StringFixed(2)
		outcome.Stale = result.Stale
		outcome.Unresolved = result.Unresolved
		if !s.recorder.Record(ctx, p.ID, result.TotalValue, result.Currency, at) {
			outcome.Error = "snapshot not recorded"
		}
		run.Portfolios = append(run.Portfolios, outcome)
	}

	run.Benchmarks = s.recordBenchmarks(ctx, known, at)
	return run, nil
}

// recordBenchmarks stores today's price of every configured benchmark.
// A day that already has a price keeps it.
func (s *ValuationService) recordBenchmarks(ctx context.Context, known map[string]pricing.Resolution, at time.Time) []model.BenchmarkOutcome {
	if s.benchmarks == nil {
		return []model.BenchmarkOutcome{}
	}

	benchmarks := s.benchmarks.Benchmarks()
	insts := lo.Map(benchmarks, func(b model.Benchmark, _ int) model.Instrument {
		inst := b.Instrument()
		inst.Symbol = strings.ToUpper(strings.TrimSpace(inst.Symbol))
		return inst
	})
	prices := s.resolveAll(ctx, insts, known, s.resolver.Resolve)

	outcomes := make([]model.BenchmarkOutcome, len(benchmarks))
	for i, b := range benchmarks {
		outcome := model.BenchmarkOutcome{Symbol: insts[i].Symbol, Name: b.Name}
		res := prices[insts[i].Symbol]
		if !res.OK() {
			outcome.Status = model.BenchmarkFailed
			if res.Err != nil {
				outcome.Error = res.Err.Error()
			}
			outcomes[i] = outcome
			continue
		}

		outcome.Price = res.Record.Price.String()
		outcome.Currency = res.Record.Currency
		inserted, err := s.benchmarks.Record(ctx, res.Record, at)
		switch {
		case err != nil:
			outcome.Status = model.BenchmarkFailed
			outcome.Error = err.Error()
		case inserted:
			outcome.Status = model.BenchmarkRecorded
		default:
			outcome.Status = model.BenchmarkExists
		}
		outcomes[i] = outcome
	}
	return outcomes
}

// BenchmarkHistory returns the recorded daily benchmark prices between from
// and to, inclusive, grouped by symbol. No symbols means every configured
// benchmark.
// Returns apperrors.ErrInvalidDateRange when from is after to.
func (s *ValuationService) BenchmarkHistory(ctx context.Context, symbols []string, from, to time.Time) (map[string][]model.BenchmarkPrice, error) {
	if s.benchmarks == nil {
		return map[string][]model.BenchmarkPrice{}, nil
	}
	return s.benchmarks.History(ctx, symbols, from, to)
}

func (s *ValuationService) valuateWith(ctx context.Context, p model.Portfolio, known map[string]pricing.Resolution, rates model.Rates) (valuation.Result, error) {
	holdings, err := s.holdingRepo.GetHoldingsByPortfolio(ctx, p.ID)
	if err != nil {
		return valuation.Result{}, err
	}

	prices := s.resolveAll(ctx, instruments(holdings), known, s.resolver.Cached)
	return valuation.Valuate(holdings, prices, rates, p.ReportingCurrency)
}

// resolveAll resolves insts with at most s.concurrency calls in flight.
// Entries already in known are reused without resolving again.
func (s *ValuationService) resolveAll(ctx context.Context, insts []model.Instrument, known map[string]pricing.Resolution, resolve resolveFunc) map[string]pricing.Resolution {
	prices := make(map[string]pricing.Resolution, len(insts))
	var mu sync.Mutex

	var g errgroup.Group
	g.SetLimit(s.concurrency)
	for _, inst := range insts {
		inst := inst
		if res, ok := known[inst.Symbol]; ok {
			mu.Lock()
			prices[inst.Symbol] = res
			mu.Unlock()
			continue
		}
		g.Go(func() error {
			res := resolve(ctx, inst)
			mu.Lock()
			prices[inst.Symbol] = res
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait()

	return prices
}

// instruments returns the distinct priceable instruments of holdings with a
// positive quantity. CASH never needs a price.
func instruments(holdings []model.Holding) []model.Instrument {
	open := lo.Filter(holdings, func(h model.Holding, _ int) bool {
		return h.Quantity.IsPositive() && h.Category != model.CategoryCash
	})
	insts := lo.Map(open, func(h model.Holding, _ int) model.Instrument {
		inst := h.Instrument()
		inst.Symbol = strings.ToUpper(strings.TrimSpace(inst.Symbol))
		return inst
	})
	return lo.UniqBy(insts, func(i model.Instrument) string { return i.Symbol })
}
