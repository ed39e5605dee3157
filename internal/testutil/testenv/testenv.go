// Package testenv wires the full service graph on top of an in-memory
// database and a mock Yahoo client, for service and handler tests.
package testenv

import (
	"context"
	"database/sql"
	"testing"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/ndewijer/Wealth-Tracker-Backend/internal/currency"
	"github.com/ndewijer/Wealth-Tracker-Backend/internal/model"
	"github.com/ndewijer/Wealth-Tracker-Backend/internal/pricecache"
	"github.com/ndewijer/Wealth-Tracker-Backend/internal/pricing"
	"github.com/ndewijer/Wealth-Tracker-Backend/internal/repository"
	"github.com/ndewijer/Wealth-Tracker-Backend/internal/service"
	"github.com/ndewijer/Wealth-Tracker-Backend/internal/snapshot"
	"github.com/ndewijer/Wealth-Tracker-Backend/internal/testutil"
)

// Env holds every service wired against one test database.
type Env struct {
	DB       *sql.DB
	Yahoo    *testutil.MockYahooClient
	Cache    *pricecache.Cache
	Resolver *pricing.Resolver
	Rates    *currency.Service

	System      *service.SystemService
	Portfolios  *service.PortfolioService
	Holdings    *service.HoldingService
	Valuation   *service.ValuationService
	Market      *service.MarketService
	PriceUpdate *service.PriceUpdateService
}

type options struct {
	sources    []currency.Source
	quiet      currency.QuietHours
	extra      []pricing.Provider
	benchmarks []model.Benchmark
}

// Option customizes New.
type Option func(*options)

// WithLiveRates makes the rate service fetch from a source answering rates.
// Without it no live source is configured and only stored and fallback
// rates are used.
func WithLiveRates(rates map[string]float64) Option {
	return func(o *options) {
		o.sources = append(o.sources, StaticRates(rates))
	}
}

// WithQuietHours sets the quiet window of the rate service.
func WithQuietHours(q currency.QuietHours) Option {
	return func(o *options) {
		o.quiet = q
	}
}

// WithProvider adds p to the chain of every category it supports, after Yahoo.
func WithProvider(p pricing.Provider) Option {
	return func(o *options) {
		o.extra = append(o.extra, p)
	}
}

// WithBenchmarks records benchmarks in snapshot runs. Without it no
// benchmark is recorded.
func WithBenchmarks(benchmarks ...model.Benchmark) Option {
	return func(o *options) {
		o.benchmarks = append(o.benchmarks, benchmarks...)
	}
}

// New builds an Env. Yahoo is the only provider unless WithProvider adds more.
func New(t *testing.T, opts ...Option) *Env {
	t.Helper()

	var o options
	for _, opt := range opts {
		opt(&o)
	}

	db := testutil.SetupTestDB(t)
	log := zerolog.Nop()
	mock := testutil.NewMockYahooClient()

	portfolioRepo := repository.NewPortfolioRepository(db)
	holdingRepo := repository.NewHoldingRepository(db)

	cache := pricecache.New(pricecache.NewSQLStore(repository.NewPriceCacheRepository(db)))

	chains := pricing.DefaultChains(pricing.Providers{Yahoo: pricing.NewYahooProvider(mock)})
	for _, p := range o.extra {
		for _, category := range model.Categories {
			if category != model.CategoryCash && p.Supports(category) {
				chains[category] = append(chains[category], p)
			}
		}
	}

	resolver := pricing.NewResolver(pricing.ResolverConfig{
		Chains: chains,
		Cache:  cache,
		Search: mock,
		Logger: log,
	})

	rates := currency.NewService(currency.ServiceConfig{
		Store:      repository.NewExchangeRateRepository(db),
		Holdings:   holdingRepo,
		Sources:    o.sources,
		QuietHours: o.quiet,
		Logger:     log,
	})

	recorder := snapshot.NewRecorder(repository.NewSnapshotRepository(db), log)
	benchmarks := snapshot.NewBenchmarkRecorder(repository.NewBenchmarkPriceRepository(db), o.benchmarks, log)
	valuation := service.NewValuationService(portfolioRepo, holdingRepo, resolver, rates, recorder, benchmarks, 2, log)

	return &Env{
		DB:          db,
		Yahoo:       mock,
		Cache:       cache,
		Resolver:    resolver,
		Rates:       rates,
		System:      service.NewSystemService(db, "yahoo"),
		Portfolios:  service.NewPortfolioService(portfolioRepo, "EUR"),
		Holdings:    service.NewHoldingService(portfolioRepo, holdingRepo),
		Valuation:   valuation,
		Market:      service.NewMarketService(resolver, rates, log),
		PriceUpdate: service.NewPriceUpdateService(holdingRepo, resolver, rates, valuation, 2, 0, log),
	}
}

// StaticRates is a currency.Source answering from a fixed table.
type StaticRates map[string]float64

func (StaticRates) Name() string { return "static" }

func (s StaticRates) Fetch(_ context.Context, currencies []string) (map[string]decimal.Decimal, error) {
	out := make(map[string]decimal.Decimal, len(currencies))
	for _, c := range currencies {
		if r, ok := s[c]; ok {
			out[c] = decimal.NewFromFloat(r)
		}
	}
	return out, nil
}
