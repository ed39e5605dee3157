// Package app wires configuration, storage, providers and services into the
// object graph shared by the HTTP server and the command line tool.
package app

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/ndewijer/Wealth-Tracker-Backend/internal/api"
	"github.com/ndewijer/Wealth-Tracker-Backend/internal/config"
	"github.com/ndewijer/Wealth-Tracker-Backend/internal/currency"
	"github.com/ndewijer/Wealth-Tracker-Backend/internal/database"
	"github.com/ndewijer/Wealth-Tracker-Backend/internal/pricecache"
	"github.com/ndewijer/Wealth-Tracker-Backend/internal/pricing"
	"github.com/ndewijer/Wealth-Tracker-Backend/internal/repository"
	"github.com/ndewijer/Wealth-Tracker-Backend/internal/service"
	"github.com/ndewijer/Wealth-Tracker-Backend/internal/snapshot"
	"github.com/ndewijer/Wealth-Tracker-Backend/internal/yahoo"
)

// CoinGecko rate limits aggressively on the free tier.
const (
	coinGeckoRetries    = 2
	coinGeckoRetryDelay = 2 * time.Second
)

// App is the wired application.
type App struct {
	DB       *sql.DB
	Services api.Services
	Rates    *currency.Service
}

// Close releases the database.
func (a *App) Close() error {
	return a.DB.Close()
}

// New opens the database, applies migrations and wires every service.
func New(ctx context.Context, cfg *config.Config, log zerolog.Logger) (*App, error) {
	db, err := database.Open(cfg.Database.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := database.Migrate(ctx, db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	log.Info().Str("path", cfg.Database.Path).Msg("Connected to database")

	quiet, err := currency.NewQuietHours(cfg.Cron.QuietHoursStart, cfg.Cron.QuietHoursEnd, cfg.Cron.QuietHoursTZ)
	if err != nil {
		db.Close()
		return nil, err
	}

	// Create repositories
	portfolioRepo := repository.NewPortfolioRepository(db)
	holdingRepo := repository.NewHoldingRepository(db)
	snapshotRepo := repository.NewSnapshotRepository(db)
	rateRepo := repository.NewExchangeRateRepository(db)

	var store pricecache.Store = pricecache.NewSQLStore(repository.NewPriceCacheRepository(db))
	if cfg.Cache.Backend == "memory" {
		store = pricecache.NewMemoryStore()
	}
	cache := pricecache.New(store)

	yahooClient := yahoo.NewFinanceClient()
	providers, names := buildProviders(cfg, yahooClient)
	log.Info().Strs("providers", names).Str("cache", cfg.Cache.Backend).Msg("Price providers configured")

	resolver := pricing.NewResolver(pricing.ResolverConfig{
		Chains:          pricing.DefaultChains(providers),
		Cache:           cache,
		TTL:             pricecache.DefaultTTLPolicy().Merge(cfg.Cache.TTL),
		ProviderTimeout: cfg.Providers.Timeout,
		Search:          yahooClient,
		Logger:          log,
	})

	rates := currency.NewService(currency.ServiceConfig{
		Store:    rateRepo,
		Holdings: holdingRepo,
		Sources: []currency.Source{
			currency.NewYahooSource(yahooClient),
			currency.NewExchangeRateAPISource(cfg.Providers.ExchangeRateURL),
		},
		Timeout:    cfg.Providers.RatesTimeout,
		QuietHours: quiet,
		Logger:     log,
	})

	// Create services
	recorder := snapshot.NewRecorder(snapshotRepo, log)
	var benchmarks *snapshot.BenchmarkRecorder
	if cfg.Cron.RecordBenchmarks {
		benchmarks = snapshot.NewBenchmarkRecorder(repository.NewBenchmarkPriceRepository(db), snapshot.DefaultBenchmarks(), log)
	}
	valuationService := service.NewValuationService(
		portfolioRepo,
		holdingRepo,
		resolver,
		rates,
		recorder,
		benchmarks,
		cfg.PriceUpdate.Concurrency,
		log,
	)
	priceUpdateService := service.NewPriceUpdateService(
		holdingRepo,
		resolver,
		rates,
		valuationService,
		cfg.PriceUpdate.Concurrency,
		cfg.PriceUpdate.Deadline,
		log,
	)

	return &App{
		DB:    db,
		Rates: rates,
		Services: api.Services{
			System:      service.NewSystemService(db, names...),
			Portfolio:   service.NewPortfolioService(portfolioRepo, cfg.ReportingCurrency),
			Holding:     service.NewHoldingService(portfolioRepo, holdingRepo),
			Valuation:   valuationService,
			Market:      service.NewMarketService(resolver, rates, log),
			PriceUpdate: priceUpdateService,
		},
	}, nil
}

// buildProviders creates every provider the configuration allows. Keyed
// providers without a key stay nil so DefaultChains leaves them out.
func buildProviders(cfg *config.Config, yahooClient yahoo.Client) (pricing.Providers, []string) {
	p := pricing.Providers{
		Yahoo:     pricing.NewYahooProvider(yahooClient),
		CoinGecko: pricing.NewCoinGeckoProvider(cfg.Providers.CoinGeckoURL, coinGeckoRetryDelay, coinGeckoRetries),
		Tefas:     pricing.NewTefasProvider(""),
	}
	names := []string{"yahoo", "coingecko", "tefas"}

	if key := cfg.Providers.AlphaVantageAPIKey; key != "" {
		p.AlphaVantage = pricing.NewAlphaVantageProvider("", key)
		names = append(names, "alphavantage")
	}
	if key := cfg.Providers.FinnhubAPIKey; key != "" {
		p.Finnhub = pricing.NewFinnhubProvider("", key)
		names = append(names, "finnhub")
	}

	return p, names
}
