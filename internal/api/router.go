package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"github.com/ndewijer/Wealth-Tracker-Backend/internal/api/handlers"
	custommiddleware "github.com/ndewijer/Wealth-Tracker-Backend/internal/api/middleware"
	"github.com/ndewijer/Wealth-Tracker-Backend/internal/config"
	"github.com/ndewijer/Wealth-Tracker-Backend/internal/service"
)

// Services bundles everything the router hands to its handlers.
type Services struct {
	System      *service.SystemService
	Portfolio   *service.PortfolioService
	Holding     *service.HoldingService
	Valuation   *service.ValuationService
	Market      *service.MarketService
	PriceUpdate *service.PriceUpdateService
}

// NewRouter creates and configures the HTTP router
func NewRouter(svc Services, cfg *config.Config, log zerolog.Logger) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(custommiddleware.Logger(log))
	r.Use(middleware.Recoverer)

	// CORS middleware
	corsMiddleware := custommiddleware.NewCORS(cfg.CORS.AllowedOrigins)
	r.Use(corsMiddleware.Handler)

	// API routes
	r.Route("/api", func(r chi.Router) {
		// System namespace
		r.Route("/system", func(r chi.Router) {
			systemHandler := handlers.NewSystemHandler(svc.System)
			r.Get("/health", systemHandler.Health)
			r.Get("/version", systemHandler.Version)
		})

		r.Route("/cron", func(r chi.Router) {
			r.Use(custommiddleware.CronAuth(cfg.Cron.Secret))
			cronHandler := handlers.NewCronHandler(svc.PriceUpdate, svc.Valuation)
			r.Get("/update-prices", cronHandler.UpdatePrices)
			r.Get("/daily-snapshot", cronHandler.DailySnapshot)
		})

		r.Route("/portfolio", func(r chi.Router) {
			portfolioHandler := handlers.NewPortfolioHandler(svc.Portfolio)
			holdingHandler := handlers.NewHoldingHandler(svc.Holding)
			valuationHandler := handlers.NewValuationHandler(svc.Valuation)

			r.Get("/", portfolioHandler.Portfolios)
			r.Post("/", portfolioHandler.CreatePortfolio)

			r.Route("/{uuid}", func(r chi.Router) {
				r.Use(custommiddleware.ValidateUUIDMiddleware)
				r.Get("/", portfolioHandler.Portfolio)
				r.Get("/holdings", holdingHandler.Holdings)
				r.Post("/holdings", holdingHandler.CreateHolding)
				r.Put("/holdings/{holdingId}", holdingHandler.UpdateHolding)
				r.Get("/valuation", valuationHandler.Valuation)
				r.Get("/snapshots", valuationHandler.Snapshots)
			})
		})

		r.Route("/market", func(r chi.Router) {
			marketHandler := handlers.NewMarketHandler(svc.Market)
			r.Get("/price", marketHandler.Price)
			r.Get("/search", marketHandler.Search)
		})

		r.Get("/exchange-rates", handlers.NewMarketHandler(svc.Market).ExchangeRates)
		r.Get("/benchmarks/prices", handlers.NewValuationHandler(svc.Valuation).BenchmarkPrices)
	})

	return r
}
