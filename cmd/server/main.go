package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "time/tzdata"

	"github.com/rs/zerolog/log"

	"github.com/ndewijer/Wealth-Tracker-Backend/internal/api"
	"github.com/ndewijer/Wealth-Tracker-Backend/internal/app"
	"github.com/ndewijer/Wealth-Tracker-Backend/internal/config"
	"github.com/ndewijer/Wealth-Tracker-Backend/internal/logger"
	"github.com/ndewijer/Wealth-Tracker-Backend/internal/scheduler"
	"github.com/ndewijer/Wealth-Tracker-Backend/internal/version"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}

	l := logger.New(logger.Config{Level: cfg.Log.Level, Pretty: cfg.Log.Pretty})
	logger.SetGlobalLogger(l)

	l.Info().Str("version", version.Version).Msg("Starting wealth tracker")

	ctx := context.Background()
	a, err := app.New(ctx, cfg, l)
	if err != nil {
		l.Fatal().Err(err).Msg("Failed to initialize application")
	}
	defer a.Close()

	if cfg.Cron.Secret == "" {
		l.Warn().Msg("CRON_SECRET is not set, cron triggers will refuse every request")
	}

	sched := scheduler.New(l)
	priceUpdate := a.Services.PriceUpdate
	valuation := a.Services.Valuation

	if err := sched.AddJob(cfg.Cron.PriceUpdateSchedule, scheduler.FuncJob{
		JobName: "price-update",
		Fn: func() error {
			if priceUpdate.InQuietHours(time.Now()) {
				l.Info().Msg("Skipping price update during quiet hours")
				return nil
			}
			summary := priceUpdate.Run(context.Background())
			if !summary.Success {
				return errors.New(summary.Reason)
			}
			return nil
		},
	}); err != nil {
		l.Fatal().Err(err).Msg("Invalid PRICE_UPDATE_SCHEDULE")
	}

	if err := sched.AddJob(cfg.Cron.SnapshotSchedule, scheduler.FuncJob{
		JobName: "daily-snapshot",
		Fn: func() error {
			_, err := valuation.SnapshotAll(context.Background(), nil, nil)
			return err
		},
	}); err != nil {
		l.Fatal().Err(err).Msg("Invalid SNAPSHOT_SCHEDULE")
	}

	sched.Start()

	// Create HTTP server
	server := &http.Server{
		Addr:         cfg.Server.Addr,
		Handler:      api.NewRouter(a.Services, cfg, l),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: cfg.WriteTimeout(),
		IdleTimeout:  60 * time.Second,
	}

	// Start server in a goroutine
	go func() {
		l.Info().Str("addr", cfg.Server.Addr).Msg("Starting server")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			l.Fatal().Err(err).Msg("Server failed to start")
		}
	}()

	// Wait for interrupt signal for graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	l.Info().Msg("Shutting down server...")

	sched.Stop()

	// Graceful shutdown with timeout
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		l.Error().Err(err).Msg("Server forced to shutdown")
	}

	l.Info().Msg("Server exited")
}
