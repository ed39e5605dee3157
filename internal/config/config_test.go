package config_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ndewijer/Wealth-Tracker-Backend/internal/config"
	"github.com/ndewijer/Wealth-Tracker-Backend/internal/model"
)

func TestLoad(t *testing.T) {
	t.Run("uses defaults when nothing is set", func(t *testing.T) {
		cfg, err := config.Load()
		require.NoError(t, err)

		assert.Equal(t, "localhost:5001", cfg.Server.Addr)
		assert.Equal(t, "sql", cfg.Cache.Backend)
		assert.Equal(t, 5, cfg.PriceUpdate.Concurrency)
		assert.Equal(t, 4*time.Minute, cfg.PriceUpdate.Deadline)
		assert.Equal(t, 10*time.Second, cfg.Providers.Timeout)
		assert.Equal(t, 2500*time.Millisecond, cfg.Providers.RatesTimeout)
		assert.Equal(t, 0, cfg.Cron.QuietHoursStart)
		assert.Equal(t, 8, cfg.Cron.QuietHoursEnd)
		assert.Equal(t, "Europe/Amsterdam", cfg.Cron.QuietHoursTZ)
		assert.True(t, cfg.Cron.RecordBenchmarks)
		assert.Equal(t, "EUR", cfg.ReportingCurrency)
		assert.Equal(t, time.Hour, cfg.Cache.TTL[model.CategoryEquity])
		assert.Equal(t, 15*time.Minute, cfg.Cache.TTL[model.CategoryCrypto])
		assert.Equal(t, 24*time.Hour, cfg.Cache.TTL[model.CategoryFund])
		assert.Zero(t, cfg.Cache.TTL[model.CategoryCash])
	})

	t.Run("reads overrides from the environment", func(t *testing.T) {
		t.Setenv("SERVER_HOST", "0.0.0.0")
		t.Setenv("SERVER_PORT", "8080")
		t.Setenv("PRICE_CACHE_BACKEND", "MEMORY")
		t.Setenv("TTL_CRYPTO", "5m")
		t.Setenv("PRICE_UPDATE_CONCURRENCY", "2")
		t.Setenv("CORS_ALLOWED_ORIGINS", "https://a.example, https://b.example")
		t.Setenv("REPORTING_CURRENCY", "usd")
		t.Setenv("CRON_SECRET", "s3cret")

		cfg, err := config.Load()
		require.NoError(t, err)

		assert.Equal(t, "0.0.0.0:8080", cfg.Server.Addr)
		assert.Equal(t, "memory", cfg.Cache.Backend)
		assert.Equal(t, 5*time.Minute, cfg.Cache.TTL[model.CategoryCrypto])
		assert.Equal(t, 2, cfg.PriceUpdate.Concurrency)
		assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.CORS.AllowedOrigins)
		assert.Equal(t, "USD", cfg.ReportingCurrency)
		assert.Equal(t, "s3cret", cfg.Cron.Secret)
	})

	t.Run("rejects malformed values", func(t *testing.T) {
		t.Setenv("PROVIDER_TIMEOUT", "ten seconds")
		t.Setenv("PRICE_UPDATE_CONCURRENCY", "many")

		_, err := config.Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "PROVIDER_TIMEOUT")
		assert.Contains(t, err.Error(), "PRICE_UPDATE_CONCURRENCY")
	})

	t.Run("write timeout outlasts the price update deadline", func(t *testing.T) {
		t.Setenv("PRICE_UPDATE_DEADLINE", "12m")

		cfg, err := config.Load()
		require.NoError(t, err)

		assert.Equal(t, 12*time.Minute, cfg.PriceUpdate.Deadline)
		assert.Equal(t, 13*time.Minute, cfg.WriteTimeout())
	})

	t.Run("disables benchmark recording", func(t *testing.T) {
		t.Setenv("RECORD_BENCHMARKS", "false")

		cfg, err := config.Load()
		require.NoError(t, err)

		assert.False(t, cfg.Cron.RecordBenchmarks)
	})

	t.Run("rejects unknown cache backend", func(t *testing.T) {
		t.Setenv("PRICE_CACHE_BACKEND", "redis")

		_, err := config.Load()
		assert.Error(t, err)
	})
}
