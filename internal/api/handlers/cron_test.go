package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ndewijer/Wealth-Tracker-Backend/internal/currency"
	"github.com/ndewijer/Wealth-Tracker-Backend/internal/model"
	"github.com/ndewijer/Wealth-Tracker-Backend/internal/testutil"
	"github.com/ndewijer/Wealth-Tracker-Backend/internal/testutil/testenv"
)

// These tests live in package handlers so the clock can be pinned.

func TestCronHandler_UpdatePrices(t *testing.T) {
	quiet := currency.QuietHours{Start: 0, End: 7, Location: time.UTC}
	night := time.Date(2026, 3, 10, 3, 0, 0, 0, time.UTC)
	noon := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

	setup := func(t *testing.T, at time.Time) (*CronHandler, *testenv.Env) {
		t.Helper()
		env := testenv.New(t, testenv.WithQuietHours(quiet), testenv.WithLiveRates(map[string]float64{"USD": 1.25}))
		env.Yahoo.WithPrice("AAPL", 200, "USD")
		p := testutil.NewPortfolio().Build(t, env.DB)
		testutil.NewHolding(p.ID).WithSymbol("AAPL").WithQuantity(5).WithCostBasis(100).WithCurrency("USD").Build(t, env.DB)

		h := NewCronHandler(env.PriceUpdate, env.Valuation)
		h.now = func() time.Time { return at }
		return h, env
	}

	t.Run("skips during quiet hours", func(t *testing.T) {
		// Setup
		handler, env := setup(t, night)
		req := httptest.NewRequest(http.MethodGet, "/api/cron/update-prices", nil)
		w := httptest.NewRecorder()

		// Execute
		handler.UpdatePrices(w, req)

		// Assert
		require.Equal(t, http.StatusOK, w.Code)
		var response SkippedResponse
		require.NoError(t, json.NewDecoder(w.Body).Decode(&response))
		assert.True(t, response.Success)
		assert.True(t, response.Skipped)
		assert.NotEmpty(t, response.Message)
		assert.Zero(t, env.Yahoo.ChartCalls("AAPL"))
	})

	t.Run("force runs during quiet hours", func(t *testing.T) {
		handler, env := setup(t, night)
		req := httptest.NewRequest(http.MethodGet, "/api/cron/update-prices?force=true", nil)
		w := httptest.NewRecorder()

		handler.UpdatePrices(w, req)

		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		var summary model.PriceUpdateSummary
		require.NoError(t, json.NewDecoder(w.Body).Decode(&summary))
		assert.True(t, summary.Success)
		assert.False(t, summary.Skipped)
		assert.Equal(t, 1, summary.UpdatedCount)
		assert.Equal(t, 1, env.Yahoo.ChartCalls("AAPL"))
	})

	t.Run("runs outside quiet hours and records a snapshot", func(t *testing.T) {
		handler, _ := setup(t, noon)
		req := httptest.NewRequest(http.MethodGet, "/api/cron/update-prices", nil)
		w := httptest.NewRecorder()

		handler.UpdatePrices(w, req)

		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		var summary model.PriceUpdateSummary
		require.NoError(t, json.NewDecoder(w.Body).Decode(&summary))
		assert.Equal(t, 1, summary.TotalSymbols)
		require.Len(t, summary.Snapshots, 1)
		// 5 * 200 USD at 1.25 USD per EUR
		assert.Equal(t, "800.00", summary.Snapshots[0].TotalValue)
		assert.NotEmpty(t, summary.Duration)
	})
}

func TestCronHandler_DailySnapshot(t *testing.T) {
	t.Run("records from cache without calling providers", func(t *testing.T) {
		// Setup
		env := testenv.New(t)
		testutil.CreateExchangeRates(t, env.DB, map[string]float64{"USD": 1.25})
		testutil.NewPriceRecord("AAPL", 200).RefreshedAgo(30*time.Hour).Build(t, env.DB)
		p := testutil.NewPortfolio().Build(t, env.DB)
		testutil.NewHolding(p.ID).WithSymbol("AAPL").WithQuantity(5).WithCostBasis(100).WithCurrency("USD").Build(t, env.DB)
		handler := NewCronHandler(env.PriceUpdate, env.Valuation)

		req := httptest.NewRequest(http.MethodGet, "/api/cron/daily-snapshot", nil)
		w := httptest.NewRecorder()

		// Execute
		handler.DailySnapshot(w, req)

		// Assert
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		var response DailySnapshotResponse
		require.NoError(t, json.NewDecoder(w.Body).Decode(&response))
		assert.True(t, response.Success)
		require.Len(t, response.Snapshots, 1)
		assert.Equal(t, p.ID, response.Snapshots[0].PortfolioID)
		assert.Equal(t, "800.00", response.Snapshots[0].TotalValue)
		assert.Equal(t, []string{"AAPL"}, response.Snapshots[0].Stale)
		assert.Zero(t, env.Yahoo.ChartCalls("AAPL"))
	})
}
