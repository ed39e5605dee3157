package handlers_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ndewijer/Wealth-Tracker-Backend/internal/api/handlers"
	"github.com/ndewijer/Wealth-Tracker-Backend/internal/model"
	"github.com/ndewijer/Wealth-Tracker-Backend/internal/testutil"
	"github.com/ndewijer/Wealth-Tracker-Backend/internal/testutil/testenv"
)

func TestValuationHandler_Valuation(t *testing.T) {
	t.Run("values the portfolio in its reporting currency", func(t *testing.T) {
		// Setup
		env := testenv.New(t)
		handler := handlers.NewValuationHandler(env.Valuation)
		testutil.CreateExchangeRates(t, env.DB, map[string]float64{"USD": 1.25})
		env.Yahoo.WithPrice("AAPL", 180, "USD")
		p := testutil.NewPortfolio().Build(t, env.DB)
		testutil.NewHolding(p.ID).WithSymbol("AAPL").WithQuantity(10).WithCostBasis(150).WithCurrency("USD").Build(t, env.DB)
		testutil.NewHolding(p.ID).WithSymbol("GONE").WithQuantity(2).WithCostBasis(5).WithCurrency("USD").Build(t, env.DB)

		req := testutil.NewRequestWithURLParams(http.MethodGet, "/api/portfolio/"+p.ID+"/valuation", map[string]string{"uuid": p.ID})
		w := httptest.NewRecorder()

		// Execute
		handler.Valuation(w, req)

		// Assert
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		var response handlers.ValuationResponse
		require.NoError(t, json.NewDecoder(w.Body).Decode(&response))
		assert.Equal(t, p.ID, response.PortfolioID)
		assert.Equal(t, "EUR", response.Currency)
		assert.InDelta(t, 1440.0, response.TotalValue, 0.001)
		assert.InDelta(t, 1200.0, response.TotalCost, 0.001)
		assert.InDelta(t, 240.0, response.TotalProfitLoss, 0.001)
		assert.InDelta(t, 1440.0, response.ByCategory[model.CategoryEquity], 0.001)
		assert.Equal(t, []string{"GONE"}, response.Unresolved)
		require.Len(t, response.Positions, 2)
	})

	t.Run("honours the currency query parameter", func(t *testing.T) {
		env := testenv.New(t)
		handler := handlers.NewValuationHandler(env.Valuation)
		testutil.CreateExchangeRates(t, env.DB, map[string]float64{"USD": 1.25})
		env.Yahoo.WithPrice("AAPL", 180, "USD")
		p := testutil.NewPortfolio().Build(t, env.DB)
		testutil.NewHolding(p.ID).WithSymbol("AAPL").WithQuantity(10).WithCostBasis(150).WithCurrency("USD").Build(t, env.DB)

		req := testutil.NewRequestWithURLParams(http.MethodGet, "/api/portfolio/"+p.ID+"/valuation?currency=usd", map[string]string{"uuid": p.ID})
		w := httptest.NewRecorder()

		handler.Valuation(w, req)

		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		var response handlers.ValuationResponse
		require.NoError(t, json.NewDecoder(w.Body).Decode(&response))
		assert.Equal(t, "USD", response.Currency)
		assert.InDelta(t, 1800.0, response.TotalValue, 0.001)
	})

	t.Run("returns 400 for an unknown currency", func(t *testing.T) {
		env := testenv.New(t)
		handler := handlers.NewValuationHandler(env.Valuation)
		p := testutil.NewPortfolio().Build(t, env.DB)

		req := testutil.NewRequestWithURLParams(http.MethodGet, "/api/portfolio/"+p.ID+"/valuation?currency=EURO", map[string]string{"uuid": p.ID})
		w := httptest.NewRecorder()

		handler.Valuation(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("returns 404 for an unknown portfolio", func(t *testing.T) {
		env := testenv.New(t)
		handler := handlers.NewValuationHandler(env.Valuation)
		id := testutil.MakeID()

		req := testutil.NewRequestWithURLParams(http.MethodGet, "/api/portfolio/"+id+"/valuation", map[string]string{"uuid": id})
		w := httptest.NewRecorder()

		handler.Valuation(w, req)

		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}

func TestValuationHandler_Snapshots(t *testing.T) {
	t.Run("returns today's recorded snapshot", func(t *testing.T) {
		// Setup
		env := testenv.New(t)
		handler := handlers.NewValuationHandler(env.Valuation)
		testutil.CreateExchangeRates(t, env.DB, map[string]float64{"USD": 1.25})
		testutil.NewPriceRecord("AAPL", 180).Build(t, env.DB)
		p := testutil.NewPortfolio().Build(t, env.DB)
		testutil.NewHolding(p.ID).WithSymbol("AAPL").WithQuantity(10).WithCostBasis(150).WithCurrency("USD").Build(t, env.DB)
		_, err := env.Valuation.SnapshotAll(context.Background(), nil, nil)
		require.NoError(t, err)

		req := testutil.NewRequestWithURLParams(http.MethodGet, "/api/portfolio/"+p.ID+"/snapshots", map[string]string{"uuid": p.ID})
		w := httptest.NewRecorder()

		// Execute
		handler.Snapshots(w, req)

		// Assert
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		var response []handlers.SnapshotResponse
		require.NoError(t, json.NewDecoder(w.Body).Decode(&response))
		require.Len(t, response, 1)
		assert.Equal(t, time.Now().UTC().Format(time.DateOnly), response[0].Date)
		assert.InDelta(t, 1440.0, response[0].TotalValue, 0.001)
		assert.Equal(t, "EUR", response[0].Currency)
	})

	t.Run("returns an empty list outside the recorded range", func(t *testing.T) {
		env := testenv.New(t)
		handler := handlers.NewValuationHandler(env.Valuation)
		p := testutil.NewPortfolio().Build(t, env.DB)

		req := testutil.NewRequestWithQueryParams(http.MethodGet, "/api/portfolio/"+p.ID+"/snapshots", map[string]string{
			"start_date": "2020-01-01",
			"end_date":   "2020-12-31",
		})
		req = withURLParams(req, map[string]string{"uuid": p.ID})
		w := httptest.NewRecorder()

		handler.Snapshots(w, req)

		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "[]\n", w.Body.String())
	})

	for name, query := range map[string]map[string]string{
		"malformed date": {"start_date": "01-01-2024"},
		"inverted range": {"start_date": "2024-06-01", "end_date": "2024-01-01"},
		"malformed end":  {"end_date": "tomorrow"},
	} {
		t.Run("returns 400 for "+name, func(t *testing.T) {
			env := testenv.New(t)
			handler := handlers.NewValuationHandler(env.Valuation)
			p := testutil.NewPortfolio().Build(t, env.DB)

			req := testutil.NewRequestWithQueryParams(http.MethodGet, "/api/portfolio/"+p.ID+"/snapshots", query)
			req = withURLParams(req, map[string]string{"uuid": p.ID})
			w := httptest.NewRecorder()

			handler.Snapshots(w, req)

			assert.Equal(t, http.StatusBadRequest, w.Code, w.Body.String())
		})
	}
}

func TestValuationHandler_BenchmarkPrices(t *testing.T) {
	spx := model.Benchmark{Name: "S&P 500", Symbol: "^GSPC", Category: model.CategoryEquity}
	gold := model.Benchmark{Name: "Gold", Symbol: "GC=F", Category: model.CategoryCommodity}

	t.Run("groups today's prices by symbol", func(t *testing.T) {
		// Setup
		env := testenv.New(t, testenv.WithBenchmarks(spx, gold))
		handler := handlers.NewValuationHandler(env.Valuation)
		env.Yahoo.WithPrice("^GSPC", 5000, "USD")
		_, err := env.Valuation.SnapshotAll(context.Background(), nil, nil)
		require.NoError(t, err)

		req := httptest.NewRequest(http.MethodGet, "/api/benchmarks/prices", nil)
		w := httptest.NewRecorder()

		// Execute
		handler.BenchmarkPrices(w, req)

		// Assert
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		var response map[string][]handlers.BenchmarkPointResponse
		require.NoError(t, json.NewDecoder(w.Body).Decode(&response))
		require.Len(t, response["^GSPC"], 1)
		assert.Equal(t, time.Now().UTC().Format(time.DateOnly), response["^GSPC"][0].Date)
		assert.InDelta(t, 5000.0, response["^GSPC"][0].Price, 0.001)
		assert.Contains(t, response, "GC=F")
		assert.Empty(t, response["GC=F"])
	})

	t.Run("filters by symbols", func(t *testing.T) {
		env := testenv.New(t, testenv.WithBenchmarks(spx, gold))
		handler := handlers.NewValuationHandler(env.Valuation)

		req := testutil.NewRequestWithQueryParams(http.MethodGet, "/api/benchmarks/prices", map[string]string{"symbols": " ^gspc , "})
		w := httptest.NewRecorder()

		handler.BenchmarkPrices(w, req)

		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		assert.Equal(t, "{\"^GSPC\":[]}\n", w.Body.String())
	})

	t.Run("returns 400 for an inverted range", func(t *testing.T) {
		env := testenv.New(t, testenv.WithBenchmarks(spx))
		handler := handlers.NewValuationHandler(env.Valuation)

		req := testutil.NewRequestWithQueryParams(http.MethodGet, "/api/benchmarks/prices", map[string]string{
			"start_date": "2024-06-01",
			"end_date":   "2024-01-01",
		})
		w := httptest.NewRecorder()

		handler.BenchmarkPrices(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code, w.Body.String())
	})
}
