package handlers_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ndewijer/Wealth-Tracker-Backend/internal/api/handlers"
	"github.com/ndewijer/Wealth-Tracker-Backend/internal/model"
	"github.com/ndewijer/Wealth-Tracker-Backend/internal/testutil"
	"github.com/ndewijer/Wealth-Tracker-Backend/internal/testutil/testenv"
	"github.com/ndewijer/Wealth-Tracker-Backend/internal/yahoo"
)

func TestMarketHandler_Price(t *testing.T) {
	env := testenv.New(t)
	env.Yahoo.WithPrice("AAPL", 189.25, "USD")
	handler := handlers.NewMarketHandler(env.Market)

	get := func(query map[string]string) *httptest.ResponseRecorder {
		req := testutil.NewRequestWithQueryParams(http.MethodGet, "/api/market/price", query)
		w := httptest.NewRecorder()
		handler.Price(w, req)
		return w
	}

	t.Run("resolves from the provider, then from cache", func(t *testing.T) {
		w := get(map[string]string{"symbol": "aapl"})

		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		var first handlers.PriceResponse
		require.NoError(t, json.NewDecoder(w.Body).Decode(&first))
		assert.Equal(t, "AAPL", first.Symbol)
		assert.InDelta(t, 189.25, first.Price, 0.0001)
		assert.Equal(t, "USD", first.Currency)
		assert.Equal(t, "yahoo", first.Provider)
		assert.Equal(t, "fresh", first.Status)
		assert.False(t, first.FromCache)

		w = get(map[string]string{"symbol": "AAPL", "category": "equity"})

		require.Equal(t, http.StatusOK, w.Code)
		var second handlers.PriceResponse
		require.NoError(t, json.NewDecoder(w.Body).Decode(&second))
		assert.True(t, second.FromCache)
		assert.Equal(t, 1, env.Yahoo.ChartCalls("AAPL"))
	})

	t.Run("returns 400 without symbol", func(t *testing.T) {
		w := get(nil)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("returns 400 for an unknown category", func(t *testing.T) {
		w := get(map[string]string{"symbol": "AAPL", "category": "BOND"})
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("returns 502 when every provider fails", func(t *testing.T) {
		w := get(map[string]string{"symbol": "NOPE"})
		assert.Equal(t, http.StatusBadGateway, w.Code, w.Body.String())
	})
}

func TestMarketHandler_Search(t *testing.T) {
	env := testenv.New(t)
	env.Yahoo.WithSearchResults("ASML", yahoo.SearchQuote{Symbol: "ASML.AS", ShortName: "ASML HOLDING", Exchange: "AMS", QuoteType: "EQUITY"})
	handler := handlers.NewMarketHandler(env.Market)

	t.Run("returns matches", func(t *testing.T) {
		req := testutil.NewRequestWithQueryParams(http.MethodGet, "/api/market/search", map[string]string{"q": "ASML"})
		w := httptest.NewRecorder()

		handler.Search(w, req)

		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		var results []model.SearchResult
		require.NoError(t, json.NewDecoder(w.Body).Decode(&results))
		require.Len(t, results, 1)
		assert.Equal(t, "ASML.AS", results[0].Symbol)
		assert.Equal(t, "ASML HOLDING", results[0].Name)
	})

	t.Run("returns 400 for an empty query", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/market/search?q=", nil)
		w := httptest.NewRecorder()

		handler.Search(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestMarketHandler_ExchangeRates(t *testing.T) {
	env := testenv.New(t)
	testutil.CreateExchangeRates(t, env.DB, map[string]float64{"USD": 1.08})
	handler := handlers.NewMarketHandler(env.Market)

	req := httptest.NewRequest(http.MethodGet, "/api/exchange-rates", nil)
	w := httptest.NewRecorder()

	handler.ExchangeRates(w, req)

	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var table model.RateTable
	require.NoError(t, json.NewDecoder(w.Body).Decode(&table))
	assert.Equal(t, "EUR", table.Base)
	assert.Equal(t, "1.08", table.Rates["USD"].String())
	assert.Contains(t, table.UpdatedAt, "USD")
}
