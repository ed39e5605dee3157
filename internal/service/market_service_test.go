package service_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ndewijer/Wealth-Tracker-Backend/internal/apperrors"
	"github.com/ndewijer/Wealth-Tracker-Backend/internal/model"
	"github.com/ndewijer/Wealth-Tracker-Backend/internal/pricing"
	"github.com/ndewijer/Wealth-Tracker-Backend/internal/testutil"
	"github.com/ndewijer/Wealth-Tracker-Backend/internal/testutil/testenv"
	"github.com/ndewijer/Wealth-Tracker-Backend/internal/yahoo"
)

func TestMarketService_Price(t *testing.T) {
	ctx := context.Background()
	env := testenv.New(t)
	env.Yahoo.WithPrice("THYAO.IS", 312.5, "TRY")

	t.Run("resolves through the provider chain", func(t *testing.T) {
		res, err := env.Market.Price(ctx, model.Instrument{Symbol: "thyao", Category: model.CategoryEquity})

		require.NoError(t, err)
		assert.Equal(t, pricing.StatusFresh, res.Status)
		assert.Equal(t, "TRY", res.Record.Currency)
		assert.Equal(t, "THYAO", res.Record.Symbol)
	})

	t.Run("unknown symbol", func(t *testing.T) {
		res, err := env.Market.Price(ctx, model.Instrument{Symbol: "NOPE", Category: model.CategoryEquity})

		assert.ErrorIs(t, err, apperrors.ErrAllProvidersFailed)
		assert.Len(t, res.Attempts, 1)
	})

	t.Run("missing symbol", func(t *testing.T) {
		_, err := env.Market.Price(ctx, model.Instrument{Category: model.CategoryEquity})

		assert.ErrorIs(t, err, apperrors.ErrInvalidSymbol)
	})

	t.Run("invalid category", func(t *testing.T) {
		_, err := env.Market.Price(ctx, model.Instrument{Symbol: "AAPL", Category: "BOND"})

		assert.ErrorIs(t, err, apperrors.ErrInvalidCategory)
	})
}

func TestMarketService_Search(t *testing.T) {
	env := testenv.New(t)
	env.Yahoo.WithSearchResults("ASML", yahoo.SearchQuote{Symbol: "ASML.AS", LongName: "ASML Holding N.V.", Exchange: "AMS", QuoteType: "EQUITY"})

	results, err := env.Market.Search(context.Background(), "ASML")

	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "ASML Holding N.V.", results[0].Name)
}

func TestMarketService_ExchangeRates(t *testing.T) {
	ctx := context.Background()

	t.Run("stored rates override the fallback table", func(t *testing.T) {
		// Setup
		env := testenv.New(t)
		testutil.CreateExchangeRates(t, env.DB, map[string]float64{"USD": 1.1})

		// Execute
		table, err := env.Market.ExchangeRates(ctx)

		// Assert
		require.NoError(t, err)
		assert.Equal(t, "EUR", table.Base)
		assert.Equal(t, "1.1", table.Rates["USD"].String())
		assert.Equal(t, "38.5", table.Rates["TRY"].String(), "fallback fills unstored currencies")
		assert.Contains(t, table.UpdatedAt, "USD")
		assert.NotContains(t, table.UpdatedAt, "TRY")
	})
}

func TestSystemService(t *testing.T) {
	ctx := context.Background()
	env := testenv.New(t)

	t.Run("healthy database", func(t *testing.T) {
		assert.NoError(t, env.System.CheckHealth(ctx))
	})

	t.Run("version reports schema and providers", func(t *testing.T) {
		info, err := env.System.CheckVersion(ctx)

		require.NoError(t, err)
		assert.NotEqual(t, "0", info.DbVersion)
		assert.True(t, info.Features["provider_yahoo"])
		assert.True(t, info.Features["price_update"])
	})
}
