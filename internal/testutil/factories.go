package testutil

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/ndewijer/Wealth-Tracker-Backend/internal/model"
	"github.com/ndewijer/Wealth-Tracker-Backend/internal/repository"
)

// PortfolioBuilder provides a fluent interface for creating test portfolios.
//
// Example usage:
//
//	// Simple creation with defaults
//	portfolio := testutil.NewPortfolio().Build(t, db)
//
//	// Customized portfolio
//	portfolio := testutil.NewPortfolio().
//	    WithName("Custom Portfolio").
//	    WithReportingCurrency("USD").
//	    Archived().
//	    Build(t, db)
type PortfolioBuilder struct {
	ID                string
	Name              string
	Description       string
	ReportingCurrency string
	IsArchived        bool
}

// NewPortfolio creates a PortfolioBuilder with sensible defaults.
func NewPortfolio() *PortfolioBuilder {
	return &PortfolioBuilder{
		ID:                MakeID(),
		Name:              MakePortfolioName("Test Portfolio"),
		Description:       "Test description",
		ReportingCurrency: "EUR",
		IsArchived:        false,
	}
}

// WithID sets a custom ID.
func (b *PortfolioBuilder) WithID(id string) *PortfolioBuilder {
	b.ID = id
	return b
}

// WithName sets a custom name.
func (b *PortfolioBuilder) WithName(name string) *PortfolioBuilder {
	b.Name = name
	return b
}

// WithDescription sets a custom description.
func (b *PortfolioBuilder) WithDescription(desc string) *PortfolioBuilder {
	b.Description = desc
	return b
}

// WithReportingCurrency sets the currency totals are reported in.
func (b *PortfolioBuilder) WithReportingCurrency(currency string) *PortfolioBuilder {
	b.ReportingCurrency = currency
	return b
}

// Archived marks the portfolio as archived.
func (b *PortfolioBuilder) Archived() *PortfolioBuilder {
	b.IsArchived = true
	return b
}

// Build creates the portfolio in the database and returns it.
func (b *PortfolioBuilder) Build(t *testing.T, db *sql.DB) model.Portfolio {
	t.Helper()

	p := model.Portfolio{
		ID:                b.ID,
		Name:              b.Name,
		Description:       b.Description,
		ReportingCurrency: b.ReportingCurrency,
		IsArchived:        b.IsArchived,
	}

	if err := repository.NewPortfolioRepository(db).InsertPortfolio(context.Background(), &p); err != nil {
		t.Fatalf("Failed to create portfolio: %v", err)
	}

	return p
}

// CreatePortfolio is a shorthand for creating a portfolio with a specific name.
func CreatePortfolio(t *testing.T, db *sql.DB, name string) model.Portfolio {
	t.Helper()
	return NewPortfolio().WithName(name).Build(t, db)
}

// HoldingBuilder provides a fluent interface for creating test holdings.
//
// Example usage:
//
//	holding := testutil.NewHolding(portfolio.ID).
//	    WithSymbol("AAPL").
//	    WithQuantity(10).
//	    WithCostBasis(150).
//	    WithCurrency("USD").
//	    Build(t, db)
type HoldingBuilder struct {
	ID          string
	PortfolioID string
	Symbol      string
	Category    model.Category
	Exchange    string
	Quantity    decimal.Decimal
	CostBasis   decimal.Decimal
	Currency    string
}

// NewHolding creates a HoldingBuilder with sensible defaults.
func NewHolding(portfolioID string) *HoldingBuilder {
	return &HoldingBuilder{
		ID:          MakeID(),
		PortfolioID: portfolioID,
		Symbol:      MakeSymbol("TEST"),
		Category:    model.CategoryEquity,
		Quantity:    decimal.NewFromInt(10),
		CostBasis:   decimal.NewFromInt(100),
		Currency:    "USD",
	}
}

// WithSymbol sets the symbol.
func (b *HoldingBuilder) WithSymbol(symbol string) *HoldingBuilder {
	b.Symbol = symbol
	return b
}

// WithCategory sets the category.
func (b *HoldingBuilder) WithCategory(category model.Category) *HoldingBuilder {
	b.Category = category
	return b
}

// WithExchange sets the exchange.
func (b *HoldingBuilder) WithExchange(exchange string) *HoldingBuilder {
	b.Exchange = exchange
	return b
}

// WithQuantity sets the quantity.
func (b *HoldingBuilder) WithQuantity(quantity float64) *HoldingBuilder {
	b.Quantity = decimal.NewFromFloat(quantity)
	return b
}

// WithCostBasis sets the per unit cost basis.
func (b *HoldingBuilder) WithCostBasis(cost float64) *HoldingBuilder {
	b.CostBasis = decimal.NewFromFloat(cost)
	return b
}

// WithCurrency sets the holding currency.
func (b *HoldingBuilder) WithCurrency(currency string) *HoldingBuilder {
	b.Currency = currency
	return b
}

// Build creates the holding in the database and returns it.
func (b *HoldingBuilder) Build(t *testing.T, db *sql.DB) model.Holding {
	t.Helper()

	h := model.Holding{
		ID:          b.ID,
		PortfolioID: b.PortfolioID,
		Symbol:      b.Symbol,
		Category:    b.Category,
		Exchange:    b.Exchange,
		Quantity:    b.Quantity,
		CostBasis:   b.CostBasis,
		Currency:    b.Currency,
	}

	if err := repository.NewHoldingRepository(db).InsertHolding(context.Background(), &h); err != nil {
		t.Fatalf("Failed to create holding: %v", err)
	}

	return h
}

// PriceRecordBuilder provides a fluent interface for seeding the price cache.
type PriceRecordBuilder struct {
	rec model.PriceRecord
}

// NewPriceRecord creates a PriceRecordBuilder refreshed now.
func NewPriceRecord(symbol string, price float64) *PriceRecordBuilder {
	now := time.Now().UTC()
	return &PriceRecordBuilder{
		rec: model.PriceRecord{
			Symbol:      symbol,
			Price:       decimal.NewFromFloat(price),
			Currency:    "USD",
			Provider:    "test",
			ObservedAt:  now,
			RefreshedAt: now,
		},
	}
}

// WithCurrency sets the price currency.
func (b *PriceRecordBuilder) WithCurrency(currency string) *PriceRecordBuilder {
	b.rec.Currency = currency
	return b
}

// WithProvider sets the provider name.
func (b *PriceRecordBuilder) WithProvider(provider string) *PriceRecordBuilder {
	b.rec.Provider = provider
	return b
}

// RefreshedAgo moves RefreshedAt and ObservedAt d into the past.
func (b *PriceRecordBuilder) RefreshedAgo(d time.Duration) *PriceRecordBuilder {
	b.rec.RefreshedAt = time.Now().UTC().Add(-d)
	b.rec.ObservedAt = b.rec.RefreshedAt
	return b
}

// Record returns the record without storing it.
func (b *PriceRecordBuilder) Record() model.PriceRecord {
	return b.rec
}

// Build stores the record in the price_cache table and returns it.
func (b *PriceRecordBuilder) Build(t *testing.T, db *sql.DB) model.PriceRecord {
	t.Helper()

	if _, err := repository.NewPriceCacheRepository(db).UpsertPrice(context.Background(), b.rec); err != nil {
		t.Fatalf("Failed to create price record: %v", err)
	}
	return b.rec
}

// CreateExchangeRates stores the given rates against EUR with the current time.
func CreateExchangeRates(t *testing.T, db *sql.DB, rates map[string]float64) {
	t.Helper()

	now := time.Now().UTC()
	rows := make([]model.ExchangeRate, 0, len(rates))
	for currency, rate := range rates {
		rows = append(rows, model.ExchangeRate{
			Currency:  currency,
			Rate:      decimal.NewFromFloat(rate),
			UpdatedAt: now,
		})
	}

	if err := repository.NewExchangeRateRepository(db).UpsertRates(context.Background(), rows); err != nil {
		t.Fatalf("Failed to create exchange rates: %v", err)
	}
}
