package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Benchmark is a market index or reference asset whose daily price is
// recorded next to the portfolio snapshots for chart comparison.
type Benchmark struct {
	Name     string   `json:"name"`
	Symbol   string   `json:"symbol"`
	Category Category `json:"category"`
}

// Instrument returns the priceable instrument of b.
func (b Benchmark) Instrument() Instrument {
	return Instrument{Symbol: b.Symbol, Category: b.Category}
}

// BenchmarkPrice is the first recorded price of a benchmark on a UTC day.
type BenchmarkPrice struct {
	ID        string          `json:"id"`
	Symbol    string          `json:"symbol"`
	Date      time.Time       `json:"date"`
	Price     decimal.Decimal `json:"price"`
	Currency  string          `json:"currency"`
	Provider  string          `json:"provider"`
	CreatedAt time.Time       `json:"createdAt"`
}

// Benchmark outcome labels.
const (
	BenchmarkRecorded = "recorded"
	BenchmarkExists   = "exists"
	BenchmarkFailed   = "failed"
)

// BenchmarkOutcome reports what happened to one benchmark during a snapshot run.
type BenchmarkOutcome struct {
	Symbol   string `json:"symbol"`
	Name     string `json:"name"`
	Status   string `json:"status"`
	Price    string `json:"price,omitempty"`
	Currency string `json:"currency,omitempty"`
	Error    string `json:"error,omitempty"`
}

// SnapshotRun is the result of recording one day's portfolio snapshots and
// benchmark prices.
type SnapshotRun struct {
	Portfolios []SnapshotOutcome  `json:"portfolios"`
	Benchmarks []BenchmarkOutcome `json:"benchmarks"`
}
