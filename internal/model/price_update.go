package model

// Outcome labels for a single symbol in a price update run.
const (
	OutcomeUpdated = "updated"
	OutcomeStale   = "stale"
	OutcomeFailed  = "failed"
	OutcomeSkipped = "skipped"
)

// SymbolOutcome is the result of refreshing one symbol during a price update run.
type SymbolOutcome struct {
	Symbol   string   `json:"symbol"`
	Category Category `json:"category"`
	Status   string   `json:"status"`
	Provider string   `json:"provider,omitempty"`
	Price    string   `json:"price,omitempty"`
	Currency string   `json:"currency,omitempty"`
	Error    string   `json:"error,omitempty"`
}

// SnapshotOutcome reports the value recorded for one portfolio.
type SnapshotOutcome struct {
	PortfolioID string   `json:"portfolioId"`
	TotalValue  string   `json:"totalValue"`
	Currency    string   `json:"currency"`
	Stale       []string `json:"stale,omitempty"`
	Unresolved  []string `json:"unresolved,omitempty"`
	Error       string   `json:"error,omitempty"`
}

// PriceUpdateSummary is returned by a full price update run.
type PriceUpdateSummary struct {
	Success      bool               `json:"success"`
	Skipped      bool               `json:"skipped,omitempty"`
	Reason       string             `json:"reason,omitempty"`
	UpdatedCount int                `json:"updatedCount"`
	StaleCount   int                `json:"staleCount"`
	FailedCount  int                `json:"failedCount"`
	SkippedCount int                `json:"skippedCount"`
	TotalSymbols int                `json:"totalSymbols"`
	Outcomes     []SymbolOutcome    `json:"outcomes"`
	Snapshots    []SnapshotOutcome  `json:"snapshots"`
	Benchmarks   []BenchmarkOutcome `json:"benchmarks"`
	Duration     string             `json:"duration"`
}
