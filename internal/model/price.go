package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// PriceRecord is the last known price of a symbol.
// RefreshedAt is when the record was written and is what staleness is measured
// against; ObservedAt is when the provider says the price was quoted.
type PriceRecord struct {
	Symbol      string          `json:"symbol"`
	Price       decimal.Decimal `json:"price"`
	Currency    string          `json:"currency"`
	Provider    string          `json:"provider"`
	ObservedAt  time.Time       `json:"observedAt"`
	RefreshedAt time.Time       `json:"refreshedAt"`
}

// SearchResult is a single hit from a symbol search.
type SearchResult struct {
	Symbol    string `json:"symbol"`
	Name      string `json:"name"`
	Exchange  string `json:"exchange"`
	QuoteType string `json:"quoteType"`
}
