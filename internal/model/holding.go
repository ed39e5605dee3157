package model

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Category classifies what kind of asset a holding is. It decides which
// price providers are consulted and how long a cached price stays fresh.
type Category string

const (
	CategoryEquity    Category = "EQUITY"
	CategoryCrypto    Category = "CRYPTO"
	CategoryFund      Category = "FUND"
	CategoryCash      Category = "CASH"
	CategoryCommodity Category = "COMMODITY"
	CategoryFX        Category = "FX"
)

// Categories lists every known category in display order.
var Categories = []Category{
	CategoryEquity,
	CategoryCrypto,
	CategoryFund,
	CategoryCash,
	CategoryCommodity,
	CategoryFX,
}

// Valid reports whether c is one of the known categories.
func (c Category) Valid() bool {
	for _, known := range Categories {
		if c == known {
			return true
		}
	}
	return false
}

// ParseCategory converts user input into a Category, ignoring case and
// surrounding whitespace.
func ParseCategory(s string) (Category, error) {
	c := Category(strings.ToUpper(strings.TrimSpace(s)))
	if !c.Valid() {
		return "", fmt.Errorf("unknown category %q", s)
	}
	return c, nil
}

// Holding is a position owned by a portfolio.
// A full sale sets Quantity to zero; the row itself is kept.
type Holding struct {
	ID          string          `json:"id"`
	PortfolioID string          `json:"portfolioId"`
	Symbol      string          `json:"symbol"`
	Category    Category        `json:"category"`
	Exchange    string          `json:"exchange,omitempty"`
	Quantity    decimal.Decimal `json:"quantity"`
	CostBasis   decimal.Decimal `json:"costBasis"`
	Currency    string          `json:"currency"`
	CreatedAt   time.Time       `json:"createdAt"`
	UpdatedAt   time.Time       `json:"updatedAt"`
}

// Instrument returns the priceable identity of the holding.
func (h Holding) Instrument() Instrument {
	return Instrument{
		Symbol:   h.Symbol,
		Category: h.Category,
		Exchange: h.Exchange,
		Currency: h.Currency,
	}
}

// Instrument identifies something that can be priced: a symbol plus the
// context a provider needs to look it up.
type Instrument struct {
	Symbol   string   `json:"symbol"`
	Category Category `json:"category"`
	Exchange string   `json:"exchange,omitempty"`
	Currency string   `json:"currency,omitempty"`
}
