package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// BaseCurrency is the currency every stored exchange rate is quoted against.
const BaseCurrency = "EUR"

// ExchangeRate stores how many units of Currency one unit of BaseCurrency buys.
type ExchangeRate struct {
	Currency  string          `json:"currency"`
	Rate      decimal.Decimal `json:"rate"`
	UpdatedAt time.Time       `json:"updatedAt"`
}

// Rates maps an ISO currency code to its rate against BaseCurrency.
type Rates map[string]decimal.Decimal

// Clone returns an independent copy of r.
func (r Rates) Clone() Rates {
	out := make(Rates, len(r))
	for k, v := range r {
		out[k] = v
	}
	return out
}

// RateTable is the layered set of rates in effect, with the time each
// stored rate was last fetched. Currencies served from the fallback table
// have no UpdatedAt entry.
type RateTable struct {
	Base      string               `json:"base"`
	Rates     Rates                `json:"rates"`
	UpdatedAt map[string]time.Time `json:"updatedAt"`
}
