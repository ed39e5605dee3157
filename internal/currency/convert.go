// Package currency provides exchange rates against EUR and converts amounts
// between currencies using them.
package currency

import (
	"fmt"
	"strings"

	"github.com/Rhymond/go-money"
	"github.com/shopspring/decimal"

	"github.com/ndewijer/Wealth-Tracker-Backend/internal/apperrors"
	"github.com/ndewijer/Wealth-Tracker-Backend/internal/model"
)

// Fallback is the last resort rate table (1 EUR = rate units), used for any
// currency missing from the database and the live sources.
var Fallback = map[string]float64{
	"EUR": 1,
	"USD": 1.05,
	"TRY": 38.5,
	"GBP": 0.84,
	"CHF": 0.94,
	"JPY": 162,
	"CAD": 1.48,
	"AUD": 1.65,
	"HKD": 8.5,
	"SGD": 1.45,
	"ZAR": 19.5,
	"CNY": 7.85,
	"NZD": 1.78,
	"SEK": 11.2,
	"NOK": 11.5,
	"DKK": 7.46,
	"PLN": 4.32,
}

// FallbackRates returns Fallback as a fresh Rates map.
func FallbackRates() model.Rates {
	rates := make(model.Rates, len(Fallback))
	for c, r := range Fallback {
		rates[c] = decimal.NewFromFloat(r)
	}
	return rates
}

// Convert converts amount from one currency to another:
//
//	amount × rates[to] / rates[from]
//
// Converting a currency to itself returns amount unchanged. A missing or
// non-positive rate on either side is an error; it is never treated as 1.
//
// Parameters:
//   - amount: Value expressed in from
//   - from, to: ISO 4217 codes
//   - rates: Rates relative to EUR, as returned by Service.Rates
//
// Returns:
//   - decimal.Decimal: The converted amount, unrounded
//   - error: ErrRateNotFound when a rate is missing
func Convert(amount decimal.Decimal, from, to string, rates model.Rates) (decimal.Decimal, error) {
	from = strings.ToUpper(from)
	to = strings.ToUpper(to)
	if from == to {
		return amount, nil
	}

	fromRate, ok := rates[from]
	if !ok || !fromRate.IsPositive() {
		return decimal.Zero, fmt.Errorf("%s: %w", from, apperrors.ErrRateNotFound)
	}
	toRate, ok := rates[to]
	if !ok || !toRate.IsPositive() {
		return decimal.Zero, fmt.Errorf("%s: %w", to, apperrors.ErrRateNotFound)
	}

	return amount.Mul(toRate).Div(fromRate), nil
}

// IsValidCode reports whether code is a known ISO 4217 currency.
func IsValidCode(code string) bool {
	if len(code) != 3 {
		return false
	}
	return money.GetCurrency(strings.ToUpper(code)) != nil
}
