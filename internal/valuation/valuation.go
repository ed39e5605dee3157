// Package valuation combines holdings, resolved prices and exchange rates
// into a portfolio value in one reporting currency.
//
// All arithmetic is done in decimal.Decimal. Values are only rounded for
// presentation, see Result.Rounded.
package valuation

import (
	"fmt"
	"slices"
	"strings"

	"github.com/samber/lo"
	"github.com/shopspring/decimal"

	"github.com/ndewijer/Wealth-Tracker-Backend/internal/apperrors"
	"github.com/ndewijer/Wealth-Tracker-Backend/internal/currency"
	"github.com/ndewijer/Wealth-Tracker-Backend/internal/model"
	"github.com/ndewijer/Wealth-Tracker-Backend/internal/pricing"
)

// Position is the valuation of a single holding. Monetary fields other than
// Price are in the reporting currency.
type Position struct {
	HoldingID     string          `json:"holdingId"`
	Symbol        string          `json:"symbol"`
	Category      model.Category  `json:"category"`
	Quantity      decimal.Decimal `json:"quantity"`
	Price         decimal.Decimal `json:"price"`
	PriceCurrency string          `json:"priceCurrency"`
	Provider      string          `json:"provider,omitempty"`
	MarketValue   decimal.Decimal `json:"marketValue"`
	CostValue     decimal.Decimal `json:"costValue"`
	ProfitLoss    decimal.Decimal `json:"profitLoss"`
	Stale         bool            `json:"stale"`
	Unresolved    bool            `json:"unresolved"`
	Reason        string          `json:"reason,omitempty"`
}

// Result is the valuation of a set of holdings.
// Unresolved positions are listed but contribute nothing to the totals.
type Result struct {
	Currency        string                             `json:"currency"`
	TotalValue      decimal.Decimal                    `json:"totalValue"`
	TotalCost       decimal.Decimal                    `json:"totalCost"`
	TotalProfitLoss decimal.Decimal                    `json:"totalProfitLoss"`
	ByCategory      map[model.Category]decimal.Decimal `json:"byCategory"`
	Positions       []Position                         `json:"positions"`
	Stale           []string                           `json:"stale"`
	Unresolved      []string                           `json:"unresolved"`
}

// Valuate values holdings in reportingCurrency.
//
// For every holding with a positive quantity:
//   - CASH is worth its quantity in the holding currency.
//   - Other categories use prices[symbol]. A stale price is used and
//     flagged. A failed or missing price makes the position unresolved.
//   - Market value is quantity × price, converted from the price currency.
//     Cost is quantity × cost basis, converted from the holding currency.
//     A missing exchange rate for either makes the position unresolved.
//
// Holdings with zero quantity are skipped entirely.
//
// Parameters:
//   - holdings: Positions to value, typically one portfolio
//   - prices: Resolutions keyed by upper case symbol
//   - rates: Exchange rates relative to EUR
//   - reportingCurrency: ISO 4217 code of the result
//
// Returns:
//   - Result: Totals, per position details and flagged symbols
//   - error: ErrUnknownCurrency when reportingCurrency is not a valid code
func Valuate(holdings []model.Holding, prices map[string]pricing.Resolution, rates model.Rates, reportingCurrency string) (Result, error) {
	reportingCurrency = strings.ToUpper(strings.TrimSpace(reportingCurrency))
	if !currency.IsValidCode(reportingCurrency) {
		return Result{}, fmt.Errorf("reporting currency %q: %w", reportingCurrency, apperrors.ErrUnknownCurrency)
	}

	result := Result{
		Currency:   reportingCurrency,
		ByCategory: make(map[model.Category]decimal.Decimal),
		Positions:  []Position{},
		Stale:      []string{},
		Unresolved: []string{},
	}

	for _, h := range holdings {
		if !h.Quantity.IsPositive() {
			continue
		}
		result.Positions = append(result.Positions, valuePosition(h, prices, rates, reportingCurrency))
	}

	counted := lo.Filter(result.Positions, func(p Position, _ int) bool { return !p.Unresolved })
	result.TotalValue = sum(counted, func(p Position) decimal.Decimal { return p.MarketValue })
	result.TotalCost = sum(counted, func(p Position) decimal.Decimal { return p.CostValue })
	result.TotalProfitLoss = result.TotalValue.Sub(result.TotalCost)

	for category, positions := range lo.GroupBy(counted, func(p Position) model.Category { return p.Category }) {
		result.ByCategory[category] = sum(positions, func(p Position) decimal.Decimal { return p.MarketValue })
	}

	result.Stale = flagged(result.Positions, func(p Position) bool { return p.Stale })
	result.Unresolved = flagged(result.Positions, func(p Position) bool { return p.Unresolved })

	return result, nil
}

func valuePosition(h model.Holding, prices map[string]pricing.Resolution, rates model.Rates, reportingCurrency string) Position {
	symbol := strings.ToUpper(strings.TrimSpace(h.Symbol))
	pos := Position{
		HoldingID: h.ID,
		Symbol:    symbol,
		Category:  h.Category,
		Quantity:  h.Quantity,
	}

	if h.Category == model.CategoryCash {
		pos.Price = decimal.NewFromInt(1)
		pos.PriceCurrency = cashCurrency(h)
		pos.Provider = "cash"
	} else {
		res, ok := prices[symbol]
		if !ok || !res.OK() {
			pos.Unresolved = true
			pos.Reason = "price unavailable"
			if ok && res.Err != nil {
				pos.Reason = res.Err.Error()
			}
			return pos
		}
		pos.Price = res.Record.Price
		pos.PriceCurrency = res.Record.Currency
		if pos.PriceCurrency == "" {
			pos.PriceCurrency = strings.ToUpper(h.Currency)
		}
		pos.Provider = res.Record.Provider
		pos.Stale = res.Status == pricing.StatusStale
	}

	value, err := currency.Convert(h.Quantity.Mul(pos.Price), pos.PriceCurrency, reportingCurrency, rates)
	if err != nil {
		pos.Unresolved = true
		pos.Reason = err.Error()
		return pos
	}

	costCurrency := strings.ToUpper(h.Currency)
	if costCurrency == "" {
		costCurrency = pos.PriceCurrency
	}
	cost, err := currency.Convert(h.Quantity.Mul(h.CostBasis), costCurrency, reportingCurrency, rates)
	if err != nil {
		pos.Unresolved = true
		pos.Reason = err.Error()
		return pos
	}

	pos.MarketValue = value
	pos.CostValue = cost
	pos.ProfitLoss = value.Sub(cost)
	return pos
}

func cashCurrency(h model.Holding) string {
	if h.Currency != "" {
		return strings.ToUpper(h.Currency)
	}
	return strings.ToUpper(h.Symbol)
}

func sum(positions []Position, value func(Position) decimal.Decimal) decimal.Decimal {
	return lo.Reduce(positions, func(acc decimal.Decimal, p Position, _ int) decimal.Decimal {
		return acc.Add(value(p))
	}, decimal.Zero)
}

func flagged(positions []Position, pred func(Position) bool) []string {
	symbols := lo.Uniq(lo.FilterMap(positions, func(p Position, _ int) (string, bool) {
		return p.Symbol, pred(p)
	}))
	slices.Sort(symbols)
	return symbols
}

// Rounded returns a copy with every monetary amount rounded to two decimals.
// Prices and quantities keep their precision.
func (r Result) Rounded() Result {
	out := r
	out.TotalValue = r.TotalValue.Round(2)
	out.TotalCost = r.TotalCost.Round(2)
	out.TotalProfitLoss = r.TotalProfitLoss.Round(2)

	out.ByCategory = make(map[model.Category]decimal.Decimal, len(r.ByCategory))
	for c, v := range r.ByCategory {
		out.ByCategory[c] = v.Round(2)
	}

	out.Positions = lo.Map(r.Positions, func(p Position, _ int) Position {
		p.MarketValue = p.MarketValue.Round(2)
		p.CostValue = p.CostValue.Round(2)
		p.ProfitLoss = p.ProfitLoss.Round(2)
		return p
	})
	return out
}
