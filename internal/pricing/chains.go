package pricing

import (
	"github.com/ndewijer/Wealth-Tracker-Backend/internal/model"
)

// Chains holds the ordered providers consulted per category.
type Chains map[model.Category][]Provider

// Providers bundles the concrete provider instances; nil entries are left
// out of every chain.
type Providers struct {
	Yahoo        Provider
	AlphaVantage Provider
	Finnhub      Provider
	CoinGecko    Provider
	Tefas        Provider
}

// DefaultChains builds the production provider order:
//
//	EQUITY     yahoo, alphavantage, finnhub
//	CRYPTO     yahoo, coingecko
//	FUND       tefas, yahoo
//	COMMODITY  yahoo
//	FX         yahoo
//
// CASH has no chain; it is always worth one unit of its own currency.
func DefaultChains(p Providers) Chains {
	return Chains{
		model.CategoryEquity:    compact(p.Yahoo, p.AlphaVantage, p.Finnhub),
		model.CategoryCrypto:    compact(p.Yahoo, p.CoinGecko),
		model.CategoryFund:      compact(p.Tefas, p.Yahoo),
		model.CategoryCommodity: compact(p.Yahoo),
		model.CategoryFX:        compact(p.Yahoo),
	}
}

// For returns the providers for c that declare support for it.
func (c Chains) For(category model.Category) []Provider {
	var out []Provider
	for _, p := range c[category] {
		if p.Supports(category) {
			out = append(out, p)
		}
	}
	return out
}

func compact(providers ...Provider) []Provider {
	out := make([]Provider, 0, len(providers))
	for _, p := range providers {
		if p != nil {
			out = append(out, p)
		}
	}
	return out
}
