package pricing

import (
	"slices"
	"strings"

	"github.com/ndewijer/Wealth-Tracker-Backend/internal/model"
)

// bistStocks are Borsa Istanbul tickers users commonly enter without the
// exchange set.
var bistStocks = []string{
	"TAVHL", "THYAO", "GARAN", "AKBNK", "EREGL", "KCHOL", "SAHOL", "SISE", "BIMAS", "ASELS",
	"RYGYO", "FROTO", "TUPRS", "PETKM", "YKBNK", "ISCTR", "VAKBN", "HALKB", "EKGYO", "TTKOM",
	"TCELL", "ENKAI", "VESTL", "ARCLK", "TOASO", "MGROS", "PGSUS", "SOKM", "AEFES", "DOHOL",
}

// symbolAliases maps a user facing symbol to the listing Yahoo prices best.
var symbolAliases = map[string]string{
	"ASML":    "ASML.AS",
	"RABO":    "RABO.AS",
	"XAU":     "GC=F",
	"XAG":     "SI=F",
	"SOIT.PA": "SOI.PA",
}

// SearchSymbol converts a stored symbol into the ticker Yahoo understands.
//
// Rules, first match wins:
//   - an explicit exchange adds its suffix (BIST .IS, AMSTERDAM .AS, PARIS .PA)
//   - known BIST equities get .IS
//   - fixed aliases (ASML, XAU, ...)
//   - crypto without a quote currency is priced against USD
//   - FX pairs get the =X suffix
func SearchSymbol(symbol string, category model.Category, exchange string) string {
	s := strings.ToUpper(strings.TrimSpace(symbol))
	e := strings.ToUpper(strings.TrimSpace(exchange))

	switch {
	case e == "BIST" && !strings.HasSuffix(s, ".IS"):
		return s + ".IS"
	case e == "AMSTERDAM" && !strings.HasSuffix(s, ".AS"):
		return s + ".AS"
	case e == "PARIS" && !strings.HasSuffix(s, ".PA"):
		return s + ".PA"
	}

	if category == model.CategoryEquity && slices.Contains(bistStocks, s) {
		return s + ".IS"
	}

	if alias, ok := symbolAliases[s]; ok {
		return alias
	}

	if category == model.CategoryCrypto && !strings.Contains(s, "-") {
		return s + "-USD"
	}

	if category == model.CategoryFX && !strings.HasSuffix(s, "=X") {
		return strings.ReplaceAll(s, "/", "") + "=X"
	}

	return s
}

// FinnhubSymbol spells an equity the way Finnhub lists it. Finnhub uses
// the same exchange suffixes as Yahoo.
func FinnhubSymbol(inst model.Instrument) string {
	return SearchSymbol(inst.Symbol, model.CategoryEquity, inst.Exchange)
}

// alphaVantageSuffixes maps Yahoo exchange suffixes to Alpha Vantage's.
var alphaVantageSuffixes = map[string]string{
	".AS": ".AMS",
	".PA": ".PAR",
	".L":  ".LON",
	".DE": ".DEX",
	".TO": ".TRT",
}

// AlphaVantageSymbol spells an equity the way Alpha Vantage lists it:
// ASML on Amsterdam is ASML.AMS, not ASML.AS.
func AlphaVantageSymbol(inst model.Instrument) string {
	s := SearchSymbol(inst.Symbol, model.CategoryEquity, inst.Exchange)
	if i := strings.LastIndex(s, "."); i > 0 {
		if suffix, ok := alphaVantageSuffixes[s[i:]]; ok {
			return s[:i] + suffix
		}
	}
	return s
}

var pairSuffixes = []string{"EUR", "USD", "TRY", "GBP", "CAD", "AUD", "JPY", "CHF"}

var exchangeSuffixCurrency = []struct {
	suffixes []string
	currency string
}{
	{[]string{".AS", ".DE", ".PA", ".MI", ".MC", ".BR", ".VI", ".MA", ".IR", ".AMS", ".DEX", ".PAR"}, "EUR"},
	{[]string{".L", ".LON"}, "GBP"},
	{[]string{".TO", ".V", ".CN", ".NE", ".TRT"}, "CAD"},
	{[]string{".AX"}, "AUD"},
	{[]string{".HK"}, "HKD"},
	{[]string{".T"}, "JPY"},
	{[]string{".SI"}, "SGD"},
	{[]string{".SW"}, "CHF"},
	{[]string{".JO"}, "ZAR"},
	{[]string{".IS"}, "TRY"},
}

// DetectCurrency guesses the trading currency from a ticker's suffix.
// Returns "" when the symbol gives no hint.
func DetectCurrency(symbol string) string {
	s := strings.ToUpper(strings.TrimSpace(symbol))
	if s == "" {
		return ""
	}

	for _, c := range pairSuffixes {
		if strings.HasSuffix(s, "-"+c) {
			return c
		}
	}

	for _, rule := range exchangeSuffixCurrency {
		for _, suffix := range rule.suffixes {
			if strings.HasSuffix(s, suffix) {
				return rule.currency
			}
		}
	}

	// Gold and silver quoted in lira, e.g. GAUTRY, XAUTRY.
	if strings.HasSuffix(s, "TRY") {
		return "TRY"
	}

	if strings.HasSuffix(s, "=X") && len(s) == 8 {
		return s[3:6]
	}

	if !strings.Contains(s, ".") {
		return "USD"
	}

	return ""
}

// isTefasFund reports whether an instrument is a Turkish mutual fund code.
func isTefasFund(inst model.Instrument) bool {
	if strings.EqualFold(inst.Exchange, "TEFAS") {
		return true
	}
	s := strings.TrimSpace(inst.Symbol)
	return inst.Category == model.CategoryFund && len(s) == 3 && !strings.Contains(s, ".")
}
