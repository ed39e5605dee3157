package yahoo

import "time"

// Response represents the raw JSON response structure from the Yahoo Finance chart API.
// Only the fields needed to price an instrument are mapped.
//
// The structure includes:
//   - Chart.Result[].Meta: Symbol metadata and the latest regular market price
//   - Chart.Result[].Timestamp: Unix timestamps for each data point
//   - Chart.Result[].Indicators: Close prices, used when the meta price is missing
//   - Chart.Error: Optional error object from Yahoo API
type Response struct {
	Chart Chart `json:"chart"`
}

// Chart is the top level chart payload.
type Chart struct {
	Result []Result `json:"result"`
	Error  *Error   `json:"error"`
}

// Error is the error object Yahoo returns inside an otherwise valid payload.
type Error struct {
	Code        string `json:"code"`
	Description string `json:"description"`
}

// Result holds the chart for one symbol.
type Result struct {
	Meta       Meta                `json:"meta"`
	Timestamp  []int64             `json:"timestamp"`
	Indicators IndicatorsContainer `json:"indicators"`
}

// Meta carries symbol metadata and the live price.
type Meta struct {
	Currency           string   `json:"currency"`
	Symbol             string   `json:"symbol"`
	ExchangeName       string   `json:"exchangeName"`
	FullExchangeName   string   `json:"fullExchangeName"`
	LongName           string   `json:"longName"`
	ShortName          string   `json:"shortName"`
	RegularMarketPrice *float64 `json:"regularMarketPrice"`
	RegularMarketTime  int64    `json:"regularMarketTime"`
	ChartPreviousClose *float64 `json:"chartPreviousClose"`
}

// IndicatorsContainer wraps the quote series.
type IndicatorsContainer struct {
	Quote []QuoteSeries `json:"quote"`
}

// QuoteSeries holds daily values; Yahoo sends null for days without trades.
type QuoteSeries struct {
	Close []*float64 `json:"close"`
}

// Quote is the parsed latest price of a symbol.
type Quote struct {
	Symbol   string
	Price    float64
	Currency string
	Time     time.Time
}

// SearchResponse is the raw payload of the v1 search endpoint.
type SearchResponse struct {
	Quotes []SearchQuote `json:"quotes"`
}

// SearchQuote is a single search hit.
type SearchQuote struct {
	Symbol    string `json:"symbol"`
	ShortName string `json:"shortname"`
	LongName  string `json:"longname"`
	Exchange  string `json:"exchange"`
	QuoteType string `json:"quoteType"`
}
