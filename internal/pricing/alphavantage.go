package pricing

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/PaesslerAG/jsonpath"

	"github.com/ndewijer/Wealth-Tracker-Backend/internal/apperrors"
	"github.com/ndewijer/Wealth-Tracker-Backend/internal/model"
)

// AlphaVantageURL is the production endpoint.
const AlphaVantageURL = "https://www.alphavantage.co/query"

// AlphaVantageProvider prices equities through the GLOBAL_QUOTE function.
type AlphaVantageProvider struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

// NewAlphaVantageProvider creates a provider; an empty apiKey makes every
// Quote fail with apperrors.ErrProviderNotConfigured.
func NewAlphaVantageProvider(baseURL, apiKey string) *AlphaVantageProvider {
	if baseURL == "" {
		baseURL = AlphaVantageURL
	}
	return &AlphaVantageProvider{
		baseURL:    baseURL,
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: 15 * time.Second},
	}
}

func (p *AlphaVantageProvider) Name() string { return "alphavantage" }

func (p *AlphaVantageProvider) Supports(category model.Category) bool {
	return category == model.CategoryEquity
}

/*
	{
	    "Global Quote": {
	        "01. symbol": "AAPL",
	        "05. price": "180.5000",
	        "07. latest trading day": "2026-03-02",
	        "08. previous close": "178.2000"
	    }
	}
*/
func (p *AlphaVantageProvider) Quote(ctx context.Context, inst model.Instrument) (Quote, error) {
	if p.apiKey == "" {
		return Quote{}, fmt.Errorf("alphavantage: %w", apperrors.ErrProviderNotConfigured)
	}

	symbol := AlphaVantageSymbol(inst)
	params := url.Values{}
	params.Set("function", "GLOBAL_QUOTE")
	params.Set("symbol", symbol)
	params.Set("apikey", p.apiKey)

	obj, err := getJSON(ctx, p.httpClient, p.baseURL+"?"+params.Encode())
	if err != nil {
		return Quote{}, fmt.Errorf("alphavantage %s: %w", symbol, err)
	}

	raw, err := jsonString(obj, `$["Global Quote"]["05. price"]`)
	if err != nil {
		// Rate limited answers carry a "Note" or "Information" key instead.
		return Quote{}, fmt.Errorf("alphavantage %s: %w", symbol, err)
	}
	price, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return Quote{}, fmt.Errorf("alphavantage %s: parsing price %q: %w", symbol, raw, err)
	}

	q := Quote{Symbol: symbol, Price: price}
	if day, err := jsonString(obj, `$["Global Quote"]["07. latest trading day"]`); err == nil {
		if t, err := time.Parse("2006-01-02", day); err == nil {
			q.ObservedAt = t.UTC()
		}
	}
	return q, nil
}

// jsonFirst evaluates path and unwraps single element results.
func jsonFirst(obj any, path string) (any, error) {
	val, err := jsonpath.Get(path, obj)
	if err != nil {
		return nil, fmt.Errorf("evaluating %s: %w", path, err)
	}
	// jsonpath may answer with a list of one match or the match itself.
	if list, ok := val.([]any); ok {
		if len(list) == 0 {
			return nil, fmt.Errorf("evaluating %s: no match", path)
		}
		val = list[0]
	}
	return val, nil
}

func jsonString(obj any, path string) (string, error) {
	val, err := jsonFirst(obj, path)
	if err != nil {
		return "", err
	}
	s, ok := val.(string)
	if !ok {
		return "", fmt.Errorf("evaluating %s: not a string: %v", path, val)
	}
	return s, nil
}

func jsonFloat(obj any, path string) (float64, error) {
	val, err := jsonFirst(obj, path)
	if err != nil {
		return 0, err
	}
	f, ok := val.(float64)
	if !ok {
		return 0, fmt.Errorf("evaluating %s: not a number: %v", path, val)
	}
	return f, nil
}
