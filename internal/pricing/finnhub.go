package pricing

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/ndewijer/Wealth-Tracker-Backend/internal/apperrors"
	"github.com/ndewijer/Wealth-Tracker-Backend/internal/model"
)

// FinnhubURL is the production API root.
const FinnhubURL = "https://finnhub.io/api/v1"

// FinnhubProvider prices equities through the /quote endpoint.
type FinnhubProvider struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

// NewFinnhubProvider creates a provider; an empty apiKey makes every Quote
// fail with apperrors.ErrProviderNotConfigured.
func NewFinnhubProvider(baseURL, apiKey string) *FinnhubProvider {
	if baseURL == "" {
		baseURL = FinnhubURL
	}
	return &FinnhubProvider{
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: 15 * time.Second},
	}
}

func (p *FinnhubProvider) Name() string { return "finnhub" }

func (p *FinnhubProvider) Supports(category model.Category) bool {
	return category == model.CategoryEquity
}

// Quote reads {"c": current, "t": unix time}. Finnhub answers unknown
// symbols with c = 0, which the resolver rejects as an invalid price.
func (p *FinnhubProvider) Quote(ctx context.Context, inst model.Instrument) (Quote, error) {
	if p.apiKey == "" {
		return Quote{}, fmt.Errorf("finnhub: %w", apperrors.ErrProviderNotConfigured)
	}

	symbol := FinnhubSymbol(inst)
	params := url.Values{}
	params.Set("symbol", symbol)
	params.Set("token", p.apiKey)

	obj, err := getJSON(ctx, p.httpClient, p.baseURL+"/quote?"+params.Encode())
	if err != nil {
		return Quote{}, fmt.Errorf("finnhub %s: %w", symbol, err)
	}

	price, err := jsonFloat(obj, "$.c")
	if err != nil {
		return Quote{}, fmt.Errorf("finnhub %s: %w", symbol, err)
	}

	q := Quote{Symbol: symbol, Price: price}
	if ts, err := jsonFloat(obj, "$.t"); err == nil && ts > 0 {
		q.ObservedAt = time.Unix(int64(ts), 0).UTC()
	}
	return q, nil
}
