package currency

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"github.com/ndewijer/Wealth-Tracker-Backend/internal/model"
	"github.com/ndewijer/Wealth-Tracker-Backend/internal/yahoo"
)

// Source fetches live rates against model.BaseCurrency.
// It may return fewer currencies than requested.
type Source interface {
	Name() string
	Fetch(ctx context.Context, currencies []string) (map[string]decimal.Decimal, error)
}

// YahooSource reads EUR{CUR}=X pairs from the Yahoo chart API.
type YahooSource struct {
	client yahoo.Client
}

// NewYahooSource creates a YahooSource.
func NewYahooSource(client yahoo.Client) *YahooSource {
	return &YahooSource{client: client}
}

func (s *YahooSource) Name() string { return "yahoo" }

// Fetch queries every pair concurrently. Pairs that fail are left out.
func (s *YahooSource) Fetch(ctx context.Context, currencies []string) (map[string]decimal.Decimal, error) {
	var (
		mu  sync.Mutex
		out = make(map[string]decimal.Decimal, len(currencies))
	)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(4)
	for _, cur := range currencies {
		cur := cur
		g.Go(func() error {
			resp, err := s.client.QueryChart(gctx, model.BaseCurrency+cur+"=X")
			if err != nil {
				return nil
			}
			q, err := yahoo.ParseQuote(resp)
			if err != nil || q.Price <= 0 {
				return nil
			}
			mu.Lock()
			out[cur] = decimal.NewFromFloat(q.Price)
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait()

	if len(out) == 0 {
		return nil, fmt.Errorf("yahoo returned no exchange rates")
	}
	return out, nil
}

// ExchangeRateAPISource reads the exchangerate-api.com latest table.
type ExchangeRateAPISource struct {
	baseURL    string
	httpClient *http.Client
}

// ExchangeRateAPIURL is the production endpoint; the base currency is appended.
const ExchangeRateAPIURL = "https://api.exchangerate-api.com/v4/latest"

// NewExchangeRateAPISource creates a source reading {baseURL}/EUR.
func NewExchangeRateAPISource(baseURL string) *ExchangeRateAPISource {
	if baseURL == "" {
		baseURL = ExchangeRateAPIURL
	}
	return &ExchangeRateAPISource{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
}

func (s *ExchangeRateAPISource) Name() string { return "exchangerate-api" }

type latestRates struct {
	Base  string             `json:"base"`
	Rates map[string]float64 `json:"rates"`
}

func (s *ExchangeRateAPISource) Fetch(ctx context.Context, currencies []string) (map[string]decimal.Decimal, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.baseURL+"/"+model.BaseCurrency, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("exchangerate-api request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("exchangerate-api returned status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading exchangerate-api response: %w", err)
	}

	var payload latestRates
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, fmt.Errorf("decoding exchangerate-api response: %w", err)
	}
	if payload.Base != "" && !strings.EqualFold(payload.Base, model.BaseCurrency) {
		return nil, fmt.Errorf("exchangerate-api returned base %s, want %s", payload.Base, model.BaseCurrency)
	}

	out := make(map[string]decimal.Decimal, len(currencies))
	for _, cur := range currencies {
		if r, ok := payload.Rates[cur]; ok && r > 0 {
			out[cur] = decimal.NewFromFloat(r)
		}
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("exchangerate-api returned none of the requested currencies")
	}
	return out, nil
}
