package pricing

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/ndewijer/Wealth-Tracker-Backend/internal/model"
)

// CoinGeckoURL is the production API root.
const CoinGeckoURL = "https://api.coingecko.com/api/v3"

// CoinIDs maps a ticker to its CoinGecko coin id.
var CoinIDs = map[string]string{
	"BTC":   "bitcoin",
	"ETH":   "ethereum",
	"SOL":   "solana",
	"XRP":   "ripple",
	"ADA":   "cardano",
	"DOGE":  "dogecoin",
	"DOT":   "polkadot",
	"AVAX":  "avalanche-2",
	"LTC":   "litecoin",
	"XLM":   "stellar",
	"BNB":   "binancecoin",
	"LINK":  "chainlink",
	"USDT":  "tether",
	"USDC":  "usd-coin",
	"MATIC": "matic-network",
	"TRX":   "tron",
}

// CoinGeckoProvider prices crypto pairs through /simple/price.
type CoinGeckoProvider struct {
	baseURL    string
	httpClient *http.Client
	retryDelay time.Duration
	maxRetries int
}

// NewCoinGeckoProvider creates a provider. Rate limited answers (429) are
// retried up to maxRetries times with exponential backoff from retryDelay.
func NewCoinGeckoProvider(baseURL string, retryDelay time.Duration, maxRetries int) *CoinGeckoProvider {
	if baseURL == "" {
		baseURL = CoinGeckoURL
	}
	return &CoinGeckoProvider{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: 15 * time.Second},
		retryDelay: retryDelay,
		maxRetries: maxRetries,
	}
}

func (p *CoinGeckoProvider) Name() string { return "coingecko" }

func (p *CoinGeckoProvider) Supports(category model.Category) bool {
	return category == model.CategoryCrypto
}

// Quote splits "BTC-EUR" into coin BTC and quote currency EUR; a bare
// ticker is quoted in USD.
func (p *CoinGeckoProvider) Quote(ctx context.Context, inst model.Instrument) (Quote, error) {
	base, vs := splitPair(inst.Symbol)

	coinID, ok := CoinIDs[base]
	if !ok {
		coinID = strings.ToLower(base)
	}

	url := fmt.Sprintf("%s/simple/price?ids=%s&vs_currencies=%s", p.baseURL, coinID, strings.ToLower(vs))
	body, err := p.fetchWithRetry(ctx, url)
	if err != nil {
		return Quote{}, err
	}

	// Parse: {"bitcoin":{"usd":65000}}
	var raw map[string]map[string]float64
	if err := json.Unmarshal(body, &raw); err != nil {
		return Quote{}, fmt.Errorf("parsing CoinGecko response: %w", err)
	}

	price, ok := raw[coinID][strings.ToLower(vs)]
	if !ok {
		return Quote{}, fmt.Errorf("CoinGecko has no %s price for %s", vs, coinID)
	}

	return Quote{
		Symbol:   base + "-" + vs,
		Price:    price,
		Currency: vs,
	}, nil
}

func (p *CoinGeckoProvider) fetchWithRetry(ctx context.Context, url string) ([]byte, error) {
	var lastErr error
	for attempt, n := 0, p.maxRetries+1; attempt < n; attempt++ {
		if attempt > 0 {
			baseDelay := p.retryDelay
			if baseDelay == 0 {
				baseDelay = time.Second
			}
			delay := baseDelay * time.Duration(1<<uint(attempt-1))
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(delay):
			}
		}

		body, status, err := getBody(ctx, p.httpClient, url)
		if err == nil {
			return body, nil
		}

		if status == http.StatusTooManyRequests {
			lastErr = fmt.Errorf("CoinGecko rate limited (attempt %d/%d)", attempt+1, p.maxRetries+1)
			continue
		}

		return nil, fmt.Errorf("CoinGecko: %w", err)
	}

	return nil, lastErr
}

func splitPair(symbol string) (base, quote string) {
	s := strings.ToUpper(strings.TrimSpace(symbol))
	if i := strings.LastIndex(s, "-"); i > 0 && i < len(s)-1 {
		return s[:i], s[i+1:]
	}
	return s, "USD"
}
