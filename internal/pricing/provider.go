// Package pricing resolves the current price of an instrument by walking an
// ordered chain of market data providers per category, with the price cache
// in front of the chain and the last known price behind it.
package pricing

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"net/http"
	"time"

	"github.com/ndewijer/Wealth-Tracker-Backend/internal/model"
)

// Provider fetches a live quote from one market data source.
type Provider interface {
	// Name identifies the provider in price records and logs.
	Name() string
	// Supports reports whether the provider can price the category at all.
	Supports(category model.Category) bool
	// Quote returns the latest price. Implementations spell the symbol the
	// way their source expects and must honour ctx cancellation.
	Quote(ctx context.Context, inst model.Instrument) (Quote, error)
}

// Quote is a raw provider answer before validation.
// Currency may be empty when the source does not report one.
type Quote struct {
	Symbol     string
	Price      float64
	Currency   string
	ObservedAt time.Time
}

func validPrice(p float64) bool {
	return p > 0 && !math.IsNaN(p) && !math.IsInf(p, 0)
}

const browserUserAgent = "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"

// getBody performs a GET and returns the body of a 200 response.
func getBody(ctx context.Context, client *http.Client, url string) ([]byte, int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, 0, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("User-Agent", browserUserAgent)

	resp, err := client.Do(req)
	if err != nil {
		return nil, 0, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, resp.StatusCode, fmt.Errorf("reading response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return body, resp.StatusCode, fmt.Errorf("HTTP %d", resp.StatusCode)
	}
	return body, resp.StatusCode, nil
}

// getJSON decodes a 200 JSON response into an untyped value for jsonpath lookups.
func getJSON(ctx context.Context, client *http.Client, url string) (any, error) {
	body, _, err := getBody(ctx, client, url)
	if err != nil {
		return nil, err
	}

	var obj any
	if err := json.Unmarshal(body, &obj); err != nil {
		return nil, fmt.Errorf("decoding response: %w", err)
	}
	return obj, nil
}
