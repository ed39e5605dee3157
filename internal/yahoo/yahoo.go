package yahoo

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"
)

// Client is the subset of Yahoo Finance used by price resolution and rate
// lookup. It is an interface so tests can substitute a mock.
type Client interface {
	QueryChart(ctx context.Context, symbol string) (Response, error)
	Search(ctx context.Context, query string, host string) ([]SearchQuote, error)
}

// Hosts serving the chart and search endpoints. query2 is tried first for
// charts; search prefers query1.
const (
	HostQuery1 = "https://query1.finance.yahoo.com"
	HostQuery2 = "https://query2.finance.yahoo.com"
)

const userAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/121.0.0.0 Safari/537.36"

// FinanceClient provides methods for fetching financial data from Yahoo Finance API.
// It wraps an HTTP client and tries each configured chart host in order.
type FinanceClient struct {
	httpClient *http.Client
	chartHosts []string
}

// Option configures a FinanceClient.
type Option func(*FinanceClient)

// WithHTTPClient replaces the default HTTP client.
func WithHTTPClient(c *http.Client) Option {
	return func(fc *FinanceClient) {
		fc.httpClient = c
	}
}

// WithChartHosts replaces the chart hosts, mainly to point tests at httptest servers.
func WithChartHosts(hosts ...string) Option {
	return func(fc *FinanceClient) {
		fc.chartHosts = hosts
	}
}

// NewFinanceClient creates a new Yahoo Finance client.
//
// Returns:
//   - *FinanceClient: A new client instance ready for use
func NewFinanceClient(opts ...Option) *FinanceClient {
	c := &FinanceClient{
		httpClient: &http.Client{Timeout: 15 * time.Second},
		chartHosts: []string{HostQuery2, HostQuery1},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// QueryChart fetches the one day chart for a symbol.
// Hosts are tried in order; the first host that returns a result wins.
//
// Parameters:
//   - ctx: Bounds the whole lookup across hosts
//   - symbol: Yahoo ticker (e.g., "AAPL", "ASML.AS", "EURUSD=X")
//
// Returns:
//   - Response: Raw API response with at least one result
//   - error: The last host's error when every host failed
func (c *FinanceClient) QueryChart(ctx context.Context, symbol string) (Response, error) {
	var lastErr error
	for _, host := range c.chartHosts {
		endpoint := fmt.Sprintf("%s/v8/finance/chart/%s?interval=1d&range=1d", host, url.PathEscape(symbol))

		var result Response
		if err := c.queryYahoo(ctx, endpoint, &result); err != nil {
			lastErr = err
			continue
		}
		if result.Chart.Error != nil {
			lastErr = fmt.Errorf("yahoo error for %s: %s", symbol, result.Chart.Error.Description)
			continue
		}
		if len(result.Chart.Result) == 0 {
			lastErr = fmt.Errorf("no results returned for symbol %s", symbol)
			continue
		}
		return result, nil
	}
	return Response{}, lastErr
}

// Search queries the v1 search endpoint on a single host.
// Non-200 answers are returned as errors so callers can fall back to another host.
func (c *FinanceClient) Search(ctx context.Context, query string, host string) ([]SearchQuote, error) {
	params := url.Values{}
	params.Set("q", query)
	params.Set("lang", "en-US")
	params.Set("region", "US")
	params.Set("quotesCount", "10")
	params.Set("newsCount", "0")
	params.Set("enableFuzzyQuery", "false")

	var result SearchResponse
	if err := c.queryYahoo(ctx, host+"/v1/finance/search?"+params.Encode(), &result); err != nil {
		return nil, err
	}
	return result.Quotes, nil
}

// ParseQuote extracts the latest price from a chart response.
// meta.regularMarketPrice is preferred; the last non-null close is used
// when Yahoo omits it.
//
// Parameters:
//   - resp: Raw response from QueryChart
//
// Returns:
//   - Quote: Symbol, price, currency (may be empty) and quote time
//   - error: If the response carries no usable price
func ParseQuote(resp Response) (Quote, error) {
	if len(resp.Chart.Result) == 0 {
		return Quote{}, fmt.Errorf("no price data returned")
	}
	result := resp.Chart.Result[0]

	q := Quote{
		Symbol:   result.Meta.Symbol,
		Currency: result.Meta.Currency,
	}
	if result.Meta.RegularMarketTime > 0 {
		q.Time = time.Unix(result.Meta.RegularMarketTime, 0).UTC()
	}

	if result.Meta.RegularMarketPrice != nil {
		q.Price = *result.Meta.RegularMarketPrice
		return q, nil
	}

	if len(result.Indicators.Quote) > 0 {
		closes := result.Indicators.Quote[0].Close
		for i := len(closes) - 1; i >= 0; i-- {
			if closes[i] == nil {
				continue
			}
			q.Price = *closes[i]
			if q.Time.IsZero() && i < len(result.Timestamp) {
				q.Time = time.Unix(result.Timestamp[i], 0).UTC()
			}
			return q, nil
		}
	}

	return Quote{}, fmt.Errorf("no close prices returned for %s", result.Meta.Symbol)
}

// queryYahoo is an internal helper that executes HTTP requests to Yahoo Finance API.
// This method handles the common logic for making requests, checking the status,
// and decoding the JSON body into out.
//
// The method sets required headers:
//   - User-Agent: Mimics a browser to avoid API blocking
//   - Accept: Requests JSON response format
func (c *FinanceClient) queryYahoo(ctx context.Context, endpoint string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return err
	}

	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}

	if resp.StatusCode != http.StatusOK {
		// Yahoo reports unknown symbols as 404 with a chart error body.
		var errBody Response
		if json.Unmarshal(data, &errBody) == nil && errBody.Chart.Error != nil {
			return fmt.Errorf("yahoo error (status %d): %s", resp.StatusCode, errBody.Chart.Error.Description)
		}
		return fmt.Errorf("yahoo returned status %d", resp.StatusCode)
	}

	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("failed to decode yahoo response: %w", err)
	}

	return nil
}
