package testutil

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/ndewijer/Wealth-Tracker-Backend/internal/yahoo"
)

// MockYahooClient is an in-memory yahoo.Client.
// Symbols without a configured price answer with an error, as Yahoo does for
// unknown tickers. It is safe for concurrent use.
type MockYahooClient struct {
	mu sync.Mutex

	prices     map[string]mockPrice
	errors     map[string]error
	search     map[string][]yahoo.SearchQuote
	searchErr  error
	chartCalls map[string]int
	searches   []string
}

type mockPrice struct {
	price    float64
	currency string
}

// NewMockYahooClient creates a mock with no prices configured.
func NewMockYahooClient() *MockYahooClient {
	return &MockYahooClient{
		prices:     make(map[string]mockPrice),
		errors:     make(map[string]error),
		search:     make(map[string][]yahoo.SearchQuote),
		chartCalls: make(map[string]int),
	}
}

// WithPrice makes QueryChart answer symbol with price in currency.
func (m *MockYahooClient) WithPrice(symbol string, price float64, currency string) *MockYahooClient {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.prices[strings.ToUpper(symbol)] = mockPrice{price: price, currency: currency}
	return m
}

// WithError makes QueryChart fail for symbol.
func (m *MockYahooClient) WithError(symbol string, err error) *MockYahooClient {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.errors[strings.ToUpper(symbol)] = err
	return m
}

// WithSearchResults makes Search answer query with quotes on every host.
func (m *MockYahooClient) WithSearchResults(query string, quotes ...yahoo.SearchQuote) *MockYahooClient {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.search[query] = quotes
	return m
}

// WithSearchError makes every Search call fail.
func (m *MockYahooClient) WithSearchError(err error) *MockYahooClient {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.searchErr = err
	return m
}

// ChartCalls returns how often QueryChart was called for symbol.
func (m *MockYahooClient) ChartCalls(symbol string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.chartCalls[strings.ToUpper(symbol)]
}

// Searches returns every query passed to Search, in call order.
func (m *MockYahooClient) Searches() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.searches...)
}

// QueryChart implements yahoo.Client.
func (m *MockYahooClient) QueryChart(ctx context.Context, symbol string) (yahoo.Response, error) {
	if err := ctx.Err(); err != nil {
		return yahoo.Response{}, err
	}

	key := strings.ToUpper(symbol)
	m.mu.Lock()
	defer m.mu.Unlock()
	m.chartCalls[key]++

	if err, ok := m.errors[key]; ok {
		return yahoo.Response{}, err
	}
	p, ok := m.prices[key]
	if !ok {
		return yahoo.Response{}, fmt.Errorf("yahoo error (status 404): No data found, symbol may be delisted")
	}
	return CreateMockChartResponse(key, p.price, p.currency, time.Now()), nil
}

// Search implements yahoo.Client.
func (m *MockYahooClient) Search(ctx context.Context, query string, _ string) ([]yahoo.SearchQuote, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.searches = append(m.searches, query)
	if m.searchErr != nil {
		return nil, m.searchErr
	}
	return m.search[query], nil
}

// CreateMockChartResponse builds a chart payload carrying price as the
// regular market price at the given time.
func CreateMockChartResponse(symbol string, price float64, currency string, at time.Time) yahoo.Response {
	closePrice := price
	return yahoo.Response{
		Chart: yahoo.Chart{
			Result: []yahoo.Result{
				{
					Meta: yahoo.Meta{
						Symbol:             symbol,
						Currency:           currency,
						ExchangeName:       "NMS",
						RegularMarketPrice: &price,
						RegularMarketTime:  at.Unix(),
					},
					Timestamp: []int64{at.Unix()},
					Indicators: yahoo.IndicatorsContainer{
						Quote: []yahoo.QuoteSeries{{Close: []*float64{&closePrice}}},
					},
				},
			},
		},
	}
}

// CreateMockYahooErrorResponse creates a chart payload carrying a Yahoo error.
func CreateMockYahooErrorResponse(description string) yahoo.Response {
	return yahoo.Response{
		Chart: yahoo.Chart{
			Result: []yahoo.Result{},
			Error:  &yahoo.Error{Code: "Not Found", Description: description},
		},
	}
}
