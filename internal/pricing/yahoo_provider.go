package pricing

import (
	"context"
	"fmt"

	"github.com/ndewijer/Wealth-Tracker-Backend/internal/model"
	"github.com/ndewijer/Wealth-Tracker-Backend/internal/yahoo"
)

// YahooProvider prices instruments from the Yahoo Finance chart API.
type YahooProvider struct {
	client yahoo.Client
}

// NewYahooProvider creates a YahooProvider on top of client.
func NewYahooProvider(client yahoo.Client) *YahooProvider {
	return &YahooProvider{client: client}
}

func (p *YahooProvider) Name() string { return "yahoo" }

func (p *YahooProvider) Supports(category model.Category) bool {
	return category != model.CategoryCash
}

func (p *YahooProvider) Quote(ctx context.Context, inst model.Instrument) (Quote, error) {
	symbol := SearchSymbol(inst.Symbol, inst.Category, inst.Exchange)

	resp, err := p.client.QueryChart(ctx, symbol)
	if err != nil {
		return Quote{}, fmt.Errorf("yahoo chart %s: %w", symbol, err)
	}

	q, err := yahoo.ParseQuote(resp)
	if err != nil {
		return Quote{}, fmt.Errorf("yahoo chart %s: %w", symbol, err)
	}

	return Quote{
		Symbol:     symbol,
		Price:      q.Price,
		Currency:   q.Currency,
		ObservedAt: q.Time,
	}, nil
}
