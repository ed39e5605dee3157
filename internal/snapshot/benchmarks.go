package snapshot

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/samber/lo"

	"github.com/ndewijer/Wealth-Tracker-Backend/internal/apperrors"
	"github.com/ndewijer/Wealth-Tracker-Backend/internal/model"
)

// DefaultBenchmarks are the reference series recorded each day.
func DefaultBenchmarks() []model.Benchmark {
	return []model.Benchmark{
		{Name: "S&P 500", Symbol: "^GSPC", Category: model.CategoryEquity},
		{Name: "NASDAQ Composite", Symbol: "^IXIC", Category: model.CategoryEquity},
		{Name: "BIST 100", Symbol: "XU100.IS", Category: model.CategoryEquity},
		{Name: "Gold", Symbol: "GC=F", Category: model.CategoryCommodity},
		{Name: "Bitcoin", Symbol: "BTC-USD", Category: model.CategoryCrypto},
	}
}

// BenchmarkStore is the persistence the benchmark recorder needs.
type BenchmarkStore interface {
	InsertBenchmarkPrice(ctx context.Context, bp model.BenchmarkPrice) (bool, error)
	GetBenchmarkPrices(ctx context.Context, symbols []string, from, to time.Time) ([]model.BenchmarkPrice, error)
}

// BenchmarkRecorder keeps one price per benchmark per UTC day. The first
// price recorded on a day is kept; later ones are ignored.
type BenchmarkRecorder struct {
	store      BenchmarkStore
	benchmarks []model.Benchmark
	log        zerolog.Logger
}

// NewBenchmarkRecorder creates a BenchmarkRecorder for benchmarks.
func NewBenchmarkRecorder(store BenchmarkStore, benchmarks []model.Benchmark, logger zerolog.Logger) *BenchmarkRecorder {
	return &BenchmarkRecorder{
		store:      store,
		benchmarks: benchmarks,
		log:        logger.With().Str("component", "benchmarks").Logger(),
	}
}

// Benchmarks returns the recorded series.
func (r *BenchmarkRecorder) Benchmarks() []model.Benchmark {
	return r.benchmarks
}

// Record stores rec as the price of its symbol for the UTC day of at.
// It reports false without error when that day already has a price.
func (r *BenchmarkRecorder) Record(ctx context.Context, rec model.PriceRecord, at time.Time) (bool, error) {
	day := Day(at)
	inserted, err := r.store.InsertBenchmarkPrice(ctx, model.BenchmarkPrice{
		Symbol:   strings.ToUpper(rec.Symbol),
		Date:     day,
		Price:    rec.Price,
		Currency: rec.Currency,
		Provider: rec.Provider,
	})
	if err != nil {
		r.log.Error().Err(err).Str("symbol", rec.Symbol).Str("date", day.Format(time.DateOnly)).Msg("failed to record benchmark price")
		return false, err
	}

	r.log.Debug().
		Str("symbol", rec.Symbol).
		Str("date", day.Format(time.DateOnly)).
		Bool("inserted", inserted).
		Msg("benchmark price processed")
	return inserted, nil
}

// History returns the recorded prices between from and to, inclusive,
// grouped by symbol. An empty symbols slice means every configured
// benchmark. Every requested symbol has an entry, empty when nothing was
// recorded.
func (r *BenchmarkRecorder) History(ctx context.Context, symbols []string, from, to time.Time) (map[string][]model.BenchmarkPrice, error) {
	from, to = Day(from), Day(to)
	if from.After(to) {
		return nil, fmt.Errorf("%s after %s: %w", from.Format(time.DateOnly), to.Format(time.DateOnly), apperrors.ErrInvalidDateRange)
	}

	if len(symbols) == 0 {
		symbols = lo.Map(r.benchmarks, func(b model.Benchmark, _ int) string { return b.Symbol })
	}
	symbols = lo.Uniq(lo.Map(symbols, func(s string, _ int) string { return strings.ToUpper(strings.TrimSpace(s)) }))

	prices, err := r.store.GetBenchmarkPrices(ctx, symbols, from, to)
	if err != nil {
		return nil, err
	}

	grouped := lo.GroupBy(prices, func(bp model.BenchmarkPrice) string { return bp.Symbol })
	out := make(map[string][]model.BenchmarkPrice, len(symbols))
	for _, s := range symbols {
		out[s] = grouped[s]
		if out[s] == nil {
			out[s] = []model.BenchmarkPrice{}
		}
	}
	return out, nil
}
