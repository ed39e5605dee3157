package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/ndewijer/Wealth-Tracker-Backend/internal/model"
)

// BenchmarkPriceRepository provides data access methods for the benchmark_price table.
type BenchmarkPriceRepository struct {
	db *sql.DB
}

// NewBenchmarkPriceRepository creates a new BenchmarkPriceRepository with the provided database connection.
func NewBenchmarkPriceRepository(db *sql.DB) *BenchmarkPriceRepository {
	return &BenchmarkPriceRepository{db: db}
}

// InsertBenchmarkPrice stores bp for the UTC day of bp.Date unless a price
// for that symbol and day already exists. It reports whether a row was added.
func (r *BenchmarkPriceRepository) InsertBenchmarkPrice(ctx context.Context, bp model.BenchmarkPrice) (bool, error) {
	query := `
          INSERT INTO benchmark_price (id, symbol, date, price, currency, provider, created_at)
          VALUES (?, ?, ?, ?, ?, ?, ?)
          ON CONFLICT(symbol, date) DO NOTHING
      `

	if bp.ID == "" {
		bp.ID = uuid.New().String()
	}

	result, err := r.db.ExecContext(ctx, query,
		bp.ID,
		bp.Symbol,
		FormatDate(bp.Date),
		bp.Price.String(),
		bp.Currency,
		bp.Provider,
		FormatTime(time.Now()),
	)
	if err != nil {
		return false, fmt.Errorf("failed to save benchmark price for %s: %w", bp.Symbol, err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to read affected rows: %w", err)
	}
	return affected > 0, nil
}

// GetBenchmarkPrices returns the prices of symbols between from and to
// (inclusive, by UTC day) ordered by symbol and date.
func (r *BenchmarkPriceRepository) GetBenchmarkPrices(ctx context.Context, symbols []string, from, to time.Time) ([]model.BenchmarkPrice, error) {
	prices := []model.BenchmarkPrice{}
	if len(symbols) == 0 {
		return prices, nil
	}

	placeholders := make([]string, len(symbols))
	args := make([]any, 0, len(symbols)+2)
	for i, s := range symbols {
		placeholders[i] = "?"
		args = append(args, s)
	}
	args = append(args, FormatDate(from), FormatDate(to))

	//#nosec G202 -- placeholders only, values are bound
	query := `
          SELECT id, symbol, date, price, currency, provider, created_at
          FROM benchmark_price
          WHERE symbol IN (` + strings.Join(placeholders, ",") + `) AND date >= ? AND date <= ?
          ORDER BY symbol, date
      `

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query benchmark_price table: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			bp              model.BenchmarkPrice
			date, createdAt string
		)
		if err := rows.Scan(&bp.ID, &bp.Symbol, &date, &bp.Price, &bp.Currency, &bp.Provider, &createdAt); err != nil {
			return nil, fmt.Errorf("failed to scan benchmark_price results: %w", err)
		}
		if bp.Date, err = ParseTime(date); err != nil {
			return nil, err
		}
		if bp.CreatedAt, err = ParseTime(createdAt); err != nil {
			return nil, err
		}
		prices = append(prices, bp)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating benchmark_price table: %w", err)
	}

	return prices, nil
}
