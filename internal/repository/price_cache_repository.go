package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/ndewijer/Wealth-Tracker-Backend/internal/apperrors"
	"github.com/ndewijer/Wealth-Tracker-Backend/internal/model"
)

// PriceCacheRepository persists the last known price per symbol.
type PriceCacheRepository struct {
	db *sql.DB
}

// NewPriceCacheRepository creates a new PriceCacheRepository with the provided database connection.
func NewPriceCacheRepository(db *sql.DB) *PriceCacheRepository {
	return &PriceCacheRepository{db: db}
}

// GetPrice returns the cached record for symbol.
// Returns apperrors.ErrPriceNotFound when the symbol was never cached.
func (r *PriceCacheRepository) GetPrice(ctx context.Context, symbol string) (model.PriceRecord, error) {
	query := `
          SELECT symbol, price, currency, provider, observed_at, refreshed_at
          FROM price_cache
          WHERE symbol = ?
      `

	rec, err := scanPriceRecord(r.db.QueryRowContext(ctx, query, symbol))
	if errors.Is(err, sql.ErrNoRows) {
		return model.PriceRecord{}, apperrors.ErrPriceNotFound
	}
	if err != nil {
		return model.PriceRecord{}, err
	}
	return rec, nil
}

// GetPrices returns every cached record ordered by symbol.
func (r *PriceCacheRepository) GetPrices(ctx context.Context) ([]model.PriceRecord, error) {
	query := `
          SELECT symbol, price, currency, provider, observed_at, refreshed_at
          FROM price_cache
          ORDER BY symbol
      `

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query price_cache table: %w", err)
	}
	defer rows.Close()

	records := []model.PriceRecord{}
	for rows.Next() {
		rec, err := scanPriceRecord(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating price_cache table: %w", err)
	}

	return records, nil
}

// UpsertPrice writes rec unless the stored record for the same symbol was
// refreshed later. It reports whether the row was written.
func (r *PriceCacheRepository) UpsertPrice(ctx context.Context, rec model.PriceRecord) (bool, error) {
	query := `
          INSERT INTO price_cache (symbol, price, currency, provider, observed_at, refreshed_at)
          VALUES (?, ?, ?, ?, ?, ?)
          ON CONFLICT(symbol) DO UPDATE SET
              price = excluded.price,
              currency = excluded.currency,
              provider = excluded.provider,
              observed_at = excluded.observed_at,
              refreshed_at = excluded.refreshed_at
          WHERE excluded.refreshed_at >= price_cache.refreshed_at
      `

	result, err := r.db.ExecContext(ctx, query,
		rec.Symbol,
		rec.Price.String(),
		rec.Currency,
		rec.Provider,
		FormatTime(rec.ObservedAt),
		FormatTime(rec.RefreshedAt),
	)
	if err != nil {
		return false, fmt.Errorf("failed to upsert price for %s: %w", rec.Symbol, err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to read affected rows: %w", err)
	}
	return affected > 0, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanPriceRecord(row rowScanner) (model.PriceRecord, error) {
	var (
		rec                     model.PriceRecord
		observedAt, refreshedAt string
	)

	if err := row.Scan(&rec.Symbol, &rec.Price, &rec.Currency, &rec.Provider, &observedAt, &refreshedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.PriceRecord{}, err
		}
		return model.PriceRecord{}, fmt.Errorf("failed to scan price_cache results: %w", err)
	}

	var err error
	if rec.ObservedAt, err = ParseTime(observedAt); err != nil {
		return model.PriceRecord{}, fmt.Errorf("price %s observed_at: %w", rec.Symbol, err)
	}
	if rec.RefreshedAt, err = ParseTime(refreshedAt); err != nil {
		return model.PriceRecord{}, fmt.Errorf("price %s refreshed_at: %w", rec.Symbol, err)
	}

	return rec, nil
}
