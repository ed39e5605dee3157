package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/ndewijer/Wealth-Tracker-Backend/internal/model"
)

// ExchangeRateRepository provides data access methods for the exchange_rate table.
// Every row is quoted against model.BaseCurrency.
type ExchangeRateRepository struct {
	db *sql.DB
}

// NewExchangeRateRepository creates a new ExchangeRateRepository with the provided database connection.
func NewExchangeRateRepository(db *sql.DB) *ExchangeRateRepository {
	return &ExchangeRateRepository{db: db}
}

// GetRates returns every stored rate.
func (r *ExchangeRateRepository) GetRates(ctx context.Context) ([]model.ExchangeRate, error) {
	query := `
          SELECT currency, rate, updated_at
          FROM exchange_rate
          ORDER BY currency
      `

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query exchange_rate table: %w", err)
	}
	defer rows.Close()

	rates := []model.ExchangeRate{}
	for rows.Next() {
		var (
			er        model.ExchangeRate
			updatedAt string
		)
		if err := rows.Scan(&er.Currency, &er.Rate, &updatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan exchange_rate results: %w", err)
		}
		if er.UpdatedAt, err = ParseTime(updatedAt); err != nil {
			return nil, fmt.Errorf("exchange rate %s updated_at: %w", er.Currency, err)
		}
		rates = append(rates, er)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating exchange_rate table: %w", err)
	}

	return rates, nil
}

// UpsertRates writes all rates in one transaction.
func (r *ExchangeRateRepository) UpsertRates(ctx context.Context, rates []model.ExchangeRate) error {
	if len(rates) == 0 {
		return nil
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	query := `
          INSERT INTO exchange_rate (currency, rate, updated_at)
          VALUES (?, ?, ?)
          ON CONFLICT(currency) DO UPDATE SET
              rate = excluded.rate,
              updated_at = excluded.updated_at
      `

	for _, er := range rates {
		if _, err := tx.ExecContext(ctx, query, er.Currency, er.Rate.String(), FormatTime(er.UpdatedAt)); err != nil {
			return fmt.Errorf("failed to upsert rate for %s: %w", er.Currency, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit rates: %w", err)
	}
	return nil
}
