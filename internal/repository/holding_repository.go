package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/ndewijer/Wealth-Tracker-Backend/internal/apperrors"
	"github.com/ndewijer/Wealth-Tracker-Backend/internal/model"
)

// HoldingRepository provides data access methods for the holding table.
type HoldingRepository struct {
	db *sql.DB
	tx *sql.Tx
}

// NewHoldingRepository creates a new HoldingRepository with the provided database connection.
func NewHoldingRepository(db *sql.DB) *HoldingRepository {
	return &HoldingRepository{db: db}
}

// WithTx returns a copy of the repository that runs its statements inside tx.
func (r *HoldingRepository) WithTx(tx *sql.Tx) *HoldingRepository {
	return &HoldingRepository{
		db: r.db,
		tx: tx,
	}
}

func (r *HoldingRepository) getQuerier() querier {
	if r.tx != nil {
		return r.tx
	}
	return r.db
}

const holdingColumns = `id, portfolio_id, symbol, category, exchange, quantity, cost_basis, currency, created_at, updated_at`

// GetHoldingsByPortfolio returns every holding of a portfolio, including
// fully sold ones (quantity zero).
func (r *HoldingRepository) GetHoldingsByPortfolio(ctx context.Context, portfolioID string) ([]model.Holding, error) {
	query := `SELECT ` + holdingColumns + `
          FROM holding
          WHERE portfolio_id = ?
          ORDER BY symbol, created_at`

	return r.queryHoldings(ctx, query, portfolioID)
}

// GetActiveHoldings returns every holding with a positive quantity across all
// portfolios that are not archived.
func (r *HoldingRepository) GetActiveHoldings(ctx context.Context) ([]model.Holding, error) {
	query := `SELECT h.id, h.portfolio_id, h.symbol, h.category, h.exchange, h.quantity, h.cost_basis, h.currency, h.created_at, h.updated_at
          FROM holding h
          INNER JOIN portfolio p ON p.id = h.portfolio_id
          WHERE CAST(h.quantity AS REAL) > 0
            AND p.is_archived = ?
          ORDER BY h.symbol`

	return r.queryHoldings(ctx, query, false)
}

// GetHolding retrieves a single holding of a portfolio.
// Returns apperrors.ErrHoldingNotFound when no row matches.
func (r *HoldingRepository) GetHolding(ctx context.Context, portfolioID, holdingID string) (model.Holding, error) {
	query := `SELECT ` + holdingColumns + `
          FROM holding
          WHERE portfolio_id = ? AND id = ?`

	holdings, err := r.queryHoldings(ctx, query, portfolioID, holdingID)
	if err != nil {
		return model.Holding{}, err
	}
	if len(holdings) == 0 {
		return model.Holding{}, apperrors.ErrHoldingNotFound
	}
	return holdings[0], nil
}

// HeldCurrencies returns the distinct currencies of holdings and price
// records that belong to positions with a positive quantity.
func (r *HoldingRepository) HeldCurrencies(ctx context.Context) ([]string, error) {
	query := `
          SELECT DISTINCT h.currency FROM holding h WHERE CAST(h.quantity AS REAL) > 0
          UNION
          SELECT DISTINCT pc.currency FROM price_cache pc
          INNER JOIN holding h ON h.symbol = pc.symbol
          WHERE CAST(h.quantity AS REAL) > 0
      `

	rows, err := r.getQuerier().QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query held currencies: %w", err)
	}
	defer rows.Close()

	currencies := []string{}
	for rows.Next() {
		var c string
		if err := rows.Scan(&c); err != nil {
			return nil, fmt.Errorf("failed to scan currency: %w", err)
		}
		currencies = append(currencies, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating currencies: %w", err)
	}

	return currencies, nil
}

// InsertHolding stores a new holding. The caller assigns the ID.
func (r *HoldingRepository) InsertHolding(ctx context.Context, h *model.Holding) error {
	query := `
          INSERT INTO holding (` + holdingColumns + `)
          VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
      `

	now := time.Now().UTC()
	h.CreatedAt = now
	h.UpdatedAt = now

	_, err := r.getQuerier().ExecContext(ctx, query,
		h.ID,
		h.PortfolioID,
		h.Symbol,
		string(h.Category),
		h.Exchange,
		h.Quantity.String(),
		h.CostBasis.String(),
		h.Currency,
		FormatTime(h.CreatedAt),
		FormatTime(h.UpdatedAt),
	)
	if err != nil {
		return fmt.Errorf("failed to insert holding: %w", err)
	}

	return nil
}

// UpdateHolding writes quantity and cost basis of an existing holding.
// Returns apperrors.ErrHoldingNotFound when no row matches.
func (r *HoldingRepository) UpdateHolding(ctx context.Context, h *model.Holding) error {
	query := `
          UPDATE holding
          SET quantity = ?, cost_basis = ?, updated_at = ?
          WHERE id = ? AND portfolio_id = ?
      `

	h.UpdatedAt = time.Now().UTC()

	result, err := r.getQuerier().ExecContext(ctx, query,
		h.Quantity.String(),
		h.CostBasis.String(),
		FormatTime(h.UpdatedAt),
		h.ID,
		h.PortfolioID,
	)
	if err != nil {
		return fmt.Errorf("failed to update holding: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read affected rows: %w", err)
	}
	if affected == 0 {
		return apperrors.ErrHoldingNotFound
	}

	return nil
}

func (r *HoldingRepository) queryHoldings(ctx context.Context, query string, args ...any) ([]model.Holding, error) {
	rows, err := r.getQuerier().QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query holding table: %w", err)
	}
	defer rows.Close()

	holdings := []model.Holding{}
	for rows.Next() {
		h, err := scanHolding(rows)
		if err != nil {
			return nil, err
		}
		holdings = append(holdings, h)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating holding table: %w", err)
	}

	return holdings, nil
}

func scanHolding(rows *sql.Rows) (model.Holding, error) {
	var (
		h                    model.Holding
		category             string
		createdAt, updatedAt string
	)

	err := rows.Scan(
		&h.ID,
		&h.PortfolioID,
		&h.Symbol,
		&category,
		&h.Exchange,
		&h.Quantity,
		&h.CostBasis,
		&h.Currency,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		return model.Holding{}, fmt.Errorf("failed to scan holding table results: %w", err)
	}

	h.Category = model.Category(category)
	if !h.Category.Valid() {
		return model.Holding{}, fmt.Errorf("holding %s: %w: %q", h.ID, apperrors.ErrInvalidCategory, category)
	}

	if h.CreatedAt, err = ParseTime(createdAt); err != nil {
		return model.Holding{}, fmt.Errorf("holding %s created_at: %w", h.ID, err)
	}
	if h.UpdatedAt, err = ParseTime(updatedAt); err != nil {
		return model.Holding{}, fmt.Errorf("holding %s updated_at: %w", h.ID, err)
	}

	return h, nil
}
