package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/ndewijer/Wealth-Tracker-Backend/internal/model"
)

// SnapshotRepository provides data access methods for the portfolio_snapshot table.
type SnapshotRepository struct {
	db *sql.DB
}

// NewSnapshotRepository creates a new SnapshotRepository with the provided database connection.
func NewSnapshotRepository(db *sql.DB) *SnapshotRepository {
	return &SnapshotRepository{db: db}
}

// UpsertSnapshot stores the total of a portfolio for the UTC day of s.Date.
// A second write for the same portfolio and day overwrites value and currency
// only when its RecordedAt is not earlier than the stored one, and keeps the
// original row ID. It reports whether the row was written.
func (r *SnapshotRepository) UpsertSnapshot(ctx context.Context, s model.Snapshot) (bool, error) {
	query := `
          INSERT INTO portfolio_snapshot (id, portfolio_id, date, total_value, currency, recorded_at, created_at, updated_at)
          VALUES (?, ?, ?, ?, ?, ?, ?, ?)
          ON CONFLICT(portfolio_id, date) DO UPDATE SET
              total_value = excluded.total_value,
              currency = excluded.currency,
              recorded_at = excluded.recorded_at,
              updated_at = excluded.updated_at
          WHERE excluded.recorded_at >= portfolio_snapshot.recorded_at
      `

	if s.ID == "" {
		s.ID = uuid.New().String()
	}
	now := time.Now()
	if s.RecordedAt.IsZero() {
		s.RecordedAt = now
	}

	result, err := r.db.ExecContext(ctx, query,
		s.ID,
		s.PortfolioID,
		FormatDate(s.Date),
		s.TotalValue.String(),
		s.Currency,
		FormatTime(s.RecordedAt),
		FormatTime(now),
		FormatTime(now),
	)
	if err != nil {
		return false, fmt.Errorf("failed to save snapshot for portfolio %s: %w", s.PortfolioID, err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to read affected rows: %w", err)
	}
	return affected > 0, nil
}

// GetSnapshots returns the snapshots of a portfolio between from and to
// (inclusive, by UTC day) in date order.
func (r *SnapshotRepository) GetSnapshots(ctx context.Context, portfolioID string, from, to time.Time) ([]model.Snapshot, error) {
	query := `
          SELECT id, portfolio_id, date, total_value, currency, recorded_at, created_at, updated_at
          FROM portfolio_snapshot
          WHERE portfolio_id = ? AND date >= ? AND date <= ?
          ORDER BY date
      `

	rows, err := r.db.QueryContext(ctx, query, portfolioID, FormatDate(from), FormatDate(to))
	if err != nil {
		return nil, fmt.Errorf("failed to query portfolio_snapshot table: %w", err)
	}
	defer rows.Close()

	snapshots := []model.Snapshot{}
	for rows.Next() {
		var (
			s                    model.Snapshot
			date, recordedAt     string
			createdAt, updatedAt string
		)
		if err := rows.Scan(&s.ID, &s.PortfolioID, &date, &s.TotalValue, &s.Currency, &recordedAt, &createdAt, &updatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan portfolio_snapshot results: %w", err)
		}
		if s.Date, err = ParseTime(date); err != nil {
			return nil, err
		}
		if recordedAt != "" {
			if s.RecordedAt, err = ParseTime(recordedAt); err != nil {
				return nil, err
			}
		}
		if s.CreatedAt, err = ParseTime(createdAt); err != nil {
			return nil, err
		}
		if s.UpdatedAt, err = ParseTime(updatedAt); err != nil {
			return nil, err
		}
		snapshots = append(snapshots, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating portfolio_snapshot table: %w", err)
	}

	return snapshots, nil
}
