// Package snapshot persists one total value per portfolio per UTC day.
package snapshot

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/ndewijer/Wealth-Tracker-Backend/internal/apperrors"
	"github.com/ndewijer/Wealth-Tracker-Backend/internal/model"
)

// Store is the persistence the recorder needs.
type Store interface {
	UpsertSnapshot(ctx context.Context, s model.Snapshot) (bool, error)
	GetSnapshots(ctx context.Context, portfolioID string, from, to time.Time) ([]model.Snapshot, error)
}

// Recorder writes daily snapshots.
type Recorder struct {
	store Store
	log   zerolog.Logger
}

// NewRecorder creates a Recorder.
func NewRecorder(store Store, logger zerolog.Logger) *Recorder {
	return &Recorder{
		store: store,
		log:   logger.With().Str("component", "snapshot").Logger(),
	}
}

// Day normalizes t to midnight UTC of its UTC calendar day.
func Day(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// Record upserts the total of portfolioID for the UTC day of at. The day
// keeps the total with the latest at, whatever order the writes arrive in.
//
// Failures are logged, never returned: a missing snapshot must not fail the
// price update that produced it. The result reports whether the write
// landed, so an older total arriving after a newer one reports false.
func (r *Recorder) Record(ctx context.Context, portfolioID string, total decimal.Decimal, currency string, at time.Time) bool {
	day := Day(at)
	written, err := r.store.UpsertSnapshot(ctx, model.Snapshot{
		PortfolioID: portfolioID,
		Date:        day,
		TotalValue:  total,
		Currency:    currency,
		RecordedAt:  at.UTC(),
	})
	if err != nil {
		r.log.Error().Err(err).
			Str("portfolioId", portfolioID).
			Str("date", day.Format(time.DateOnly)).
			Msg("failed to record snapshot")
		return false
	}
	if !written {
		r.log.Debug().
			Str("portfolioId", portfolioID).
			Str("date", day.Format(time.DateOnly)).
			Time("recordedAt", at).
			Msg("newer snapshot already stored")
		return false
	}

	r.log.Debug().
		Str("portfolioId", portfolioID).
		Str("date", day.Format(time.DateOnly)).
		Str("total", total.String()).
		Str("currency", currency).
		Msg("snapshot recorded")
	return true
}

// History returns the snapshots of portfolioID between from and to,
// inclusive, by UTC day.
func (r *Recorder) History(ctx context.Context, portfolioID string, from, to time.Time) ([]model.Snapshot, error) {
	from, to = Day(from), Day(to)
	if from.After(to) {
		return nil, fmt.Errorf("%s after %s: %w", from.Format(time.DateOnly), to.Format(time.DateOnly), apperrors.ErrInvalidDateRange)
	}
	return r.store.GetSnapshots(ctx, portfolioID, from, to)
}
