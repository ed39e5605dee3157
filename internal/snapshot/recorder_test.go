package snapshot

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ndewijer/Wealth-Tracker-Backend/internal/apperrors"
	"github.com/ndewijer/Wealth-Tracker-Backend/internal/repository"
	"github.com/ndewijer/Wealth-Tracker-Backend/internal/testutil"
)

func TestRecorder_Record(t *testing.T) {
	ctx := context.Background()

	t.Run("second write on the same day overwrites", func(t *testing.T) {
		// Setup
		db := testutil.SetupTestDB(t)
		p := testutil.NewPortfolio().Build(t, db)
		rec := NewRecorder(repository.NewSnapshotRepository(db), zerolog.Nop())
		morning := time.Date(2026, 3, 2, 9, 15, 0, 0, time.UTC)
		evening := time.Date(2026, 3, 2, 21, 45, 0, 0, time.UTC)

		// Execute
		require.True(t, rec.Record(ctx, p.ID, decimal.RequireFromString("1000.50"), "EUR", morning))
		require.True(t, rec.Record(ctx, p.ID, decimal.RequireFromString("1020.75"), "EUR", evening))

		// Assert
		var count int
		require.NoError(t, db.QueryRow("SELECT COUNT(*) FROM portfolio_snapshot WHERE portfolio_id = ?", p.ID).Scan(&count))
		assert.Equal(t, 1, count)

		history, err := rec.History(ctx, p.ID, morning, evening)
		require.NoError(t, err)
		require.Len(t, history, 1)
		assert.True(t, history[0].TotalValue.Equal(decimal.RequireFromString("1020.75")))
		assert.Equal(t, time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC), history[0].Date)
	})

	t.Run("earlier write arriving late keeps the later total", func(t *testing.T) {
		// Setup
		db := testutil.SetupTestDB(t)
		p := testutil.NewPortfolio().Build(t, db)
		rec := NewRecorder(repository.NewSnapshotRepository(db), zerolog.Nop())
		evening := time.Date(2026, 3, 2, 18, 0, 0, 0, time.UTC)
		morning := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)

		// Execute
		require.True(t, rec.Record(ctx, p.ID, decimal.NewFromInt(2000), "EUR", evening))
		landed := rec.Record(ctx, p.ID, decimal.NewFromInt(1000), "EUR", morning)

		// Assert
		assert.False(t, landed)

		var count int
		require.NoError(t, db.QueryRow("SELECT COUNT(*) FROM portfolio_snapshot WHERE portfolio_id = ?", p.ID).Scan(&count))
		assert.Equal(t, 1, count)

		history, err := rec.History(ctx, p.ID, morning, evening)
		require.NoError(t, err)
		require.Len(t, history, 1)
		assert.True(t, history[0].TotalValue.Equal(decimal.NewFromInt(2000)))
		assert.True(t, evening.Equal(history[0].RecordedAt))
	})

	t.Run("day boundary is UTC", func(t *testing.T) {
		// Setup
		db := testutil.SetupTestDB(t)
		p := testutil.NewPortfolio().Build(t, db)
		rec := NewRecorder(repository.NewSnapshotRepository(db), zerolog.Nop())
		ams, err := time.LoadLocation("Europe/Amsterdam")
		require.NoError(t, err)

		// Execute: 00:30 in Amsterdam on the 3rd is still the 2nd in UTC
		rec.Record(ctx, p.ID, decimal.NewFromInt(1), "EUR", time.Date(2026, 3, 3, 0, 30, 0, 0, ams))

		// Assert
		history, err := rec.History(ctx, p.ID, time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC), time.Date(2026, 3, 5, 0, 0, 0, 0, time.UTC))
		require.NoError(t, err)
		require.Len(t, history, 1)
		assert.Equal(t, 2, history[0].Date.Day())
	})

	t.Run("persistence failure is swallowed", func(t *testing.T) {
		// Setup
		db := testutil.SetupTestDB(t)
		rec := NewRecorder(repository.NewSnapshotRepository(db), zerolog.Nop())

		// Execute: unknown portfolio violates the foreign key
		ok := rec.Record(ctx, testutil.MakeID(), decimal.NewFromInt(1), "EUR", time.Now())

		// Assert
		assert.False(t, ok)
	})
}

func TestRecorder_History(t *testing.T) {
	ctx := context.Background()
	db := testutil.SetupTestDB(t)
	p := testutil.NewPortfolio().Build(t, db)
	rec := NewRecorder(repository.NewSnapshotRepository(db), zerolog.Nop())

	start := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	for i := 0; i < 5; i++ {
		rec.Record(ctx, p.ID, decimal.NewFromInt(int64(100+i)), "EUR", start.AddDate(0, 0, i))
	}

	t.Run("range is inclusive and ordered", func(t *testing.T) {
		history, err := rec.History(ctx, p.ID, start.AddDate(0, 0, 1), start.AddDate(0, 0, 3))

		require.NoError(t, err)
		require.Len(t, history, 3)
		assert.True(t, history[0].TotalValue.Equal(decimal.NewFromInt(101)))
		assert.True(t, history[2].TotalValue.Equal(decimal.NewFromInt(103)))
	})

	t.Run("inverted range", func(t *testing.T) {
		_, err := rec.History(ctx, p.ID, start.AddDate(0, 0, 3), start)

		assert.ErrorIs(t, err, apperrors.ErrInvalidDateRange)
	})
}

func TestDay(t *testing.T) {
	got := Day(time.Date(2026, 3, 2, 23, 59, 59, 999, time.UTC))

	assert.Equal(t, time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC), got)
}
