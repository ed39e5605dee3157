package service_test

import (
	"context"
	"errors"
	"testing"

	"github.com/ndewijer/Wealth-Tracker-Backend/internal/api/request"
	"github.com/ndewijer/Wealth-Tracker-Backend/internal/apperrors"
	"github.com/ndewijer/Wealth-Tracker-Backend/internal/testutil"
	"github.com/ndewijer/Wealth-Tracker-Backend/internal/testutil/testenv"
)

func TestPortfolioService_GetPortfolios(t *testing.T) {
	ctx := context.Background()

	t.Run("returns empty slice when no portfolios exist", func(t *testing.T) {
		// Setup
		env := testenv.New(t)

		// Execute
		portfolios, err := env.Portfolios.GetPortfolios(ctx, false)

		// Assert
		if err != nil {
			t.Fatalf("GetPortfolios() returned unexpected error: %v", err)
		}
		if portfolios == nil || len(portfolios) != 0 {
			t.Errorf("Expected empty slice, got %v", portfolios)
		}
	})

	t.Run("archived portfolios only when requested", func(t *testing.T) {
		// Setup
		env := testenv.New(t)
		active := testutil.CreatePortfolio(t, env.DB, "Active Portfolio")
		testutil.NewPortfolio().WithName("Archived Portfolio").Archived().Build(t, env.DB)

		// Execute
		withoutArchived, err := env.Portfolios.GetPortfolios(ctx, false)
		if err != nil {
			t.Fatalf("GetPortfolios(false) returned unexpected error: %v", err)
		}
		all, err := env.Portfolios.GetPortfolios(ctx, true)
		if err != nil {
			t.Fatalf("GetPortfolios(true) returned unexpected error: %v", err)
		}

		// Assert
		if len(withoutArchived) != 1 || withoutArchived[0].ID != active.ID {
			t.Errorf("Expected only the active portfolio, got %v", withoutArchived)
		}
		if len(all) != 2 {
			t.Errorf("Expected 2 portfolios, got %d", len(all))
		}
	})
}

func TestPortfolioService_GetPortfolio(t *testing.T) {
	ctx := context.Background()
	env := testenv.New(t)
	p := testutil.NewPortfolio().WithReportingCurrency("USD").Build(t, env.DB)

	t.Run("returns existing portfolio", func(t *testing.T) {
		got, err := env.Portfolios.GetPortfolio(ctx, p.ID)

		if err != nil {
			t.Fatalf("GetPortfolio() returned unexpected error: %v", err)
		}
		if got.ReportingCurrency != "USD" {
			t.Errorf("Expected reporting currency USD, got %s", got.ReportingCurrency)
		}
	})

	t.Run("unknown ID", func(t *testing.T) {
		_, err := env.Portfolios.GetPortfolio(ctx, testutil.MakeID())

		if !errors.Is(err, apperrors.ErrPortfolioNotFound) {
			t.Errorf("Expected ErrPortfolioNotFound, got %v", err)
		}
	})
}

func TestPortfolioService_CreatePortfolio(t *testing.T) {
	ctx := context.Background()

	t.Run("defaults the reporting currency", func(t *testing.T) {
		// Setup
		env := testenv.New(t)

		// Execute
		p, err := env.Portfolios.CreatePortfolio(ctx, request.CreatePortfolioRequest{Name: "  Pension  "})

		// Assert
		if err != nil {
			t.Fatalf("CreatePortfolio() returned unexpected error: %v", err)
		}
		if p.Name != "Pension" {
			t.Errorf("Expected trimmed name, got %q", p.Name)
		}
		if p.ReportingCurrency != "EUR" {
			t.Errorf("Expected EUR, got %s", p.ReportingCurrency)
		}

		stored, err := env.Portfolios.GetPortfolio(ctx, p.ID)
		if err != nil {
			t.Fatalf("created portfolio not found: %v", err)
		}
		if stored.Name != "Pension" {
			t.Errorf("Expected stored name Pension, got %q", stored.Name)
		}
	})

	t.Run("keeps a requested reporting currency", func(t *testing.T) {
		env := testenv.New(t)

		p, err := env.Portfolios.CreatePortfolio(ctx, request.CreatePortfolioRequest{Name: "US", ReportingCurrency: "usd"})

		if err != nil {
			t.Fatalf("CreatePortfolio() returned unexpected error: %v", err)
		}
		if p.ReportingCurrency != "USD" {
			t.Errorf("Expected USD, got %s", p.ReportingCurrency)
		}
	})
}
