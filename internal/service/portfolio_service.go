package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/ndewijer/Wealth-Tracker-Backend/internal/api/request"
	"github.com/ndewijer/Wealth-Tracker-Backend/internal/model"
	"github.com/ndewijer/Wealth-Tracker-Backend/internal/repository"
)

// PortfolioService handles portfolio-related business logic operations.
type PortfolioService struct {
	portfolioRepo     *repository.PortfolioRepository
	reportingCurrency string
}

// NewPortfolioService creates a new PortfolioService.
// defaultCurrency is assigned to new portfolios that do not name a reporting currency.
func NewPortfolioService(portfolioRepo *repository.PortfolioRepository, defaultCurrency string) *PortfolioService {
	if defaultCurrency == "" {
		defaultCurrency = model.BaseCurrency
	}
	return &PortfolioService{
		portfolioRepo:     portfolioRepo,
		reportingCurrency: strings.ToUpper(defaultCurrency),
	}
}

// GetPortfolios retrieves portfolios, optionally including archived ones.
func (s *PortfolioService) GetPortfolios(ctx context.Context, includeArchived bool) ([]model.Portfolio, error) {
	return s.portfolioRepo.GetPortfolios(ctx, model.PortfolioFilter{IncludeArchived: includeArchived})
}

// GetPortfolio retrieves a single portfolio by ID.
// Returns apperrors.ErrPortfolioNotFound if it does not exist.
func (s *PortfolioService) GetPortfolio(ctx context.Context, portfolioID string) (model.Portfolio, error) {
	return s.portfolioRepo.GetPortfolioOnID(ctx, portfolioID)
}

// CreatePortfolio stores a new portfolio. The request is expected to be validated.
func (s *PortfolioService) CreatePortfolio(ctx context.Context, req request.CreatePortfolioRequest) (*model.Portfolio, error) {
	reporting := strings.ToUpper(strings.TrimSpace(req.ReportingCurrency))
	if reporting == "" {
		reporting = s.reportingCurrency
	}

	portfolio := &model.Portfolio{
		ID:                uuid.New().String(),
		Name:              strings.TrimSpace(req.Name),
		Description:       req.Description,
		ReportingCurrency: reporting,
	}

	if err := s.portfolioRepo.InsertPortfolio(ctx, portfolio); err != nil {
		return nil, fmt.Errorf("failed to create portfolio: %w", err)
	}

	return portfolio, nil
}
