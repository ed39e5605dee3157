package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/ndewijer/Wealth-Tracker-Backend/internal/api/request"
	"github.com/ndewijer/Wealth-Tracker-Backend/internal/apperrors"
	"github.com/ndewijer/Wealth-Tracker-Backend/internal/model"
	"github.com/ndewijer/Wealth-Tracker-Backend/internal/repository"
)

// HoldingService manages the positions of a portfolio.
type HoldingService struct {
	portfolioRepo *repository.PortfolioRepository
	holdingRepo   *repository.HoldingRepository
}

// NewHoldingService creates a new HoldingService.
func NewHoldingService(portfolioRepo *repository.PortfolioRepository, holdingRepo *repository.HoldingRepository) *HoldingService {
	return &HoldingService{
		portfolioRepo: portfolioRepo,
		holdingRepo:   holdingRepo,
	}
}

// GetHoldings returns every holding of a portfolio, fully sold ones included.
// Returns apperrors.ErrPortfolioNotFound when the portfolio does not exist.
func (s *HoldingService) GetHoldings(ctx context.Context, portfolioID string) ([]model.Holding, error) {
	if _, err := s.portfolioRepo.GetPortfolioOnID(ctx, portfolioID); err != nil {
		return nil, err
	}
	return s.holdingRepo.GetHoldingsByPortfolio(ctx, portfolioID)
}

// CreateHolding adds a position to a portfolio.
//
// The symbol and currency are upper-cased; the request is expected to be
// validated already.
//
// Returns apperrors.ErrPortfolioNotFound when the portfolio does not exist.
func (s *HoldingService) CreateHolding(ctx context.Context, portfolioID string, req request.CreateHoldingRequest) (*model.Holding, error) {
	if _, err := s.portfolioRepo.GetPortfolioOnID(ctx, portfolioID); err != nil {
		return nil, err
	}

	category, err := model.ParseCategory(req.Category)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", apperrors.ErrInvalidCategory, err)
	}

	holding := &model.Holding{
		ID:          uuid.New().String(),
		PortfolioID: portfolioID,
		Symbol:      strings.ToUpper(strings.TrimSpace(req.Symbol)),
		Category:    category,
		Exchange:    strings.TrimSpace(req.Exchange),
		Quantity:    req.Quantity,
		CostBasis:   req.CostBasis,
		Currency:    strings.ToUpper(strings.TrimSpace(req.Currency)),
	}

	if err := s.holdingRepo.InsertHolding(ctx, holding); err != nil {
		return nil, fmt.Errorf("failed to create holding: %w", err)
	}

	return holding, nil
}

// UpdateHolding changes quantity and/or cost basis. Fields left nil in req
// keep their stored value.
//
// Returns apperrors.ErrHoldingNotFound when the holding does not belong to the portfolio.
func (s *HoldingService) UpdateHolding(ctx context.Context, portfolioID, holdingID string, req request.UpdateHoldingRequest) (*model.Holding, error) {
	holding, err := s.holdingRepo.GetHolding(ctx, portfolioID, holdingID)
	if err != nil {
		return nil, err
	}

	if req.Quantity != nil {
		holding.Quantity = *req.Quantity
	}
	if req.CostBasis != nil {
		holding.CostBasis = *req.CostBasis
	}

	if err := s.holdingRepo.UpdateHolding(ctx, &holding); err != nil {
		return nil, err
	}

	return &holding, nil
}
