package request

import "github.com/shopspring/decimal"

// CreateHoldingRequest represents the request body for adding a holding to a portfolio.
// CostBasis is per unit, in Currency.
type CreateHoldingRequest struct {
	Symbol    string          `json:"symbol"`
	Category  string          `json:"category"`
	Exchange  string          `json:"exchange"`
	Quantity  decimal.Decimal `json:"quantity"`
	CostBasis decimal.Decimal `json:"costBasis"`
	Currency  string          `json:"currency"`
}

// UpdateHoldingRequest changes the position size or cost basis of a holding.
// Omitted fields are left as they are. A quantity of zero records a full sale.
type UpdateHoldingRequest struct {
	Quantity  *decimal.Decimal `json:"quantity,omitempty"`
	CostBasis *decimal.Decimal `json:"costBasis,omitempty"`
}
