package validation

import (
	"strings"

	"github.com/ndewijer/Wealth-Tracker-Backend/internal/api/request"
	"github.com/ndewijer/Wealth-Tracker-Backend/internal/currency"
	"github.com/ndewijer/Wealth-Tracker-Backend/internal/model"
)

// ValidateCreateHolding checks a new holding. Quantity may be zero, cost
// basis may be zero (gifted or airdropped positions), neither may be negative.
func ValidateCreateHolding(req request.CreateHoldingRequest) error {
	errors := make(map[string]string)

	symbol := strings.TrimSpace(req.Symbol)
	if symbol == "" {
		errors["symbol"] = "symbol is required"
	} else if len(symbol) > 32 {
		errors["symbol"] = "symbol must be 32 characters or less"
	}

	if _, err := model.ParseCategory(req.Category); err != nil {
		errors["category"] = "category must be one of EQUITY, CRYPTO, FUND, CASH, COMMODITY, FX"
	}

	if req.Quantity.IsNegative() {
		errors["quantity"] = "quantity cannot be negative"
	}
	if req.CostBasis.IsNegative() {
		errors["costBasis"] = "costBasis cannot be negative"
	}

	if strings.TrimSpace(req.Currency) == "" {
		errors["currency"] = "currency is required"
	} else if !currency.IsValidCode(strings.ToUpper(strings.TrimSpace(req.Currency))) {
		errors["currency"] = "currency must be an ISO 4217 code"
	}

	if len(errors) > 0 {
		return &Error{Fields: errors}
	}
	return nil
}

func ValidateUpdateHolding(req request.UpdateHoldingRequest) error {
	errors := make(map[string]string)

	if req.Quantity == nil && req.CostBasis == nil {
		errors["body"] = "quantity or costBasis is required"
	}
	if req.Quantity != nil && req.Quantity.IsNegative() {
		errors["quantity"] = "quantity cannot be negative"
	}
	if req.CostBasis != nil && req.CostBasis.IsNegative() {
		errors["costBasis"] = "costBasis cannot be negative"
	}

	if len(errors) > 0 {
		return &Error{Fields: errors}
	}
	return nil
}
