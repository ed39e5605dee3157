package validation

import (
	"strings"

	"github.com/ndewijer/Wealth-Tracker-Backend/internal/api/request"
	"github.com/ndewijer/Wealth-Tracker-Backend/internal/currency"
)

func ValidateCreatePortfolio(req request.CreatePortfolioRequest) error {
	errors := make(map[string]string)

	// Required field
	if strings.TrimSpace(req.Name) == "" {
		errors["name"] = "name is required"
	} else if len(req.Name) > 100 {
		errors["name"] = "name must be 100 characters or less"
	}

	// Optional but has constraints
	if len(req.Description) > 500 {
		errors["description"] = "description must be 500 characters or less"
	}

	if req.ReportingCurrency != "" && !currency.IsValidCode(strings.ToUpper(req.ReportingCurrency)) {
		errors["reportingCurrency"] = "reportingCurrency must be an ISO 4217 code"
	}

	if len(errors) > 0 {
		return &Error{Fields: errors}
	}
	return nil
}
