package request

// CreatePortfolioRequest represents the request body for creating a portfolio
type CreatePortfolioRequest struct {
	Name              string `json:"name"`
	Description       string `json:"description"`
	ReportingCurrency string `json:"reportingCurrency"`
}
