package model

// Portfolio represents an investment portfolio. Holdings and snapshots belong
// to exactly one portfolio and are removed with it.
type Portfolio struct {
	ID                string `json:"id"`
	Name              string `json:"name"`
	Description       string `json:"description"`
	ReportingCurrency string `json:"reportingCurrency"`
	IsArchived        bool   `json:"isArchived"`
}

// PortfolioFilter defines filtering options for retrieving portfolios.
type PortfolioFilter struct {
	IncludeArchived bool
}
