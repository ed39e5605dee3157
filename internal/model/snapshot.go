package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Snapshot is the recorded total value of a portfolio on a calendar day (UTC).
type Snapshot struct {
	ID          string          `json:"id"`
	PortfolioID string          `json:"portfolioId"`
	Date        time.Time       `json:"date"`
	TotalValue  decimal.Decimal `json:"totalValue"`
	Currency    string          `json:"currency"`
	RecordedAt  time.Time       `json:"recordedAt"`
	CreatedAt   time.Time       `json:"createdAt"`
	UpdatedAt   time.Time       `json:"updatedAt"`
}
