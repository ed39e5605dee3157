package handlers

import (
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/ndewijer/Wealth-Tracker-Backend/internal/api/response"
	"github.com/ndewijer/Wealth-Tracker-Backend/internal/apperrors"
	"github.com/ndewijer/Wealth-Tracker-Backend/internal/model"
	"github.com/ndewijer/Wealth-Tracker-Backend/internal/service"
	"github.com/ndewijer/Wealth-Tracker-Backend/internal/valuation"
)

// defaultHistoryDays is the snapshot window served when no start date is given.
const defaultHistoryDays = 365

// ValuationHandler serves portfolio valuations and snapshot history.
type ValuationHandler struct {
	valuationService *service.ValuationService
}

// NewValuationHandler creates a new ValuationHandler
func NewValuationHandler(valuationService *service.ValuationService) *ValuationHandler {
	return &ValuationHandler{
		valuationService: valuationService,
	}
}

// PositionResponse is one valued holding. Monetary amounts are in the
// reporting currency and rounded to cents; Price stays in PriceCurrency.
type PositionResponse struct {
	HoldingID     string         `json:"holdingId"`
	Symbol        string         `json:"symbol"`
	Category      model.Category `json:"category"`
	Quantity      float64        `json:"quantity"`
	Price         float64        `json:"price"`
	PriceCurrency string         `json:"priceCurrency"`
	Provider      string         `json:"provider,omitempty"`
	MarketValue   float64        `json:"marketValue"`
	CostValue     float64        `json:"costValue"`
	ProfitLoss    float64        `json:"profitLoss"`
	Stale         bool           `json:"stale"`
	Unresolved    bool           `json:"unresolved"`
	Reason        string         `json:"reason,omitempty"`
}

// ValuationResponse represents the valuation of a portfolio.
type ValuationResponse struct {
	PortfolioID     string                     `json:"portfolioId"`
	Currency        string                     `json:"currency"`
	TotalValue      float64                    `json:"totalValue"`
	TotalCost       float64                    `json:"totalCost"`
	TotalProfitLoss float64                    `json:"totalProfitLoss"`
	ByCategory      map[model.Category]float64 `json:"byCategory"`
	Positions       []PositionResponse         `json:"positions"`
	Stale           []string                   `json:"stale"`
	Unresolved      []string                   `json:"unresolved"`
}

// Valuation values a portfolio at current prices.
//
// Endpoint: GET /api/portfolio/{uuid}/valuation
// Query Parameters: currency (optional, ISO 4217; defaults to the portfolio's reporting currency)
// Response: 200 OK with ValuationResponse
// Error: 400 Bad Request if the currency is not a valid code
// Error: 404 Not Found if the portfolio does not exist
func (h *ValuationHandler) Valuation(w http.ResponseWriter, r *http.Request) {
	portfolioID := chi.URLParam(r, "uuid")
	currency := strings.ToUpper(strings.TrimSpace(r.URL.Query().Get("currency")))

	result, err := h.valuationService.ValuatePortfolio(r.Context(), portfolioID, currency)
	if err != nil {
		respondServiceError(w, err, apperrors.ErrFailedToValuate.Error())
		return
	}

	respondJSON(w, http.StatusOK, newValuationResponse(portfolioID, result))
}

func newValuationResponse(portfolioID string, result valuation.Result) ValuationResponse {
	rounded := result.Rounded()
	resp := ValuationResponse{
		PortfolioID:     portfolioID,
		Currency:        rounded.Currency,
		TotalValue:      rounded.TotalValue.InexactFloat64(),
		TotalCost:       rounded.TotalCost.InexactFloat64(),
		TotalProfitLoss: rounded.TotalProfitLoss.InexactFloat64(),
		ByCategory:      make(map[model.Category]float64, len(rounded.ByCategory)),
		Positions:       make([]PositionResponse, len(rounded.Positions)),
		Stale:           rounded.Stale,
		Unresolved:      rounded.Unresolved,
	}
	for c, v := range rounded.ByCategory {
		resp.ByCategory[c] = v.InexactFloat64()
	}
	for i, p := range rounded.Positions {
		resp.Positions[i] = PositionResponse{
			HoldingID:     p.HoldingID,
			Symbol:        p.Symbol,
			Category:      p.Category,
			Quantity:      p.Quantity.InexactFloat64(),
			Price:         p.Price.InexactFloat64(),
			PriceCurrency: p.PriceCurrency,
			Provider:      p.Provider,
			MarketValue:   p.MarketValue.InexactFloat64(),
			CostValue:     p.CostValue.InexactFloat64(),
			ProfitLoss:    p.ProfitLoss.InexactFloat64(),
			Stale:         p.Stale,
			Unresolved:    p.Unresolved,
			Reason:        p.Reason,
		}
	}
	return resp
}

// SnapshotResponse is one point of the value history chart.
type SnapshotResponse struct {
	Date       string  `json:"date"`
	TotalValue float64 `json:"totalValue"`
	Currency   string  `json:"currency"`
}

// Snapshots returns the daily recorded totals of a portfolio.
//
// Endpoint: GET /api/portfolio/{uuid}/snapshots
// Query Parameters:
//   - start_date: Optional, YYYY-MM-DD (defaults to one year before end_date)
//   - end_date: Optional, YYYY-MM-DD (defaults to today, UTC)
//
// Response: 200 OK with []SnapshotResponse
// Error: 400 Bad Request if a date is malformed or start_date is after end_date
// Error: 404 Not Found if the portfolio does not exist
func (h *ValuationHandler) Snapshots(w http.ResponseWriter, r *http.Request) {
	endDate, err := parseDateParam(r, "end_date", time.Now().UTC())
	if err != nil {
		response.RespondError(w, http.StatusBadRequest, apperrors.ErrInvalidDate.Error(), err.Error())
		return
	}
	startDate, err := parseDateParam(r, "start_date", endDate.AddDate(0, 0, -defaultHistoryDays))
	if err != nil {
		response.RespondError(w, http.StatusBadRequest, apperrors.ErrInvalidDate.Error(), err.Error())
		return
	}

	snapshots, err := h.valuationService.Snapshots(r.Context(), chi.URLParam(r, "uuid"), startDate, endDate)
	if err != nil {
		respondServiceError(w, err, apperrors.ErrFailedToRetrieveSnapshots.Error())
		return
	}

	resp := make([]SnapshotResponse, len(snapshots))
	for i, s := range snapshots {
		resp[i] = SnapshotResponse{
			Date:       s.Date.Format(time.DateOnly),
			TotalValue: s.TotalValue.Round(2).InexactFloat64(),
			Currency:   s.Currency,
		}
	}

	respondJSON(w, http.StatusOK, resp)
}

// BenchmarkPointResponse is one recorded benchmark price.
type BenchmarkPointResponse struct {
	Date     string  `json:"date"`
	Price    float64 `json:"price"`
	Currency string  `json:"currency"`
}

// BenchmarkPrices returns the daily recorded benchmark prices, grouped by symbol.
//
// Endpoint: GET /api/benchmarks/prices
// Query Parameters:
//   - symbols: Optional, comma separated (defaults to every configured benchmark)
//   - start_date: Optional, YYYY-MM-DD (defaults to one year before end_date)
//   - end_date: Optional, YYYY-MM-DD (defaults to today, UTC)
//
// Response: 200 OK with map[symbol][]BenchmarkPointResponse
// Error: 400 Bad Request if a date is malformed or start_date is after end_date
func (h *ValuationHandler) BenchmarkPrices(w http.ResponseWriter, r *http.Request) {
	endDate, err := parseDateParam(r, "end_date", time.Now().UTC())
	if err != nil {
		response.RespondError(w, http.StatusBadRequest, apperrors.ErrInvalidDate.Error(), err.Error())
		return
	}
	startDate, err := parseDateParam(r, "start_date", endDate.AddDate(0, 0, -defaultHistoryDays))
	if err != nil {
		response.RespondError(w, http.StatusBadRequest, apperrors.ErrInvalidDate.Error(), err.Error())
		return
	}

	var symbols []string
	for _, s := range strings.Split(r.URL.Query().Get("symbols"), ",") {
		if s = strings.TrimSpace(s); s != "" {
			symbols = append(symbols, s)
		}
	}

	history, err := h.valuationService.BenchmarkHistory(r.Context(), symbols, startDate, endDate)
	if err != nil {
		respondServiceError(w, err, apperrors.ErrFailedToRetrieveBenchmarks.Error())
		return
	}

	resp := make(map[string][]BenchmarkPointResponse, len(history))
	for symbol, prices := range history {
		points := make([]BenchmarkPointResponse, len(prices))
		for i, bp := range prices {
			points[i] = BenchmarkPointResponse{
				Date:     bp.Date.Format(time.DateOnly),
				Price:    bp.Price.InexactFloat64(),
				Currency: bp.Currency,
			}
		}
		resp[symbol] = points
	}

	respondJSON(w, http.StatusOK, resp)
}
