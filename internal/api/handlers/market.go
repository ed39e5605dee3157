package handlers

import (
	"net/http"
	"strings"
	"time"

	"github.com/ndewijer/Wealth-Tracker-Backend/internal/api/response"
	"github.com/ndewijer/Wealth-Tracker-Backend/internal/apperrors"
	"github.com/ndewijer/Wealth-Tracker-Backend/internal/model"
	"github.com/ndewijer/Wealth-Tracker-Backend/internal/service"
)

// MarketHandler serves lookups that do not belong to a portfolio.
type MarketHandler struct {
	marketService *service.MarketService
}

// NewMarketHandler creates a new MarketHandler
func NewMarketHandler(marketService *service.MarketService) *MarketHandler {
	return &MarketHandler{
		marketService: marketService,
	}
}

// PriceResponse represents a resolved price.
type PriceResponse struct {
	Symbol      string    `json:"symbol"`
	Price       float64   `json:"price"`
	Currency    string    `json:"currency"`
	Provider    string    `json:"provider"`
	Status      string    `json:"status"`
	FromCache   bool      `json:"fromCache"`
	ObservedAt  time.Time `json:"observedAt"`
	RefreshedAt time.Time `json:"refreshedAt"`
}

// Price resolves the current price of one instrument.
//
// Endpoint: GET /api/market/price
// Query Parameters:
//   - symbol: Required
//   - category: Optional, defaults to EQUITY
//   - exchange: Optional hint such as BIST or AMSTERDAM
//
// Response: 200 OK with PriceResponse (status "stale" when served from an old cache entry)
// Error: 400 Bad Request if symbol or category is invalid
// Error: 502 Bad Gateway if no provider could price the instrument
func (h *MarketHandler) Price(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	symbol := strings.TrimSpace(q.Get("symbol"))
	if symbol == "" {
		response.RespondError(w, http.StatusBadRequest, apperrors.ErrInvalidSymbol.Error(), "")
		return
	}

	category := model.CategoryEquity
	if raw := q.Get("category"); raw != "" {
		c, err := model.ParseCategory(raw)
		if err != nil {
			response.RespondError(w, http.StatusBadRequest, apperrors.ErrInvalidCategory.Error(), err.Error())
			return
		}
		category = c
	}

	res, err := h.marketService.Price(r.Context(), model.Instrument{
		Symbol:   symbol,
		Category: category,
		Exchange: q.Get("exchange"),
	})
	if err != nil {
		respondServiceError(w, err, "failed to resolve price")
		return
	}

	respondJSON(w, http.StatusOK, PriceResponse{
		Symbol:      res.Record.Symbol,
		Price:       res.Record.Price.InexactFloat64(),
		Currency:    res.Record.Currency,
		Provider:    res.Record.Provider,
		Status:      res.Status.String(),
		FromCache:   res.FromCache,
		ObservedAt:  res.Record.ObservedAt,
		RefreshedAt: res.Record.RefreshedAt,
	})
}

// Search looks up symbols by name or ticker.
//
// Endpoint: GET /api/market/search?q=
// Response: 200 OK with []model.SearchResult
// Error: 400 Bad Request if q is empty
// Error: 503 Service Unavailable if symbol search is not configured
func (h *MarketHandler) Search(w http.ResponseWriter, r *http.Request) {
	results, err := h.marketService.Search(r.Context(), r.URL.Query().Get("q"))
	if err != nil {
		respondServiceError(w, err, "symbol search failed")
		return
	}

	respondJSON(w, http.StatusOK, results)
}

// ExchangeRates returns the exchange rates in effect, relative to EUR.
//
// Endpoint: GET /api/exchange-rates
// Response: 200 OK with model.RateTable
// Error: 500 Internal Server Error if the rate store cannot be read
func (h *MarketHandler) ExchangeRates(w http.ResponseWriter, r *http.Request) {
	table, err := h.marketService.ExchangeRates(r.Context())
	if err != nil {
		response.RespondError(w, http.StatusInternalServerError, apperrors.ErrFailedToRetrieveRates.Error(), err.Error())
		return
	}

	respondJSON(w, http.StatusOK, table)
}
