package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/ndewijer/Wealth-Tracker-Backend/internal/api/request"
	"github.com/ndewijer/Wealth-Tracker-Backend/internal/api/response"
	"github.com/ndewijer/Wealth-Tracker-Backend/internal/apperrors"
	"github.com/ndewijer/Wealth-Tracker-Backend/internal/service"
	"github.com/ndewijer/Wealth-Tracker-Backend/internal/validation"
)

// HoldingHandler handles the positions of a portfolio.
type HoldingHandler struct {
	holdingService *service.HoldingService
}

// NewHoldingHandler creates a new HoldingHandler
func NewHoldingHandler(holdingService *service.HoldingService) *HoldingHandler {
	return &HoldingHandler{
		holdingService: holdingService,
	}
}

// Holdings lists the holdings of a portfolio, fully sold ones included.
//
// Endpoint: GET /api/portfolio/{uuid}/holdings
// Response: 200 OK with []model.Holding
// Error: 404 Not Found if the portfolio does not exist
func (h *HoldingHandler) Holdings(w http.ResponseWriter, r *http.Request) {
	holdings, err := h.holdingService.GetHoldings(r.Context(), chi.URLParam(r, "uuid"))
	if err != nil {
		respondServiceError(w, err, apperrors.ErrFailedToRetrieveHoldings.Error())
		return
	}

	respondJSON(w, http.StatusOK, holdings)
}

// CreateHolding adds a holding to a portfolio.
//
// Endpoint: POST /api/portfolio/{uuid}/holdings
// Request Body: CreateHoldingRequest
// Response: 201 Created with model.Holding
// Error: 400 Bad Request if validation fails
// Error: 404 Not Found if the portfolio does not exist
func (h *HoldingHandler) CreateHolding(w http.ResponseWriter, r *http.Request) {
	req, err := parseJSON[request.CreateHoldingRequest](r)
	if err != nil {
		response.RespondError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	if err := validation.ValidateCreateHolding(req); err != nil {
		response.RespondError(w, http.StatusBadRequest, "validation failed", err.Error())
		return
	}

	holding, err := h.holdingService.CreateHolding(r.Context(), chi.URLParam(r, "uuid"), req)
	if err != nil {
		respondServiceError(w, err, "failed to create holding")
		return
	}

	response.RespondJSON(w, http.StatusCreated, holding)
}

// UpdateHolding changes quantity and/or cost basis of a holding.
//
// Endpoint: PUT /api/portfolio/{uuid}/holdings/{holdingId}
// Request Body: UpdateHoldingRequest (all fields optional, at least one required)
// Response: 200 OK with model.Holding
// Error: 400 Bad Request if the holding ID is invalid or validation fails
// Error: 404 Not Found if the holding does not belong to the portfolio
func (h *HoldingHandler) UpdateHolding(w http.ResponseWriter, r *http.Request) {
	holdingID := chi.URLParam(r, "holdingId")
	if err := validation.ValidateUUID(holdingID); err != nil {
		response.RespondError(w, http.StatusBadRequest, "invalid holding ID", err.Error())
		return
	}

	req, err := parseJSON[request.UpdateHoldingRequest](r)
	if err != nil {
		response.RespondError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	if err := validation.ValidateUpdateHolding(req); err != nil {
		response.RespondError(w, http.StatusBadRequest, "validation failed", err.Error())
		return
	}

	holding, err := h.holdingService.UpdateHolding(r.Context(), chi.URLParam(r, "uuid"), holdingID, req)
	if err != nil {
		respondServiceError(w, err, "failed to update holding")
		return
	}

	respondJSON(w, http.StatusOK, holding)
}
