package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/ndewijer/Wealth-Tracker-Backend/internal/api/response"
	"github.com/ndewijer/Wealth-Tracker-Backend/internal/model"
	"github.com/ndewijer/Wealth-Tracker-Backend/internal/service"
)

// CronHandler serves the externally scheduled triggers. Authentication is
// done by middleware.CronAuth before these run.
type CronHandler struct {
	priceUpdateService *service.PriceUpdateService
	valuationService   *service.ValuationService
	now                func() time.Time
}

// NewCronHandler creates a new CronHandler
func NewCronHandler(priceUpdateService *service.PriceUpdateService, valuationService *service.ValuationService) *CronHandler {
	return &CronHandler{
		priceUpdateService: priceUpdateService,
		valuationService:   valuationService,
		now:                time.Now,
	}
}

// SkippedResponse is returned when a trigger arrives during quiet hours.
type SkippedResponse struct {
	Success bool   `json:"success"`
	Skipped bool   `json:"skipped"`
	Message string `json:"message"`
}

// UpdatePrices runs a full price update.
//
// Endpoint: GET /api/cron/update-prices
// Headers: Authorization: Bearer <CRON_SECRET>
// Query Parameters: force (optional, bool) runs even inside quiet hours
// Response: 200 OK with model.PriceUpdateSummary, or SkippedResponse during quiet hours
// Error: 500 Internal Server Error if the run could not start
func (h *CronHandler) UpdatePrices(w http.ResponseWriter, r *http.Request) {
	force, _ := strconv.ParseBool(r.URL.Query().Get("force"))
	if !force && h.priceUpdateService.InQuietHours(h.now()) {
		respondJSON(w, http.StatusOK, SkippedResponse{
			Success: true,
			Skipped: true,
			Message: "skipped: quiet hours",
		})
		return
	}

	summary := h.priceUpdateService.Run(r.Context())
	if !summary.Success {
		respondJSON(w, http.StatusInternalServerError, summary)
		return
	}

	respondJSON(w, http.StatusOK, summary)
}

// DailySnapshotResponse reports the snapshots and benchmark prices recorded by DailySnapshot.
type DailySnapshotResponse struct {
	Success    bool                     `json:"success"`
	Snapshots  []model.SnapshotOutcome  `json:"snapshots"`
	Benchmarks []model.BenchmarkOutcome `json:"benchmarks"`
}

// DailySnapshot values every portfolio from cached prices and records today's
// snapshot, then records today's benchmark prices. Only benchmarks missing
// from the cache reach a provider.
//
// Endpoint: GET /api/cron/daily-snapshot
// Headers: Authorization: Bearer <CRON_SECRET>
// Response: 200 OK with DailySnapshotResponse
// Error: 500 Internal Server Error if portfolios cannot be listed
func (h *CronHandler) DailySnapshot(w http.ResponseWriter, r *http.Request) {
	run, err := h.valuationService.SnapshotAll(r.Context(), nil, nil)
	if err != nil {
		response.RespondError(w, http.StatusInternalServerError, "failed to record snapshots", err.Error())
		return
	}

	respondJSON(w, http.StatusOK, DailySnapshotResponse{
		Success:    true,
		Snapshots:  run.Portfolios,
		Benchmarks: run.Benchmarks,
	})
}
