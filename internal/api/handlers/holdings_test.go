package handlers_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/ndewijer/Wealth-Tracker-Backend/internal/api/handlers"
	"github.com/ndewijer/Wealth-Tracker-Backend/internal/api/request"
	"github.com/ndewijer/Wealth-Tracker-Backend/internal/model"
	"github.com/ndewijer/Wealth-Tracker-Backend/internal/testutil"
	"github.com/ndewijer/Wealth-Tracker-Backend/internal/testutil/testenv"
)

func TestHoldingHandler_Holdings(t *testing.T) {
	t.Run("lists holdings including closed positions", func(t *testing.T) {
		// Setup
		env := testenv.New(t)
		handler := handlers.NewHoldingHandler(env.Holdings)
		p := testutil.NewPortfolio().Build(t, env.DB)
		testutil.NewHolding(p.ID).WithSymbol("AAPL").Build(t, env.DB)
		testutil.NewHolding(p.ID).WithSymbol("MSFT").WithQuantity(0).Build(t, env.DB)

		req := testutil.NewRequestWithURLParams(http.MethodGet, "/api/portfolio/"+p.ID+"/holdings", map[string]string{"uuid": p.ID})
		w := httptest.NewRecorder()

		// Execute
		handler.Holdings(w, req)

		// Assert
		if w.Code != http.StatusOK {
			t.Fatalf("Expected status 200, got %d: %s", w.Code, w.Body.String())
		}
		var response []model.Holding
		if err := json.NewDecoder(w.Body).Decode(&response); err != nil {
			t.Fatalf("Failed to decode response: %v", err)
		}
		if len(response) != 2 {
			t.Errorf("Expected 2 holdings, got %d", len(response))
		}
	})

	t.Run("returns 404 for an unknown portfolio", func(t *testing.T) {
		env := testenv.New(t)
		handler := handlers.NewHoldingHandler(env.Holdings)
		id := testutil.MakeID()

		req := testutil.NewRequestWithURLParams(http.MethodGet, "/api/portfolio/"+id+"/holdings", map[string]string{"uuid": id})
		w := httptest.NewRecorder()

		handler.Holdings(w, req)

		if w.Code != http.StatusNotFound {
			t.Errorf("Expected status 404, got %d", w.Code)
		}
	})
}

func TestHoldingHandler_CreateHolding(t *testing.T) {
	valid := request.CreateHoldingRequest{
		Symbol:    "asml",
		Category:  "equity",
		Exchange:  "AMSTERDAM",
		Quantity:  decimal.NewFromInt(4),
		CostBasis: decimal.RequireFromString("612.40"),
		Currency:  "eur",
	}

	t.Run("creates a holding with normalized symbol and currency", func(t *testing.T) {
		// Setup
		env := testenv.New(t)
		handler := handlers.NewHoldingHandler(env.Holdings)
		p := testutil.NewPortfolio().Build(t, env.DB)

		req := testutil.NewJSONRequestWithURLParams(http.MethodPost, "/api/portfolio/"+p.ID+"/holdings", valid, map[string]string{"uuid": p.ID})
		w := httptest.NewRecorder()

		// Execute
		handler.CreateHolding(w, req)

		// Assert
		if w.Code != http.StatusCreated {
			t.Fatalf("Expected status 201, got %d: %s", w.Code, w.Body.String())
		}
		var response model.Holding
		if err := json.NewDecoder(w.Body).Decode(&response); err != nil {
			t.Fatalf("Failed to decode response: %v", err)
		}
		if response.Symbol != "ASML" || response.Currency != "EUR" || response.Category != model.CategoryEquity {
			t.Errorf("Unexpected holding: %+v", response)
		}
		if !response.CostBasis.Equal(valid.CostBasis) {
			t.Errorf("Expected cost basis %s, got %s", valid.CostBasis, response.CostBasis)
		}
	})

	t.Run("returns 404 for an unknown portfolio", func(t *testing.T) {
		env := testenv.New(t)
		handler := handlers.NewHoldingHandler(env.Holdings)
		id := testutil.MakeID()

		req := testutil.NewJSONRequestWithURLParams(http.MethodPost, "/api/portfolio/"+id+"/holdings", valid, map[string]string{"uuid": id})
		w := httptest.NewRecorder()

		handler.CreateHolding(w, req)

		if w.Code != http.StatusNotFound {
			t.Errorf("Expected status 404, got %d: %s", w.Code, w.Body.String())
		}
	})

	invalid := map[string]func(r *request.CreateHoldingRequest){
		"missing symbol":     func(r *request.CreateHoldingRequest) { r.Symbol = "" },
		"unknown category":   func(r *request.CreateHoldingRequest) { r.Category = "BOND" },
		"negative quantity":  func(r *request.CreateHoldingRequest) { r.Quantity = decimal.NewFromInt(-1) },
		"negative costBasis": func(r *request.CreateHoldingRequest) { r.CostBasis = decimal.NewFromInt(-1) },
		"bad currency":       func(r *request.CreateHoldingRequest) { r.Currency = "EURO" },
	}
	for name, mutate := range invalid {
		t.Run("returns 400 for "+name, func(t *testing.T) {
			env := testenv.New(t)
			handler := handlers.NewHoldingHandler(env.Holdings)
			p := testutil.NewPortfolio().Build(t, env.DB)
			body := valid
			mutate(&body)

			req := testutil.NewJSONRequestWithURLParams(http.MethodPost, "/api/portfolio/"+p.ID+"/holdings", body, map[string]string{"uuid": p.ID})
			w := httptest.NewRecorder()

			handler.CreateHolding(w, req)

			if w.Code != http.StatusBadRequest {
				t.Errorf("Expected status 400, got %d: %s", w.Code, w.Body.String())
			}
		})
	}
}

func TestHoldingHandler_UpdateHolding(t *testing.T) {
	t.Run("records a full sale", func(t *testing.T) {
		// Setup
		env := testenv.New(t)
		handler := handlers.NewHoldingHandler(env.Holdings)
		p := testutil.NewPortfolio().Build(t, env.DB)
		h := testutil.NewHolding(p.ID).WithSymbol("AAPL").WithCostBasis(150).Build(t, env.DB)

		params := map[string]string{"uuid": p.ID, "holdingId": h.ID}
		req := testutil.NewJSONRequestWithURLParams(http.MethodPut, "/api/portfolio/"+p.ID+"/holdings/"+h.ID, `{"quantity":"0"}`, params)
		w := httptest.NewRecorder()

		// Execute
		handler.UpdateHolding(w, req)

		// Assert
		if w.Code != http.StatusOK {
			t.Fatalf("Expected status 200, got %d: %s", w.Code, w.Body.String())
		}
		var response model.Holding
		if err := json.NewDecoder(w.Body).Decode(&response); err != nil {
			t.Fatalf("Failed to decode response: %v", err)
		}
		if !response.Quantity.IsZero() {
			t.Errorf("Expected quantity 0, got %s", response.Quantity)
		}
		if !response.CostBasis.Equal(decimal.NewFromInt(150)) {
			t.Errorf("Expected cost basis to be kept, got %s", response.CostBasis)
		}
	})

	t.Run("returns 400 for an invalid holding ID", func(t *testing.T) {
		env := testenv.New(t)
		handler := handlers.NewHoldingHandler(env.Holdings)
		p := testutil.NewPortfolio().Build(t, env.DB)

		params := map[string]string{"uuid": p.ID, "holdingId": "not-a-uuid"}
		req := testutil.NewJSONRequestWithURLParams(http.MethodPut, "/api/portfolio/"+p.ID+"/holdings/not-a-uuid", `{"quantity":"1"}`, params)
		w := httptest.NewRecorder()

		handler.UpdateHolding(w, req)

		if w.Code != http.StatusBadRequest {
			t.Errorf("Expected status 400, got %d", w.Code)
		}
	})

	t.Run("returns 400 for an empty update", func(t *testing.T) {
		env := testenv.New(t)
		handler := handlers.NewHoldingHandler(env.Holdings)
		p := testutil.NewPortfolio().Build(t, env.DB)
		h := testutil.NewHolding(p.ID).Build(t, env.DB)

		params := map[string]string{"uuid": p.ID, "holdingId": h.ID}
		req := testutil.NewJSONRequestWithURLParams(http.MethodPut, "/api/portfolio/"+p.ID+"/holdings/"+h.ID, `{}`, params)
		w := httptest.NewRecorder()

		handler.UpdateHolding(w, req)

		if w.Code != http.StatusBadRequest {
			t.Errorf("Expected status 400, got %d", w.Code)
		}
	})

	t.Run("returns 404 when the holding belongs to another portfolio", func(t *testing.T) {
		env := testenv.New(t)
		handler := handlers.NewHoldingHandler(env.Holdings)
		p := testutil.NewPortfolio().Build(t, env.DB)
		other := testutil.NewPortfolio().Build(t, env.DB)
		h := testutil.NewHolding(other.ID).Build(t, env.DB)

		params := map[string]string{"uuid": p.ID, "holdingId": h.ID}
		req := testutil.NewJSONRequestWithURLParams(http.MethodPut, "/api/portfolio/"+p.ID+"/holdings/"+h.ID, `{"quantity":"1"}`, params)
		w := httptest.NewRecorder()

		handler.UpdateHolding(w, req)

		if w.Code != http.StatusNotFound {
			t.Errorf("Expected status 404, got %d: %s", w.Code, w.Body.String())
		}
	})
}
