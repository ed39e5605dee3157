package handlers_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/ndewijer/Wealth-Tracker-Backend/internal/api/handlers"
	"github.com/ndewijer/Wealth-Tracker-Backend/internal/api/request"
	"github.com/ndewijer/Wealth-Tracker-Backend/internal/model"
	"github.com/ndewijer/Wealth-Tracker-Backend/internal/testutil"
	"github.com/ndewijer/Wealth-Tracker-Backend/internal/testutil/testenv"
)

func TestPortfolioHandler_Portfolios(t *testing.T) {
	t.Run("returns 200 with empty array", func(t *testing.T) {
		// Setup
		env := testenv.New(t)
		handler := handlers.NewPortfolioHandler(env.Portfolios)

		req := httptest.NewRequest(http.MethodGet, "/api/portfolio/", nil)
		w := httptest.NewRecorder()

		// Execute
		handler.Portfolios(w, req)

		// Assert
		if w.Code != http.StatusOK {
			t.Errorf("Expected status 200, got %d", w.Code)
		}
		if ct := w.Header().Get("Content-Type"); ct != "application/json" {
			t.Errorf("Expected Content-Type 'application/json', got '%s'", ct)
		}
		if body := w.Body.String(); body != "[]\n" {
			t.Errorf("Expected empty JSON array, got %q", body)
		}
	})

	t.Run("hides archived portfolios unless asked", func(t *testing.T) {
		// Setup
		env := testenv.New(t)
		handler := handlers.NewPortfolioHandler(env.Portfolios)
		testutil.CreatePortfolio(t, env.DB, "Active")
		testutil.NewPortfolio().WithName("Old").Archived().Build(t, env.DB)

		for query, want := range map[string]int{"": 1, "?include_archived=true": 2} {
			req := httptest.NewRequest(http.MethodGet, "/api/portfolio/"+query, nil)
			w := httptest.NewRecorder()

			// Execute
			handler.Portfolios(w, req)

			// Assert
			if w.Code != http.StatusOK {
				t.Fatalf("Expected status 200, got %d", w.Code)
			}
			var response []model.Portfolio
			if err := json.NewDecoder(w.Body).Decode(&response); err != nil {
				t.Fatalf("Failed to decode response: %v", err)
			}
			if len(response) != want {
				t.Errorf("query %q: expected %d portfolios, got %d", query, want, len(response))
			}
		}
	})

	t.Run("rejects a non-boolean include_archived", func(t *testing.T) {
		env := testenv.New(t)
		handler := handlers.NewPortfolioHandler(env.Portfolios)

		req := httptest.NewRequest(http.MethodGet, "/api/portfolio/?include_archived=maybe", nil)
		w := httptest.NewRecorder()

		handler.Portfolios(w, req)

		if w.Code != http.StatusBadRequest {
			t.Errorf("Expected status 400, got %d", w.Code)
		}
	})
}

func TestPortfolioHandler_Portfolio(t *testing.T) {
	t.Run("returns the portfolio", func(t *testing.T) {
		env := testenv.New(t)
		handler := handlers.NewPortfolioHandler(env.Portfolios)
		p := testutil.NewPortfolio().WithReportingCurrency("USD").Build(t, env.DB)

		req := testutil.NewRequestWithURLParams(http.MethodGet, "/api/portfolio/"+p.ID, map[string]string{"uuid": p.ID})
		w := httptest.NewRecorder()

		handler.Portfolio(w, req)

		if w.Code != http.StatusOK {
			t.Fatalf("Expected status 200, got %d: %s", w.Code, w.Body.String())
		}
		var response model.Portfolio
		if err := json.NewDecoder(w.Body).Decode(&response); err != nil {
			t.Fatalf("Failed to decode response: %v", err)
		}
		if response.ID != p.ID || response.ReportingCurrency != "USD" {
			t.Errorf("Expected %+v, got %+v", p, response)
		}
	})

	t.Run("returns 404 for an unknown portfolio", func(t *testing.T) {
		env := testenv.New(t)
		handler := handlers.NewPortfolioHandler(env.Portfolios)
		id := testutil.MakeID()

		req := testutil.NewRequestWithURLParams(http.MethodGet, "/api/portfolio/"+id, map[string]string{"uuid": id})
		w := httptest.NewRecorder()

		handler.Portfolio(w, req)

		if w.Code != http.StatusNotFound {
			t.Errorf("Expected status 404, got %d", w.Code)
		}
	})
}

func TestPortfolioHandler_CreatePortfolio(t *testing.T) {
	t.Run("creates a portfolio with the default currency", func(t *testing.T) {
		// Setup
		env := testenv.New(t)
		handler := handlers.NewPortfolioHandler(env.Portfolios)
		body := request.CreatePortfolioRequest{Name: "  Retirement  "}

		req := testutil.NewJSONRequestWithURLParams(http.MethodPost, "/api/portfolio/", body, nil)
		w := httptest.NewRecorder()

		// Execute
		handler.CreatePortfolio(w, req)

		// Assert
		if w.Code != http.StatusCreated {
			t.Fatalf("Expected status 201, got %d: %s", w.Code, w.Body.String())
		}
		var response model.Portfolio
		if err := json.NewDecoder(w.Body).Decode(&response); err != nil {
			t.Fatalf("Failed to decode response: %v", err)
		}
		if response.ID == "" {
			t.Error("Expected an ID to be assigned")
		}
		if response.Name != "Retirement" {
			t.Errorf("Expected trimmed name, got %q", response.Name)
		}
		if response.ReportingCurrency != "EUR" {
			t.Errorf("Expected EUR, got %q", response.ReportingCurrency)
		}
	})

	tests := []struct {
		name string
		body any
	}{
		{"missing name", request.CreatePortfolioRequest{}},
		{"unknown currency", request.CreatePortfolioRequest{Name: "X", ReportingCurrency: "EURO"}},
		{"unknown field", `{"name":"X","owner":"me"}`},
		{"malformed JSON", `{"name":`},
	}
	for _, tt := range tests {
		t.Run("returns 400 for "+tt.name, func(t *testing.T) {
			env := testenv.New(t)
			handler := handlers.NewPortfolioHandler(env.Portfolios)

			req := testutil.NewJSONRequestWithURLParams(http.MethodPost, "/api/portfolio/", tt.body, nil)
			w := httptest.NewRecorder()

			handler.CreatePortfolio(w, req)

			if w.Code != http.StatusBadRequest {
				t.Errorf("Expected status 400, got %d: %s", w.Code, w.Body.String())
			}
		})
	}
}
