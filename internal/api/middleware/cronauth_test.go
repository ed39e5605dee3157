package middleware_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/ndewijer/Wealth-Tracker-Backend/internal/api/middleware"
)

func TestCronAuth(t *testing.T) {
	const secret = "cron-secret-12345"

	tests := []struct {
		name        string
		secret      string
		header      string
		wantStatus  int
		wantCalled  bool
		wantDetails string
	}{
		{
			name:        "rejects request without token",
			secret:      secret,
			wantStatus:  http.StatusUnauthorized,
			wantDetails: "Missing bearer token",
		},
		{
			name:        "rejects wrong token",
			secret:      secret,
			header:      "Bearer nope",
			wantStatus:  http.StatusUnauthorized,
			wantDetails: "Invalid bearer token",
		},
		{
			name:        "rejects token without bearer prefix",
			secret:      secret,
			header:      secret,
			wantStatus:  http.StatusUnauthorized,
			wantDetails: "Invalid bearer token",
		},
		{
			name:       "accepts matching token",
			secret:     secret,
			header:     "Bearer " + secret,
			wantStatus: http.StatusOK,
			wantCalled: true,
		},
		{
			name:        "refuses everything when no secret is configured",
			header:      "Bearer ",
			wantStatus:  http.StatusInternalServerError,
			wantDetails: "CRON_SECRET is not set",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			called := false
			next := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				called = true
				w.WriteHeader(http.StatusOK)
			})

			req := httptest.NewRequest(http.MethodGet, "/api/cron/update-prices", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			w := httptest.NewRecorder()

			middleware.CronAuth(tt.secret)(next).ServeHTTP(w, req)

			if called != tt.wantCalled {
				t.Errorf("handler called = %v, want %v", called, tt.wantCalled)
			}
			if w.Code != tt.wantStatus {
				t.Errorf("Expected %d, got %d", tt.wantStatus, w.Code)
			}
			if tt.wantDetails == "" {
				return
			}

			var body map[string]any
			if err := json.NewDecoder(w.Body).Decode(&body); err != nil {
				t.Fatalf("failed to decode response: %v", err)
			}
			if body["details"] != tt.wantDetails {
				t.Errorf("Expected details %q, got %v", tt.wantDetails, body["details"])
			}
		})
	}
}
