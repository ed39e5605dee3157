package api_test

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"

	"github.com/ndewijer/Wealth-Tracker-Backend/internal/api"
	"github.com/ndewijer/Wealth-Tracker-Backend/internal/config"
	"github.com/ndewijer/Wealth-Tracker-Backend/internal/testutil"
	"github.com/ndewijer/Wealth-Tracker-Backend/internal/testutil/testenv"
)

func newTestRouter(t *testing.T) (http.Handler, *testenv.Env) {
	t.Helper()
	env := testenv.New(t)
	cfg := &config.Config{
		CORS: config.CORSConfig{AllowedOrigins: []string{"http://localhost:3000"}},
		Cron: config.CronConfig{Secret: "s3cret"},
	}
	svc := api.Services{
		System:      env.System,
		Portfolio:   env.Portfolios,
		Holding:     env.Holdings,
		Valuation:   env.Valuation,
		Market:      env.Market,
		PriceUpdate: env.PriceUpdate,
	}
	return api.NewRouter(svc, cfg, zerolog.Nop()), env
}

func TestRouter(t *testing.T) {
	router, env := newTestRouter(t)
	p := testutil.NewPortfolio().Build(t, env.DB)

	tests := []struct {
		name   string
		method string
		path   string
		body   string
		auth   string
		want   int
	}{
		{"health", http.MethodGet, "/api/system/health", "", "", http.StatusOK},
		{"version", http.MethodGet, "/api/system/version", "", "", http.StatusOK},
		{"list portfolios", http.MethodGet, "/api/portfolio/", "", "", http.StatusOK},
		{"create portfolio", http.MethodPost, "/api/portfolio/", `{"name":"Savings"}`, "", http.StatusCreated},
		{"get portfolio", http.MethodGet, "/api/portfolio/" + p.ID, "", "", http.StatusOK},
		{"invalid portfolio id", http.MethodGet, "/api/portfolio/not-a-uuid", "", "", http.StatusBadRequest},
		{"holdings", http.MethodGet, "/api/portfolio/" + p.ID + "/holdings", "", "", http.StatusOK},
		{"valuation", http.MethodGet, "/api/portfolio/" + p.ID + "/valuation", "", "", http.StatusOK},
		{"snapshots", http.MethodGet, "/api/portfolio/" + p.ID + "/snapshots", "", "", http.StatusOK},
		{"exchange rates", http.MethodGet, "/api/exchange-rates", "", "", http.StatusOK},
		{"benchmark prices", http.MethodGet, "/api/benchmarks/prices?symbols=%5EGSPC", "", "", http.StatusOK},
		{"price without symbol", http.MethodGet, "/api/market/price", "", "", http.StatusBadRequest},
		{"cron without token", http.MethodGet, "/api/cron/daily-snapshot", "", "", http.StatusUnauthorized},
		{"cron with token", http.MethodGet, "/api/cron/daily-snapshot", "", "Bearer s3cret", http.StatusOK},
		{"unknown route", http.MethodGet, "/api/nope", "", "", http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, tt.path, strings.NewReader(tt.body))
			if tt.auth != "" {
				req.Header.Set("Authorization", tt.auth)
			}
			w := httptest.NewRecorder()

			router.ServeHTTP(w, req)

			assert.Equal(t, tt.want, w.Code, w.Body.String())
		})
	}
}
