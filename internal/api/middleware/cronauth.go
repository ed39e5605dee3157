package middleware

import (
	"crypto/subtle"
	"net/http"
	"strings"

	"github.com/ndewijer/Wealth-Tracker-Backend/internal/api/response"
)

// CronAuth rejects requests that do not carry "Authorization: Bearer <secret>".
//
// An empty secret refuses every request with 500 rather than leaving the
// triggers open.
func CronAuth(secret string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if secret == "" {
				response.RespondError(w, http.StatusInternalServerError, "cron trigger not configured", "CRON_SECRET is not set")
				return
			}

			header := r.Header.Get("Authorization")
			if header == "" {
				response.RespondError(w, http.StatusUnauthorized, "unauthorized", "Missing bearer token")
				return
			}

			token, ok := strings.CutPrefix(header, "Bearer ")
			if !ok || subtle.ConstantTimeCompare([]byte(token), []byte(secret)) != 1 {
				response.RespondError(w, http.StatusUnauthorized, "unauthorized", "Invalid bearer token")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
