package middleware

import (
	"net/http"
	"time"

	"github.com/go-chi/httprate"

	"github.com/baharkarakas/blog-backend/internal/api/httpx"
	"github.com/baharkarakas/blog-backend/internal/models"
)

// RateLimit allows rps requests per second per client IP. rps <= 0 disables
// limiting.
func RateLimit(rps int) func(http.Handler) http.Handler {
	if rps <= 0 {
		return func(next http.Handler) http.Handler { return next }
	}
	return httprate.Limit(
		rps,
		time.Second,
		httprate.WithKeyFuncs(httprate.KeyByIP),
		httprate.WithLimitHandler(func(w http.ResponseWriter, r *http.Request) {
			httpx.WriteError(w, http.StatusTooManyRequests, models.CodeRateLimited, "too many requests", nil)
		}),
	)
}
