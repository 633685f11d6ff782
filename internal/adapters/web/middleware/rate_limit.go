package middleware

import (
	"net/http"
	"time"

	"github.com/go-chi/httprate"

	"github.com/realrushil/website/internal/adapters/web/handlers"
)

// StatusRateLimit limits viewers per source identity. A non-positive limit
// disables it.
func StatusRateLimit(limit int, window time.Duration, trustProxy bool) func(http.Handler) http.Handler {
	if limit <= 0 {
		return func(next http.Handler) http.Handler { return next }
	}
	return httprate.Limit(
		limit,
		window,
		httprate.WithKeyFuncs(func(r *http.Request) (string, error) {
			return handlers.SourceIdentity(r, trustProxy), nil
		}),
		httprate.WithLimitHandler(func(w http.ResponseWriter, r *http.Request) {
			handlers.WriteJSON(w, r, http.StatusTooManyRequests, handlers.ErrorResponse{
				Error: "Too many status requests",
			})
		}),
	)
}
