package middleware

import (
	"net/http"
	"time"

	"github.com/realrushil/website/internal/adapters/web/handlers"
	"github.com/realrushil/website/internal/logging"
)

// AccessLog writes one line per request.
func AccessLog(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := newStatusRecorder(w)

		next.ServeHTTP(rec, r)

		log := logging.Ctx(r.Context())
		event := log.Info()
		if rec.status >= http.StatusInternalServerError {
			event = log.Error()
		} else if rec.status >= http.StatusBadRequest {
			event = log.Warn()
		}
		event.
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", rec.status).
			Dur("duration", time.Since(start)).
			Str("source", handlers.SourceIdentity(r, false)).
			Str("forwarded_for", r.Header.Get("X-Forwarded-For")).
			Msg("http request")
	})
}
