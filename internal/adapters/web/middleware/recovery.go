package middleware

import (
	"fmt"
	"net/http"
	"runtime/debug"

	"github.com/realrushil/website/internal/adapters/web/handlers"
	"github.com/realrushil/website/internal/logging"
)

// Recovery turns a handler panic into a 500. verbose exposes the panic value
// to the client.
func Recovery(verbose bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				rec := recover()
				if rec == nil {
					return
				}
				if rec == http.ErrAbortHandler {
					panic(rec)
				}
				err, ok := rec.(error)
				if !ok {
					err = fmt.Errorf("%v", rec)
				}
				logging.Ctx(r.Context()).Error().
					Err(err).
					Str("method", r.Method).
					Str("path", r.URL.Path).
					Bytes("stack", debug.Stack()).
					Msg("unhandled panic")
				handlers.InternalError(w, r, err, verbose)
			}()
			next.ServeHTTP(w, r)
		})
	}
}
