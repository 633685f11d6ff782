package middleware

import (
	"net/http"

	"github.com/go-chi/cors"
)

// CORS answers browser preflights for routes that declare their own methods.
// Simple requests pass through; handlers set their own response headers.
func CORS(methods ...string) func(http.Handler) http.Handler {
	return cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: methods,
		AllowedHeaders: []string{"Content-Type", RequestIDHeader},
		ExposedHeaders: []string{RequestIDHeader},
		MaxAge:         300,
	})
}
