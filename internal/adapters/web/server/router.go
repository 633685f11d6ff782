package server

import (
	"fmt"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/realrushil/website/internal/adapters/web/handlers"
	"github.com/realrushil/website/internal/adapters/web/middleware"
)

// AvailableEndpoints is listed in 404 replies.
var AvailableEndpoints = []string{
	"GET /",
	"POST /",
	"POST /api/probe",
	"GET /status",
	"GET /status?format=html",
	"GET /api/status",
	"GET /health",
	"GET /api/health",
	"GET /ws",
	"GET /metrics",
}

// NotFoundResponse is the 404 body.
type NotFoundResponse struct {
	Error              string   `json:"error"`
	Message            string   `json:"message"`
	AvailableEndpoints []string `json:"available_endpoints"`
}

func SetupRoutes(s *Server) http.Handler {
	r := mux.NewRouter()
	r.Use(middleware.Metrics)

	probeCORS := middleware.CORS(http.MethodGet, http.MethodPost, http.MethodOptions)
	readCORS := middleware.CORS(http.MethodGet, http.MethodOptions)
	statusLimit := middleware.StatusRateLimit(s.opts.StatusRateLimit, s.opts.StatusWindow, s.opts.TrustProxy)

	// Sensor posts land on / as well as /api/probe
	r.Handle("/", probeCORS(http.HandlerFunc(s.LandingHandler.HandleRoot)))
	r.Handle("/api/probe", probeCORS(http.HandlerFunc(s.ProbeHandler.HandleProbe)))

	statusHandler := readCORS(statusLimit(http.HandlerFunc(s.StatusHandler.HandleStatus)))
	r.Handle("/status", statusHandler)
	r.Handle("/api/status", statusHandler)

	healthHandler := readCORS(http.HandlerFunc(s.HealthHandler.HandleHealth))
	r.Handle("/health", healthHandler)
	r.Handle("/api/health", healthHandler)

	if s.Hub != nil {
		r.HandleFunc("/ws", s.Hub.HandleWebSocket).Methods(http.MethodGet)
	}
	r.Handle("/metrics", promhttp.Handler()).Methods(http.MethodGet)

	r.NotFoundHandler = http.HandlerFunc(notFound)
	r.MethodNotAllowedHandler = http.HandlerFunc(methodNotAllowed)

	var h http.Handler = r
	h = middleware.AccessLog(h)
	h = middleware.Recovery(s.opts.Verbose)(h)
	h = middleware.RequestID(h)
	return h
}

func notFound(w http.ResponseWriter, r *http.Request) {
	handlers.WriteJSON(w, r, http.StatusNotFound, NotFoundResponse{
		Error:              "Not found",
		Message:            fmt.Sprintf("Route %s %s not found", r.Method, r.URL.Path),
		AvailableEndpoints: AvailableEndpoints,
	})
}

func methodNotAllowed(w http.ResponseWriter, r *http.Request) {
	handlers.WriteJSON(w, r, http.StatusMethodNotAllowed, handlers.ErrorResponse{
		Error:   "Method not allowed",
		Message: "Only GET requests are accepted",
	})
}
