package handlers

import (
	"io/fs"
	"net/http"
)

// LandingHandler serves the static site at / and forwards sensor posts that
// target the root to the probe handler.
type LandingHandler struct {
	Site  fs.FS
	Probe *ProbeHandler
}

// NewLandingHandler creates a new LandingHandler
func NewLandingHandler(site fs.FS, probe *ProbeHandler) *LandingHandler {
	return &LandingHandler{Site: site, Probe: probe}
}

func (h *LandingHandler) HandleRoot(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPost, http.MethodOptions:
		h.Probe.HandleProbe(w, r)
	case http.MethodGet, http.MethodHead:
		http.ServeFileFS(w, r, h.Site, "index.html")
	default:
		writeJSON(w, r, http.StatusMethodNotAllowed, ErrorResponse{
			Error:   "Method not allowed",
			Message: "Only GET and POST requests are accepted",
		})
	}
}
