package handlers

import (
	"bytes"
	"net/http"

	"github.com/realrushil/website/internal/core/services/status"
	"github.com/realrushil/website/internal/logging"
)

// StatusHandler serves the JSON and HTML status views.
type StatusHandler struct {
	Assembler *status.Assembler
	Verbose   bool // include error details in 500 bodies
}

// NewStatusHandler creates a new StatusHandler
func NewStatusHandler(assembler *status.Assembler, verbose bool) *StatusHandler {
	return &StatusHandler{Assembler: assembler, Verbose: verbose}
}

// HandleStatus returns JSON unless format=html is requested
func (h *StatusHandler) HandleStatus(w http.ResponseWriter, r *http.Request) {
	setCORS(w, "GET, OPTIONS")
	if !preflight(w, r, http.MethodGet) {
		return
	}

	if r.URL.Query().Get("format") == "html" {
		var buf bytes.Buffer
		if err := h.Assembler.RenderHTML(r.Context(), &buf); err != nil {
			logging.Ctx(r.Context()).Error().Err(err).Msg("dashboard render failed")
			InternalError(w, r, err, h.Verbose)
			return
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(buf.Bytes())
		return
	}

	writeJSON(w, r, http.StatusOK, h.Assembler.Payload(r.Context()))
}
