package handlers

import (
	"net/http"

	"github.com/realrushil/website/internal/core/services/status"
)

// HealthHandler reports liveness.
type HealthHandler struct {
	Assembler *status.Assembler
}

// NewHealthHandler creates a new HealthHandler
func NewHealthHandler(assembler *status.Assembler) *HealthHandler {
	return &HealthHandler{Assembler: assembler}
}

func (h *HealthHandler) HandleHealth(w http.ResponseWriter, r *http.Request) {
	setCORS(w, "GET, OPTIONS")
	if !preflight(w, r, http.MethodGet) {
		return
	}
	writeJSON(w, r, http.StatusOK, h.Assembler.Health())
}
