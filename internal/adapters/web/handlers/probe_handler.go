package handlers

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/realrushil/website/internal/core/services/ingest"
	"github.com/realrushil/website/internal/logging"
)

// DefaultMaxBodyBytes caps sensor payloads.
const DefaultMaxBodyBytes = 10 << 20

// ProbeResponse acknowledges an accepted reading.
type ProbeResponse struct {
	Status          string `json:"status"`
	Message         string `json:"message"`
	ServerTimestamp string `json:"server_timestamp"`
}

// ProbeHandler receives sensor readings.
type ProbeHandler struct {
	Pipeline     *ingest.Pipeline
	MaxBodyBytes int64
	TrustProxy   bool
}

// NewProbeHandler creates a new ProbeHandler
func NewProbeHandler(pipeline *ingest.Pipeline, maxBodyBytes int64) *ProbeHandler {
	if maxBodyBytes <= 0 {
		maxBodyBytes = DefaultMaxBodyBytes
	}
	return &ProbeHandler{
		Pipeline:     pipeline,
		MaxBodyBytes: maxBodyBytes,
	}
}

// HandleProbe runs one submission through the ingest pipeline
func (h *ProbeHandler) HandleProbe(w http.ResponseWriter, r *http.Request) {
	setCORS(w, "POST, OPTIONS")
	if !preflight(w, r, http.MethodPost) {
		return
	}

	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, h.MaxBodyBytes))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeJSON(w, r, http.StatusRequestEntityTooLarge, ErrorResponse{
				Error:   "Payload too large",
				Message: "Request body exceeds the size limit",
			})
			return
		}
		logging.Ctx(r.Context()).Warn().Err(err).Msg("failed to read probe body")
		writeJSON(w, r, http.StatusBadRequest, ErrorResponse{
			Error:   "Invalid data format",
			Message: "Could not read request body",
		})
		return
	}

	res := h.Pipeline.IngestBody(r.Context(), body, SourceIdentity(r, h.TrustProxy))

	switch res.Reason {
	case ingest.ReasonTooManyRequests:
		writeJSON(w, r, http.StatusTooManyRequests, ErrorResponse{
			Error:   "Too many requests",
			Message: rateLimitMessage(h.Pipeline.Policy()),
		})
	case ingest.ReasonInvalidFormat:
		resp := ErrorResponse{Error: "Invalid data format"}
		if res.Detail != nil {
			resp.Message = res.Detail.Message
			resp.Kind = string(res.Detail.Kind)
			resp.Field = res.Detail.Field
		}
		writeJSON(w, r, http.StatusBadRequest, resp)
	default:
		writeJSON(w, r, http.StatusOK, ProbeResponse{
			Status:          "success",
			Message:         "Data received successfully",
			ServerTimestamp: res.ServerTimestamp,
		})
	}
}

func rateLimitMessage(p ingest.Policy) string {
	per := p.Window.String()
	if p.Window == time.Minute {
		per = "minute"
	}
	return fmt.Sprintf("Rate limit exceeded. Max %d requests per %s.", p.MaxRequests, per)
}
