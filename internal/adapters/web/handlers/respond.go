package handlers

import (
	"net"
	"net/http"
	"strings"

	"github.com/goccy/go-json"

	"github.com/realrushil/website/internal/logging"
)

// ErrorResponse is the JSON body of every non-2xx reply.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
	Kind    string `json:"kind,omitempty"`
	Field   string `json:"field,omitempty"`
}

func writeJSON(w http.ResponseWriter, r *http.Request, status int, v interface{}) {
	data, err := json.Marshal(v)
	if err != nil {
		logging.Ctx(r.Context()).Error().Err(err).Msg("response encode failed")
		http.Error(w, `{"error":"Internal server error"}`, http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write(data)
}

// InternalError writes the 500 body. The error text is only exposed when
// verbose is set.
func InternalError(w http.ResponseWriter, r *http.Request, err error, verbose bool) {
	msg := "Something went wrong"
	if verbose && err != nil {
		msg = err.Error()
	}
	writeJSON(w, r, http.StatusInternalServerError, ErrorResponse{
		Error:   "Internal server error",
		Message: msg,
	})
}

// WriteJSON is writeJSON for other web packages.
func WriteJSON(w http.ResponseWriter, r *http.Request, status int, v interface{}) {
	writeJSON(w, r, status, v)
}

// setCORS applies the open cross-origin policy.
func setCORS(w http.ResponseWriter, methods string) {
	h := w.Header()
	h.Set("Access-Control-Allow-Origin", "*")
	h.Set("Access-Control-Allow-Methods", methods)
	h.Set("Access-Control-Allow-Headers", "Content-Type")
}

// preflight answers OPTIONS and rejects anything but allowed. It reports
// whether the handler should continue.
func preflight(w http.ResponseWriter, r *http.Request, allowed string) bool {
	if r.Method == http.MethodOptions {
		w.WriteHeader(http.StatusOK)
		return false
	}
	if r.Method != allowed && !(allowed == http.MethodGet && r.Method == http.MethodHead) {
		writeJSON(w, r, http.StatusMethodNotAllowed, ErrorResponse{
			Error:   "Method not allowed",
			Message: "Only " + allowed + " requests are accepted",
		})
		return false
	}
	return true
}

// SourceIdentity is the rate limiting key for a request. With trustProxy
// it is the last X-Forwarded-For hop, the one the proxy appended; otherwise
// the peer address. Falls back to "unknown".
func SourceIdentity(r *http.Request, trustProxy bool) string {
	if fwd := r.Header.Get("X-Forwarded-For"); trustProxy && fwd != "" {
		hops := strings.Split(fwd, ",")
		if last := strings.TrimSpace(hops[len(hops)-1]); last != "" {
			return last
		}
	}
	if r.RemoteAddr != "" {
		if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil && host != "" {
			return host
		}
		return r.RemoteAddr
	}
	return "unknown"
}
