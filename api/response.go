package api

import (
	"encoding/json"
	"log/slog"
	"net/http"
)

// ErrorResponse is the wire shape of every non-2xx response. Code is a
// stable machine-readable identifier; the request ID lets a client quote
// the exact server-side log line when reporting a failure.
type ErrorResponse struct {
	Code      string `json:"code"`
	Message   string `json:"message,omitempty"`
	RequestID string `json:"request_id,omitempty"`
}

// writeJSON writes a JSON response with the given status code.
// If encoding fails after WriteHeader there is no way to notify the
// client; the error is logged for debugging.
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("X-Content-Type-Options", "nosniff")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		slog.Error("failed to encode JSON response", "error", err)
	}
}

// writeError writes the error envelope, stamped with the request ID from
// the request context when one is present.
func writeError(w http.ResponseWriter, r *http.Request, status int, code, message string) {
	writeJSON(w, status, ErrorResponse{
		Code:      code,
		Message:   message,
		RequestID: requestIDFromContext(r.Context()),
	})
}
