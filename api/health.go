package api

import (
	"net/http"

	"github.com/hulo-lang/hulomind/internal/log"
	"github.com/hulo-lang/hulomind/internal/service"
)

// healthHandler handles health check endpoints.
type healthHandler struct {
	knowledge *service.Knowledge
	logger    log.Logger
}

// RegisterRoutes registers health routes on the given mux.
func (h *healthHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /health", h.liveness)
	mux.HandleFunc("GET /ready", h.readiness)
}

// liveness returns 200 OK if the process is alive.
func (h *healthHandler) liveness(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

// readinessResponse reports store reachability and corpus size.
type readinessResponse struct {
	Status string `json:"status"`
	Chunks int    `json:"chunks"`
}

// readiness returns 200 OK when the store answers; the chunk count tells
// operators whether ingestion has run yet.
func (h *healthHandler) readiness(w http.ResponseWriter, r *http.Request) {
	count, err := h.knowledge.Count(r.Context())
	if err != nil {
		h.logger.Error("readiness check failed", "error", err)
		writeError(w, r, http.StatusServiceUnavailable, "store_unavailable", "knowledge store not ready")
		return
	}
	writeJSON(w, http.StatusOK, readinessResponse{Status: "ready", Chunks: count})
}
