// Package handler provides the ops HTTP endpoints.
package handler

import (
	"net/http"

	"github.com/akmal-2004/easify-seller/internal/events"
	"github.com/akmal-2004/easify-seller/internal/session"
)

// HealthHandler handles health check endpoints.
type HealthHandler struct {
	natsClient *events.Client
	sessions   *session.Store
}

// NewHealthHandler creates a new health handler. natsClient may be nil when
// event publishing is disabled.
func NewHealthHandler(natsClient *events.Client, sessions *session.Store) *HealthHandler {
	return &HealthHandler{
		natsClient: natsClient,
		sessions:   sessions,
	}
}

// Health handles GET /health
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status": "healthy",
	})
}

// Ready handles GET /ready
func (h *HealthHandler) Ready(w http.ResponseWriter, r *http.Request) {
	if h.natsClient != nil && !h.natsClient.IsConnected() {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{
			"status": "not ready",
			"reason": "NATS not connected",
		})
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"status":   "ready",
		"sessions": h.sessions.Len(),
	})
}
