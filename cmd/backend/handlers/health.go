package handlers

import (
	"net/http"

	"github.com/replaykit/replaykit/recording"
)

// HealthResponse represents the health check response.
type HealthResponse struct {
	Status         string `json:"status"`
	ActiveSessions int    `json:"active_sessions"`
}

// NewHealthHandler returns a health check handler reporting the number of
// recording sessions currently open.
func NewHealthHandler(manager *recording.Manager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		respondJSON(w, http.StatusOK, HealthResponse{
			Status:         "healthy",
			ActiveSessions: manager.ActiveCount(),
		})
	}
}
