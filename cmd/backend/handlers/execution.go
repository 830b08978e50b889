package handlers

import (
	"errors"
	"net/http"

	"github.com/replaykit/replaykit/executor"
	"github.com/replaykit/replaykit/logger"
)

// ExecutionHandler handles scenario replay requests.
type ExecutionHandler struct {
	runner executor.Runner
	logger logger.Logger
}

// NewExecutionHandler creates a new execution handler.
func NewExecutionHandler(runner executor.Runner, log logger.Logger) *ExecutionHandler {
	return &ExecutionHandler{runner: runner, logger: log}
}

// RunRequest represents a request to replay scenarios against a site.
type RunRequest struct {
	URL       string   `json:"url"`
	Scenarios []string `json:"scenarios,omitempty"`
	Headed    bool     `json:"headed,omitempty"`
}

// Run replays the requested scenarios and returns per-step outcomes. Step
// and scenario failures are reported in the body, not as HTTP errors.
func (h *ExecutionHandler) Run(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req RunRequest
	if err := parseJSON(r, &req, h.logger); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.URL == "" {
		respondError(w, http.StatusBadRequest, "url is required")
		return
	}

	result, err := h.runner.Run(ctx, req.URL, req.Scenarios, req.Headed)
	if err != nil {
		if errors.Is(err, executor.ErrNoScenarios) {
			respondError(w, http.StatusNotFound, "no scenarios found for this URL")
			return
		}
		h.logger.Error(ctx, "scenario run failed", map[string]interface{}{
			"error": err.Error(),
			"url":   req.URL,
		})
		respondError(w, http.StatusInternalServerError, "scenario run failed")
		return
	}

	respondJSON(w, http.StatusOK, result)
}
