package handlers

import (
	"net/http"
	"time"

	"github.com/replaykit/replaykit/logger"
	"github.com/replaykit/replaykit/scenario"
	"github.com/replaykit/replaykit/step"
)

// ScenarioHandler handles scenario listing requests.
type ScenarioHandler struct {
	scenarios scenario.Store
	logger    logger.Logger
}

// NewScenarioHandler creates a new scenario handler.
func NewScenarioHandler(store scenario.Store, log logger.Logger) *ScenarioHandler {
	return &ScenarioHandler{scenarios: store, logger: log}
}

// ScenarioSummary represents one stored scenario.
type ScenarioSummary struct {
	ID        string      `json:"id"`
	Name      string      `json:"name"`
	Domain    string      `json:"domain"`
	StepCount int         `json:"step_count"`
	Steps     []step.Step `json:"steps"`
	CreatedAt time.Time   `json:"created_at"`
}

// ListScenariosResponse represents the scenarios stored for one domain.
type ListScenariosResponse struct {
	Domain    string            `json:"domain"`
	Scenarios []ScenarioSummary `json:"scenarios"`
}

// List returns the scenarios stored for the domain of the url query
// parameter. An unknown domain yields an empty list, not an error.
func (h *ScenarioHandler) List(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	rawURL := r.URL.Query().Get("url")
	if rawURL == "" {
		respondError(w, http.StatusBadRequest, "url query parameter is required")
		return
	}

	domain := scenario.NormalizeDomain(rawURL)
	stored, err := h.scenarios.List(ctx, domain)
	if err != nil {
		h.logger.Error(ctx, "failed to list scenarios", map[string]interface{}{
			"error":  err.Error(),
			"domain": domain,
		})
		respondError(w, http.StatusInternalServerError, "failed to list scenarios")
		return
	}

	summaries := make([]ScenarioSummary, 0, len(stored))
	for _, sc := range stored {
		summaries = append(summaries, ScenarioSummary{
			ID:        sc.ID.String(),
			Name:      sc.Name,
			Domain:    sc.Domain,
			StepCount: len(sc.Steps),
			Steps:     sc.Steps,
			CreatedAt: sc.CreatedAt,
		})
	}
	respondJSON(w, http.StatusOK, ListScenariosResponse{
		Domain:    domain,
		Scenarios: summaries,
	})
}
