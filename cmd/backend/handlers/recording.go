package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/replaykit/replaykit/codegen"
	"github.com/replaykit/replaykit/logger"
	"github.com/replaykit/replaykit/recording"
	"github.com/replaykit/replaykit/scenario"
	"github.com/replaykit/replaykit/step"
	"github.com/replaykit/replaykit/storage"
)

// RecordingHandler handles recording session requests.
type RecordingHandler struct {
	manager   *recording.Manager
	scenarios scenario.Store
	generator *codegen.Generator
	storage   storage.BlobStorage
	logger    logger.Logger
}

// NewRecordingHandler creates a new recording session handler.
func NewRecordingHandler(
	manager *recording.Manager,
	scenarios scenario.Store,
	generator *codegen.Generator,
	blobs storage.BlobStorage,
	log logger.Logger,
) *RecordingHandler {
	return &RecordingHandler{
		manager:   manager,
		scenarios: scenarios,
		generator: generator,
		storage:   blobs,
		logger:    log,
	}
}

// StartRecordingRequest represents a request to open a recording session.
type StartRecordingRequest struct {
	URL          string `json:"url"`
	ScenarioName string `json:"scenario_name"`
}

// StartRecordingResponse represents a freshly opened recording session.
type StartRecordingResponse struct {
	SessionID string `json:"session_id"`
	Status    string `json:"status"`
}

// Start opens a new recording session.
func (h *RecordingHandler) Start(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req StartRecordingRequest
	if err := parseJSON(r, &req, h.logger); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	id, err := h.manager.Start(ctx, req.URL, req.ScenarioName)
	if err != nil {
		switch {
		case errors.Is(err, recording.ErrInvalidInput):
			respondError(w, http.StatusBadRequest, "url and scenario_name are required")
		case errors.Is(err, recording.ErrMalformedURL):
			respondError(w, http.StatusBadRequest, "url is malformed")
		default:
			h.logger.Error(ctx, "failed to start recording", map[string]interface{}{
				"error": err.Error(),
			})
			respondError(w, http.StatusInternalServerError, "failed to start recording")
		}
		return
	}

	h.logger.Info(ctx, "recording session started", map[string]interface{}{
		"session_id": id.String(),
		"scenario":   req.ScenarioName,
	})
	respondJSON(w, http.StatusCreated, StartRecordingResponse{
		SessionID: id.String(),
		Status:    "recording",
	})
}

// SessionResponse represents the current state of a recording session.
type SessionResponse struct {
	SessionID string      `json:"session_id"`
	Status    string      `json:"status"`
	StepCount int         `json:"step_count"`
	Steps     []step.Step `json:"steps"`
}

// Get returns the steps recorded so far in a session.
func (h *RecordingHandler) Get(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	id, ok := parseUUIDOrRespond(w, r, "session_id", "session")
	if !ok {
		return
	}

	steps, err := h.manager.Steps(ctx, id)
	if err != nil {
		respondError(w, http.StatusNotFound, "recording session not found")
		return
	}

	if steps == nil {
		steps = []step.Step{}
	}
	respondJSON(w, http.StatusOK, SessionResponse{
		SessionID: id.String(),
		Status:    "recording",
		StepCount: len(steps),
		Steps:     steps,
	})
}

// AddStepResponse acknowledges a recorded step.
type AddStepResponse struct {
	Message   string `json:"message"`
	StepCount int    `json:"step_count"`
}

// AddStep appends a captured step to a recording session.
func (h *RecordingHandler) AddStep(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	id, ok := parseUUIDOrRespond(w, r, "session_id", "session")
	if !ok {
		return
	}

	var st step.Step
	if err := parseJSON(r, &st, h.logger); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := h.manager.Record(ctx, id, st); err != nil {
		switch {
		case errors.Is(err, recording.ErrSessionNotFound):
			respondError(w, http.StatusNotFound, "recording session not found")
		case errors.Is(err, step.ErrInvalidKind),
			errors.Is(err, step.ErrMissingDescription),
			errors.Is(err, step.ErrMissingSelector):
			respondError(w, http.StatusBadRequest, err.Error())
		default:
			h.logger.Error(ctx, "failed to record step", map[string]interface{}{
				"error":      err.Error(),
				"session_id": id.String(),
			})
			respondError(w, http.StatusInternalServerError, "failed to record step")
		}
		return
	}

	steps, err := h.manager.Steps(ctx, id)
	if err != nil {
		respondError(w, http.StatusNotFound, "recording session not found")
		return
	}
	respondJSON(w, http.StatusOK, AddStepResponse{
		Message:   "step recorded",
		StepCount: len(steps),
	})
}

// StopRecordingResponse represents the scenario produced by a stopped session.
type StopRecordingResponse struct {
	ScenarioID   string      `json:"scenario_id"`
	ScenarioName string      `json:"scenario_name"`
	Domain       string      `json:"domain"`
	StepCount    int         `json:"step_count"`
	Steps        []step.Step `json:"steps"`
	Script       string      `json:"script"`
	ScriptRef    string      `json:"script_ref,omitempty"`
}

// Stop closes a recording session, persists the captured scenario, and
// returns the generated Playwright script. The script is also uploaded to
// blob storage; an upload failure is logged but does not fail the request.
func (h *RecordingHandler) Stop(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	id, ok := parseUUIDOrRespond(w, r, "session_id", "session")
	if !ok {
		return
	}

	sc, targetURL, err := h.manager.Stop(ctx, id)
	if err != nil {
		if errors.Is(err, recording.ErrSessionNotFound) {
			respondError(w, http.StatusNotFound, "recording session not found")
			return
		}
		h.logger.Error(ctx, "failed to stop recording", map[string]interface{}{
			"error":      err.Error(),
			"session_id": id.String(),
		})
		respondError(w, http.StatusInternalServerError, "failed to stop recording")
		return
	}

	if err := h.scenarios.Add(ctx, sc); err != nil {
		h.logger.Error(ctx, "failed to persist scenario", map[string]interface{}{
			"error":    err.Error(),
			"scenario": sc.Name,
		})
		respondError(w, http.StatusInternalServerError, "failed to persist scenario")
		return
	}

	script := h.generator.Script(sc.Name, sc.Steps, targetURL)
	scriptRef := h.uploadScript(r, sc, script)

	h.logger.Info(ctx, "recording session stopped", map[string]interface{}{
		"session_id": id.String(),
		"scenario":   sc.Name,
		"steps":      len(sc.Steps),
	})
	respondJSON(w, http.StatusOK, StopRecordingResponse{
		ScenarioID:   sc.ID.String(),
		ScenarioName: sc.Name,
		Domain:       sc.Domain,
		StepCount:    len(sc.Steps),
		Steps:        sc.Steps,
		Script:       script,
		ScriptRef:    scriptRef,
	})
}

func (h *RecordingHandler) uploadScript(r *http.Request, sc *scenario.Scenario, script string) string {
	ctx := r.Context()
	ref := fmt.Sprintf("scripts/%s/%s.spec.ts", sc.Domain, scriptFileName(sc.Name))
	if err := h.storage.Upload(ctx, ref, strings.NewReader(script)); err != nil {
		h.logger.Warn(ctx, "failed to upload generated script", map[string]interface{}{
			"error": err.Error(),
			"ref":   ref,
		})
		return ""
	}
	return ref
}

// scriptFileName flattens a scenario name into a file name.
func scriptFileName(name string) string {
	name = strings.ToLower(strings.TrimSpace(name))
	var b strings.Builder
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == ' ', r == '-', r == '_':
			b.WriteRune('-')
		}
	}
	if b.Len() == 0 {
		return "scenario"
	}
	return b.String()
}
