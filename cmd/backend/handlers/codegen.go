package handlers

import (
	"net/http"

	"github.com/replaykit/replaykit/codegen"
	"github.com/replaykit/replaykit/logger"
	"github.com/replaykit/replaykit/step"
)

// CodegenHandler handles on-demand script generation requests.
type CodegenHandler struct {
	generator *codegen.Generator
	logger    logger.Logger
}

// NewCodegenHandler creates a new codegen handler.
func NewCodegenHandler(generator *codegen.Generator, log logger.Logger) *CodegenHandler {
	return &CodegenHandler{generator: generator, logger: log}
}

// GenerateScriptRequest represents a UI script generation request.
type GenerateScriptRequest struct {
	ScenarioName string      `json:"scenario_name"`
	URL          string      `json:"url"`
	Steps        []step.Step `json:"steps"`
}

// GenerateScriptResponse carries a generated Playwright script.
type GenerateScriptResponse struct {
	Script string `json:"script"`
}

// Generate produces a Playwright script for an ad hoc step list without
// persisting anything.
func (h *CodegenHandler) Generate(w http.ResponseWriter, r *http.Request) {
	var req GenerateScriptRequest
	if err := parseJSON(r, &req, h.logger); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.ScenarioName == "" {
		respondError(w, http.StatusBadRequest, "scenario_name is required")
		return
	}
	if req.URL == "" {
		respondError(w, http.StatusBadRequest, "url is required")
		return
	}

	script := h.generator.Script(req.ScenarioName, req.Steps, req.URL)
	respondJSON(w, http.StatusOK, GenerateScriptResponse{Script: script})
}

// GenerateAPIScriptRequest represents an API test generation request.
type GenerateAPIScriptRequest struct {
	Endpoint       string                 `json:"endpoint"`
	Method         string                 `json:"method,omitempty"`
	RequestBody    map[string]interface{} `json:"request_body,omitempty"`
	ResponseSchema map[string]interface{} `json:"response_schema,omitempty"`
}

// GenerateAPI produces a Playwright API test script for an endpoint.
func (h *CodegenHandler) GenerateAPI(w http.ResponseWriter, r *http.Request) {
	var req GenerateAPIScriptRequest
	if err := parseJSON(r, &req, h.logger); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Endpoint == "" {
		respondError(w, http.StatusBadRequest, "endpoint is required")
		return
	}

	script := h.generator.APIScript(req.Endpoint, req.Method, req.RequestBody, req.ResponseSchema)
	respondJSON(w, http.StatusOK, GenerateScriptResponse{Script: script})
}
