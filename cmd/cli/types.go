package main

// Response shapes mirrored from the backend API.

type stepPayload struct {
	Username       string `json:"username,omitempty"`
	Password       string `json:"password,omitempty"`
	SubmitSelector string `json:"submit_selector,omitempty"`
	Value          string `json:"value,omitempty"`
	URL            string `json:"url,omitempty"`
}

type stepBody struct {
	Kind         string      `json:"kind"`
	Description  string      `json:"description"`
	Selector     string      `json:"selector,omitempty"`
	ExpectedText string      `json:"expected_text,omitempty"`
	Payload      stepPayload `json:"payload,omitempty"`
}

type startRecordingResponse struct {
	SessionID string `json:"session_id"`
	Status    string `json:"status"`
}

type addStepResponse struct {
	Message   string `json:"message"`
	StepCount int    `json:"step_count"`
}

type stopRecordingResponse struct {
	ScenarioID   string     `json:"scenario_id"`
	ScenarioName string     `json:"scenario_name"`
	Domain       string     `json:"domain"`
	StepCount    int        `json:"step_count"`
	Steps        []stepBody `json:"steps"`
	Script       string     `json:"script"`
	ScriptRef    string     `json:"script_ref,omitempty"`
}

type scenarioSummary struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Domain    string `json:"domain"`
	StepCount int    `json:"step_count"`
	CreatedAt string `json:"created_at"`
}

type listScenariosResponse struct {
	Domain    string            `json:"domain"`
	Scenarios []scenarioSummary `json:"scenarios"`
}

type stepResult struct {
	Description   string `json:"step_description"`
	Status        string `json:"status"`
	DurationMs    int64  `json:"duration_ms"`
	Error         string `json:"error,omitempty"`
	ScreenshotRef string `json:"screenshot_ref,omitempty"`
}

type scenarioResult struct {
	Name   string       `json:"scenario_name"`
	Status string       `json:"status"`
	Error  string       `json:"error,omitempty"`
	Steps  []stepResult `json:"steps"`
}

type runResult struct {
	RunID     string           `json:"run_id"`
	TargetURL string           `json:"target_url"`
	Domain    string           `json:"domain"`
	Scenarios []scenarioResult `json:"scenarios"`
}
