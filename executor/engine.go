package executor

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/replaykit/replaykit/logger"
	"github.com/replaykit/replaykit/scenario"
	"github.com/replaykit/replaykit/step"
	"github.com/replaykit/replaykit/storage"
)

// Errors while running scenarios
var (
	ErrNoScenarios = errors.New("no scenarios found for domain")
)

// Status of a step or scenario after a run.
type Status string

const (
	StatusPassed Status = "passed"
	StatusFailed Status = "failed"
)

// StepResult is the outcome of a single replayed step.
type StepResult struct {
	Description   string `json:"step_description"`
	Status        Status `json:"status"`
	DurationMs    int64  `json:"duration_ms"`
	Error         string `json:"error,omitempty"`
	ScreenshotRef string `json:"screenshot_ref,omitempty"`
}

// ScenarioResult is the outcome of one scenario iteration.
type ScenarioResult struct {
	Name   string       `json:"scenario_name"`
	Status Status       `json:"status"`
	Error  string       `json:"error,omitempty"`
	Steps  []StepResult `json:"steps"`
}

// Result is the outcome of a full run across the requested scenarios.
type Result struct {
	RunID     uuid.UUID        `json:"run_id"`
	TargetURL string           `json:"target_url"`
	Domain    string           `json:"domain"`
	Scenarios []ScenarioResult `json:"scenarios"`
}

// Runner is the replay surface consumed by the HTTP layer.
type Runner interface {
	Run(ctx context.Context, targetURL string, names []string, headed bool) (*Result, error)
}

// Engine replays stored scenarios against a live page. Each scenario gets a
// fresh page so state from one iteration cannot leak into the next.
type Engine struct {
	scenarios scenario.Store
	driver    Driver
	artifacts storage.BlobStorage
	logger    logger.Logger

	navAttempts   int
	navRetryDelay time.Duration
	navTimeout    time.Duration
	stepTimeout   time.Duration
}

// NewEngine creates an engine with the default timing profile.
func NewEngine(store scenario.Store, driver Driver, artifacts storage.BlobStorage, log logger.Logger) *Engine {
	return &Engine{
		scenarios: store,
		driver:    driver,
		artifacts: artifacts,
		logger:    log,

		navAttempts:   3,
		navRetryDelay: 1 * time.Second,
		navTimeout:    30 * time.Second,
		stepTimeout:   30 * time.Second,
	}
}

// Run replays the named scenarios stored for the target URL's domain. An
// empty name list runs every stored scenario. A failing step never aborts
// its scenario and a failing scenario never aborts the run; every outcome is
// reported in the result. Run only returns an error when no scenarios exist
// for the domain or the store itself fails.
func (e *Engine) Run(ctx context.Context, targetURL string, names []string, headed bool) (*Result, error) {
	domain := scenario.NormalizeDomain(targetURL)
	if domain == "" {
		return nil, ErrNoScenarios
	}

	available, err := e.scenarios.List(ctx, domain)
	if err != nil {
		return nil, fmt.Errorf("failed to list scenarios: %w", err)
	}
	if len(available) == 0 {
		return nil, ErrNoScenarios
	}

	result := &Result{
		RunID:     uuid.New(),
		TargetURL: targetURL,
		Domain:    domain,
	}

	e.logger.Info(ctx, "starting scenario run", logger.Fields{
		"run_id": result.RunID.String(),
		"domain": domain,
	})

	if len(names) == 0 {
		for _, sc := range available {
			result.Scenarios = append(result.Scenarios, e.runScenario(ctx, result.RunID, targetURL, sc, headed))
		}
		return result, nil
	}

	for _, name := range names {
		sc, err := e.scenarios.FindByName(ctx, domain, name)
		if err != nil {
			result.Scenarios = append(result.Scenarios, ScenarioResult{
				Name:   name,
				Status: StatusFailed,
				Error:  fmt.Sprintf("scenario %q not found for domain %s", name, domain),
			})
			continue
		}
		result.Scenarios = append(result.Scenarios, e.runScenario(ctx, result.RunID, targetURL, sc, headed))
	}
	return result, nil
}

func (e *Engine) runScenario(ctx context.Context, runID uuid.UUID, targetURL string, sc *scenario.Scenario, headed bool) ScenarioResult {
	result := ScenarioResult{Name: sc.Name, Status: StatusPassed}

	log := e.logger.WithFields(logger.Fields{
		"run_id":   runID.String(),
		"scenario": sc.Name,
	})
	log.Info(ctx, "running scenario", logger.Fields{"steps": len(sc.Steps)})

	page, err := e.driver.NewPage(ctx, headed)
	if err != nil {
		result.Status = StatusFailed
		result.Error = fmt.Sprintf("failed to open page: %v", err)
		log.Error(ctx, "failed to open page", logger.Fields{"error": err.Error()})
		return result
	}
	defer page.Close()

	if err := e.navigate(ctx, page, targetURL, log); err != nil {
		result.Status = StatusFailed
		result.Error = fmt.Sprintf("navigation failed after %d attempts: %v", e.navAttempts, err)
		return result
	}

	for i, st := range sc.Steps {
		stepResult := e.runStep(ctx, page, runID, sc.Name, i, st, log)
		if stepResult.Status == StatusFailed {
			result.Status = StatusFailed
		}
		result.Steps = append(result.Steps, stepResult)
	}
	return result
}

// navigate loads the target URL, retrying transient failures with a fixed
// delay between attempts.
func (e *Engine) navigate(ctx context.Context, page Page, targetURL string, log logger.Logger) error {
	var lastErr error
	for attempt := 1; attempt <= e.navAttempts; attempt++ {
		navCtx, cancel := context.WithTimeout(ctx, e.navTimeout)
		err := page.Navigate(navCtx, targetURL)
		cancel()
		if err == nil {
			return nil
		}
		lastErr = err
		log.Warn(ctx, "navigation attempt failed", logger.Fields{
			"attempt": attempt,
			"error":   err.Error(),
		})
		if attempt < e.navAttempts {
			select {
			case <-time.After(e.navRetryDelay):
			case <-ctx.Done():
				return ctx.Err()
			}
		}
	}
	return lastErr
}

func (e *Engine) runStep(ctx context.Context, page Page, runID uuid.UUID, scenarioName string, index int, st step.Step, log logger.Logger) StepResult {
	start := time.Now()
	err := e.executeStep(ctx, page, st)

	result := StepResult{
		Description: st.Description,
		Status:      StatusPassed,
		DurationMs:  time.Since(start).Milliseconds(),
	}
	if err != nil {
		result.Status = StatusFailed
		result.Error = err.Error()
		result.ScreenshotRef = e.captureFailure(ctx, page, runID, scenarioName, index)
		log.Warn(ctx, "step failed", logger.Fields{
			"step":  st.Description,
			"error": err.Error(),
		})
	}
	return result
}

func (e *Engine) executeStep(ctx context.Context, page Page, st step.Step) error {
	stepCtx, cancel := context.WithTimeout(ctx, e.stepTimeout)
	defer cancel()

	switch st.Kind {
	case step.KindLogin:
		userSel, passSel := loginSelectors(st.Selector)
		if err := page.WaitVisible(stepCtx, userSel); err != nil {
			return err
		}
		username := st.Payload.Username
		if username == "" {
			username = defaultUsername
		}
		password := st.Payload.Password
		if password == "" {
			password = defaultPassword
		}
		if err := page.Fill(stepCtx, userSel, username); err != nil {
			return err
		}
		if err := page.Fill(stepCtx, passSel, password); err != nil {
			return err
		}
		submit := st.Payload.SubmitSelector
		if submit == "" {
			submit = defaultSubmitSelector
		}
		if err := page.Click(stepCtx, submit); err != nil {
			return err
		}
	case step.KindNavigation, step.KindAction, step.KindClick:
		if st.NavigatesByURL() {
			if err := page.Navigate(stepCtx, st.Payload.URL); err != nil {
				return err
			}
		} else {
			if err := page.WaitVisible(stepCtx, st.Selector); err != nil {
				return err
			}
			if err := page.Click(stepCtx, st.Selector); err != nil {
				return err
			}
		}
	case step.KindFill:
		if err := page.WaitVisible(stepCtx, st.Selector); err != nil {
			return err
		}
		if err := page.Fill(stepCtx, st.Selector, st.Payload.Value); err != nil {
			return err
		}
	case step.KindSelect:
		if err := page.WaitVisible(stepCtx, st.Selector); err != nil {
			return err
		}
		if err := page.SelectOption(stepCtx, st.Selector, st.Payload.Value); err != nil {
			return err
		}
	case step.KindCheck:
		if err := page.SetChecked(stepCtx, st.Selector, true); err != nil {
			return err
		}
	case step.KindUncheck:
		if err := page.SetChecked(stepCtx, st.Selector, false); err != nil {
			return err
		}
	}

	if st.ExpectedText != "" {
		waitCtx, cancelWait := context.WithTimeout(ctx, e.stepTimeout)
		defer cancelWait()
		if err := page.WaitText(waitCtx, st.ExpectedText); err != nil {
			return fmt.Errorf("expected text %q not found: %w", st.ExpectedText, err)
		}
	}
	return nil
}

// captureFailure grabs and stores a screenshot for a failed step. Artifact
// collection is best effort; a failure here is logged and the empty ref is
// returned.
func (e *Engine) captureFailure(ctx context.Context, page Page, runID uuid.UUID, scenarioName string, index int) string {
	shot, err := page.Screenshot(ctx)
	if err != nil {
		e.logger.Warn(ctx, "failed to capture screenshot", logger.Fields{"error": err.Error()})
		return ""
	}

	ref := fmt.Sprintf("screenshots/%s/%s/step-%02d.png", runID, artifactName(scenarioName), index+1)
	if err := e.artifacts.Upload(ctx, ref, bytes.NewReader(shot)); err != nil {
		e.logger.Warn(ctx, "failed to store screenshot", logger.Fields{
			"ref":   ref,
			"error": err.Error(),
		})
		return ""
	}
	return ref
}

// loginSelectors splits a recorded login selector of the form
// "userSelector, passwordSelector", falling back to common form field names
// for any missing part.
func loginSelectors(selector string) (string, string) {
	userSel := defaultUsernameSelector
	passSel := defaultPasswordSelector

	parts := strings.Split(selector, ",")
	if len(parts) > 0 && strings.TrimSpace(parts[0]) != "" {
		userSel = strings.TrimSpace(parts[0])
	}
	if len(parts) > 1 && strings.TrimSpace(parts[1]) != "" {
		passSel = strings.TrimSpace(parts[1])
	}
	return userSel, passSel
}

const (
	defaultUsernameSelector = `input[name="username"]`
	defaultPasswordSelector = `input[name="password"]`
	defaultSubmitSelector   = `button[type="submit"]`

	defaultUsername = "testuser"
	defaultPassword = "testpass"
)

// artifactName flattens a scenario name into a path segment.
func artifactName(name string) string {
	name = strings.ToLower(strings.TrimSpace(name))
	var b strings.Builder
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == ' ', r == '-', r == '_', r == '/':
			b.WriteRune('-')
		}
	}
	if b.Len() == 0 {
		return "scenario"
	}
	return b.String()
}
