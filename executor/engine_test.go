package executor

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/replaykit/replaykit/logger"
	"github.com/replaykit/replaykit/scenario"
	"github.com/replaykit/replaykit/step"
)

type fakePage struct {
	mu            sync.Mutex
	navErrs       []error
	failSelectors map[string]bool
	failText      map[string]bool
	screenshotErr error
	actions       []string
	closed        bool
}

func (p *fakePage) record(action string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.actions = append(p.actions, action)
}

func (p *fakePage) Navigate(ctx context.Context, url string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.actions = append(p.actions, "navigate:"+url)
	if len(p.navErrs) > 0 {
		err := p.navErrs[0]
		p.navErrs = p.navErrs[1:]
		return err
	}
	return nil
}

func (p *fakePage) failsOn(selector string) error {
	if p.failSelectors[selector] {
		return fmt.Errorf("selector %s not found", selector)
	}
	return nil
}

func (p *fakePage) WaitVisible(ctx context.Context, selector string) error {
	p.record("wait:" + selector)
	return p.failsOn(selector)
}

func (p *fakePage) WaitText(ctx context.Context, text string) error {
	p.record("waittext:" + text)
	if p.failText[text] {
		return fmt.Errorf("text %q not visible", text)
	}
	return nil
}

func (p *fakePage) Click(ctx context.Context, selector string) error {
	p.record("click:" + selector)
	return p.failsOn(selector)
}

func (p *fakePage) Fill(ctx context.Context, selector, value string) error {
	p.record("fill:" + selector + "=" + value)
	return p.failsOn(selector)
}

func (p *fakePage) SelectOption(ctx context.Context, selector, value string) error {
	p.record("select:" + selector + "=" + value)
	return p.failsOn(selector)
}

func (p *fakePage) SetChecked(ctx context.Context, selector string, checked bool) error {
	p.record(fmt.Sprintf("check:%s=%t", selector, checked))
	return p.failsOn(selector)
}

func (p *fakePage) Screenshot(ctx context.Context) ([]byte, error) {
	p.record("screenshot")
	if p.screenshotErr != nil {
		return nil, p.screenshotErr
	}
	return []byte("png-bytes"), nil
}

func (p *fakePage) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.closed = true
	return nil
}

type fakeDriver struct {
	mu      sync.Mutex
	pages   []*fakePage
	prepare func(*fakePage)
	pageErr error
}

func (d *fakeDriver) NewPage(ctx context.Context, headed bool) (Page, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.pageErr != nil {
		return nil, d.pageErr
	}
	p := &fakePage{}
	if d.prepare != nil {
		d.prepare(p)
	}
	d.pages = append(d.pages, p)
	return p, nil
}

type memBlobs struct {
	mu    sync.Mutex
	files map[string][]byte
	err   error
}

func newMemBlobs() *memBlobs {
	return &memBlobs{files: map[string][]byte{}}
}

func (m *memBlobs) Upload(ctx context.Context, path string, reader io.Reader) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	data, err := io.ReadAll(reader)
	if err != nil {
		return err
	}
	m.files[path] = data
	return nil
}

func (m *memBlobs) Download(ctx context.Context, path string) (io.ReadCloser, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	data, ok := m.files[path]
	if !ok {
		return nil, errors.New("not found")
	}
	return io.NopCloser(bytes.NewReader(data)), nil
}

func (m *memBlobs) Delete(ctx context.Context, path string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.files, path)
	return nil
}

func (m *memBlobs) Exists(ctx context.Context, path string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.files[path]
	return ok, nil
}

func newTestEngine(t *testing.T, driver *fakeDriver, blobs *memBlobs) (*Engine, *scenario.Registry) {
	t.Helper()
	registry := scenario.NewRegistry()
	if blobs == nil {
		blobs = newMemBlobs()
	}
	engine := NewEngine(registry, driver, blobs, logger.NewTestLogger())
	engine.navRetryDelay = time.Millisecond
	engine.navTimeout = time.Second
	engine.stepTimeout = time.Second
	return engine, registry
}

func mustAdd(t *testing.T, registry *scenario.Registry, domain, name string, steps []step.Step) {
	t.Helper()
	sc := scenario.New(domain, name, steps)
	require.NoError(t, registry.Add(context.Background(), sc))
}

func TestEngine_Run_NoScenarios(t *testing.T) {
	engine, _ := newTestEngine(t, &fakeDriver{}, nil)

	_, err := engine.Run(context.Background(), "https://unknown.example.com", nil, false)
	assert.ErrorIs(t, err, ErrNoScenarios)

	_, err = engine.Run(context.Background(), "", nil, false)
	assert.ErrorIs(t, err, ErrNoScenarios)
}

func TestEngine_Run_NavigationRetries(t *testing.T) {
	driver := &fakeDriver{prepare: func(p *fakePage) {
		p.navErrs = []error{errors.New("net::ERR_CONNECTION_REFUSED"), errors.New("timeout")}
	}}
	engine, registry := newTestEngine(t, driver, nil)
	mustAdd(t, registry, "shop.example.com", "Login Flow", []step.Step{
		{Kind: step.KindClick, Description: "Open cart", Selector: "#cart"},
	})

	result, err := engine.Run(context.Background(), "https://shop.example.com", nil, false)
	require.NoError(t, err)
	require.Len(t, result.Scenarios, 1)
	assert.Equal(t, StatusPassed, result.Scenarios[0].Status)

	require.Len(t, driver.pages, 1)
	page := driver.pages[0]
	navs := 0
	for _, a := range page.actions {
		if a == "navigate:https://shop.example.com" {
			navs++
		}
	}
	assert.Equal(t, 3, navs)
	assert.True(t, page.closed)
}

func TestEngine_Run_NavigationExhausted(t *testing.T) {
	driver := &fakeDriver{prepare: func(p *fakePage) {
		p.navErrs = []error{
			errors.New("refused"), errors.New("refused"), errors.New("refused"),
		}
	}}
	engine, registry := newTestEngine(t, driver, nil)
	mustAdd(t, registry, "shop.example.com", "Login Flow", []step.Step{
		{Kind: step.KindClick, Description: "Open cart", Selector: "#cart"},
	})

	result, err := engine.Run(context.Background(), "https://shop.example.com", nil, false)
	require.NoError(t, err)
	require.Len(t, result.Scenarios, 1)

	got := result.Scenarios[0]
	assert.Equal(t, StatusFailed, got.Status)
	assert.Contains(t, got.Error, "3 attempts")
	assert.Empty(t, got.Steps)
	assert.True(t, driver.pages[0].closed)
}

func TestEngine_Run_ContinuesPastFailedStep(t *testing.T) {
	driver := &fakeDriver{prepare: func(p *fakePage) {
		p.failSelectors = map[string]bool{"#broken": true}
	}}
	blobs := newMemBlobs()
	engine, registry := newTestEngine(t, driver, blobs)
	mustAdd(t, registry, "shop.example.com", "Checkout", []step.Step{
		{Kind: step.KindClick, Description: "Broken button", Selector: "#broken"},
		{Kind: step.KindFill, Description: "Enter name", Selector: "#name", Payload: step.Payload{Value: "Ada"}},
	})

	result, err := engine.Run(context.Background(), "https://shop.example.com", nil, false)
	require.NoError(t, err)
	require.Len(t, result.Scenarios, 1)

	got := result.Scenarios[0]
	assert.Equal(t, StatusFailed, got.Status)
	require.Len(t, got.Steps, 2)

	assert.Equal(t, StatusFailed, got.Steps[0].Status)
	assert.NotEmpty(t, got.Steps[0].Error)
	assert.NotEmpty(t, got.Steps[0].ScreenshotRef)

	assert.Equal(t, StatusPassed, got.Steps[1].Status)
	assert.Empty(t, got.Steps[1].Error)

	exists, err := blobs.Exists(context.Background(), got.Steps[0].ScreenshotRef)
	require.NoError(t, err)
	assert.True(t, exists)
}

func TestEngine_Run_ScreenshotFailureIsNotFatal(t *testing.T) {
	driver := &fakeDriver{prepare: func(p *fakePage) {
		p.failSelectors = map[string]bool{"#broken": true}
		p.screenshotErr = errors.New("target crashed")
	}}
	engine, registry := newTestEngine(t, driver, nil)
	mustAdd(t, registry, "shop.example.com", "Checkout", []step.Step{
		{Kind: step.KindClick, Description: "Broken button", Selector: "#broken"},
	})

	result, err := engine.Run(context.Background(), "https://shop.example.com", nil, false)
	require.NoError(t, err)

	got := result.Scenarios[0]
	require.Len(t, got.Steps, 1)
	assert.Equal(t, StatusFailed, got.Steps[0].Status)
	assert.Empty(t, got.Steps[0].ScreenshotRef)
}

func TestEngine_Run_MissingNameReportedAsFailed(t *testing.T) {
	driver := &fakeDriver{}
	engine, registry := newTestEngine(t, driver, nil)
	mustAdd(t, registry, "shop.example.com", "Login Flow", []step.Step{
		{Kind: step.KindClick, Description: "Open cart", Selector: "#cart"},
	})

	result, err := engine.Run(context.Background(), "https://shop.example.com", []string{"Missing", "Login Flow"}, false)
	require.NoError(t, err)
	require.Len(t, result.Scenarios, 2)

	assert.Equal(t, "Missing", result.Scenarios[0].Name)
	assert.Equal(t, StatusFailed, result.Scenarios[0].Status)
	assert.Contains(t, result.Scenarios[0].Error, "not found")

	assert.Equal(t, "Login Flow", result.Scenarios[1].Name)
	assert.Equal(t, StatusPassed, result.Scenarios[1].Status)
}

func TestEngine_Run_FreshPagePerScenario(t *testing.T) {
	driver := &fakeDriver{}
	engine, registry := newTestEngine(t, driver, nil)
	mustAdd(t, registry, "shop.example.com", "First", []step.Step{
		{Kind: step.KindClick, Description: "Open cart", Selector: "#cart"},
	})
	mustAdd(t, registry, "shop.example.com", "Second", []step.Step{
		{Kind: step.KindClick, Description: "Open account", Selector: "#account"},
	})

	result, err := engine.Run(context.Background(), "https://shop.example.com", nil, false)
	require.NoError(t, err)
	require.Len(t, result.Scenarios, 2)
	assert.Equal(t, "First", result.Scenarios[0].Name)
	assert.Equal(t, "Second", result.Scenarios[1].Name)

	require.Len(t, driver.pages, 2)
	for _, page := range driver.pages {
		assert.True(t, page.closed)
	}
}

func TestEngine_Run_PageOpenFailure(t *testing.T) {
	driver := &fakeDriver{pageErr: errors.New("chrome not found")}
	engine, registry := newTestEngine(t, driver, nil)
	mustAdd(t, registry, "shop.example.com", "Login Flow", []step.Step{
		{Kind: step.KindClick, Description: "Open cart", Selector: "#cart"},
	})

	result, err := engine.Run(context.Background(), "https://shop.example.com", nil, false)
	require.NoError(t, err)
	require.Len(t, result.Scenarios, 1)
	assert.Equal(t, StatusFailed, result.Scenarios[0].Status)
	assert.Contains(t, result.Scenarios[0].Error, "chrome not found")
}

func TestEngine_Run_LoginStep(t *testing.T) {
	driver := &fakeDriver{}
	engine, registry := newTestEngine(t, driver, nil)
	mustAdd(t, registry, "shop.example.com", "Login Flow", []step.Step{
		{
			Kind:        step.KindLogin,
			Description: "Log in",
			Selector:    "#user, #pass",
			Payload: step.Payload{
				Username:       "standard_user",
				Password:       "secret_sauce",
				SubmitSelector: "#login-button",
			},
			ExpectedText: "Products",
		},
	})

	result, err := engine.Run(context.Background(), "https://shop.example.com", nil, false)
	require.NoError(t, err)
	assert.Equal(t, StatusPassed, result.Scenarios[0].Status)

	actions := driver.pages[0].actions
	assert.Contains(t, actions, "fill:#user=standard_user")
	assert.Contains(t, actions, "fill:#pass=secret_sauce")
	assert.Contains(t, actions, "click:#login-button")
	assert.Contains(t, actions, "waittext:Products")
}

func TestEngine_Run_NavigationStepByURL(t *testing.T) {
	driver := &fakeDriver{}
	engine, registry := newTestEngine(t, driver, nil)
	mustAdd(t, registry, "shop.example.com", "Deep Link", []step.Step{
		{
			Kind:        step.KindNavigation,
			Description: "Open inventory",
			Payload:     step.Payload{URL: "https://shop.example.com/inventory"},
		},
	})

	result, err := engine.Run(context.Background(), "https://shop.example.com", nil, false)
	require.NoError(t, err)
	assert.Equal(t, StatusPassed, result.Scenarios[0].Status)
	assert.Contains(t, driver.pages[0].actions, "navigate:https://shop.example.com/inventory")
}

func TestLoginSelectors(t *testing.T) {
	tests := []struct {
		name     string
		selector string
		wantUser string
		wantPass string
	}{
		{"both provided", "#user, #pass", "#user", "#pass"},
		{"single selector", "#user", "#user", defaultPasswordSelector},
		{"empty", "", defaultUsernameSelector, defaultPasswordSelector},
		{"extra whitespace", "  #user ,  #pass ", "#user", "#pass"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			user, pass := loginSelectors(tt.selector)
			assert.Equal(t, tt.wantUser, user)
			assert.Equal(t, tt.wantPass, pass)
		})
	}
}

func TestArtifactName(t *testing.T) {
	assert.Equal(t, "login-flow", artifactName("Login Flow"))
	assert.Equal(t, "scenario", artifactName("!!!"))
	assert.Equal(t, "error-handling", artifactName("Error/Handling"))
}
