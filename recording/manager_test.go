package recording

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/replaykit/replaykit/logger"
	"github.com/replaykit/replaykit/step"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestManager() *Manager {
	return NewManager(logger.NewTestLogger())
}

func clickStep(desc string) step.Step {
	return step.Step{Kind: step.KindClick, Description: desc, Selector: "#btn"}
}

func TestManager_Start(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name         string
		targetURL    string
		scenarioName string
		wantErr      error
	}{
		{name: "valid https url", targetURL: "https://www.saucedemo.com", scenarioName: "Login Flow"},
		{name: "scheme auto prefixed", targetURL: "saucedemo.com", scenarioName: "Login Flow"},
		{name: "empty url", targetURL: "", scenarioName: "Login Flow", wantErr: ErrInvalidInput},
		{name: "empty scenario name", targetURL: "https://saucedemo.com", scenarioName: "", wantErr: ErrInvalidInput},
		{name: "whitespace only", targetURL: "   ", scenarioName: "Login Flow", wantErr: ErrInvalidInput},
		{name: "unsupported scheme", targetURL: "ftp://example.com", scenarioName: "Flow", wantErr: ErrMalformedURL},
		{name: "scheme without host", targetURL: "https://", scenarioName: "Flow", wantErr: ErrMalformedURL},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := newTestManager()

			id, err := m.Start(ctx, tt.targetURL, tt.scenarioName)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				// A failed start must not leave a session behind.
				assert.Equal(t, 0, m.ActiveCount())
				return
			}
			require.NoError(t, err)
			assert.NotEqual(t, uuid.Nil, id)
			assert.Equal(t, 1, m.ActiveCount())
		})
	}
}

func TestManager_StartGeneratesUniqueIDs(t *testing.T) {
	ctx := context.Background()
	m := newTestManager()

	seen := make(map[uuid.UUID]bool)
	for i := 0; i < 100; i++ {
		id, err := m.Start(ctx, "https://example.com", fmt.Sprintf("flow-%d", i))
		require.NoError(t, err)
		assert.False(t, seen[id], "duplicate session id %s", id)
		seen[id] = true
	}
}

func TestManager_RecordAndSteps(t *testing.T) {
	ctx := context.Background()
	m := newTestManager()

	id, err := m.Start(ctx, "https://saucedemo.com", "Login Flow")
	require.NoError(t, err)

	// Empty snapshot before anything is recorded.
	steps, err := m.Steps(ctx, id)
	require.NoError(t, err)
	assert.Empty(t, steps)

	require.NoError(t, m.Record(ctx, id, clickStep("first")))
	require.NoError(t, m.Record(ctx, id, clickStep("second")))
	require.NoError(t, m.Record(ctx, id, clickStep("third")))

	steps, err = m.Steps(ctx, id)
	require.NoError(t, err)
	require.Len(t, steps, 3)
	assert.Equal(t, "first", steps[0].Description)
	assert.Equal(t, "second", steps[1].Description)
	assert.Equal(t, "third", steps[2].Description)

	// Timestamps are strictly increasing in arrival order.
	assert.True(t, steps[1].Timestamp.After(steps[0].Timestamp))
	assert.True(t, steps[2].Timestamp.After(steps[1].Timestamp))
}

func TestManager_RecordUnknownSession(t *testing.T) {
	ctx := context.Background()
	m := newTestManager()

	err := m.Record(ctx, uuid.New(), clickStep("orphan"))
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestManager_RecordInvalidStep(t *testing.T) {
	ctx := context.Background()
	m := newTestManager()

	id, err := m.Start(ctx, "https://saucedemo.com", "Login Flow")
	require.NoError(t, err)

	err = m.Record(ctx, id, step.Step{Kind: step.KindClick, Description: "no selector"})
	assert.ErrorIs(t, err, step.ErrMissingSelector)

	steps, err := m.Steps(ctx, id)
	require.NoError(t, err)
	assert.Empty(t, steps)
}

func TestManager_Stop(t *testing.T) {
	ctx := context.Background()
	m := newTestManager()

	id, err := m.Start(ctx, "https://www.saucedemo.com/", "Login Flow")
	require.NoError(t, err)
	require.NoError(t, m.Record(ctx, id, clickStep("login")))

	sc, targetURL, err := m.Stop(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "saucedemo.com", sc.Domain)
	assert.Equal(t, "Login Flow", sc.Name)
	assert.Equal(t, "https://www.saucedemo.com/", targetURL)
	require.Len(t, sc.Steps, 1)
	assert.Equal(t, "login", sc.Steps[0].Description)

	// The session is purged: polls, appends, and repeat stops all miss.
	assert.Equal(t, 0, m.ActiveCount())
	_, err = m.Steps(ctx, id)
	assert.ErrorIs(t, err, ErrSessionNotFound)
	err = m.Record(ctx, id, clickStep("late"))
	assert.ErrorIs(t, err, ErrSessionNotFound)
	_, _, err = m.Stop(ctx, id)
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestManager_StopUnknownSession(t *testing.T) {
	ctx := context.Background()
	m := newTestManager()

	_, _, err := m.Stop(ctx, uuid.New())
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestManager_ConcurrentSessions(t *testing.T) {
	ctx := context.Background()
	m := newTestManager()

	const sessions = 20
	const stepsPerSession = 25

	ids := make([]uuid.UUID, sessions)
	for i := range ids {
		id, err := m.Start(ctx, "https://example.com", fmt.Sprintf("flow-%d", i))
		require.NoError(t, err)
		ids[i] = id
	}

	var wg sync.WaitGroup
	for _, id := range ids {
		wg.Add(1)
		go func(id uuid.UUID) {
			defer wg.Done()
			for j := 0; j < stepsPerSession; j++ {
				assert.NoError(t, m.Record(ctx, id, clickStep(fmt.Sprintf("step-%d", j))))
			}
		}(id)
	}
	wg.Wait()

	// Each session kept its own ordered sequence intact.
	for _, id := range ids {
		steps, err := m.Steps(ctx, id)
		require.NoError(t, err)
		require.Len(t, steps, stepsPerSession)
		for j, st := range steps {
			assert.Equal(t, fmt.Sprintf("step-%d", j), st.Description)
		}
	}
}

func TestManager_ConcurrentStopSingleWinner(t *testing.T) {
	ctx := context.Background()
	m := newTestManager()

	id, err := m.Start(ctx, "https://example.com", "flow")
	require.NoError(t, err)

	const callers = 10
	var wg sync.WaitGroup
	results := make(chan error, callers)
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _, err := m.Stop(ctx, id)
			results <- err
		}()
	}
	wg.Wait()
	close(results)

	var succeeded int
	for err := range results {
		if err == nil {
			succeeded++
		} else {
			assert.ErrorIs(t, err, ErrSessionNotFound)
		}
	}
	assert.Equal(t, 1, succeeded)
}
