package recording

import (
	"context"
	"net/url"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/replaykit/replaykit/logger"
	"github.com/replaykit/replaykit/scenario"
	"github.com/replaykit/replaykit/step"
)

// Manager owns the registry of active recording sessions. Stopped sessions
// are purged immediately; their frozen step sequences live on as scenarios.
type Manager struct {
	mu       sync.RWMutex
	sessions map[uuid.UUID]*Session
	logger   logger.Logger
}

// NewManager creates a manager with no active sessions.
func NewManager(log logger.Logger) *Manager {
	return &Manager{
		sessions: make(map[uuid.UUID]*Session),
		logger:   log,
	}
}

// Start allocates a new active session and returns its id. The target URL is
// normalized (a missing scheme gets "https://") and must parse to an absolute
// http(s) URL.
func (m *Manager) Start(ctx context.Context, targetURL, scenarioName string) (uuid.UUID, error) {
	targetURL = strings.TrimSpace(targetURL)
	scenarioName = strings.TrimSpace(scenarioName)
	if targetURL == "" || scenarioName == "" {
		return uuid.Nil, ErrInvalidInput
	}

	normalized, err := normalizeTargetURL(targetURL)
	if err != nil {
		return uuid.Nil, err
	}

	sess := newSession(normalized, scenarioName)

	m.mu.Lock()
	m.sessions[sess.ID] = sess
	m.mu.Unlock()

	m.logger.Info(ctx, "recording started", logger.Fields{
		"session_id":    sess.ID.String(),
		"target_url":    normalized,
		"scenario_name": scenarioName,
	})
	return sess.ID, nil
}

// Record appends a step to the session's buffer, preserving arrival order.
func (m *Manager) Record(ctx context.Context, id uuid.UUID, st step.Step) error {
	if err := st.Validate(); err != nil {
		return err
	}

	m.mu.RLock()
	sess, ok := m.sessions[id]
	m.mu.RUnlock()
	if !ok {
		return ErrSessionNotFound
	}

	if err := sess.append(st); err != nil {
		return err
	}

	m.logger.Debug(ctx, "step recorded", logger.Fields{
		"session_id":  id.String(),
		"kind":        string(st.Kind),
		"description": st.Description,
	})
	return nil
}

// Steps returns a snapshot of the session's recorded steps, usable for
// progress polling while the recording is still active.
func (m *Manager) Steps(ctx context.Context, id uuid.UUID) ([]step.Step, error) {
	m.mu.RLock()
	sess, ok := m.sessions[id]
	m.mu.RUnlock()
	if !ok {
		return nil, ErrSessionNotFound
	}
	return sess.snapshot(), nil
}

// Stop transitions the session to stopped, removes it from the active
// registry, and freezes its step buffer into an immutable scenario keyed by
// the target URL's normalized domain. The session's normalized target URL is
// returned alongside so callers can reconstruct the recording's starting
// location. A second stop on the same id fails with ErrSessionNotFound.
func (m *Manager) Stop(ctx context.Context, id uuid.UUID) (*scenario.Scenario, string, error) {
	m.mu.Lock()
	sess, ok := m.sessions[id]
	if ok {
		delete(m.sessions, id)
	}
	m.mu.Unlock()
	if !ok {
		return nil, "", ErrSessionNotFound
	}

	steps, err := sess.stop()
	if err != nil {
		// The session raced with another stop; it is already gone from
		// the registry, so report it as unknown.
		return nil, "", ErrSessionNotFound
	}

	domain := scenario.NormalizeDomain(sess.TargetURL)
	sc := scenario.New(domain, sess.ScenarioName, steps)

	m.logger.Info(ctx, "recording stopped", logger.Fields{
		"session_id":    id.String(),
		"domain":        domain,
		"scenario_name": sess.ScenarioName,
		"steps":         len(steps),
	})
	return sc, sess.TargetURL, nil
}

// ActiveCount returns the number of currently active sessions.
func (m *Manager) ActiveCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}

// normalizeTargetURL prefixes a missing scheme with https:// and validates
// that the result is an absolute http(s) URL.
func normalizeTargetURL(raw string) (string, error) {
	if !strings.Contains(raw, "://") {
		raw = "https://" + raw
	}

	u, err := url.Parse(raw)
	if err != nil {
		return "", ErrMalformedURL
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return "", ErrMalformedURL
	}
	return u.String(), nil
}
