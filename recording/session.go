package recording

import (
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/replaykit/replaykit/step"
)

var (
	// ErrInvalidInput is returned when a required argument is empty.
	ErrInvalidInput = errors.New("target url and scenario name are required")

	// ErrMalformedURL is returned when the target URL cannot be normalized
	// to an absolute http(s) URL.
	ErrMalformedURL = errors.New("malformed target url")

	// ErrSessionNotFound is returned when no active session matches the id.
	ErrSessionNotFound = errors.New("recording session not found")

	// ErrSessionNotActive is returned when a step arrives after the session
	// has been stopped.
	ErrSessionNotActive = errors.New("recording session is not active")
)

// Status is the lifecycle state of a recording session.
type Status string

const (
	StatusActive  Status = "active"
	StatusStopped Status = "stopped"
)

// Session is an in-progress capture. TargetURL and ScenarioName are fixed at
// creation; the step buffer is append-only and only mutable while active.
// The session's own mutex serializes mutation so concurrent appends to
// distinct sessions never contend.
type Session struct {
	ID           uuid.UUID
	TargetURL    string
	ScenarioName string
	CreatedAt    time.Time

	mu        sync.Mutex
	status    Status
	steps     []step.Step
	lastStamp time.Time
}

func newSession(targetURL, scenarioName string) *Session {
	return &Session{
		ID:           uuid.New(),
		TargetURL:    targetURL,
		ScenarioName: scenarioName,
		CreatedAt:    time.Now(),
		status:       StatusActive,
		steps:        make([]step.Step, 0),
	}
}

// append stamps the step with a monotonically increasing timestamp and adds
// it to the buffer. Fails once the session has stopped.
func (s *Session) append(st step.Step) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.status != StatusActive {
		return ErrSessionNotActive
	}

	now := time.Now()
	if !now.After(s.lastStamp) {
		now = s.lastStamp.Add(time.Nanosecond)
	}
	st.Timestamp = now
	s.lastStamp = now

	s.steps = append(s.steps, st)
	return nil
}

// snapshot returns a copy of the recorded steps in arrival order.
func (s *Session) snapshot() []step.Step {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]step.Step, len(s.steps))
	copy(out, s.steps)
	return out
}

// stop transitions the session to its terminal state and returns the frozen
// step buffer. The transition happens at most once.
func (s *Session) stop() ([]step.Step, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.status != StatusActive {
		return nil, ErrSessionNotActive
	}
	s.status = StatusStopped

	frozen := make([]step.Step, len(s.steps))
	copy(frozen, s.steps)
	return frozen, nil
}

// Status returns the session's current lifecycle state.
func (s *Session) Status() Status {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.status
}
