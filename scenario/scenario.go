package scenario

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/replaykit/replaykit/step"
)

var (
	// ErrScenarioNotFound is returned when no scenario with the requested
	// name exists in the domain.
	ErrScenarioNotFound = errors.New("scenario not found")

	// ErrInvalidName is returned when a scenario has no name.
	ErrInvalidName = errors.New("scenario name is required")

	// ErrInvalidDomain is returned when a scenario is stored without a domain key.
	ErrInvalidDomain = errors.New("scenario domain is required")
)

// Scenario is a named, ordered, immutable step sequence keyed by a normalized
// domain. Scenarios are never mutated after creation; re-recording under the
// same name appends a new entry rather than overwriting.
type Scenario struct {
	ID        uuid.UUID   `json:"id"`
	Domain    string      `json:"domain"`
	Name      string      `json:"name"`
	Steps     []step.Step `json:"steps"`
	CreatedAt time.Time   `json:"created_at"`
}

// New freezes a step sequence into a scenario. The steps slice is copied so
// the caller's buffer cannot mutate the scenario afterwards.
func New(domain, name string, steps []step.Step) *Scenario {
	frozen := make([]step.Step, len(steps))
	copy(frozen, steps)
	return &Scenario{
		ID:        uuid.New(),
		Domain:    domain,
		Name:      name,
		Steps:     frozen,
		CreatedAt: time.Now(),
	}
}

// Validate checks the scenario's required fields.
func (s *Scenario) Validate() error {
	if s.Name == "" {
		return ErrInvalidName
	}
	if s.Domain == "" {
		return ErrInvalidDomain
	}
	return nil
}

// Store defines scenario persistence. Both the in-memory registry and the
// GORM-backed store implement it with identical semantics: Add never
// deduplicates by name, List returns an empty slice for unknown domains, and
// FindByName returns the most recently added scenario on duplicates.
type Store interface {
	Add(ctx context.Context, sc *Scenario) error
	List(ctx context.Context, domain string) ([]*Scenario, error)
	FindByName(ctx context.Context, domain, name string) (*Scenario, error)
}

// NormalizeDomain reduces a URL or bare host to its domain key: the scheme
// and a single leading "www." are stripped and only the authority segment up
// to the first "/" is kept. The function is idempotent, so already-normalized
// keys pass through unchanged.
func NormalizeDomain(rawURL string) string {
	d := strings.TrimSpace(rawURL)
	if i := strings.Index(d, "://"); i >= 0 {
		d = d[i+3:]
	}
	d = strings.TrimPrefix(d, "www.")
	if i := strings.IndexByte(d, '/'); i >= 0 {
		d = d[:i]
	}
	return strings.ToLower(d)
}
