package scenario

import (
	"context"
	"sync"
)

// Registry is the in-memory scenario store. Scenarios are kept per domain in
// insertion order; reads and writes on distinct domains never block each
// other beyond the brief map access.
type Registry struct {
	mu      sync.RWMutex
	domains map[string][]*Scenario
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{domains: make(map[string][]*Scenario)}
}

// Add appends the scenario to its domain bucket. Duplicate names coexist.
func (r *Registry) Add(ctx context.Context, sc *Scenario) error {
	if err := sc.Validate(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.domains[sc.Domain] = append(r.domains[sc.Domain], sc)
	return nil
}

// List returns the domain's scenarios in insertion order. Unknown domains
// yield an empty slice, never an error.
func (r *Registry) List(ctx context.Context, domain string) ([]*Scenario, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	bucket := r.domains[domain]
	out := make([]*Scenario, len(bucket))
	copy(out, bucket)
	return out, nil
}

// FindByName returns the most recently added scenario with the given name.
func (r *Registry) FindByName(ctx context.Context, domain, name string) (*Scenario, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	bucket := r.domains[domain]
	for i := len(bucket) - 1; i >= 0; i-- {
		if bucket[i].Name == name {
			return bucket[i], nil
		}
	}
	return nil, ErrScenarioNotFound
}
