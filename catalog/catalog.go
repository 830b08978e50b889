// Package catalog loads predefined scenario definitions from a YAML file and
// seeds them into a scenario store at startup.
package catalog

import (
	"context"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/replaykit/replaykit/logger"
	"github.com/replaykit/replaykit/scenario"
	"github.com/replaykit/replaykit/step"
)

// File is the root of a catalog document.
type File struct {
	Domains []Domain `yaml:"domains"`
}

// Domain groups scenario definitions under one site.
type Domain struct {
	Domain    string  `yaml:"domain"`
	Scenarios []Entry `yaml:"scenarios"`
}

// Entry is one named scenario definition.
type Entry struct {
	Name  string     `yaml:"name"`
	Steps []StepSpec `yaml:"steps"`
}

// StepSpec mirrors step.Step with YAML field names.
type StepSpec struct {
	Kind         string      `yaml:"kind"`
	Description  string      `yaml:"description"`
	Selector     string      `yaml:"selector,omitempty"`
	ExpectedText string      `yaml:"expected_text,omitempty"`
	Payload      PayloadSpec `yaml:"payload,omitempty"`
}

// PayloadSpec mirrors step.Payload with YAML field names.
type PayloadSpec struct {
	Username       string `yaml:"username,omitempty"`
	Password       string `yaml:"password,omitempty"`
	SubmitSelector string `yaml:"submit_selector,omitempty"`
	Value          string `yaml:"value,omitempty"`
	URL            string `yaml:"url,omitempty"`
}

// Load reads and validates a catalog file.
func Load(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog: %w", err)
	}
	return Parse(data)
}

// Parse decodes and validates catalog YAML.
func Parse(data []byte) (*File, error) {
	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("failed to parse catalog: %w", err)
	}

	for _, d := range f.Domains {
		if scenario.NormalizeDomain(d.Domain) == "" {
			return nil, fmt.Errorf("catalog domain %q is invalid", d.Domain)
		}
		for _, entry := range d.Scenarios {
			if entry.Name == "" {
				return nil, fmt.Errorf("domain %s has a scenario without a name", d.Domain)
			}
			for i, spec := range entry.Steps {
				st := spec.toStep()
				if err := st.Validate(); err != nil {
					return nil, fmt.Errorf("scenario %q step %d: %w", entry.Name, i+1, err)
				}
			}
		}
	}
	return &f, nil
}

func (s StepSpec) toStep() step.Step {
	return step.Step{
		Kind:         step.Kind(s.Kind),
		Description:  s.Description,
		Selector:     s.Selector,
		ExpectedText: s.ExpectedText,
		Payload: step.Payload{
			Username:       s.Payload.Username,
			Password:       s.Payload.Password,
			SubmitSelector: s.Payload.SubmitSelector,
			Value:          s.Payload.Value,
			URL:            s.Payload.URL,
		},
	}
}

// Seed stores every scenario in the catalog. Domains are normalized the same
// way recorded scenarios are, so catalog and recorded scenarios share a
// namespace.
func (f *File) Seed(ctx context.Context, store scenario.Store, log logger.Logger) error {
	total := 0
	for _, d := range f.Domains {
		domain := scenario.NormalizeDomain(d.Domain)
		for _, entry := range d.Scenarios {
			steps := make([]step.Step, 0, len(entry.Steps))
			for _, spec := range entry.Steps {
				steps = append(steps, spec.toStep())
			}
			sc := scenario.New(domain, entry.Name, steps)
			if err := store.Add(ctx, sc); err != nil {
				return fmt.Errorf("failed to seed scenario %q: %w", entry.Name, err)
			}
			total++
		}
	}
	log.Info(ctx, "seeded scenario catalog", logger.Fields{"scenarios": total})
	return nil
}
