package step

import (
	"errors"
	"time"
)

var (
	// ErrInvalidKind is returned when a step carries a kind outside the known taxonomy.
	ErrInvalidKind = errors.New("invalid step kind")

	// ErrMissingDescription is returned when a step has no description.
	ErrMissingDescription = errors.New("step description is required")

	// ErrMissingSelector is returned when a step that targets an element has no selector.
	ErrMissingSelector = errors.New("step selector is required")
)

// Kind classifies a single interaction or assertion step.
type Kind string

const (
	KindLogin      Kind = "login"
	KindNavigation Kind = "navigation"
	KindAction     Kind = "action"
	KindClick      Kind = "click"
	KindFill       Kind = "fill"
	KindSelect     Kind = "select"
	KindCheck      Kind = "check"
	KindUncheck    Kind = "uncheck"
)

// IsValid checks if the kind belongs to the known taxonomy.
func (k Kind) IsValid() bool {
	switch k {
	case KindLogin, KindNavigation, KindAction, KindClick,
		KindFill, KindSelect, KindCheck, KindUncheck:
		return true
	default:
		return false
	}
}

// Payload carries kind-specific step data. Unknown keys in incoming JSON are
// silently dropped on decode, so extra fields never affect replay or codegen.
type Payload struct {
	// Username and Password are used by login steps.
	Username string `json:"username,omitempty"`
	Password string `json:"password,omitempty"`

	// SubmitSelector is the element clicked to submit a login form.
	SubmitSelector string `json:"submit_selector,omitempty"`

	// Value is the input for fill and select steps.
	Value string `json:"value,omitempty"`

	// URL is the target of a navigation-by-URL step.
	URL string `json:"url,omitempty"`
}

// IsZero reports whether the payload carries no data.
func (p Payload) IsZero() bool {
	return p == Payload{}
}

// Step is one unit of interaction or assertion within a scenario. Steps form a
// totally ordered sequence; the order is semantically meaningful and replay
// must preserve it.
type Step struct {
	Kind        Kind    `json:"kind"`
	Description string  `json:"description"`
	Selector    string  `json:"selector,omitempty"`
	Payload     Payload `json:"payload,omitempty"`

	// ExpectedText, when set, is a post-condition: the text must become
	// visible after the step executes.
	ExpectedText string `json:"expected_text,omitempty"`

	// Timestamp orders steps within a session. It is never used for identity.
	Timestamp time.Time `json:"timestamp"`
}

// Validate checks the structural invariants of a step. A selector is required
// for every kind except a navigation step that targets a URL directly.
func (s *Step) Validate() error {
	if !s.Kind.IsValid() {
		return ErrInvalidKind
	}
	if s.Description == "" {
		return ErrMissingDescription
	}
	if s.Selector == "" {
		if s.Kind == KindNavigation && s.Payload.URL != "" {
			return nil
		}
		return ErrMissingSelector
	}
	return nil
}

// NavigatesByURL reports whether the step is a pure URL navigation rather
// than a click on a navigation element.
func (s *Step) NavigatesByURL() bool {
	return s.Kind == KindNavigation && s.Selector == "" && s.Payload.URL != ""
}
