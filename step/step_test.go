package step

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKind_IsValid(t *testing.T) {
	tests := []struct {
		name string
		kind Kind
		want bool
	}{
		{name: "login", kind: KindLogin, want: true},
		{name: "navigation", kind: KindNavigation, want: true},
		{name: "action", kind: KindAction, want: true},
		{name: "click", kind: KindClick, want: true},
		{name: "fill", kind: KindFill, want: true},
		{name: "select", kind: KindSelect, want: true},
		{name: "check", kind: KindCheck, want: true},
		{name: "uncheck", kind: KindUncheck, want: true},
		{name: "empty", kind: Kind(""), want: false},
		{name: "unknown", kind: Kind("hover"), want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.kind.IsValid())
		})
	}
}

func TestStep_Validate(t *testing.T) {
	tests := []struct {
		name    string
		step    Step
		wantErr error
	}{
		{
			name: "valid click",
			step: Step{Kind: KindClick, Description: "click checkout", Selector: "#checkout"},
		},
		{
			name: "valid navigation by url without selector",
			step: Step{
				Kind:        KindNavigation,
				Description: "open landing page",
				Payload:     Payload{URL: "https://example.com"},
			},
		},
		{
			name: "valid navigation by selector",
			step: Step{Kind: KindNavigation, Description: "go to cart", Selector: ".shopping_cart_link"},
		},
		{
			name:    "unknown kind",
			step:    Step{Kind: Kind("hover"), Description: "hover menu", Selector: "#menu"},
			wantErr: ErrInvalidKind,
		},
		{
			name:    "missing description",
			step:    Step{Kind: KindClick, Selector: "#checkout"},
			wantErr: ErrMissingDescription,
		},
		{
			name:    "missing selector",
			step:    Step{Kind: KindClick, Description: "click checkout"},
			wantErr: ErrMissingSelector,
		},
		{
			name:    "navigation without selector or url",
			step:    Step{Kind: KindNavigation, Description: "go somewhere"},
			wantErr: ErrMissingSelector,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.step.Validate()
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestStep_NavigatesByURL(t *testing.T) {
	byURL := Step{Kind: KindNavigation, Description: "open page", Payload: Payload{URL: "https://example.com"}}
	assert.True(t, byURL.NavigatesByURL())

	bySelector := Step{Kind: KindNavigation, Description: "go to cart", Selector: ".cart"}
	assert.False(t, bySelector.NavigatesByURL())

	click := Step{Kind: KindClick, Description: "click", Selector: "#x", Payload: Payload{URL: "https://example.com"}}
	assert.False(t, click.NavigatesByURL())
}

func TestStep_DecodeIgnoresUnknownPayloadKeys(t *testing.T) {
	raw := `{
		"kind": "fill",
		"description": "enter username",
		"selector": "#user-name",
		"payload": {"value": "standard_user", "color": "red", "weight": 42}
	}`

	var s Step
	require.NoError(t, json.Unmarshal([]byte(raw), &s))
	assert.Equal(t, KindFill, s.Kind)
	assert.Equal(t, "standard_user", s.Payload.Value)
	assert.Equal(t, Payload{Value: "standard_user"}, s.Payload)
}
