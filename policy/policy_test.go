package policy

import (
	"context"
	"io"
	"log"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/viant/afs"
)

func silentEngine(options ...Option) *Engine {
	options = append([]Option{WithLogger(log.New(io.Discard, "", 0))}, options...)
	return New(options...)
}

func TestEngine_Evaluate(t *testing.T) {
	type testCase struct {
		name        string
		actor       Actor
		tool        string
		args        map[string]interface{}
		overrides   map[string]*Rule
		expectAllow bool
		expectOneOf []string
	}

	tests := []testCase{
		{
			name:        "unknown tool denies by default",
			actor:       Actor{ID: "u1", Role: RoleAdmin},
			tool:        "drop_database",
			expectAllow: false,
			expectOneOf: []string{ReasonNoPolicy},
		},
		{
			name:        "viewer below operator minimum",
			actor:       Actor{ID: "u1", Role: RoleViewer},
			tool:        "http_post",
			args:        map[string]interface{}{"url": "https://hooks.example.com/x"},
			expectAllow: false,
			expectOneOf: []string{"role_required:operator"},
		},
		{
			name:        "viewer allowed for notify",
			actor:       Actor{ID: "u1", Role: RoleViewer},
			tool:        "notify",
			expectAllow: true,
			expectOneOf: []string{ReasonAllowed},
		},
		{
			name:  "allow-list admits exact domain",
			actor: Actor{ID: "u1", Role: RoleOperator},
			tool:  "http_post",
			args:  map[string]interface{}{"url": "https://allowed.com/hook"},
			overrides: map[string]*Rule{
				"http_post": {MinRole: RoleOperator, AllowedDomains: []string{"allowed.com"}},
			},
			expectAllow: true,
			expectOneOf: []string{ReasonAllowed},
		},
		{
			name:  "allow-list admits subdomain",
			actor: Actor{ID: "u1", Role: RoleOperator},
			tool:  "http_post",
			args:  map[string]interface{}{"url": "https://api.Allowed.COM./hook"},
			overrides: map[string]*Rule{
				"http_post": {MinRole: RoleOperator, AllowedDomains: []string{"allowed.com"}},
			},
			expectAllow: true,
			expectOneOf: []string{ReasonAllowed},
		},
		{
			name:  "suffix match anchors on dot boundary",
			actor: Actor{ID: "u1", Role: RoleOperator},
			tool:  "http_post",
			args:  map[string]interface{}{"url": "https://evil-allowed.com/hook"},
			overrides: map[string]*Rule{
				"http_post": {MinRole: RoleOperator, AllowedDomains: []string{"allowed.com"}},
			},
			expectAllow: false,
			expectOneOf: []string{ReasonDomainNotAllowed},
		},
		{
			name:  "missing url denies",
			actor: Actor{ID: "u1", Role: RoleOperator},
			tool:  "http_post",
			overrides: map[string]*Rule{
				"http_post": {MinRole: RoleOperator, AllowedDomains: []string{"allowed.com"}},
			},
			expectAllow: false,
			expectOneOf: []string{ReasonMissingHostname},
		},
		{
			name:  "override fully replaces built-in rule",
			actor: Actor{ID: "u1", Role: RoleViewer},
			tool:  "notify",
			overrides: map[string]*Rule{
				"notify": {MinRole: RoleAdmin},
			},
			expectAllow: false,
			expectOneOf: []string{"role_required:admin"},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			engine := silentEngine()
			for tool, rule := range tc.overrides {
				engine.Override(tool, rule)
			}
			decision := engine.Evaluate(tc.actor, tc.tool, tc.args, "trace-1")
			assert.EqualValues(t, tc.expectAllow, decision.Allowed, tc.name)
			assert.Contains(t, tc.expectOneOf, decision.Reason, tc.name)
			assert.EqualValues(t, PolicyID, decision.PolicyID, tc.name)
			assert.False(t, decision.EvaluatedAt.IsZero(), tc.name)
		})
	}
}

func TestParseRole(t *testing.T) {
	assert.EqualValues(t, RoleViewer, ParseRole(""))
	assert.EqualValues(t, RoleViewer, ParseRole("root"))
	assert.EqualValues(t, RoleOperator, ParseRole(" Operator "))
	assert.EqualValues(t, RoleAdmin, ParseRole("ADMIN"))
	assert.True(t, RoleAdmin.AtLeast(RoleOperator))
	assert.False(t, RoleViewer.AtLeast(RoleOperator))
}

func TestEngine_LoadOverrides(t *testing.T) {
	ctx := context.Background()
	fs := afs.New()
	URL := "mem://localhost/gator/policy/rules.yaml"
	document := `
tools:
  http_post:
    minRole: admin
    allowedDomains:
      - hooks.internal.example
  notify:
    minRole: operator
`
	err := fs.Upload(ctx, URL, 0644, strings.NewReader(document))
	assert.NoError(t, err)

	engine := silentEngine()
	err = engine.LoadOverrides(ctx, URL)
	assert.NoError(t, err)

	decision := engine.Evaluate(Actor{ID: "u1", Role: RoleOperator}, "http_post",
		map[string]interface{}{"url": "https://hooks.internal.example/x"}, "")
	assert.False(t, decision.Allowed)
	assert.EqualValues(t, "role_required:admin", decision.Reason)

	decision = engine.Evaluate(Actor{ID: "u1", Role: RoleOperator}, "notify", nil, "")
	assert.True(t, decision.Allowed)
}
