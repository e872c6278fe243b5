package policy

import (
	"encoding/json"
	"log"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/viant/gator/internal/clock"
	"github.com/viant/toolbox"
)

const (
	// PolicyID identifies the rule set producing decisions.
	PolicyID = "tool-exec"
	// PolicyVersion is bumped whenever built-in rule semantics change.
	PolicyVersion = "v1"
)

// Decision reason codes.
const (
	ReasonAllowed          = "allowed"
	ReasonNoPolicy         = "no_policy"
	ReasonMissingHostname  = "missing_hostname"
	ReasonDomainNotAllowed = "domain_not_allowed"
	reasonRolePrefix       = "role_required:"
)

// Decision is the allow/deny verdict for a single actor/tool/args triple.
type Decision struct {
	Allowed       bool      `json:"allowed"`
	Reason        string    `json:"reason"`
	PolicyID      string    `json:"policy_id"`
	PolicyVersion string    `json:"policy_version"`
	EvaluatedAt   time.Time `json:"evaluated_at"`
}

// Rule constrains who may invoke a tool. A nil AllowedDomains slice disables
// the destination check; an empty slice denies every destination.
type Rule struct {
	MinRole        Role     `json:"min_role" yaml:"minRole"`
	AllowedDomains []string `json:"allowed_domains,omitempty" yaml:"allowedDomains,omitempty"`
}

// Engine evaluates tool-access rules. It is stateless apart from the rule
// tables and never mutates any store; logging is its only side effect.
type Engine struct {
	mux       sync.RWMutex
	builtin   map[string]*Rule
	overrides map[string]*Rule
	logger    *log.Logger
}

// Option customises an Engine.
type Option func(*Engine)

// WithLogger overrides the decision logger.
func WithLogger(logger *log.Logger) Option {
	return func(e *Engine) { e.logger = logger }
}

// WithBuiltinRules replaces the built-in rule table.
func WithBuiltinRules(rules map[string]*Rule) Option {
	return func(e *Engine) { e.builtin = rules }
}

// New creates a policy engine with the built-in rule set and any overrides
// found in the environment (see config.go).
func New(options ...Option) *Engine {
	ret := &Engine{
		builtin:   builtinRules(),
		overrides: map[string]*Rule{},
		logger:    log.Default(),
	}
	for _, option := range options {
		option(ret)
	}
	for tool, rule := range rulesFromEnv() {
		ret.overrides[tool] = rule
	}
	return ret
}

// Override installs or replaces the rule for a tool at runtime. The override
// fully replaces the built-in rule; passing nil removes the override.
func (e *Engine) Override(tool string, rule *Rule) {
	e.mux.Lock()
	defer e.mux.Unlock()
	if rule == nil {
		delete(e.overrides, tool)
		return
	}
	e.overrides[tool] = rule
}

// Evaluate maps (actor, tool, args) to an allow/deny decision with a reason
// code. A tool without a rule denies by default.
func (e *Engine) Evaluate(actor Actor, tool string, args map[string]interface{}, traceID string) *Decision {
	rule := e.resolveRule(tool)
	decision := e.decide(rule, actor, args)
	e.logDecision(actor, tool, traceID, decision)
	return decision
}

func (e *Engine) decide(rule *Rule, actor Actor, args map[string]interface{}) *Decision {
	if rule == nil {
		return e.newDecision(false, ReasonNoPolicy)
	}
	if !actor.Role.AtLeast(rule.MinRole) {
		return e.newDecision(false, reasonRolePrefix+string(rule.MinRole))
	}
	if rule.AllowedDomains != nil {
		hostname := extractHostname(destinationURL(args))
		if hostname == "" {
			return e.newDecision(false, ReasonMissingHostname)
		}
		if !domainAllowed(hostname, rule.AllowedDomains) {
			return e.newDecision(false, ReasonDomainNotAllowed)
		}
	}
	return e.newDecision(true, ReasonAllowed)
}

func (e *Engine) resolveRule(tool string) *Rule {
	e.mux.RLock()
	defer e.mux.RUnlock()
	if rule, ok := e.overrides[tool]; ok {
		return rule
	}
	return e.builtin[tool]
}

func (e *Engine) newDecision(allowed bool, reason string) *Decision {
	return &Decision{
		Allowed:       allowed,
		Reason:        reason,
		PolicyID:      PolicyID,
		PolicyVersion: PolicyVersion,
		EvaluatedAt:   clock.Now().UTC(),
	}
}

func (e *Engine) logDecision(actor Actor, tool, traceID string, decision *Decision) {
	if e.logger == nil {
		return
	}
	payload, _ := json.Marshal(map[string]interface{}{
		"event":          "policy_decision",
		"trace_id":       traceID,
		"actor_id":       actor.ID,
		"actor_role":     actor.Role,
		"tool":           tool,
		"allowed":        decision.Allowed,
		"reason":         decision.Reason,
		"policy_id":      decision.PolicyID,
		"policy_version": decision.PolicyVersion,
		"evaluated_at":   decision.EvaluatedAt.Format(time.RFC3339Nano),
	})
	e.logger.Println(string(payload))
}

func destinationURL(args map[string]interface{}) string {
	value, ok := args["url"]
	if !ok || value == nil {
		return ""
	}
	return strings.TrimSpace(toolbox.AsString(value))
}

func extractHostname(rawURL string) string {
	if rawURL == "" {
		return ""
	}
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}
	return parsed.Hostname()
}

// domainAllowed matches the hostname against each allowed domain, either
// exactly or as a subdomain anchored on a dot boundary, so that
// evil-allowed.com never matches allowed.com.
func domainAllowed(hostname string, allowed []string) bool {
	normalized := strings.Trim(strings.ToLower(hostname), ".")
	for _, candidate := range allowed {
		domain := strings.Trim(strings.ToLower(candidate), ".")
		if domain == "" {
			continue
		}
		if normalized == domain || strings.HasSuffix(normalized, "."+domain) {
			return true
		}
	}
	return false
}
