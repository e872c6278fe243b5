package policy

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/viant/afs"
	"gopkg.in/yaml.v3"
)

// Environment variables honoured by the engine.
const (
	// EnvRules holds a JSON override table keyed by tool name.
	EnvRules = "TOOL_POLICY_RULES_JSON"
	// EnvHTTPPostDomains holds a comma separated domain allow-list for the
	// built-in http_post rule.
	EnvHTTPPostDomains = "TOOL_HTTP_POST_ALLOWED_DOMAINS"
)

// builtinRules returns the default rule table. An override installed for a
// tool fully replaces its entry here.
func builtinRules() map[string]*Rule {
	return map[string]*Rule{
		"http_post": {
			MinRole:        RoleOperator,
			AllowedDomains: httpPostDomainsFromEnv(),
		},
		"kb_search":        {MinRole: RoleViewer},
		"create_ticket":    {MinRole: RoleViewer},
		"generate_runbook": {MinRole: RoleViewer},
		"notify":           {MinRole: RoleViewer},
		"restart_service":  {MinRole: RoleViewer},
		"publish_draft":    {MinRole: RoleViewer},
	}
}

func httpPostDomainsFromEnv() []string {
	raw := strings.TrimSpace(os.Getenv(EnvHTTPPostDomains))
	if raw == "" {
		return nil
	}
	var domains []string
	for _, item := range strings.Split(raw, ",") {
		if item = strings.ToLower(strings.TrimSpace(item)); item != "" {
			domains = append(domains, item)
		}
	}
	if len(domains) == 0 {
		return nil
	}
	return domains
}

// rulesFromEnv decodes the JSON override table. Malformed input is ignored
// rather than failing startup; the built-in rules still apply.
func rulesFromEnv() map[string]*Rule {
	raw := strings.TrimSpace(os.Getenv(EnvRules))
	if raw == "" {
		return nil
	}
	var rules map[string]*Rule
	if err := json.Unmarshal([]byte(raw), &rules); err != nil {
		return nil
	}
	for _, rule := range rules {
		if rule != nil {
			rule.MinRole = ParseRole(string(rule.MinRole))
		}
	}
	return rules
}

// Rules is the serialisable rule document loadable from YAML.
type Rules struct {
	Tools map[string]*Rule `json:"tools" yaml:"tools"`
}

// LoadRules downloads and decodes a YAML rule document from the supplied URL
// (file, mem or any scheme the afs service understands).
func LoadRules(ctx context.Context, URL string) (*Rules, error) {
	fs := afs.New()
	data, err := fs.DownloadWithURL(ctx, URL)
	if err != nil {
		return nil, fmt.Errorf("failed to load policy rules from %v: %w", URL, err)
	}
	rules := &Rules{}
	if err := yaml.Unmarshal(data, rules); err != nil {
		return nil, fmt.Errorf("failed to decode policy rules from %v: %w", URL, err)
	}
	for _, rule := range rules.Tools {
		if rule != nil {
			rule.MinRole = ParseRole(string(rule.MinRole))
		}
	}
	return rules, nil
}

// LoadOverrides loads a YAML rule document and installs every entry as a
// runtime override.
func (e *Engine) LoadOverrides(ctx context.Context, URL string) error {
	rules, err := LoadRules(ctx, URL)
	if err != nil {
		return err
	}
	for tool, rule := range rules.Tools {
		e.Override(tool, rule)
	}
	return nil
}
