package proposer

import "strings"

// Guardrail is the screening verdict for a question.
type Guardrail struct {
	Blocked  bool   `json:"blocked"`
	Reason   string `json:"reason"`
	Category string `json:"category"`
}

const (
	categoryPromptInjection = "prompt_injection"
	categoryCyberAbuse      = "cyber_abuse"
)

var sensitiveKeywords = []string{
	"system prompt",
	"prompt",
	"dump",
	"password",
	"token",
	"악성코드",
	"malware",
}

var cyberAbuseKeywords = map[string]bool{
	"악성코드": true,
	"malware": true,
}

// Screen rejects questions probing for secrets or abuse before any action is
// proposed.
func Screen(question string) Guardrail {
	lowered := strings.ToLower(question)
	for _, keyword := range sensitiveKeywords {
		if !strings.Contains(lowered, strings.ToLower(keyword)) {
			continue
		}
		category := categoryPromptInjection
		if cyberAbuseKeywords[keyword] {
			category = categoryCyberAbuse
		}
		return Guardrail{
			Blocked:  true,
			Reason:   "sensitive request detected: " + keyword,
			Category: category,
		}
	}
	return Guardrail{}
}
