// Package proposer turns free form operator questions into candidate tool
// actions.
package proposer

import (
	"regexp"
	"strings"

	"github.com/viant/gator/internal/idgen"
	"github.com/viant/gator/model/action"
)

// Outcome carries the proposals built for a single question.
type Outcome struct {
	Plan      []string           `json:"plan"`
	Proposals []*action.Proposal `json:"proposals"`
	Guardrail Guardrail          `json:"guardrail"`
}

// Blocked reports whether the question was refused before proposal building.
func (o *Outcome) Blocked() bool {
	return o.Guardrail.Blocked
}

// Service builds action proposals with a keyword router. Identifier
// generation is injectable for deterministic tests.
type Service struct {
	newID func() string
}

// Option customises the proposer.
type Option func(*Service)

// WithIdentifierFunc overrides action id generation.
func WithIdentifierFunc(newID func() string) Option {
	return func(s *Service) { s.newID = newID }
}

// New creates a proposer service.
func New(options ...Option) *Service {
	ret := &Service{newID: idgen.New}
	for _, option := range options {
		option(ret)
	}
	return ret
}

var draftIDPattern = regexp.MustCompile(`\b[0-9a-f]{8}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{12}\b`)

// Build screens the question and routes it to tool proposals.
func (s *Service) Build(question string) *Outcome {
	ret := &Outcome{Guardrail: Screen(question)}
	if ret.Guardrail.Blocked {
		ret.Plan = []string{"Refuse request"}
		return ret
	}
	lowered := strings.ToLower(question)

	if strings.Contains(lowered, "ticket") || strings.Contains(question, "티켓") {
		ret.Proposals = append(ret.Proposals, s.proposal(
			"create_ticket",
			map[string]interface{}{"summary": question},
			action.RiskLow,
			"User requested ticket creation.",
		))
	}
	if strings.Contains(lowered, "runbook") || strings.Contains(question, "런북") {
		ret.Proposals = append(ret.Proposals, s.proposal(
			"generate_runbook",
			map[string]interface{}{"topic": question},
			action.RiskLow,
			"User asked for runbook.",
		))
	}
	if strings.Contains(lowered, "notify") || strings.Contains(question, "알림") {
		ret.Proposals = append(ret.Proposals, s.proposal(
			"notify",
			map[string]interface{}{"channel": "ops", "message": question},
			action.RiskLow,
			"User requested notification.",
		))
	}
	if strings.Contains(lowered, "restart") || strings.Contains(question, "재시작") {
		environment := "unknown"
		if strings.Contains(lowered, "prod") || strings.Contains(question, "프로덕션") {
			environment = "production"
		}
		ret.Proposals = append(ret.Proposals, s.proposal(
			"restart_service",
			map[string]interface{}{"service": "database", "environment": environment},
			action.RiskHigh,
			"Service restart requested.",
		))
	}
	if strings.Contains(lowered, "webhook") || strings.Contains(lowered, "http post") || strings.Contains(lowered, "http_post") {
		ret.Proposals = append(ret.Proposals, s.proposal(
			"http_post",
			NormalizeWebhookArgs(question, nil),
			action.RiskMedium,
			"User requested webhook delivery.",
		))
	}
	if strings.Contains(lowered, "publish") {
		args := map[string]interface{}{"request": question}
		if draftID := draftIDPattern.FindString(lowered); draftID != "" {
			args["draft_id"] = draftID
		}
		ret.Proposals = append(ret.Proposals, s.proposal(
			"publish_draft",
			args,
			action.RiskHigh,
			"User requested draft publication.",
		))
	}
	if strings.Contains(lowered, "kb") || strings.Contains(question, "검색") {
		ret.Proposals = append(ret.Proposals, s.proposal(
			"kb_search",
			map[string]interface{}{"query": question},
			action.RiskLow,
			"User requested KB search.",
		))
	}

	ret.Plan = append(ret.Plan, "Interpret request")
	for _, proposal := range ret.Proposals {
		ret.Plan = append(ret.Plan, "Execute tool: "+proposal.Tool)
	}
	return ret
}

func (s *Service) proposal(tool string, args map[string]interface{}, risk action.Risk, rationale string) *action.Proposal {
	return &action.Proposal{
		ActionID:  s.newID(),
		Tool:      tool,
		Args:      args,
		Risk:      risk,
		Rationale: rationale,
	}
}
