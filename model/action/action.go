package action

import (
	"strings"
	"time"

	"github.com/viant/gator/policy"
)

// Status represents the lifecycle state of an action. Exactly one status is
// authoritative per action at any time.
type Status string

const (
	StatusPending   Status = "PENDING"
	StatusApproved  Status = "APPROVED"
	StatusRunning   Status = "RUNNING"
	StatusCompleted Status = "COMPLETED"
	StatusFailed    Status = "FAILED"
	StatusRejected  Status = "REJECTED"
)

// Terminal reports whether the status is immutable. FAILED is deliberately
// excluded - an explicit retry may move a failed action back to RUNNING.
func (s Status) Terminal() bool {
	return s == StatusCompleted || s == StatusRejected
}

// PreExecution reports whether the action has not yet entered execution.
func (s Status) PreExecution() bool {
	return s == StatusPending || s == StatusApproved
}

// Risk classifies how dangerous a proposed action is. Low risk actions
// auto-execute; medium and high risk actions are queued for approval.
type Risk string

const (
	RiskLow    Risk = "low"
	RiskMedium Risk = "medium"
	RiskHigh   Risk = "high"
)

// ParseRisk normalises a free-form risk value; unrecognised input maps to
// high so that a malformed proposal can never skip the approval gate.
func ParseRisk(value string) Risk {
	switch Risk(strings.ToLower(strings.TrimSpace(value))) {
	case RiskLow:
		return RiskLow
	case RiskMedium:
		return RiskMedium
	case RiskHigh:
		return RiskHigh
	}
	return RiskHigh
}

// RequiresApproval reports whether the risk tier mandates explicit approval.
func (r Risk) RequiresApproval() bool {
	return r != RiskLow
}

// ToolResult is the opaque outcome contract of a tool invocation.
type ToolResult struct {
	Tool   string `json:"tool"`
	Ok     bool   `json:"ok"`
	Output string `json:"output"`
	Error  string `json:"error,omitempty"`
}

// Proposal is a candidate action emitted by a proposal builder before any
// policy evaluation or persistence took place.
type Proposal struct {
	ActionID  string                 `json:"action_id"`
	Tool      string                 `json:"tool"`
	Args      map[string]interface{} `json:"args"`
	Risk      Risk                   `json:"risk"`
	Rationale string                 `json:"rationale"`
}

// Action is a single proposed tool invocation tracked from creation through
// policy evaluation, approval, execution and terminal outcome.
//
// Field names follow the external wire contract, hence snake_case tags.
type Action struct {
	ID           string                 `json:"action_id"`
	TraceID      string                 `json:"trace_id,omitempty"`
	Tool         string                 `json:"tool"`
	Args         map[string]interface{} `json:"args"`
	Risk         Risk                   `json:"risk"`
	Rationale    string                 `json:"rationale,omitempty"`
	Policy       *policy.Decision       `json:"policy,omitempty"`
	Status       Status                 `json:"status"`
	CreatedAt    time.Time              `json:"created_at"`
	ApprovedBy   string                 `json:"approved_by,omitempty"`
	ApprovedRole string                 `json:"approved_role,omitempty"`
	ApprovedAt   *time.Time             `json:"approved_at,omitempty"`
	StartedAt    *time.Time             `json:"started_at,omitempty"`
	Result       *ToolResult            `json:"result,omitempty"`
	Error        string                 `json:"error,omitempty"`
}

// View is the proposer-facing projection of an action carried in the
// originating response.
type View struct {
	ActionID  string                 `json:"action_id"`
	Tool      string                 `json:"tool"`
	Args      map[string]interface{} `json:"args"`
	Risk      Risk                   `json:"risk"`
	Rationale string                 `json:"rationale,omitempty"`
	Policy    *policy.Decision       `json:"policy,omitempty"`
}

// View returns the proposer-facing projection.
func (a *Action) View() *View {
	if a == nil {
		return nil
	}
	return &View{
		ActionID:  a.ID,
		Tool:      a.Tool,
		Args:      a.Args,
		Risk:      a.Risk,
		Rationale: a.Rationale,
		Policy:    a.Policy,
	}
}

// New builds a PENDING action from a proposal.
func New(proposal *Proposal, traceID string, decision *policy.Decision, createdAt time.Time) *Action {
	return &Action{
		ID:        proposal.ActionID,
		TraceID:   traceID,
		Tool:      proposal.Tool,
		Args:      proposal.Args,
		Risk:      proposal.Risk,
		Rationale: proposal.Rationale,
		Policy:    decision,
		Status:    StatusPending,
		CreatedAt: createdAt,
	}
}
