package coordinator

import (
	"fmt"

	"github.com/viant/gator/model/action"
	"github.com/viant/gator/policy"
	"github.com/viant/gator/service/proposer"
)

// AskRequest carries a free form question with actor identity.
type AskRequest struct {
	Question string `json:"question"`
	TraceID  string `json:"trace_id,omitempty"`
	ActorID  string `json:"actor_id,omitempty"`
	Role     string `json:"role,omitempty"`
}

// Validate checks request consistency.
func (r *AskRequest) Validate() error {
	if r.Question == "" {
		return fmt.Errorf("question was empty")
	}
	return nil
}

// DecisionEntry pairs a proposed action with its policy verdict.
type DecisionEntry struct {
	ActionID string           `json:"action_id"`
	Tool     string           `json:"tool"`
	Decision *policy.Decision `json:"decision"`
}

// AskResponse describes what happened to every proposed action.
type AskResponse struct {
	Answer           string               `json:"answer"`
	TraceID          string               `json:"trace_id"`
	Plan             []string             `json:"plan"`
	RequiresApproval bool                 `json:"requires_approval"`
	PendingActions   []*action.View       `json:"pending_actions"`
	ExecutedActions  []*action.ToolResult `json:"executed_actions"`
	PolicyDecisions  []*DecisionEntry     `json:"policy_decisions"`
	Guardrail        proposer.Guardrail   `json:"guardrail"`
}

// ApproveRequest decides the fate of a pending action. Approve defaults to
// true when omitted.
type ApproveRequest struct {
	ActionID     string `json:"action_id"`
	ApprovedBy   string `json:"approved_by,omitempty"`
	ApprovedRole string `json:"approved_role,omitempty"`
	Approve      *bool  `json:"approve,omitempty"`
	Retry        bool   `json:"retry,omitempty"`
	Force        bool   `json:"force,omitempty"`
}

// Validate checks request consistency.
func (r *ApproveRequest) Validate() error {
	if r.ActionID == "" {
		return fmt.Errorf("action_id was empty")
	}
	return nil
}

// Approved reports the approve flag with its default.
func (r *ApproveRequest) Approved() bool {
	if r.Approve == nil {
		return true
	}
	return *r.Approve
}

// ApproveResponse is the outcome of a single approval call.
type ApproveResponse struct {
	TraceID         string               `json:"trace_id"`
	ActionID        string               `json:"action_id"`
	Approved        bool                 `json:"approved"`
	Status          action.Status        `json:"status"`
	Message         string               `json:"message"`
	ExecutedActions []*action.ToolResult `json:"executed_actions"`
	PendingActions  []*action.View       `json:"pending_actions"`
}
