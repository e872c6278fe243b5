// Package coordinator orchestrates the proposal and approval lifecycle: it
// routes questions into proposals, gates them through policy, persists
// pending work and drives approved actions through execution exactly once.
package coordinator

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"time"

	"github.com/viant/gator/internal/clock"
	"github.com/viant/gator/internal/idgen"
	"github.com/viant/gator/model/action"
	"github.com/viant/gator/policy"
	daoaction "github.com/viant/gator/service/dao/action"
	"github.com/viant/gator/service/event"
	"github.com/viant/gator/service/proposer"
	"github.com/viant/gator/service/tool"
	"github.com/viant/gator/tracing"
)

// RunningStaleAfter bounds how long a RUNNING action is trusted before a
// forced approval may reclaim it.
const RunningStaleAfter = 15 * time.Minute

const toolFailedError = "tool_failed"

// ErrActionNotFound reports an unknown action id.
var ErrActionNotFound = errors.New("action_not_found")

// Answer messages carried in ask responses.
const (
	answerApprovalRequired = "Approval required before executing high-risk actions."
	answerExecuted         = "Requested actions executed."
	answerBlocked          = "Requested actions were blocked by policy."
	answerNoActions        = "No actionable steps detected."
	answerRefused          = "This request cannot be processed."
)

// Service wires the proposer, policy engine, action store and tool runner.
type Service struct {
	store      daoaction.Store
	policy     *policy.Engine
	runner     *tool.Runner
	proposals  *proposer.Service
	events     *event.Publisher
	logger     *log.Logger
	now        func() time.Time
	staleAfter time.Duration
}

// Option customises the coordinator.
type Option func(*Service)

// WithEvents publishes lifecycle events.
func WithEvents(events *event.Publisher) Option {
	return func(s *Service) { s.events = events }
}

// WithProposer overrides the proposal builder.
func WithProposer(proposals *proposer.Service) Option {
	return func(s *Service) { s.proposals = proposals }
}

// WithLogger overrides the logger.
func WithLogger(logger *log.Logger) Option {
	return func(s *Service) { s.logger = logger }
}

// WithClock overrides time source.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// WithStaleAfter overrides the RUNNING staleness window.
func WithStaleAfter(staleAfter time.Duration) Option {
	return func(s *Service) { s.staleAfter = staleAfter }
}

// New creates a coordinator over the supplied collaborators.
func New(store daoaction.Store, policyEngine *policy.Engine, runner *tool.Runner, options ...Option) *Service {
	ret := &Service{
		store:      store,
		policy:     policyEngine,
		runner:     runner,
		proposals:  proposer.New(),
		logger:     log.Default(),
		now:        clock.Now,
		staleAfter: RunningStaleAfter,
	}
	for _, option := range options {
		option(ret)
	}
	return ret
}

// Ask screens and routes the question, evaluates policy per proposal,
// persists what needs approval and executes low risk actions inline. Denied
// proposals are never persisted.
func (s *Service) Ask(ctx context.Context, request *AskRequest) (*AskResponse, error) {
	if err := request.Validate(); err != nil {
		return nil, err
	}
	ctx, span := tracing.StartSpan(ctx, "coordinator.ask", "SERVER")
	var err error
	defer func() { tracing.EndSpan(span, err) }()

	traceID := request.TraceID
	if traceID == "" {
		traceID = idgen.New()
	}
	span.WithAttributes(map[string]string{"trace_id": traceID})
	actor := policy.ResolveActor(request.ActorID, request.Role)

	outcome := s.proposals.Build(request.Question)
	response := &AskResponse{
		TraceID:         traceID,
		Plan:            outcome.Plan,
		Guardrail:       outcome.Guardrail,
		PendingActions:  []*action.View{},
		ExecutedActions: []*action.ToolResult{},
	}
	if outcome.Blocked() {
		response.Answer = answerRefused
		return response, nil
	}

	denied := 0
	for _, proposal := range outcome.Proposals {
		decision := s.policy.Evaluate(actor, proposal.Tool, proposal.Args, traceID)
		response.PolicyDecisions = append(response.PolicyDecisions, &DecisionEntry{
			ActionID: proposal.ActionID,
			Tool:     proposal.Tool,
			Decision: decision,
		})
		if !decision.Allowed {
			denied++
			s.publish(ctx, event.New(event.KindDenied, &action.Action{
				ID:      proposal.ActionID,
				TraceID: traceID,
				Tool:    proposal.Tool,
			}, actor.ID, decision.Reason))
			continue
		}
		anAction := action.New(proposal, traceID, decision, s.now())
		if err = s.store.Create(ctx, anAction); err != nil {
			return nil, err
		}
		s.publish(ctx, event.New(event.KindProposed, anAction, actor.ID, ""))
		if proposal.Risk.RequiresApproval() {
			response.PendingActions = append(response.PendingActions, anAction.View())
			continue
		}
		var started bool
		started, err = s.store.CompareAndTransition(ctx, anAction.ID, action.StatusRunning,
			[]action.Status{action.StatusPending}, actor.ID, actor.Role)
		if err != nil {
			return nil, err
		}
		if !started {
			continue
		}
		var result *action.ToolResult
		result, err = s.execute(ctx, anAction)
		if err != nil {
			return nil, err
		}
		response.ExecutedActions = append(response.ExecutedActions, result)
	}

	response.RequiresApproval = len(response.PendingActions) > 0
	switch {
	case response.RequiresApproval:
		response.Answer = answerApprovalRequired
	case len(response.ExecutedActions) > 0:
		response.Answer = answerExecuted
	case denied > 0:
		response.Answer = answerBlocked
	default:
		response.Answer = answerNoActions
	}
	return response, nil
}

// Approve decides the fate of one action. The decision table is evaluated in
// order; every path that may execute first wins an atomic transition to
// RUNNING, so concurrent approvals run the tool at most once.
func (s *Service) Approve(ctx context.Context, request *ApproveRequest) (*ApproveResponse, error) {
	if err := request.Validate(); err != nil {
		return nil, err
	}
	ctx, span := tracing.StartSpan(ctx, "coordinator.approve", "SERVER")
	var err error
	defer func() { tracing.EndSpan(span, err) }()

	record, err := s.store.Get(ctx, request.ActionID)
	if err != nil {
		err = ErrActionNotFound
		return nil, err
	}
	traceID := record.TraceID
	span.WithAttributes(map[string]string{"trace_id": traceID, "action_id": record.ID})
	actor := policy.ResolveActor(request.ApprovedBy, request.ApprovedRole)
	s.logApprovalCheck(traceID, record, request)

	if !request.Approved() {
		var changed bool
		if changed, err = s.store.Reject(ctx, request.ActionID, actor.ID, actor.Role); err != nil {
			return nil, err
		}
		if changed {
			s.publish(ctx, event.New(event.KindRejected, record, actor.ID, ""))
		}
		return s.response(traceID, request.ActionID, false, action.StatusRejected, "rejected", nil), nil
	}

	if record.Status == action.StatusRejected {
		return s.response(traceID, request.ActionID, false, action.StatusRejected, "rejected", nil), nil
	}
	if (record.Status == action.StatusCompleted || record.Status == action.StatusApproved) && record.Result != nil {
		return s.completedResponse(traceID, request.ActionID, record.Result), nil
	}
	if record.Status == action.StatusFailed && !request.Retry {
		return s.failedResponse(traceID, request.ActionID, storedFailure(record)), nil
	}

	started := false
	switch record.Status {
	case action.StatusRunning:
		if !request.Force || !s.isStale(record.StartedAt) {
			return s.runningResponse(traceID, request.ActionID), nil
		}
		started, err = s.transition(ctx, request.ActionID, actor, action.StatusRunning)
	case action.StatusPending, action.StatusApproved:
		started, err = s.transition(ctx, request.ActionID, actor, action.StatusPending, action.StatusApproved)
	case action.StatusFailed:
		started, err = s.transition(ctx, request.ActionID, actor, action.StatusFailed)
	}
	if err != nil {
		return nil, err
	}

	if !started {
		// Lost the transition race; re-read to see where the action landed.
		latest, lErr := s.store.Get(ctx, request.ActionID)
		if lErr == nil && latest != nil {
			switch latest.Status {
			case action.StatusRejected:
				return s.response(latest.TraceID, request.ActionID, false, action.StatusRejected, "rejected", nil), nil
			case action.StatusRunning:
				return s.runningResponse(latest.TraceID, request.ActionID), nil
			case action.StatusCompleted:
				if latest.Result != nil {
					return s.completedResponse(latest.TraceID, request.ActionID, latest.Result), nil
				}
			case action.StatusFailed:
				if !request.Retry {
					return s.failedResponse(latest.TraceID, request.ActionID, storedFailure(latest)), nil
				}
				started, err = s.transition(ctx, request.ActionID, actor, action.StatusFailed)
			case action.StatusApproved:
				started, err = s.transition(ctx, request.ActionID, actor, action.StatusApproved)
			}
			if err != nil {
				return nil, err
			}
		}
		if !started {
			return s.runningResponse(traceID, request.ActionID), nil
		}
	}

	s.publish(ctx, event.New(event.KindApproved, record, actor.ID, ""))
	result, err := s.execute(ctx, record)
	if err != nil {
		return nil, err
	}
	if result.Ok {
		return s.completedResponse(traceID, request.ActionID, result), nil
	}
	return s.failedResponse(traceID, request.ActionID, result), nil
}

// execute runs the tool and records the terminal outcome. Tool failures are
// captured in the result, never raised.
func (s *Service) execute(ctx context.Context, anAction *action.Action) (*action.ToolResult, error) {
	result := s.runner.Run(ctx, anAction.Tool, anAction.Args)
	if result.Ok {
		if err := s.store.Complete(ctx, anAction.ID, result); err != nil {
			return nil, err
		}
		s.publish(ctx, event.New(event.KindExecuted, anAction, "", ""))
		return result, nil
	}
	errorMessage := result.Error
	if errorMessage == "" {
		errorMessage = toolFailedError
	}
	if err := s.store.Fail(ctx, anAction.ID, result, errorMessage); err != nil {
		return nil, err
	}
	s.publish(ctx, event.New(event.KindFailed, anAction, "", errorMessage))
	return result, nil
}

func (s *Service) transition(ctx context.Context, id string, actor policy.Actor, allowed ...action.Status) (bool, error) {
	return s.store.CompareAndTransition(ctx, id, action.StatusRunning, allowed, actor.ID, actor.Role)
}

// isStale treats a missing start time as stale: an unparseable or absent
// timestamp cannot prove the action is still making progress.
func (s *Service) isStale(startedAt *time.Time) bool {
	if startedAt == nil {
		return true
	}
	return s.now().Sub(*startedAt) > s.staleAfter
}

func storedFailure(record *action.Action) *action.ToolResult {
	if record.Result != nil {
		return record.Result
	}
	errorMessage := record.Error
	if errorMessage == "" {
		errorMessage = "failed"
	}
	return &action.ToolResult{Tool: record.Tool, Ok: false, Output: "", Error: errorMessage}
}

func (s *Service) response(traceID, actionID string, approved bool, status action.Status, message string, result *action.ToolResult) *ApproveResponse {
	ret := &ApproveResponse{
		TraceID:         traceID,
		ActionID:        actionID,
		Approved:        approved,
		Status:          status,
		Message:         message,
		ExecutedActions: []*action.ToolResult{},
		PendingActions:  []*action.View{},
	}
	if result != nil {
		ret.ExecutedActions = append(ret.ExecutedActions, result)
	}
	return ret
}

func (s *Service) runningResponse(traceID, actionID string) *ApproveResponse {
	return s.response(traceID, actionID, true, action.StatusRunning, "running", nil)
}

func (s *Service) completedResponse(traceID, actionID string, result *action.ToolResult) *ApproveResponse {
	return s.response(traceID, actionID, true, action.StatusCompleted, "completed", result)
}

func (s *Service) failedResponse(traceID, actionID string, result *action.ToolResult) *ApproveResponse {
	return s.response(traceID, actionID, true, action.StatusFailed, "failed", result)
}

func (s *Service) publish(ctx context.Context, anEvent *event.Event) {
	if s.events == nil {
		return
	}
	if err := s.events.Publish(ctx, anEvent); err != nil && s.logger != nil {
		s.logger.Printf("failed to publish %v event: %v", anEvent.Kind, err)
	}
}

func (s *Service) logApprovalCheck(traceID string, record *action.Action, request *ApproveRequest) {
	if s.logger == nil {
		return
	}
	payload, _ := json.Marshal(map[string]interface{}{
		"event":       "approval_check",
		"trace_id":    traceID,
		"action_id":   record.ID,
		"status":      record.Status,
		"approved_by": request.ApprovedBy,
	})
	s.logger.Println(string(payload))
}
