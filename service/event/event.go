// Package event carries action lifecycle notifications.
package event

import (
	"time"

	"github.com/viant/gator/model/action"
)

// Kind identifies a lifecycle transition.
type Kind string

const (
	KindProposed Kind = "action_proposed"
	KindDenied   Kind = "action_denied"
	KindApproved Kind = "action_approved"
	KindExecuted Kind = "action_executed"
	KindFailed   Kind = "action_failed"
	KindRejected Kind = "action_rejected"
)

// Event describes a single action lifecycle transition.
type Event struct {
	Kind      Kind          `json:"kind"`
	ActionID  string        `json:"action_id"`
	TraceID   string        `json:"trace_id"`
	Tool      string        `json:"tool"`
	Status    action.Status `json:"status"`
	ActorID   string        `json:"actor_id,omitempty"`
	Reason    string        `json:"reason,omitempty"`
	CreatedAt time.Time     `json:"created_at"`
}

// New builds an event from an action snapshot.
func New(kind Kind, anAction *action.Action, actorID, reason string) *Event {
	ret := &Event{
		Kind:    kind,
		ActorID: actorID,
		Reason:  reason,
	}
	if anAction != nil {
		ret.ActionID = anAction.ID
		ret.TraceID = anAction.TraceID
		ret.Tool = anAction.Tool
		ret.Status = anAction.Status
	}
	return ret
}
