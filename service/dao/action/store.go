package action

import (
	"context"

	maction "github.com/viant/gator/model/action"
	"github.com/viant/gator/policy"
	"github.com/viant/gator/service/dao"
)

// Store is the durable, keyed-by-action-id record of every proposed action
// and its lifecycle state. All operations must be safe under concurrent
// callers against the same action id; the backing storage serialises
// concurrent writers per row.
type Store interface {
	// Create inserts a new PENDING row iff no row with that action id
	// exists; a duplicate insert is silently ignored so that proposal
	// replay stays idempotent.
	Create(ctx context.Context, anAction *maction.Action) error

	// Get returns the action or dao.ErrNotFound.
	Get(ctx context.Context, id string) (*maction.Action, error)

	// List returns actions matching the supplied parameters in insertion
	// order.
	List(ctx context.Context, parameters ...*dao.Parameter) ([]*maction.Action, error)

	// ListByTrace returns the actions of one trace in insertion order.
	ListByTrace(ctx context.Context, traceID string) ([]*maction.Action, error)

	// CompareAndTransition moves the action into next only when its current
	// status is one of allowedCurrent, as a single atomic conditional
	// update. It returns whether this caller won the transition. On success
	// it records the approving actor and, when next is RUNNING, the
	// execution start time.
	CompareAndTransition(ctx context.Context, id string, next maction.Status, allowedCurrent []maction.Status, actorID string, actorRole policy.Role) (bool, error)

	// Complete unconditionally marks the action COMPLETED, stores the
	// result and clears any error. Calling it twice with the same result is
	// idempotent.
	Complete(ctx context.Context, id string, result *maction.ToolResult) error

	// Fail unconditionally marks the action FAILED with the result and a
	// human readable error.
	Fail(ctx context.Context, id string, result *maction.ToolResult, errorMessage string) error

	// Reject moves the action out of any non-terminal status into REJECTED
	// and records the deciding actor. It returns whether a transition took
	// place.
	Reject(ctx context.Context, id string, actorID string, actorRole policy.Role) (bool, error)
}
