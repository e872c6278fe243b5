package gator

import (
	"context"
	"io"

	"github.com/viant/gator/model/action"
	"github.com/viant/gator/service/coordinator"
	daoaction "github.com/viant/gator/service/dao/action"
	"github.com/viant/gator/service/event"
	"github.com/viant/gator/service/gateway"
)

// Runtime is the assembled lifecycle manager. It is safe for concurrent use.
type Runtime struct {
	coordinator *coordinator.Service
	events      *event.Publisher
	store       daoaction.Store
}

// Ask turns a natural-language question into tool proposals, screens and
// policy-checks them, executes the low-risk ones and parks the rest as
// pending actions.
func (r *Runtime) Ask(ctx context.Context, request *coordinator.AskRequest) (*coordinator.AskResponse, error) {
	return r.coordinator.Ask(ctx, request)
}

// Approve resolves a single pending action: approve, reject, retry or force,
// executing the underlying tool at most once.
func (r *Runtime) Approve(ctx context.Context, request *coordinator.ApproveRequest) (*coordinator.ApproveResponse, error) {
	return r.coordinator.Approve(ctx, request)
}

// Actions lists actions, optionally scoped to a trace.
func (r *Runtime) Actions(ctx context.Context, traceID string) ([]*action.Action, error) {
	return r.coordinator.Actions(ctx, traceID)
}

// ListPending returns actions awaiting an approval decision.
func (r *Runtime) ListPending(ctx context.Context) ([]*action.Action, error) {
	return r.coordinator.ListPending(ctx)
}

// Coordinator exposes the underlying coordinator service.
func (r *Runtime) Coordinator() *coordinator.Service {
	return r.coordinator
}

// Events exposes the audit event publisher; consumers drain it with Consume
// or an event.Listener.
func (r *Runtime) Events() *event.Publisher {
	return r.events
}

// Store exposes the action store.
func (r *Runtime) Store() daoaction.Store {
	return r.store
}

// NewServer builds an HTTP gateway over this runtime.
func (r *Runtime) NewServer(options ...gateway.Option) *gateway.Server {
	return gateway.New(r.coordinator, options...)
}

// Close releases backing resources such as the sqlite store.
func (r *Runtime) Close() error {
	if closer, ok := r.store.(io.Closer); ok {
		return closer.Close()
	}
	return nil
}
