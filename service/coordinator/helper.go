package coordinator

import (
	"context"
	"time"

	"github.com/viant/gator/model/action"
)

// ListPending returns every action still waiting for a decision.
func (s *Service) ListPending(ctx context.Context) ([]*action.Action, error) {
	all, err := s.store.List(ctx)
	if err != nil {
		return nil, err
	}
	var ret []*action.Action
	for _, candidate := range all {
		if candidate.Status == action.StatusPending {
			ret = append(ret, candidate)
		}
	}
	return ret, nil
}

// Actions returns the actions recorded for a trace in insertion order; an
// empty trace id lists everything.
func (s *Service) Actions(ctx context.Context, traceID string) ([]*action.Action, error) {
	if traceID == "" {
		return s.store.List(ctx)
	}
	return s.store.ListByTrace(ctx, traceID)
}

// DecisionFunc decides what to do with a pending action.
// Return (true,  "") to approve
//
//	(false, "…") to reject with reason.
type DecisionFunc func(a *action.Action) (approved bool, reason string)

// AutoDecider starts a goroutine that polls ListPending and applies fn to
// every pending action. It returns stop(); call it (or cancel ctx) to exit.
func AutoDecider(ctx context.Context,
	svc *Service,
	actorID string,
	fn DecisionFunc,
	interval time.Duration) (stop func()) {

	if interval <= 0 {
		interval = 20 * time.Millisecond
	}
	done := make(chan struct{})

	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-done:
				return
			case <-ticker.C:
				pending, _ := svc.ListPending(ctx)
				for _, candidate := range pending {
					ok, _ := fn(candidate)
					approve := ok
					_, _ = svc.Approve(ctx, &ApproveRequest{
						ActionID:   candidate.ID,
						ApprovedBy: actorID,
						Approve:    &approve,
					})
				}
			}
		}
	}()
	return func() { close(done) }
}

// AutoApprove automatically approves all pending actions
func AutoApprove(ctx context.Context, svc *Service, actorID string, interval time.Duration) func() {
	return AutoDecider(ctx, svc, actorID,
		func(*action.Action) (bool, string) { return true, "" }, interval)
}

// AutoReject automatically rejects all pending actions with the given reason
func AutoReject(ctx context.Context, svc *Service, actorID, reason string, interval time.Duration) func() {
	return AutoDecider(ctx, svc, actorID,
		func(*action.Action) (bool, string) { return false, reason }, interval)
}
