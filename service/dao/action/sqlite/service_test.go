package sqlite

import (
	"context"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	maction "github.com/viant/gator/model/action"
	"github.com/viant/gator/policy"
	"github.com/viant/gator/service/dao"
)

func newTestStore(t *testing.T) *Service {
	t.Helper()
	service, err := Open(filepath.Join(t.TempDir(), "actions.db"))
	if err != nil {
		t.Fatalf("failed to open store: %v", err)
	}
	t.Cleanup(func() { _ = service.Close() })
	return service
}

func TestService_RoundTrip(t *testing.T) {
	ctx := context.Background()
	service := newTestStore(t)

	anAction := &maction.Action{
		ID:        "a1",
		TraceID:   "t1",
		Tool:      "restart_service",
		Args:      map[string]interface{}{"service": "database", "environment": "production"},
		Risk:      maction.RiskHigh,
		Rationale: "Service restart requested.",
		Policy: &policy.Decision{
			Allowed:       true,
			Reason:        policy.ReasonAllowed,
			PolicyID:      policy.PolicyID,
			PolicyVersion: policy.PolicyVersion,
		},
	}
	assert.NoError(t, service.Create(ctx, anAction))
	// idempotent replay
	assert.NoError(t, service.Create(ctx, anAction))

	loaded, err := service.Get(ctx, "a1")
	assert.NoError(t, err)
	assert.EqualValues(t, maction.StatusPending, loaded.Status)
	assert.EqualValues(t, "restart_service", loaded.Tool)
	assert.EqualValues(t, "database", loaded.Args["service"])
	assert.NotNil(t, loaded.Policy)
	assert.True(t, loaded.Policy.Allowed)
	assert.Nil(t, loaded.Result)
	assert.Empty(t, loaded.Error)

	_, err = service.Get(ctx, "missing")
	assert.ErrorIs(t, err, dao.ErrNotFound)
}

func TestService_MigrationsAreIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "actions.db")
	first, err := Open(path)
	assert.NoError(t, err)
	assert.NoError(t, first.Create(context.Background(), &maction.Action{ID: "a1", Tool: "notify"}))
	assert.NoError(t, first.Close())

	// reopening applies nothing destructive; existing rows keep loading
	second, err := Open(path)
	assert.NoError(t, err)
	defer second.Close()
	loaded, err := second.Get(context.Background(), "a1")
	assert.NoError(t, err)
	assert.EqualValues(t, maction.StatusPending, loaded.Status)
}

func TestService_CompareAndTransition(t *testing.T) {
	ctx := context.Background()
	service := newTestStore(t)
	assert.NoError(t, service.Create(ctx, &maction.Action{ID: "a1", Tool: "notify"}))

	type testCase struct {
		name    string
		next    maction.Status
		allowed []maction.Status
		expect  bool
	}
	tests := []testCase{
		{
			name:    "wrong current status loses",
			next:    maction.StatusRunning,
			allowed: []maction.Status{maction.StatusFailed},
			expect:  false,
		},
		{
			name:    "pending to running wins",
			next:    maction.StatusRunning,
			allowed: []maction.Status{maction.StatusPending, maction.StatusApproved},
			expect:  true,
		},
		{
			name:    "second entry to running loses",
			next:    maction.StatusRunning,
			allowed: []maction.Status{maction.StatusPending, maction.StatusApproved},
			expect:  false,
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			won, err := service.CompareAndTransition(ctx, "a1", tc.next, tc.allowed, "op", policy.RoleOperator)
			assert.NoError(t, err)
			assert.EqualValues(t, tc.expect, won, tc.name)
		})
	}

	loaded, err := service.Get(ctx, "a1")
	assert.NoError(t, err)
	assert.EqualValues(t, maction.StatusRunning, loaded.Status)
	assert.NotNil(t, loaded.StartedAt)
	assert.EqualValues(t, "op", loaded.ApprovedBy)
	assert.EqualValues(t, "operator", loaded.ApprovedRole)
}

func TestService_ConcurrentTransitionSingleWinner(t *testing.T) {
	ctx := context.Background()
	service := newTestStore(t)
	assert.NoError(t, service.Create(ctx, &maction.Action{ID: "a1", Tool: "notify"}))

	const callers = 16
	var wg sync.WaitGroup
	var mu sync.Mutex
	wins := 0
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			won, err := service.CompareAndTransition(ctx, "a1", maction.StatusRunning,
				[]maction.Status{maction.StatusPending, maction.StatusApproved}, "op", policy.RoleOperator)
			assert.NoError(t, err)
			if won {
				mu.Lock()
				wins++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()
	assert.EqualValues(t, 1, wins)
}

func TestService_CompleteAndFail(t *testing.T) {
	ctx := context.Background()
	service := newTestStore(t)
	assert.NoError(t, service.Create(ctx, &maction.Action{ID: "a1", Tool: "notify"}))

	failure := &maction.ToolResult{Tool: "notify", Ok: false, Error: "boom"}
	assert.NoError(t, service.Fail(ctx, "a1", failure, "boom"))
	loaded, _ := service.Get(ctx, "a1")
	assert.EqualValues(t, maction.StatusFailed, loaded.Status)
	assert.EqualValues(t, "boom", loaded.Error)
	assert.EqualValues(t, failure, loaded.Result)

	result := &maction.ToolResult{Tool: "notify", Ok: true, Output: "done"}
	assert.NoError(t, service.Complete(ctx, "a1", result))
	assert.NoError(t, service.Complete(ctx, "a1", result))
	loaded, _ = service.Get(ctx, "a1")
	assert.EqualValues(t, maction.StatusCompleted, loaded.Status)
	assert.Empty(t, loaded.Error)
	assert.EqualValues(t, result, loaded.Result)

	assert.ErrorIs(t, service.Complete(ctx, "missing", result), dao.ErrNotFound)
}

func TestService_RejectAndList(t *testing.T) {
	ctx := context.Background()
	service := newTestStore(t)
	assert.NoError(t, service.Create(ctx, &maction.Action{ID: "a1", TraceID: "t1", Tool: "notify"}))
	assert.NoError(t, service.Create(ctx, &maction.Action{ID: "a2", TraceID: "t1", Tool: "create_ticket"}))
	assert.NoError(t, service.Create(ctx, &maction.Action{ID: "a3", TraceID: "t2", Tool: "notify"}))

	rejected, err := service.Reject(ctx, "a1", "op", policy.RoleOperator)
	assert.NoError(t, err)
	assert.True(t, rejected)
	rejected, err = service.Reject(ctx, "a1", "op", policy.RoleOperator)
	assert.NoError(t, err)
	assert.False(t, rejected)
	_, err = service.Reject(ctx, "missing", "op", policy.RoleOperator)
	assert.ErrorIs(t, err, dao.ErrNotFound)

	actions, err := service.ListByTrace(ctx, "t1")
	assert.NoError(t, err)
	assert.EqualValues(t, 2, len(actions))
	assert.EqualValues(t, "a1", actions[0].ID)
	assert.EqualValues(t, maction.StatusRejected, actions[0].Status)
	assert.EqualValues(t, "a2", actions[1].ID)
}
