package memory

import (
	"context"
	"sync"

	"github.com/viant/gator/internal/clock"
	maction "github.com/viant/gator/model/action"
	"github.com/viant/gator/policy"
	"github.com/viant/gator/service/dao"
	daoaction "github.com/viant/gator/service/dao/action"
	"github.com/viant/gator/service/dao/criteria"
	"github.com/viant/gator/service/dao/store"
)

func actionKey(a *maction.Action) string { return a.ID }

// Service is the in-memory action store. Rows live in a generic keyed store;
// the outer mutex serialises compound read-modify-write operations so that
// each conditional transition is atomic with respect to concurrent callers.
type Service struct {
	mux   sync.Mutex
	rows  *store.MemoryStore[string, maction.Action]
	order []string
}

// New creates an empty in-memory action store.
func New() *Service {
	return &Service{
		rows: store.NewMemoryStore[string, maction.Action](actionKey),
	}
}

func (s *Service) Create(ctx context.Context, anAction *maction.Action) error {
	if anAction == nil {
		return dao.ErrNilEntity
	}
	if anAction.ID == "" {
		return dao.ErrInvalidID
	}
	s.mux.Lock()
	defer s.mux.Unlock()
	if existing, _ := s.rows.Load(ctx, anAction.ID); existing != nil {
		return nil
	}
	row := clone(anAction)
	if row.Status == "" {
		row.Status = maction.StatusPending
	}
	if row.CreatedAt.IsZero() {
		row.CreatedAt = clock.Now().UTC()
	}
	s.order = append(s.order, row.ID)
	return s.rows.Save(ctx, row)
}

func (s *Service) Get(ctx context.Context, id string) (*maction.Action, error) {
	if id == "" {
		return nil, dao.ErrInvalidID
	}
	s.mux.Lock()
	defer s.mux.Unlock()
	row, err := s.rows.Load(ctx, id)
	if err != nil {
		return nil, err
	}
	if row == nil {
		return nil, dao.ErrNotFound
	}
	return clone(row), nil
}

func (s *Service) List(ctx context.Context, parameters ...*dao.Parameter) ([]*maction.Action, error) {
	s.mux.Lock()
	defer s.mux.Unlock()
	var ret []*maction.Action
	for _, id := range s.order {
		row, err := s.rows.Load(ctx, id)
		if err != nil {
			return nil, err
		}
		if row == nil {
			continue
		}
		if !criteria.FilterByTrace(row.TraceID, parameters) {
			continue
		}
		ret = append(ret, clone(row))
	}
	return ret, nil
}

func (s *Service) ListByTrace(ctx context.Context, traceID string) ([]*maction.Action, error) {
	return s.List(ctx, dao.NewParameter("TraceID", traceID))
}

func (s *Service) CompareAndTransition(ctx context.Context, id string, next maction.Status, allowedCurrent []maction.Status, actorID string, actorRole policy.Role) (bool, error) {
	if id == "" {
		return false, dao.ErrInvalidID
	}
	s.mux.Lock()
	defer s.mux.Unlock()
	row, err := s.rows.Load(ctx, id)
	if err != nil || row == nil {
		return false, err
	}
	if !statusIn(row.Status, allowedCurrent) {
		return false, nil
	}
	now := clock.Now().UTC()
	row.Status = next
	row.ApprovedBy = actorID
	row.ApprovedRole = string(actorRole)
	row.ApprovedAt = &now
	if next == maction.StatusRunning {
		startedAt := now
		row.StartedAt = &startedAt
	}
	return true, s.rows.Save(ctx, row)
}

func (s *Service) Complete(ctx context.Context, id string, result *maction.ToolResult) error {
	s.mux.Lock()
	defer s.mux.Unlock()
	row, err := s.rows.Load(ctx, id)
	if err != nil {
		return err
	}
	if row == nil {
		return dao.ErrNotFound
	}
	row.Status = maction.StatusCompleted
	row.Result = cloneResult(result)
	row.Error = ""
	return s.rows.Save(ctx, row)
}

func (s *Service) Fail(ctx context.Context, id string, result *maction.ToolResult, errorMessage string) error {
	s.mux.Lock()
	defer s.mux.Unlock()
	row, err := s.rows.Load(ctx, id)
	if err != nil {
		return err
	}
	if row == nil {
		return dao.ErrNotFound
	}
	row.Status = maction.StatusFailed
	row.Result = cloneResult(result)
	row.Error = errorMessage
	return s.rows.Save(ctx, row)
}

func (s *Service) Reject(ctx context.Context, id string, actorID string, actorRole policy.Role) (bool, error) {
	s.mux.Lock()
	defer s.mux.Unlock()
	row, err := s.rows.Load(ctx, id)
	if err != nil {
		return false, err
	}
	if row == nil {
		return false, dao.ErrNotFound
	}
	if row.Status.Terminal() {
		return false, nil
	}
	now := clock.Now().UTC()
	row.Status = maction.StatusRejected
	row.ApprovedBy = actorID
	row.ApprovedRole = string(actorRole)
	row.ApprovedAt = &now
	return true, s.rows.Save(ctx, row)
}

func statusIn(status maction.Status, candidates []maction.Status) bool {
	for _, candidate := range candidates {
		if status == candidate {
			return true
		}
	}
	return false
}

// clone copies a row so that callers can never mutate store state through a
// returned pointer.
func clone(a *maction.Action) *maction.Action {
	if a == nil {
		return nil
	}
	ret := *a
	if a.Args != nil {
		ret.Args = cloneArgs(a.Args)
	}
	if a.Policy != nil {
		decision := *a.Policy
		ret.Policy = &decision
	}
	if a.ApprovedAt != nil {
		approvedAt := *a.ApprovedAt
		ret.ApprovedAt = &approvedAt
	}
	if a.StartedAt != nil {
		startedAt := *a.StartedAt
		ret.StartedAt = &startedAt
	}
	ret.Result = cloneResult(a.Result)
	return &ret
}

// cloneArgs deep-copies the argument bag, including nested maps and slices,
// so a caller holding a snapshot can never mutate stored arguments.
func cloneArgs(args map[string]interface{}) map[string]interface{} {
	ret := make(map[string]interface{}, len(args))
	for key, value := range args {
		ret[key] = cloneValue(value)
	}
	return ret
}

func cloneValue(value interface{}) interface{} {
	switch actual := value.(type) {
	case map[string]interface{}:
		return cloneArgs(actual)
	case []interface{}:
		ret := make([]interface{}, len(actual))
		for i, item := range actual {
			ret[i] = cloneValue(item)
		}
		return ret
	}
	return value
}

func cloneResult(result *maction.ToolResult) *maction.ToolResult {
	if result == nil {
		return nil
	}
	ret := *result
	return &ret
}

var _ daoaction.Store = (*Service)(nil)
