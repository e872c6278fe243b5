package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/viant/gator/internal/clock"
	maction "github.com/viant/gator/model/action"
	"github.com/viant/gator/policy"
	"github.com/viant/gator/service/dao"
	daoaction "github.com/viant/gator/service/dao/action"
	_ "modernc.org/sqlite"
)

// Service is the sqlite-backed action store. Conditional transitions rely on
// a single row-level UPDATE whose affected-row count decides the winner, so
// correctness holds across multiple process instances sharing the database.
type Service struct {
	sqlDB *sql.DB
}

// Open opens (or creates) a sqlite action store at path and applies pending
// schema migrations.
func Open(path string) (*Service, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("store path is required")
	}
	dsn := filepath.Clean(path) + "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_pragma=synchronous(NORMAL)"
	sqlDB, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	if err := sqlDB.Ping(); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}
	ret := &Service{sqlDB: sqlDB}
	if err := applyMigrations(sqlDB); err != nil {
		_ = sqlDB.Close()
		return nil, err
	}
	return ret, nil
}

// DB exposes the underlying handle, mainly so callers can close it.
func (s *Service) DB() *sql.DB {
	return s.sqlDB
}

// Close flushes and closes the backing database.
func (s *Service) Close() error {
	return s.sqlDB.Close()
}

const actionColumns = `id, trace_id, status, tool, args_json, risk, rationale, policy_json, created_at, approved_by, approved_role, approved_at, started_at, result_json, error`

func (s *Service) Create(ctx context.Context, anAction *maction.Action) error {
	if anAction == nil {
		return dao.ErrNilEntity
	}
	if anAction.ID == "" {
		return dao.ErrInvalidID
	}
	status := anAction.Status
	if status == "" {
		status = maction.StatusPending
	}
	createdAt := anAction.CreatedAt
	if createdAt.IsZero() {
		createdAt = clock.Now().UTC()
	}
	args := anAction.Args
	if args == nil {
		args = map[string]interface{}{}
	}
	argsJSON, err := encodeJSON(args)
	if err != nil {
		return fmt.Errorf("marshal args: %w", err)
	}
	var policyJSON sql.NullString
	if anAction.Policy != nil {
		if policyJSON, err = encodeJSON(anAction.Policy); err != nil {
			return fmt.Errorf("marshal policy decision: %w", err)
		}
	}
	_, err = s.sqlDB.ExecContext(ctx, `
INSERT OR IGNORE INTO actions (id, trace_id, status, tool, args_json, risk, rationale, policy_json, created_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		anAction.ID,
		anAction.TraceID,
		string(status),
		anAction.Tool,
		argsJSON,
		string(anAction.Risk),
		anAction.Rationale,
		policyJSON,
		formatTime(createdAt),
	)
	if err != nil {
		return fmt.Errorf("create action: %w", err)
	}
	return nil
}

func (s *Service) Get(ctx context.Context, id string) (*maction.Action, error) {
	if id == "" {
		return nil, dao.ErrInvalidID
	}
	row := s.sqlDB.QueryRowContext(ctx, `SELECT `+actionColumns+` FROM actions WHERE id = ?`, id)
	ret, err := scanAction(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, dao.ErrNotFound
		}
		return nil, fmt.Errorf("get action: %w", err)
	}
	return ret, nil
}

func (s *Service) List(ctx context.Context, parameters ...*dao.Parameter) ([]*maction.Action, error) {
	query := `SELECT ` + actionColumns + ` FROM actions`
	var args []interface{}
	if traceID, ok := traceParameter(parameters); ok {
		query += ` WHERE trace_id = ?`
		args = append(args, traceID)
	}
	query += ` ORDER BY rowid`
	rows, err := s.sqlDB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list actions: %w", err)
	}
	defer rows.Close()
	var ret []*maction.Action
	for rows.Next() {
		anAction, err := scanAction(rows)
		if err != nil {
			return nil, fmt.Errorf("scan action row: %w", err)
		}
		ret = append(ret, anAction)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate action rows: %w", err)
	}
	return ret, nil
}

func (s *Service) ListByTrace(ctx context.Context, traceID string) ([]*maction.Action, error) {
	return s.List(ctx, dao.NewParameter("TraceID", traceID))
}

// CompareAndTransition performs the conditional status update as one
// statement; the affected-row count tells whether this caller won the race.
func (s *Service) CompareAndTransition(ctx context.Context, id string, next maction.Status, allowedCurrent []maction.Status, actorID string, actorRole policy.Role) (bool, error) {
	if id == "" {
		return false, dao.ErrInvalidID
	}
	if len(allowedCurrent) == 0 {
		return false, nil
	}
	now := formatTime(clock.Now().UTC())
	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(allowedCurrent)), ",")

	query := `
UPDATE actions
SET status = ?, approved_by = ?, approved_role = ?, approved_at = ?`
	args := []interface{}{string(next), actorID, string(actorRole), now}
	if next == maction.StatusRunning {
		query += `, started_at = ?`
		args = append(args, now)
	}
	query += ` WHERE id = ? AND status IN (` + placeholders + `)`
	args = append(args, id)
	for _, status := range allowedCurrent {
		args = append(args, string(status))
	}

	res, err := s.sqlDB.ExecContext(ctx, query, args...)
	if err != nil {
		return false, fmt.Errorf("transition action: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("transition action rows affected: %w", err)
	}
	return affected == 1, nil
}

func (s *Service) Complete(ctx context.Context, id string, result *maction.ToolResult) error {
	resultJSON, err := encodeResult(result)
	if err != nil {
		return fmt.Errorf("marshal result: %w", err)
	}
	res, err := s.sqlDB.ExecContext(ctx, `
UPDATE actions SET status = ?, result_json = ?, error = NULL WHERE id = ?`,
		string(maction.StatusCompleted), resultJSON, id)
	if err != nil {
		return fmt.Errorf("complete action: %w", err)
	}
	return ensureAffected(res)
}

func (s *Service) Fail(ctx context.Context, id string, result *maction.ToolResult, errorMessage string) error {
	resultJSON, err := encodeResult(result)
	if err != nil {
		return fmt.Errorf("marshal result: %w", err)
	}
	res, err := s.sqlDB.ExecContext(ctx, `
UPDATE actions SET status = ?, result_json = ?, error = ? WHERE id = ?`,
		string(maction.StatusFailed), resultJSON, errorMessage, id)
	if err != nil {
		return fmt.Errorf("fail action: %w", err)
	}
	return ensureAffected(res)
}

func (s *Service) Reject(ctx context.Context, id string, actorID string, actorRole policy.Role) (bool, error) {
	now := formatTime(clock.Now().UTC())
	res, err := s.sqlDB.ExecContext(ctx, `
UPDATE actions
SET status = ?, approved_by = ?, approved_role = ?, approved_at = ?
WHERE id = ? AND status NOT IN (?, ?)`,
		string(maction.StatusRejected), actorID, string(actorRole), now,
		id, string(maction.StatusCompleted), string(maction.StatusRejected))
	if err != nil {
		return false, fmt.Errorf("reject action: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("reject action rows affected: %w", err)
	}
	if affected == 0 {
		// Distinguish a terminal row from a missing one.
		if _, err := s.Get(ctx, id); err != nil {
			return false, err
		}
		return false, nil
	}
	return true, nil
}

type scannable interface {
	Scan(dest ...interface{}) error
}

func scanAction(row scannable) (*maction.Action, error) {
	var (
		ret                                            maction.Action
		status, risk                                   string
		traceID, rationale, approvedBy, approvedRole   sql.NullString
		argsJSON, policyJSON, resultJSON, errorMessage sql.NullString
		createdAt, approvedAt, startedAt               sql.NullString
	)
	if err := row.Scan(&ret.ID, &traceID, &status, &ret.Tool, &argsJSON, &risk, &rationale,
		&policyJSON, &createdAt, &approvedBy, &approvedRole, &approvedAt, &startedAt,
		&resultJSON, &errorMessage); err != nil {
		return nil, err
	}
	ret.TraceID = traceID.String
	ret.Status = maction.Status(status)
	ret.Risk = maction.Risk(risk)
	ret.Rationale = rationale.String
	ret.ApprovedBy = approvedBy.String
	ret.ApprovedRole = approvedRole.String
	ret.Error = errorMessage.String
	if hasJSON(argsJSON) {
		if err := json.Unmarshal([]byte(argsJSON.String), &ret.Args); err != nil {
			return nil, fmt.Errorf("unmarshal args: %w", err)
		}
	}
	if hasJSON(policyJSON) {
		decision := &policy.Decision{}
		if err := json.Unmarshal([]byte(policyJSON.String), decision); err != nil {
			return nil, fmt.Errorf("unmarshal policy decision: %w", err)
		}
		ret.Policy = decision
	}
	if hasJSON(resultJSON) {
		result := &maction.ToolResult{}
		if err := json.Unmarshal([]byte(resultJSON.String), result); err != nil {
			return nil, fmt.Errorf("unmarshal result: %w", err)
		}
		ret.Result = result
	}
	if value, ok := parseTime(createdAt); ok {
		ret.CreatedAt = value
	}
	// Unparseable approval/start times degrade to nil; a nil started_at is
	// treated as stale upstream, favouring recovery over deadlock.
	if value, ok := parseTime(approvedAt); ok {
		ret.ApprovedAt = &value
	}
	if value, ok := parseTime(startedAt); ok {
		ret.StartedAt = &value
	}
	return &ret, nil
}

func traceParameter(parameters []*dao.Parameter) (string, bool) {
	for _, parameter := range parameters {
		if parameter == nil || parameter.Name != "TraceID" {
			continue
		}
		if value, ok := parameter.Value.(string); ok {
			return value, true
		}
	}
	return "", false
}

func hasJSON(value sql.NullString) bool {
	return value.Valid && value.String != "" && value.String != "null"
}

func ensureAffected(res sql.Result) error {
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return dao.ErrNotFound
	}
	return nil
}

func encodeResult(result *maction.ToolResult) (sql.NullString, error) {
	if result == nil {
		return sql.NullString{}, nil
	}
	return encodeJSON(result)
}

func encodeJSON(value interface{}) (sql.NullString, error) {
	if value == nil {
		return sql.NullString{}, nil
	}
	data, err := json.Marshal(value)
	if err != nil {
		return sql.NullString{}, err
	}
	return sql.NullString{String: string(data), Valid: true}, nil
}

func formatTime(value time.Time) string {
	return value.UTC().Format(time.RFC3339Nano)
}

func parseTime(value sql.NullString) (time.Time, bool) {
	if !value.Valid || strings.TrimSpace(value.String) == "" {
		return time.Time{}, false
	}
	parsed, err := time.Parse(time.RFC3339Nano, value.String)
	if err != nil {
		return time.Time{}, false
	}
	return parsed.UTC(), true
}

var _ daoaction.Store = (*Service)(nil)
