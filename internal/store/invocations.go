package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/soyeahso/holiday/internal/agent"
	"github.com/soyeahso/holiday/internal/logging"
)

// timeLayout sorts lexically in time order.
const timeLayout = "2006-01-02T15:04:05.000000000Z"

// InvocationRecord is one row of the tool invocation log.
type InvocationRecord struct {
	ID         string        `json:"id"`
	Tool       string        `json:"tool"`
	Input      string        `json:"input"`
	Outcome    agent.Outcome `json:"outcome"`
	Error      string        `json:"error,omitempty"`
	DurationMS int64         `json:"durationMs"`
	CreatedAt  time.Time     `json:"createdAt"`
}

// InvocationLog records tool executions. It implements agent.Observer.
type InvocationLog struct {
	db  *DB
	log *logging.Logger
}

var _ agent.Observer = (*InvocationLog)(nil)

// NewInvocationLog creates a log backed by db.
func NewInvocationLog(db *DB) *InvocationLog {
	return &InvocationLog{db: db, log: db.log.Sub("invocations")}
}

// Record inserts inv and returns the new row's id.
func (l *InvocationLog) Record(ctx context.Context, inv agent.Invocation) (string, error) {
	id := uuid.New().String()
	created := inv.Started
	if created.IsZero() {
		created = time.Now()
	}
	var errText string
	if inv.Err != nil {
		errText = inv.Err.Error()
	}

	_, err := l.db.sql.ExecContext(ctx, `
		INSERT INTO tool_invocations (id, tool, input, outcome, error, duration_ms, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		id, inv.Tool, inv.Input, string(inv.Outcome()), errText,
		inv.Duration.Milliseconds(), created.UTC().Format(timeLayout),
	)
	if err != nil {
		return "", fmt.Errorf("recording invocation: %w", err)
	}
	return id, nil
}

// ToolInvoked records inv, logging rather than returning failures. The
// insert is not cancelled with the chat turn.
func (l *InvocationLog) ToolInvoked(ctx context.Context, inv agent.Invocation) {
	if _, err := l.Record(context.WithoutCancel(ctx), inv); err != nil {
		l.log.Warn().Err(err).Str("tool", inv.Tool).Msg("failed to record tool invocation")
	}
}

// Recent returns up to limit invocations, newest first. A non-empty tool
// restricts the result to that tool.
func (l *InvocationLog) Recent(ctx context.Context, tool string, limit int) ([]InvocationRecord, error) {
	if limit <= 0 {
		limit = 20
	}

	var (
		rows *sql.Rows
		err  error
	)
	if tool == "" {
		rows, err = l.db.sql.QueryContext(ctx, `
			SELECT id, tool, input, outcome, error, duration_ms, created_at
			FROM tool_invocations ORDER BY created_at DESC, rowid DESC LIMIT ?`, limit)
	} else {
		rows, err = l.db.sql.QueryContext(ctx, `
			SELECT id, tool, input, outcome, error, duration_ms, created_at
			FROM tool_invocations WHERE tool = ? ORDER BY created_at DESC, rowid DESC LIMIT ?`, tool, limit)
	}
	if err != nil {
		return nil, fmt.Errorf("querying invocations: %w", err)
	}
	defer rows.Close()

	var out []InvocationRecord
	for rows.Next() {
		var (
			rec     InvocationRecord
			outcome string
			created string
		)
		if err := rows.Scan(&rec.ID, &rec.Tool, &rec.Input, &outcome, &rec.Error, &rec.DurationMS, &created); err != nil {
			return nil, fmt.Errorf("scanning invocation: %w", err)
		}
		rec.Outcome = agent.Outcome(outcome)
		rec.CreatedAt, _ = time.Parse(timeLayout, created)
		out = append(out, rec)
	}
	return out, rows.Err()
}

// Counts returns the number of logged invocations per outcome.
func (l *InvocationLog) Counts(ctx context.Context) (map[agent.Outcome]int, error) {
	rows, err := l.db.sql.QueryContext(ctx, `SELECT outcome, COUNT(*) FROM tool_invocations GROUP BY outcome`)
	if err != nil {
		return nil, fmt.Errorf("counting invocations: %w", err)
	}
	defer rows.Close()

	counts := make(map[agent.Outcome]int)
	for rows.Next() {
		var (
			outcome string
			n       int
		)
		if err := rows.Scan(&outcome, &n); err != nil {
			return nil, fmt.Errorf("scanning count: %w", err)
		}
		counts[agent.Outcome(outcome)] = n
	}
	return counts, rows.Err()
}
