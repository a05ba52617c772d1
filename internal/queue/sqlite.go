package queue

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3"

	logpkg "github.com/jona62/taskd/pkg/log"
)

const schema = `
CREATE TABLE IF NOT EXISTS tasks (
	id           INTEGER PRIMARY KEY AUTOINCREMENT,
	task_type    TEXT NOT NULL,
	task_data    TEXT NOT NULL,
	status       TEXT NOT NULL DEFAULT 'pending',
	created_at   TIMESTAMP NOT NULL,
	completed_at TIMESTAMP,
	attempts     INTEGER NOT NULL DEFAULT 0,
	last_error   TEXT,
	result       TEXT
);
CREATE INDEX IF NOT EXISTS idx_tasks_status ON tasks(status);
`

// SQLiteQueue is the durable Backend: one tasks table in a single embedded
// database file, with status indexed so the oldest-pending scan in Dequeue
// stays cheap.
type SQLiteQueue struct {
	db     *sql.DB
	path   string
	logger logpkg.Logger

	// mu is the mutual-exclusion boundary around "select + transition".
	mu sync.Mutex
}

// OpenSQLite opens (and resets) the durable queue at path.
//
// Opening recreates an empty schema: any database file already at path is
// removed first. Prior tasks do NOT survive a fresh backend construction;
// this is a deliberate design choice, and the removal is logged so operators
// see it happen.
func OpenSQLite(path string, logger logpkg.Logger) (*SQLiteQueue, error) {
	if logger == nil {
		logger = logpkg.NewNop()
	}
	logger = logger.With(logpkg.Component("queue.sqlite"))

	if _, err := os.Stat(path); err == nil {
		logger.Warn("removing existing queue database; prior tasks are discarded",
			logpkg.Str("path", path))
		if err := os.Remove(path); err != nil {
			return nil, fmt.Errorf("remove existing db: %w", err)
		}
	}
	if dir := filepath.Dir(path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create db dir: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", path+"?_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("init schema: %w", err)
	}
	return &SQLiteQueue{db: db, path: path, logger: logger}, nil
}

// Enqueue implements Backend.
func (q *SQLiteQueue) Enqueue(ctx context.Context, taskType string, payload map[string]any) (int64, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return 0, fmt.Errorf("encode payload: %w", err)
	}
	res, err := q.db.ExecContext(ctx,
		`INSERT INTO tasks (task_type, task_data, status, created_at) VALUES (?, ?, 'pending', ?)`,
		taskType, string(data), time.Now().UTC())
	if err != nil {
		return 0, fmt.Errorf("enqueue: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("enqueue id: %w", err)
	}
	return id, nil
}

// Dequeue implements Backend. The claim runs inside a transaction under the
// queue mutex so the select and the pending→processing update are one atomic
// unit for every caller.
func (q *SQLiteQueue) Dequeue(ctx context.Context) (*Claimed, error) {
	q.mu.Lock()
	defer q.mu.Unlock()

	tx, err := q.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("dequeue begin: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	var (
		id       int64
		taskType string
		data     string
	)
	err = tx.QueryRowContext(ctx,
		`SELECT id, task_type, task_data FROM tasks WHERE status = 'pending' ORDER BY id ASC LIMIT 1`).
		Scan(&id, &taskType, &data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("dequeue select: %w", err)
	}
	if _, err := tx.ExecContext(ctx,
		`UPDATE tasks SET status = 'processing' WHERE id = ?`, id); err != nil {
		return nil, fmt.Errorf("dequeue claim: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("dequeue commit: %w", err)
	}

	var payload map[string]any
	if err := json.Unmarshal([]byte(data), &payload); err != nil {
		return nil, fmt.Errorf("decode payload for task %d: %w", id, err)
	}
	return &Claimed{ID: id, Type: taskType, Payload: payload}, nil
}

// MarkComplete implements Backend.
func (q *SQLiteQueue) MarkComplete(ctx context.Context, id int64, result any) error {
	q.mu.Lock()
	defer q.mu.Unlock()

	data, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("encode result: %w", err)
	}
	_, err = q.db.ExecContext(ctx,
		`UPDATE tasks SET status = 'completed', completed_at = ?, result = ? WHERE id = ?`,
		time.Now().UTC(), string(data), id)
	if err != nil {
		return fmt.Errorf("mark complete: %w", err)
	}
	return nil
}

// MarkFailed implements Backend.
func (q *SQLiteQueue) MarkFailed(ctx context.Context, id int64, errMsg string, maxRetries int) error {
	q.mu.Lock()
	defer q.mu.Unlock()

	tx, err := q.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("mark failed begin: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	var attempts int
	err = tx.QueryRowContext(ctx, `SELECT attempts FROM tasks WHERE id = ?`, id).Scan(&attempts)
	if errors.Is(err, sql.ErrNoRows) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("mark failed select: %w", err)
	}

	attempts++
	status := StatusPending
	if attempts >= maxRetries {
		status = StatusFailed
	}
	if _, err := tx.ExecContext(ctx,
		`UPDATE tasks SET status = ?, attempts = ?, last_error = ? WHERE id = ?`,
		string(status), attempts, errMsg, id); err != nil {
		return fmt.Errorf("mark failed update: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("mark failed commit: %w", err)
	}
	return nil
}

// Size implements Backend.
func (q *SQLiteQueue) Size(ctx context.Context) (int, error) {
	var n int
	if err := q.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM tasks WHERE status = 'pending'`).Scan(&n); err != nil {
		return 0, fmt.Errorf("size: %w", err)
	}
	return n, nil
}

// Get implements Backend.
func (q *SQLiteQueue) Get(ctx context.Context, id int64) (*Task, error) {
	row := q.db.QueryRowContext(ctx,
		`SELECT id, task_type, task_data, status, created_at, completed_at, attempts, last_error, result
		 FROM tasks WHERE id = ?`, id)
	t, err := scanTask(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get task %d: %w", id, err)
	}
	return t, nil
}

// ListRecent implements Backend.
func (q *SQLiteQueue) ListRecent(ctx context.Context, limit int) ([]Task, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := q.db.QueryContext(ctx,
		`SELECT id, task_type, task_data, status, created_at, completed_at, attempts, last_error, result
		 FROM tasks ORDER BY id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("list recent: %w", err)
	}
	defer rows.Close()

	var out []Task
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, fmt.Errorf("list recent scan: %w", err)
		}
		out = append(out, *t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list recent rows: %w", err)
	}
	return out, nil
}

// Delete implements Backend.
func (q *SQLiteQueue) Delete(ctx context.Context, id int64) (bool, error) {
	q.mu.Lock()
	defer q.mu.Unlock()

	res, err := q.db.ExecContext(ctx, `DELETE FROM tasks WHERE id = ?`, id)
	if err != nil {
		return false, fmt.Errorf("delete: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("delete rows: %w", err)
	}
	return n > 0, nil
}

// Redrive implements Backend.
func (q *SQLiteQueue) Redrive(ctx context.Context, id int64) (bool, error) {
	q.mu.Lock()
	defer q.mu.Unlock()

	res, err := q.db.ExecContext(ctx,
		`UPDATE tasks SET status = 'pending', last_error = NULL WHERE id = ? AND status = 'failed'`, id)
	if err != nil {
		return false, fmt.Errorf("redrive: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("redrive rows: %w", err)
	}
	return n > 0, nil
}

// Close releases the database handle.
func (q *SQLiteQueue) Close() error {
	return q.db.Close()
}

// rowScanner covers *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanTask(r rowScanner) (*Task, error) {
	var (
		t           Task
		data        string
		completedAt sql.NullTime
		lastError   sql.NullString
		result      sql.NullString
	)
	if err := r.Scan(&t.ID, &t.Type, &data, (*string)(&t.Status), &t.CreatedAt,
		&completedAt, &t.Attempts, &lastError, &result); err != nil {
		return nil, err
	}
	if err := json.Unmarshal([]byte(data), &t.Payload); err != nil {
		return nil, fmt.Errorf("decode payload: %w", err)
	}
	if completedAt.Valid {
		ts := completedAt.Time
		t.CompletedAt = &ts
	}
	if lastError.Valid {
		t.LastError = lastError.String
	}
	if result.Valid {
		if err := json.Unmarshal([]byte(result.String), &t.Result); err != nil {
			return nil, fmt.Errorf("decode result: %w", err)
		}
	}
	return &t, nil
}
