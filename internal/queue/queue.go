package queue

import (
	"context"
	"time"
)

// Status is a task's lifecycle state.
type Status string

// Task statuses.
const (
	StatusPending    Status = "pending"
	StatusProcessing Status = "processing"
	StatusCompleted  Status = "completed"
	StatusFailed     Status = "failed"
)

// Task is the unit of work and its execution metadata.
type Task struct {
	ID          int64          `json:"id"`
	Type        string         `json:"task_type"`
	Payload     map[string]any `json:"task_data"`
	Status      Status         `json:"status"`
	CreatedAt   time.Time      `json:"created_at"`
	CompletedAt *time.Time     `json:"completed_at,omitempty"`
	Attempts    int            `json:"attempts"`
	LastError   string         `json:"last_error,omitempty"`
	Result      any            `json:"result,omitempty"`
}

// Claimed identifies a task handed to exactly one worker by Dequeue.
type Claimed struct {
	ID      int64
	Type    string
	Payload map[string]any
}

// Backend is the storage contract shared by the durable and volatile queues.
// Implementations must be safe for concurrent use and must serialize all
// state-transitioning operations per task; in particular the select and the
// pending→processing transition inside Dequeue form one atomic unit.
type Backend interface {
	// Enqueue creates a new pending task and returns its id. Ids are unique
	// and monotonically increasing within a backend instance.
	Enqueue(ctx context.Context, taskType string, payload map[string]any) (int64, error)

	// Dequeue claims the oldest pending task, transitioning it to
	// processing. Returns (nil, nil) when no task is pending.
	Dequeue(ctx context.Context) (*Claimed, error)

	// MarkComplete records a terminal success. Calling it for a missing
	// task is a no-op; repeating it reapplies the same terminal fields.
	MarkComplete(ctx context.Context, id int64, result any) error

	// MarkFailed increments the attempt counter and records errMsg. The
	// task returns to pending while attempts < maxRetries, and parks as
	// failed once attempts reaches maxRetries.
	MarkFailed(ctx context.Context, id int64, errMsg string, maxRetries int) error

	// Size reports the number of pending tasks.
	Size(ctx context.Context) (int, error)

	// Get returns a task by id, or (nil, nil) if it does not exist.
	Get(ctx context.Context, id int64) (*Task, error)

	// ListRecent returns up to limit tasks ordered by id descending.
	ListRecent(ctx context.Context, limit int) ([]Task, error)

	// Delete removes a task in any state. Reports whether it existed.
	Delete(ctx context.Context, id int64) (bool, error)

	// Redrive resets a failed task to pending, clearing last_error but
	// keeping attempts. Reports whether the task was failed (and so reset).
	Redrive(ctx context.Context, id int64) (bool, error)

	Close() error
}
