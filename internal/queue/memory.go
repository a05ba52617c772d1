package queue

import (
	"context"
	"sort"
	"sync"
	"time"
)

// MemoryQueue is the volatile Backend: identical external behavior to
// SQLiteQueue without persistence. It exists for low-latency testing and
// disposable deployments.
type MemoryQueue struct {
	mu     sync.Mutex
	tasks  map[int64]*Task
	nextID int64
}

// NewMemory creates an empty in-memory queue.
func NewMemory() *MemoryQueue {
	return &MemoryQueue{tasks: make(map[int64]*Task), nextID: 1}
}

// Enqueue implements Backend.
func (q *MemoryQueue) Enqueue(_ context.Context, taskType string, payload map[string]any) (int64, error) {
	q.mu.Lock()
	defer q.mu.Unlock()

	id := q.nextID
	q.nextID++
	q.tasks[id] = &Task{
		ID:        id,
		Type:      taskType,
		Payload:   payload,
		Status:    StatusPending,
		CreatedAt: time.Now().UTC(),
	}
	return id, nil
}

// Dequeue implements Backend. The mutex makes select + transition atomic.
func (q *MemoryQueue) Dequeue(_ context.Context) (*Claimed, error) {
	q.mu.Lock()
	defer q.mu.Unlock()

	var oldest *Task
	for _, t := range q.tasks {
		if t.Status != StatusPending {
			continue
		}
		if oldest == nil || t.ID < oldest.ID {
			oldest = t
		}
	}
	if oldest == nil {
		return nil, nil
	}
	oldest.Status = StatusProcessing
	return &Claimed{ID: oldest.ID, Type: oldest.Type, Payload: oldest.Payload}, nil
}

// MarkComplete implements Backend.
func (q *MemoryQueue) MarkComplete(_ context.Context, id int64, result any) error {
	q.mu.Lock()
	defer q.mu.Unlock()

	t, ok := q.tasks[id]
	if !ok {
		return nil
	}
	now := time.Now().UTC()
	t.Status = StatusCompleted
	t.CompletedAt = &now
	t.Result = result
	return nil
}

// MarkFailed implements Backend.
func (q *MemoryQueue) MarkFailed(_ context.Context, id int64, errMsg string, maxRetries int) error {
	q.mu.Lock()
	defer q.mu.Unlock()

	t, ok := q.tasks[id]
	if !ok {
		return nil
	}
	t.Attempts++
	t.LastError = errMsg
	if t.Attempts >= maxRetries {
		t.Status = StatusFailed
	} else {
		t.Status = StatusPending
	}
	return nil
}

// Size implements Backend.
func (q *MemoryQueue) Size(_ context.Context) (int, error) {
	q.mu.Lock()
	defer q.mu.Unlock()

	n := 0
	for _, t := range q.tasks {
		if t.Status == StatusPending {
			n++
		}
	}
	return n, nil
}

// Get implements Backend. The returned Task is a copy so readers always see
// a consistent snapshot.
func (q *MemoryQueue) Get(_ context.Context, id int64) (*Task, error) {
	q.mu.Lock()
	defer q.mu.Unlock()

	t, ok := q.tasks[id]
	if !ok {
		return nil, nil
	}
	cp := *t
	return &cp, nil
}

// ListRecent implements Backend.
func (q *MemoryQueue) ListRecent(_ context.Context, limit int) ([]Task, error) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if limit <= 0 {
		limit = 20
	}
	all := make([]*Task, 0, len(q.tasks))
	for _, t := range q.tasks {
		all = append(all, t)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].ID > all[j].ID })
	if len(all) > limit {
		all = all[:limit]
	}
	out := make([]Task, len(all))
	for i, t := range all {
		out[i] = *t
	}
	return out, nil
}

// Delete implements Backend.
func (q *MemoryQueue) Delete(_ context.Context, id int64) (bool, error) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if _, ok := q.tasks[id]; !ok {
		return false, nil
	}
	delete(q.tasks, id)
	return true, nil
}

// Redrive implements Backend.
func (q *MemoryQueue) Redrive(_ context.Context, id int64) (bool, error) {
	q.mu.Lock()
	defer q.mu.Unlock()

	t, ok := q.tasks[id]
	if !ok || t.Status != StatusFailed {
		return false, nil
	}
	t.Status = StatusPending
	t.LastError = ""
	return true, nil
}

// Close implements Backend.
func (q *MemoryQueue) Close() error { return nil }
