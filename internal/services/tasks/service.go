package tasks

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jona62/taskd/internal/metrics"
	"github.com/jona62/taskd/internal/queue"
	"github.com/jona62/taskd/internal/runtime"
	logpkg "github.com/jona62/taskd/pkg/log"
)

// ErrNotFound is returned when an operation names a task id the backend
// does not hold.
var ErrNotFound = errors.New("task not found")

// ErrNotRedrivable is returned when a redrive targets a task that is not
// in the failed state.
var ErrNotRedrivable = errors.New("task is not failed")

// WorkerInfo is the pool state the service reports in health snapshots.
type WorkerInfo struct {
	Workers int
	Running bool
}

// Health is the service-level health report.
type Health struct {
	Status    string          `json:"status"`
	QueueSize int             `json:"queue_size"`
	Timestamp string          `json:"timestamp"`
	Workers   int             `json:"workers"`
	Metrics   metrics.Summary `json:"metrics"`
}

// PoolStatus reports worker pool state without coupling the service to the
// pool implementation.
type PoolStatus interface {
	Workers() int
	Running() bool
}

// Service provides task operations over HTTP and RPC.
type Service struct {
	rt     *runtime.Runtime
	pool   PoolStatus
	logger logpkg.Logger
}

// New creates a tasks service with default logging.
func New(rt *runtime.Runtime, pool PoolStatus) *Service {
	logger := logpkg.NewLogger(logpkg.WithLevel(logpkg.InfoLevel))
	logger = logger.With(logpkg.Component("tasks"))
	return NewWithLogger(rt, pool, logger)
}

// NewWithLogger creates a tasks service with a custom logger.
func NewWithLogger(rt *runtime.Runtime, pool PoolStatus, logger logpkg.Logger) *Service {
	if logger == nil {
		logger = logpkg.NewLogger(logpkg.WithLevel(logpkg.InfoLevel))
		logger = logger.With(logpkg.Component("tasks"))
	}
	return &Service{rt: rt, pool: pool, logger: logger}
}

// Enqueue validates and stores a new task, returning its id.
func (s *Service) Enqueue(ctx context.Context, taskType string, payload map[string]any) (int64, error) {
	if taskType == "" {
		return 0, errors.New("task type is required")
	}
	if payload == nil {
		payload = map[string]any{}
	}
	id, err := s.rt.Backend().Enqueue(ctx, taskType, payload)
	if err != nil {
		return 0, fmt.Errorf("enqueue: %w", err)
	}
	s.rt.Metrics().TaskReceived()
	if n, err := s.rt.Backend().Size(ctx); err == nil {
		s.rt.Metrics().UpdateQueueSize(n)
	}
	s.logger.Info("task queued", logpkg.Int64("task_id", id), logpkg.Str("task_type", taskType))
	return id, nil
}

// Get returns a task by id.
func (s *Service) Get(ctx context.Context, id int64) (*queue.Task, error) {
	task, err := s.rt.Backend().Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if task == nil {
		return nil, ErrNotFound
	}
	return task, nil
}

// ListRecent returns up to limit most recent tasks, newest first.
func (s *Service) ListRecent(ctx context.Context, limit int) ([]queue.Task, error) {
	if limit <= 0 {
		limit = 50
	}
	return s.rt.Backend().ListRecent(ctx, limit)
}

// Delete removes a task regardless of its state.
func (s *Service) Delete(ctx context.Context, id int64) error {
	ok, err := s.rt.Backend().Delete(ctx, id)
	if err != nil {
		return err
	}
	if !ok {
		return ErrNotFound
	}
	s.logger.Info("task deleted", logpkg.Int64("task_id", id))
	return nil
}

// Redrive resets a failed task to pending with a fresh attempt budget.
func (s *Service) Redrive(ctx context.Context, id int64) error {
	ok, err := s.rt.Backend().Redrive(ctx, id)
	if err != nil {
		return err
	}
	if !ok {
		// distinguish missing from wrong-state for callers
		task, gerr := s.rt.Backend().Get(ctx, id)
		if gerr == nil && task == nil {
			return ErrNotFound
		}
		return ErrNotRedrivable
	}
	s.logger.Info("task redriven", logpkg.Int64("task_id", id))
	return nil
}

// Health reports queue depth, pool size, and the metrics snapshot.
func (s *Service) Health(ctx context.Context) (Health, error) {
	size, err := s.rt.Backend().Size(ctx)
	if err != nil {
		return Health{}, err
	}
	s.rt.Metrics().UpdateQueueSize(size)

	status := "healthy"
	workers := 0
	if s.pool != nil {
		workers = s.pool.Workers()
		if !s.pool.Running() {
			status = "degraded"
		}
	}
	return Health{
		Status:    status,
		QueueSize: size,
		Timestamp: time.Now().UTC().Format(time.RFC3339Nano),
		Workers:   workers,
		Metrics:   s.rt.Metrics().Summary(),
	}, nil
}

// Metrics returns the snapshot counters.
func (s *Service) Metrics() metrics.Summary {
	return s.rt.Metrics().Summary()
}
