package worker

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jona62/taskd/internal/handler"
	"github.com/jona62/taskd/internal/metrics"
	"github.com/jona62/taskd/internal/queue"
	logpkg "github.com/jona62/taskd/pkg/log"
)

func newPool(t *testing.T, reg *handler.Registry, opts Options) (*Pool, *queue.MemoryQueue, *metrics.Collector) {
	t.Helper()
	q := queue.NewMemory()
	c := metrics.NewCollector()
	if opts.IdleSleep == 0 {
		opts.IdleSleep = 2 * time.Millisecond
	}
	if opts.ErrPause == 0 {
		opts.ErrPause = 2 * time.Millisecond
	}
	p := New(q, reg, c, logpkg.NewNop(), opts)
	t.Cleanup(p.Stop)
	return p, q, c
}

// waitTask polls until the task leaves pending/processing or the deadline hits.
func waitTask(t *testing.T, q queue.Backend, id int64) *queue.Task {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		task, err := q.Get(context.Background(), id)
		if err != nil {
			t.Fatalf("get: %v", err)
		}
		if task.Status == queue.StatusCompleted || task.Status == queue.StatusFailed {
			return task
		}
		time.Sleep(2 * time.Millisecond)
	}
	t.Fatal("task did not settle")
	return nil
}

func TestPoolCompletesTask(t *testing.T) {
	reg := handler.NewRegistry(nil)
	reg.Register("echo", handler.RawFunc(func(_ context.Context, payload map[string]any) (any, error) {
		return payload, nil
	}))
	p, q, c := newPool(t, reg, Options{Workers: 2})

	id, err := q.Enqueue(context.Background(), "echo", map[string]any{"msg": "hi"})
	if err != nil {
		t.Fatalf("enqueue: %v", err)
	}
	p.Start()

	task := waitTask(t, q, id)
	if task.Status != queue.StatusCompleted {
		t.Fatalf("status: %s", task.Status)
	}
	res, ok := task.Result.(map[string]any)
	if !ok || res["msg"] != "hi" {
		t.Fatalf("result: %#v", task.Result)
	}
	p.Stop()
	if s := c.Summary(); s.TasksProcessedSuccess != 1 {
		t.Fatalf("summary: %+v", s)
	}
}

func TestPoolRetriesThenFails(t *testing.T) {
	reg := handler.NewRegistry(nil)
	reg.Register("flaky", handler.RawFunc(func(context.Context, map[string]any) (any, error) {
		return nil, errors.New("boom")
	}))
	p, q, c := newPool(t, reg, Options{Workers: 1, MaxRetries: 2})

	id, _ := q.Enqueue(context.Background(), "flaky", nil)
	p.Start()

	task := waitTask(t, q, id)
	if task.Status != queue.StatusFailed {
		t.Fatalf("status: %s", task.Status)
	}
	if task.Attempts != 2 {
		t.Fatalf("attempts: %d", task.Attempts)
	}
	if task.LastError != "boom" {
		t.Fatalf("last error: %q", task.LastError)
	}
	p.Stop()
	if s := c.Summary(); s.TasksProcessedFailed != 2 {
		t.Fatalf("summary: %+v", s)
	}
}

func TestPoolUnknownTypeCompletes(t *testing.T) {
	p, q, _ := newPool(t, handler.NewRegistry(nil), Options{Workers: 1})

	id, _ := q.Enqueue(context.Background(), "nobody-home", nil)
	p.Start()

	task := waitTask(t, q, id)
	if task.Status != queue.StatusCompleted {
		t.Fatalf("status: %s", task.Status)
	}
	if task.Result != nil {
		t.Fatalf("result: %#v", task.Result)
	}
}

func TestPoolRecoversPanic(t *testing.T) {
	reg := handler.NewRegistry(nil)
	reg.Register("explode", handler.RawFunc(func(context.Context, map[string]any) (any, error) {
		panic("kaboom")
	}))
	p, q, _ := newPool(t, reg, Options{Workers: 1, MaxRetries: 0})

	id, _ := q.Enqueue(context.Background(), "explode", nil)
	p.Start()

	task := waitTask(t, q, id)
	if task.Status != queue.StatusFailed {
		t.Fatalf("status: %s", task.Status)
	}
	if task.LastError == "" {
		t.Fatal("expected last error from panic")
	}
	// the worker survived the panic and keeps serving
	id2, _ := q.Enqueue(context.Background(), "nobody-home", nil)
	if task := waitTask(t, q, id2); task.Status != queue.StatusCompleted {
		t.Fatalf("status after panic: %s", task.Status)
	}
}

func TestPoolEnforcesTimeout(t *testing.T) {
	release := make(chan struct{})
	reg := handler.NewRegistry(nil)
	reg.Register("hang", handler.RawFunc(func(context.Context, map[string]any) (any, error) {
		<-release
		return "late", nil
	}))
	p, q, _ := newPool(t, reg, Options{Workers: 1, MaxRetries: 0, TaskTimeout: 20 * time.Millisecond})
	defer close(release)

	id, _ := q.Enqueue(context.Background(), "hang", nil)
	p.Start()

	task := waitTask(t, q, id)
	if task.Status != queue.StatusFailed {
		t.Fatalf("status: %s", task.Status)
	}
	if task.LastError == "" {
		t.Fatal("expected timeout error")
	}
}

func TestPoolStopIsIdempotent(t *testing.T) {
	p, q, c := newPool(t, handler.NewRegistry(nil), Options{Workers: 3})
	p.Start()
	p.Start()
	if !p.Running() {
		t.Fatal("pool should be running")
	}
	p.Stop()
	p.Stop()
	if p.Running() {
		t.Fatal("pool should be stopped")
	}
	if s := c.Summary(); s.PoolHealthy {
		t.Fatal("health gauge should be down")
	}

	// tasks enqueued after stop stay pending
	id, _ := q.Enqueue(context.Background(), "echo", nil)
	time.Sleep(20 * time.Millisecond)
	task, _ := q.Get(context.Background(), id)
	if task.Status != queue.StatusPending {
		t.Fatalf("status: %s", task.Status)
	}
}
