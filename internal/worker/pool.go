package worker

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/jona62/taskd/internal/handler"
	"github.com/jona62/taskd/internal/metrics"
	"github.com/jona62/taskd/internal/queue"
	logpkg "github.com/jona62/taskd/pkg/log"
)

// Options configure a Pool.
type Options struct {
	// Workers is the number of concurrent execution units.
	Workers int
	// MaxRetries is the pool-wide retry policy; 0 means a single attempt
	// before terminal failure.
	MaxRetries int
	// IdleSleep is how long a worker sleeps when the queue is empty.
	IdleSleep time.Duration
	// TaskTimeout bounds a single handler attempt; on expiry the attempt
	// is failed and the handler goroutine abandoned. Zero disables
	// enforcement.
	TaskTimeout time.Duration
	// ErrPause is how long a worker pauses after a non-task poll error
	// before retrying its loop.
	ErrPause time.Duration
}

// Pool is a fixed set of workers sharing one backend and one registry.
type Pool struct {
	backend  queue.Backend
	registry *handler.Registry
	metrics  *metrics.Collector
	logger   logpkg.Logger
	opts     Options

	mu      sync.Mutex
	running bool
	stopCh  chan struct{}
	wg      sync.WaitGroup
}

// New creates a Pool; the registry is owned by the pool and passed to it at
// construction rather than read from ambient state.
func New(backend queue.Backend, registry *handler.Registry, collector *metrics.Collector, logger logpkg.Logger, opts Options) *Pool {
	if opts.Workers <= 0 {
		opts.Workers = 1
	}
	if opts.IdleSleep <= 0 {
		opts.IdleSleep = 100 * time.Millisecond
	}
	if opts.ErrPause <= 0 {
		opts.ErrPause = time.Second
	}
	if logger == nil {
		logger = logpkg.NewNop()
	}
	return &Pool{
		backend:  backend,
		registry: registry,
		metrics:  collector,
		logger:   logger.With(logpkg.Component("worker")),
		opts:     opts,
	}
}

// Start launches the workers. Starting a running pool is a no-op.
func (p *Pool) Start() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.running {
		return
	}
	p.running = true
	p.stopCh = make(chan struct{})
	for i := 0; i < p.opts.Workers; i++ {
		p.wg.Add(1)
		go p.run(uuid.NewString()[:8])
	}
	if p.metrics != nil {
		p.metrics.SetHealth(true)
	}
	p.logger.Info("started workers", logpkg.Int("workers", p.opts.Workers))
}

// Stop stops polling and waits for workers to finish their current task.
// A handler already running is not interrupted; with TaskTimeout set the
// wait is bounded by one attempt.
func (p *Pool) Stop() {
	p.mu.Lock()
	if !p.running {
		p.mu.Unlock()
		return
	}
	p.running = false
	close(p.stopCh)
	p.mu.Unlock()

	p.logger.Info("stopping workers")
	p.wg.Wait()
	if p.metrics != nil {
		p.metrics.SetHealth(false)
	}
}

// Workers returns the configured pool size.
func (p *Pool) Workers() int { return p.opts.Workers }

// Running reports whether the pool is accepting work.
func (p *Pool) Running() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.running
}

func (p *Pool) run(id string) {
	defer p.wg.Done()
	logger := p.logger.With(logpkg.Str("worker", id))
	logger.Info("worker started")
	ctx := context.Background()

	for {
		select {
		case <-p.stopCh:
			logger.Info("worker stopped")
			return
		default:
		}

		claimed, err := p.backend.Dequeue(ctx)
		if err != nil {
			// not task-specific: log and retry after a pause rather
			// than terminating the worker
			logger.Error("poll error", logpkg.Err(err))
			p.pause(p.opts.ErrPause)
			continue
		}
		if claimed == nil {
			p.pause(p.opts.IdleSleep)
			continue
		}

		p.process(ctx, logger, claimed)
		p.reportQueueSize(ctx)
	}
}

// pause sleeps for d but wakes early on shutdown.
func (p *Pool) pause(d time.Duration) {
	select {
	case <-p.stopCh:
	case <-time.After(d):
	}
}

func (p *Pool) process(ctx context.Context, logger logpkg.Logger, c *queue.Claimed) {
	start := time.Now()

	h, ok := p.registry.Resolve(c.Type)
	if !ok {
		logger.Warn("no handler for task type",
			logpkg.Int64("task_id", c.ID), logpkg.Str("task_type", c.Type))
		if err := p.backend.MarkComplete(ctx, c.ID, nil); err != nil {
			logger.Error("mark complete", logpkg.Int64("task_id", c.ID), logpkg.Err(err))
		}
		if p.metrics != nil {
			p.metrics.TaskProcessed(true, time.Since(start))
		}
		return
	}

	result, err := p.invoke(h, c)
	if err == nil {
		result, err = handler.NormalizeResult(result)
	}
	if err != nil {
		if ferr := p.backend.MarkFailed(ctx, c.ID, err.Error(), p.opts.MaxRetries); ferr != nil {
			logger.Error("mark failed", logpkg.Int64("task_id", c.ID), logpkg.Err(ferr))
		}
		if p.metrics != nil {
			p.metrics.TaskProcessed(false, 0)
		}
		logger.Error("task failed", logpkg.Int64("task_id", c.ID),
			logpkg.Str("task_type", c.Type), logpkg.Err(err))
		return
	}

	if cerr := p.backend.MarkComplete(ctx, c.ID, result); cerr != nil {
		logger.Error("mark complete", logpkg.Int64("task_id", c.ID), logpkg.Err(cerr))
		return
	}
	duration := time.Since(start)
	if p.metrics != nil {
		p.metrics.TaskProcessed(true, duration)
	}
	logger.Info("task completed", logpkg.Int64("task_id", c.ID),
		logpkg.Str("task_type", c.Type), logpkg.Dur("duration", duration))
}

type outcome struct {
	result any
	err    error
}

// invoke runs one handler attempt with panic recovery and, when configured,
// a hard timeout. The buffered channel lets an abandoned goroutine finish
// and be discarded; a late success can never overwrite the recorded failure.
func (p *Pool) invoke(h handler.Handler, c *queue.Claimed) (any, error) {
	ctx := context.Background()
	var cancel context.CancelFunc
	if p.opts.TaskTimeout > 0 {
		ctx, cancel = context.WithTimeout(ctx, p.opts.TaskTimeout)
		defer cancel()
	}

	done := make(chan outcome, 1)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				done <- outcome{err: fmt.Errorf("handler panic: %v", r)}
			}
		}()
		res, err := h.Invoke(ctx, c.Payload)
		done <- outcome{result: res, err: err}
	}()

	if p.opts.TaskTimeout <= 0 {
		o := <-done
		return o.result, o.err
	}
	select {
	case o := <-done:
		return o.result, o.err
	case <-ctx.Done():
		return nil, fmt.Errorf("handler timed out after %s", p.opts.TaskTimeout)
	}
}

func (p *Pool) reportQueueSize(ctx context.Context) {
	if p.metrics == nil {
		return
	}
	if n, err := p.backend.Size(ctx); err == nil {
		p.metrics.UpdateQueueSize(n)
	}
}
