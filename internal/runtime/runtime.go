package runtime

import (
	"context"
	"errors"
	"fmt"

	cfgpkg "github.com/jona62/taskd/internal/config"
	"github.com/jona62/taskd/internal/metrics"
	"github.com/jona62/taskd/internal/queue"
	logpkg "github.com/jona62/taskd/pkg/log"
)

// Options for building the Runtime.
type Options struct {
	Config cfgpkg.Config
	Logger logpkg.Logger
}

// Runtime wires the queue backend, metrics, and config for a single-node
// instance.
type Runtime struct {
	backend queue.Backend
	metrics *metrics.Collector
	config  cfgpkg.Config
	logger  logpkg.Logger
}

// Open initializes the configured queue backend and returns a Runtime.
func Open(opts Options) (*Runtime, error) {
	logger := opts.Logger
	if logger == nil {
		logger = logpkg.NewNop()
	}

	var backend queue.Backend
	switch opts.Config.Backend {
	case cfgpkg.BackendMemory:
		backend = queue.NewMemory()
	case cfgpkg.BackendSQLite, "":
		q, err := queue.OpenSQLite(opts.Config.DBPath, logger)
		if err != nil {
			return nil, fmt.Errorf("open sqlite backend: %w", err)
		}
		backend = q
	default:
		return nil, fmt.Errorf("unknown backend %q", opts.Config.Backend)
	}

	return &Runtime{
		backend: backend,
		metrics: metrics.NewCollector(),
		config:  opts.Config,
		logger:  logger,
	}, nil
}

// Close closes underlying resources.
func (r *Runtime) Close() error {
	if r.backend == nil {
		return nil
	}
	return r.backend.Close()
}

// CheckHealth performs a simple health check against the backend.
func (r *Runtime) CheckHealth(ctx context.Context) error {
	if r.backend == nil {
		return errors.New("backend not open")
	}
	_, err := r.backend.Size(ctx)
	return err
}

// Backend exposes the queue backend.
func (r *Runtime) Backend() queue.Backend { return r.backend }

// Metrics returns the runtime metrics collector.
func (r *Runtime) Metrics() *metrics.Collector { return r.metrics }

// Config returns the runtime configuration.
func (r *Runtime) Config() cfgpkg.Config { return r.config }

// Logger returns the runtime logger.
func (r *Runtime) Logger() logpkg.Logger { return r.logger }
