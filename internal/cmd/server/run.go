package serverrun

import (
	"context"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"golang.org/x/sync/errgroup"

	cfgpkg "github.com/jona62/taskd/internal/config"
	"github.com/jona62/taskd/internal/handler"
	"github.com/jona62/taskd/internal/protocol"
	"github.com/jona62/taskd/internal/runtime"
	grpcserver "github.com/jona62/taskd/internal/server/grpc"
	httpserver "github.com/jona62/taskd/internal/server/http"
	taskssvc "github.com/jona62/taskd/internal/services/tasks"
	"github.com/jona62/taskd/internal/worker"
	logpkg "github.com/jona62/taskd/pkg/log"
)

// Options configure a daemon run.
type Options struct {
	Config cfgpkg.Config
	// RegisterHandlers installs task handlers before workers start.
	RegisterHandlers func(*handler.Registry)
}

// Run starts the worker pool and both servers and blocks until ctx is
// cancelled or a termination signal arrives.
func Run(ctx context.Context, opts Options) error {
	// Layer a local signal context over the provided one so callers
	// without signal-aware contexts still shut down cleanly.
	sctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg := opts.Config
	if err := cfg.Validate(); err != nil {
		return err
	}
	if cfg.Backend == cfgpkg.BackendSQLite && cfg.DBPath == "" {
		cfg.DBPath = cfgpkg.DefaultDBPath()
	}

	logCfg := &logpkg.Config{Level: cfg.LogLevel, Format: cfg.LogFormat}
	procLogger, err := logpkg.ApplyConfig(logCfg)
	if err != nil {
		procLogger = logpkg.NewLogger(logpkg.WithLevel(logpkg.InfoLevel), logpkg.WithFormatter(&logpkg.TextFormatter{}))
	}
	logpkg.RedirectStdLog(procLogger)

	codec, err := protocol.ByName(cfg.Protocol)
	if err != nil {
		return err
	}

	rt, err := runtime.Open(runtime.Options{Config: cfg, Logger: procLogger})
	if err != nil {
		return err
	}
	defer rt.Close()

	registry := handler.NewRegistry(procLogger)
	if opts.RegisterHandlers != nil {
		opts.RegisterHandlers(registry)
	}

	pool := worker.New(rt.Backend(), registry, rt.Metrics(), procLogger, worker.Options{
		Workers:     cfg.Workers,
		MaxRetries:  cfg.MaxRetries,
		IdleSleep:   cfg.WorkerSleep(),
		TaskTimeout: cfg.TaskTimeout(),
	})

	procLogger.Info("starting taskd",
		logpkg.Str("backend", cfg.Backend),
		logpkg.Str("http", cfg.HTTPAddr),
		logpkg.Str("grpc", cfg.GRPCAddr),
		logpkg.Str("protocol", codec.Name()),
		logpkg.Int("workers", cfg.Workers),
		logpkg.Str("handlers", strings.Join(registry.Types(), ",")),
	)

	svc := taskssvc.NewWithLogger(rt, pool, procLogger.With(logpkg.Component("tasks")))
	gsrv := grpcserver.New(rt, svc, codec, procLogger)
	hsrv := httpserver.New(rt, svc, procLogger)

	pool.Start()

	g, gctx := errgroup.WithContext(sctx)
	g.Go(func() error { return gsrv.ListenAndServe(gctx, cfg.GRPCAddr) })
	g.Go(func() error { return hsrv.ListenAndServe(gctx, cfg.HTTPAddr) })

	err = g.Wait()
	gsrv.Close()
	hsrv.Close()
	pool.Stop()
	if err != nil && sctx.Err() == nil {
		return err
	}
	return nil
}
