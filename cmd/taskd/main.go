package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cast"
	"github.com/spf13/cobra"

	clientcmd "github.com/jona62/taskd/internal/cmd/client"
	serverrun "github.com/jona62/taskd/internal/cmd/server"
	cfgpkg "github.com/jona62/taskd/internal/config"
	"github.com/jona62/taskd/internal/handler"
	logpkg "github.com/jona62/taskd/pkg/log"
)

func main() {
	// Respect TASKD_LOG_LEVEL for CLI output before config is loaded
	level := os.Getenv("TASKD_LOG_LEVEL")
	parsed, err := logpkg.ParseLevel(level)
	if err != nil || level == "" {
		parsed = logpkg.InfoLevel
	}
	logger := logpkg.NewLogger(
		logpkg.WithLevel(parsed),
		logpkg.WithFormatter(&logpkg.TextFormatter{}),
		logpkg.WithOutput(logpkg.NewConsoleOutput()),
	)
	logpkg.RedirectStdLog(logger)

	rootCmd := &cobra.Command{
		Use:   "taskd",
		Short: "taskd runtime CLI",
		Long:  "taskd is a single-binary task processing daemon. This CLI manages the server and basic operations.",
	}

	serverCmd := &cobra.Command{Use: "server", Short: "Server commands"}
	serverStartCmd := &cobra.Command{
		Use:     "start",
		Short:   "Start taskd server (HTTP and gRPC)",
		Aliases: []string{"run"},
		RunE: func(cmd *cobra.Command, _ []string) error {
			configPath, _ := cmd.Flags().GetString("config")

			cfg, err := cfgpkg.Load(configPath)
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			cfgpkg.FromEnv(&cfg)

			// flags override file and env
			if v, _ := cmd.Flags().GetString("db"); v != "" {
				cfg.DBPath = v
			}
			if v, _ := cmd.Flags().GetString("backend"); v != "" {
				cfg.Backend = v
			}
			if cmd.Flags().Changed("workers") {
				cfg.Workers, _ = cmd.Flags().GetInt("workers")
			}
			if cmd.Flags().Changed("max-retries") {
				cfg.MaxRetries, _ = cmd.Flags().GetInt("max-retries")
			}
			if v, _ := cmd.Flags().GetString("http"); v != "" {
				cfg.HTTPAddr = v
			}
			if v, _ := cmd.Flags().GetString("grpc"); v != "" {
				cfg.GRPCAddr = v
			}
			if v, _ := cmd.Flags().GetString("protocol"); v != "" {
				cfg.Protocol = v
			}
			if v, _ := cmd.Flags().GetString("log-level"); v != "" {
				cfg.LogLevel = v
			}
			if v, _ := cmd.Flags().GetString("log-format"); v != "" {
				cfg.LogFormat = v
			}

			ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer cancel()

			if err := serverrun.Run(ctx, serverrun.Options{
				Config:           cfg,
				RegisterHandlers: registerDemoHandlers,
			}); err != nil {
				return fmt.Errorf("server error: %w", err)
			}
			// brief delay to allow logs flush
			time.Sleep(100 * time.Millisecond)
			return nil
		},
	}
	serverStartCmd.Flags().String("config", "", "Path to a JSON config file")
	serverStartCmd.Flags().String("db", "", "SQLite database path (sqlite backend)")
	serverStartCmd.Flags().String("backend", "", "Queue backend: sqlite|memory")
	serverStartCmd.Flags().Int("workers", 0, "Number of worker goroutines")
	serverStartCmd.Flags().Int("max-retries", 0, "Attempts before a task parks as failed")
	serverStartCmd.Flags().String("http", "", "HTTP listen address")
	serverStartCmd.Flags().String("grpc", "", "gRPC listen address")
	serverStartCmd.Flags().String("protocol", "", "RPC payload encoding: json|msgpack")
	serverStartCmd.Flags().String("log-level", os.Getenv("TASKD_LOG_LEVEL"), "Log level: debug|info|warn|error")
	serverStartCmd.Flags().String("log-format", os.Getenv("TASKD_LOG_FORMAT"), "Log format: text|json (default text)")
	serverCmd.AddCommand(serverStartCmd)
	rootCmd.AddCommand(serverCmd)

	rootCmd.AddCommand(clientcmd.NewTaskCommand())
	rootCmd.AddCommand(clientcmd.NewHealthCommand())
	rootCmd.AddCommand(clientcmd.NewMetricsCommand())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

type signupInput struct {
	Email  string `json:"email"`
	UserID string `json:"user_id"`
}

// registerDemoHandlers installs the built-in example handlers; real
// deployments embed serverrun.Run and register their own.
func registerDemoHandlers(r *handler.Registry) {
	r.Register("send_email", handler.RawFunc(func(_ context.Context, event map[string]any) (any, error) {
		return map[string]any{"status": "email_sent", "recipient": event["recipient"]}, nil
	}))
	r.Register("process_data", handler.RawFunc(func(_ context.Context, event map[string]any) (any, error) {
		items := 0
		if data, ok := event["data"].(map[string]any); ok {
			items = len(data)
		}
		return map[string]any{"status": "data_processed", "items": items}, nil
	}))
	r.Register("user_signup", handler.Typed(func(_ context.Context, in signupInput) (any, error) {
		return map[string]any{"status": "signup_processed", "user_id": in.UserID}, nil
	}))
	r.Register("add", handler.Keyword(
		[]handler.Param{{Name: "a", Required: true}, {Name: "b", Required: true}},
		func(_ context.Context, args []any) (any, error) {
			a, err := cast.ToFloat64E(args[0])
			if err != nil {
				return nil, fmt.Errorf("add: %w", err)
			}
			b, err := cast.ToFloat64E(args[1])
			if err != nil {
				return nil, fmt.Errorf("add: %w", err)
			}
			return map[string]any{"sum": a + b}, nil
		},
	))
}
