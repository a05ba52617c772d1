package config

import (
	"encoding/json"
	"fmt"
	"os"
	"time"
)

// Backend names accepted by Config.Backend.
const (
	BackendSQLite = "sqlite"
	BackendMemory = "memory"
)

// Protocol names accepted by Config.Protocol.
const (
	ProtocolJSON    = "json"
	ProtocolMsgpack = "msgpack"
)

// Config is the top-level configuration loaded from file/env.
type Config struct {
	DBPath        string `json:"dbPath"`
	Backend       string `json:"backend"`
	Workers       int    `json:"workers"`
	MaxRetries    int    `json:"maxRetries"`
	WorkerSleepMs int    `json:"workerSleepMs"`
	TaskTimeoutMs int    `json:"taskTimeoutMs"`
	HTTPAddr      string `json:"httpAddr"`
	GRPCAddr      string `json:"grpcAddr"`
	Protocol      string `json:"protocol"`
	LogLevel      string `json:"logLevel"`
	LogFormat     string `json:"logFormat"`
}

// Default returns built-in defaults.
func Default() Config {
	return Config{
		DBPath:        "",
		Backend:       BackendSQLite,
		Workers:       2,
		MaxRetries:    3,
		WorkerSleepMs: 100,
		TaskTimeoutMs: 30_000,
		HTTPAddr:      ":8080",
		GRPCAddr:      ":50051",
		Protocol:      ProtocolJSON,
		LogLevel:      "info",
		LogFormat:     "text",
	}
}

// Load reads configuration from a JSON file. If path is empty, returns
// defaults.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return Config{}, err
	}
	if err := json.Unmarshal(b, &cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate rejects configurations the engine cannot run with.
func (c Config) Validate() error {
	switch c.Backend {
	case BackendSQLite, BackendMemory:
	default:
		return fmt.Errorf("invalid backend %q; use %s|%s", c.Backend, BackendSQLite, BackendMemory)
	}
	switch c.Protocol {
	case ProtocolJSON, ProtocolMsgpack:
	default:
		return fmt.Errorf("invalid protocol %q; use %s|%s", c.Protocol, ProtocolJSON, ProtocolMsgpack)
	}
	if c.Workers <= 0 {
		return fmt.Errorf("workers must be positive, got %d", c.Workers)
	}
	if c.MaxRetries < 0 {
		return fmt.Errorf("maxRetries must be non-negative, got %d", c.MaxRetries)
	}
	return nil
}

// WorkerSleep returns the idle poll sleep as a duration.
func (c Config) WorkerSleep() time.Duration {
	return time.Duration(c.WorkerSleepMs) * time.Millisecond
}

// TaskTimeout returns the per-attempt handler timeout; zero disables
// enforcement.
func (c Config) TaskTimeout() time.Duration {
	return time.Duration(c.TaskTimeoutMs) * time.Millisecond
}
