package config

import (
	"os"
	"strconv"
)

// FromEnv overlays TASKD_* environment variables onto cfg.
func FromEnv(cfg *Config) {
	if v := os.Getenv("TASKD_DB_PATH"); v != "" {
		cfg.DBPath = v
	}
	if v := os.Getenv("TASKD_BACKEND"); v != "" {
		cfg.Backend = v
	}
	if v := os.Getenv("TASKD_WORKERS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Workers = n
		}
	}
	if v := os.Getenv("TASKD_MAX_RETRIES"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.MaxRetries = n
		}
	}
	if v := os.Getenv("TASKD_WORKER_SLEEP_MS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.WorkerSleepMs = n
		}
	}
	if v := os.Getenv("TASKD_TASK_TIMEOUT_MS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.TaskTimeoutMs = n
		}
	}
	if v := os.Getenv("TASKD_HTTP_ADDR"); v != "" {
		cfg.HTTPAddr = v
	}
	if v := os.Getenv("TASKD_GRPC_ADDR"); v != "" {
		cfg.GRPCAddr = v
	}
	if v := os.Getenv("TASKD_PROTOCOL"); v != "" {
		cfg.Protocol = v
	}
	if v := os.Getenv("TASKD_LOG_LEVEL"); v != "" {
		cfg.LogLevel = v
	}
	if v := os.Getenv("TASKD_LOG_FORMAT"); v != "" {
		cfg.LogFormat = v
	}
}
