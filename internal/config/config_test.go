package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefault(t *testing.T) {
	cfg := Default()
	if cfg.Backend != BackendSQLite {
		t.Fatalf("default backend: %s", cfg.Backend)
	}
	if cfg.Workers != 2 {
		t.Fatalf("default workers: %d", cfg.Workers)
	}
	if cfg.MaxRetries != 3 {
		t.Fatalf("default maxRetries: %d", cfg.MaxRetries)
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config should validate: %v", err)
	}
}

func TestLoadJSON(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "taskd.json")
	data := []byte(`{"backend":"memory","workers":8,"maxRetries":1,"protocol":"msgpack","httpAddr":":9090"}`)
	if err := os.WriteFile(file, data, 0644); err != nil {
		t.Fatalf("write: %v", err)
	}
	cfg, err := Load(file)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Backend != BackendMemory {
		t.Fatalf("expected memory backend")
	}
	if cfg.Workers != 8 {
		t.Fatalf("expected 8 workers")
	}
	if cfg.Protocol != ProtocolMsgpack {
		t.Fatalf("expected msgpack")
	}
	// untouched fields keep defaults
	if cfg.GRPCAddr != ":50051" {
		t.Fatalf("grpc default lost: %s", cfg.GRPCAddr)
	}
}

func TestFromEnv(t *testing.T) {
	cfg := Default()
	os.Setenv("TASKD_BACKEND", "memory")
	os.Setenv("TASKD_WORKERS", "5")
	os.Setenv("TASKD_MAX_RETRIES", "0")
	t.Cleanup(func() {
		os.Unsetenv("TASKD_BACKEND")
		os.Unsetenv("TASKD_WORKERS")
		os.Unsetenv("TASKD_MAX_RETRIES")
	})
	FromEnv(&cfg)
	if cfg.Backend != BackendMemory {
		t.Fatalf("env override backend")
	}
	if cfg.Workers != 5 {
		t.Fatalf("env override workers")
	}
	if cfg.MaxRetries != 0 {
		t.Fatalf("env override maxRetries")
	}
}

func TestValidateRejects(t *testing.T) {
	cfg := Default()
	cfg.Backend = "redis"
	if err := cfg.Validate(); err == nil {
		t.Fatalf("expected invalid backend error")
	}
	cfg = Default()
	cfg.Workers = 0
	if err := cfg.Validate(); err == nil {
		t.Fatalf("expected invalid workers error")
	}
}
