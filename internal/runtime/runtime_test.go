package runtime

import (
	"context"
	"path/filepath"
	"testing"

	cfgpkg "github.com/jona62/taskd/internal/config"
)

func TestOpenMemoryBackend(t *testing.T) {
	cfg := cfgpkg.Default()
	cfg.Backend = cfgpkg.BackendMemory

	rt, err := Open(Options{Config: cfg})
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer rt.Close()

	if err := rt.CheckHealth(context.Background()); err != nil {
		t.Fatalf("health: %v", err)
	}
	if rt.Metrics() == nil || rt.Backend() == nil {
		t.Fatal("runtime not fully wired")
	}
}

func TestOpenSQLiteBackend(t *testing.T) {
	cfg := cfgpkg.Default()
	cfg.Backend = cfgpkg.BackendSQLite
	cfg.DBPath = filepath.Join(t.TempDir(), "tasks.db")

	rt, err := Open(Options{Config: cfg})
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer rt.Close()

	id, err := rt.Backend().Enqueue(context.Background(), "echo", nil)
	if err != nil {
		t.Fatalf("enqueue: %v", err)
	}
	if id == 0 {
		t.Fatal("expected nonzero id")
	}
}

func TestOpenUnknownBackend(t *testing.T) {
	cfg := cfgpkg.Default()
	cfg.Backend = "redis"
	if _, err := Open(Options{Config: cfg}); err == nil {
		t.Fatal("expected error for unknown backend")
	}
}
