package httpserver

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	cfgpkg "github.com/jona62/taskd/internal/config"
	"github.com/jona62/taskd/internal/runtime"
	taskssvc "github.com/jona62/taskd/internal/services/tasks"
	logpkg "github.com/jona62/taskd/pkg/log"
)

type stubPool struct{}

func (stubPool) Workers() int  { return 2 }
func (stubPool) Running() bool { return true }

func newTestServer(t *testing.T) (*Server, *runtime.Runtime) {
	t.Helper()
	cfg := cfgpkg.Default()
	cfg.Backend = cfgpkg.BackendMemory
	rt, err := runtime.Open(runtime.Options{Config: cfg})
	if err != nil {
		t.Fatalf("open runtime: %v", err)
	}
	t.Cleanup(func() { _ = rt.Close() })
	svc := taskssvc.NewWithLogger(rt, stubPool{}, logpkg.NewNop())
	return New(rt, svc, logpkg.NewNop()), rt
}

func doJSON(t *testing.T, h http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func TestQueueAndGetTask(t *testing.T) {
	s, _ := newTestServer(t)
	h := s.Handler()

	w := doJSON(t, h, "POST", "/queue", map[string]any{
		"type": "echo",
		"data": map[string]any{"msg": "hi"},
	})
	if w.Code != http.StatusOK {
		t.Fatalf("queue status: %d %s", w.Code, w.Body.String())
	}
	var qr struct {
		TaskID int64 `json:"task_id"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &qr); err != nil {
		t.Fatalf("decode: %v", err)
	}

	w = doJSON(t, h, "GET", fmt.Sprintf("/api/tasks/%d", qr.TaskID), nil)
	if w.Code != http.StatusOK {
		t.Fatalf("get status: %d", w.Code)
	}
	var task struct {
		Type   string         `json:"task_type"`
		Data   map[string]any `json:"task_data"`
		Status string         `json:"status"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &task); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if task.Type != "echo" || task.Data["msg"] != "hi" || task.Status != "pending" {
		t.Fatalf("task: %+v", task)
	}
}

func TestQueueRejectsMissingType(t *testing.T) {
	s, _ := newTestServer(t)
	w := doJSON(t, s.Handler(), "POST", "/queue", map[string]any{"data": map[string]any{}})
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status: %d", w.Code)
	}
}

func TestListTasks(t *testing.T) {
	s, rt := newTestServer(t)
	ctx := context.Background()
	for i := 0; i < 3; i++ {
		if _, err := rt.Backend().Enqueue(ctx, "echo", nil); err != nil {
			t.Fatalf("enqueue: %v", err)
		}
	}

	w := doJSON(t, s.Handler(), "GET", "/api/tasks?limit=2", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status: %d", w.Code)
	}
	var resp struct {
		Tasks []struct {
			ID int64 `json:"id"`
		} `json:"tasks"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(resp.Tasks) != 2 || resp.Tasks[0].ID < resp.Tasks[1].ID {
		t.Fatalf("tasks: %+v", resp.Tasks)
	}

	w = doJSON(t, s.Handler(), "GET", "/api/tasks?limit=zero", nil)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("bad limit status: %d", w.Code)
	}
}

func TestGetTaskNotFound(t *testing.T) {
	s, _ := newTestServer(t)
	w := doJSON(t, s.Handler(), "GET", "/api/tasks/404", nil)
	if w.Code != http.StatusNotFound {
		t.Fatalf("status: %d", w.Code)
	}
}

func TestDeleteTask(t *testing.T) {
	s, rt := newTestServer(t)
	id, _ := rt.Backend().Enqueue(context.Background(), "echo", nil)

	w := doJSON(t, s.Handler(), "DELETE", fmt.Sprintf("/api/tasks/%d", id), nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status: %d", w.Code)
	}
	w = doJSON(t, s.Handler(), "DELETE", fmt.Sprintf("/api/tasks/%d", id), nil)
	if w.Code != http.StatusNotFound {
		t.Fatalf("second delete status: %d", w.Code)
	}
}

func TestRedriveTask(t *testing.T) {
	s, rt := newTestServer(t)
	ctx := context.Background()
	id, _ := rt.Backend().Enqueue(ctx, "echo", nil)

	// pending task cannot be redriven
	w := doJSON(t, s.Handler(), "POST", fmt.Sprintf("/api/tasks/%d/redrive", id), nil)
	if w.Code != http.StatusConflict {
		t.Fatalf("pending redrive status: %d", w.Code)
	}

	if _, err := rt.Backend().Dequeue(ctx); err != nil {
		t.Fatalf("dequeue: %v", err)
	}
	if err := rt.Backend().MarkFailed(ctx, id, "boom", 0); err != nil {
		t.Fatalf("fail: %v", err)
	}
	w = doJSON(t, s.Handler(), "POST", fmt.Sprintf("/api/tasks/%d/redrive", id), nil)
	if w.Code != http.StatusOK {
		t.Fatalf("redrive status: %d %s", w.Code, w.Body.String())
	}
}

func TestHealthAndMetrics(t *testing.T) {
	s, _ := newTestServer(t)

	w := doJSON(t, s.Handler(), "GET", "/health", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("health status: %d", w.Code)
	}
	var h struct {
		Status  string `json:"status"`
		Workers int    `json:"workers"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &h); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if h.Status != "healthy" || h.Workers != 2 {
		t.Fatalf("health: %+v", h)
	}

	w = doJSON(t, s.Handler(), "GET", "/api/metrics", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("api metrics status: %d", w.Code)
	}

	w = doJSON(t, s.Handler(), "GET", "/metrics", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("prometheus status: %d", w.Code)
	}
}

func TestRequestIDHeader(t *testing.T) {
	s, _ := newTestServer(t)
	w := doJSON(t, s.Handler(), "GET", "/health", nil)
	if w.Header().Get("X-Request-Id") == "" {
		t.Fatal("missing request id")
	}
}
