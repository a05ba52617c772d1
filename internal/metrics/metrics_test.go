package metrics

import (
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func TestSummaryTracksCounts(t *testing.T) {
	c := NewCollector()
	c.TaskReceived()
	c.TaskReceived()
	c.TaskProcessed(true, 5*time.Millisecond)
	c.TaskProcessed(false, 0)
	c.UpdateQueueSize(7)
	c.SetHealth(true)

	s := c.Summary()
	if s.TasksReceived != 2 {
		t.Fatalf("received: %d", s.TasksReceived)
	}
	if s.TasksProcessedSuccess != 1 || s.TasksProcessedFailed != 1 {
		t.Fatalf("processed: %+v", s)
	}
	if s.QueueSize != 7 || !s.PoolHealthy {
		t.Fatalf("snapshot: %+v", s)
	}
}

func TestPrometheusExposition(t *testing.T) {
	c := NewCollector()
	c.TaskReceived()
	c.SetHealth(true)

	req := httptest.NewRequest("GET", "/metrics", nil)
	w := httptest.NewRecorder()
	c.Handler().ServeHTTP(w, req)
	body := w.Body.String()
	if !strings.Contains(body, "tasks_received_total 1") {
		t.Fatalf("missing counter: %s", body)
	}
	if !strings.Contains(body, "daemon_health 1") {
		t.Fatalf("missing gauge: %s", body)
	}
}
