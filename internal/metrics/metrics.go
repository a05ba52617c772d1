package metrics

import (
	"net/http"
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Summary is the health/metrics snapshot exposed to transports.
type Summary struct {
	TasksReceived         int64 `json:"tasks_received"`
	TasksProcessedSuccess int64 `json:"tasks_processed_success"`
	TasksProcessedFailed  int64 `json:"tasks_processed_failed"`
	QueueSize             int64 `json:"queue_size"`
	PoolHealthy           bool  `json:"pool_healthy"`
}

// Collector records task lifecycle metrics.
type Collector struct {
	registry *prometheus.Registry

	tasksReceived  prometheus.Counter
	tasksProcessed *prometheus.CounterVec
	queueSize      prometheus.Gauge
	processingTime prometheus.Histogram
	poolHealth     prometheus.Gauge

	// atomics back Summary; Prometheus counters are write-only from here
	received  atomic.Int64
	succeeded atomic.Int64
	failed    atomic.Int64
	pending   atomic.Int64
	healthy   atomic.Bool
}

// NewCollector builds a Collector on its own registry.
func NewCollector() *Collector {
	c := &Collector{
		registry: prometheus.NewRegistry(),
		tasksReceived: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "tasks_received_total",
			Help: "Total tasks received",
		}),
		tasksProcessed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "tasks_processed_total",
			Help: "Total tasks processed",
		}, []string{"status"}),
		queueSize: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "queue_size",
			Help: "Current queue size",
		}),
		processingTime: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name: "task_processing_seconds",
			Help: "Task processing time",
		}),
		poolHealth: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "daemon_health",
			Help: "Daemon health status (1=healthy, 0=unhealthy)",
		}),
	}
	c.registry.MustRegister(c.tasksReceived, c.tasksProcessed, c.queueSize, c.processingTime, c.poolHealth)
	return c
}

// TaskReceived records a task being accepted into the queue.
func (c *Collector) TaskReceived() {
	c.tasksReceived.Inc()
	c.received.Add(1)
}

// TaskProcessed records a completed execution attempt outcome.
func (c *Collector) TaskProcessed(success bool, duration time.Duration) {
	if success {
		c.tasksProcessed.WithLabelValues("success").Inc()
		c.succeeded.Add(1)
	} else {
		c.tasksProcessed.WithLabelValues("failed").Inc()
		c.failed.Add(1)
	}
	if duration > 0 {
		c.processingTime.Observe(duration.Seconds())
	}
}

// UpdateQueueSize records the current number of pending tasks.
func (c *Collector) UpdateQueueSize(n int) {
	c.queueSize.Set(float64(n))
	c.pending.Store(int64(n))
}

// SetHealth records whether the worker pool is running.
func (c *Collector) SetHealth(healthy bool) {
	if healthy {
		c.poolHealth.Set(1)
	} else {
		c.poolHealth.Set(0)
	}
	c.healthy.Store(healthy)
}

// Summary returns the current snapshot.
func (c *Collector) Summary() Summary {
	return Summary{
		TasksReceived:         c.received.Load(),
		TasksProcessedSuccess: c.succeeded.Load(),
		TasksProcessedFailed:  c.failed.Load(),
		QueueSize:             c.pending.Load(),
		PoolHealthy:           c.healthy.Load(),
	}
}

// Handler serves the registry in Prometheus text format.
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{})
}
