package taskdv1

// TaskInfo is the wire view of a task and its execution metadata.
type TaskInfo struct {
	ID          int64          `json:"id" msgpack:"id"`
	TaskType    string         `json:"task_type" msgpack:"task_type"`
	TaskData    map[string]any `json:"task_data" msgpack:"task_data"`
	Status      string         `json:"status" msgpack:"status"`
	CreatedAt   string         `json:"created_at" msgpack:"created_at"`
	CompletedAt string         `json:"completed_at,omitempty" msgpack:"completed_at,omitempty"`
	Attempts    int            `json:"attempts" msgpack:"attempts"`
	LastError   string         `json:"last_error,omitempty" msgpack:"last_error,omitempty"`
	Result      any            `json:"result,omitempty" msgpack:"result,omitempty"`
}

// MetricsInfo mirrors the daemon's counter snapshot.
type MetricsInfo struct {
	TasksReceived         int64 `json:"tasks_received" msgpack:"tasks_received"`
	TasksProcessedSuccess int64 `json:"tasks_processed_success" msgpack:"tasks_processed_success"`
	TasksProcessedFailed  int64 `json:"tasks_processed_failed" msgpack:"tasks_processed_failed"`
	QueueSize             int64 `json:"queue_size" msgpack:"queue_size"`
	PoolHealthy           bool  `json:"pool_healthy" msgpack:"pool_healthy"`
}

type QueueTaskRequest struct {
	TaskType string         `json:"task_type" msgpack:"task_type"`
	TaskData map[string]any `json:"task_data" msgpack:"task_data"`
}

type QueueTaskResponse struct {
	TaskID int64 `json:"task_id" msgpack:"task_id"`
}

type GetTaskRequest struct {
	TaskID int64 `json:"task_id" msgpack:"task_id"`
}

type ListTasksRequest struct {
	Limit int `json:"limit" msgpack:"limit"`
}

type ListTasksResponse struct {
	Tasks []TaskInfo `json:"tasks" msgpack:"tasks"`
}

type DeleteTaskRequest struct {
	TaskID int64 `json:"task_id" msgpack:"task_id"`
}

type DeleteTaskResponse struct {
	Deleted bool `json:"deleted" msgpack:"deleted"`
}

type RedriveTaskRequest struct {
	TaskID int64 `json:"task_id" msgpack:"task_id"`
}

type RedriveTaskResponse struct {
	Redriven bool `json:"redriven" msgpack:"redriven"`
}

type GetHealthRequest struct{}

type GetHealthResponse struct {
	Status    string      `json:"status" msgpack:"status"`
	QueueSize int         `json:"queue_size" msgpack:"queue_size"`
	Timestamp string      `json:"timestamp" msgpack:"timestamp"`
	Workers   int         `json:"workers" msgpack:"workers"`
	Metrics   MetricsInfo `json:"metrics" msgpack:"metrics"`
}

type GetMetricsRequest struct{}

type GetMetricsResponse struct {
	Metrics MetricsInfo `json:"metrics" msgpack:"metrics"`
}
