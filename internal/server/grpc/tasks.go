package grpcserver

import (
	"context"
	"errors"
	"time"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	taskdv1 "github.com/jona62/taskd/api/taskd/v1"
	"github.com/jona62/taskd/internal/metrics"
	"github.com/jona62/taskd/internal/protocol"
	"github.com/jona62/taskd/internal/queue"
	taskssvc "github.com/jona62/taskd/internal/services/tasks"
)

// taskDaemon adapts the tasks service to the RPC contract.
type taskDaemon struct {
	svc *taskssvc.Service
}

var _ taskdv1.TaskDaemonServer = (*taskDaemon)(nil)

func (t *taskDaemon) QueueTask(ctx context.Context, req *taskdv1.QueueTaskRequest) (*taskdv1.QueueTaskResponse, error) {
	// msgpack hands back sized integers and interface-keyed maps; the core
	// stores canonical shapes only
	id, err := t.svc.Enqueue(ctx, req.TaskType, protocol.NormalizeMap(req.TaskData))
	if err != nil {
		return nil, status.Error(codes.InvalidArgument, err.Error())
	}
	return &taskdv1.QueueTaskResponse{TaskID: id}, nil
}

func (t *taskDaemon) GetTask(ctx context.Context, req *taskdv1.GetTaskRequest) (*taskdv1.TaskInfo, error) {
	task, err := t.svc.Get(ctx, req.TaskID)
	if err != nil {
		return nil, rpcError(err)
	}
	return toTaskInfo(task), nil
}

func (t *taskDaemon) ListTasks(ctx context.Context, req *taskdv1.ListTasksRequest) (*taskdv1.ListTasksResponse, error) {
	tasks, err := t.svc.ListRecent(ctx, req.Limit)
	if err != nil {
		return nil, status.Error(codes.Internal, err.Error())
	}
	infos := make([]taskdv1.TaskInfo, len(tasks))
	for i := range tasks {
		infos[i] = *toTaskInfo(&tasks[i])
	}
	return &taskdv1.ListTasksResponse{Tasks: infos}, nil
}

func (t *taskDaemon) DeleteTask(ctx context.Context, req *taskdv1.DeleteTaskRequest) (*taskdv1.DeleteTaskResponse, error) {
	if err := t.svc.Delete(ctx, req.TaskID); err != nil {
		return nil, rpcError(err)
	}
	return &taskdv1.DeleteTaskResponse{Deleted: true}, nil
}

func (t *taskDaemon) RedriveTask(ctx context.Context, req *taskdv1.RedriveTaskRequest) (*taskdv1.RedriveTaskResponse, error) {
	if err := t.svc.Redrive(ctx, req.TaskID); err != nil {
		return nil, rpcError(err)
	}
	return &taskdv1.RedriveTaskResponse{Redriven: true}, nil
}

func (t *taskDaemon) GetHealth(ctx context.Context, _ *taskdv1.GetHealthRequest) (*taskdv1.GetHealthResponse, error) {
	h, err := t.svc.Health(ctx)
	if err != nil {
		return nil, status.Error(codes.Internal, err.Error())
	}
	return &taskdv1.GetHealthResponse{
		Status:    h.Status,
		QueueSize: h.QueueSize,
		Timestamp: h.Timestamp,
		Workers:   h.Workers,
		Metrics:   toMetricsInfo(h.Metrics),
	}, nil
}

func (t *taskDaemon) GetMetrics(_ context.Context, _ *taskdv1.GetMetricsRequest) (*taskdv1.GetMetricsResponse, error) {
	return &taskdv1.GetMetricsResponse{Metrics: toMetricsInfo(t.svc.Metrics())}, nil
}

func rpcError(err error) error {
	switch {
	case errors.Is(err, taskssvc.ErrNotFound):
		return status.Error(codes.NotFound, err.Error())
	case errors.Is(err, taskssvc.ErrNotRedrivable):
		return status.Error(codes.FailedPrecondition, err.Error())
	default:
		return status.Error(codes.Internal, err.Error())
	}
}

func toTaskInfo(task *queue.Task) *taskdv1.TaskInfo {
	info := &taskdv1.TaskInfo{
		ID:        task.ID,
		TaskType:  task.Type,
		TaskData:  task.Payload,
		Status:    string(task.Status),
		CreatedAt: task.CreatedAt.UTC().Format(time.RFC3339Nano),
		Attempts:  task.Attempts,
		LastError: task.LastError,
		Result:    task.Result,
	}
	if task.CompletedAt != nil {
		info.CompletedAt = task.CompletedAt.UTC().Format(time.RFC3339Nano)
	}
	return info
}

func toMetricsInfo(s metrics.Summary) taskdv1.MetricsInfo {
	return taskdv1.MetricsInfo{
		TasksReceived:         s.TasksReceived,
		TasksProcessedSuccess: s.TasksProcessedSuccess,
		TasksProcessedFailed:  s.TasksProcessedFailed,
		QueueSize:             s.QueueSize,
		PoolHealthy:           s.PoolHealthy,
	}
}
