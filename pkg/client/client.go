// Package client is the programmatic gRPC client for taskd. It speaks the
// TaskDaemon service in either wire encoding; the protocol name must match
// the server's configured protocol.
package client

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"

	taskdv1 "github.com/jona62/taskd/api/taskd/v1"
	"github.com/jona62/taskd/internal/protocol"
)

// Client wraps a TaskDaemon connection.
type Client struct {
	conn *grpc.ClientConn
	api  taskdv1.TaskDaemonClient
}

// Dial connects to a taskd RPC endpoint. protocolName selects the payload
// encoding ("json" or "msgpack"); an empty name means JSON.
func Dial(addr, protocolName string, opts ...grpc.DialOption) (*Client, error) {
	codec, err := protocol.ByName(protocolName)
	if err != nil {
		return nil, err
	}
	opts = append(opts, grpc.WithTransportCredentials(insecure.NewCredentials()))
	conn, err := grpc.NewClient(addr, opts...)
	if err != nil {
		return nil, err
	}
	api := taskdv1.NewTaskDaemonClient(conn, grpc.ForceCodec(protocol.GRPCCodec{Codec: codec}))
	return &Client{conn: conn, api: api}, nil
}

// Close tears down the connection.
func (c *Client) Close() error { return c.conn.Close() }

// QueueTask submits a task and returns its id.
func (c *Client) QueueTask(ctx context.Context, taskType string, data map[string]any) (int64, error) {
	resp, err := c.api.QueueTask(ctx, &taskdv1.QueueTaskRequest{TaskType: taskType, TaskData: data})
	if err != nil {
		return 0, err
	}
	return resp.TaskID, nil
}

// GetTask fetches a task by id.
func (c *Client) GetTask(ctx context.Context, id int64) (*taskdv1.TaskInfo, error) {
	return c.api.GetTask(ctx, &taskdv1.GetTaskRequest{TaskID: id})
}

// ListTasks returns up to limit most recent tasks, newest first.
func (c *Client) ListTasks(ctx context.Context, limit int) ([]taskdv1.TaskInfo, error) {
	resp, err := c.api.ListTasks(ctx, &taskdv1.ListTasksRequest{Limit: limit})
	if err != nil {
		return nil, err
	}
	return resp.Tasks, nil
}

// DeleteTask removes a task regardless of state.
func (c *Client) DeleteTask(ctx context.Context, id int64) error {
	_, err := c.api.DeleteTask(ctx, &taskdv1.DeleteTaskRequest{TaskID: id})
	return err
}

// RedriveTask resets a failed task to pending.
func (c *Client) RedriveTask(ctx context.Context, id int64) error {
	_, err := c.api.RedriveTask(ctx, &taskdv1.RedriveTaskRequest{TaskID: id})
	return err
}

// Health returns the daemon's health snapshot.
func (c *Client) Health(ctx context.Context) (*taskdv1.GetHealthResponse, error) {
	return c.api.GetHealth(ctx, &taskdv1.GetHealthRequest{})
}

// Metrics returns the daemon's counter snapshot.
func (c *Client) Metrics(ctx context.Context) (taskdv1.MetricsInfo, error) {
	resp, err := c.api.GetMetrics(ctx, &taskdv1.GetMetricsRequest{})
	if err != nil {
		return taskdv1.MetricsInfo{}, err
	}
	return resp.Metrics, nil
}
