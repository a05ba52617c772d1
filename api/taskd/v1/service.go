package taskdv1

import (
	"context"

	"google.golang.org/grpc"
)

// ServiceName is the fully qualified TaskDaemon service name.
const ServiceName = "taskd.v1.TaskDaemon"

// TaskDaemonServer is the server contract for the TaskDaemon service.
type TaskDaemonServer interface {
	QueueTask(ctx context.Context, req *QueueTaskRequest) (*QueueTaskResponse, error)
	GetTask(ctx context.Context, req *GetTaskRequest) (*TaskInfo, error)
	ListTasks(ctx context.Context, req *ListTasksRequest) (*ListTasksResponse, error)
	DeleteTask(ctx context.Context, req *DeleteTaskRequest) (*DeleteTaskResponse, error)
	RedriveTask(ctx context.Context, req *RedriveTaskRequest) (*RedriveTaskResponse, error)
	GetHealth(ctx context.Context, req *GetHealthRequest) (*GetHealthResponse, error)
	GetMetrics(ctx context.Context, req *GetMetricsRequest) (*GetMetricsResponse, error)
}

// RegisterTaskDaemonServer registers srv with the gRPC registrar.
func RegisterTaskDaemonServer(s grpc.ServiceRegistrar, srv TaskDaemonServer) {
	s.RegisterService(&TaskDaemonServiceDesc, srv)
}

func unary[Req any, Resp any](method string, call func(TaskDaemonServer, context.Context, *Req) (*Resp, error)) grpc.MethodDesc {
	return grpc.MethodDesc{
		MethodName: method,
		Handler: func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
			in := new(Req)
			if err := dec(in); err != nil {
				return nil, err
			}
			if interceptor == nil {
				return call(srv.(TaskDaemonServer), ctx, in)
			}
			info := &grpc.UnaryServerInfo{
				Server:     srv,
				FullMethod: "/" + ServiceName + "/" + method,
			}
			handler := func(ctx context.Context, req any) (any, error) {
				return call(srv.(TaskDaemonServer), ctx, req.(*Req))
			}
			return interceptor(ctx, in, info, handler)
		},
	}
}

// TaskDaemonServiceDesc is the hand-maintained descriptor for the TaskDaemon
// service.
var TaskDaemonServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*TaskDaemonServer)(nil),
	Methods: []grpc.MethodDesc{
		unary("QueueTask", TaskDaemonServer.QueueTask),
		unary("GetTask", TaskDaemonServer.GetTask),
		unary("ListTasks", TaskDaemonServer.ListTasks),
		unary("DeleteTask", TaskDaemonServer.DeleteTask),
		unary("RedriveTask", TaskDaemonServer.RedriveTask),
		unary("GetHealth", TaskDaemonServer.GetHealth),
		unary("GetMetrics", TaskDaemonServer.GetMetrics),
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "taskd/v1/task_daemon",
}

// TaskDaemonClient is the client contract for the TaskDaemon service.
type TaskDaemonClient interface {
	QueueTask(ctx context.Context, req *QueueTaskRequest) (*QueueTaskResponse, error)
	GetTask(ctx context.Context, req *GetTaskRequest) (*TaskInfo, error)
	ListTasks(ctx context.Context, req *ListTasksRequest) (*ListTasksResponse, error)
	DeleteTask(ctx context.Context, req *DeleteTaskRequest) (*DeleteTaskResponse, error)
	RedriveTask(ctx context.Context, req *RedriveTaskRequest) (*RedriveTaskResponse, error)
	GetHealth(ctx context.Context, req *GetHealthRequest) (*GetHealthResponse, error)
	GetMetrics(ctx context.Context, req *GetMetricsRequest) (*GetMetricsResponse, error)
}

type taskDaemonClient struct {
	cc   grpc.ClientConnInterface
	opts []grpc.CallOption
}

// NewTaskDaemonClient builds a client on an established connection. Call
// options (such as a forced codec) apply to every invocation.
func NewTaskDaemonClient(cc grpc.ClientConnInterface, opts ...grpc.CallOption) TaskDaemonClient {
	return &taskDaemonClient{cc: cc, opts: opts}
}

func invoke[Resp any](ctx context.Context, c *taskDaemonClient, method string, req any) (*Resp, error) {
	out := new(Resp)
	if err := c.cc.Invoke(ctx, "/"+ServiceName+"/"+method, req, out, c.opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *taskDaemonClient) QueueTask(ctx context.Context, req *QueueTaskRequest) (*QueueTaskResponse, error) {
	return invoke[QueueTaskResponse](ctx, c, "QueueTask", req)
}

func (c *taskDaemonClient) GetTask(ctx context.Context, req *GetTaskRequest) (*TaskInfo, error) {
	return invoke[TaskInfo](ctx, c, "GetTask", req)
}

func (c *taskDaemonClient) ListTasks(ctx context.Context, req *ListTasksRequest) (*ListTasksResponse, error) {
	return invoke[ListTasksResponse](ctx, c, "ListTasks", req)
}

func (c *taskDaemonClient) DeleteTask(ctx context.Context, req *DeleteTaskRequest) (*DeleteTaskResponse, error) {
	return invoke[DeleteTaskResponse](ctx, c, "DeleteTask", req)
}

func (c *taskDaemonClient) RedriveTask(ctx context.Context, req *RedriveTaskRequest) (*RedriveTaskResponse, error) {
	return invoke[RedriveTaskResponse](ctx, c, "RedriveTask", req)
}

func (c *taskDaemonClient) GetHealth(ctx context.Context, req *GetHealthRequest) (*GetHealthResponse, error) {
	return invoke[GetHealthResponse](ctx, c, "GetHealth", req)
}

func (c *taskDaemonClient) GetMetrics(ctx context.Context, req *GetMetricsRequest) (*GetMetricsResponse, error) {
	return invoke[GetMetricsResponse](ctx, c, "GetMetrics", req)
}
