package grpcserver

import (
	"context"
	"net"
	"testing"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/status"
	"google.golang.org/grpc/test/bufconn"

	taskdv1 "github.com/jona62/taskd/api/taskd/v1"
	cfgpkg "github.com/jona62/taskd/internal/config"
	"github.com/jona62/taskd/internal/protocol"
	"github.com/jona62/taskd/internal/runtime"
	taskssvc "github.com/jona62/taskd/internal/services/tasks"
	logpkg "github.com/jona62/taskd/pkg/log"
)

type stubPool struct{}

func (stubPool) Workers() int  { return 2 }
func (stubPool) Running() bool { return true }

func newClient(t *testing.T, codec protocol.Codec) (taskdv1.TaskDaemonClient, *runtime.Runtime) {
	t.Helper()
	cfg := cfgpkg.Default()
	cfg.Backend = cfgpkg.BackendMemory
	rt, err := runtime.Open(runtime.Options{Config: cfg})
	if err != nil {
		t.Fatalf("open runtime: %v", err)
	}
	t.Cleanup(func() { _ = rt.Close() })

	svc := taskssvc.NewWithLogger(rt, stubPool{}, logpkg.NewNop())
	srv := New(rt, svc, codec, logpkg.NewNop())

	lis := bufconn.Listen(1 << 20)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = srv.Serve(ctx, lis)
	}()
	t.Cleanup(func() {
		cancel()
		<-done
	})

	conn, err := grpc.NewClient("passthrough:///bufnet",
		grpc.WithContextDialer(func(context.Context, string) (net.Conn, error) {
			return lis.DialContext(context.Background())
		}),
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	t.Cleanup(func() { _ = conn.Close() })

	return taskdv1.NewTaskDaemonClient(conn, grpc.ForceCodec(protocol.GRPCCodec{Codec: codec})), rt
}

func TestTaskLifecycleOverRPC(t *testing.T) {
	for _, codec := range []protocol.Codec{protocol.JSON{}, protocol.Msgpack{}} {
		t.Run(codec.Name(), func(t *testing.T) {
			client, rt := newClient(t, codec)
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()

			qr, err := client.QueueTask(ctx, &taskdv1.QueueTaskRequest{
				TaskType: "echo",
				TaskData: map[string]any{"msg": "hi"},
			})
			if err != nil {
				t.Fatalf("queue: %v", err)
			}

			task, err := client.GetTask(ctx, &taskdv1.GetTaskRequest{TaskID: qr.TaskID})
			if err != nil {
				t.Fatalf("get: %v", err)
			}
			if task.TaskType != "echo" || task.Status != "pending" {
				t.Fatalf("task: %+v", task)
			}
			data := protocol.NormalizeMap(task.TaskData)
			if data["msg"] != "hi" {
				t.Fatalf("data: %#v", task.TaskData)
			}

			list, err := client.ListTasks(ctx, &taskdv1.ListTasksRequest{Limit: 10})
			if err != nil {
				t.Fatalf("list: %v", err)
			}
			if len(list.Tasks) != 1 || list.Tasks[0].ID != qr.TaskID {
				t.Fatalf("list: %+v", list.Tasks)
			}

			// fail the task so redrive has something to reset
			if _, err := rt.Backend().Dequeue(ctx); err != nil {
				t.Fatalf("dequeue: %v", err)
			}
			if err := rt.Backend().MarkFailed(ctx, qr.TaskID, "boom", 0); err != nil {
				t.Fatalf("fail: %v", err)
			}
			rr, err := client.RedriveTask(ctx, &taskdv1.RedriveTaskRequest{TaskID: qr.TaskID})
			if err != nil || !rr.Redriven {
				t.Fatalf("redrive: %v %+v", err, rr)
			}

			dr, err := client.DeleteTask(ctx, &taskdv1.DeleteTaskRequest{TaskID: qr.TaskID})
			if err != nil || !dr.Deleted {
				t.Fatalf("delete: %v %+v", err, dr)
			}
		})
	}
}

func TestRPCErrorCodes(t *testing.T) {
	client, rt := newClient(t, protocol.JSON{})
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if _, err := client.GetTask(ctx, &taskdv1.GetTaskRequest{TaskID: 404}); status.Code(err) != codes.NotFound {
		t.Fatalf("get missing: %v", err)
	}
	if _, err := client.QueueTask(ctx, &taskdv1.QueueTaskRequest{}); status.Code(err) != codes.InvalidArgument {
		t.Fatalf("queue empty type: %v", err)
	}

	id, _ := rt.Backend().Enqueue(ctx, "echo", nil)
	if _, err := client.RedriveTask(ctx, &taskdv1.RedriveTaskRequest{TaskID: id}); status.Code(err) != codes.FailedPrecondition {
		t.Fatalf("redrive pending: %v", err)
	}
}

func TestHealthAndMetricsRPC(t *testing.T) {
	client, _ := newClient(t, protocol.Msgpack{})
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if _, err := client.QueueTask(ctx, &taskdv1.QueueTaskRequest{TaskType: "echo"}); err != nil {
		t.Fatalf("queue: %v", err)
	}

	h, err := client.GetHealth(ctx, &taskdv1.GetHealthRequest{})
	if err != nil {
		t.Fatalf("health: %v", err)
	}
	if h.Status != "healthy" || h.Workers != 2 || h.QueueSize != 1 {
		t.Fatalf("health: %+v", h)
	}

	m, err := client.GetMetrics(ctx, &taskdv1.GetMetricsRequest{})
	if err != nil {
		t.Fatalf("metrics: %v", err)
	}
	if m.Metrics.TasksReceived != 1 {
		t.Fatalf("metrics: %+v", m.Metrics)
	}
}
