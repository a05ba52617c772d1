package grpcserver

import (
	"context"
	"net"

	"google.golang.org/grpc"

	taskdv1 "github.com/jona62/taskd/api/taskd/v1"
	"github.com/jona62/taskd/internal/protocol"
	"github.com/jona62/taskd/internal/runtime"
	taskssvc "github.com/jona62/taskd/internal/services/tasks"
	logpkg "github.com/jona62/taskd/pkg/log"
)

// Server owns the gRPC server instance and runtime.
type Server struct {
	rt     *runtime.Runtime
	grpc   *grpc.Server
	lis    net.Listener
	logger logpkg.Logger
}

// New constructs a gRPC server speaking the given codec and registers the
// TaskDaemon service. Clients must force the same codec.
func New(rt *runtime.Runtime, svc *taskssvc.Service, codec protocol.Codec, logger logpkg.Logger, opts ...grpc.ServerOption) *Server {
	if logger == nil {
		logger = logpkg.NewNop()
	}
	opts = append(opts, grpc.ForceServerCodec(protocol.GRPCCodec{Codec: codec}))
	s := &Server{
		rt:     rt,
		grpc:   grpc.NewServer(opts...),
		logger: logger.With(logpkg.Component("grpc")),
	}
	taskdv1.RegisterTaskDaemonServer(s.grpc, &taskDaemon{svc: svc})
	return s
}

// ListenAndServe binds to addr and serves until ctx is done.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	l, err := net.Listen("tcp", addr)
	if err != nil {
		return err
	}
	s.lis = l
	s.logger.Info("grpc listening", logpkg.Str("addr", l.Addr().String()))
	errCh := make(chan error, 1)
	go func() { errCh <- s.grpc.Serve(l) }()
	select {
	case <-ctx.Done():
		s.grpc.GracefulStop()
		return nil
	case err := <-errCh:
		return err
	}
}

// Serve runs the server on an existing listener until ctx is done.
func (s *Server) Serve(ctx context.Context, l net.Listener) error {
	s.lis = l
	errCh := make(chan error, 1)
	go func() { errCh <- s.grpc.Serve(l) }()
	select {
	case <-ctx.Done():
		s.grpc.GracefulStop()
		return nil
	case err := <-errCh:
		return err
	}
}

// Close stops the server and closes the listener.
func (s *Server) Close() {
	if s.grpc != nil {
		s.grpc.GracefulStop()
	}
	if s.lis != nil {
		_ = s.lis.Close()
	}
}
