package client

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	taskdclient "github.com/jona62/taskd/pkg/client"
)

// grpcAddrFromEnv returns the RPC server address from TASKD_GRPC or a default.
func grpcAddrFromEnv() string {
	if addr := os.Getenv("TASKD_GRPC"); addr != "" {
		return addr
	}
	return "127.0.0.1:50051"
}

// protocolFromEnv returns the wire encoding from TASKD_PROTOCOL; empty means
// JSON.
func protocolFromEnv() string {
	return os.Getenv("TASKD_PROTOCOL")
}

// withClient provides a connected client and ensures the connection is
// closed.
func withClient(_ context.Context, fn func(*taskdclient.Client) error) error {
	cli, err := taskdclient.Dial(grpcAddrFromEnv(), protocolFromEnv())
	if err != nil {
		return err
	}
	defer func() { _ = cli.Close() }()
	return fn(cli)
}

// printJSON renders v as indented JSON on w.
func printJSON(w io.Writer, v any) error {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(w, string(b))
	return err
}
