package protocol

import (
	"google.golang.org/grpc/encoding"
)

// GRPCCodec adapts a Codec to gRPC's message codec interface, letting the
// RPC surface carry plain Go structs in either wire encoding.
type GRPCCodec struct {
	Codec Codec
}

func (c GRPCCodec) Marshal(v any) ([]byte, error) {
	return c.Codec.Marshal(v)
}

func (c GRPCCodec) Unmarshal(data []byte, v any) error {
	return c.Codec.Unmarshal(data, v)
}

func (c GRPCCodec) Name() string {
	return "taskd+" + c.Codec.Name()
}

var _ encoding.Codec = GRPCCodec{}
