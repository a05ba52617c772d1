package protocol

import (
	"encoding/json"
	"fmt"

	"github.com/vmihailenco/msgpack/v5"
)

// Codec names accepted in configuration.
const (
	NameJSON    = "json"
	NameMsgpack = "msgpack"
)

// Codec encodes and decodes wire payloads.
type Codec interface {
	Marshal(v any) ([]byte, error)
	Unmarshal(data []byte, v any) error
	// Name is the codec's configuration name.
	Name() string
	// ContentType is the MIME type for HTTP bodies in this encoding.
	ContentType() string
}

// JSON is the default, human-readable codec.
type JSON struct{}

func (JSON) Marshal(v any) ([]byte, error)      { return json.Marshal(v) }
func (JSON) Unmarshal(data []byte, v any) error { return json.Unmarshal(data, v) }
func (JSON) Name() string                       { return NameJSON }
func (JSON) ContentType() string                { return "application/json" }

// Msgpack is the compact binary codec.
type Msgpack struct{}

func (Msgpack) Marshal(v any) ([]byte, error)      { return msgpack.Marshal(v) }
func (Msgpack) Unmarshal(data []byte, v any) error { return msgpack.Unmarshal(data, v) }
func (Msgpack) Name() string                       { return NameMsgpack }
func (Msgpack) ContentType() string                { return "application/msgpack" }

// ByName returns the codec for a configuration name.
func ByName(name string) (Codec, error) {
	switch name {
	case NameJSON, "":
		return JSON{}, nil
	case NameMsgpack:
		return Msgpack{}, nil
	default:
		return nil, fmt.Errorf("unknown protocol %q", name)
	}
}
