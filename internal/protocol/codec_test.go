package protocol

import (
	"reflect"
	"testing"
)

func TestByName(t *testing.T) {
	for name, want := range map[string]string{
		"":        NameJSON,
		"json":    NameJSON,
		"msgpack": NameMsgpack,
	} {
		c, err := ByName(name)
		if err != nil {
			t.Fatalf("%q: %v", name, err)
		}
		if c.Name() != want {
			t.Fatalf("%q: got %s", name, c.Name())
		}
	}
	if _, err := ByName("protobuf"); err == nil {
		t.Fatal("expected error for unknown protocol")
	}
}

func TestCodecsCarryMaps(t *testing.T) {
	in := map[string]any{"msg": "hi", "count": int64(3), "nested": map[string]any{"ok": true}}
	for _, c := range []Codec{JSON{}, Msgpack{}} {
		data, err := c.Marshal(in)
		if err != nil {
			t.Fatalf("%s marshal: %v", c.Name(), err)
		}
		var out map[string]any
		if err := c.Unmarshal(data, &out); err != nil {
			t.Fatalf("%s unmarshal: %v", c.Name(), err)
		}
		got := NormalizeMap(out)
		if got["msg"] != "hi" {
			t.Fatalf("%s: msg = %#v", c.Name(), got["msg"])
		}
		nested, ok := got["nested"].(map[string]any)
		if !ok || nested["ok"] != true {
			t.Fatalf("%s: nested = %#v", c.Name(), got["nested"])
		}
	}
}

func TestNormalizeCanonicalizes(t *testing.T) {
	in := map[string]any{
		"small": int8(7),
		"wide":  uint32(9),
		"f":     float32(1.5),
		"list":  []any{int16(1), map[any]any{"k": "v"}},
	}
	got := NormalizeMap(in)
	want := map[string]any{
		"small": int64(7),
		"wide":  int64(9),
		"f":     float64(1.5),
		"list":  []any{int64(1), map[string]any{"k": "v"}},
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("normalize: %#v", got)
	}
}

func TestGRPCCodecName(t *testing.T) {
	c := GRPCCodec{Codec: Msgpack{}}
	if c.Name() != "taskd+msgpack" {
		t.Fatalf("name: %s", c.Name())
	}
	data, err := c.Marshal(map[string]any{"a": 1})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var out map[string]any
	if err := c.Unmarshal(data, &out); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
}
