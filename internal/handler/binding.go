package handler

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"reflect"

	"github.com/spf13/cast"
)

// ErrBinding marks failures to match a payload to a handler's declared
// parameters (missing required field, wrong shape). Binding failures are
// recorded against the task like any other handler error.
var ErrBinding = errors.New("binding failure")

// Func is the zero-parameter strategy: the payload is ignored.
type Func func(ctx context.Context) (any, error)

// Invoke implements Handler.
func (f Func) Invoke(ctx context.Context, _ map[string]any) (any, error) {
	return f(ctx)
}

// RawFunc is the single raw-parameter strategy: the handler receives the
// payload map as stored.
type RawFunc func(ctx context.Context, payload map[string]any) (any, error)

// Invoke implements Handler.
func (f RawFunc) Invoke(ctx context.Context, payload map[string]any) (any, error) {
	return f(ctx, payload)
}

// Typed is the single structured-parameter strategy: the payload is decoded
// into T before the handler runs. A payload that does not fit T is a binding
// failure.
func Typed[T any](fn func(ctx context.Context, in T) (any, error)) Handler {
	return typedHandler[T]{fn: fn}
}

type typedHandler[T any] struct {
	fn func(ctx context.Context, in T) (any, error)
}

func (h typedHandler[T]) Invoke(ctx context.Context, payload map[string]any) (any, error) {
	var in T
	b, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("%w: encode payload: %v", ErrBinding, err)
	}
	if err := json.Unmarshal(b, &in); err != nil {
		return nil, fmt.Errorf("%w: decode payload into %T: %v", ErrBinding, in, err)
	}
	return h.fn(ctx, in)
}

// Param declares one keyword parameter of a multi-parameter handler.
type Param struct {
	Name     string
	Required bool
}

// argsKey is the reserved payload key whose sequence value is unpacked as
// positional arguments.
const argsKey = "args"

// Keyword is the multi-parameter strategy: payload keys bind to like-named
// parameters, in the order params declares them. A payload holding only the
// reserved "args" key with a sequence is unpacked positionally instead.
func Keyword(params []Param, fn func(ctx context.Context, args []any) (any, error)) Handler {
	return keywordHandler{params: params, fn: fn}
}

type keywordHandler struct {
	params []Param
	fn     func(ctx context.Context, args []any) (any, error)
}

func (h keywordHandler) Invoke(ctx context.Context, payload map[string]any) (any, error) {
	if raw, ok := payload[argsKey]; ok && len(payload) == 1 {
		seq, err := cast.ToSliceE(raw)
		if err != nil {
			return nil, fmt.Errorf("%w: %q is not a sequence: %v", ErrBinding, argsKey, err)
		}
		if len(seq) > len(h.params) {
			return nil, fmt.Errorf("%w: %d positional args for %d parameters", ErrBinding, len(seq), len(h.params))
		}
		args := make([]any, len(h.params))
		copy(args, seq)
		for i := len(seq); i < len(h.params); i++ {
			if h.params[i].Required {
				return nil, fmt.Errorf("%w: missing required parameter %q", ErrBinding, h.params[i].Name)
			}
		}
		return h.fn(ctx, args)
	}

	args := make([]any, len(h.params))
	for i, p := range h.params {
		v, ok := payload[p.Name]
		if !ok {
			if p.Required {
				return nil, fmt.Errorf("%w: missing required parameter %q", ErrBinding, p.Name)
			}
			continue
		}
		args[i] = v
	}
	return h.fn(ctx, args)
}

// NormalizeResult converts struct-shaped handler output into a plain
// map[string]any before it is stored as the task result; all other values
// (including nil) pass through unchanged.
func NormalizeResult(result any) (any, error) {
	if result == nil {
		return nil, nil
	}
	v := reflect.ValueOf(result)
	for v.Kind() == reflect.Pointer {
		if v.IsNil() {
			return nil, nil
		}
		v = v.Elem()
	}
	if v.Kind() != reflect.Struct {
		return result, nil
	}
	b, err := json.Marshal(v.Interface())
	if err != nil {
		return nil, fmt.Errorf("normalize result: %w", err)
	}
	var out map[string]any
	if err := json.Unmarshal(b, &out); err != nil {
		// struct types that serialize to non-objects (time.Time etc.)
		// are stored as their serialized value
		var v any
		if err2 := json.Unmarshal(b, &v); err2 != nil {
			return nil, fmt.Errorf("normalize result: %w", err)
		}
		return v, nil
	}
	return out, nil
}
