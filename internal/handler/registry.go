package handler

import (
	"context"
	"sort"
	"sync"

	logpkg "github.com/jona62/taskd/pkg/log"
)

// Handler processes one task type. Invoke receives the stored payload and
// returns the value recorded as the task's result.
type Handler interface {
	Invoke(ctx context.Context, payload map[string]any) (any, error)
}

// Registry maps task-type names to handlers. It is safe for concurrent use.
type Registry struct {
	mu       sync.RWMutex
	handlers map[string]Handler
	logger   logpkg.Logger
}

// NewRegistry creates an empty registry.
func NewRegistry(logger logpkg.Logger) *Registry {
	if logger == nil {
		logger = logpkg.NewNop()
	}
	return &Registry{
		handlers: make(map[string]Handler),
		logger:   logger.With(logpkg.Component("handlers")),
	}
}

// Register binds h under taskType. Registering the same name again replaces
// the previous binding (last registration wins), which permits hot
// redefinition in long-running registries.
func (r *Registry) Register(taskType string, h Handler) {
	r.mu.Lock()
	_, replaced := r.handlers[taskType]
	r.handlers[taskType] = h
	r.mu.Unlock()
	if replaced {
		r.logger.Warn("handler replaced", logpkg.Str("task_type", taskType))
	} else {
		r.logger.Info("handler registered", logpkg.Str("task_type", taskType))
	}
}

// Resolve returns the handler bound to taskType.
func (r *Registry) Resolve(taskType string) (Handler, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	h, ok := r.handlers[taskType]
	return h, ok
}

// Types returns the registered task-type names, sorted.
func (r *Registry) Types() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]string, 0, len(r.handlers))
	for k := range r.handlers {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
