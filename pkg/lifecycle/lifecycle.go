package lifecycle

import (
	"context"
	"fmt"
	"sort"
	"sync"

	compose "github.com/goliatone/go-compose"
)

// Registry maps component names to lifecycles.
type Registry struct {
	mu     sync.RWMutex
	models map[string]compose.Lifecycle
}

// NewRegistry constructs an empty registry.
func NewRegistry() *Registry {
	return &Registry{models: map[string]compose.Lifecycle{}}
}

// Register stores model under name guarding against duplicates.
func (r *Registry) Register(name string, model compose.Lifecycle) error {
	if name == "" {
		return fmt.Errorf("lifecycle: component name must not be empty")
	}
	if model == nil {
		return fmt.Errorf("lifecycle: model for %q is nil", name)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.models == nil {
		r.models = map[string]compose.Lifecycle{}
	}
	if _, exists := r.models[name]; exists {
		return fmt.Errorf("lifecycle: model for %q already registered", name)
	}
	r.models[name] = model
	return nil
}

// Lifecycle implements compose.LifecycleLoader.
func (r *Registry) Lifecycle(name string) (compose.Lifecycle, bool) {
	if r == nil {
		return nil, false
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	model, ok := r.models[name]
	return model, ok
}

// Names returns registered component names sorted alphabetically.
func (r *Registry) Names() []string {
	if r == nil {
		return nil
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.models))
	for name := range r.models {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// HookFunc is the signature of a single lifecycle step.
type HookFunc func(ctx context.Context, c compose.Component) (compose.Data, error)

// Funcs adapts plain functions to compose.Lifecycle. A nil hook returns the
// component data unchanged.
type Funcs struct {
	SaveFn   HookFunc
	RenderFn HookFunc
}

// Save implements compose.Lifecycle.
func (f Funcs) Save(ctx context.Context, c compose.Component) (compose.Data, error) {
	if f.SaveFn == nil {
		return c.Data, nil
	}
	return f.SaveFn(ctx, c)
}

// Render implements compose.Lifecycle.
func (f Funcs) Render(ctx context.Context, c compose.Component) (compose.Data, error) {
	if f.RenderFn == nil {
		return c.Data, nil
	}
	return f.RenderFn(ctx, c)
}
