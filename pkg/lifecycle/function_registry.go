package lifecycle

import (
	"errors"
	"fmt"
	"maps"
	"slices"
	"sync"

	compose "github.com/goliatone/go-compose"
)

// Function is a helper callable from rule expressions and scripts.
type Function func(args ...any) (any, error)

var (
	// ErrFunctionExists is returned when a name is registered twice.
	ErrFunctionExists = errors.New("lifecycle: function already registered")
	// ErrUnknownFunction is returned when calling a name nobody registered.
	ErrUnknownFunction = errors.New("lifecycle: function not registered")
)

// FunctionRegistry maps names to helpers. It is safe for concurrent use;
// the zero value is empty and ready.
type FunctionRegistry struct {
	mu    sync.RWMutex
	funcs map[string]Function
}

// NewFunctionRegistry returns an empty registry.
func NewFunctionRegistry() *FunctionRegistry {
	return &FunctionRegistry{}
}

// Register adds fn under name.
func (r *FunctionRegistry) Register(name string, fn Function) error {
	switch {
	case name == "":
		return errors.New("lifecycle: function name must not be empty")
	case fn == nil:
		return fmt.Errorf("lifecycle: function %q is nil", name)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, taken := r.funcs[name]; taken {
		return fmt.Errorf("%w: %q", ErrFunctionExists, name)
	}
	if r.funcs == nil {
		r.funcs = map[string]Function{}
	}
	r.funcs[name] = fn
	return nil
}

// Clone copies the registry. Evaluators hold a clone so registrations made
// after construction do not leak into compiled programs.
func (r *FunctionRegistry) Clone() *FunctionRegistry {
	if r == nil {
		return nil
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	return &FunctionRegistry{funcs: maps.Clone(r.funcs)}
}

// Call runs the function registered under name.
func (r *FunctionRegistry) Call(name string, args ...any) (any, error) {
	var fn Function
	if r != nil {
		r.mu.RLock()
		fn = r.funcs[name]
		r.mu.RUnlock()
	}
	if fn == nil {
		return nil, fmt.Errorf("%w: %q", ErrUnknownFunction, name)
	}
	return fn(args...)
}

// Names lists registered names in sorted order.
func (r *FunctionRegistry) Names() []string {
	if r == nil {
		return nil
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	return slices.Sorted(maps.Keys(r.funcs))
}

// NewComponentFunctions returns a registry preloaded with reference helpers:
//
//	componentName(ref)  -> name parsed from a component or instance URI
//	refOf(value)        -> ref carried by a reference marker, or ""
//	coalesce(a, b, ...) -> first argument that is neither nil nor ""
func NewComponentFunctions() *FunctionRegistry {
	registry := NewFunctionRegistry()
	_ = registry.Register("componentName", func(args ...any) (any, error) {
		if len(args) != 1 {
			return nil, fmt.Errorf("lifecycle: componentName expects 1 argument, got %d", len(args))
		}
		ref, ok := args[0].(string)
		if !ok {
			return nil, fmt.Errorf("lifecycle: componentName expects a string, got %T", args[0])
		}
		return compose.NameFromRef(ref)
	})
	_ = registry.Register("refOf", func(args ...any) (any, error) {
		if len(args) != 1 {
			return nil, fmt.Errorf("lifecycle: refOf expects 1 argument, got %d", len(args))
		}
		ref, _ := compose.MarkerOf(args[0])
		return ref, nil
	})
	_ = registry.Register("coalesce", func(args ...any) (any, error) {
		for _, arg := range args {
			if arg == nil {
				continue
			}
			if s, ok := arg.(string); ok && s == "" {
				continue
			}
			return arg, nil
		}
		return nil, nil
	})
	return registry
}
