package config

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	compose "github.com/goliatone/go-compose"
	"github.com/goliatone/go-compose/pkg/lifecycle"
)

// BuildLifecycles registers one lifecycle per configured component. Rule
// models share a program cache and the component helper functions.
func (c *Config) BuildLifecycles() (*lifecycle.Registry, error) {
	registry := lifecycle.NewRegistry()
	if len(c.Lifecycles) == 0 {
		return registry, nil
	}

	cache := lifecycle.NewProgramCache()
	functions := lifecycle.NewComponentFunctions()

	names := make([]string, 0, len(c.Lifecycles))
	for name := range c.Lifecycles {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		lc := c.Lifecycles[name]
		model, err := c.buildLifecycle(name, lc, cache, functions)
		if err != nil {
			return nil, err
		}
		if err := registry.Register(name, model); err != nil {
			return nil, err
		}
	}
	return registry, nil
}

func (c *Config) buildLifecycle(name string, lc LifecycleConfig, cache lifecycle.ProgramCache, functions *lifecycle.FunctionRegistry) (compose.Lifecycle, error) {
	if lc.Script != "" {
		path := c.scriptPath(lc.Script)
		source, err := readScript(path)
		if err != nil {
			return nil, err
		}
		model, err := lifecycle.NewScriptModel(path, source, functions)
		if err != nil {
			return nil, fmt.Errorf("lifecycles.%s: %w", name, err)
		}
		return model, nil
	}

	evaluator, err := lifecycle.NewEvaluator(lc.Engine, lifecycle.WithCache(cache), lifecycle.WithFunctions(functions))
	if err != nil {
		return nil, fmt.Errorf("lifecycles.%s: %w", name, err)
	}
	model, err := lifecycle.NewRuleModel(evaluator, lc.Save, lc.Render)
	if err != nil {
		return nil, fmt.Errorf("lifecycles.%s: %w", name, err)
	}
	return model, nil
}

func (c *Config) scriptPath(path string) string {
	if filepath.IsAbs(path) || c.dir == "" {
		return path
	}
	return filepath.Join(c.dir, path)
}

func readScript(path string) (string, error) {
	source, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("failed to read lifecycle script %s: %w", path, err)
	}
	return string(source), nil
}
