package lifecycle

import (
	"context"
	"fmt"

	"github.com/dop251/goja"
	compose "github.com/goliatone/go-compose"
	"github.com/goliatone/go-compose/layering"
)

// ScriptModel runs a JavaScript lifecycle. The script may define
// save(data, component) and render(data, component); a missing function
// leaves the data as is. Returning undefined or null keeps the (possibly
// mutated) data argument.
type ScriptModel struct {
	name     string
	program  *goja.Program
	registry *FunctionRegistry
}

// NewScriptModel compiles source once. name is used in error messages.
func NewScriptModel(name, source string, registry *FunctionRegistry) (*ScriptModel, error) {
	program, err := goja.Compile(name, source, false)
	if err != nil {
		return nil, wrapEvaluationError("js", name, "", err)
	}
	model := &ScriptModel{name: name, program: program}
	if registry != nil {
		model.registry = registry.Clone()
	}
	return model, nil
}

// Save implements compose.Lifecycle.
func (m *ScriptModel) Save(ctx context.Context, c compose.Component) (compose.Data, error) {
	return m.call(ctx, "save", c)
}

// Render implements compose.Lifecycle.
func (m *ScriptModel) Render(ctx context.Context, c compose.Component) (compose.Data, error) {
	return m.call(ctx, "render", c)
}

func (m *ScriptModel) call(ctx context.Context, hook string, c compose.Component) (compose.Data, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	vm := goja.New()
	stop := context.AfterFunc(ctx, func() {
		vm.Interrupt(ctx.Err())
	})
	defer stop()

	installFunctions(vm, m.registry)
	if _, err := vm.RunProgram(m.program); err != nil {
		return nil, wrapEvaluationError("js", m.name, hook, err)
	}

	fn, ok := goja.AssertFunction(vm.Get(hook))
	if !ok {
		return layering.Clone(c.Data), nil
	}

	// Scripts may mutate their arguments; nested children and the schema are
	// shared with other components of the tree.
	c.Schema = layering.Clone(c.Schema)
	input := layering.Clone(map[string]any(c.Data))
	if input == nil {
		input = map[string]any{}
	}
	arg := vm.ToValue(input)
	result, err := fn(goja.Undefined(), arg, vm.ToValue(RuleContext{Component: c}.componentBinding()))
	if err != nil {
		return nil, wrapEvaluationError("js", m.name, hook, err)
	}
	if goja.IsUndefined(result) || goja.IsNull(result) {
		return exportData(arg)
	}
	out, err := exportData(result)
	if err != nil {
		return nil, wrapEvaluationError("js", m.name, hook, err)
	}
	return out, nil
}

func exportData(value goja.Value) (compose.Data, error) {
	switch exported := value.Export().(type) {
	case map[string]any:
		return compose.Data(exported), nil
	case compose.Data:
		return exported, nil
	default:
		return nil, fmt.Errorf("lifecycle: script returned %T, want object", exported)
	}
}
