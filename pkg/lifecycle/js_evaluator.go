package lifecycle

import (
	"github.com/dop251/goja"
)

// JSEvaluator runs expressions with goja. Every evaluation gets a fresh
// runtime; compiled programs are shared.
type JSEvaluator struct {
	engine
}

// NewJSEvaluator returns a JSEvaluator.
func NewJSEvaluator(opts ...Option) *JSEvaluator {
	return &JSEvaluator{engine: newEngine("js", opts)}
}

// Evaluate compiles expression and runs it once against ctx.
func (e *JSEvaluator) Evaluate(ctx RuleContext, expression string) (any, error) {
	return evaluateOnce(e, ctx, expression)
}

// Compile implements Evaluator. expression must be a single JavaScript
// expression, statements are rejected.
func (e *JSEvaluator) Compile(expression string) (CompiledRule, error) {
	if expression == "" {
		return nil, e.fail("", errEmptyExpression)
	}
	program, err := e.program(expression, func() (any, error) {
		return goja.Compile("", "(function(){ return ("+expression+"); })()", false)
	})
	if err != nil {
		return nil, e.fail(expression, err)
	}
	return jsRule{evaluator: e, expression: expression, program: program.(*goja.Program)}, nil
}

type jsRule struct {
	evaluator  *JSEvaluator
	expression string
	program    *goja.Program
}

func (r jsRule) Evaluate(ctx RuleContext) (any, error) {
	vm := goja.New()
	for name, value := range ctx.withDefaultNow().environment() {
		if err := vm.Set(name, value); err != nil {
			return nil, r.evaluator.fail(r.expression, err)
		}
	}
	installFunctions(vm, r.evaluator.registry)
	value, err := vm.RunProgram(r.program)
	if err != nil {
		return nil, r.evaluator.fail(r.expression, err)
	}
	return value.Export(), nil
}

// installFunctions binds every registered function by name, plus
// call(name, ...args) for names that are not valid identifiers.
func installFunctions(vm *goja.Runtime, registry *FunctionRegistry) {
	if registry == nil {
		return
	}
	_ = vm.Set("call", registry.Call)
	for _, name := range registry.Names() {
		fn := name
		_ = vm.Set(fn, func(args ...any) (any, error) {
			return registry.Call(fn, args...)
		})
	}
}
