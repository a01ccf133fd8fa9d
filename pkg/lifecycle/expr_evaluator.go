package lifecycle

import (
	"fmt"
	"slices"
	"strings"

	exprlang "github.com/expr-lang/expr"
	"github.com/expr-lang/expr/parser"
	exprvm "github.com/expr-lang/expr/vm"
)

// ExprEvaluator compiles expressions with expr-lang. Data fields are declared
// in the program environment, so a field named like a builtin (count, len,
// keys) refers to the field. Unknown identifiers evaluate to nil.
type ExprEvaluator struct {
	engine
}

// NewExprEvaluator returns an ExprEvaluator.
func NewExprEvaluator(opts ...Option) *ExprEvaluator {
	return &ExprEvaluator{engine: newEngine("expr", opts)}
}

// Evaluate compiles expression and runs it once against ctx.
func (e *ExprEvaluator) Evaluate(ctx RuleContext, expression string) (any, error) {
	return evaluateOnce(e, ctx, expression)
}

// Compile implements Evaluator. Syntax is checked here; type checking waits
// for the first evaluation since it depends on the component's fields.
func (e *ExprEvaluator) Compile(expression string) (CompiledRule, error) {
	if expression == "" {
		return nil, e.fail("", errEmptyExpression)
	}
	if _, err := parser.Parse(expression); err != nil {
		return nil, e.fail(expression, err)
	}
	return exprRule{evaluator: e, expression: expression}, nil
}

// compile returns the program for expression checked against env. Programs
// are cached per field name and Go type.
func (e *ExprEvaluator) compile(expression string, env map[string]any) (*exprvm.Program, error) {
	program, err := e.program(expression+"|"+envSignature(env), func() (any, error) {
		options := []exprlang.Option{exprlang.Env(env), exprlang.AllowUndefinedVariables()}
		for _, name := range e.registry.Names() {
			registry, fn := e.registry, name
			options = append(options, exprlang.Function(fn, func(args ...any) (any, error) {
				return registry.Call(fn, args...)
			}))
		}
		return exprlang.Compile(expression, options...)
	})
	if err != nil {
		return nil, err
	}
	return program.(*exprvm.Program), nil
}

func envSignature(env map[string]any) string {
	parts := make([]string, 0, len(env))
	for name, value := range env {
		parts = append(parts, fmt.Sprintf("%s:%T", name, value))
	}
	slices.Sort(parts)
	return strings.Join(parts, ",")
}

type exprRule struct {
	evaluator  *ExprEvaluator
	expression string
}

func (r exprRule) Evaluate(ctx RuleContext) (any, error) {
	env := ctx.withDefaultNow().environment()
	program, err := r.evaluator.compile(r.expression, env)
	if err != nil {
		return nil, r.evaluator.fail(r.expression, err)
	}
	out, err := exprvm.Run(program, env)
	if err != nil {
		return nil, r.evaluator.fail(r.expression, err)
	}
	return out, nil
}
