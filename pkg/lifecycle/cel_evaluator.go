package lifecycle

import (
	"reflect"
	"sort"
	"strings"

	celgo "github.com/google/cel-go/cel"
	functions "github.com/google/cel-go/common/functions"
	"github.com/google/cel-go/common/types"
	"github.com/google/cel-go/common/types/ref"
)

var (
	anySliceType = reflect.TypeOf([]any{})
	anyMapType   = reflect.TypeOf(map[string]any{})
)

// CELEvaluator evaluates cel-go expressions. Data fields that are valid
// identifiers are declared as dynamic variables, so a program is compiled
// per expression and field set. Registry functions are reachable through
// call(name, [args]).
type CELEvaluator struct {
	engine
}

// NewCELEvaluator returns a CELEvaluator.
func NewCELEvaluator(opts ...Option) *CELEvaluator {
	return &CELEvaluator{engine: newEngine("cel", opts)}
}

// Evaluate compiles expression and runs it once against ctx.
func (e *CELEvaluator) Evaluate(ctx RuleContext, expression string) (any, error) {
	return evaluateOnce(e, ctx, expression)
}

// Compile implements Evaluator. Type checking waits for the first
// evaluation since the variable set depends on the component data.
func (e *CELEvaluator) Compile(expression string) (CompiledRule, error) {
	if expression == "" {
		return nil, e.fail("", errEmptyExpression)
	}
	return celRule{evaluator: e, expression: expression}, nil
}

func (e *CELEvaluator) compile(expression string, fields []string) (celgo.Program, error) {
	program, err := e.program(expression+"|"+strings.Join(fields, ","), func() (any, error) {
		env, err := e.buildEnv(fields)
		if err != nil {
			return nil, err
		}
		ast, issues := env.Compile(expression)
		if issues != nil && issues.Err() != nil {
			return nil, issues.Err()
		}
		return env.Program(ast)
	})
	if err != nil {
		return nil, err
	}
	return program.(celgo.Program), nil
}

func (e *CELEvaluator) buildEnv(fields []string) (*celgo.Env, error) {
	opts := []celgo.EnvOption{
		celgo.Variable("now", celgo.TimestampType),
		celgo.Variable("component", celgo.DynType),
		celgo.Variable("data", celgo.DynType),
	}
	if e.registry != nil {
		opts = append(opts, celgo.Function("call", celgo.Overload(
			"call_dyn",
			[]*celgo.Type{celgo.StringType, celgo.ListType(celgo.DynType)},
			celgo.DynType,
			celgo.BinaryBinding(e.callBinding()),
		)))
	}
	for _, field := range fields {
		if !celIdentifier(field) {
			continue
		}
		opts = append(opts, celgo.Variable(field, celgo.DynType))
	}
	return celgo.NewEnv(opts...)
}

func (e *CELEvaluator) callBinding() functions.BinaryOp {
	return func(nameVal, argsVal ref.Val) ref.Val {
		name, ok := nameVal.Value().(string)
		if !ok {
			return types.NewErr("lifecycle: call name must be string")
		}
		native, err := argsVal.ConvertToNative(anySliceType)
		if err != nil {
			return types.NewErr("lifecycle: call arguments: %v", err)
		}
		result, err := e.registry.Call(name, native.([]any)...)
		if err != nil {
			return types.NewErr("%s", err.Error())
		}
		if result == nil {
			return types.NullValue
		}
		return types.DefaultTypeAdapter.NativeToValue(result)
	}
}

type celRule struct {
	evaluator  *CELEvaluator
	expression string
}

func (r celRule) Evaluate(ctx RuleContext) (any, error) {
	ctx = ctx.withDefaultNow()
	var fields []string
	for key := range ctx.data() {
		if celIdentifier(key) {
			fields = append(fields, key)
		}
	}
	sort.Strings(fields)

	program, err := r.evaluator.compile(r.expression, fields)
	if err != nil {
		return nil, r.evaluator.fail(r.expression, err)
	}
	out, _, err := program.Eval(ctx.environment())
	if err != nil {
		return nil, r.evaluator.fail(r.expression, err)
	}
	return celNative(out), nil
}

// celNative converts CEL values back into plain Go values so results can be
// stored in component data.
func celNative(val ref.Val) any {
	switch val.Type() {
	case types.NullType:
		return nil
	case types.ListType:
		native, err := val.ConvertToNative(anySliceType)
		if err == nil {
			return native
		}
	case types.MapType:
		native, err := val.ConvertToNative(anyMapType)
		if err == nil {
			return native
		}
	}
	return val.Value()
}

var celReserved = map[string]struct{}{
	"now": {}, "component": {}, "data": {}, "call": {},
	"true": {}, "false": {}, "null": {}, "in": {}, "as": {}, "break": {}, "const": {},
	"continue": {}, "else": {}, "for": {}, "function": {}, "if": {}, "import": {},
	"let": {}, "loop": {}, "package": {}, "namespace": {}, "return": {}, "var": {},
	"void": {}, "while": {},
}

// celIdentifier reports whether a data field can be bound as a top-level CEL
// variable. Other fields stay reachable through data["..."].
func celIdentifier(name string) bool {
	if name == "" {
		return false
	}
	if _, reserved := celReserved[name]; reserved {
		return false
	}
	for i, r := range name {
		switch {
		case r == '_', r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z':
		case i > 0 && r >= '0' && r <= '9':
		default:
			return false
		}
	}
	return true
}
