package lifecycle

import (
	"cmp"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	compose "github.com/goliatone/go-compose"
)

// RuleContext carries the inputs of one expression evaluation.
type RuleContext struct {
	Component compose.Component
	Now       *time.Time
}

func (ctx RuleContext) withDefaultNow() RuleContext {
	if ctx.Now != nil {
		return ctx
	}
	now := time.Now()
	ctx.Now = &now
	return ctx
}

func (ctx RuleContext) timestamp() time.Time {
	ctx = ctx.withDefaultNow()
	return *ctx.Now
}

func (ctx RuleContext) data() map[string]any {
	if ctx.Component.Data == nil {
		return map[string]any{}
	}
	return map[string]any(ctx.Component.Data)
}

func (ctx RuleContext) componentBinding() map[string]any {
	schema := map[string]any(ctx.Component.Schema)
	if schema == nil {
		schema = map[string]any{}
	}
	return map[string]any{
		"name":   ctx.Component.Name,
		"ref":    ctx.Component.Ref,
		"schema": schema,
	}
}

// environment binds now, component, data and every data field by name. Data
// fields shadow the reserved names.
func (ctx RuleContext) environment() map[string]any {
	data := ctx.data()
	env := map[string]any{
		"now":       ctx.timestamp(),
		"component": ctx.componentBinding(),
		"data":      data,
	}
	for key, value := range data {
		env[key] = value
	}
	return env
}

// Evaluator executes expressions against a rule context.
type Evaluator interface {
	Evaluate(ctx RuleContext, expr string) (any, error)
	Compile(expr string) (CompiledRule, error)
}

// CompiledRule is a reusable expression program.
type CompiledRule interface {
	Evaluate(ctx RuleContext) (any, error)
}

// ProgramCache stores compiled programs keyed by expression.
type ProgramCache interface {
	Get(key string) (any, bool)
	Set(key string, value any)
}

// NewProgramCache returns an unbounded ProgramCache safe for concurrent use.
func NewProgramCache() ProgramCache {
	return &syncMapCache{}
}

type syncMapCache struct {
	m sync.Map
}

func (c *syncMapCache) Get(key string) (any, bool) {
	return c.m.Load(key)
}

func (c *syncMapCache) Set(key string, value any) {
	c.m.Store(key, value)
}

// EvaluationError reports which engine, expression and target field failed.
// Field is empty for errors raised outside a rule.
type EvaluationError struct {
	Engine string
	Expr   string
	Field  string
	Err    error
}

func (e *EvaluationError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "lifecycle: %s", e.Engine)
	if e.Field != "" {
		fmt.Fprintf(&b, " rule %s", e.Field)
	}
	if e.Expr != "" {
		fmt.Fprintf(&b, " (%q)", e.Expr)
	}
	fmt.Fprintf(&b, ": %v", e.Err)
	return b.String()
}

func (e *EvaluationError) Unwrap() error { return e.Err }

// wrapEvaluationError fills in missing details of an existing
// EvaluationError, or wraps err in a new one.
func wrapEvaluationError(engine, expr, field string, err error) error {
	if err == nil {
		return nil
	}
	var evalErr *EvaluationError
	if !errors.As(err, &evalErr) {
		return &EvaluationError{Engine: engine, Expr: expr, Field: field, Err: err}
	}
	evalErr.Engine = cmp.Or(evalErr.Engine, engine)
	evalErr.Expr = cmp.Or(evalErr.Expr, expr)
	evalErr.Field = cmp.Or(evalErr.Field, field)
	return evalErr
}

var errEmptyExpression = errors.New("expression must not be empty")

// Option configures any of the built-in evaluators.
type Option func(*engine)

// WithCache shares compiled programs through cache. Keys are prefixed with
// the engine name, so one cache can serve every engine.
func WithCache(cache ProgramCache) Option {
	return func(e *engine) {
		e.cache = cache
	}
}

// WithFunctions exposes the functions in registry to expressions. The
// registry is copied, later registrations are not seen.
func WithFunctions(registry *FunctionRegistry) Option {
	return func(e *engine) {
		e.registry = registry.Clone()
	}
}

// engine holds what the built-in evaluators have in common.
type engine struct {
	name     string
	cache    ProgramCache
	registry *FunctionRegistry
}

func newEngine(name string, opts []Option) engine {
	e := engine{name: name}
	for _, opt := range opts {
		if opt != nil {
			opt(&e)
		}
	}
	return e
}

// Engine names the expression language.
func (e *engine) Engine() string { return e.name }

// program returns the cached program for key or builds and caches it.
func (e *engine) program(key string, build func() (any, error)) (any, error) {
	key = e.name + ":" + key
	if e.cache != nil {
		if cached, ok := e.cache.Get(key); ok {
			return cached, nil
		}
	}
	program, err := build()
	if err != nil {
		return nil, err
	}
	if e.cache != nil {
		e.cache.Set(key, program)
	}
	return program, nil
}

func (e *engine) fail(expression string, err error) error {
	return wrapEvaluationError(e.name, expression, "", err)
}

func evaluateOnce(evaluator Evaluator, ctx RuleContext, expression string) (any, error) {
	rule, err := evaluator.Compile(expression)
	if err != nil {
		return nil, err
	}
	return rule.Evaluate(ctx)
}

func engineName(e Evaluator) string {
	if named, ok := e.(interface{ Engine() string }); ok {
		return named.Engine()
	}
	return "custom"
}

// NewEvaluator returns the evaluator for engine ("expr", "cel" or "js"). An
// empty engine selects expr.
func NewEvaluator(engine string, opts ...Option) (Evaluator, error) {
	switch strings.ToLower(strings.TrimSpace(engine)) {
	case "", "expr":
		return NewExprEvaluator(opts...), nil
	case "cel":
		return NewCELEvaluator(opts...), nil
	case "js", "javascript":
		return NewJSEvaluator(opts...), nil
	default:
		return nil, fmt.Errorf("lifecycle: unknown evaluator engine %q", engine)
	}
}
