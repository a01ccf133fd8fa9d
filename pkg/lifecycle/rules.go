package lifecycle

import (
	"context"
	"fmt"
	"strings"

	compose "github.com/goliatone/go-compose"
)

// Rule assigns the result of Expr to Field.
type Rule struct {
	Field string `json:"field" yaml:"field"`
	Expr  string `json:"expr" yaml:"expr"`
}

type compiledRule struct {
	field      string
	expression string
	program    CompiledRule
}

// RuleModel is a declarative lifecycle. Save and Render apply their rules in
// order; each rule sees the fields written by the rules before it.
type RuleModel struct {
	engine string
	save   []compiledRule
	render []compiledRule
}

// NewRuleModel compiles save and render rules with evaluator.
func NewRuleModel(evaluator Evaluator, save, render []Rule) (*RuleModel, error) {
	if evaluator == nil {
		return nil, fmt.Errorf("lifecycle: evaluator is required")
	}
	model := &RuleModel{engine: engineName(evaluator)}

	var err error
	if model.save, err = compileRules(evaluator, model.engine, save); err != nil {
		return nil, err
	}
	if model.render, err = compileRules(evaluator, model.engine, render); err != nil {
		return nil, err
	}
	return model, nil
}

func compileRules(evaluator Evaluator, engine string, rules []Rule) ([]compiledRule, error) {
	out := make([]compiledRule, 0, len(rules))
	for _, rule := range rules {
		field := strings.TrimSpace(rule.Field)
		if field == "" {
			return nil, wrapEvaluationError(engine, rule.Expr, "", fmt.Errorf("rule field must not be empty"))
		}
		program, err := evaluator.Compile(rule.Expr)
		if err != nil {
			return nil, wrapEvaluationError(engine, rule.Expr, field, err)
		}
		out = append(out, compiledRule{field: field, expression: rule.Expr, program: program})
	}
	return out, nil
}

// Save implements compose.Lifecycle.
func (m *RuleModel) Save(ctx context.Context, c compose.Component) (compose.Data, error) {
	return m.apply(ctx, m.save, c)
}

// Render implements compose.Lifecycle.
func (m *RuleModel) Render(ctx context.Context, c compose.Component) (compose.Data, error) {
	return m.apply(ctx, m.render, c)
}

func (m *RuleModel) apply(ctx context.Context, rules []compiledRule, c compose.Component) (compose.Data, error) {
	out := make(compose.Data, len(c.Data)+len(rules))
	for key, value := range c.Data {
		out[key] = value
	}
	if len(rules) == 0 {
		return out, nil
	}

	rc := RuleContext{}.withDefaultNow()
	for _, rule := range rules {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		rc.Component = compose.Component{Name: c.Name, Ref: c.Ref, Schema: c.Schema, Data: out}
		value, err := rule.program.Evaluate(rc)
		if err != nil {
			return nil, wrapEvaluationError(m.engine, rule.expression, rule.field, err)
		}
		out[rule.field] = value
	}
	return out, nil
}
