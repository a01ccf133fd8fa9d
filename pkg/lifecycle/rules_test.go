package lifecycle

import (
	"context"
	"errors"
	"testing"

	compose "github.com/goliatone/go-compose"
)

func TestRuleModelAppliesRulesInOrder(t *testing.T) {
	model, err := NewRuleModel(NewExprEvaluator(), []Rule{
		{Field: "slug", Expr: "lower(title)"},
		{Field: "path", Expr: `"/" + slug`},
	}, []Rule{
		{Field: "heading", Expr: `upper(slug)`},
	})
	if err != nil {
		t.Fatalf("new rule model: %v", err)
	}

	input := compose.Data{"title": "Hello"}
	saved, err := model.Save(context.Background(), compose.Component{Name: "card", Data: input})
	if err != nil {
		t.Fatalf("save: %v", err)
	}
	if saved["slug"] != "hello" || saved["path"] != "/hello" {
		t.Fatalf("unexpected save output %v", saved)
	}
	if _, mutated := input["slug"]; mutated {
		t.Fatalf("save must not mutate its input")
	}

	rendered, err := model.Render(context.Background(), compose.Component{Name: "card", Data: saved})
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if rendered["heading"] != "HELLO" || rendered["title"] != "Hello" {
		t.Fatalf("unexpected render output %v", rendered)
	}
}

func TestRuleModelWithoutRulesCopiesData(t *testing.T) {
	model, err := NewRuleModel(NewCELEvaluator(), nil, nil)
	if err != nil {
		t.Fatalf("new rule model: %v", err)
	}
	input := compose.Data{"title": "x"}
	out, err := model.Save(context.Background(), compose.Component{Data: input})
	if err != nil {
		t.Fatalf("save: %v", err)
	}
	out["title"] = "y"
	if input["title"] != "x" {
		t.Fatalf("output should be a copy of the input")
	}
}

func TestNewRuleModelReportsCompileErrors(t *testing.T) {
	_, err := NewRuleModel(NewExprEvaluator(), []Rule{{Field: "slug", Expr: "title +"}}, nil)
	var evalErr *EvaluationError
	if !errors.As(err, &evalErr) {
		t.Fatalf("expected EvaluationError, got %v", err)
	}
	if evalErr.Field != "slug" || evalErr.Engine != "expr" {
		t.Fatalf("unexpected error metadata %+v", evalErr)
	}

	if _, err := NewRuleModel(NewExprEvaluator(), []Rule{{Field: " ", Expr: "1"}}, nil); err == nil {
		t.Fatalf("expected empty field to fail")
	}
	if _, err := NewRuleModel(nil, nil, nil); err == nil {
		t.Fatalf("expected missing evaluator to fail")
	}
}

func TestRuleModelReportsEvaluationErrors(t *testing.T) {
	evaluator := NewExprEvaluator(WithFunctions(NewComponentFunctions()))
	model, err := NewRuleModel(evaluator, nil, []Rule{{Field: "name", Expr: "componentName(count)"}})
	if err != nil {
		t.Fatalf("new rule model: %v", err)
	}
	_, err = model.Render(context.Background(), compose.Component{Data: compose.Data{"count": 1}})
	var evalErr *EvaluationError
	if !errors.As(err, &evalErr) || evalErr.Field != "name" {
		t.Fatalf("expected field-tagged EvaluationError, got %v", err)
	}
}

func TestRuleModelStopsOnCancelledContext(t *testing.T) {
	model, err := NewRuleModel(NewExprEvaluator(), []Rule{{Field: "a", Expr: "1"}}, nil)
	if err != nil {
		t.Fatalf("new rule model: %v", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := model.Save(ctx, compose.Component{}); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestRuleModelReadsFieldsNamedLikeBuiltins(t *testing.T) {
	model, err := NewRuleModel(NewExprEvaluator(), []Rule{
		{Field: "total", Expr: "count * 2"},
		{Field: "size", Expr: "len + total"},
	}, nil)
	if err != nil {
		t.Fatalf("new rule model: %v", err)
	}
	out, err := model.Save(context.Background(), compose.Component{Name: "cart", Data: compose.Data{"count": 3, "len": 1}})
	if err != nil {
		t.Fatalf("save: %v", err)
	}
	if out["total"] != 6 || out["size"] != 7 {
		t.Fatalf("unexpected output %v", out)
	}
}
