package finding

import (
	"fmt"
	"log/slog"

	"github.com/google/cel-go/cel"

	"github.com/mchmarny/bureau/pkg/behavior"
	"github.com/mchmarny/bureau/pkg/portfolio"
)

const (
	customRulePrefix = "custom."
	customCostLimit  = 10000
)

// CustomRule is an operator-defined finding. Expression is a CEL boolean over
// b (the supplied behavioral fields) and p (the portfolio totals); the finding
// is emitted when it evaluates to true.
type CustomRule struct {
	Name       string   `json:"name" yaml:"name" validate:"required"`
	Expression string   `json:"expression" yaml:"expression" validate:"required"`
	Severity   Severity `json:"severity" yaml:"severity" validate:"required,oneof=high_risk moderate_risk concern neutral positive"`
	Finding    string   `json:"finding" yaml:"finding" validate:"required"`
	Inference  string   `json:"inference" yaml:"inference"`
}

type compiledRule struct {
	rule    CustomRule
	program cel.Program
}

func newRuleEnv() (*cel.Env, error) {
	env, err := cel.NewEnv(
		cel.Variable("b", cel.MapType(cel.StringType, cel.DynType)),
		cel.Variable("p", cel.MapType(cel.StringType, cel.DynType)),
		cel.CrossTypeNumericComparisons(true),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create CEL environment: %w", err)
	}
	return env, nil
}

func compileRules(rules []CustomRule) ([]*compiledRule, error) {
	list := make([]*compiledRule, 0, len(rules))
	if len(rules) == 0 {
		return list, nil
	}

	env, err := newRuleEnv()
	if err != nil {
		return nil, err
	}

	for _, r := range rules {
		if r.Name == "" || r.Expression == "" {
			return nil, fmt.Errorf("custom rule requires name and expression: %+v", r)
		}
		if !r.Severity.Valid() {
			return nil, fmt.Errorf("custom rule %s: unknown severity %q", r.Name, r.Severity)
		}

		ast, issues := env.Compile(r.Expression)
		if issues != nil && issues.Err() != nil {
			return nil, fmt.Errorf("custom rule %s: compile: %w", r.Name, issues.Err())
		}
		if out := ast.OutputType(); !out.IsExactType(cel.BoolType) && !out.IsExactType(cel.DynType) {
			return nil, fmt.Errorf("custom rule %s: expression must return bool, got %s", r.Name, out)
		}

		prg, err := env.Program(ast, cel.CostLimit(customCostLimit))
		if err != nil {
			return nil, fmt.Errorf("custom rule %s: program: %w", r.Name, err)
		}
		list = append(list, &compiledRule{rule: r, program: prg})
	}

	return list, nil
}

func (e *Engine) customFindings(s *portfolio.Summary, b *behavior.Features) []Finding {
	list := make([]Finding, 0)
	if len(e.custom) == 0 {
		return list
	}

	input := map[string]any{
		"b": b.Fields(),
		"p": s.Totals(),
	}

	for _, c := range e.custom {
		out, _, err := c.program.Eval(input)
		if err != nil {
			slog.Debug("custom rule skipped", "rule", c.rule.Name, "error", err)
			continue
		}
		matched, ok := out.Value().(bool)
		if !ok {
			slog.Debug("custom rule returned non-bool", "rule", c.rule.Name, "type", out.Type())
			continue
		}
		if matched {
			list = append(list, newFinding(customRulePrefix+c.rule.Name, CategoryCustom,
				c.rule.Severity, c.rule.Finding, c.rule.Inference))
		}
	}

	return list
}
