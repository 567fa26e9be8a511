package finding

import (
	"log/slog"

	"github.com/mchmarny/bureau/pkg/behavior"
	"github.com/mchmarny/bureau/pkg/feature"
	"github.com/mchmarny/bureau/pkg/loan"
	"github.com/mchmarny/bureau/pkg/portfolio"
)

// Engine evaluates the finding rules. It holds no per-borrower state and is
// safe for concurrent use.
type Engine struct {
	thresholds Thresholds
	format     AmountFormatter
	rules      []CustomRule
	custom     []*compiledRule
}

// Option configures an Engine.
type Option func(*Engine)

// WithThresholds replaces the default thresholds.
func WithThresholds(t Thresholds) Option {
	return func(e *Engine) {
		e.thresholds = t
	}
}

// WithAmountFormatter sets the formatter used for amounts in finding text.
func WithAmountFormatter(f AmountFormatter) Option {
	return func(e *Engine) {
		if f != nil {
			e.format = f
		}
	}
}

// WithCustomRules adds operator-defined rules evaluated after the composites.
func WithCustomRules(rules ...CustomRule) Option {
	return func(e *Engine) {
		e.rules = append(e.rules, rules...)
	}
}

// NewEngine validates the thresholds and compiles any custom rules.
func NewEngine(opts ...Option) (*Engine, error) {
	e := &Engine{
		thresholds: DefaultThresholds(),
		format:     DefaultAmountFormatter(),
	}
	for _, opt := range opts {
		opt(e)
	}

	if err := e.thresholds.Validate(); err != nil {
		return nil, err
	}

	custom, err := compileRules(e.rules)
	if err != nil {
		return nil, err
	}
	e.custom = custom

	return e, nil
}

// Thresholds returns the thresholds the engine evaluates with.
func (e *Engine) Thresholds() Thresholds {
	return e.thresholds
}

// Extract evaluates every rule family and returns the findings ordered by
// severity. When s is nil it is aggregated from vectors. Behavioral, composite
// and custom rules only run when b is not nil. The result is never nil.
func (e *Engine) Extract(s *portfolio.Summary, vectors map[loan.Type]*feature.Vector, b *behavior.Features) []Finding {
	if s == nil {
		s = portfolio.Aggregate(vectors)
	}

	list := make([]Finding, 0)
	list = append(list, e.portfolioFindings(s, vectors)...)
	list = append(list, e.loanTypeFindings(vectors)...)

	if b != nil {
		list = append(list, e.behavioralFindings(b)...)
		list = append(list, e.compositeFindings(b)...)
		list = append(list, e.customFindings(s, b)...)
	}

	Sort(list)

	slog.Debug("findings extracted",
		"types", len(vectors),
		"behavioral", b != nil,
		"count", len(list))

	return list
}
