package perfsync

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// Rule engines.
const (
	EngineExpr = "expr"
	EngineCEL  = "cel"
	EngineJS   = "js"
)

// RuleContext carries the bindings a rule is evaluated against. Rules see
// actor, goal, rating and now; the subject the rule is not about is bound to
// an empty object.
type RuleContext struct {
	Actor  map[string]any
	Goal   map[string]any
	Rating map[string]any
	Now    time.Time
	Action Action
}

func (ctx RuleContext) withDefaults() RuleContext {
	if ctx.Now.IsZero() {
		ctx.Now = time.Now()
	}
	if ctx.Actor == nil {
		ctx.Actor = map[string]any{}
	}
	if ctx.Goal == nil {
		ctx.Goal = map[string]any{}
	}
	if ctx.Rating == nil {
		ctx.Rating = map[string]any{}
	}
	return ctx
}

func (ctx RuleContext) bindings() map[string]any {
	return map[string]any{
		"actor":  ctx.Actor,
		"goal":   ctx.Goal,
		"rating": ctx.Rating,
		"now":    ctx.Now,
	}
}

var errEmptyRule = errors.New("rule must not be empty")

// Evaluator executes rule expressions.
type Evaluator interface {
	Evaluate(ctx RuleContext, expr string) (any, error)
	Compile(expr string) (CompiledRule, error)
}

// CompiledRule is a reusable rule program.
type CompiledRule interface {
	Evaluate(ctx RuleContext) (any, error)
}

// EvaluatorOption configures the built-in evaluators.
type EvaluatorOption func(*evaluatorSettings)

type evaluatorSettings struct {
	cache    ProgramCache
	registry *FunctionRegistry
}

// WithRuleCache stores compiled programs in cache, keyed by engine and
// expression.
func WithRuleCache(cache ProgramCache) EvaluatorOption {
	return func(s *evaluatorSettings) {
		s.cache = cache
	}
}

// WithRuleFunctions exposes a copy of registry to rules.
func WithRuleFunctions(registry *FunctionRegistry) EvaluatorOption {
	return func(s *evaluatorSettings) {
		s.registry = registry.Clone()
	}
}

func newEvaluatorSettings(opts []EvaluatorOption) evaluatorSettings {
	var s evaluatorSettings
	for _, opt := range opts {
		if opt != nil {
			opt(&s)
		}
	}
	return s
}

// NewEvaluator returns the evaluator for engine. The js engine is only
// available in builds tagged js_eval.
func NewEvaluator(engine string, cache ProgramCache, registry *FunctionRegistry) (Evaluator, error) {
	opts := []EvaluatorOption{WithRuleCache(cache), WithRuleFunctions(registry)}
	switch engine {
	case "", EngineExpr:
		return NewExprEvaluator(opts...), nil
	case EngineCEL:
		return NewCELEvaluator(opts...), nil
	case EngineJS:
		if !jsEvaluatorAvailable() {
			return nil, fmt.Errorf("%w: js engine requires the js_eval build tag", ErrNoEvaluator)
		}
		return NewJSEvaluator(opts...), nil
	default:
		return nil, fmt.Errorf("%w: unsupported engine %q", ErrNoEvaluator, engine)
	}
}

func evaluatorEngineName(e Evaluator) string {
	if e == nil {
		return "unknown"
	}
	if named, ok := e.(interface{ engine() string }); ok {
		return named.engine()
	}
	return "custom"
}

// compileProgram returns the cached program for expression, building and
// caching it on a miss. A cached value of the wrong type counts as a miss.
func compileProgram[P any](s evaluatorSettings, engine, expression string, build func() (P, error)) (P, error) {
	var zero P
	if strings.TrimSpace(expression) == "" {
		return zero, ruleError(engine, expression, "", errEmptyRule)
	}
	key := engine + ":" + expression
	if s.cache != nil {
		if cached, ok := s.cache.Get(key); ok {
			if program, ok := cached.(P); ok {
				return program, nil
			}
		}
	}
	program, err := build()
	if err != nil {
		return zero, ruleError(engine, expression, "", err)
	}
	if s.cache != nil {
		s.cache.Set(key, program)
	}
	return program, nil
}

func evaluateOnce(e Evaluator, ctx RuleContext, expression string) (any, error) {
	rule, err := e.Compile(expression)
	if err != nil {
		return nil, err
	}
	return rule.Evaluate(ctx)
}
