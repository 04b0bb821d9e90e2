package perfsync

import (
	exprlang "github.com/expr-lang/expr"
	exprvm "github.com/expr-lang/expr/vm"
)

type exprEvaluator struct {
	evaluatorSettings
}

// NewExprEvaluator returns an Evaluator backed by expr-lang/expr. Registry
// functions are callable by name and through call(name, args...).
func NewExprEvaluator(opts ...EvaluatorOption) Evaluator {
	return &exprEvaluator{evaluatorSettings: newEvaluatorSettings(opts)}
}

func (e *exprEvaluator) engine() string { return EngineExpr }

func (e *exprEvaluator) Evaluate(ctx RuleContext, expression string) (any, error) {
	return evaluateOnce(e, ctx, expression)
}

func (e *exprEvaluator) Compile(expression string) (CompiledRule, error) {
	program, err := compileProgram(e.evaluatorSettings, EngineExpr, expression, func() (*exprvm.Program, error) {
		options := []exprlang.Option{
			exprlang.Env(map[string]any{}),
			exprlang.AllowUndefinedVariables(),
		}
		for _, name := range e.registry.Names() {
			name := name
			options = append(options, exprlang.Function(name, func(args ...any) (any, error) {
				return e.registry.Call(name, args...)
			}))
		}
		return exprlang.Compile(expression, options...)
	})
	if err != nil {
		return nil, err
	}
	return &exprRule{evaluator: e, program: program, expression: expression}, nil
}

type exprRule struct {
	evaluator  *exprEvaluator
	program    *exprvm.Program
	expression string
}

func (r *exprRule) Evaluate(ctx RuleContext) (any, error) {
	ctx = ctx.withDefaults()
	env := ctx.bindings()
	if registry := r.evaluator.registry; registry != nil {
		env["call"] = func(name string, args ...any) (any, error) {
			return registry.Call(name, args...)
		}
	}
	result, err := exprlang.Run(r.program, env)
	if err != nil {
		return nil, ruleError(EngineExpr, r.expression, ctx.Action, err)
	}
	return result, nil
}
