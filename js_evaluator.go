//go:build js_eval

package perfsync

import (
	"github.com/dop251/goja"
)

type jsEvaluator struct {
	evaluatorSettings
}

// NewJSEvaluator returns an Evaluator backed by goja. Each evaluation runs in
// a fresh runtime; registry functions are globals and also reachable through
// call(name, ...args).
func NewJSEvaluator(opts ...EvaluatorOption) Evaluator {
	return &jsEvaluator{evaluatorSettings: newEvaluatorSettings(opts)}
}

func jsEvaluatorAvailable() bool { return true }

func (e *jsEvaluator) engine() string { return EngineJS }

func (e *jsEvaluator) Evaluate(ctx RuleContext, expression string) (any, error) {
	return evaluateOnce(e, ctx, expression)
}

func (e *jsEvaluator) Compile(expression string) (CompiledRule, error) {
	program, err := compileProgram(e.evaluatorSettings, EngineJS, expression, func() (*goja.Program, error) {
		return goja.Compile("rule", "(function(){ return ("+expression+"); })()", true)
	})
	if err != nil {
		return nil, err
	}
	return &jsRule{evaluator: e, program: program, expression: expression}, nil
}

func (e *jsEvaluator) runtime(ctx RuleContext) (*goja.Runtime, error) {
	vm := goja.New()
	globals := ctx.bindings()
	if e.registry != nil {
		registry := e.registry
		globals["call"] = func(name string, args ...any) (any, error) {
			return registry.Call(name, args...)
		}
		for _, name := range registry.Names() {
			name := name
			globals[name] = func(args ...any) (any, error) {
				return registry.Call(name, args...)
			}
		}
	}
	for name, value := range globals {
		if err := vm.Set(name, value); err != nil {
			return nil, err
		}
	}
	return vm, nil
}

type jsRule struct {
	evaluator  *jsEvaluator
	program    *goja.Program
	expression string
}

func (r *jsRule) Evaluate(ctx RuleContext) (any, error) {
	ctx = ctx.withDefaults()
	vm, err := r.evaluator.runtime(ctx)
	if err == nil {
		var value goja.Value
		if value, err = vm.RunProgram(r.program); err == nil {
			return value.Export(), nil
		}
	}
	return nil, ruleError(EngineJS, r.expression, ctx.Action, err)
}
