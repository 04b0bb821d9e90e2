package perfsync

import (
	"fmt"
	"reflect"
	"sync"

	celgo "github.com/google/cel-go/cel"
	"github.com/google/cel-go/common/types"
	"github.com/google/cel-go/common/types/ref"
)

type celEvaluator struct {
	evaluatorSettings

	envOnce sync.Once
	env     *celgo.Env
	envErr  error
}

// NewCELEvaluator returns an Evaluator backed by cel-go. actor, goal and
// rating are dynamic; now is a timestamp. Registry functions are reached
// through call(name, [args]).
func NewCELEvaluator(opts ...EvaluatorOption) Evaluator {
	return &celEvaluator{evaluatorSettings: newEvaluatorSettings(opts)}
}

func (e *celEvaluator) engine() string { return EngineCEL }

func (e *celEvaluator) Evaluate(ctx RuleContext, expression string) (any, error) {
	return evaluateOnce(e, ctx, expression)
}

func (e *celEvaluator) Compile(expression string) (CompiledRule, error) {
	program, err := compileProgram(e.evaluatorSettings, EngineCEL, expression, func() (celgo.Program, error) {
		env, err := e.environment()
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
	return &celRule{program: program, expression: expression}, nil
}

func (e *celEvaluator) environment() (*celgo.Env, error) {
	e.envOnce.Do(func() {
		opts := []celgo.EnvOption{
			celgo.Variable("actor", celgo.DynType),
			celgo.Variable("goal", celgo.DynType),
			celgo.Variable("rating", celgo.DynType),
			celgo.Variable("now", celgo.TimestampType),
		}
		if e.registry != nil {
			opts = append(opts, celgo.Function("call",
				celgo.Overload("call_string_list",
					[]*celgo.Type{celgo.StringType, celgo.ListType(celgo.DynType)},
					celgo.DynType,
					celgo.BinaryBinding(e.invoke),
				),
			))
		}
		e.env, e.envErr = celgo.NewEnv(opts...)
		if e.envErr != nil {
			e.envErr = fmt.Errorf("cel environment: %w", e.envErr)
		}
	})
	return e.env, e.envErr
}

func (e *celEvaluator) invoke(name, list ref.Val) ref.Val {
	fn, ok := name.Value().(string)
	if !ok {
		return types.NewErr("call: function name must be a string")
	}
	native, err := list.ConvertToNative(reflect.TypeOf([]any{}))
	if err != nil {
		return types.NewErr("call %s: %v", fn, err)
	}
	args, _ := native.([]any)
	for i, arg := range args {
		if val, ok := arg.(ref.Val); ok {
			args[i] = val.Value()
		}
	}
	result, err := e.registry.Call(fn, args...)
	if err != nil {
		return types.NewErr("call %s: %v", fn, err)
	}
	if result == nil {
		return types.NullValue
	}
	return types.DefaultTypeAdapter.NativeToValue(result)
}

type celRule struct {
	program    celgo.Program
	expression string
}

func (r *celRule) Evaluate(ctx RuleContext) (any, error) {
	ctx = ctx.withDefaults()
	out, _, err := r.program.Eval(ctx.bindings())
	if err != nil {
		return nil, ruleError(EngineCEL, r.expression, ctx.Action, err)
	}
	return out.Value(), nil
}
