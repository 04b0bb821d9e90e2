package perfsync

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/goliatone/go-perfsync/internal/merge"
)

// DefaultRules returns the built-in rule per action. Rules only use ==, &&
// and || so they run unchanged on every engine.
func DefaultRules() map[Action]string {
	const (
		employee = `actor.role == "EMPLOYEE"`
		manager  = `actor.role == "MANAGER"`
	)
	return map[Action]string{
		ActionCreateGoal:     employee + ` || ` + manager,
		ActionUpdateGoal:     employee + ` && (goal.status == "DRAFT" || goal.status == "REJECTED")`,
		ActionDeleteGoal:     employee + ` && (goal.status == "DRAFT" || goal.status == "REJECTED")`,
		ActionSubmitGoal:     employee + ` && goal.status == "DRAFT"`,
		ActionApproveGoal:    manager + ` && goal.status == "SUBMITTED"`,
		ActionRejectGoal:     manager + ` && goal.status == "SUBMITTED"`,
		ActionUpdateProgress: `actor.id == goal.employee_id`,

		ActionCreateRating:        manager,
		ActionUpdateManagerRating: manager + ` && rating.status == "DRAFT"`,
		ActionSubmitRating:        manager + ` && rating.status == "DRAFT"`,
		ActionCalibrateRating:     `actor.role == "HR" && rating.status == "MANAGER_SUBMITTED"`,
	}
}

// PolicyOption configures NewPolicy.
type PolicyOption func(*policyConfig)

type policyConfig struct {
	config    PolicyConfig
	evaluator Evaluator
	cache     ProgramCache
	registry  *FunctionRegistry
	rules     map[Action]string
	logger    Logger
	clock     func() time.Time
}

// WithPolicyConfig selects the engine, cache size and rule overrides. Unset
// fields keep their defaults.
func WithPolicyConfig(cfg PolicyConfig) PolicyOption {
	return func(c *policyConfig) {
		c.config = merge.Defaults(cfg, DefaultConfig().Policy)
	}
}

// WithEvaluator uses e instead of building one from the configured engine.
func WithEvaluator(e Evaluator) PolicyOption {
	return func(c *policyConfig) {
		c.evaluator = e
	}
}

// WithProgramCache replaces the default LRU program cache.
func WithProgramCache(cache ProgramCache) PolicyOption {
	return func(c *policyConfig) {
		c.cache = cache
	}
}

// WithFunctionRegistry exposes custom functions to rules.
func WithFunctionRegistry(registry *FunctionRegistry) PolicyOption {
	return func(c *policyConfig) {
		if registry != nil {
			c.registry = registry.Clone()
		}
	}
}

// WithCustomFunction registers a single function for rules.
func WithCustomFunction(name string, fn Function) PolicyOption {
	return func(c *policyConfig) {
		if c.registry == nil {
			c.registry = NewFunctionRegistry()
		}
		_ = c.registry.Register(name, fn)
	}
}

// WithRule overrides the rule of one action. It wins over config rules.
func WithRule(action Action, expr string) PolicyOption {
	return func(c *policyConfig) {
		if c.rules == nil {
			c.rules = map[Action]string{}
		}
		c.rules[action] = expr
	}
}

// WithPolicyLogger records every evaluation as a LogPolicy event.
func WithPolicyLogger(logger Logger) PolicyOption {
	return func(c *policyConfig) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithClock sets the source of the rules' now binding.
func WithClock(clock func() time.Time) PolicyOption {
	return func(c *policyConfig) {
		if clock != nil {
			c.clock = clock
		}
	}
}

// Policy decides whether an actor may attempt an action on a goal or rating.
// The stores never consult it; callers use it to gate their UI.
type Policy struct {
	engine  string
	rules   map[Action]CompiledRule
	sources map[Action]string
	logger  Logger
	clock   func() time.Time
}

// NewPolicy compiles the default rules merged with any overrides.
func NewPolicy(opts ...PolicyOption) (*Policy, error) {
	cfg := policyConfig{
		config: DefaultConfig().Policy,
		logger: noopLogger{},
		clock:  time.Now,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}

	evaluator := cfg.evaluator
	if evaluator == nil {
		cache := cfg.cache
		if cache == nil && cfg.config.CacheSize > 0 {
			lru, err := NewLRUProgramCache(cfg.config.CacheSize)
			if err != nil {
				return nil, err
			}
			cache = lru
		}
		built, err := NewEvaluator(strings.ToLower(cfg.config.Engine), cache, cfg.registry)
		if err != nil {
			return nil, err
		}
		evaluator = built
	}

	sources := DefaultRules()
	for name, expr := range cfg.config.Rules {
		sources[Action(name)] = expr
	}
	for action, expr := range cfg.rules {
		sources[action] = expr
	}

	policy := &Policy{
		engine:  evaluatorEngineName(evaluator),
		rules:   make(map[Action]CompiledRule, len(sources)),
		sources: sources,
		logger:  cfg.logger,
		clock:   cfg.clock,
	}
	for _, action := range sortedActions(sources) {
		if !action.Known() {
			return nil, fmt.Errorf("perfsync: policy: %w %q", ErrUnknownAction, action)
		}
		rule, err := evaluator.Compile(sources[action])
		if err != nil {
			return nil, ruleError(policy.engine, sources[action], action, err)
		}
		policy.rules[action] = rule
	}
	return policy, nil
}

// Engine reports the rule engine in use.
func (p *Policy) Engine() string {
	return p.engine
}

// Rule returns the source of the rule for action.
func (p *Policy) Rule(action Action) (string, bool) {
	expr, ok := p.sources[action]
	return expr, ok
}

// Allowed evaluates the rule of action for actor against subject, which may
// be a Goal, a Rating, a pointer to either, or nil. Actions without a rule
// are allowed.
func (p *Policy) Allowed(ctx context.Context, action Action, actor Identity, subject any) (bool, error) {
	if ctx != nil {
		if err := ctx.Err(); err != nil {
			return false, err
		}
	}
	if !action.Known() {
		return false, fmt.Errorf("perfsync: policy: %w %q", ErrUnknownAction, action)
	}
	rule, ok := p.rules[action]
	if !ok {
		return true, nil
	}

	rc := RuleContext{
		Actor:  identityBinding(actor),
		Now:    p.clock(),
		Action: action,
	}
	switch v := subject.(type) {
	case Goal:
		rc.Goal = goalBinding(v)
	case *Goal:
		if v != nil {
			rc.Goal = goalBinding(*v)
		}
	case Rating:
		rc.Rating = ratingBinding(v)
	case *Rating:
		if v != nil {
			rc.Rating = ratingBinding(*v)
		}
	case nil:
	default:
		return false, fmt.Errorf("perfsync: policy: unsupported subject %T", subject)
	}

	start := time.Now()
	result, err := rule.Evaluate(rc)
	allowed, isBool := result.(bool)
	if err == nil && !isBool {
		err = ruleError(p.engine, p.sources[action], action, fmt.Errorf("rule returned %T, want bool", result))
	}
	p.logger.Log(LogEvent{Kind: LogPolicy, Action: action, Duration: time.Since(start), Err: err})
	if err != nil {
		return false, err
	}
	return allowed, nil
}

// AllowedActions returns, in name order, the actions among candidates that
// actor may attempt on subject. Evaluation errors count as denials.
func (p *Policy) AllowedActions(ctx context.Context, actor Identity, subject any, candidates ...Action) []Action {
	var allowed []Action
	for _, action := range sortedActionList(candidates) {
		if ok, err := p.Allowed(ctx, action, actor, subject); err == nil && ok {
			allowed = append(allowed, action)
		}
	}
	return allowed
}

func identityBinding(id Identity) map[string]any {
	return map[string]any{
		"id":   id.ID,
		"name": id.Name,
		"role": string(id.Role),
	}
}

func goalBinding(goal Goal) map[string]any {
	krs := make([]any, 0, len(goal.KeyResults))
	for _, kr := range goal.KeyResults {
		krs = append(krs, map[string]any{
			"id":            kr.ID,
			"metric":        kr.Metric,
			"target_value":  kr.TargetValue,
			"current_value": kr.CurrentValue,
		})
	}
	return map[string]any{
		"id":          goal.ID,
		"title":       goal.Title,
		"employee_id": goal.EmployeeID,
		"status":      string(goal.Status),
		"cycle_name":  goal.CycleName,
		"editable":    goal.Editable(),
		"key_results": krs,
	}
}

func ratingBinding(rating Rating) map[string]any {
	return map[string]any{
		"id":            rating.ID,
		"employee_id":   rating.EmployeeID,
		"employee_name": rating.EmployeeName,
		"score":         rating.Score,
		"status":        string(rating.Status),
		"cycle_name":    rating.CycleName,
	}
}

func sortedActions(rules map[Action]string) []Action {
	actions := make([]Action, 0, len(rules))
	for action := range rules {
		actions = append(actions, action)
	}
	return sortedActionList(actions)
}

func sortedActionList(actions []Action) []Action {
	out := append([]Action(nil), actions...)
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
