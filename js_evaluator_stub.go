//go:build !js_eval

package perfsync

// NewJSEvaluator returns nil in builds without the js_eval tag; NewEvaluator
// reports ErrNoEvaluator instead.
func NewJSEvaluator(...EvaluatorOption) Evaluator { return nil }

func jsEvaluatorAvailable() bool { return false }
