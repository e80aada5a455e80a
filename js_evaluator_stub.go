//go:build !js_eval

package statequeue

// NewJSEvaluator returns an evaluator that rejects every expression with
// ErrJSUnavailable, so a JS source fails at construction instead of silently
// running on another engine.
func NewJSEvaluator(opts ...JSEvaluatorOption) Evaluator {
	_ = applyJSEvaluatorOptions(opts)
	return unavailableJSEvaluator{}
}

type unavailableJSEvaluator struct{}

func (unavailableJSEvaluator) Engine() string {
	return "js"
}

func (unavailableJSEvaluator) Evaluate(RuleContext, string) (any, error) {
	return nil, ErrJSUnavailable
}

func (unavailableJSEvaluator) Compile(string, ...CompileOption) (CompiledRule, error) {
	return nil, ErrJSUnavailable
}

func jsEvaluatorAvailable() bool {
	return false
}
