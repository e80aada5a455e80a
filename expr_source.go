package statequeue

import (
	"fmt"
	"math"
	"reflect"
	"time"

	"github.com/goliatone/go-statequeue/internal/hydrate"
)

// ValueBinding is the name the accumulator is bound to inside expressions.
const ValueBinding = "value"

// ExprSourceOption configures an ExprSource.
type ExprSourceOption func(*exprSourceConfig)

type exprSourceConfig struct {
	evaluator Evaluator
	scope     Scope
	label     string
	logger    EvaluatorLogger
	strict    bool
}

// WithSourceEvaluator selects the evaluator; nil keeps the expr default.
func WithSourceEvaluator(evaluator Evaluator) ExprSourceOption {
	return func(cfg *exprSourceConfig) {
		cfg.evaluator = evaluator
	}
}

// WithSourceScope attaches scope metadata, exposed to expressions as "scope".
func WithSourceScope(scope Scope) ExprSourceOption {
	return func(cfg *exprSourceConfig) {
		cfg.scope = scope.clone()
	}
}

// WithSourceLabel names the source in logs.
func WithSourceLabel(label string) ExprSourceOption {
	return func(cfg *exprSourceConfig) {
		cfg.label = label
	}
}

// WithSourceLogger records every evaluation the source performs.
func WithSourceLogger(logger EvaluatorLogger) ExprSourceOption {
	return func(cfg *exprSourceConfig) {
		cfg.logger = logger
	}
}

// WithStrictDecoding rejects map results carrying keys that match no field of
// a struct-valued T.
func WithStrictDecoding() ExprSourceOption {
	return func(cfg *exprSourceConfig) {
		cfg.strict = true
	}
}

// ExprSource is a Source whose transformation is an expression. The
// accumulator is bound as "value"; when the target's resolution context holds
// a map snapshot its keys are bound too ("value" always wins). Args and
// Metadata of that context are exposed as "args" and "metadata".
type ExprSource[T any] struct {
	priority   int
	expression string
	engine     string
	rule       CompiledRule
	scope      Scope
	label      string
	logger     EvaluatorLogger
	decoder    *hydrate.Decoder[T]
}

// NewExprSource compiles expression up front so syntax errors surface here
// rather than during Update.
func NewExprSource[T any](priority int, expression string, opts ...ExprSourceOption) (*ExprSource[T], error) {
	cfg := exprSourceConfig{}
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}
	if cfg.evaluator == nil {
		cfg.evaluator = NewExprEvaluator()
	}
	if cfg.logger == nil {
		cfg.logger = noopLogger{}
	}
	engine := evaluatorEngineName(cfg.evaluator)
	rule, err := cfg.evaluator.Compile(expression)
	if err != nil {
		return nil, wrapEvaluationError(engine, expression, cfg.scope.Name, err)
	}
	label := cfg.label
	if label == "" {
		label = cfg.scope.Name
	}
	var decoder *hydrate.Decoder[T]
	if hydrate.Decodable[T]() {
		var decoderOpts []hydrate.DecoderOption[T]
		if cfg.strict {
			decoderOpts = append(decoderOpts, hydrate.WithDisallowUnknownFields[T]())
		}
		decoder = hydrate.NewDecoder(decoderOpts...)
	}
	return &ExprSource[T]{
		priority:   priority,
		expression: expression,
		engine:     engine,
		rule:       rule,
		scope:      cfg.scope,
		label:      label,
		logger:     cfg.logger,
		decoder:    decoder,
	}, nil
}

// Priority implements Source.
func (s *ExprSource[T]) Priority() int {
	return s.priority
}

// Label implements Labeler.
func (s *ExprSource[T]) Label() string {
	return s.label
}

// Expression returns the source expression.
func (s *ExprSource[T]) Expression() string {
	return s.expression
}

// Apply implements Source.
func (s *ExprSource[T]) Apply(value T, target Target[T]) (T, error) {
	ctx := RuleContext{}
	if target != nil {
		ctx = target.ResolutionContext()
	}
	ctx = ctx.withDefaults().withDefaultScope(s.scope)
	ctx.Snapshot = bindValue(ctx.Snapshot, value)

	start := time.Now()
	result, err := s.rule.Evaluate(ctx)
	if err == nil {
		var out T
		if out, err = s.convert(ctx, result); err == nil {
			s.log(ctx, time.Since(start), nil)
			return out, nil
		}
	}
	err = wrapEvaluationError(s.engine, s.expression, ctx.scopeLabel(), err)
	s.log(ctx, time.Since(start), err)
	return value, err
}

func (s *ExprSource[T]) convert(ctx RuleContext, result any) (T, error) {
	if payload, ok := result.(map[string]any); ok && s.decoder != nil {
		return s.decoder.Decode(hydrate.Context{Source: s.label, Scope: ctx.scopeLabel()}, payload)
	}
	return convertResult[T](result)
}

func (s *ExprSource[T]) log(ctx RuleContext, duration time.Duration, err error) {
	s.logger.LogEvaluation(EvaluatorLogEvent{
		Engine:   s.engine,
		Expr:     s.expression,
		Scope:    ctx.scopeLabel(),
		Duration: duration,
		Err:      err,
	})
}

func bindValue(snapshot any, value any) map[string]any {
	base, _ := snapshot.(map[string]any)
	out := make(map[string]any, len(base)+1)
	for key, v := range base {
		out[key] = v
	}
	out[ValueBinding] = value
	return out
}

// convertResult maps an evaluator result onto T. Numeric kinds convert into
// each other as long as no information is lost; anything else must be
// assignable or reflect-convertible within the same kind family.
func convertResult[T any](result any) (T, error) {
	var zero T
	if out, ok := result.(T); ok {
		return out, nil
	}
	target := reflect.TypeOf((*T)(nil)).Elem()
	if result == nil {
		switch target.Kind() {
		case reflect.Pointer, reflect.Map, reflect.Slice, reflect.Interface:
			return zero, nil
		}
		return zero, fmt.Errorf("%w: got nil, want %s", ErrResultType, target)
	}

	rv := reflect.ValueOf(result)
	switch {
	case isNumeric(rv.Kind()) && isNumeric(target.Kind()):
		if !fitsNumeric(rv, target) {
			return zero, fmt.Errorf("%w: %v does not fit %s", ErrResultType, result, target)
		}
		return rv.Convert(target).Interface().(T), nil
	case rv.Kind() == target.Kind() && rv.Type().ConvertibleTo(target):
		return rv.Convert(target).Interface().(T), nil
	default:
		return zero, fmt.Errorf("%w: got %T, want %s", ErrResultType, result, target)
	}
}

func isNumeric(kind reflect.Kind) bool {
	switch kind {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		return true
	}
	return false
}

func fitsNumeric(rv reflect.Value, target reflect.Type) bool {
	if isFloat(target.Kind()) {
		return true
	}
	if isFloat(rv.Kind()) {
		f := rv.Float()
		if math.IsNaN(f) || math.IsInf(f, 0) || f != math.Trunc(f) {
			return false
		}
	}
	if isUnsigned(target.Kind()) && isNegative(rv) {
		return false
	}
	converted := rv.Convert(target)
	if isUnsigned(rv.Kind()) && !isUnsigned(target.Kind()) && converted.Int() < 0 {
		return false
	}
	return converted.Convert(rv.Type()).Equal(rv)
}

func isFloat(kind reflect.Kind) bool {
	return kind == reflect.Float32 || kind == reflect.Float64
}

func isUnsigned(kind reflect.Kind) bool {
	switch kind {
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return true
	}
	return false
}

func isNegative(rv reflect.Value) bool {
	switch {
	case isFloat(rv.Kind()):
		return rv.Float() < 0
	case isUnsigned(rv.Kind()):
		return false
	default:
		return rv.Int() < 0
	}
}
