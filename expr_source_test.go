package statequeue

import (
	"errors"
	"strings"
	"testing"
)

type contextTarget struct {
	ctx RuleContext
}

func (t contextTarget) ResolutionContext() RuleContext { return t.ctx }

func (contextTarget) StateQueueChanged(ChangedArgs[int]) error { return nil }

func TestExprSourceFoldsWithQueue(t *testing.T) {
	add, err := NewExprSource[int](0, "value + 5")
	if err != nil {
		t.Fatalf("compile add: %v", err)
	}
	mul, err := NewExprSource[int](1, "value * 2")
	if err != nil {
		t.Fatalf("compile mul: %v", err)
	}
	q := New(10)
	if err := q.AddSources(mul, add); err != nil {
		t.Fatalf("add: %v", err)
	}
	if err := q.Update(); err != nil {
		t.Fatalf("update: %v", err)
	}
	if q.Current() != 30 {
		t.Fatalf("expected 30, got %d", q.Current())
	}
}

func TestExprSourceReadsTargetContext(t *testing.T) {
	src, err := NewExprSource[int](0, "value + args.bonus + limit")
	if err != nil {
		t.Fatalf("compile: %v", err)
	}
	target := contextTarget{ctx: RuleContext{
		Snapshot: map[string]any{"limit": 3, "value": 1000},
		Args:     map[string]any{"bonus": 2},
	}}
	got, err := src.Apply(1, target)
	if err != nil {
		t.Fatalf("apply: %v", err)
	}
	if got != 6 {
		t.Fatalf("expected accumulator to shadow snapshot value, got %d", got)
	}
}

func TestExprSourceScopeBinding(t *testing.T) {
	src, err := NewExprSource[string](0, `value + ":" + scope.name`,
		WithSourceScope(NewScope("tenant", ScopePriorityTenant)))
	if err != nil {
		t.Fatalf("compile: %v", err)
	}
	if src.Label() != "tenant" {
		t.Fatalf("expected label to default to scope name, got %q", src.Label())
	}
	got, err := src.Apply("acme", nil)
	if err != nil {
		t.Fatalf("apply: %v", err)
	}
	if got != "acme:tenant" {
		t.Fatalf("unexpected result %q", got)
	}
}

func TestExprSourceCompileErrorSurfacesAtConstruction(t *testing.T) {
	_, err := NewExprSource[int](0, "value +")
	var evalErr *EvaluationError
	if !errors.As(err, &evalErr) {
		t.Fatalf("expected EvaluationError, got %v", err)
	}
	if evalErr.Engine != "expr" {
		t.Fatalf("expected expr engine, got %q", evalErr.Engine)
	}
}

func TestExprSourceResultTypeMismatch(t *testing.T) {
	src, err := NewExprSource[int](0, `"not a number"`)
	if err != nil {
		t.Fatalf("compile: %v", err)
	}
	q := New(7)
	if err := q.AddSource(src); err != nil {
		t.Fatalf("add: %v", err)
	}
	err = q.Update()
	if !errors.Is(err, ErrResultType) {
		t.Fatalf("expected ErrResultType, got %v", err)
	}
	if q.Current() != 7 {
		t.Fatalf("expected current untouched, got %d", q.Current())
	}
}

func TestExprSourceLogsEvaluations(t *testing.T) {
	var events []EvaluatorLogEvent
	src, err := NewExprSource[int](0, "value - 1",
		WithSourceLabel("decrement"),
		WithSourceLogger(EvaluatorLoggerFunc(func(event EvaluatorLogEvent) {
			events = append(events, event)
		})))
	if err != nil {
		t.Fatalf("compile: %v", err)
	}
	if _, err := src.Apply(3, nil); err != nil {
		t.Fatalf("apply: %v", err)
	}
	if len(events) != 1 || events[0].Engine != "expr" || events[0].Expr != "value - 1" || events[0].Err != nil {
		t.Fatalf("unexpected log events %+v", events)
	}
	if src.Label() != "decrement" || src.Expression() != "value - 1" {
		t.Fatalf("unexpected accessors %q %q", src.Label(), src.Expression())
	}
}

func TestExprSourceWithFunctionRegistry(t *testing.T) {
	registry, err := NewFunctionRegistryFrom(map[string]Function{
		"clamp": func(args ...any) (any, error) {
			v := args[0].(int)
			hi := args[1].(int)
			if v > hi {
				return hi, nil
			}
			return v, nil
		},
	})
	if err != nil {
		t.Fatalf("registry: %v", err)
	}
	evaluator := NewExprEvaluator(ExprWithFunctionRegistry(registry))
	direct, err := NewExprSource[int](0, "clamp(value, 10)", WithSourceEvaluator(evaluator))
	if err != nil {
		t.Fatalf("compile: %v", err)
	}
	viaCall, err := NewExprSource[int](1, `call("clamp", value * 3, 12)`, WithSourceEvaluator(evaluator))
	if err != nil {
		t.Fatalf("compile: %v", err)
	}
	q := New(40)
	if err := q.AddSources(direct, viaCall); err != nil {
		t.Fatalf("add: %v", err)
	}
	if err := q.Update(); err != nil {
		t.Fatalf("update: %v", err)
	}
	if q.Current() != 12 {
		t.Fatalf("expected clamp(clamp(40,10)*3, 12) = 12, got %d", q.Current())
	}
}

func TestExprEvaluatorProgramCache(t *testing.T) {
	cache := NewMemoryProgramCache()
	evaluator := NewExprEvaluator(ExprWithProgramCache(cache))
	for i := 0; i < 3; i++ {
		if _, err := NewExprSource[int](0, "value + 1", WithSourceEvaluator(evaluator)); err != nil {
			t.Fatalf("compile: %v", err)
		}
	}
	if cache.Len() != 1 {
		t.Fatalf("expected one cached program, got %d", cache.Len())
	}
}

func TestCELSourceFoldsWithQueue(t *testing.T) {
	evaluator := NewCELEvaluator()
	add, err := NewExprSource[int](0, "value + args.bonus", WithSourceEvaluator(evaluator))
	if err != nil {
		t.Fatalf("compile add: %v", err)
	}
	mul, err := NewExprSource[int](1, "value * 2", WithSourceEvaluator(evaluator))
	if err != nil {
		t.Fatalf("compile mul: %v", err)
	}
	q := New(10, WithTarget[int](contextTarget{ctx: RuleContext{Args: map[string]any{"bonus": 5}}}))
	if err := q.AddSources(add, mul); err != nil {
		t.Fatalf("add: %v", err)
	}
	if err := q.Update(); err != nil {
		t.Fatalf("update: %v", err)
	}
	if q.Current() != 30 {
		t.Fatalf("expected 30, got %d", q.Current())
	}
}

func TestCELSourceCallFunction(t *testing.T) {
	registry := NewFunctionRegistry()
	if err := registry.Register("shout", func(args ...any) (any, error) {
		return strings.ToUpper(args[0].(string)), nil
	}); err != nil {
		t.Fatalf("register: %v", err)
	}
	src, err := NewExprSource[string](0, `call("shout", [value])`,
		WithSourceEvaluator(NewCELEvaluator(CELWithFunctionRegistry(registry))))
	if err != nil {
		t.Fatalf("compile: %v", err)
	}
	got, err := src.Apply("quiet", nil)
	if err != nil {
		t.Fatalf("apply: %v", err)
	}
	if got != "QUIET" {
		t.Fatalf("expected QUIET, got %q", got)
	}
}

func TestCELSourceEvaluationError(t *testing.T) {
	src, err := NewExprSource[int](0, "value +", WithSourceEvaluator(NewCELEvaluator()))
	if err != nil {
		t.Fatalf("cel compiles lazily, got %v", err)
	}
	_, err = src.Apply(1, nil)
	var evalErr *EvaluationError
	if !errors.As(err, &evalErr) || evalErr.Engine != "cel" {
		t.Fatalf("expected cel EvaluationError, got %v", err)
	}
}

func TestConvertResult(t *testing.T) {
	if got, err := convertResult[int](int64(4)); err != nil || got != 4 {
		t.Fatalf("int64 -> int: %v %v", got, err)
	}
	if got, err := convertResult[int](float64(15)); err != nil || got != 15 {
		t.Fatalf("integral float -> int: %v %v", got, err)
	}
	if _, err := convertResult[int](1.5); !errors.Is(err, ErrResultType) {
		t.Fatalf("expected fractional float rejected, got %v", err)
	}
	if _, err := convertResult[uint8](int64(-1)); !errors.Is(err, ErrResultType) {
		t.Fatalf("expected negative to unsigned rejected, got %v", err)
	}
	if _, err := convertResult[int8](int64(300)); !errors.Is(err, ErrResultType) {
		t.Fatalf("expected overflow rejected, got %v", err)
	}
	if got, err := convertResult[float32](0.1); err != nil || got != float32(0.1) {
		t.Fatalf("float64 -> float32: %v %v", got, err)
	}
	if got, err := convertResult[[]string](nil); err != nil || got != nil {
		t.Fatalf("nil -> slice: %v %v", got, err)
	}
	if _, err := convertResult[string](nil); !errors.Is(err, ErrResultType) {
		t.Fatalf("expected nil string rejected, got %v", err)
	}
	type label string
	if got, err := convertResult[label]("x"); err != nil || got != "x" {
		t.Fatalf("string -> named string: %v %v", got, err)
	}
	if _, err := convertResult[string](7); !errors.Is(err, ErrResultType) {
		t.Fatalf("expected int -> string rejected, got %v", err)
	}
}

type rateLimit struct {
	Limit int
	Burst int
}

func TestExprSourceDecodesMapIntoStruct(t *testing.T) {
	src, err := NewExprSource[rateLimit](0, `{"Limit": value.Limit * 2, "Burst": 5}`)
	if err != nil {
		t.Fatalf("compile: %v", err)
	}
	got, err := src.Apply(rateLimit{Limit: 4}, nil)
	if err != nil {
		t.Fatalf("apply: %v", err)
	}
	if got != (rateLimit{Limit: 8, Burst: 5}) {
		t.Fatalf("unexpected result %+v", got)
	}

	strict, err := NewExprSource[rateLimit](0, `{"Limit": 1, "Window": 60}`, WithStrictDecoding())
	if err != nil {
		t.Fatalf("compile: %v", err)
	}
	if _, err := strict.Apply(rateLimit{}, nil); err == nil {
		t.Fatalf("expected strict decoding to reject unknown key")
	}
}
