package statequeue

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrDuplicateSource indicates AddSource received a source that is already
	// registered. Registration never replaces an existing entry.
	ErrDuplicateSource = errors.New("statequeue: source already registered")
	// ErrSourceNotFound indicates RemoveSource received an unknown source.
	ErrSourceNotFound = errors.New("statequeue: source not registered")
	// ErrSourceNotComparable indicates a source whose dynamic type cannot be
	// used as an identity (e.g. a bare func value).
	ErrSourceNotComparable = errors.New("statequeue: source must be comparable")
	// ErrNilSource indicates a nil source was supplied.
	ErrNilSource = errors.New("statequeue: source must not be nil")
	// ErrReentrantUpdate indicates Update (or an operation that implies one) was
	// invoked while a resolution pass was already running.
	ErrReentrantUpdate = errors.New("statequeue: update already in progress")
	// ErrResultType indicates an expression produced a value that cannot be
	// converted to the queue's value type.
	ErrResultType = errors.New("statequeue: expression result type mismatch")
)

// Notification stages reported by NotificationError.
const (
	StageTarget   = "target"
	StageListener = "listener"
	StageActivity = "activity"
)

// NotificationError reports a change callback that failed. The resolution pass
// itself completed: Current already holds the new value when this is returned.
type NotificationError struct {
	Stage        string
	Subscription uint64
	Pass         uint64
	Err          error
}

func (e *NotificationError) Error() string {
	if e == nil {
		return "<nil>"
	}
	if e.Stage == StageListener {
		return fmt.Sprintf("statequeue: pass %d: %s %d: %v", e.Pass, e.Stage, e.Subscription, e.Err)
	}
	return fmt.Sprintf("statequeue: pass %d: %s: %v", e.Pass, e.Stage, e.Err)
}

func (e *NotificationError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// EvaluationError captures evaluator metadata alongside the originating error.
type EvaluationError struct {
	Engine string
	Expr   string
	Scope  string
	Err    error
}

func (e *EvaluationError) Error() string {
	if e == nil {
		return "<nil>"
	}
	return fmt.Sprintf("statequeue: %s evaluator %s scope=%s: %v", e.Engine, describeExpression(e.Expr), e.Scope, e.Err)
}

func (e *EvaluationError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

func describeExpression(expr string) string {
	if expr == "" {
		return "expr=<empty>"
	}
	return fmt.Sprintf("expr=%q", expr)
}

func wrapEvaluatorError(engine string, err error) error {
	if err == nil {
		return nil
	}

	var evalErr *EvaluationError
	if errors.As(err, &evalErr) {
		return err
	}

	if strings.HasPrefix(err.Error(), "statequeue:") {
		return err
	}
	return fmt.Errorf("statequeue: %s evaluator: %w", engine, err)
}

func wrapEvaluationError(engine, expr, scope string, err error) error {
	if err == nil {
		return nil
	}

	var evalErr *EvaluationError
	if errors.As(err, &evalErr) {
		if evalErr.Engine == "" {
			evalErr.Engine = engine
		}
		if evalErr.Expr == "" {
			evalErr.Expr = expr
		}
		if evalErr.Scope == "" {
			evalErr.Scope = scope
		}
		return evalErr
	}

	return &EvaluationError{
		Engine: engine,
		Expr:   expr,
		Scope:  scope,
		Err:    err,
	}
}
