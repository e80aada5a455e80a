package statequeue

import (
	"context"
	"log/slog"
	"time"

	"github.com/goliatone/go-statequeue/pkg/identity"
)

// ResolutionLogEvent describes one resolution pass.
type ResolutionLogEvent struct {
	Queue    identity.ID
	Pass     uint64
	Sources  int
	Applied  int
	Changed  bool
	Duration time.Duration
	Err      error
}

// EvaluatorLogEvent describes an expression evaluation attempt.
type EvaluatorLogEvent struct {
	Engine   string
	Expr     string
	Scope    string
	Duration time.Duration
	Err      error
}

// Logger records resolution passes.
type Logger interface {
	LogResolution(ResolutionLogEvent)
}

// EvaluatorLogger records evaluator events.
type EvaluatorLogger interface {
	LogEvaluation(EvaluatorLogEvent)
}

// LoggerFunc adapts a function to Logger.
type LoggerFunc func(ResolutionLogEvent)

// LogResolution implements Logger.
func (f LoggerFunc) LogResolution(event ResolutionLogEvent) {
	if f != nil {
		f(event)
	}
}

// EvaluatorLoggerFunc adapts a function to EvaluatorLogger.
type EvaluatorLoggerFunc func(EvaluatorLogEvent)

// LogEvaluation implements EvaluatorLogger.
func (f EvaluatorLoggerFunc) LogEvaluation(event EvaluatorLogEvent) {
	if f != nil {
		f(event)
	}
}

type noopLogger struct{}

func (noopLogger) LogResolution(ResolutionLogEvent) {}

func (noopLogger) LogEvaluation(EvaluatorLogEvent) {}

// SlogLogger forwards resolution and evaluation events to a slog.Logger.
// Successful events are logged at debug level, failures at error level.
type SlogLogger struct {
	logger *slog.Logger
}

// NewSlogLogger wraps logger; a nil logger falls back to slog.Default().
func NewSlogLogger(logger *slog.Logger) *SlogLogger {
	if logger == nil {
		logger = slog.Default()
	}
	return &SlogLogger{logger: logger}
}

// LogResolution implements Logger.
func (l *SlogLogger) LogResolution(event ResolutionLogEvent) {
	attrs := []slog.Attr{
		slog.String("queue", event.Queue.String()),
		slog.Uint64("pass", event.Pass),
		slog.Int("sources", event.Sources),
		slog.Int("applied", event.Applied),
		slog.Bool("changed", event.Changed),
		slog.Duration("duration", event.Duration),
	}
	if event.Err != nil {
		attrs = append(attrs, slog.Any("error", event.Err))
		l.logger.LogAttrs(context.Background(), slog.LevelError, "statequeue resolution failed", attrs...)
		return
	}
	l.logger.LogAttrs(context.Background(), slog.LevelDebug, "statequeue resolved", attrs...)
}

// LogEvaluation implements EvaluatorLogger.
func (l *SlogLogger) LogEvaluation(event EvaluatorLogEvent) {
	attrs := []slog.Attr{
		slog.String("engine", event.Engine),
		slog.String("expr", event.Expr),
		slog.String("scope", event.Scope),
		slog.Duration("duration", event.Duration),
	}
	if event.Err != nil {
		attrs = append(attrs, slog.Any("error", event.Err))
		l.logger.LogAttrs(context.Background(), slog.LevelError, "statequeue evaluation failed", attrs...)
		return
	}
	l.logger.LogAttrs(context.Background(), slog.LevelDebug, "statequeue evaluated", attrs...)
}
