package statequeue

import (
	"reflect"

	"github.com/goliatone/go-statequeue/pkg/activity"
	"github.com/goliatone/go-statequeue/pkg/identity"
)

// Option configures a Queue at construction.
type Option[T any] func(*queueConfig[T])

type queueConfig[T any] struct {
	id             identity.ID
	target         Target[T]
	equal          func(a, b T) bool
	logger         Logger
	activityHooks  activity.Hooks
	activityConfig *activity.Config
}

func applyOptions[T any](opts []Option[T]) queueConfig[T] {
	cfg := queueConfig[T]{}
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}
	if cfg.id.IsZero() {
		cfg.id.Generate(false)
	}
	if cfg.equal == nil {
		cfg.equal = defaultEqual[T]
	}
	if cfg.logger == nil {
		cfg.logger = noopLogger{}
	}
	return cfg
}

// WithID assigns a stable identity to the queue instead of a generated one.
func WithID[T any](id identity.ID) Option[T] {
	return func(cfg *queueConfig[T]) {
		cfg.id = id
	}
}

// WithTarget binds target at construction.
func WithTarget[T any](target Target[T]) Option[T] {
	return func(cfg *queueConfig[T]) {
		cfg.target = target
	}
}

// WithEqual overrides the equality contract used for change detection.
func WithEqual[T any](equal func(a, b T) bool) Option[T] {
	return func(cfg *queueConfig[T]) {
		cfg.equal = equal
	}
}

// WithLogger attaches a resolution logger. A nil logger disables logging.
func WithLogger[T any](logger Logger) Option[T] {
	return func(cfg *queueConfig[T]) {
		if logger == nil {
			cfg.logger = noopLogger{}
			return
		}
		cfg.logger = logger
	}
}

// WithActivityHooks attaches activity hooks notified after listeners on every
// change. Hooks are cloned and nil entries dropped. They run in order and the
// first hook error stops delivery, as it does for listeners.
func WithActivityHooks[T any](hooks activity.Hooks) Option[T] {
	normalized := cloneActivityHooks(hooks)
	return func(cfg *queueConfig[T]) {
		cfg.activityHooks = normalized
	}
}

// WithActivityConfig overrides the emitter configuration. Without it, hooks
// are enabled on the default channel.
func WithActivityConfig[T any](config activity.Config) Option[T] {
	return func(cfg *queueConfig[T]) {
		cfg.activityConfig = &config
	}
}

// Equal reports whether a and b are equal using the default contract: values
// implementing Equal(T) bool decide for themselves, anything else is compared
// with reflect.DeepEqual.
func Equal[T any](a, b T) bool {
	return defaultEqual(a, b)
}

func defaultEqual[T any](a, b T) bool {
	if eq, ok := any(a).(interface{ Equal(T) bool }); ok {
		return eq.Equal(b)
	}
	return reflect.DeepEqual(a, b)
}

func cloneActivityHooks(hooks activity.Hooks) activity.Hooks {
	if len(hooks) == 0 {
		return nil
	}
	normalized := make([]activity.ActivityHook, 0, len(hooks))
	for _, hook := range hooks {
		if hook == nil {
			continue
		}
		normalized = append(normalized, hook)
	}
	if len(normalized) == 0 {
		return nil
	}
	return activity.Hooks(normalized)
}
