package statequeue

import (
	"context"
	"time"

	"github.com/goliatone/go-statequeue/pkg/activity"
	"github.com/goliatone/go-statequeue/pkg/identity"
)

// Queue resolves a single value of type T from a default and any number of
// prioritized sources. Resolution only happens when the owner calls Update (or
// an operation documented to imply one); listeners hear about it only when the
// resolved value actually changed.
//
// A Queue is driven by a single owner and is not safe for concurrent use.
type Queue[T any] struct {
	id           identity.ID
	defaultValue T
	current      T
	registry     *Registry[T]
	target       Target[T]
	listeners    listenerSet[T]
	equal        func(a, b T) bool
	logger       Logger
	emitter      *activity.Emitter
	pass         uint64
	updating     bool
	resolving    bool
}

// New constructs a queue whose current value starts at defaultValue. No
// notification fires for the initial value.
func New[T any](defaultValue T, opts ...Option[T]) *Queue[T] {
	cfg := applyOptions(opts)
	activityCfg := activity.Config{Enabled: true, Channel: activity.ChannelStateQueue}
	if cfg.activityConfig != nil {
		activityCfg = *cfg.activityConfig
	}
	return &Queue[T]{
		id:           cfg.id,
		defaultValue: defaultValue,
		current:      defaultValue,
		registry:     NewRegistry[T](),
		target:       cfg.target,
		equal:        cfg.equal,
		logger:       cfg.logger,
		emitter:      activity.NewEmitter(cfg.activityHooks, activityCfg),
	}
}

// ID returns the queue identity.
func (q *Queue[T]) ID() identity.ID {
	return q.id
}

// Default returns the seed value used by every pass.
func (q *Queue[T]) Default() T {
	return q.defaultValue
}

// Current returns the value produced by the last completed pass.
func (q *Queue[T]) Current() T {
	return q.current
}

// Count returns the number of registered sources.
func (q *Queue[T]) Count() int {
	return q.registry.Len()
}

// Pass returns the number of resolution passes started so far.
func (q *Queue[T]) Pass() uint64 {
	return q.pass
}

// Target returns the bound target, or nil.
func (q *Queue[T]) Target() Target[T] {
	return q.target
}

// SetTarget binds target (nil unbinds). It does not trigger a pass; call
// Update if sources read from the target.
func (q *Queue[T]) SetTarget(target Target[T]) {
	q.target = target
}

// Sources returns the registered sources in application order.
func (q *Queue[T]) Sources() []Source[T] {
	return q.registry.Sources()
}

// AddSource registers source. The new source takes effect on the next Update.
// Sources cannot be added while sources are being applied.
func (q *Queue[T]) AddSource(source Source[T]) error {
	if q.resolving {
		return ErrReentrantUpdate
	}
	return q.registry.Add(source)
}

// AddSources registers sources in order, stopping at the first failure.
func (q *Queue[T]) AddSources(sources ...Source[T]) error {
	for _, source := range sources {
		if err := q.AddSource(source); err != nil {
			return err
		}
	}
	return nil
}

// RemoveSource unregisters source, returning ErrSourceNotFound when it was not
// registered. The removal takes effect on the next Update.
func (q *Queue[T]) RemoveSource(source Source[T]) error {
	if q.resolving {
		return ErrReentrantUpdate
	}
	return q.registry.Remove(source)
}

// HasSource reports whether source is registered.
func (q *Queue[T]) HasSource(source Source[T]) bool {
	return q.registry.Contains(source)
}

// Subscribe registers listener for value changes. Listeners run in
// subscription order after the target. A nil listener yields an empty
// subscription.
func (q *Queue[T]) Subscribe(listener Listener[T]) Subscription {
	if listener == nil {
		return Subscription{}
	}
	id := q.listeners.add(listener)
	return Subscription{
		id:     id,
		owner:  q,
		cancel: func() bool { return q.listeners.remove(id) },
	}
}

// Unsubscribe detaches sub, reporting whether it was still attached.
// Subscriptions handed out by another queue are ignored.
func (q *Queue[T]) Unsubscribe(sub Subscription) bool {
	if sub.id == 0 || sub.owner != any(q) {
		return false
	}
	return q.listeners.remove(sub.id)
}

// Listeners returns the number of attached listeners.
func (q *Queue[T]) Listeners() int {
	return q.listeners.len()
}

// Update runs one resolution pass. See UpdateContext.
func (q *Queue[T]) Update() error {
	return q.UpdateContext(context.Background())
}

// UpdateContext runs one resolution pass: the default is folded through every
// source in application order and the result becomes the current value. When
// it differs from the previous value the target, then every listener, then the
// activity hooks are notified before UpdateContext returns. ctx is only
// forwarded to activity hooks.
//
// A source error aborts the pass and is returned unchanged; the current value
// is left as it was and nobody is notified. A callback error stops delivery
// and is returned as a *NotificationError; the current value has already been
// replaced at that point.
func (q *Queue[T]) UpdateContext(ctx context.Context) error {
	if q.updating {
		return ErrReentrantUpdate
	}
	q.updating = true
	defer func() { q.updating = false }()

	q.pass++
	start := time.Now()
	next, applied, err := q.resolve()
	event := ResolutionLogEvent{
		Queue:   q.id,
		Pass:    q.pass,
		Sources: q.registry.Len(),
		Applied: applied,
	}
	if err != nil {
		event.Duration = time.Since(start)
		event.Err = err
		q.logger.LogResolution(event)
		return err
	}

	previous := q.current
	q.current = next
	event.Changed = !q.equal(previous, next)
	event.Duration = time.Since(start)
	q.logger.LogResolution(event)
	if !event.Changed {
		return nil
	}
	return q.notify(ctx, ChangedArgs[T]{
		Queue:    q.id,
		Previous: previous,
		Current:  next,
		Pass:     q.pass,
	})
}

// ClearSources removes every source and runs one pass, which brings the
// current value back to the default and notifies if that is a change.
func (q *Queue[T]) ClearSources() error {
	return q.ClearSourcesContext(context.Background())
}

// ClearSourcesContext is ClearSources with a context for activity hooks.
func (q *Queue[T]) ClearSourcesContext(ctx context.Context) error {
	if q.updating {
		return ErrReentrantUpdate
	}
	removed := q.registry.Len()
	q.registry.Clear()
	if err := q.UpdateContext(ctx); err != nil {
		return err
	}
	if removed == 0 || !q.emitter.Enabled() {
		return nil
	}
	event := activity.BuildQueueClearedEvent(activity.QueueEventInput{
		QueueID: q.id.String(),
		Pass:    q.pass,
		Sources: removed,
	})
	if err := q.emitter.Emit(ctx, event); err != nil {
		return &NotificationError{Stage: StageActivity, Pass: q.pass, Err: err}
	}
	return nil
}

// SetDefault replaces the default and runs one pass so the current value
// reflects it.
func (q *Queue[T]) SetDefault(value T) error {
	return q.SetDefaultContext(context.Background(), value)
}

// SetDefaultContext is SetDefault with a context for activity hooks.
func (q *Queue[T]) SetDefaultContext(ctx context.Context, value T) error {
	if q.updating {
		return ErrReentrantUpdate
	}
	q.defaultValue = value
	return q.UpdateContext(ctx)
}

func (q *Queue[T]) resolve() (T, int, error) {
	q.resolving = true
	defer func() { q.resolving = false }()

	value := q.defaultValue
	applied := 0
	for source := range q.registry.Ordered() {
		next, err := source.Apply(value, q.target)
		if err != nil {
			return value, applied, err
		}
		value = next
		applied++
	}
	return value, applied, nil
}

func (q *Queue[T]) notify(ctx context.Context, args ChangedArgs[T]) error {
	if q.target != nil {
		if err := q.target.StateQueueChanged(args); err != nil {
			return &NotificationError{Stage: StageTarget, Pass: args.Pass, Err: err}
		}
	}
	for _, entry := range q.listeners.snapshot() {
		if !entry.active {
			continue
		}
		if err := entry.fn(args); err != nil {
			return &NotificationError{Stage: StageListener, Subscription: entry.id, Pass: args.Pass, Err: err}
		}
	}
	if !q.emitter.Enabled() {
		return nil
	}
	event := activity.BuildQueueChangedEvent(activity.QueueEventInput{
		QueueID:  q.id.String(),
		Pass:     args.Pass,
		Sources:  q.registry.Len(),
		OldValue: args.Previous,
		NewValue: args.Current,
	})
	if err := q.emitter.Emit(ctx, event); err != nil {
		return &NotificationError{Stage: StageActivity, Pass: args.Pass, Err: err}
	}
	return nil
}
