package statequeue

// Target is the hook the queue's owner exposes to resolution. Sources receive
// it during Apply and may read ResolutionContext from it; StateQueueChanged is
// called once per pass that changed the current value, before any listener.
//
// A queue holds at most one target. Absence is a nil Target.
type Target[T any] interface {
	ResolutionContext() RuleContext
	StateQueueChanged(args ChangedArgs[T]) error
}

// TargetFunc adapts a change callback into a Target that contributes an empty
// resolution context.
type TargetFunc[T any] func(args ChangedArgs[T]) error

// ResolutionContext implements Target.
func (f TargetFunc[T]) ResolutionContext() RuleContext {
	return RuleContext{}
}

// StateQueueChanged implements Target.
func (f TargetFunc[T]) StateQueueChanged(args ChangedArgs[T]) error {
	if f == nil {
		return nil
	}
	return f(args)
}
