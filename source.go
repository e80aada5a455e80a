package statequeue

// Source is one party influencing a queue's value. Apply receives the value
// accumulated so far and returns the next one. Sources with a lower priority
// are applied first, so higher priorities override lower ones.
//
// Apply may read from target (which may be nil) but must not mutate it, and
// must return the same result for the same input within a single pass.
type Source[T any] interface {
	Priority() int
	Apply(value T, target Target[T]) (T, error)
}

// Labeler is implemented by sources that want a readable name in logs and
// activity events.
type Labeler interface {
	Label() string
}

// ApplyFunc is the transformation carried by a FuncSource.
type ApplyFunc[T any] func(value T, target Target[T]) (T, error)

// FuncSource adapts a plain function into a Source.
type FuncSource[T any] struct {
	priority int
	label    string
	apply    ApplyFunc[T]
}

// NewSource builds a Source from fn. The returned pointer is the source's
// identity: registering the same pointer twice is rejected.
func NewSource[T any](priority int, fn ApplyFunc[T]) *FuncSource[T] {
	return &FuncSource[T]{priority: priority, apply: fn}
}

// NewMapSource builds a Source from a pure value mapping that never fails and
// ignores the target.
func NewMapSource[T any](priority int, fn func(T) T) *FuncSource[T] {
	return NewSource(priority, func(value T, _ Target[T]) (T, error) {
		if fn == nil {
			return value, nil
		}
		return fn(value), nil
	})
}

// WithLabel sets the label reported in logs and returns s for chaining.
func (s *FuncSource[T]) WithLabel(label string) *FuncSource[T] {
	s.label = label
	return s
}

// Priority implements Source.
func (s *FuncSource[T]) Priority() int {
	return s.priority
}

// Apply implements Source.
func (s *FuncSource[T]) Apply(value T, target Target[T]) (T, error) {
	if s.apply == nil {
		return value, nil
	}
	return s.apply(value, target)
}

// Label implements Labeler.
func (s *FuncSource[T]) Label() string {
	return s.label
}

func sourceLabel[T any](source Source[T]) string {
	if labeler, ok := source.(Labeler); ok {
		return labeler.Label()
	}
	return ""
}
