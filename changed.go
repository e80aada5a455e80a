package statequeue

import "github.com/goliatone/go-statequeue/pkg/identity"

// ChangedArgs describes a change of a queue's current value. Every callback
// notified for one pass receives the same value.
type ChangedArgs[T any] struct {
	Queue    identity.ID
	Previous T
	Current  T
	Pass     uint64
}

// Listener observes value changes. Returning an error stops delivery to the
// remaining listeners of that pass.
type Listener[T any] func(args ChangedArgs[T]) error

// Subscription is the handle returned by Subscribe.
type Subscription struct {
	id     uint64
	owner  any
	cancel func() bool
}

// ID returns the subscription identifier; zero for an empty subscription.
func (s Subscription) ID() uint64 {
	return s.id
}

// Unsubscribe detaches the listener. Calling it more than once is a no-op.
func (s Subscription) Unsubscribe() {
	if s.cancel != nil {
		s.cancel()
	}
}

type listenerEntry[T any] struct {
	id     uint64
	fn     Listener[T]
	active bool
}

type listenerSet[T any] struct {
	entries []*listenerEntry[T]
	nextID  uint64
}

func (s *listenerSet[T]) add(fn Listener[T]) uint64 {
	s.nextID++
	s.entries = append(s.entries, &listenerEntry[T]{id: s.nextID, fn: fn, active: true})
	return s.nextID
}

func (s *listenerSet[T]) remove(id uint64) bool {
	for i, entry := range s.entries {
		if entry.id != id {
			continue
		}
		entry.active = false
		s.entries = append(s.entries[:i:i], s.entries[i+1:]...)
		return true
	}
	return false
}

func (s *listenerSet[T]) len() int {
	return len(s.entries)
}

// snapshot returns the current entries; entries removed mid-dispatch are
// flagged inactive so they are skipped.
func (s *listenerSet[T]) snapshot() []*listenerEntry[T] {
	if len(s.entries) == 0 {
		return nil
	}
	out := make([]*listenerEntry[T], len(s.entries))
	copy(out, s.entries)
	return out
}
