package statequeue

import (
	"fmt"
	"iter"
	"reflect"

	"github.com/google/btree"
)

const registryDegree = 8

type registryEntry[T any] struct {
	priority int
	seq      uint64
	source   Source[T]
}

func lessEntry[T any](a, b registryEntry[T]) bool {
	if a.priority != b.priority {
		return a.priority < b.priority
	}
	return a.seq < b.seq
}

// Registry holds the active sources of a queue and yields them in application
// order: priority ascending, then registration order for equal priorities.
//
// A source's priority is read once, when it is added. To move a source to a
// different priority remove it and add it again; it then also sorts after
// peers registered in the meantime.
type Registry[T any] struct {
	index   *btree.BTreeG[registryEntry[T]]
	entries map[Source[T]]registryEntry[T]
	seq     uint64
}

// NewRegistry constructs an empty registry.
func NewRegistry[T any]() *Registry[T] {
	return &Registry[T]{
		index:   btree.NewG(registryDegree, lessEntry[T]),
		entries: make(map[Source[T]]registryEntry[T]),
	}
}

// Add registers source. Adding a source that is already present fails with
// ErrDuplicateSource and leaves the registry untouched.
func (r *Registry[T]) Add(source Source[T]) error {
	if err := checkSource(source); err != nil {
		return err
	}
	if _, exists := r.entries[source]; exists {
		return fmt.Errorf("%w: %s", ErrDuplicateSource, describeSource(source))
	}
	r.seq++
	entry := registryEntry[T]{
		priority: source.Priority(),
		seq:      r.seq,
		source:   source,
	}
	r.entries[source] = entry
	r.index.ReplaceOrInsert(entry)
	return nil
}

// Remove unregisters source, failing with ErrSourceNotFound when absent.
func (r *Registry[T]) Remove(source Source[T]) error {
	if err := checkSource(source); err != nil {
		return err
	}
	entry, ok := r.entries[source]
	if !ok {
		return fmt.Errorf("%w: %s", ErrSourceNotFound, describeSource(source))
	}
	delete(r.entries, source)
	r.index.Delete(entry)
	return nil
}

// Contains reports whether source is registered.
func (r *Registry[T]) Contains(source Source[T]) bool {
	if checkSource(source) != nil {
		return false
	}
	_, ok := r.entries[source]
	return ok
}

// Clear removes every source.
func (r *Registry[T]) Clear() {
	r.index.Clear(false)
	clear(r.entries)
}

// Len returns the number of registered sources.
func (r *Registry[T]) Len() int {
	return r.index.Len()
}

// Ordered returns a lazy sequence over the registered sources in application
// order. The sequence can be ranged over any number of times; the registry
// must not be modified while a range is in progress.
func (r *Registry[T]) Ordered() iter.Seq[Source[T]] {
	return func(yield func(Source[T]) bool) {
		r.index.Ascend(func(entry registryEntry[T]) bool {
			return yield(entry.source)
		})
	}
}

// Sources returns the registered sources in application order.
func (r *Registry[T]) Sources() []Source[T] {
	out := make([]Source[T], 0, r.Len())
	for source := range r.Ordered() {
		out = append(out, source)
	}
	return out
}

func checkSource[T any](source Source[T]) error {
	if source == nil {
		return ErrNilSource
	}
	if !reflect.TypeOf(source).Comparable() {
		return fmt.Errorf("%w: %T", ErrSourceNotComparable, source)
	}
	return nil
}

func describeSource[T any](source Source[T]) string {
	if label := sourceLabel(source); label != "" {
		return fmt.Sprintf("%q (priority %d)", label, source.Priority())
	}
	return fmt.Sprintf("%T (priority %d)", source, source.Priority())
}
