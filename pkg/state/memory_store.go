package state

import (
	"context"
	"fmt"
	"sync"
	"time"

	layering "github.com/goliatone/go-statequeue/layering"
	"github.com/goliatone/go-statequeue/pkg/identity"
)

// MemoryStore is an in-memory Store intended for tests and examples. It keys
// records by Ref.Identifier(), deep copies snapshots on the way in and out,
// and issues a fresh ETag on every save.
type MemoryStore[T any] struct {
	mu      sync.RWMutex
	records map[string]memoryRecord[T]
	now     func() time.Time
}

type memoryRecord[T any] struct {
	snapshot T
	meta     Meta
}

// NewMemoryStore constructs an empty store.
func NewMemoryStore[T any]() *MemoryStore[T] {
	return &MemoryStore[T]{
		records: map[string]memoryRecord[T]{},
		now:     time.Now,
	}
}

// Load implements Store.
func (s *MemoryStore[T]) Load(_ context.Context, ref Ref) (T, Meta, bool, error) {
	var zero T
	key, err := ref.Identifier()
	if err != nil {
		return zero, Meta{}, false, err
	}

	s.mu.RLock()
	record, ok := s.records[key]
	s.mu.RUnlock()
	if !ok {
		return zero, Meta{}, false, nil
	}
	return layering.Clone(record.snapshot), cloneMeta(record.meta), true, nil
}

// Save implements Store.
func (s *MemoryStore[T]) Save(_ context.Context, ref Ref, snapshot T, meta Meta) (Meta, error) {
	key, err := ref.Identifier()
	if err != nil {
		return Meta{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	existing, ok := s.records[key]
	if meta.ETag != "" && ok && existing.meta.ETag != meta.ETag {
		return cloneMeta(existing.meta), fmt.Errorf("%w: expected %q, got %q", ErrETagMismatch, meta.ETag, existing.meta.ETag)
	}

	saved := mergeMeta(existing.meta, meta)
	saved.ETag = identity.New().String()
	if meta.UpdatedAt.IsZero() {
		saved.UpdatedAt = s.now()
	}
	saved = cloneMeta(saved)
	s.records[key] = memoryRecord[T]{snapshot: layering.Clone(snapshot), meta: saved}
	return cloneMeta(saved), nil
}

// Len returns the number of stored snapshots.
func (s *MemoryStore[T]) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.records)
}
