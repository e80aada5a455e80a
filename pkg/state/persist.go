package state

import (
	"context"
	"fmt"
	"time"

	statequeue "github.com/goliatone/go-statequeue"
)

// Restore loads the persisted default for q and applies it with SetDefault,
// which runs one resolution pass. It reports whether a snapshot was found;
// when none is, q is left untouched.
func Restore[T any](ctx context.Context, store Store[T], q *statequeue.Queue[T]) (Meta, bool, error) {
	if store == nil {
		return Meta{}, false, fmt.Errorf("state: store is required")
	}
	if q == nil {
		return Meta{}, false, fmt.Errorf("state: queue is required")
	}
	snapshot, meta, ok, err := store.Load(ctx, Ref{Queue: q.ID(), Kind: KindDefault})
	if err != nil {
		return Meta{}, false, fmt.Errorf("state: load default for queue %s: %w", q.ID(), err)
	}
	if !ok {
		return Meta{}, false, nil
	}
	if err := q.SetDefaultContext(ctx, snapshot); err != nil {
		return meta, true, err
	}
	return meta, true, nil
}

// SaveDefault persists q's default. meta.ETag, when set, guards against
// overwriting a newer snapshot.
func SaveDefault[T any](ctx context.Context, store Store[T], q *statequeue.Queue[T], meta Meta) (Meta, error) {
	if store == nil {
		return Meta{}, fmt.Errorf("state: store is required")
	}
	if q == nil {
		return Meta{}, fmt.Errorf("state: queue is required")
	}
	saved, err := store.Save(ctx, Ref{Queue: q.ID(), Kind: KindDefault}, q.Default(), meta)
	if err != nil {
		return saved, fmt.Errorf("state: save default for queue %s: %w", q.ID(), err)
	}
	return saved, nil
}

// Recorder saves a queue's resolved value every time it changes. Save errors
// are returned from the listener and therefore surface from Update.
type Recorder[T any] struct {
	store Store[T]
	ctx   context.Context
	now   func() time.Time
	last  Meta
}

// NewRecorder builds a recorder saving into store. ctx is used for every save.
func NewRecorder[T any](ctx context.Context, store Store[T]) *Recorder[T] {
	if ctx == nil {
		ctx = context.Background()
	}
	return &Recorder[T]{store: store, ctx: ctx, now: time.Now}
}

// Attach subscribes the recorder to q.
func (r *Recorder[T]) Attach(q *statequeue.Queue[T]) statequeue.Subscription {
	return q.Subscribe(r.Record)
}

// Record is the statequeue.Listener implementation.
func (r *Recorder[T]) Record(args statequeue.ChangedArgs[T]) error {
	if r.store == nil {
		return fmt.Errorf("state: store is required")
	}
	meta := Meta{
		SnapshotID: fmt.Sprintf("%s/%d", args.Queue, args.Pass),
		UpdatedAt:  r.now(),
	}
	saved, err := r.store.Save(r.ctx, Ref{Queue: args.Queue, Kind: KindCurrent}, args.Current, meta)
	if err != nil {
		return fmt.Errorf("state: record pass %d for queue %s: %w", args.Pass, args.Queue, err)
	}
	r.last = saved
	return nil
}

// Last returns the metadata of the most recent successful save.
func (r *Recorder[T]) Last() Meta {
	return cloneMeta(r.last)
}
