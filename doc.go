// Package statequeue resolves a single value from a default and any number of
// prioritized sources.
//
// A Queue folds its default through every registered Source in ascending
// priority order (registration order breaks ties) each time the owner calls
// Update. The bound Target and the subscribed listeners are told about the new
// value only when it differs from the previous one.
//
//	q := statequeue.New(10)
//	_ = q.AddSource(statequeue.NewMapSource(0, func(v int) int { return v + 5 }))
//	_ = q.AddSource(statequeue.NewMapSource(1, func(v int) int { return v * 2 }))
//	_ = q.Update() // q.Current() == 30
//
// Sources can be plain functions (NewSource, NewMapSource), snapshots layered
// over the accumulator (NewLayerSource) or expressions evaluated by expr, CEL
// or goja (NewExprSource).
//
// Queues are owned by a single goroutine. Calling Update from inside a source
// or a change callback fails with ErrReentrantUpdate.
package statequeue
