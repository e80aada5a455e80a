// Package state persists queue snapshots so a queue's default can survive a
// restart and its resolved values can be audited.
//
// The statequeue core performs no I/O; everything here sits on the owner's
// side of that boundary:
//   - Store[T] loads/saves one snapshot for one Ref.
//   - Restore/SaveDefault move a queue's default in and out of a Store.
//   - Recorder[T] is a change listener that saves every resolved value.
//
// Keys:
//
//	Ref.Identifier() yields "statequeue/<queue id>/<kind>", where kind is
//	"default" or "current". Queue ids come from pkg/identity, so they are
//	stable as long as the owner constructs the queue with statequeue.WithID.
package state
