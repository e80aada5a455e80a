package statequeue

import layering "github.com/goliatone/go-statequeue/layering"

// LayerOption configures optional metadata for a layer source.
type LayerOption[T any] func(*LayerSource[T])

// WithSnapshotID sets the snapshot identifier used for auditing.
func WithSnapshotID[T any](id string) LayerOption[T] {
	return func(layer *LayerSource[T]) {
		layer.snapshotID = id
	}
}

// LayerSource overlays a fixed snapshot on top of the accumulated value. Set
// fields of the snapshot win; nil pointers, maps, slices and interfaces fall
// through to whatever weaker sources and the default produced.
type LayerSource[T any] struct {
	scope      Scope
	snapshot   T
	snapshotID string
}

// NewLayerSource builds a layer source whose priority is scope.Priority. The
// scope and snapshot are deep copied.
func NewLayerSource[T any](scope Scope, snapshot T, opts ...LayerOption[T]) *LayerSource[T] {
	layer := &LayerSource[T]{
		scope:    scope.clone(),
		snapshot: layering.Clone(snapshot),
	}
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		opt(layer)
	}
	return layer
}

// Priority implements Source.
func (l *LayerSource[T]) Priority() int {
	return l.scope.Priority
}

// Apply implements Source.
func (l *LayerSource[T]) Apply(value T, _ Target[T]) (T, error) {
	return layering.MergeLayers(l.snapshot, value), nil
}

// Label implements Labeler.
func (l *LayerSource[T]) Label() string {
	return l.scope.Name
}

// Scope returns a copy of the layer scope.
func (l *LayerSource[T]) Scope() Scope {
	return l.scope.clone()
}

// Snapshot returns a copy of the layer snapshot.
func (l *LayerSource[T]) Snapshot() T {
	return layering.Clone(l.snapshot)
}

// SnapshotID returns the audit identifier, if any.
func (l *LayerSource[T]) SnapshotID() string {
	return l.snapshotID
}

// CanonicalLayers builds the five standard layer sources (system, tenant, org,
// team, user) in ascending priority order, ready for Queue.AddSources.
func CanonicalLayers[T any](system, tenant, org, team, user T) []Source[T] {
	return []Source[T]{
		NewLayerSource(NewScope("system", ScopePrioritySystem, WithScopeLabel("System Defaults")), system),
		NewLayerSource(NewScope("tenant", ScopePriorityTenant, WithScopeLabel("Tenant")), tenant),
		NewLayerSource(NewScope("org", ScopePriorityOrg, WithScopeLabel("Organization")), org),
		NewLayerSource(NewScope("team", ScopePriorityTeam, WithScopeLabel("Team")), team),
		NewLayerSource(NewScope("user", ScopePriorityUser, WithScopeLabel("User")), user),
	}
}
