package state

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/goliatone/go-statequeue/pkg/identity"
)

// ErrETagMismatch indicates a save whose expected ETag no longer matches.
var ErrETagMismatch = errors.New("state: etag mismatch")

// ErrInvalidRef indicates a Ref without a queue id or with an unknown kind.
var ErrInvalidRef = errors.New("state: invalid ref")

// Kind selects which snapshot of a queue a Ref points at.
type Kind string

const (
	KindDefault Kind = "default"
	KindCurrent Kind = "current"
)

// Ref identifies one persisted snapshot of one queue.
type Ref struct {
	Queue identity.ID
	Kind  Kind
}

// Identifier returns the deterministic storage key for r.
func (r Ref) Identifier() (string, error) {
	if r.Queue.IsZero() {
		return "", fmt.Errorf("%w: queue id is required", ErrInvalidRef)
	}
	switch r.Kind {
	case KindDefault, KindCurrent:
		return fmt.Sprintf("statequeue/%s/%s", r.Queue, r.Kind), nil
	default:
		return "", fmt.Errorf("%w: unsupported kind %q", ErrInvalidRef, r.Kind)
	}
}

// Meta is storage-owned metadata used for audit and concurrency control.
type Meta struct {
	SnapshotID string            `json:"snapshot_id,omitempty"`
	ETag       string            `json:"etag,omitempty"`
	UpdatedAt  time.Time         `json:"updated_at,omitempty"`
	Extra      map[string]string `json:"extra,omitempty"`
}

// Store loads/saves one snapshot for a single ref. When meta.ETag is set on
// Save, implementations must reject the write with ErrETagMismatch unless it
// matches the stored ETag.
type Store[T any] interface {
	Load(ctx context.Context, ref Ref) (snapshot T, meta Meta, ok bool, err error)
	Save(ctx context.Context, ref Ref, snapshot T, meta Meta) (Meta, error)
}

func mergeMeta(base, override Meta) Meta {
	out := base
	if override.SnapshotID != "" {
		out.SnapshotID = override.SnapshotID
	}
	if override.ETag != "" {
		out.ETag = override.ETag
	}
	if !override.UpdatedAt.IsZero() {
		out.UpdatedAt = override.UpdatedAt
	}
	if override.Extra != nil {
		out.Extra = override.Extra
	}
	return out
}

func cloneMeta(meta Meta) Meta {
	out := meta
	if meta.Extra == nil {
		return out
	}
	out.Extra = make(map[string]string, len(meta.Extra))
	for k, v := range meta.Extra {
		out.Extra[k] = v
	}
	return out
}
