package statequeue

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func labels(sources []Source[string]) []string {
	out := make([]string, 0, len(sources))
	for _, source := range sources {
		out = append(out, sourceLabel(source))
	}
	return out
}

func labelled(priority int, label string) *FuncSource[string] {
	return NewMapSource(priority, func(v string) string { return v + label }).WithLabel(label)
}

func TestRegistryOrdersByPriorityThenInsertion(t *testing.T) {
	r := NewRegistry[string]()
	for _, s := range []*FuncSource[string]{
		labelled(5, "e"),
		labelled(-1, "a"),
		labelled(5, "f"),
		labelled(0, "b"),
		labelled(0, "c"),
	} {
		if err := r.Add(s); err != nil {
			t.Fatalf("add %s: %v", s.Label(), err)
		}
	}
	want := []string{"a", "b", "c", "e", "f"}
	if diff := cmp.Diff(want, labels(r.Sources())); diff != "" {
		t.Fatalf("unexpected order (-want +got):\n%s", diff)
	}
}

func TestRegistryOrderedIsRestartable(t *testing.T) {
	r := NewRegistry[string]()
	_ = r.Add(labelled(1, "x"))
	_ = r.Add(labelled(2, "y"))

	seq := r.Ordered()
	for run := 0; run < 2; run++ {
		var got []string
		for source := range seq {
			got = append(got, sourceLabel(source))
		}
		if diff := cmp.Diff([]string{"x", "y"}, got); diff != "" {
			t.Fatalf("run %d (-want +got):\n%s", run, diff)
		}
	}

	count := 0
	for range seq {
		count++
		break
	}
	if count != 1 {
		t.Fatalf("expected early break to stop iteration")
	}
}

func TestRegistryReAddSortsAfterPeers(t *testing.T) {
	r := NewRegistry[string]()
	a := labelled(0, "a")
	b := labelled(0, "b")
	_ = r.Add(a)
	_ = r.Add(b)
	if err := r.Remove(a); err != nil {
		t.Fatalf("remove: %v", err)
	}
	if err := r.Add(a); err != nil {
		t.Fatalf("re-add: %v", err)
	}
	if diff := cmp.Diff([]string{"b", "a"}, labels(r.Sources())); diff != "" {
		t.Fatalf("unexpected order (-want +got):\n%s", diff)
	}
}

func TestRegistryDuplicateLeavesStateUntouched(t *testing.T) {
	r := NewRegistry[string]()
	a := labelled(0, "a")
	_ = r.Add(a)
	err := r.Add(a)
	if !errors.Is(err, ErrDuplicateSource) {
		t.Fatalf("expected ErrDuplicateSource, got %v", err)
	}
	if r.Len() != 1 {
		t.Fatalf("expected one entry, got %d", r.Len())
	}
}

func TestRegistryClear(t *testing.T) {
	r := NewRegistry[string]()
	a := labelled(0, "a")
	_ = r.Add(a)
	_ = r.Add(labelled(1, "b"))
	r.Clear()
	if r.Len() != 0 || r.Contains(a) {
		t.Fatalf("expected empty registry")
	}
	if err := r.Add(a); err != nil {
		t.Fatalf("expected add after clear to succeed, got %v", err)
	}
}

func TestRegistryContainsRejectsInvalidSources(t *testing.T) {
	r := NewRegistry[int]()
	if r.Contains(nil) {
		t.Fatalf("expected nil source not to be contained")
	}
	if r.Contains(sliceSource{1}) {
		t.Fatalf("expected non-comparable source not to be contained")
	}
	if err := r.Remove(nil); !errors.Is(err, ErrNilSource) {
		t.Fatalf("expected ErrNilSource, got %v", err)
	}
}
