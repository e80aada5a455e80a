package activity

import (
	"context"
	"testing"
)

func TestBuildQueueChangedEventIncludesValues(t *testing.T) {
	meta := map[string]any{"custom": "value"}
	input := QueueEventInput{
		ActorID:    " actor ",
		QueueID:    " 0b7c5a5e-6a43-4b0e-9a55-4b0a8f2f1f10 ",
		Metadata:   meta,
		Pass:       4,
		Sources:    2,
		OldValue:   30,
		NewValue:   20,
		Recipients: []string{"ops@example.com"},
	}

	event := BuildQueueChangedEvent(input)

	if event.Verb != VerbQueueChanged {
		t.Fatalf("expected verb %s got %s", VerbQueueChanged, event.Verb)
	}
	if event.ObjectType != ObjectTypeQueue || event.ObjectID != "0b7c5a5e-6a43-4b0e-9a55-4b0a8f2f1f10" {
		t.Fatalf("unexpected object fields: %+v", event)
	}
	if event.ActorID != "actor" {
		t.Fatalf("expected trimmed actor, got %q", event.ActorID)
	}
	if event.Metadata["pass"] != uint64(4) || event.Metadata["sources"] != 2 {
		t.Fatalf("expected pass/sources metadata, got %+v", event.Metadata)
	}
	if event.Metadata["old_value"] != 30 || event.Metadata["new_value"] != 20 {
		t.Fatalf("expected old/new values, got %+v", event.Metadata)
	}
	if event.Metadata["custom"] != "value" {
		t.Fatalf("expected custom metadata preserved, got %+v", event.Metadata)
	}
	event.Metadata["custom"] = "changed"
	if meta["custom"] != "value" {
		t.Fatalf("expected input metadata untouched")
	}
	event.Recipients[0] = "changed"
	if input.Recipients[0] != "ops@example.com" {
		t.Fatalf("expected input recipients untouched, got %v", input.Recipients)
	}
}

func TestBuildQueueClearedEventFallsBackToObjectType(t *testing.T) {
	event := BuildQueueClearedEvent(QueueEventInput{})
	if event.Verb != VerbQueueCleared {
		t.Fatalf("expected verb %s, got %s", VerbQueueCleared, event.Verb)
	}
	if event.ObjectID != ObjectTypeQueue {
		t.Fatalf("expected fallback object ID %q, got %q", ObjectTypeQueue, event.ObjectID)
	}
	if _, ok := event.Metadata["old_value"]; ok {
		t.Fatalf("expected no old_value for nil input, got %+v", event.Metadata)
	}
}

func TestBuildQueueEventsWorkWithHooks(t *testing.T) {
	capture := &CaptureHook{}
	hooks := Hooks{capture}

	err := hooks.Notify(context.Background(), BuildQueueChangedEvent(QueueEventInput{QueueID: "q-1", NewValue: "on"}))
	if err != nil {
		t.Fatalf("notify: %v", err)
	}
	if len(capture.Events) != 1 {
		t.Fatalf("expected capture to record event, got %d", len(capture.Events))
	}
	if capture.Events[0].Verb != VerbQueueChanged {
		t.Fatalf("expected verb %s, got %s", VerbQueueChanged, capture.Events[0].Verb)
	}
}
