package usersink_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/goliatone/go-statequeue/pkg/activity"
	"github.com/goliatone/go-statequeue/pkg/activity/usersink"
	"github.com/goliatone/go-statequeue/pkg/identity"
	usertypes "github.com/goliatone/go-users/pkg/types"
	"github.com/google/uuid"
)

type recordingSink struct {
	records []usertypes.ActivityRecord
	err     error
}

func (s *recordingSink) Log(_ context.Context, record usertypes.ActivityRecord) error {
	s.records = append(s.records, record)
	return s.err
}

func TestHookNotifyMapsQueueEvent(t *testing.T) {
	sink := &recordingSink{}
	hook := usersink.Hook{Sink: sink}

	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	actorID := uuid.New()
	queueID := identity.New()

	event := activity.BuildQueueChangedEvent(activity.QueueEventInput{
		ActorID:    actorID.String(),
		UserID:     "not-a-uuid",
		QueueID:    queueID.String(),
		Channel:    "statequeue",
		Pass:       2,
		OldValue:   10,
		NewValue:   30,
		Recipients: []string{"ops@example.com"},
		OccurredAt: now,
	})

	if err := hook.Notify(context.Background(), event); err != nil {
		t.Fatalf("notify: %v", err)
	}
	if len(sink.records) != 1 {
		t.Fatalf("expected 1 record, got %d", len(sink.records))
	}
	record := sink.records[0]
	if record.ActorID != actorID {
		t.Fatalf("expected actor %s got %s", actorID, record.ActorID)
	}
	if record.UserID != uuid.Nil {
		t.Fatalf("expected unparsable user id to map to uuid.Nil, got %s", record.UserID)
	}
	if record.Verb != activity.VerbQueueChanged || record.ObjectType != activity.ObjectTypeQueue {
		t.Fatalf("unexpected verb/object type: %s %s", record.Verb, record.ObjectType)
	}
	if record.ObjectID != queueID.String() {
		t.Fatalf("expected object id %s, got %s", queueID, record.ObjectID)
	}
	if record.Data["queue_id"] != queueID.String() {
		t.Fatalf("expected queue_id in data, got %+v", record.Data)
	}
	if record.Data["old_value"] != 10 || record.Data["new_value"] != 30 {
		t.Fatalf("expected values in data, got %+v", record.Data)
	}
	recipients, ok := record.Data["recipients"].([]string)
	if !ok || len(recipients) != 1 || recipients[0] != "ops@example.com" {
		t.Fatalf("expected recipients in data, got %+v", record.Data["recipients"])
	}
	if !record.OccurredAt.Equal(now) {
		t.Fatalf("expected occurred_at %v, got %v", now, record.OccurredAt)
	}
}

func TestHookNotifySkipsIncompleteEvents(t *testing.T) {
	sink := &recordingSink{}
	hook := usersink.Hook{Sink: sink}
	if err := hook.Notify(context.Background(), activity.Event{Verb: "statequeue.changed"}); err != nil {
		t.Fatalf("notify: %v", err)
	}
	if len(sink.records) != 0 {
		t.Fatalf("expected no records, got %d", len(sink.records))
	}
}

func TestHookNotifyReturnsSinkError(t *testing.T) {
	boom := errors.New("sink down")
	hook := usersink.Hook{Sink: &recordingSink{err: boom}}
	err := hook.Notify(context.Background(), activity.BuildQueueClearedEvent(activity.QueueEventInput{QueueID: "q"}))
	if !errors.Is(err, boom) {
		t.Fatalf("expected sink error, got %v", err)
	}
}

func TestHookNilSinkIsNoop(t *testing.T) {
	if err := (usersink.Hook{}).Notify(context.Background(), activity.Event{}); err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
}
