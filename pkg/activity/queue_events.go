package activity

import (
	"strings"
	"time"
)

// Verbs emitted for queue activity.
const (
	VerbQueueChanged = "statequeue.changed"
	VerbQueueCleared = "statequeue.cleared"
)

// ObjectTypeQueue is the object type used for every queue event.
const ObjectTypeQueue = "statequeue"

// QueueEventInput describes the common fields for queue lifecycle events.
type QueueEventInput struct {
	ActorID    string
	UserID     string
	TenantID   string
	QueueID    string
	Channel    string
	Recipients []string
	Metadata   map[string]any
	Pass       uint64
	Sources    int
	OldValue   any
	NewValue   any
	OccurredAt time.Time
}

// BuildQueueChangedEvent constructs an event for a pass that changed a queue's
// current value.
func BuildQueueChangedEvent(input QueueEventInput) Event {
	return buildQueueEvent(VerbQueueChanged, input)
}

// BuildQueueClearedEvent constructs an event for a queue whose sources were
// cleared.
func BuildQueueClearedEvent(input QueueEventInput) Event {
	return buildQueueEvent(VerbQueueCleared, input)
}

func buildQueueEvent(verb string, input QueueEventInput) Event {
	metadata := cloneMap(input.Metadata)
	metadata = ensureMetadata(metadata)
	metadata["pass"] = input.Pass
	metadata["sources"] = input.Sources
	if input.OldValue != nil {
		metadata["old_value"] = input.OldValue
	}
	if input.NewValue != nil {
		metadata["new_value"] = input.NewValue
	}

	recipients := input.Recipients
	if len(recipients) > 0 {
		recipients = append([]string{}, input.Recipients...)
	}

	objectID := strings.TrimSpace(input.QueueID)
	if objectID == "" {
		objectID = ObjectTypeQueue
	}

	return Event{
		Verb:       verb,
		ActorID:    strings.TrimSpace(input.ActorID),
		UserID:     strings.TrimSpace(input.UserID),
		TenantID:   strings.TrimSpace(input.TenantID),
		ObjectType: ObjectTypeQueue,
		ObjectID:   objectID,
		Channel:    strings.TrimSpace(input.Channel),
		Recipients: recipients,
		Metadata:   metadata,
		OccurredAt: input.OccurredAt,
	}
}

func ensureMetadata(meta map[string]any) map[string]any {
	if meta == nil {
		return map[string]any{}
	}
	return meta
}
