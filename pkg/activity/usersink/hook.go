// Package usersink records component activity in a go-users activity sink.
package usersink

import (
	"context"

	"github.com/goliatone/go-compose/pkg/activity"
	usertypes "github.com/goliatone/go-users/pkg/types"
	"github.com/google/uuid"
)

// ObjectType is the go-users object type of every record.
const ObjectType = "component"

// Hook forwards component activity to a go-users ActivitySink.
type Hook struct {
	Sink usertypes.ActivitySink
}

var _ activity.Hook = Hook{}

// Notify implements activity.Hook. Actor, user and tenant IDs that are not
// UUIDs are recorded as uuid.Nil.
func (h Hook) Notify(ctx context.Context, event activity.Event) error {
	if h.Sink == nil {
		return nil
	}
	event = event.Normalized()
	if !event.Valid() {
		return nil
	}
	if ctx == nil {
		ctx = context.Background()
	}
	return h.Sink.Log(ctx, Record(event))
}

// Record maps an event onto a go-users activity record. The component name
// and field list travel in Data next to the event metadata.
func Record(event activity.Event) usertypes.ActivityRecord {
	data := make(map[string]any, len(event.Metadata)+2)
	for key, value := range event.Metadata {
		data[key] = value
	}
	if event.Component != "" {
		data["component"] = event.Component
	}
	if len(event.Fields) > 0 {
		data["fields"] = event.Fields
	}

	return usertypes.ActivityRecord{
		ActorID:    parseUUID(event.ActorID),
		UserID:     parseUUID(event.UserID),
		TenantID:   parseUUID(event.TenantID),
		Verb:       event.Verb,
		ObjectType: ObjectType,
		ObjectID:   event.Ref,
		Channel:    event.Channel,
		Data:       data,
		OccurredAt: event.At,
	}
}

func parseUUID(value string) uuid.UUID {
	id, err := uuid.Parse(value)
	if err != nil {
		return uuid.Nil
	}
	return id
}
