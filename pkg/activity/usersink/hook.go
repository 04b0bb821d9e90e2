package usersink

import (
	"context"
	"strings"

	"github.com/goliatone/go-perfsync/pkg/activity"
	usertypes "github.com/goliatone/go-users/pkg/types"
	"github.com/google/uuid"
)

// Namespace derives stable UUIDs for numeric performance-tracker user ids.
var Namespace = uuid.NewSHA1(uuid.NameSpaceURL, []byte("perfsync:users"))

// Hook adapts activity events to a go-users ActivitySink.
type Hook struct {
	Sink usertypes.ActivitySink
	// TenantID is stamped on every record.
	TenantID uuid.UUID
}

// Notify maps a routable event to an ActivityRecord and logs it on the sink.
// The raw ids are kept in the record data next to the derived UUIDs.
func (h Hook) Notify(ctx context.Context, event activity.Event) error {
	if h.Sink == nil {
		return nil
	}
	event = activity.NormalizeEvent(event)
	if !event.Routable() {
		return nil
	}
	if ctx == nil {
		ctx = context.Background()
	}
	return h.Sink.Log(ctx, usertypes.ActivityRecord{
		ActorID:    UserUUID(event.ActorID),
		UserID:     UserUUID(event.UserID),
		TenantID:   h.TenantID,
		Verb:       event.Verb,
		ObjectType: event.ObjectType,
		ObjectID:   event.ObjectID,
		Channel:    event.Channel,
		Data:       recordData(event),
		OccurredAt: event.OccurredAt,
	})
}

func recordData(event activity.Event) map[string]any {
	data := activity.CloneMetadata(event.Metadata)
	for key, raw := range map[string]string{"actor_id": event.ActorID, "user_id": event.UserID} {
		if raw == "" {
			continue
		}
		if data == nil {
			data = map[string]any{}
		}
		data[key] = raw
	}
	return data
}

// UserUUID parses input as a UUID, falling back to a name-based UUID in
// Namespace. Blank input maps to uuid.Nil.
func UserUUID(input string) uuid.UUID {
	value := strings.TrimSpace(input)
	if value == "" {
		return uuid.Nil
	}
	if id, err := uuid.Parse(value); err == nil {
		return id
	}
	return uuid.NewSHA1(Namespace, []byte(value))
}
