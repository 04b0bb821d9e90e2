package activity

import (
	"context"
	"errors"
	"maps"
	"strings"
	"time"
)

// Event is an audit record of one successful goal or rating mutation. IDs are
// strings so hooks are not coupled to the server's identifier types.
type Event struct {
	Verb       string
	ActorID    string
	ActorRole  string
	UserID     string
	ObjectType string
	ObjectID   string
	Channel    string
	Metadata   map[string]any
	OccurredAt time.Time
}

// Routable reports whether the event names a verb and an object. Hooks drop
// events that are not.
func (e Event) Routable() bool {
	return e.Verb != "" && e.ObjectType != "" && e.ObjectID != ""
}

// NormalizeEvent trims every identifier, copies the metadata and stamps
// OccurredAt when unset.
func NormalizeEvent(event Event) Event {
	for _, field := range []*string{
		&event.Verb, &event.ActorID, &event.ActorRole, &event.UserID,
		&event.ObjectType, &event.ObjectID, &event.Channel,
	} {
		*field = strings.TrimSpace(*field)
	}
	event.Metadata = CloneMetadata(event.Metadata)
	if event.OccurredAt.IsZero() {
		event.OccurredAt = time.Now()
	}
	return event
}

// CloneMetadata returns a shallow copy of metadata, or nil when it is empty.
func CloneMetadata(metadata map[string]any) map[string]any {
	if len(metadata) == 0 {
		return nil
	}
	return maps.Clone(metadata)
}

// ActivityHook receives normalized activity events.
type ActivityHook interface {
	Notify(ctx context.Context, event Event) error
}

// HookFunc adapts a function to ActivityHook.
type HookFunc func(ctx context.Context, event Event) error

func (fn HookFunc) Notify(ctx context.Context, event Event) error {
	if fn == nil {
		return nil
	}
	return fn(ctx, event)
}

// Hooks delivers each event to every hook in order.
type Hooks []ActivityHook

// Notify normalizes event once and hands it to each hook. Unroutable events
// are dropped silently; hook failures do not stop delivery and come back
// joined.
func (h Hooks) Notify(ctx context.Context, event Event) error {
	event = NormalizeEvent(event)
	if len(h) == 0 || !event.Routable() {
		return nil
	}
	if ctx == nil {
		ctx = context.Background()
	}

	var errs []error
	for _, hook := range h {
		if hook != nil {
			errs = append(errs, hook.Notify(ctx, event))
		}
	}
	return errors.Join(errs...)
}
