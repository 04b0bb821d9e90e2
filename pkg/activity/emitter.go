package activity

import (
	"context"
	"slices"
	"strings"
)

// DefaultChannel is stamped on events that do not name a channel.
const DefaultChannel = "performance"

// Config controls activity emission.
type Config struct {
	Enabled bool
	Channel string
}

// Emitter stamps the configured channel on events and delivers them to its
// hooks. The zero value and a nil *Emitter are disabled.
type Emitter struct {
	hooks   Hooks
	channel string
}

// NewEmitter returns an emitter for the non-nil hooks. It stays disabled when
// cfg.Enabled is false or no hook remains.
func NewEmitter(hooks Hooks, cfg Config) *Emitter {
	e := &Emitter{channel: strings.TrimSpace(cfg.Channel)}
	if e.channel == "" {
		e.channel = DefaultChannel
	}
	if cfg.Enabled {
		e.hooks = slices.DeleteFunc(slices.Clone(hooks), func(h ActivityHook) bool { return h == nil })
	}
	return e
}

// Enabled reports whether Emit delivers anything.
func (e *Emitter) Enabled() bool {
	return e != nil && len(e.hooks) > 0
}

// Emit delivers event, defaulting its channel.
func (e *Emitter) Emit(ctx context.Context, event Event) error {
	if !e.Enabled() {
		return nil
	}
	if strings.TrimSpace(event.Channel) == "" {
		event.Channel = e.channel
	}
	return e.hooks.Notify(ctx, event)
}
