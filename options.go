package perfsync

import (
	"context"

	"github.com/goliatone/go-perfsync/pkg/activity"
	"github.com/goliatone/go-perfsync/pkg/state"
)

// Option configures a GoalsStore or RatingsStore.
type Option func(*storeConfig)

type storeConfig struct {
	config    Config
	pageSize  int
	logger    Logger
	sequencer Sequencer
	identity  IdentityProvider
	hooks     activity.Hooks
}

// WithConfig applies a loaded Config. Options given after it still win.
func WithConfig(cfg Config) Option {
	return func(c *storeConfig) {
		c.config = cfg.withDefaults()
		c.pageSize = c.config.PageSize
	}
}

// WithPageSize overrides the page size sent with every list call. Values
// below 1 are ignored.
func WithPageSize(size int) Option {
	return func(c *storeConfig) {
		if size > 0 {
			c.pageSize = size
		}
	}
}

// WithLogger sets the event logger.
func WithLogger(logger Logger) Option {
	return func(c *storeConfig) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithSequencer replaces the default request sequencer.
func WithSequencer(seq Sequencer) Option {
	return func(c *storeConfig) {
		if seq != nil {
			c.sequencer = seq
		}
	}
}

// WithIdentity sets the provider used to stamp activity events.
func WithIdentity(provider IdentityProvider) Option {
	return func(c *storeConfig) {
		c.identity = provider
	}
}

// WithActivity attaches activity hooks. Nil hooks are dropped.
func WithActivity(hooks ...activity.ActivityHook) Option {
	return func(c *storeConfig) {
		for _, hook := range hooks {
			if hook != nil {
				c.hooks = append(c.hooks, hook)
			}
		}
	}
}

func applyOptions(opts []Option) storeConfig {
	cfg := storeConfig{
		config:    DefaultConfig(),
		logger:    noopLogger{},
		sequencer: state.NewSequencer(),
	}
	cfg.pageSize = cfg.config.PageSize
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}
	return cfg
}

func (c storeConfig) emitter() *activity.Emitter {
	return activity.NewEmitter(c.hooks, activity.Config{
		Enabled: c.config.Activity.enabled(),
		Channel: c.config.Activity.Channel,
	})
}

func (c storeConfig) actor(ctx context.Context) Identity {
	if c.identity == nil {
		return Identity{}
	}
	id, ok := c.identity.Identity(ctx)
	if !ok {
		return Identity{}
	}
	return id
}

func (c storeConfig) message(action Action, err error) string {
	fallback := action.FallbackMessage()
	if override, ok := c.config.Messages[string(action)]; ok && override != "" {
		fallback = override
	}
	return messageOr(err, fallback)
}
