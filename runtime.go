package perfsync

import (
	"context"
	"time"

	"github.com/goliatone/go-perfsync/internal/hydrate"
	"github.com/goliatone/go-perfsync/pkg/activity"
	"github.com/goliatone/go-perfsync/pkg/state"
)

// runtime holds what GoalsStore and RatingsStore share: the snapshot store,
// the resolved options and the activity emitter.
type runtime[S any] struct {
	cfg     storeConfig
	store   *state.Store[S]
	emitter *activity.Emitter
	errorOf func(*S) *string
}

func newRuntime[S any](initial S, errorOf func(*S) *string, opts []Option) *runtime[S] {
	cfg := applyOptions(opts)
	return &runtime[S]{
		cfg:     cfg,
		store:   state.NewStore(initial),
		emitter: cfg.emitter(),
		errorOf: errorOf,
	}
}

type listFunc func(ctx context.Context, page, size int) (map[string]any, error)

// collection binds a sequencer key to the view it fills.
type collection[S, T any] struct {
	key     string
	action  Action
	view    func(*S) *CollectionView[T]
	decoder *hydrate.Decoder[T]
}

// fetch loads one page into the collection view. Only the response to the
// most recently issued request of the collection is applied; superseded
// responses, successful or not, are logged as stale and dropped. The error is
// returned only when it was recorded in the state.
func fetch[S, T any](ctx context.Context, rt *runtime[S], col collection[S, T], page int, list listFunc) error {
	ctx = orBackground(ctx)
	if page < 0 {
		page = 0
	}

	token := rt.cfg.sequencer.Begin(col.key)
	rt.store.Update(func(prev S) (S, bool) {
		// A newer request of the same collection may already have settled.
		if !rt.cfg.sequencer.Current(col.key, token) {
			return prev, false
		}
		view := col.view(&prev)
		view.Loading = true
		view.Error = ""
		*rt.errorOf(&prev) = ""
		return prev, true
	})

	start := time.Now()
	var payload map[string]any
	err := rt.call(ctx, col.action, func(ctx context.Context) error {
		var err error
		payload, err = list(ctx, page, rt.cfg.pageSize)
		return err
	})
	elapsed := time.Since(start)

	if err != nil {
		msg := rt.cfg.message(col.action, err)
		applied := rt.store.Update(func(prev S) (S, bool) {
			if !rt.cfg.sequencer.Current(col.key, token) {
				return prev, false
			}
			view := col.view(&prev)
			view.Loading = false
			view.Error = msg
			*rt.errorOf(&prev) = msg
			return prev, true
		})
		rt.log(LogEvent{Kind: LogFetch, Action: col.action, Collection: col.key, Token: token, Duration: elapsed, Stale: !applied, Err: err})
		if !applied {
			return nil
		}
		return err
	}

	normalized, dropped := hydrate.NormalizePage(col.key, payload, col.decoder)
	for _, derr := range dropped {
		rt.log(LogEvent{Kind: LogNormalize, Action: col.action, Collection: col.key, Token: token, Err: derr})
	}

	applied := rt.store.Update(func(prev S) (S, bool) {
		if !rt.cfg.sequencer.Current(col.key, token) {
			return prev, false
		}
		*col.view(&prev) = CollectionView[T]{
			Items:      normalized.Items,
			Page:       normalized.Page,
			TotalPages: normalized.TotalPages,
		}
		return prev, true
	})
	rt.log(LogEvent{Kind: LogFetch, Action: col.action, Collection: col.key, Token: token, Duration: elapsed, Stale: !applied})
	return nil
}

// mutation describes one store action.
type mutation struct {
	action   Action
	validate func() error
	call     func(ctx context.Context) error
	// reconcile runs after a successful call; refetch failures land in the
	// state but do not fail the action.
	reconcile func(ctx context.Context)
	event     func(ctx context.Context) activity.Event
}

func (rt *runtime[S]) run(ctx context.Context, m mutation) Result {
	ctx = orBackground(ctx)

	if m.validate != nil {
		if err := m.validate(); err != nil {
			rt.log(LogEvent{Kind: LogAction, Action: m.action, Refused: true, Err: err})
			return Result{Message: rt.cfg.message(m.action, err), Err: err}
		}
	}

	rt.setError("")
	start := time.Now()
	err := rt.call(ctx, m.action, m.call)
	elapsed := time.Since(start)
	if err != nil {
		msg := rt.cfg.message(m.action, err)
		rt.setError(msg)
		rt.log(LogEvent{Kind: LogAction, Action: m.action, Duration: elapsed, Err: err})
		return Result{Message: msg, Err: err}
	}
	rt.log(LogEvent{Kind: LogAction, Action: m.action, Duration: elapsed})

	if m.reconcile != nil {
		m.reconcile(ctx)
	}
	if m.event != nil && rt.emitter.Enabled() {
		event := m.event(ctx)
		if err := rt.emitter.Emit(ctx, event); err != nil {
			rt.log(LogEvent{Kind: LogActivity, Action: m.action, Err: err})
		}
	}
	return succeeded()
}

// call invokes a port, turning a panic into an error.
func (rt *runtime[S]) call(ctx context.Context, action Action, fn func(context.Context) error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = panicError(action, r)
		}
	}()
	return fn(ctx)
}

func (rt *runtime[S]) setError(msg string) {
	rt.store.Update(func(prev S) (S, bool) {
		field := rt.errorOf(&prev)
		if *field == msg {
			return prev, false
		}
		*field = msg
		return prev, true
	})
}

func (rt *runtime[S]) log(event LogEvent) {
	rt.cfg.logger.Log(event)
}

func (rt *runtime[S]) activityInput(ctx context.Context, objectID, userID int64, metadata map[string]any) activity.MutationInput {
	actor := rt.cfg.actor(ctx)
	return activity.MutationInput{
		ActorID:   actor.ID,
		ActorRole: string(actor.Role),
		UserID:    userID,
		ObjectID:  objectID,
		Metadata:  metadata,
	}
}

func orBackground(ctx context.Context) context.Context {
	if ctx == nil {
		return context.Background()
	}
	return ctx
}
