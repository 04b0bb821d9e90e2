package perfsync

import (
	"context"

	"github.com/goliatone/go-perfsync/pkg/activity"
)

// RatingsStore caches the caller's rating and the active cycle's ratings and
// mediates every rating action against a RatingsAPI. It is safe for
// concurrent use.
type RatingsStore struct {
	api  RatingsAPI
	rt   *runtime[RatingsState]
	mine collection[RatingsState, Rating]
	team collection[RatingsState, Rating]
}

// NewRatingsStore constructs a store with empty views.
func NewRatingsStore(api RatingsAPI, opts ...Option) *RatingsStore {
	initial := RatingsState{
		Mine: CollectionView[Rating]{Items: []Rating{}},
		Team: CollectionView[Rating]{Items: []Rating{}},
	}
	return &RatingsStore{
		api: api,
		rt:  newRuntime(initial, func(s *RatingsState) *string { return &s.Error }, opts),
		mine: collection[RatingsState, Rating]{
			key:    CollectionMyRatings,
			action: ActionFetchMyRating,
			view:   func(s *RatingsState) *CollectionView[Rating] { return &s.Mine },
		},
		team: collection[RatingsState, Rating]{
			key:    CollectionTeamRatings,
			action: ActionFetchActiveCycleRatings,
			view:   func(s *RatingsState) *CollectionView[Rating] { return &s.Team },
		},
	}
}

// State returns the current snapshot.
func (s *RatingsStore) State() RatingsState {
	return s.rt.store.Snapshot()
}

// Subscribe registers fn for every published snapshot and returns the
// function that removes it.
func (s *RatingsStore) Subscribe(fn func(RatingsState)) func() {
	return s.rt.store.Subscribe(fn)
}

// Close drops every subscriber.
func (s *RatingsStore) Close() {
	s.rt.store.Close()
}

// FetchMyRating loads the caller's own rating(s).
func (s *RatingsStore) FetchMyRating(ctx context.Context) error {
	return fetch(ctx, s.rt, s.mine, 0, s.api.ListMine)
}

// FetchActiveCycleRatings loads one page of the active cycle's ratings.
func (s *RatingsStore) FetchActiveCycleRatings(ctx context.Context, page int) error {
	return fetch(ctx, s.rt, s.team, page, s.api.ListActiveCycle)
}

// CreateRating opens a DRAFT rating for an employee. The lists are not
// reloaded; callers fetch when they need the new row.
func (s *RatingsStore) CreateRating(ctx context.Context, input CreateRatingInput) Result {
	return s.rt.run(ctx, mutation{
		action:   ActionCreateRating,
		validate: input.Validate,
		call: func(ctx context.Context) error {
			return s.api.Create(ctx, input)
		},
		event: func(ctx context.Context) activity.Event {
			return activity.BuildRatingEvent(activity.VerbRatingCreated, s.rt.activityInput(ctx, 0, input.EmployeeID, nil))
		},
	})
}

// UpdateManagerRating changes the manager's score and justification.
func (s *RatingsStore) UpdateManagerRating(ctx context.Context, id int64, input UpdateManagerRatingInput) Result {
	return s.transition(ctx, ActionUpdateManagerRating, activity.VerbRatingUpdated, id, input.Validate, func(ctx context.Context) error {
		return s.api.UpdateManager(ctx, id, input)
	}, map[string]any{"score": input.Score})
}

// SubmitRating moves a DRAFT rating to MANAGER_SUBMITTED.
func (s *RatingsStore) SubmitRating(ctx context.Context, id int64) Result {
	return s.transition(ctx, ActionSubmitRating, activity.VerbRatingSubmitted, id, nil, func(ctx context.Context) error {
		return s.api.Submit(ctx, id)
	}, map[string]any{"status": string(RatingManagerSubmitted)})
}

// CalibrateRating records HR's calibrated score for a MANAGER_SUBMITTED
// rating.
func (s *RatingsStore) CalibrateRating(ctx context.Context, id int64, input CalibrateRatingInput) Result {
	return s.transition(ctx, ActionCalibrateRating, activity.VerbRatingCalibrated, id, input.Validate, func(ctx context.Context) error {
		return s.api.Calibrate(ctx, id, input)
	}, map[string]any{"status": string(RatingCalibrated), "score": input.NewScore})
}

// transition runs a rating action and reloads the active cycle's current
// page.
func (s *RatingsStore) transition(
	ctx context.Context,
	action Action,
	verb string,
	id int64,
	validate func() error,
	call func(context.Context) error,
	metadata map[string]any,
) Result {
	var target Rating
	return s.rt.run(ctx, mutation{
		action: action,
		validate: func() error {
			if id <= 0 {
				return invalid("id", "A rating is required.")
			}
			if validate != nil {
				return validate()
			}
			return nil
		},
		call: func(ctx context.Context) error {
			target, _ = s.rating(id)
			return call(ctx)
		},
		reconcile: func(ctx context.Context) {
			_ = s.FetchActiveCycleRatings(ctx, s.State().Team.Page)
		},
		event: func(ctx context.Context) activity.Event {
			return activity.BuildRatingEvent(verb, s.rt.activityInput(ctx, id, target.EmployeeID, metadata))
		},
	})
}

func (s *RatingsStore) rating(id int64) (Rating, bool) {
	snapshot := s.State()
	for _, items := range [][]Rating{snapshot.Team.Items, snapshot.Mine.Items} {
		for _, rating := range items {
			if rating.ID == id {
				return rating, true
			}
		}
	}
	return Rating{}, false
}
