package perfsync

import (
	"context"

	"github.com/goliatone/go-perfsync/internal/hydrate"
	"github.com/goliatone/go-perfsync/pkg/activity"
)

// GoalsStore caches the caller's goals and their team's goals and mediates
// every goal action against a GoalsAPI. It is safe for concurrent use.
type GoalsStore struct {
	api  GoalsAPI
	rt   *runtime[GoalsState]
	mine collection[GoalsState, Goal]
	team collection[GoalsState, Goal]
}

// NewGoalsStore constructs a store with empty views.
func NewGoalsStore(api GoalsAPI, opts ...Option) *GoalsStore {
	initial := GoalsState{
		Mine: CollectionView[Goal]{Items: []Goal{}},
		Team: CollectionView[Goal]{Items: []Goal{}},
	}
	decoder := hydrate.NewDecoder(hydrate.WithPostHook[Goal](fillGoalDefaults))
	return &GoalsStore{
		api: api,
		rt:  newRuntime(initial, func(s *GoalsState) *string { return &s.Error }, opts),
		mine: collection[GoalsState, Goal]{
			key:     CollectionMyGoals,
			action:  ActionFetchMyGoals,
			view:    func(s *GoalsState) *CollectionView[Goal] { return &s.Mine },
			decoder: decoder,
		},
		team: collection[GoalsState, Goal]{
			key:     CollectionTeamGoals,
			action:  ActionFetchTeamGoals,
			view:    func(s *GoalsState) *CollectionView[Goal] { return &s.Team },
			decoder: decoder,
		},
	}
}

func fillGoalDefaults(_ hydrate.Context, goal *Goal) error {
	if goal.KeyResults == nil {
		goal.KeyResults = []KeyResult{}
	}
	return nil
}

// State returns the current snapshot.
func (s *GoalsStore) State() GoalsState {
	return s.rt.store.Snapshot()
}

// Subscribe registers fn for every published snapshot and returns the
// function that removes it.
func (s *GoalsStore) Subscribe(fn func(GoalsState)) func() {
	return s.rt.store.Subscribe(fn)
}

// Close drops every subscriber.
func (s *GoalsStore) Close() {
	s.rt.store.Close()
}

// FetchMyGoals loads one page of the caller's goals.
func (s *GoalsStore) FetchMyGoals(ctx context.Context, page int) error {
	return fetch(ctx, s.rt, s.mine, page, s.api.ListMine)
}

// FetchTeamGoals loads one page of the caller's reports' goals.
func (s *GoalsStore) FetchTeamGoals(ctx context.Context, page int) error {
	return fetch(ctx, s.rt, s.team, page, s.api.ListTeam)
}

// CreateGoal creates a goal and reloads the first page of the caller's goals.
func (s *GoalsStore) CreateGoal(ctx context.Context, input CreateGoalInput) Result {
	payload := input.normalized()
	return s.rt.run(ctx, mutation{
		action:   ActionCreateGoal,
		validate: input.Validate,
		call: func(ctx context.Context) error {
			return s.api.Create(ctx, payload)
		},
		reconcile: func(ctx context.Context) {
			_ = s.FetchMyGoals(ctx, 0)
		},
		event: func(ctx context.Context) activity.Event {
			return activity.BuildGoalEvent(activity.VerbGoalCreated, s.rt.activityInput(ctx, 0, payload.EmployeeID, map[string]any{
				"title":       payload.Title,
				"key_results": len(payload.KeyResults),
			}))
		},
	})
}

// UpdateGoal replaces the goal's text and key results. Only DRAFT and
// REJECTED goals are accepted by the server.
func (s *GoalsStore) UpdateGoal(ctx context.Context, id int64, input UpdateGoalInput) Result {
	payload := input.normalized()
	return s.transition(ctx, ActionUpdateGoal, activity.VerbGoalUpdated, id, input.Validate, func(ctx context.Context) error {
		return s.api.Update(ctx, id, payload)
	}, nil)
}

// DeleteGoal deletes the goal and reloads the current page of the caller's
// goals. The server decides what that page holds afterwards.
func (s *GoalsStore) DeleteGoal(ctx context.Context, id int64) Result {
	return s.transition(ctx, ActionDeleteGoal, activity.VerbGoalDeleted, id, nil, func(ctx context.Context) error {
		return s.api.Delete(ctx, id)
	}, nil)
}

// SubmitGoal moves a DRAFT goal to SUBMITTED.
func (s *GoalsStore) SubmitGoal(ctx context.Context, id int64) Result {
	return s.transition(ctx, ActionSubmitGoal, activity.VerbGoalSubmitted, id, nil, func(ctx context.Context) error {
		return s.api.Submit(ctx, id)
	}, map[string]any{"status": string(GoalSubmitted)})
}

// ApproveGoal moves a SUBMITTED goal to COMPLETED.
func (s *GoalsStore) ApproveGoal(ctx context.Context, id int64) Result {
	return s.transition(ctx, ActionApproveGoal, activity.VerbGoalApproved, id, nil, func(ctx context.Context) error {
		return s.api.Approve(ctx, id)
	}, map[string]any{"status": string(GoalCompleted)})
}

// RejectGoal moves a SUBMITTED goal to REJECTED. A blank reason is refused
// without contacting the server.
func (s *GoalsStore) RejectGoal(ctx context.Context, id int64, reason string) Result {
	return s.transition(ctx, ActionRejectGoal, activity.VerbGoalRejected, id, func() error {
		return validateReason(reason)
	}, func(ctx context.Context) error {
		return s.api.Reject(ctx, id, reason)
	}, map[string]any{"status": string(GoalRejected), "reason": reason})
}

// UpdateKeyResultProgress records a new current value for a key result and
// patches it into both views without refetching.
func (s *GoalsStore) UpdateKeyResultProgress(ctx context.Context, keyResultID int64, value float64) Result {
	var owner Goal
	return s.rt.run(ctx, mutation{
		action: ActionUpdateProgress,
		validate: func() error {
			if keyResultID <= 0 {
				return invalid("keyResultId", "A key result is required.")
			}
			return validateProgress(value)
		},
		call: func(ctx context.Context) error {
			owner, _ = s.keyResultOwner(keyResultID)
			return s.api.UpdateKeyResultProgress(ctx, keyResultID, value)
		},
		reconcile: func(context.Context) {
			s.rt.store.Update(func(prev GoalsState) (GoalsState, bool) {
				mine, mineChanged := PatchKeyResultProgress(prev.Mine.Items, keyResultID, value)
				team, teamChanged := PatchKeyResultProgress(prev.Team.Items, keyResultID, value)
				if !mineChanged && !teamChanged {
					return prev, false
				}
				prev.Mine.Items = mine
				prev.Team.Items = team
				return prev, true
			})
		},
		event: func(ctx context.Context) activity.Event {
			meta := map[string]any{"value": value}
			if owner.ID != 0 {
				meta["goal_id"] = owner.ID
			}
			return activity.BuildKeyResultEvent(activity.VerbProgressUpdated, s.rt.activityInput(ctx, keyResultID, owner.EmployeeID, meta))
		},
	})
}

type goalView int

const (
	viewMine goalView = iota
	viewTeam
)

var goalPrimaryView = map[Action]goalView{
	ActionUpdateGoal:  viewMine,
	ActionDeleteGoal:  viewMine,
	ActionSubmitGoal:  viewMine,
	ActionApproveGoal: viewTeam,
	ActionRejectGoal:  viewTeam,
}

// transition runs a goal action that targets an existing goal and then
// refreshes the views that may show it.
func (s *GoalsStore) transition(
	ctx context.Context,
	action Action,
	verb string,
	id int64,
	validate func() error,
	call func(context.Context) error,
	metadata map[string]any,
) Result {
	var target Goal
	return s.rt.run(ctx, mutation{
		action: action,
		validate: func() error {
			if id <= 0 {
				return invalid("id", "A goal is required.")
			}
			if validate != nil {
				return validate()
			}
			return nil
		},
		call: func(ctx context.Context) error {
			target, _ = s.goal(id)
			return call(ctx)
		},
		reconcile: func(ctx context.Context) {
			s.refresh(ctx, goalPrimaryView[action], id)
		},
		event: func(ctx context.Context) activity.Event {
			return activity.BuildGoalEvent(verb, s.rt.activityInput(ctx, id, target.EmployeeID, metadata))
		},
	})
}

// refresh refetches the primary view at its current page, and the other view
// too when it currently shows the goal.
func (s *GoalsStore) refresh(ctx context.Context, primary goalView, id int64) {
	snapshot := s.State()
	if primary == viewTeam {
		_ = s.FetchTeamGoals(ctx, snapshot.Team.Page)
		if containsGoal(snapshot.Mine.Items, id) {
			_ = s.FetchMyGoals(ctx, snapshot.Mine.Page)
		}
		return
	}
	_ = s.FetchMyGoals(ctx, snapshot.Mine.Page)
	if containsGoal(snapshot.Team.Items, id) {
		_ = s.FetchTeamGoals(ctx, snapshot.Team.Page)
	}
}

func (s *GoalsStore) goal(id int64) (Goal, bool) {
	snapshot := s.State()
	for _, items := range [][]Goal{snapshot.Mine.Items, snapshot.Team.Items} {
		for _, goal := range items {
			if goal.ID == id {
				return goal, true
			}
		}
	}
	return Goal{}, false
}

func (s *GoalsStore) keyResultOwner(krID int64) (Goal, bool) {
	snapshot := s.State()
	for _, items := range [][]Goal{snapshot.Mine.Items, snapshot.Team.Items} {
		for _, goal := range items {
			if keyResultIndex(goal.KeyResults, krID) >= 0 {
				return goal, true
			}
		}
	}
	return Goal{}, false
}
