package perfsync

// Action names one operation of the goal or rating stores. Actions key the
// fallback messages, the log events and the policy rules.
type Action string

const (
	ActionFetchMyGoals   Action = "goals.fetch_mine"
	ActionFetchTeamGoals Action = "goals.fetch_team"
	ActionCreateGoal     Action = "goal.create"
	ActionUpdateGoal     Action = "goal.update"
	ActionDeleteGoal     Action = "goal.delete"
	ActionSubmitGoal     Action = "goal.submit"
	ActionApproveGoal    Action = "goal.approve"
	ActionRejectGoal     Action = "goal.reject"
	ActionUpdateProgress Action = "key_result.progress"

	ActionFetchMyRating           Action = "ratings.fetch_mine"
	ActionFetchActiveCycleRatings Action = "ratings.fetch_team"
	ActionCreateRating            Action = "rating.create"
	ActionUpdateManagerRating     Action = "rating.update_manager"
	ActionSubmitRating            Action = "rating.submit"
	ActionCalibrateRating         Action = "rating.calibrate"
)

var defaultMessages = map[Action]string{
	ActionFetchMyGoals:   "Unable to load goals right now.",
	ActionFetchTeamGoals: "Unable to load team goals right now.",
	ActionCreateGoal:     "Unable to create goal.",
	ActionUpdateGoal:     "Unable to update goal.",
	ActionDeleteGoal:     "Unable to delete goal.",
	ActionSubmitGoal:     "Unable to submit goal.",
	ActionApproveGoal:    "Unable to approve goal.",
	ActionRejectGoal:     "Unable to reject goal.",
	ActionUpdateProgress: "Failed to update progress",

	ActionFetchMyRating:           "Unable to load your rating right now.",
	ActionFetchActiveCycleRatings: "Unable to load ratings right now.",
	ActionCreateRating:            "Failed to create rating.",
	ActionUpdateManagerRating:     "Unable to update rating.",
	ActionSubmitRating:            "Unable to submit rating.",
	ActionCalibrateRating:         "Unable to calibrate rating.",
}

// Known reports whether a is one of the actions defined by this package.
func (a Action) Known() bool {
	_, ok := defaultMessages[a]
	return ok
}

// FallbackMessage returns the built-in message used when a failure carries
// no user-facing text.
func (a Action) FallbackMessage() string {
	if msg, ok := defaultMessages[a]; ok {
		return msg
	}
	return "Something went wrong."
}

// Result is the outcome of every store action. Message is set whenever OK is
// false; Err carries the underlying cause for callers that need errors.Is.
type Result struct {
	OK      bool
	Message string
	Err     error
}

func succeeded() Result {
	return Result{OK: true}
}
