package perfsync

// GoalStatus is the lifecycle state of a Goal.
type GoalStatus string

const (
	GoalDraft     GoalStatus = "DRAFT"
	GoalSubmitted GoalStatus = "SUBMITTED"
	GoalCompleted GoalStatus = "COMPLETED"
	GoalRejected  GoalStatus = "REJECTED"
)

// Goal is an employee objective measured by one or more key results.
type Goal struct {
	ID          int64       `json:"id"`
	Title       string      `json:"title"`
	Description string      `json:"description"`
	EmployeeID  int64       `json:"employeeId"`
	Status      GoalStatus  `json:"status"`
	CycleName   string      `json:"cycleName,omitempty"`
	KeyResults  []KeyResult `json:"keyResults"`
}

// Editable reports whether the goal may still be changed by its owner.
func (g Goal) Editable() bool {
	return g.Status == GoalDraft || g.Status == GoalRejected
}

// KeyResult returns the key result with id, if the goal owns it.
func (g Goal) KeyResult(id int64) (KeyResult, bool) {
	for _, kr := range g.KeyResults {
		if kr.ID == id {
			return kr, true
		}
	}
	return KeyResult{}, false
}

// KeyResult is a measurable sub-target owned by exactly one Goal.
type KeyResult struct {
	ID           int64   `json:"id"`
	Metric       string  `json:"metric"`
	TargetValue  float64 `json:"targetValue"`
	CurrentValue float64 `json:"currentValue"`
}

// Progress returns CurrentValue/TargetValue clamped to [0, 1].
func (kr KeyResult) Progress() float64 {
	if kr.TargetValue <= 0 {
		return 0
	}
	ratio := kr.CurrentValue / kr.TargetValue
	switch {
	case ratio < 0:
		return 0
	case ratio > 1:
		return 1
	default:
		return ratio
	}
}

// GoalsState is the snapshot published by a GoalsStore.
type GoalsState struct {
	Mine  CollectionView[Goal]
	Team  CollectionView[Goal]
	Error string
}

// CollectionView is one cached page of a server-side list.
type CollectionView[T any] struct {
	Items      []T
	Page       int
	TotalPages int
	Loading    bool
	Error      string
}

func containsGoal(goals []Goal, id int64) bool {
	for _, goal := range goals {
		if goal.ID == id {
			return true
		}
	}
	return false
}
