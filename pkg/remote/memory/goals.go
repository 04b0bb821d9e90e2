package memory

import (
	"context"
	"slices"
	"strings"

	perfsync "github.com/goliatone/go-perfsync"
)

// Goal operations, as accepted by FailNext and Calls.
const (
	OpListMine       = "goals.list_mine"
	OpListTeam       = "goals.list_team"
	OpCreateGoal     = "goals.create"
	OpUpdateGoal     = "goals.update"
	OpDeleteGoal     = "goals.delete"
	OpSubmitGoal     = "goals.submit"
	OpApproveGoal    = "goals.approve"
	OpRejectGoal     = "goals.reject"
	OpUpdateProgress = "key_results.progress"
)

// Goals is an in-memory GoalsAPI acting on behalf of one signed-in user who
// manages the given reports.
type Goals struct {
	server

	self    int64
	reports map[int64]bool
	cycle   string
	nextID  int64
	nextKR  int64
	goals   []perfsync.Goal
	reasons map[int64]string
}

// NewGoals returns an empty goal server for user self.
func NewGoals(self int64, reports ...int64) *Goals {
	g := &Goals{
		server:  newServer(),
		self:    self,
		reports: map[int64]bool{},
		cycle:   "Active cycle",
		reasons: map[int64]string{},
	}
	for _, id := range reports {
		g.reports[id] = true
	}
	return g
}

// Seed stores goals as-is, assigning ids to goals and key results that have
// none.
func (g *Goals) Seed(goals ...perfsync.Goal) {
	g.mu.Lock()
	defer g.mu.Unlock()
	for _, goal := range goals {
		if goal.ID == 0 {
			g.nextID++
			goal.ID = g.nextID
		}
		g.nextID = max(g.nextID, goal.ID)
		krs := make([]perfsync.KeyResult, len(goal.KeyResults))
		for i, kr := range goal.KeyResults {
			if kr.ID == 0 {
				g.nextKR++
				kr.ID = g.nextKR
			}
			g.nextKR = max(g.nextKR, kr.ID)
			krs[i] = kr
		}
		goal.KeyResults = krs
		if goal.Status == "" {
			goal.Status = perfsync.GoalDraft
		}
		g.goals = append(g.goals, goal)
	}
}

// Goal returns a copy of the stored goal.
func (g *Goals) Goal(id int64) (perfsync.Goal, bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if idx := g.index(id); idx >= 0 {
		return cloneGoal(g.goals[idx]), true
	}
	return perfsync.Goal{}, false
}

// RejectionReason returns the reason recorded by the last rejection of id.
func (g *Goals) RejectionReason(id int64) string {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.reasons[id]
}

// AverageProgress is the mean key result progress over an employee's goals,
// in [0, 1].
func (g *Goals) AverageProgress(employeeID int64) float64 {
	g.mu.Lock()
	defer g.mu.Unlock()
	var sum float64
	var n int
	for _, goal := range g.goals {
		if goal.EmployeeID != employeeID {
			continue
		}
		for _, kr := range goal.KeyResults {
			sum += kr.Progress()
			n++
		}
	}
	if n == 0 {
		return 0
	}
	return sum / float64(n)
}

func (g *Goals) ListMine(ctx context.Context, number, size int) (map[string]any, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if err := g.begin(ctx, OpListMine); err != nil {
		return nil, err
	}
	return page(OpListMine, g.filter(func(goal perfsync.Goal) bool {
		return goal.EmployeeID == g.self
	}), number, size)
}

func (g *Goals) ListTeam(ctx context.Context, number, size int) (map[string]any, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if err := g.begin(ctx, OpListTeam); err != nil {
		return nil, err
	}
	return page(OpListTeam, g.filter(func(goal perfsync.Goal) bool {
		return g.reports[goal.EmployeeID]
	}), number, size)
}

func (g *Goals) Create(ctx context.Context, input perfsync.CreateGoalInput) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if err := g.begin(ctx, OpCreateGoal); err != nil {
		return err
	}
	if input.EmployeeID != g.self && !g.reports[input.EmployeeID] {
		return forbidden(OpCreateGoal)
	}
	if len(input.KeyResults) == 0 || strings.TrimSpace(input.Title) == "" {
		return badRequest(OpCreateGoal, "A goal needs a title and at least one key result.")
	}
	g.nextID++
	goal := perfsync.Goal{
		ID:          g.nextID,
		Title:       input.Title,
		Description: input.Description,
		EmployeeID:  input.EmployeeID,
		Status:      perfsync.GoalDraft,
		CycleName:   g.cycle,
	}
	for _, kr := range input.KeyResults {
		g.nextKR++
		goal.KeyResults = append(goal.KeyResults, perfsync.KeyResult{ID: g.nextKR, Metric: kr.Metric, TargetValue: kr.TargetValue})
	}
	g.goals = append(g.goals, goal)
	return nil
}

func (g *Goals) Update(ctx context.Context, id int64, input perfsync.UpdateGoalInput) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if err := g.begin(ctx, OpUpdateGoal); err != nil {
		return err
	}
	goal, err := g.owned(OpUpdateGoal, id)
	if err != nil {
		return err
	}
	if !goal.Editable() {
		return conflict(OpUpdateGoal, "Only draft or rejected goals can be edited.")
	}

	krs := make([]perfsync.KeyResult, 0, len(input.KeyResults))
	for _, in := range input.KeyResults {
		if in.ID != 0 {
			existing, ok := goal.KeyResult(in.ID)
			if !ok {
				return notFound(OpUpdateGoal, "Key result not found.")
			}
			existing.Metric = in.Metric
			existing.TargetValue = in.TargetValue
			krs = append(krs, existing)
			continue
		}
		g.nextKR++
		krs = append(krs, perfsync.KeyResult{ID: g.nextKR, Metric: in.Metric, TargetValue: in.TargetValue})
	}
	goal.Title = input.Title
	goal.Description = input.Description
	goal.KeyResults = krs
	g.goals[g.index(id)] = goal
	return nil
}

func (g *Goals) Delete(ctx context.Context, id int64) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if err := g.begin(ctx, OpDeleteGoal); err != nil {
		return err
	}
	goal, err := g.owned(OpDeleteGoal, id)
	if err != nil {
		return err
	}
	if !goal.Editable() {
		return conflict(OpDeleteGoal, "Only draft or rejected goals can be deleted.")
	}
	g.goals = slices.Delete(g.goals, g.index(id), g.index(id)+1)
	return nil
}

func (g *Goals) Submit(ctx context.Context, id int64) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if err := g.begin(ctx, OpSubmitGoal); err != nil {
		return err
	}
	goal, err := g.owned(OpSubmitGoal, id)
	if err != nil {
		return err
	}
	if goal.Status != perfsync.GoalDraft {
		return conflict(OpSubmitGoal, "Only draft goals can be submitted.")
	}
	g.setStatus(id, perfsync.GoalSubmitted)
	return nil
}

func (g *Goals) Approve(ctx context.Context, id int64) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if err := g.begin(ctx, OpApproveGoal); err != nil {
		return err
	}
	goal, err := g.managed(OpApproveGoal, id)
	if err != nil {
		return err
	}
	if goal.Status != perfsync.GoalSubmitted {
		return conflict(OpApproveGoal, "Only submitted goals can be approved.")
	}
	g.setStatus(id, perfsync.GoalCompleted)
	return nil
}

func (g *Goals) Reject(ctx context.Context, id int64, reason string) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if err := g.begin(ctx, OpRejectGoal); err != nil {
		return err
	}
	goal, err := g.managed(OpRejectGoal, id)
	if err != nil {
		return err
	}
	if goal.Status != perfsync.GoalSubmitted {
		return conflict(OpRejectGoal, "Only submitted goals can be rejected.")
	}
	if strings.TrimSpace(reason) == "" {
		return badRequest(OpRejectGoal, "A rejection reason is required.")
	}
	g.setStatus(id, perfsync.GoalRejected)
	g.reasons[id] = reason
	return nil
}

func (g *Goals) UpdateKeyResultProgress(ctx context.Context, keyResultID int64, value float64) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if err := g.begin(ctx, OpUpdateProgress); err != nil {
		return err
	}
	for i, goal := range g.goals {
		idx := slices.IndexFunc(goal.KeyResults, func(kr perfsync.KeyResult) bool { return kr.ID == keyResultID })
		if idx < 0 {
			continue
		}
		if goal.EmployeeID != g.self {
			return forbidden(OpUpdateProgress)
		}
		krs := slices.Clone(goal.KeyResults)
		krs[idx].CurrentValue = value
		g.goals[i].KeyResults = krs
		return nil
	}
	return notFound(OpUpdateProgress, "Key result not found.")
}

func (g *Goals) filter(keep func(perfsync.Goal) bool) []perfsync.Goal {
	out := []perfsync.Goal{}
	for _, goal := range g.goals {
		if keep(goal) {
			out = append(out, goal)
		}
	}
	return out
}

func (g *Goals) index(id int64) int {
	return slices.IndexFunc(g.goals, func(goal perfsync.Goal) bool { return goal.ID == id })
}

func (g *Goals) owned(op string, id int64) (perfsync.Goal, error) {
	idx := g.index(id)
	if idx < 0 {
		return perfsync.Goal{}, notFound(op, "Goal not found.")
	}
	if g.goals[idx].EmployeeID != g.self {
		return perfsync.Goal{}, forbidden(op)
	}
	return cloneGoal(g.goals[idx]), nil
}

func (g *Goals) managed(op string, id int64) (perfsync.Goal, error) {
	idx := g.index(id)
	if idx < 0 {
		return perfsync.Goal{}, notFound(op, "Goal not found.")
	}
	if !g.reports[g.goals[idx].EmployeeID] {
		return perfsync.Goal{}, forbidden(op)
	}
	return cloneGoal(g.goals[idx]), nil
}

func (g *Goals) setStatus(id int64, status perfsync.GoalStatus) {
	g.goals[g.index(id)].Status = status
}

func cloneGoal(goal perfsync.Goal) perfsync.Goal {
	goal.KeyResults = slices.Clone(goal.KeyResults)
	return goal
}

var _ perfsync.GoalsAPI = (*Goals)(nil)
