package memory_test

import (
	"context"
	"errors"
	"net/http"
	"testing"

	perfsync "github.com/goliatone/go-perfsync"
	"github.com/goliatone/go-perfsync/pkg/remote/memory"
)

func TestGoalsPaginatesLikeTheAPI(t *testing.T) {
	goals := memory.NewGoals(1)
	for i := 0; i < 5; i++ {
		goals.Seed(perfsync.Goal{EmployeeID: 1, Title: "goal", KeyResults: []perfsync.KeyResult{{Metric: "m", TargetValue: 1}}})
	}

	payload, err := goals.ListMine(context.Background(), 2, 2)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if payload["number"] != float64(2) || payload["totalPages"] != float64(3) {
		t.Fatalf("unexpected paging: %v", payload)
	}
	content, ok := payload["content"].([]any)
	if !ok || len(content) != 1 {
		t.Fatalf("expected one goal on the last page, got %v", payload["content"])
	}

	empty, err := goals.ListTeam(context.Background(), 0, 25)
	if err != nil {
		t.Fatalf("list team: %v", err)
	}
	if content, ok := empty["content"].([]any); !ok || len(content) != 0 {
		t.Fatalf("expected empty content list, got %v", empty["content"])
	}
}

func TestGoalsEnforcesTransitions(t *testing.T) {
	ctx := context.Background()
	employee := memory.NewGoals(3)
	employee.Seed(perfsync.Goal{ID: 10, EmployeeID: 3, Status: perfsync.GoalSubmitted, KeyResults: []perfsync.KeyResult{{ID: 1, Metric: "m", TargetValue: 1}}})

	err := employee.Submit(ctx, 10)
	var remote *perfsync.RemoteError
	if !errors.As(err, &remote) || remote.Status != http.StatusConflict {
		t.Fatalf("expected conflict submitting a submitted goal, got %v", err)
	}
	if err := employee.Delete(ctx, 10); !errors.As(err, &remote) || remote.Status != http.StatusConflict {
		t.Fatalf("expected conflict deleting a submitted goal, got %v", err)
	}
	if err := employee.Approve(ctx, 10); !errors.As(err, &remote) || remote.Status != http.StatusForbidden {
		t.Fatalf("expected employees to be unable to approve their own goals, got %v", err)
	}
}

func TestGoalsUpdateKeepsProgressOfExistingKeyResults(t *testing.T) {
	ctx := context.Background()
	goals := memory.NewGoals(3)
	goals.Seed(perfsync.Goal{ID: 4, EmployeeID: 3, Status: perfsync.GoalRejected, KeyResults: []perfsync.KeyResult{
		{ID: 7, Metric: "NPS", TargetValue: 10, CurrentValue: 6},
		{ID: 8, Metric: "Churn", TargetValue: 2},
	}})

	err := goals.Update(ctx, 4, perfsync.UpdateGoalInput{
		Title: "Retention",
		KeyResults: []perfsync.KeyResultInput{
			{ID: 7, Metric: "NPS", TargetValue: 12},
			{Metric: "CSAT", TargetValue: 90},
		},
	})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	goal, _ := goals.Goal(4)
	if len(goal.KeyResults) != 2 {
		t.Fatalf("expected removed key result to be dropped, got %+v", goal.KeyResults)
	}
	if kr := goal.KeyResults[0]; kr.ID != 7 || kr.TargetValue != 12 || kr.CurrentValue != 6 {
		t.Fatalf("expected existing key result updated in place, got %+v", kr)
	}
	if kr := goal.KeyResults[1]; kr.ID <= 8 || kr.Metric != "CSAT" {
		t.Fatalf("expected inserted key result with a fresh id, got %+v", kr)
	}
}

func TestFailNextIsConsumedOnce(t *testing.T) {
	ctx := context.Background()
	goals := memory.NewGoals(1)
	goals.FailNext(memory.OpListMine, "Service unavailable")

	if _, err := goals.ListMine(ctx, 0, 10); err == nil {
		t.Fatalf("expected injected failure")
	} else if msg, ok := perfsync.UserMessage(err); !ok || msg != "Service unavailable" {
		t.Fatalf("expected injected message, got %q", msg)
	}
	if _, err := goals.ListMine(ctx, 0, 10); err != nil {
		t.Fatalf("expected second call to succeed, got %v", err)
	}
	if got := goals.Calls(memory.OpListMine); got != 2 {
		t.Fatalf("expected 2 calls, got %d", got)
	}
}

func TestFailNextWithNilIsIgnored(t *testing.T) {
	goals := memory.NewGoals(1)
	goals.FailNextWith(memory.OpListMine, nil)
	if _, err := goals.ListMine(context.Background(), 0, 10); err != nil {
		t.Fatalf("expected nil failure to be ignored, got %v", err)
	}
}

func TestCanceledContextFails(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := memory.NewRatings(1).Submit(ctx, 1); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context error, got %v", err)
	}
}

func TestRatingsLifecycle(t *testing.T) {
	ctx := context.Background()
	ratings := memory.NewRatings(9)
	ratings.Name(3, "Ada")
	ratings.Scorer = func(int64) float64 { return 3.5 }

	if err := ratings.Create(ctx, perfsync.CreateRatingInput{EmployeeID: 3, ManagerJustification: "Solid year"}); err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := ratings.Create(ctx, perfsync.CreateRatingInput{EmployeeID: 3, ManagerJustification: "again"}); err == nil {
		t.Fatalf("expected duplicate rating to conflict")
	}
	if err := ratings.Calibrate(ctx, 1, perfsync.CalibrateRatingInput{NewScore: 4, Justification: "x"}); err == nil {
		t.Fatalf("expected calibration of a draft to conflict")
	}
	if err := ratings.Submit(ctx, 1); err != nil {
		t.Fatalf("submit: %v", err)
	}
	if err := ratings.Calibrate(ctx, 1, perfsync.CalibrateRatingInput{NewScore: 4, Justification: "Calibrated up"}); err != nil {
		t.Fatalf("calibrate: %v", err)
	}
	rating, _ := ratings.Rating(1)
	if rating.Status != perfsync.RatingCalibrated || rating.Score != 4 || rating.EmployeeName != "Ada" {
		t.Fatalf("unexpected rating: %+v", rating)
	}
}
