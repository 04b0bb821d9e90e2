package perfsync_test

import (
	"context"
	"errors"
	"testing"

	perfsync "github.com/goliatone/go-perfsync"
	"github.com/goliatone/go-perfsync/pkg/activity"
	"github.com/goliatone/go-perfsync/pkg/remote/memory"
)

func TestCreateRatingDoesNotRefetch(t *testing.T) {
	ctx := context.Background()
	api := memory.NewRatings(9)
	store := perfsync.NewRatingsStore(api)

	res := store.CreateRating(ctx, perfsync.CreateRatingInput{EmployeeID: 3, ManagerJustification: "Strong delivery"})
	if !res.OK {
		t.Fatalf("expected create to succeed, got %+v", res)
	}
	if api.Calls(memory.OpListActiveCycle) != 0 || api.Calls(memory.OpListMyRatings) != 0 {
		t.Fatalf("expected no implicit refetch")
	}
	if len(store.State().Team.Items) != 0 {
		t.Fatalf("expected team view untouched")
	}
}

func TestCreateRatingValidation(t *testing.T) {
	api := memory.NewRatings(9)
	store := perfsync.NewRatingsStore(api)

	for _, input := range []perfsync.CreateRatingInput{
		{EmployeeID: 0, ManagerJustification: "x"},
		{EmployeeID: 3, ManagerJustification: "   "},
	} {
		res := store.CreateRating(context.Background(), input)
		if res.OK || !errors.Is(res.Err, perfsync.ErrValidation) {
			t.Fatalf("expected refusal for %+v, got %+v", input, res)
		}
		if res.Message != "Please fill all rating fields before creating." {
			t.Fatalf("unexpected message %q", res.Message)
		}
	}
	if api.Calls(memory.OpCreateRating) != 0 {
		t.Fatalf("expected no remote call")
	}
}

func TestCreateRatingConflictMessage(t *testing.T) {
	api := memory.NewRatings(9)
	api.Seed(perfsync.Rating{EmployeeID: 3})
	store := perfsync.NewRatingsStore(api)

	res := store.CreateRating(context.Background(), perfsync.CreateRatingInput{EmployeeID: 3, ManagerJustification: "again"})
	if res.OK || res.Message != "A rating already exists for this employee in the active cycle." {
		t.Fatalf("expected conflict message, got %+v", res)
	}
	if store.State().Error != res.Message {
		t.Fatalf("expected error recorded, got %q", store.State().Error)
	}
}

func TestRatingTransitionsRefetchActiveCycle(t *testing.T) {
	ctx := context.Background()
	api := memory.NewRatings(9)
	api.Seed(perfsync.Rating{ID: 1, EmployeeID: 3, EmployeeName: "Ada", Score: 3})
	capture := &activity.CaptureHook{}
	store := perfsync.NewRatingsStore(api,
		perfsync.WithActivity(capture),
		perfsync.WithIdentity(perfsync.StaticIdentity(perfsync.Identity{ID: 9, Role: perfsync.RoleManager})),
	)
	mustFetch(t, store.FetchActiveCycleRatings(ctx, 0))

	if res := store.UpdateManagerRating(ctx, 1, perfsync.UpdateManagerRatingInput{Score: 4, Justification: "Raised after review"}); !res.OK {
		t.Fatalf("update: %+v", res)
	}
	if got := store.State().Team.Items[0]; got.Score != 4 || got.ManagerJustification != "Raised after review" {
		t.Fatalf("expected refetched rating, got %+v", got)
	}
	if res := store.SubmitRating(ctx, 1); !res.OK {
		t.Fatalf("submit: %+v", res)
	}
	if got := store.State().Team.Items[0].Status; got != perfsync.RatingManagerSubmitted {
		t.Fatalf("expected MANAGER_SUBMITTED, got %s", got)
	}
	if res := store.CalibrateRating(ctx, 1, perfsync.CalibrateRatingInput{NewScore: 4.5, Justification: "Calibration panel"}); !res.OK {
		t.Fatalf("calibrate: %+v", res)
	}
	if got := store.State().Team.Items[0]; got.Status != perfsync.RatingCalibrated || got.Score != 4.5 {
		t.Fatalf("expected calibrated rating, got %+v", got)
	}
	if calls := api.Calls(memory.OpListActiveCycle); calls != 4 {
		t.Fatalf("expected a refetch after every transition, got %d calls", calls)
	}

	events := capture.Events()
	if len(events) != 3 || events[2].Verb != activity.VerbRatingCalibrated || events[2].UserID != "3" {
		t.Fatalf("unexpected events: %+v", events)
	}
}

func TestCalibrateRatingValidation(t *testing.T) {
	api := memory.NewRatings(9)
	store := perfsync.NewRatingsStore(api)

	for _, input := range []perfsync.CalibrateRatingInput{
		{NewScore: 0.5, Justification: "x"},
		{NewScore: 5.5, Justification: "x"},
		{NewScore: nan(), Justification: "x"},
		{NewScore: 3, Justification: " "},
	} {
		if res := store.CalibrateRating(context.Background(), 1, input); res.OK || !errors.Is(res.Err, perfsync.ErrValidation) {
			t.Fatalf("expected refusal for %+v, got %+v", input, res)
		}
	}
	if api.Calls(memory.OpCalibrateRating) != 0 {
		t.Fatalf("expected no remote call")
	}
}

func TestFetchMyRating(t *testing.T) {
	api := memory.NewRatings(3)
	api.Seed(perfsync.Rating{EmployeeID: 3, Score: 4}, perfsync.Rating{EmployeeID: 4, Score: 2})
	store := perfsync.NewRatingsStore(api)

	mustFetch(t, store.FetchMyRating(context.Background()))
	mine := store.State().Mine
	if len(mine.Items) != 1 || mine.Items[0].Score != 4 {
		t.Fatalf("expected only the caller's rating, got %+v", mine.Items)
	}
}
