package perfsync

import (
	"errors"
	"fmt"
	"math"
	"strings"
	"testing"
)

type carrierError struct{ msg string }

func (e carrierError) Error() string       { return "carrier" }
func (e carrierError) UserMessage() string { return e.msg }

func TestRemoteErrorFormatting(t *testing.T) {
	base := errors.New("eof")
	cases := []struct {
		err  *RemoteError
		want string
	}{
		{&RemoteError{Op: "goal.approve", Status: 409, Message: "Only submitted goals can be approved."}, "perfsync: remote goal.approve status=409: Only submitted goals can be approved."},
		{&RemoteError{Err: base}, "perfsync: remote: eof"},
		{&RemoteError{Status: 500, Message: "boom", Err: base}, "perfsync: remote status=500: boom: eof"},
	}
	for _, tc := range cases {
		if got := tc.err.Error(); got != tc.want {
			t.Fatalf("expected %q, got %q", tc.want, got)
		}
	}
	if !errors.Is(cases[1].err, base) {
		t.Fatalf("expected RemoteError to unwrap")
	}
}

func TestUserMessage(t *testing.T) {
	wrapped := fmt.Errorf("transport: %w", &RemoteError{Message: "  Goal not found.  "})
	if msg, ok := UserMessage(wrapped); !ok || msg != "Goal not found." {
		t.Fatalf("expected remote message, got %q %v", msg, ok)
	}
	if _, ok := UserMessage(&RemoteError{Status: 502}); ok {
		t.Fatalf("expected no message for bare status")
	}
	if msg, ok := UserMessage(carrierError{msg: "custom"}); !ok || msg != "custom" {
		t.Fatalf("expected carrier message, got %q %v", msg, ok)
	}
	if got := messageOr(errors.New("dial tcp"), "Failed to load goals."); got != "Failed to load goals." {
		t.Fatalf("expected fallback, got %q", got)
	}
}

func TestValidationErrorMatchesSentinels(t *testing.T) {
	err := validateReason("   ")
	if !errors.Is(err, ErrValidation) || !errors.Is(err, ErrMissingReason) {
		t.Fatalf("expected validation and missing reason sentinels, got %v", err)
	}
	if msg, _ := UserMessage(err); msg != "A rejection reason is required." {
		t.Fatalf("unexpected message %q", msg)
	}
}

func TestInputValidation(t *testing.T) {
	kr := []KeyResultInput{{Metric: "NPS", TargetValue: 10}}
	cases := []struct {
		name  string
		err   error
		field string
	}{
		{"missing employee", CreateGoalInput{Title: "t", KeyResults: kr}.Validate(), "employeeId"},
		{"blank title", CreateGoalInput{Title: "  ", EmployeeID: 1, KeyResults: kr}.Validate(), "title"},
		{"long title", UpdateGoalInput{Title: strings.Repeat("x", MaxTitleLength+1), KeyResults: kr}.Validate(), "title"},
		{"long description", UpdateGoalInput{Title: "t", Description: strings.Repeat("x", MaxDescriptionLength+1), KeyResults: kr}.Validate(), "description"},
		{"no key results", UpdateGoalInput{Title: "t"}.Validate(), "keyResults"},
		{"zero target", UpdateGoalInput{Title: "t", KeyResults: []KeyResultInput{{Metric: "m"}}}.Validate(), "keyResults[0].targetValue"},
		{"infinite target", UpdateGoalInput{Title: "t", KeyResults: []KeyResultInput{{Metric: "m", TargetValue: math.Inf(1)}}}.Validate(), "keyResults[0].targetValue"},
		{"blank metric", UpdateGoalInput{Title: "t", KeyResults: []KeyResultInput{{Metric: " ", TargetValue: 1}}}.Validate(), "keyResults[0].metric"},
		{"rating employee", CreateRatingInput{ManagerJustification: "ok"}.Validate(), "employeeId"},
		{"rating justification", CreateRatingInput{EmployeeID: 2}.Validate(), "managerJustification"},
		{"manager score", UpdateManagerRatingInput{}.Validate(), "score"},
		{"calibration range", CalibrateRatingInput{NewScore: 6, Justification: "x"}.Validate(), "newScore"},
		{"calibration NaN", CalibrateRatingInput{NewScore: math.NaN(), Justification: "x"}.Validate(), "newScore"},
		{"calibration justification", CalibrateRatingInput{NewScore: 3}.Validate(), "justification"},
	}
	for _, tc := range cases {
		var verr *ValidationError
		if !errors.As(tc.err, &verr) {
			t.Fatalf("%s: expected ValidationError, got %v", tc.name, tc.err)
		}
		if verr.Field != tc.field {
			t.Fatalf("%s: expected field %q, got %q", tc.name, tc.field, verr.Field)
		}
	}

	valid := []error{
		CreateGoalInput{Title: "Increase retention", EmployeeID: 3, KeyResults: kr}.Validate(),
		UpdateManagerRatingInput{Score: 4}.Validate(),
		CalibrateRatingInput{NewScore: 5, Justification: "Calibrated"}.Validate(),
	}
	for i, err := range valid {
		if err != nil {
			t.Fatalf("case %d: expected valid input, got %v", i, err)
		}
	}
}

func TestPanicError(t *testing.T) {
	base := errors.New("nil map")
	if err := panicError(ActionDeleteGoal, base); !errors.Is(err, base) {
		t.Fatalf("expected panic error to wrap, got %v", err)
	}
	if err := panicError(ActionDeleteGoal, "boom"); err.Error() != "perfsync: goal.delete panicked: boom" {
		t.Fatalf("unexpected message %q", err.Error())
	}
}

func TestRuleErrorWrapsAndFillsMetadata(t *testing.T) {
	base := errors.New("boom")
	err := ruleError(EngineExpr, `goal.status == "DRAFT"`, ActionSubmitGoal, base)

	var evalErr *EvaluationError
	if !errors.As(err, &evalErr) {
		t.Fatalf("expected EvaluationError, got %T", err)
	}
	if !errors.Is(err, base) {
		t.Fatalf("expected base error to unwrap")
	}
	want := `perfsync: expr rule for goal.submit "goal.status == \"DRAFT\"": boom`
	if err.Error() != want {
		t.Fatalf("expected %q, got %q", want, err.Error())
	}

	partial := &EvaluationError{Engine: EngineCEL, Err: base}
	if got := ruleError(EngineExpr, "true", ActionApproveGoal, partial); got != error(partial) {
		t.Fatalf("expected the existing error back, got %v", got)
	}
	if partial.Engine != EngineCEL || partial.Expr != "true" || partial.Action != ActionApproveGoal {
		t.Fatalf("expected only missing fields filled, got %+v", partial)
	}
	if ruleError(EngineExpr, "true", "", nil) != nil {
		t.Fatalf("expected nil passthrough")
	}
}

func TestCompileRejectsEmptyRule(t *testing.T) {
	for _, e := range []Evaluator{NewExprEvaluator(), NewCELEvaluator()} {
		_, err := e.Compile("   ")
		if !errors.Is(err, errEmptyRule) {
			t.Fatalf("%s: expected empty rule error, got %v", evaluatorEngineName(e), err)
		}
	}
}
