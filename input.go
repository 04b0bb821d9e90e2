package perfsync

import (
	"fmt"
	"math"
	"strings"
)

const (
	MaxTitleLength         = 255
	MaxDescriptionLength   = 1000
	MaxJustificationLength = 1000
	MinCalibratedScore     = 1
	MaxCalibratedScore     = 5
)

// KeyResultInput describes a key result in a create or update payload. ID is
// only set on updates that target an existing key result.
type KeyResultInput struct {
	ID          int64   `json:"id,omitempty"`
	Metric      string  `json:"metric"`
	TargetValue float64 `json:"targetValue"`
}

// CreateGoalInput is the payload of CreateGoal.
type CreateGoalInput struct {
	Title       string           `json:"title"`
	Description string           `json:"description"`
	EmployeeID  int64            `json:"employeeId"`
	KeyResults  []KeyResultInput `json:"keyResults"`
}

// Validate checks the client-side preconditions of goal creation.
func (in CreateGoalInput) Validate() error {
	if in.EmployeeID <= 0 {
		return invalid("employeeId", "An owning employee is required.")
	}
	if err := validateGoalText(in.Title, in.Description); err != nil {
		return err
	}
	return validateKeyResults(in.KeyResults)
}

func (in CreateGoalInput) normalized() CreateGoalInput {
	out := in
	out.Title = strings.TrimSpace(in.Title)
	out.Description = strings.TrimSpace(in.Description)
	out.KeyResults = normalizeKeyResults(in.KeyResults)
	return out
}

// UpdateGoalInput is the payload of UpdateGoal.
type UpdateGoalInput struct {
	Title       string           `json:"title"`
	Description string           `json:"description"`
	KeyResults  []KeyResultInput `json:"keyResults"`
}

// Validate checks the client-side preconditions of a goal update.
func (in UpdateGoalInput) Validate() error {
	if err := validateGoalText(in.Title, in.Description); err != nil {
		return err
	}
	return validateKeyResults(in.KeyResults)
}

func (in UpdateGoalInput) normalized() UpdateGoalInput {
	out := in
	out.Title = strings.TrimSpace(in.Title)
	out.Description = strings.TrimSpace(in.Description)
	out.KeyResults = normalizeKeyResults(in.KeyResults)
	return out
}

// CreateRatingInput is the payload of CreateRating. The score is computed by
// the server.
type CreateRatingInput struct {
	EmployeeID           int64  `json:"employeeId"`
	ManagerJustification string `json:"managerJustification"`
}

// Validate checks the client-side preconditions of rating creation.
func (in CreateRatingInput) Validate() error {
	if in.EmployeeID <= 0 {
		return invalid("employeeId", "Please fill all rating fields before creating.")
	}
	if strings.TrimSpace(in.ManagerJustification) == "" {
		return invalid("managerJustification", "Please fill all rating fields before creating.")
	}
	return checkLength("managerJustification", in.ManagerJustification, MaxJustificationLength)
}

// UpdateManagerRatingInput is the payload of UpdateManagerRating.
type UpdateManagerRatingInput struct {
	Score         int    `json:"score"`
	Justification string `json:"justification"`
}

// Validate checks the client-side preconditions of a manager rating update.
func (in UpdateManagerRatingInput) Validate() error {
	if in.Score <= 0 {
		return invalid("score", "Score must be positive.")
	}
	return checkLength("justification", in.Justification, MaxJustificationLength)
}

// CalibrateRatingInput is the payload of CalibrateRating.
type CalibrateRatingInput struct {
	NewScore      float64 `json:"newScore"`
	Justification string  `json:"justification"`
}

// Validate checks the client-side preconditions of an HR calibration.
func (in CalibrateRatingInput) Validate() error {
	if math.IsNaN(in.NewScore) || in.NewScore < MinCalibratedScore || in.NewScore > MaxCalibratedScore {
		return invalid("newScore", fmt.Sprintf("Score must be between %d and %d.", MinCalibratedScore, MaxCalibratedScore))
	}
	if strings.TrimSpace(in.Justification) == "" {
		return invalid("justification", "Calibration justification is required.")
	}
	return checkLength("justification", in.Justification, MaxJustificationLength)
}

func validateGoalText(title, description string) error {
	if strings.TrimSpace(title) == "" {
		return invalid("title", "Title is required.")
	}
	if err := checkLength("title", strings.TrimSpace(title), MaxTitleLength); err != nil {
		return err
	}
	return checkLength("description", strings.TrimSpace(description), MaxDescriptionLength)
}

func validateKeyResults(krs []KeyResultInput) error {
	if len(krs) == 0 {
		return invalid("keyResults", "At least one key result is required.")
	}
	for i, kr := range krs {
		field := fmt.Sprintf("keyResults[%d]", i)
		if strings.TrimSpace(kr.Metric) == "" {
			return invalid(field+".metric", "Each key result needs a metric and a target greater than 0.")
		}
		if math.IsNaN(kr.TargetValue) || math.IsInf(kr.TargetValue, 0) || kr.TargetValue <= 0 {
			return invalid(field+".targetValue", "Each key result needs a metric and a target greater than 0.")
		}
	}
	return nil
}

func normalizeKeyResults(krs []KeyResultInput) []KeyResultInput {
	if krs == nil {
		return nil
	}
	out := make([]KeyResultInput, len(krs))
	for i, kr := range krs {
		kr.Metric = strings.TrimSpace(kr.Metric)
		out[i] = kr
	}
	return out
}

func checkLength(field, value string, limit int) error {
	if len([]rune(value)) > limit {
		return invalid(field, fmt.Sprintf("%s cannot exceed %d characters.", field, limit))
	}
	return nil
}

func validateProgress(value float64) error {
	if math.IsNaN(value) || math.IsInf(value, 0) {
		return invalid("currentValue", "Progress must be a finite number.")
	}
	return nil
}

func validateReason(reason string) error {
	if strings.TrimSpace(reason) == "" {
		return &ValidationError{Field: "reason", Reason: "A rejection reason is required.", Err: ErrMissingReason}
	}
	return nil
}
