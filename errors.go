package perfsync

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrValidation    = errors.New("perfsync: validation failed")
	ErrMissingReason = errors.New("perfsync: a rejection reason is required")
	ErrUnknownAction = errors.New("perfsync: unknown action")
	ErrNoEvaluator   = errors.New("perfsync: evaluator not configured")
)

// RemoteError is the failure shape transports should return. Message is the
// user-facing text supplied by the server, if any.
type RemoteError struct {
	Op      string
	Status  int
	Message string
	Err     error
}

func (e *RemoteError) Error() string {
	if e == nil {
		return "<nil>"
	}
	var b strings.Builder
	b.WriteString("perfsync: remote")
	if e.Op != "" {
		b.WriteString(" ")
		b.WriteString(e.Op)
	}
	if e.Status != 0 {
		fmt.Fprintf(&b, " status=%d", e.Status)
	}
	switch {
	case e.Message != "" && e.Err != nil:
		fmt.Fprintf(&b, ": %s: %v", e.Message, e.Err)
	case e.Message != "":
		fmt.Fprintf(&b, ": %s", e.Message)
	case e.Err != nil:
		fmt.Fprintf(&b, ": %v", e.Err)
	}
	return b.String()
}

func (e *RemoteError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// ValidationError reports a precondition that failed before any remote call.
type ValidationError struct {
	Field  string
	Reason string
	Err    error
}

func (e *ValidationError) Error() string {
	if e == nil {
		return "<nil>"
	}
	if e.Field == "" {
		return fmt.Sprintf("perfsync: invalid input: %s", e.Reason)
	}
	return fmt.Sprintf("perfsync: invalid %s: %s", e.Field, e.Reason)
}

func (e *ValidationError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// Is lets errors.Is(err, ErrValidation) match any ValidationError.
func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

func invalid(field, reason string) error {
	return &ValidationError{Field: field, Reason: reason}
}

// UserMessage extracts the message meant for end users from err. Transport
// errors other than RemoteError can opt in by implementing
// UserMessage() string.
func UserMessage(err error) (string, bool) {
	if err == nil {
		return "", false
	}
	var remote *RemoteError
	if errors.As(err, &remote) {
		if msg := strings.TrimSpace(remote.Message); msg != "" {
			return msg, true
		}
	}
	var validation *ValidationError
	if errors.As(err, &validation) && validation.Reason != "" {
		return validation.Reason, true
	}
	var carrier interface{ UserMessage() string }
	if errors.As(err, &carrier) {
		if msg := strings.TrimSpace(carrier.UserMessage()); msg != "" {
			return msg, true
		}
	}
	return "", false
}

func messageOr(err error, fallback string) string {
	if msg, ok := UserMessage(err); ok {
		return msg
	}
	return fallback
}

func panicError(action Action, r any) error {
	if err, ok := r.(error); ok {
		return fmt.Errorf("perfsync: %s panicked: %w", action, err)
	}
	return fmt.Errorf("perfsync: %s panicked: %v", action, r)
}

// EvaluationError reports a rule that failed to compile, failed to run or
// produced something other than a bool.
type EvaluationError struct {
	Engine string
	Expr   string
	Action Action
	Err    error
}

func (e *EvaluationError) Error() string {
	if e == nil {
		return "<nil>"
	}
	subject := "rule"
	if e.Action != "" {
		subject = "rule for " + string(e.Action)
	}
	return fmt.Sprintf("perfsync: %s %s %q: %v", e.Engine, subject, e.Expr, e.Err)
}

func (e *EvaluationError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// ruleError wraps err in an EvaluationError. When err already carries one,
// its missing fields are filled in place.
func ruleError(engine, expr string, action Action, err error) error {
	if err == nil {
		return nil
	}
	var existing *EvaluationError
	if !errors.As(err, &existing) {
		return &EvaluationError{Engine: engine, Expr: expr, Action: action, Err: err}
	}
	if existing.Engine == "" {
		existing.Engine = engine
	}
	if existing.Expr == "" {
		existing.Expr = expr
	}
	if existing.Action == "" {
		existing.Action = action
	}
	return existing
}
