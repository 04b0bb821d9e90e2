package activity

import (
	"strconv"
	"strings"
	"time"
)

// Verbs emitted for goal and rating transitions.
const (
	VerbGoalCreated      = "goal.created"
	VerbGoalUpdated      = "goal.updated"
	VerbGoalDeleted      = "goal.deleted"
	VerbGoalSubmitted    = "goal.submitted"
	VerbGoalApproved     = "goal.approved"
	VerbGoalRejected     = "goal.rejected"
	VerbProgressUpdated  = "key_result.progress_updated"
	VerbRatingCreated    = "rating.created"
	VerbRatingUpdated    = "rating.updated"
	VerbRatingSubmitted  = "rating.submitted"
	VerbRatingCalibrated = "rating.calibrated"
)

// Object types.
const (
	ObjectGoal      = "goal"
	ObjectKeyResult = "key_result"
	ObjectRating    = "rating"
)

// MutationInput describes the common fields of a transition event.
type MutationInput struct {
	ActorID   int64
	ActorRole string
	// UserID is the employee the object belongs to, when known.
	UserID     int64
	ObjectID   int64
	Channel    string
	Metadata   map[string]any
	OccurredAt time.Time
}

// BuildGoalEvent constructs an event about a goal.
func BuildGoalEvent(verb string, input MutationInput) Event {
	return buildMutationEvent(verb, ObjectGoal, input)
}

// BuildKeyResultEvent constructs an event about a key result.
func BuildKeyResultEvent(verb string, input MutationInput) Event {
	return buildMutationEvent(verb, ObjectKeyResult, input)
}

// BuildRatingEvent constructs an event about a rating.
func BuildRatingEvent(verb string, input MutationInput) Event {
	return buildMutationEvent(verb, ObjectRating, input)
}

func buildMutationEvent(verb, objectType string, input MutationInput) Event {
	metadata := CloneMetadata(input.Metadata)
	if role := strings.TrimSpace(input.ActorRole); role != "" {
		metadata = ensureMetadata(metadata)
		metadata["actor_role"] = role
	}

	objectID := formatID(input.ObjectID)
	if objectID == "" {
		// creations are not told the server-assigned id
		objectID = "new"
	}

	return Event{
		Verb:       verb,
		ActorID:    formatID(input.ActorID),
		ActorRole:  strings.TrimSpace(input.ActorRole),
		UserID:     formatID(input.UserID),
		ObjectType: objectType,
		ObjectID:   objectID,
		Channel:    strings.TrimSpace(input.Channel),
		Metadata:   metadata,
		OccurredAt: input.OccurredAt,
	}
}

func formatID(id int64) string {
	if id <= 0 {
		return ""
	}
	return strconv.FormatInt(id, 10)
}

func ensureMetadata(meta map[string]any) map[string]any {
	if meta == nil {
		return map[string]any{}
	}
	return meta
}
