package usersink_test

import (
	"context"
	"testing"
	"time"

	"github.com/goliatone/go-perfsync/pkg/activity"
	"github.com/goliatone/go-perfsync/pkg/activity/usersink"
	usertypes "github.com/goliatone/go-users/pkg/types"
	"github.com/google/uuid"
)

type recordingSink struct {
	records []usertypes.ActivityRecord
	err     error
}

func (s *recordingSink) Log(_ context.Context, record usertypes.ActivityRecord) error {
	s.records = append(s.records, record)
	return s.err
}

func TestHookNotifyMapsEvent(t *testing.T) {
	sink := &recordingSink{}
	tenant := uuid.New()
	hook := usersink.Hook{Sink: sink, TenantID: tenant}
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

	event := activity.BuildGoalEvent(activity.VerbGoalApproved, activity.MutationInput{
		ActorID:    7,
		ActorRole:  "MANAGER",
		UserID:     3,
		ObjectID:   42,
		Channel:    "performance",
		OccurredAt: now,
	})
	if err := hook.Notify(context.Background(), event); err != nil {
		t.Fatalf("notify: %v", err)
	}

	if len(sink.records) != 1 {
		t.Fatalf("expected 1 record, got %d", len(sink.records))
	}
	record := sink.records[0]
	if record.ActorID != usersink.UserUUID("7") || record.ActorID == uuid.Nil {
		t.Fatalf("expected derived actor uuid, got %s", record.ActorID)
	}
	if record.UserID != usersink.UserUUID("3") {
		t.Fatalf("expected derived user uuid, got %s", record.UserID)
	}
	if record.TenantID != tenant {
		t.Fatalf("expected tenant %s got %s", tenant, record.TenantID)
	}
	if record.Verb != activity.VerbGoalApproved || record.ObjectType != activity.ObjectGoal || record.ObjectID != "42" {
		t.Fatalf("unexpected record payload: %+v", record)
	}
	if record.Channel != "performance" {
		t.Fatalf("expected channel performance got %q", record.Channel)
	}
	if !record.OccurredAt.Equal(now) {
		t.Fatalf("expected occurred_at %v got %v", now, record.OccurredAt)
	}
	if record.Data["actor_id"] != "7" || record.Data["user_id"] != "3" || record.Data["actor_role"] != "MANAGER" {
		t.Fatalf("expected raw ids in data, got %v", record.Data)
	}
}

func TestUserUUID(t *testing.T) {
	if usersink.UserUUID(" ") != uuid.Nil {
		t.Fatalf("expected nil uuid for blank input")
	}
	explicit := uuid.New()
	if usersink.UserUUID(explicit.String()) != explicit {
		t.Fatalf("expected uuid input to be parsed")
	}
	if usersink.UserUUID("12") != usersink.UserUUID("12") {
		t.Fatalf("expected derived uuids to be stable")
	}
	if usersink.UserUUID("12") == usersink.UserUUID("13") {
		t.Fatalf("expected distinct ids to map to distinct uuids")
	}
}

func TestHookNotifySkipsIncompleteEvents(t *testing.T) {
	sink := &recordingSink{}
	hook := usersink.Hook{Sink: sink}

	_ = hook.Notify(context.Background(), activity.Event{})

	if len(sink.records) != 0 {
		t.Fatalf("expected no records for empty event, got %d", len(sink.records))
	}
}

func TestHookNotifyWithoutSink(t *testing.T) {
	hook := usersink.Hook{}
	if err := hook.Notify(context.Background(), activity.Event{Verb: "goal.created"}); err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
}
