package merge

import (
	"reflect"
	"testing"
)

type nested struct {
	Engine string
	Size   int
}

type sample struct {
	PageSize int
	Enabled  *bool
	Nested   nested
	Rules    map[string]string
	Tags     []string
}

func TestDefaultsFillsZeroFields(t *testing.T) {
	enabled := true
	defaults := sample{
		PageSize: 25,
		Enabled:  &enabled,
		Nested:   nested{Engine: "expr", Size: 128},
		Rules:    map[string]string{"goal.submit": "default-submit", "goal.approve": "default-approve"},
		Tags:     []string{"a"},
	}
	value := sample{
		Nested: nested{Engine: "cel"},
		Rules:  map[string]string{"goal.submit": "custom"},
	}

	got := Defaults(value, defaults)

	want := sample{
		PageSize: 25,
		Enabled:  &enabled,
		Nested:   nested{Engine: "cel", Size: 128},
		Rules:    map[string]string{"goal.submit": "custom", "goal.approve": "default-approve"},
		Tags:     []string{"a"},
	}
	if !reflect.DeepEqual(want, got) {
		t.Fatalf("merged mismatch:\nwant: %#v\n got: %#v", want, got)
	}
	if got.Enabled == defaults.Enabled {
		t.Fatalf("expected pointer defaults to be cloned")
	}
	got.Rules["goal.approve"] = "changed"
	if defaults.Rules["goal.approve"] != "default-approve" {
		t.Fatalf("expected defaults map untouched")
	}
}

func TestDefaultsKeepsExplicitValues(t *testing.T) {
	disabled := false
	enabled := true
	value := sample{PageSize: 10, Enabled: &disabled, Tags: []string{}}
	defaults := sample{PageSize: 25, Enabled: &enabled, Tags: []string{"x"}}

	got := Defaults(value, defaults)

	if got.PageSize != 10 {
		t.Fatalf("expected explicit page size kept, got %d", got.PageSize)
	}
	if got.Enabled == nil || *got.Enabled {
		t.Fatalf("expected explicit false kept, got %v", got.Enabled)
	}
	if got.Tags == nil || len(got.Tags) != 0 {
		t.Fatalf("expected explicit empty slice kept, got %#v", got.Tags)
	}
}

func TestDefaultsZeroValues(t *testing.T) {
	got := Defaults(sample{}, sample{})
	if !reflect.DeepEqual(sample{}, got) {
		t.Fatalf("expected zero value, got %#v", got)
	}
}
