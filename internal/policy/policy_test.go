package policy

import (
	"reflect"
	"testing"

	"github.com/devflow-sh/devflow/internal/config"
)

func TestExpand_PreservesOrderAndDuplicates(t *testing.T) {
	cfg := &config.Config{
		Targets: map[string][]string{
			"pr": {"fmt:check", "test:unit", "test:unit", "lint:static"},
		},
	}

	refs, err := Expand(cfg, "pr")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	got := make([]string, len(refs))
	for i, ref := range refs {
		got[i] = ref.String()
	}

	want := []string{"fmt:check", "test:unit", "test:unit", "lint:static"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("got %v, want %v", got, want)
	}
}

func TestExpand_UnknownProfile(t *testing.T) {
	cfg := &config.Config{Targets: map[string][]string{}}

	if _, err := Expand(cfg, "nonexistent"); err == nil {
		t.Fatal("expected error for unknown profile")
	}
}

func TestExpand_BadLiteral(t *testing.T) {
	cfg := &config.Config{
		Targets: map[string][]string{
			"pr": {"deploy:prod"},
		},
	}

	if _, err := Expand(cfg, "pr"); err == nil {
		t.Fatal("expected error for unparseable target literal")
	}
}

func TestPlan_ReservedNamesFirst(t *testing.T) {
	cfg := &config.Config{
		Targets: map[string][]string{
			"release": {},
			"staging": {},
			"pr":      {},
			"alpha":   {},
			"main":    {},
		},
	}

	got := Plan(cfg)
	want := []string{"pr", "main", "release", "alpha", "staging"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("got %v, want %v", got, want)
	}
}

func TestPlan_SkipsAbsentReservedNames(t *testing.T) {
	cfg := &config.Config{
		Targets: map[string][]string{
			"main":    {},
			"staging": {},
		},
	}

	got := Plan(cfg)
	want := []string{"main", "staging"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("got %v, want %v", got, want)
	}
}

func TestPlan_Empty(t *testing.T) {
	cfg := &config.Config{Targets: map[string][]string{}}

	got := Plan(cfg)
	if len(got) != 0 {
		t.Errorf("got %v, want empty", got)
	}
}
