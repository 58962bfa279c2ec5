package command

import "testing"

type fakeProfiles map[string]bool

func (f fakeProfiles) HasTarget(name string) bool { return f[name] }

func TestParse_Totality(t *testing.T) {
	inputs := []string{
		"fmt", "fmt:check", "fmt:fix", "fmt:bogus",
		"", ":", "FMT", "fmt:CHECK", "check:pr", "check:custom",
		"lint:static", "init", "init:rust", "init:anything",
		"ci:generate", "ci:render", "9000", "a-b:c-d",
	}
	profiles := fakeProfiles{"pr": true, "custom": true}
	for _, in := range inputs {
		ref, err := ParseAlias(in, profiles)
		if err == nil && ref.Primary == "" {
			t.Errorf("input %q: got zero-value CommandRef with nil error", in)
		}
		// Never panics: reaching here is the property under test.
	}
}

func TestParse_ValidPrimary(t *testing.T) {
	ref, err := Parse("fmt:check", nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ref.Primary != PrimaryFmt || ref.Selector != "check" {
		t.Errorf("got %+v", ref)
	}
	if ref.String() != "fmt:check" {
		t.Errorf("String() = %q", ref.String())
	}
}

func TestParse_NoSelector(t *testing.T) {
	ref, err := Parse("build", nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ref.Primary != PrimaryBuild || ref.Selector != "" {
		t.Errorf("got %+v", ref)
	}
	if ref.String() != "build" {
		t.Errorf("String() = %q", ref.String())
	}
}

func TestParse_UnknownPrimary(t *testing.T) {
	_, err := Parse("deploy", nil)
	if err == nil {
		t.Fatal("expected error")
	}
}

func TestParse_UnknownSelector(t *testing.T) {
	_, err := Parse("fmt:bogus", nil)
	if err == nil {
		t.Fatal("expected error")
	}
}

func TestParse_CheckCustomProfile(t *testing.T) {
	profiles := fakeProfiles{"staging": true}

	ref, err := Parse("check:staging", profiles)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ref.Selector != "staging" {
		t.Errorf("got %+v", ref)
	}

	_, err = Parse("check:unknown-profile", profiles)
	if err == nil {
		t.Fatal("expected error for unknown profile")
	}
}

func TestParse_InitAcceptsAnyTemplate(t *testing.T) {
	ref, err := Parse("init:rust", nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ref.Selector != "rust" {
		t.Errorf("got %+v", ref)
	}
}

func TestRewriteAlias(t *testing.T) {
	cases := map[string]string{
		"verify":    "check",
		"smoke":     "test:smoke",
		"ci:render": "ci:generate",
		"fmt:check": "fmt:check",
	}
	for in, want := range cases {
		if got := RewriteAlias(in); got != want {
			t.Errorf("RewriteAlias(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestParseAlias_EndToEnd(t *testing.T) {
	ref, err := ParseAlias("verify", fakeProfiles{"pr": true})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ref.Primary != PrimaryCheck {
		t.Errorf("got %+v", ref)
	}

	ref, err = ParseAlias("smoke", nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ref.String() != "test:smoke" {
		t.Errorf("got %q", ref.String())
	}
}
