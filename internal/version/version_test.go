package version

import "testing"

func TestString_DevBuild(t *testing.T) {
	if got, want := String(), "dev (unknown commit)"; got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestString_ReleaseBuild(t *testing.T) {
	orig := Version
	Version = "v1.2.3"
	Commit = "abc123"
	BuildDate = "2026-07-31"
	defer func() { Version = orig; Commit = "unknown"; BuildDate = "unknown" }()

	if got, want := String(), "v1.2.3 (abc123, built 2026-07-31)"; got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}
