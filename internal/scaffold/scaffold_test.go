package scaffold

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	dferrors "github.com/devflow-sh/devflow/internal/errors"
)

func TestDetect_PrefersRustOverTscOverNode(t *testing.T) {
	dir := t.TempDir()
	writeEmpty(t, dir, "package.json")
	writeEmpty(t, dir, "tsconfig.json")
	writeEmpty(t, dir, "Cargo.toml")

	if got := Detect(dir); got != "rust" {
		t.Errorf("got %q, want rust", got)
	}
}

func TestDetect_FallsBackToTsc(t *testing.T) {
	dir := t.TempDir()
	writeEmpty(t, dir, "package.json")
	writeEmpty(t, dir, "tsconfig.json")

	if got := Detect(dir); got != "tsc" {
		t.Errorf("got %q, want tsc", got)
	}
}

func TestDetect_NoMarkerReturnsEmpty(t *testing.T) {
	dir := t.TempDir()
	if got := Detect(dir); got != "" {
		t.Errorf("got %q, want empty", got)
	}
}

func TestGenerate_ProducesParseableConfig(t *testing.T) {
	data, cfg, err := Generate("rust", "widget")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(data) == 0 {
		t.Fatal("expected non-empty devflow.toml content")
	}
	if cfg.Project.Stack[0] != "rust" {
		t.Errorf("got stack %v, want [rust]", cfg.Project.Stack)
	}
	if cfg.Project.Name != "widget" {
		t.Errorf("got project name %q, want widget", cfg.Project.Name)
	}
}

func TestGenerate_UnknownTemplate(t *testing.T) {
	if _, _, err := Generate("cobol", "widget"); err == nil {
		t.Fatal("expected error for unknown template")
	}
}

func TestWrite_DetectsTemplateAndWritesBothFiles(t *testing.T) {
	dir := t.TempDir()
	writeEmpty(t, dir, "Cargo.toml")

	if err := Write(Options{Dir: dir, ProjectName: "widget"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !fileExists(filepath.Join(dir, ConfigPath)) {
		t.Error("devflow.toml was not written")
	}
	if !fileExists(filepath.Join(dir, WorkflowPath)) {
		t.Error("workflow file was not written")
	}
}

func TestWrite_NoMarkerAndNoExplicitTemplateFails(t *testing.T) {
	dir := t.TempDir()
	if err := Write(Options{Dir: dir}); err == nil {
		t.Fatal("expected error when no template can be resolved")
	}
}

func TestWrite_ExistingConfigWithoutForceFails(t *testing.T) {
	dir := t.TempDir()
	writeEmpty(t, dir, "Cargo.toml")
	writeEmpty(t, dir, ConfigPath)

	err := Write(Options{Dir: dir, ProjectName: "widget"})
	if err == nil {
		t.Fatal("expected ScaffoldExists error")
	}
	if dferrors.GetCode(err) != dferrors.CodeScaffoldExists {
		t.Errorf("got code %q, want %q", dferrors.GetCode(err), dferrors.CodeScaffoldExists)
	}
}

func TestWrite_ExistingConfigWithForceSucceeds(t *testing.T) {
	dir := t.TempDir()
	writeEmpty(t, dir, "Cargo.toml")
	writeEmpty(t, dir, ConfigPath)

	if err := Write(Options{Dir: dir, ProjectName: "widget", Force: true}); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestWrite_ExplicitTemplateOverridesMarkerDetection(t *testing.T) {
	dir := t.TempDir()
	writeEmpty(t, dir, "Cargo.toml")

	if err := Write(Options{Dir: dir, Template: "node", ProjectName: "widget"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	data, err := os.ReadFile(filepath.Join(dir, ConfigPath))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(string(data), `'node'`) {
		t.Errorf("expected devflow.toml to reference node template, got:\n%s", data)
	}
}

func writeEmpty(t *testing.T, dir, name string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name), []byte{}, 0o644); err != nil {
		t.Fatalf("failed to write %s: %v", name, err)
	}
}
