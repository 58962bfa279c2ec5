// Package ci generates and checks the GitHub-Actions workflow devflow
// derives from a project's `pr` target profile, per spec §4.8.
package ci

import (
	"bytes"
	"strings"

	"github.com/pmezard/go-difflib/difflib"
	"gopkg.in/yaml.v3"

	"github.com/devflow-sh/devflow/internal/config"
	dferrors "github.com/devflow-sh/devflow/internal/errors"
	"github.com/devflow-sh/devflow/internal/policy"
)

// DefaultPath is where `ci:generate` writes and `ci:check` reads by default.
const DefaultPath = ".github/workflows/ci.yml"

const (
	jobPrep  = "prep"
	jobBuild = "build"
)

type workflowDoc struct {
	Name string         `yaml:"name"`
	On   onSpec         `yaml:"on"`
	Jobs map[string]job `yaml:"jobs"`
}

type onSpec struct {
	Push        branchFilter `yaml:"push"`
	PullRequest branchFilter `yaml:"pull_request"`
}

type branchFilter struct {
	Branches []string `yaml:"branches"`
}

type job struct {
	RunsOn string   `yaml:"runs-on"`
	Needs  []string `yaml:"needs,omitempty"`
	Steps  []step   `yaml:"steps"`
}

type step struct {
	Name string            `yaml:"name,omitempty"`
	Uses string            `yaml:"uses,omitempty"`
	With map[string]string `yaml:"with,omitempty"`
	Run  string            `yaml:"run,omitempty"`
}

// JobID returns the `check_<command>` job id a target profile literal maps
// to, rewriting the ":" separator to "_" the same way a custom delegate's
// target name is rewritten (internal/registry.delegateAction).
func JobID(literal string) string {
	return "check_" + strings.ReplaceAll(literal, ":", "_")
}

// Generate builds the workflow document for cfg's `pr` target profile.
func Generate(cfg *config.Config) (*workflowDoc, error) {
	literals := cfg.Targets["pr"]

	jobs := map[string]job{
		jobPrep: {
			RunsOn: "ubuntu-latest",
			Steps: []step{
				{Name: "Checkout", Uses: "actions/checkout@v4"},
				{Name: "Set up toolchain", Uses: "actions/setup-go@v5", With: map[string]string{"go-version": "stable"}},
				{Name: "Scan for vulnerabilities", Uses: "aquasecurity/trivy-action@master", With: map[string]string{"scan-type": "fs", "exit-code": "1"}},
			},
		},
		jobBuild: {
			RunsOn: "ubuntu-latest",
			Needs:  []string{jobPrep},
			Steps: []step{
				{Name: "Checkout", Uses: "actions/checkout@v4"},
				{Name: "Warm build cache", Run: "dwf build:release"},
			},
		},
	}

	for _, literal := range literals {
		jobs[JobID(literal)] = job{
			RunsOn: "ubuntu-latest",
			Needs:  []string{jobBuild},
			Steps: []step{
				{Name: "Checkout", Uses: "actions/checkout@v4"},
				{Name: "Run " + literal, Run: "dwf " + literal},
			},
		}
	}

	name := cfg.Project.Name
	if name == "" {
		name = "devflow"
	}

	return &workflowDoc{
		Name: name,
		On: onSpec{
			Push:        branchFilter{Branches: []string{"main"}},
			PullRequest: branchFilter{Branches: []string{"main"}},
		},
		Jobs: jobs,
	}, nil
}

// Marshal renders doc as canonical YAML: two-space indent, trailing newline.
func Marshal(doc *workflowDoc) ([]byte, error) {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(doc); err != nil {
		return nil, dferrors.Internal("failed to marshal workflow", err)
	}
	if err := enc.Close(); err != nil {
		return nil, dferrors.Internal("failed to marshal workflow", err)
	}
	return buf.Bytes(), nil
}

// GenerateYAML is the ci:generate entry point: build and canonically
// marshal the workflow for cfg.
func GenerateYAML(cfg *config.Config) ([]byte, error) {
	doc, err := Generate(cfg)
	if err != nil {
		return nil, err
	}
	return Marshal(doc)
}

// Check implements ci:check: parse existing, verify topology against cfg's
// current `pr` profile, then compare the canonicalized forms byte-for-byte.
// Any mismatch is reported as WorkflowDrift carrying a unified diff.
func Check(cfg *config.Config, path string, existing []byte) error {
	var onDisk workflowDoc
	dec := yaml.NewDecoder(bytes.NewReader(existing))
	dec.KnownFields(true)
	if err := dec.Decode(&onDisk); err != nil {
		return dferrors.Wrap(err, dferrors.CategoryCI, dferrors.CodeWorkflowDrift, "on-disk workflow is not valid YAML").WithContext("path", path)
	}

	expectedDoc, err := Generate(cfg)
	if err != nil {
		return err
	}

	if missing := missingJobs(onDisk, expectedDoc); len(missing) > 0 {
		expected, err := Marshal(expectedDoc)
		if err != nil {
			return err
		}
		return dferrors.WorkflowDrift(path, unifiedDiff(existing, expected)).
			WithHint("missing jobs: " + strings.Join(missing, ", "))
	}

	canonicalOnDisk, err := Marshal(&onDisk)
	if err != nil {
		return err
	}
	expected, err := Marshal(expectedDoc)
	if err != nil {
		return err
	}

	if !bytes.Equal(canonicalOnDisk, expected) {
		return dferrors.WorkflowDrift(path, unifiedDiff(canonicalOnDisk, expected))
	}
	return nil
}

// missingJobs reports topology violations: jobs Generate would emit that
// are absent from onDisk, or present but missing their expected `needs`
// dependency.
func missingJobs(onDisk workflowDoc, expected *workflowDoc) []string {
	var missing []string
	for id, wantJob := range expected.Jobs {
		gotJob, ok := onDisk.Jobs[id]
		if !ok {
			missing = append(missing, id)
			continue
		}
		for _, need := range wantJob.Needs {
			if !contains(gotJob.Needs, need) {
				missing = append(missing, id)
				break
			}
		}
	}
	return missing
}

func contains(list []string, want string) bool {
	for _, v := range list {
		if v == want {
			return true
		}
	}
	return false
}

func unifiedDiff(a, b []byte) string {
	diff := difflib.UnifiedDiff{
		A:        difflib.SplitLines(string(a)),
		B:        difflib.SplitLines(string(b)),
		FromFile: "on-disk",
		ToFile:   "expected",
		Context:  3,
	}
	diffStr, err := difflib.GetUnifiedDiffString(diff)
	if err != nil {
		return ""
	}
	return diffStr
}

// Plan implements ci:plan: the ordered list of target profile names,
// reusing the policy package's reserved-name-first ordering.
func Plan(cfg *config.Config) []string {
	return policy.Plan(cfg)
}
