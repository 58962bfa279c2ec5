// Package scaffold implements `init`: detecting a project's stack from
// marker files and writing a starter devflow.toml and CI workflow, per
// spec §4.9.
package scaffold

import (
	"os"
	"path/filepath"

	"github.com/pelletier/go-toml/v2"

	"github.com/devflow-sh/devflow/internal/ci"
	"github.com/devflow-sh/devflow/internal/config"
	dferrors "github.com/devflow-sh/devflow/internal/errors"
)

// ConfigPath and WorkflowPath are the two files init writes.
const ConfigPath = "devflow.toml"

// WorkflowPath mirrors ci.DefaultPath; kept as its own name since scaffold
// and ci are independent concerns that happen to agree on the same path.
const WorkflowPath = ci.DefaultPath

// template describes one built-in project template.
type template struct {
	name         string
	marker       string // relative path whose presence detects this template
	capabilities []string
	checkTargets []string // literals for the starter `targets.pr` entry
}

var templates = []template{
	{name: "rust", marker: "Cargo.toml", capabilities: []string{"fmt:check", "fmt:fix", "lint:static", "build:debug", "build:release", "test:unit"}, checkTargets: []string{"fmt:check", "lint:static", "test:unit"}},
	{name: "tsc", marker: "tsconfig.json", capabilities: []string{"fmt:check", "fmt:fix", "lint:static", "build:debug", "test:unit"}, checkTargets: []string{"fmt:check", "lint:static", "test:unit"}},
	{name: "node", marker: "package.json", capabilities: []string{"fmt:check", "fmt:fix", "lint:static", "build:debug", "test:unit"}, checkTargets: []string{"fmt:check", "lint:static", "test:unit"}},
}

// Detect returns the template name whose marker file exists under dir, in
// the fixed precedence order Cargo.toml → tsconfig.json → package.json.
// It returns "" if none match.
func Detect(dir string) string {
	for _, t := range templates {
		if fileExists(filepath.Join(dir, t.marker)) {
			return t.name
		}
	}
	return ""
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

func lookupTemplate(name string) (template, bool) {
	for _, t := range templates {
		if t.name == name {
			return t, true
		}
	}
	return template{}, false
}

// TemplateNames lists the built-in template names, in detection order.
func TemplateNames() []string {
	names := make([]string, len(templates))
	for i, t := range templates {
		names[i] = t.name
	}
	return names
}

// configDoc mirrors config.Config's shape for marshaling a starter file;
// kept separate from config.Config so the scaffolder controls field order
// and omits empty tables, independent of the loader's decode-time shape.
type configDoc struct {
	Project    configDocProject                `toml:"project"`
	Targets    map[string][]string             `toml:"targets"`
	Extensions map[string]config.ExtensionSpec `toml:"extensions"`
}

type configDocProject struct {
	Name  string   `toml:"name"`
	Stack []string `toml:"stack"`
}

// Generate builds the starter devflow.toml content and a matching Config
// for the chosen template, projectName naming the `project.name` key.
func Generate(templateName, projectName string) ([]byte, *config.Config, error) {
	t, ok := lookupTemplate(templateName)
	if !ok {
		return nil, nil, dferrors.Internal("unknown scaffold template: "+templateName, nil)
	}

	doc := configDoc{
		Project: configDocProject{Name: projectName, Stack: []string{t.name}},
		Targets: map[string][]string{"pr": t.checkTargets},
		Extensions: map[string]config.ExtensionSpec{
			t.name: {Source: config.SourceBuiltin, Capabilities: t.capabilities},
		},
	}

	data, err := toml.Marshal(doc)
	if err != nil {
		return nil, nil, dferrors.Internal("failed to marshal starter devflow.toml", err)
	}

	cfg, err := config.Parse(data, ConfigPath)
	if err != nil {
		return nil, nil, err
	}

	return data, cfg, nil
}

// Options configures Write.
type Options struct {
	// Dir is the workspace root init runs in.
	Dir string
	// Template is the chosen template name; empty means Detect(Dir) first.
	Template string
	// ProjectName is the devflow.toml project.name to write.
	ProjectName string
	// Force allows overwriting an existing devflow.toml or workflow file.
	Force bool
}

// Write runs init: resolve the template, write devflow.toml and the CI
// workflow, failing with ScaffoldExists if either file exists and Force is
// false.
func Write(opts Options) error {
	templateName := opts.Template
	if templateName == "" {
		templateName = Detect(opts.Dir)
	}
	if templateName == "" {
		return dferrors.Internal("no recognized project marker file found; pass an explicit template", nil)
	}
	if _, ok := lookupTemplate(templateName); !ok {
		return dferrors.Internal("unknown scaffold template: "+templateName, nil)
	}

	configData, cfg, err := Generate(templateName, opts.ProjectName)
	if err != nil {
		return err
	}
	workflowData, err := ci.GenerateYAML(cfg)
	if err != nil {
		return err
	}

	configPath := filepath.Join(opts.Dir, ConfigPath)
	workflowPath := filepath.Join(opts.Dir, WorkflowPath)

	if !opts.Force {
		if fileExists(configPath) {
			return dferrors.ScaffoldExists(configPath)
		}
		if fileExists(workflowPath) {
			return dferrors.ScaffoldExists(workflowPath)
		}
	}

	if err := os.WriteFile(configPath, configData, 0o644); err != nil {
		return dferrors.Internal("failed to write "+configPath, err)
	}
	if err := os.MkdirAll(filepath.Dir(workflowPath), 0o755); err != nil {
		return dferrors.Internal("failed to create "+filepath.Dir(workflowPath), err)
	}
	if err := os.WriteFile(workflowPath, workflowData, 0o644); err != nil {
		return dferrors.Internal("failed to write "+workflowPath, err)
	}
	return nil
}
