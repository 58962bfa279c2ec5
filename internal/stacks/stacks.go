// Package stacks supplies devflow's built-in extension resolvers: direct
// function calls resolving a CommandRef to an Action for the project.stack
// names spec.md §3 enumerates (rust, node, tsc, python), per spec §4.4's
// "built-in resolvers are direct function calls using the same schema."
package stacks

import (
	"github.com/devflow-sh/devflow/internal/command"
	dferrors "github.com/devflow-sh/devflow/internal/errors"
	"github.com/devflow-sh/devflow/internal/registry"
)

// action is shorthand for building a registry.Action from a program and
// its args, sharing the zero value for everything else.
func action(program string, args ...string) registry.Action {
	return registry.Action{Program: program, Args: args}
}

// table maps a capability key ("primary" or "primary:selector") to the
// resolver for that capability, so each stack's Resolve function is a
// single map lookup.
type table map[string]func() registry.Action

func (t table) capabilities() []string {
	caps := make([]string, 0, len(t))
	for k := range t {
		caps = append(caps, k)
	}
	return caps
}

func (t table) resolve(ref command.CommandRef) (registry.Action, error) {
	if a, ok := t[ref.String()]; ok {
		return a(), nil
	}
	return registry.Action{}, dferrors.NoCapableExtension(ref.String())
}

var rustTable = table{
	"fmt:check":         func() registry.Action { return action("cargo", "fmt", "--", "--check") },
	"fmt:fix":           func() registry.Action { return action("cargo", "fmt") },
	"lint:static":       func() registry.Action { return action("cargo", "clippy", "--all-targets", "--", "-D", "warnings") },
	"build:debug":       func() registry.Action { return action("cargo", "build") },
	"build:release":     func() registry.Action { return action("cargo", "build", "--release") },
	"test:unit":         func() registry.Action { return action("cargo", "test") },
	"test:integration":  func() registry.Action { return action("cargo", "test", "--test", "integration") },
	"test:smoke":        func() registry.Action { return action("cargo", "test", "--test", "smoke") },
	"package:artifact":  func() registry.Action { return action("cargo", "build", "--release") },
	"release:candidate": func() registry.Action { return action("cargo", "publish", "--dry-run") },
	"setup:doctor":      func() registry.Action { return action("rustup", "show") },
	"setup:deps":        func() registry.Action { return action("cargo", "fetch") },
}

var nodeTable = table{
	"fmt:check":    func() registry.Action { return action("npx", "prettier", "--check", ".") },
	"fmt:fix":      func() registry.Action { return action("npx", "prettier", "--write", ".") },
	"lint:static":  func() registry.Action { return action("npx", "eslint", ".") },
	"build:debug":  func() registry.Action { return action("npm", "run", "build") },
	"test:unit":    func() registry.Action { return action("npm", "test") },
	"setup:doctor": func() registry.Action { return action("node", "--version") },
	"setup:deps":   func() registry.Action { return action("npm", "install") },
}

var tscTable = table{
	"fmt:check":    func() registry.Action { return action("npx", "prettier", "--check", ".") },
	"fmt:fix":      func() registry.Action { return action("npx", "prettier", "--write", ".") },
	"lint:static":  func() registry.Action { return action("npx", "eslint", ".") },
	"build:debug":  func() registry.Action { return action("npx", "tsc", "--noEmit") },
	"test:unit":    func() registry.Action { return action("npm", "test") },
	"setup:doctor": func() registry.Action { return action("npx", "tsc", "--version") },
	"setup:deps":   func() registry.Action { return action("npm", "install") },
}

var pythonTable = table{
	"fmt:check":     func() registry.Action { return action("black", "--check", ".") },
	"fmt:fix":       func() registry.Action { return action("black", ".") },
	"lint:static":   func() registry.Action { return action("ruff", "check", ".") },
	"build:debug":   func() registry.Action { return action("python", "-m", "build") },
	"build:release": func() registry.Action { return action("python", "-m", "build") },
	"test:unit":     func() registry.Action { return action("pytest") },
	"setup:doctor":  func() registry.Action { return action("python", "--version") },
	"setup:deps":    func() registry.Action { return action("pip", "install", "-r", "requirements.txt") },
}

// rustMounts is the cargo registry cache mount the rust resolver attaches
// to every action rustTable yields, for the container profile's mount
// union (spec §4.7).
var rustMounts = []registry.Mount{
	{Host: "cargo-registry", Container: "/usr/local/cargo/registry", Mode: "rw"},
}

func withMounts(a registry.Action, mounts []registry.Mount) registry.Action {
	a.Mounts = mounts
	return a
}

// Builtins returns the registry.Builtins for every stack name devflow
// ships a built-in resolver for.
func Builtins() registry.Builtins {
	return registry.Builtins{
		"rust": {
			Capabilities: rustTable.capabilities(),
			Resolve: func(ref command.CommandRef) (registry.Action, error) {
				a, err := rustTable.resolve(ref)
				if err != nil {
					return registry.Action{}, err
				}
				return withMounts(a, rustMounts), nil
			},
		},
		"node": {
			Capabilities: nodeTable.capabilities(),
			Resolve:      nodeTable.resolve,
		},
		"tsc": {
			Capabilities: tscTable.capabilities(),
			Resolve:      tscTable.resolve,
		},
		"python": {
			Capabilities: pythonTable.capabilities(),
			Resolve:      pythonTable.resolve,
		},
	}
}
