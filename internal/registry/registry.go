// Package registry discovers extensions and resolves a CommandRef into an
// Action the execution planner can run, per spec §4.4.
package registry

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/devflow-sh/devflow/internal/command"
	"github.com/devflow-sh/devflow/internal/config"
	dferrors "github.com/devflow-sh/devflow/internal/errors"
)

const (
	discoverTimeout    = 5 * time.Second
	buildActionTimeout = 10 * time.Second

	execPrefix = "devflow-ext-"
)

// Mount is a host-to-container bind mount an extension's build-action
// response may request.
type Mount struct {
	Host      string `json:"host"`
	Container string `json:"container"`
	Mode      string `json:"mode"`
}

// Action is what an extension resolves a CommandRef to: a program, its
// arguments, and the environment/mounts it needs, per spec §3's
// ExecutionAction. Cwd and RequiresTTY are built-in-resolver-only fields:
// the subprocess --build-action wire schema (spec §4.4) carries only
// program/args/env/mounts, so a subprocess extension always gets the
// planner's default cwd and no TTY requirement.
type Action struct {
	Program     string
	Args        []string
	Env         map[string]string
	Mounts      []Mount
	Cwd         string
	RequiresTTY bool
}

// buildActionRequest is the protocol's stdin payload for --build-action.
type buildActionRequest struct {
	Primary  string `json:"primary"`
	Selector string `json:"selector"`
}

// buildActionResponse is the protocol's stdout payload for --build-action.
type buildActionResponse struct {
	Program string            `json:"program"`
	Args    []string          `json:"args"`
	Env     map[string]string `json:"env,omitempty"`
	Mounts  []Mount           `json:"mounts,omitempty"`
}

// BuiltinResolver resolves a CommandRef directly, the in-process equivalent
// of a subprocess extension's --build-action response.
type BuiltinResolver func(ref command.CommandRef) (Action, error)

// entry is one row of the populated registry, in discovery order.
type entry struct {
	name         string
	capabilities map[string]bool // "primary" or "primary:selector"
	builtin      BuiltinResolver
	binaryPath   string // subprocess extension
	delegate     string // "just" or "make", for custom delegates
}

// Registry holds every extension discovered at startup, in discovery order:
// built-ins (in project.stack order), then `source = "path"` extensions (by
// name), then $PATH subprocess extensions, then custom delegates.
type Registry struct {
	entries  []entry
	warnings []string
}

// Builtins maps a stack name to its in-process resolver and capability set.
// Callers register the stacks the binary was compiled with before calling
// Discover.
type Builtins map[string]struct {
	Capabilities []string
	Resolve      BuiltinResolver
}

// Discover populates a Registry following spec §4.4's three-step order, with
// `source = "path"` extensions discovered between the built-ins and the
// $PATH scan.
// workspaceDir is the directory custom delegates look for a justfile or
// Makefile in, and pathLookup is the $PATH search function (os.LookPath in
// production, faked in tests).
func Discover(ctx context.Context, cfg *config.Config, workspaceDir string, builtins Builtins, pathLookup func(string) (string, error)) (*Registry, error) {
	r := &Registry{}

	for _, stack := range cfg.Project.Stack {
		spec, hasSpec := cfg.Extensions[stack]
		if hasSpec && spec.Source != config.SourceBuiltin {
			continue
		}
		b, ok := builtins[stack]
		if !ok {
			continue
		}
		r.entries = append(r.entries, entry{
			name:         stack,
			capabilities: capabilitySet(b.Capabilities),
			builtin:      b.Resolve,
		})
	}

	if err := r.discoverPathExtensions(ctx, cfg); err != nil {
		return nil, err
	}

	if err := r.discoverSubprocessExtensions(ctx, cfg, pathLookup); err != nil {
		return nil, err
	}

	r.discoverCustomDelegates(cfg, workspaceDir, pathLookup)

	return r, nil
}

// sortedExtensionNames returns cfg's extension names in a fixed order, so
// registry discovery is deterministic across runs of the same config
// despite iterating a Go map.
func sortedExtensionNames(extensions map[string]config.ExtensionSpec) []string {
	names := make([]string, 0, len(extensions))
	for name := range extensions {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func capabilitySet(caps []string) map[string]bool {
	set := make(map[string]bool, len(caps))
	for _, c := range caps {
		set[c] = true
	}
	return set
}

// discoverPathExtensions speaks the same --discover/--build-action protocol
// as a $PATH-discovered subprocess extension, but at the explicit binary
// path an `extensions.<name>.source = "path"` entry declares, instead of
// relying on a devflow-ext-* filename on $PATH.
func (r *Registry) discoverPathExtensions(ctx context.Context, cfg *config.Config) error {
	for _, name := range sortedExtensionNames(cfg.Extensions) {
		spec := cfg.Extensions[name]
		if spec.Source != config.SourcePath {
			continue
		}

		caps, err := discoverCapabilities(ctx, spec.Path)
		if err != nil {
			if spec.Required {
				return dferrors.ExtensionDiscoveryFailure(name, err)
			}
			r.warnings = append(r.warnings, fmt.Sprintf("extension %q skipped: %v", name, err))
			continue
		}

		r.entries = append(r.entries, entry{
			name:         name,
			capabilities: capabilitySet(caps),
			binaryPath:   spec.Path,
		})
	}
	return nil
}

// discoverSubprocessExtensions walks $PATH for devflow-ext-* executables,
// invoking each with --discover to learn its capabilities.
func (r *Registry) discoverSubprocessExtensions(ctx context.Context, cfg *config.Config, pathLookup func(string) (string, error)) error {
	required := make(map[string]bool)
	for name, spec := range cfg.Extensions {
		if spec.Required {
			required[name] = true
		}
	}

	seen := make(map[string]bool)
	for _, dir := range filepath.SplitList(os.Getenv("PATH")) {
		entries, err := os.ReadDir(dir)
		if err != nil {
			continue
		}
		for _, de := range entries {
			if de.IsDir() || !strings.HasPrefix(de.Name(), execPrefix) {
				continue
			}
			name := strings.TrimPrefix(de.Name(), execPrefix)
			if seen[name] {
				continue
			}
			seen[name] = true

			binaryPath := filepath.Join(dir, de.Name())
			caps, err := discoverCapabilities(ctx, binaryPath)
			if err != nil {
				if required[name] {
					return dferrors.ExtensionDiscoveryFailure(name, err)
				}
				r.warnings = append(r.warnings, fmt.Sprintf("extension %q skipped: %v", name, err))
				continue
			}

			r.entries = append(r.entries, entry{
				name:         name,
				capabilities: capabilitySet(caps),
				binaryPath:   binaryPath,
			})
		}
	}
	return nil
}

func discoverCapabilities(ctx context.Context, binaryPath string) ([]string, error) {
	ctx, cancel := context.WithTimeout(ctx, discoverTimeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, binaryPath, "--discover")
	var stdout bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = os.Stderr

	if err := cmd.Run(); err != nil {
		return nil, err
	}

	var caps []string
	if err := json.Unmarshal(stdout.Bytes(), &caps); err != nil {
		return nil, fmt.Errorf("malformed --discover output: %w", err)
	}
	return caps, nil
}

// discoverCustomDelegates inserts a synthetic just/make delegate for every
// extensions.<name> entry whose source is "custom".
func (r *Registry) discoverCustomDelegates(cfg *config.Config, workspaceDir string, pathLookup func(string) (string, error)) {
	for name, spec := range cfg.Extensions {
		if spec.Source != config.SourceCustom {
			continue
		}

		delegate := ""
		if fileExists(filepath.Join(workspaceDir, "justfile")) {
			if _, err := pathLookup("just"); err == nil {
				delegate = "just"
			}
		}
		if delegate == "" && fileExists(filepath.Join(workspaceDir, "Makefile")) {
			delegate = "make"
		}
		if delegate == "" {
			r.warnings = append(r.warnings, fmt.Sprintf("custom extension %q has no justfile/Makefile delegate", name))
			continue
		}

		r.entries = append(r.entries, entry{
			name:         name,
			capabilities: nil, // custom delegates match any primary:selector
			delegate:     delegate,
		})
	}
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

// Warnings returns the non-fatal skip messages accumulated during Discover.
func (r *Registry) Warnings() []string {
	return r.warnings
}

// Resolve finds the first extension, in registry (discovery) order, whose
// capability set contains an exact primary:selector match, falling back to
// a bare-primary match, and resolves ref against it. Entries are not
// re-sorted by project.stack: only the built-ins follow that order.
func (r *Registry) Resolve(ctx context.Context, ref command.CommandRef) (Action, error) {
	exact := ref.String()
	bare := string(ref.Primary)

	for _, e := range r.entries {
		if e.delegate != "" || matches(e.capabilities, exact) {
			return r.resolveEntry(ctx, e, ref)
		}
	}
	for _, e := range r.entries {
		if matches(e.capabilities, bare) {
			return r.resolveEntry(ctx, e, ref)
		}
	}
	return Action{}, dferrors.NoCapableExtension(exact)
}

func matches(caps map[string]bool, key string) bool {
	return caps != nil && caps[key]
}

func (r *Registry) resolveEntry(ctx context.Context, e entry, ref command.CommandRef) (Action, error) {
	switch {
	case e.delegate != "":
		return delegateAction(e.delegate, ref), nil
	case e.builtin != nil:
		return e.builtin(ref)
	default:
		return buildAction(ctx, e.binaryPath, ref)
	}
}

// delegateAction maps ref to `just <primary-selector>` or `make
// <primary-selector>`, rewriting the ':' separator to '-'.
func delegateAction(delegate string, ref command.CommandRef) Action {
	target := strings.ReplaceAll(ref.String(), ":", "-")
	return Action{Program: delegate, Args: []string{target}}
}

func buildAction(ctx context.Context, binaryPath string, ref command.CommandRef) (Action, error) {
	ctx, cancel := context.WithTimeout(ctx, buildActionTimeout)
	defer cancel()

	reqBytes, err := json.Marshal(buildActionRequest{Primary: string(ref.Primary), Selector: ref.Selector})
	if err != nil {
		return Action{}, dferrors.Internal("failed to encode build-action request", err)
	}

	cmd := exec.CommandContext(ctx, binaryPath, "--build-action")
	cmd.Stdin = bytes.NewReader(reqBytes)
	var stdout bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = os.Stderr

	if err := cmd.Run(); err != nil {
		return Action{}, dferrors.ProtocolError(binaryPath, err)
	}

	var resp buildActionResponse
	if err := json.Unmarshal(stdout.Bytes(), &resp); err != nil {
		return Action{}, dferrors.ProtocolError(binaryPath, err)
	}
	if resp.Program == "" {
		return Action{}, dferrors.ProtocolError(binaryPath, fmt.Errorf("response has no program"))
	}

	return Action{Program: resp.Program, Args: resp.Args, Env: resp.Env, Mounts: resp.Mounts}, nil
}
