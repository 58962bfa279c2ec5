// Package plan implements the Execution Planner: given a resolved
// CommandRef, it assembles the host or container process spec.md §4.7
// describes and runs it, forwarding streams and exit status.
package plan

import (
	"context"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"os/signal"
	"path/filepath"
	"sort"
	"syscall"
	"time"

	"golang.org/x/term"

	"github.com/devflow-sh/devflow/internal/command"
	"github.com/devflow-sh/devflow/internal/config"
	dferrors "github.com/devflow-sh/devflow/internal/errors"
	"github.com/devflow-sh/devflow/internal/fingerprint"
	"github.com/devflow-sh/devflow/internal/registry"
	"github.com/devflow-sh/devflow/internal/runtime"
	"github.com/devflow-sh/devflow/internal/util"
)

// containerUser and containerWorkdir are fixed per spec §4.7's exact argv
// order: `run --rm --init -u dwfuser -w /workspace`.
const (
	containerUser    = "dwfuser"
	containerWorkdir = "/workspace"

	// terminationGrace is the bounded grace period between a forwarded
	// interrupt and the follow-up terminate signal.
	terminationGrace = 5 * time.Second
)

// Options bundles everything the planner needs to resolve and run one
// CommandRef, independent of any particular CLI flag surface.
type Options struct {
	RepoRoot        string
	Config          *config.Config
	Registry        *registry.Registry
	PathLookup      runtime.PathLookup
	NewEngineClient func() (runtime.EngineClient, error)
	Logger          *slog.Logger // debug tracing; nil disables the trace line

	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer
}

// Run resolves ref to an action and runtime profile, assembles the final
// process, spawns it, and returns its exit status. The returned error is
// non-nil only for planning/spawn failures; a non-zero exit status from a
// successfully spawned child is reported via exitCode, not err.
func Run(ctx context.Context, ref command.CommandRef, opts Options) (exitCode int, err error) {
	action, err := opts.Registry.Resolve(ctx, ref)
	if err != nil {
		return 0, err
	}

	profile, err := runtime.Resolve(ctx, opts.Config, opts.PathLookup, opts.NewEngineClient)
	if err != nil {
		return 0, err
	}

	cacheRoot := util.CacheDir(opts.RepoRoot)

	var cmd *exec.Cmd
	switch profile {
	case config.ProfileHost:
		cmd, err = buildHostCommand(ctx, opts, action)
	default:
		cmd, err = buildContainerCommand(ctx, opts, action, cacheRoot)
	}
	if err != nil {
		return 0, err
	}

	traceCommand(opts.Logger, cmd)

	return spawnAndForward(ctx, cmd)
}

func buildHostCommand(ctx context.Context, opts Options, action registry.Action) (*exec.Cmd, error) {
	cmd := exec.CommandContext(ctx, action.Program, action.Args...)
	cmd.Dir = opts.RepoRoot
	if action.Cwd != "" {
		cmd.Dir = filepath.Join(opts.RepoRoot, action.Cwd)
	}
	cmd.Env = overlayEnv(os.Environ(), action.Env)
	cmd.Stdin = opts.Stdin
	cmd.Stdout = opts.Stdout
	cmd.Stderr = opts.Stderr
	return cmd, nil
}

func buildContainerCommand(ctx context.Context, opts Options, action registry.Action, cacheRoot string) (*exec.Cmd, error) {
	if opts.Config.Container.Image == "" {
		return nil, dferrors.Internal("container profile requires container.image to be set", nil)
	}

	inputs := unionFingerprintInputs(opts.Config)
	digest, err := fingerprint.Compute(opts.RepoRoot, inputs)
	if err != nil {
		return nil, err
	}
	imageRef := fingerprint.ImageTag(opts.Config.Container.Image, digest)

	engine := string(opts.Config.Container.Engine)
	if engine == "" || engine == string(config.EngineAuto) {
		engine = "docker"
		if _, err := opts.PathLookup("docker"); err != nil {
			engine = "podman"
		}
	}

	args := []string{"run", "--rm", "--init"}
	if action.RequiresTTY && isTerminalWriter(opts.Stdout) {
		args = append(args, "-t")
	}
	args = append(args, "-u", containerUser, "-w", containerWorkdir)
	for _, m := range action.Mounts {
		hostPath := filepath.Join(cacheRoot, m.Host)
		spec := hostPath + ":" + m.Container
		if m.Mode != "" {
			spec += ":" + m.Mode
		}
		args = append(args, "-v", spec)
	}
	args = append(args, "-v", opts.RepoRoot+":"+containerWorkdir)
	for _, k := range sortedKeys(action.Env) {
		args = append(args, "-e", k+"="+action.Env[k])
	}
	args = append(args, imageRef, action.Program)
	args = append(args, action.Args...)

	cmd := exec.CommandContext(ctx, engine, args...)
	cmd.Stdin = opts.Stdin
	cmd.Stdout = opts.Stdout
	cmd.Stderr = opts.Stderr
	return cmd, nil
}

// isTerminalWriter reports whether w is a real terminal, so the container
// command only requests TTY allocation (-t) when stdout is actually
// attached to one.
func isTerminalWriter(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return term.IsTerminal(int(f.Fd()))
}

func unionFingerprintInputs(cfg *config.Config) []string {
	var all []string
	for _, stack := range cfg.Project.Stack {
		spec, ok := cfg.Extensions[stack]
		if !ok {
			continue
		}
		all = util.UnionStrings(all, spec.FingerprintInputs)
	}
	return all
}

func overlayEnv(base []string, overlay map[string]string) []string {
	if len(overlay) == 0 {
		return base
	}
	result := make([]string, len(base), len(base)+len(overlay))
	copy(result, base)
	for _, k := range sortedKeys(overlay) {
		result = append(result, k+"="+overlay[k])
	}
	return result
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// traceCommand emits the fully-formed argv as a single debug-level line
// before spawning, per spec §4.7.
func traceCommand(logger *slog.Logger, cmd *exec.Cmd) {
	if logger == nil {
		return
	}
	logger.Debug("devflow: exec", "argv", cmd.Args)
}

// spawnAndForward runs cmd, forwarding an interrupt received by this
// process to the child once, then a terminate signal after a bounded
// grace period if the child has not yet exited.
func spawnAndForward(ctx context.Context, cmd *exec.Cmd) (int, error) {
	if err := cmd.Start(); err != nil {
		return 0, dferrors.Wrap(err, dferrors.CategoryExec, dferrors.CodeCommandFailed, "failed to start command")
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt)
	defer signal.Stop(sigCh)

	done := make(chan error, 1)
	exited := make(chan struct{})
	go func() {
		err := cmd.Wait()
		close(exited)
		done <- err
	}()

	ctxDone := ctx.Done()
	forwarded := false

	for {
		select {
		case sig := <-sigCh:
			if !forwarded {
				forwarded = true
				forwardSignal(cmd, sig)
				go terminateAfterGrace(cmd, exited)
			}
		case err := <-done:
			return exitStatus(cmd, err)
		case <-ctxDone:
			ctxDone = nil
			if !forwarded {
				forwarded = true
				forwardSignal(cmd, os.Interrupt)
				go terminateAfterGrace(cmd, exited)
			}
		}
	}
}

func forwardSignal(cmd *exec.Cmd, sig os.Signal) {
	if cmd.Process == nil {
		return
	}
	_ = cmd.Process.Signal(sig)
}

func terminateAfterGrace(cmd *exec.Cmd, exited <-chan struct{}) {
	select {
	case <-exited:
		return
	case <-time.After(terminationGrace):
		if cmd.Process != nil {
			_ = cmd.Process.Signal(syscall.SIGTERM)
		}
	}
}

func exitStatus(cmd *exec.Cmd, err error) (int, error) {
	if err == nil {
		return 0, nil
	}
	if exitErr, ok := err.(*exec.ExitError); ok {
		return exitErr.ExitCode(), nil
	}
	return 0, dferrors.Wrapf(err, dferrors.CategoryExec, dferrors.CodeCommandFailed, "command %q failed to run", cmd.Path)
}

