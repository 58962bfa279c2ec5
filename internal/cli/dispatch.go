package cli

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/devflow-sh/devflow/internal/command"
	"github.com/devflow-sh/devflow/internal/config"
	dferrors "github.com/devflow-sh/devflow/internal/errors"
	"github.com/devflow-sh/devflow/internal/output"
	"github.com/devflow-sh/devflow/internal/plan"
	"github.com/devflow-sh/devflow/internal/registry"
	"github.com/devflow-sh/devflow/internal/runtime"
	"github.com/devflow-sh/devflow/internal/stacks"
)

// logger is built by rootCmd's PersistentPreRunE once flags are parsed, so
// every subcommand shares one diagnostic logger for the invocation.
var logger *slog.Logger

// contextForCommand is the base context subcommands run under. A bare
// context.Background is correct here: Ctrl-C handling is the planner's job
// (internal/plan forwards os.Interrupt itself), not the dispatcher's.
func contextForCommand() context.Context {
	return context.Background()
}

// configFilePath returns the devflow.toml path to load: the explicit
// --config flag, or <workspace>/devflow.toml.
func configFilePath() string {
	if configPath != "" {
		return configPath
	}
	return filepath.Join(workspacePath, "devflow.toml")
}

func loadConfig() (*config.Config, error) {
	return config.Load(configFilePath())
}

func buildRegistry(ctx context.Context, cfg *config.Config) (*registry.Registry, error) {
	reg, err := registry.Discover(ctx, cfg, workspacePath, stacks.Builtins(), os.LookPath)
	if err != nil {
		return nil, err
	}
	for _, w := range reg.Warnings() {
		output.Global().Warning(w)
	}
	return reg, nil
}

// refFromArgs builds a CommandRef from a primary and the single optional
// selector positional argument splitInvocationToken left for cobra.
func refFromArgs(primary command.Primary, args []string, cfg *config.Config) (command.CommandRef, error) {
	token := string(primary)
	if len(args) > 0 && args[0] != "" {
		token += ":" + args[0]
	}
	return command.Parse(token, cfg)
}

// runOne resolves ref against cfg's registry and runs it to completion,
// translating a non-zero child exit status into a CommandFailed error so
// main can derive the process exit code uniformly.
func runOne(ctx context.Context, cfg *config.Config, ref command.CommandRef) error {
	reg, err := buildRegistry(ctx, cfg)
	if err != nil {
		return err
	}

	opts := plan.Options{
		RepoRoot:        workspacePath,
		Config:          cfg,
		Registry:        reg,
		PathLookup:      os.LookPath,
		NewEngineClient: runtime.NewEngineClient,
		Logger:          logger,
		Stdin:           os.Stdin,
		Stdout:          os.Stdout,
		Stderr:          os.Stderr,
	}

	code, err := plan.Run(ctx, ref, opts)
	if err != nil {
		return err
	}
	if code != 0 {
		return dferrors.CommandFailed(ref.String(), code, nil)
	}
	return nil
}

// runMany runs refs in order, stopping at the first failure, per spec §5's
// fail-fast sequencing for a `check` target profile's expanded commands.
func runMany(ctx context.Context, cfg *config.Config, refs []command.CommandRef) error {
	for _, ref := range refs {
		output.Global().Info("running " + ref.String())
		if err := runOne(ctx, cfg, ref); err != nil {
			return err
		}
	}
	return nil
}
