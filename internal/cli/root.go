// Package cli wires devflow's cobra command surface to the policy,
// registry, and execution planner packages, per spec §4.1/§6.
package cli

import (
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/devflow-sh/devflow/internal/command"
	"github.com/devflow-sh/devflow/internal/diag"
	"github.com/devflow-sh/devflow/internal/output"
	"github.com/devflow-sh/devflow/internal/version"
)

// Global flags
var (
	workspacePath string
	configPath    string
	jsonOutput    bool
	noColor       bool
	quiet         bool
	verbose       bool
	force         bool
	stdoutOnly    bool
	ciOutputPath  string
)

// rootCmd is devflow's entry point, dispatching on the primary its
// invocation token was split into by splitInvocationToken.
var rootCmd = &cobra.Command{
	Use:           "dwf",
	Short:         "devflow: workflow orchestration for polyglot repos",
	Long: `devflow runs a project's fmt/lint/build/test/package/release/check
commands through either the host toolchain or a pinned container image,
resolved from a single devflow.toml policy file.`,
	Version:       version.String(),
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		format := output.FormatText
		if jsonOutput {
			format = output.FormatJSON
		}

		verbosity := output.VerbosityNormal
		switch {
		case quiet:
			verbosity = output.VerbosityQuiet
		case verbose:
			verbosity = output.VerbosityVerbose
		}

		output.Configure(output.Config{
			Format:    format,
			Verbosity: verbosity,
			NoColor:   noColor,
			Writer:    os.Stdout,
			ErrWriter: os.Stderr,
		})

		logger = diag.Default(verbose)

		if workspacePath == "" {
			wd, err := os.Getwd()
			if err != nil {
				return err
			}
			workspacePath = wd
		}
		return nil
	},
}

// Execute pre-splits the raw invocation token into cobra's subcommand name
// (the primary) and a selector positional argument, then runs the command
// tree. This is called once by main.main.
func Execute() error {
	os.Args = splitInvocationToken(os.Args)
	return rootCmd.Execute()
}

// splitInvocationToken finds the first non-flag argument, rewrites it
// through the legacy alias table, and splits it on ":" into a primary (the
// cobra subcommand name) and an optional selector (passed through as a
// positional argument), per spec §4.1's grammar.
func splitInvocationToken(args []string) []string {
	for i := 1; i < len(args); i++ {
		if strings.HasPrefix(args[i], "-") {
			continue
		}

		rewritten := command.RewriteAlias(args[i])
		primary, selector, hasSelector := strings.Cut(rewritten, ":")

		out := make([]string, 0, len(args)+1)
		out = append(out, args[:i]...)
		out = append(out, primary)
		if hasSelector {
			out = append(out, selector)
		}
		out = append(out, args[i+1:]...)
		return out
	}
	return args
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&workspacePath, "workspace", "w", "", "path to the project workspace (default: current directory)")
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "path to devflow.toml (default: <workspace>/devflow.toml)")
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "emit structured JSON instead of text")
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "disable colored output")
	rootCmd.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false, "suppress non-essential output")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug-level diagnostics")
	rootCmd.PersistentFlags().BoolVar(&force, "force", false, "overwrite existing files where applicable")
	rootCmd.PersistentFlags().BoolVar(&stdoutOnly, "stdout", false, "write generated output to stdout instead of its default file")
	rootCmd.PersistentFlags().StringVar(&ciOutputPath, "ci-output", "", "override the generated CI workflow path")

	rootCmd.AddCommand(fmtCmd)
	rootCmd.AddCommand(lintCmd)
	rootCmd.AddCommand(buildCmd)
	rootCmd.AddCommand(testCmd)
	rootCmd.AddCommand(packageCmd)
	rootCmd.AddCommand(checkCmd)
	rootCmd.AddCommand(releaseCmd)
	rootCmd.AddCommand(ciCmd)
	rootCmd.AddCommand(initCmd)
	rootCmd.AddCommand(setupCmd)
}
