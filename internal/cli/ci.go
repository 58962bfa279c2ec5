package cli

import (
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/devflow-sh/devflow/internal/ci"
	"github.com/devflow-sh/devflow/internal/config"
	dferrors "github.com/devflow-sh/devflow/internal/errors"
	"github.com/devflow-sh/devflow/internal/output"
)

var ciCmd = &cobra.Command{
	Use:   "ci <generate|check|plan>",
	Short: "generate, check, or plan the derived CI workflow (ci:generate, ci:check, ci:plan)",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		switch args[0] {
		case "generate":
			return runCIGenerate(cfg)
		case "check":
			return runCICheck(cfg)
		case "plan":
			return runCIPlan(cfg)
		default:
			return dferrors.UnknownSelector("ci", args[0])
		}
	},
}

func ciWorkflowPath() string {
	if ciOutputPath != "" {
		return ciOutputPath
	}
	return filepath.Join(workspacePath, ci.DefaultPath)
}

func runCIGenerate(cfg *config.Config) error {
	data, err := ci.GenerateYAML(cfg)
	if err != nil {
		return err
	}

	if stdoutOnly {
		output.Global().Print(string(data))
		return nil
	}

	path := ciWorkflowPath()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return dferrors.Internal("failed to create "+filepath.Dir(path), err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return dferrors.Internal("failed to write "+path, err)
	}
	output.Global().Success("wrote " + path)
	return nil
}

func runCICheck(cfg *config.Config) error {
	path := ciWorkflowPath()
	existing, err := os.ReadFile(path)
	if err != nil {
		return dferrors.Wrap(err, dferrors.CategoryCI, dferrors.CodeWorkflowDrift, "failed to read "+path)
	}
	if err := ci.Check(cfg, path, existing); err != nil {
		return err
	}
	output.Global().Success(path + " is up to date")
	return nil
}

func runCIPlan(cfg *config.Config) error {
	names := ci.Plan(cfg)
	if output.Global().IsJSON() {
		return output.Global().JSON(names)
	}
	for _, name := range names {
		output.Global().Println(name)
	}
	return nil
}
