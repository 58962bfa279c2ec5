package cli

import (
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/devflow-sh/devflow/internal/output"
	"github.com/devflow-sh/devflow/internal/scaffold"
)

var initCmd = &cobra.Command{
	Use:   "init [template]",
	Short: "scaffold a starter devflow.toml and CI workflow (init:rust, init:node, init:tsc)",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		template := ""
		if len(args) > 0 {
			template = args[0]
		}

		err := scaffold.Write(scaffold.Options{
			Dir:         workspacePath,
			Template:    template,
			ProjectName: filepath.Base(workspacePath),
			Force:       force,
		})
		if err != nil {
			return err
		}

		output.Global().Success("wrote " + scaffold.ConfigPath + " and " + scaffold.WorkflowPath)
		return nil
	},
}
