package cli

import (
	"github.com/spf13/cobra"

	"github.com/devflow-sh/devflow/internal/command"
)

var setupCmd = &cobra.Command{
	Use:   "setup <doctor|deps>",
	Short: "check or install a stack's toolchain (setup:doctor, setup:deps)",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		ref, err := refFromArgs(command.PrimarySetup, args, cfg)
		if err != nil {
			return err
		}
		return runOne(contextForCommand(), cfg, ref)
	},
}
