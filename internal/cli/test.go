package cli

import (
	"github.com/spf13/cobra"

	"github.com/devflow-sh/devflow/internal/command"
)

var testCmd = &cobra.Command{
	Use:   "test [unit|integration|smoke]",
	Short: "run the project's tests (test:unit, test:integration, test:smoke)",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		ref, err := refFromArgs(command.PrimaryTest, args, cfg)
		if err != nil {
			return err
		}
		return runOne(contextForCommand(), cfg, ref)
	},
}
