package cli

import (
	"github.com/spf13/cobra"

	"github.com/devflow-sh/devflow/internal/command"
)

var packageCmd = &cobra.Command{
	Use:   "package [artifact]",
	Short: "package the project's build output (package:artifact)",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		ref, err := refFromArgs(command.PrimaryPackage, args, cfg)
		if err != nil {
			return err
		}
		return runOne(contextForCommand(), cfg, ref)
	},
}
