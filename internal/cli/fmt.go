package cli

import (
	"github.com/spf13/cobra"

	"github.com/devflow-sh/devflow/internal/command"
)

var fmtCmd = &cobra.Command{
	Use:   "fmt [check|fix]",
	Short: "format the project's source (fmt:check, fmt:fix)",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		ref, err := refFromArgs(command.PrimaryFmt, args, cfg)
		if err != nil {
			return err
		}
		return runOne(contextForCommand(), cfg, ref)
	},
}
