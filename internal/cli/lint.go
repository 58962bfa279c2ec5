package cli

import (
	"github.com/spf13/cobra"

	"github.com/devflow-sh/devflow/internal/command"
)

var lintCmd = &cobra.Command{
	Use:   "lint [static]",
	Short: "lint the project's source (lint:static)",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		ref, err := refFromArgs(command.PrimaryLint, args, cfg)
		if err != nil {
			return err
		}
		return runOne(contextForCommand(), cfg, ref)
	},
}
