package cli

import (
	"github.com/spf13/cobra"

	"github.com/devflow-sh/devflow/internal/command"
	"github.com/devflow-sh/devflow/internal/policy"
)

var checkCmd = &cobra.Command{
	Use:   "check <profile>",
	Short: "run every command a target profile names, in order, stopping at the first failure",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		// Parse validates the profile against cfg.Targets before Expand
		// ever runs, so an unknown profile fails as UNKNOWN_SELECTOR
		// rather than silently expanding to nothing.
		if _, err := command.Parse("check:"+args[0], cfg); err != nil {
			return err
		}

		refs, err := policy.Expand(cfg, args[0])
		if err != nil {
			return err
		}
		return runMany(contextForCommand(), cfg, refs)
	},
}
