package commands

import (
	"github.com/spf13/cobra"
)

// NewCheckCmd creates the check command.
func NewCheckCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "check",
		Short: "Check for a new release and trigger deployment when it changed",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			d, err := buildDeps(ctx, cmd)
			if err != nil {
				return err
			}
			defer closeDeps(ctx, d)

			res, err := d.Engine.CheckForUpdates(ctx)
			printCheck(cmd.OutOrStdout(), res, err)
			return err
		},
	}
}

// NewTriggerCmd creates the trigger command.
func NewTriggerCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "trigger",
		Short: "Deploy the latest release regardless of the stored tag",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			d, err := buildDeps(ctx, cmd)
			if err != nil {
				return err
			}
			defer closeDeps(ctx, d)

			res, err := d.Engine.ManualTrigger(ctx)
			printManual(cmd.OutOrStdout(), res, err)
			return err
		},
	}
}
