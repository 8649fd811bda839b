package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

// NewStatusCmd creates the status command.
func NewStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show the current tag, last check and recent deployments",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			d, err := buildDeps(ctx, cmd)
			if err != nil {
				return err
			}
			defer closeDeps(ctx, d)

			snap, err := d.Engine.Status(ctx)
			if err != nil {
				return fmt.Errorf("reading status: %w", err)
			}
			printStatus(cmd.OutOrStdout(), snap)
			return nil
		},
	}
}

// NewHistoryCmd creates the history command.
func NewHistoryCmd() *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "history",
		Short: "List scheduled and manual trigger attempts, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			d, err := buildDeps(ctx, cmd)
			if err != nil {
				return err
			}
			defer closeDeps(ctx, d)

			events, err := d.Engine.History(ctx, limit)
			if err != nil {
				return fmt.Errorf("reading history: %w", err)
			}
			printEvents(cmd.OutOrStdout(), events)
			return nil
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "maximum number of events")
	return cmd
}
