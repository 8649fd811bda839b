package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/dwsmith1983/tagwatch/internal/commands"
	"github.com/dwsmith1983/tagwatch/internal/upstream"
)

var version = "dev"

func main() {
	upstream.UserAgent = "tagwatch/" + version

	root := &cobra.Command{
		Use:   "tagwatch",
		Short: "Trigger a deployment webhook when a GitHub release changes",
		Long: `tagwatch polls the latest release of a GitHub repository, remembers the
last tag it saw, and calls a deployment webhook exactly once per change.
The same checks run from the CLI, the local HTTP server, or AWS Lambda.`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	commands.AddGlobalFlags(root)

	root.AddCommand(
		commands.NewServeCmd(),
		commands.NewCheckCmd(),
		commands.NewTriggerCmd(),
		commands.NewStatusCmd(),
		commands.NewHistoryCmd(),
		commands.NewScheduleCmd(),
		commands.NewInvokeCmd(),
	)

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
