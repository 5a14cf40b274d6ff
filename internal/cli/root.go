// Package cli holds the eventify command tree.
package cli

import (
	"github.com/spf13/cobra"
)

// NewRootCommand creates the root command for the eventify binary.
func NewRootCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "eventify",
		Short:         "Eventify - campus event registration",
		Long:          "Eventify serves the campus event registration API, its realtime feed and scheduled reminders.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.AddCommand(NewServeCommand())
	cmd.AddCommand(NewMigrateCommand())
	cmd.AddCommand(NewRemindCommand())

	return cmd
}
