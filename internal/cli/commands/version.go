package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/leapstack-labs/leapdb/pkg/connection"
)

// NewVersionCommand creates the version command.
func NewVersionCommand(version string) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Long:  `Display leapdb version and the registered database drivers.`,
		Run: func(cmd *cobra.Command, _ []string) {
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "leapdb v%s\n", version)
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Drivers: %v\n", connection.ListDrivers())
		},
	}
}
