package commands

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/leapstack-labs/leapdb/pkg/core"
)

// NewPingCommand creates the ping command.
func NewPingCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "ping",
		Short: "Check that the configured database is reachable",
		Long: `Start a connection pool for the configured database, check out one
connection and run a trivial query through it.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			start := time.Now()
			s, err := openSession(cmd)
			if err != nil {
				return err
			}
			defer func() { _ = s.Close() }()

			if _, err := s.conn.RunQuery(cmd.Context(), core.NewCompiledSQL([]string{"select", "1", "as", "ok"}, nil)); err != nil {
				return fmt.Errorf("ping failed: %w", err)
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "ok: %s (%s dialect) in %s\n",
				s.pool.Driver(), s.pool.Dialect().Name, time.Since(start).Round(time.Millisecond))
			return nil
		},
	}
}
