package commands

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/leapstack-labs/leapdb/internal/config"
	"github.com/leapstack-labs/leapdb/pkg/connection"
	"github.com/leapstack-labs/leapdb/pkg/dialect"

	// Drivers available to every command.
	_ "github.com/leapstack-labs/leapdb/pkg/connections/duckdb"
	_ "github.com/leapstack-labs/leapdb/pkg/connections/mysql"
	_ "github.com/leapstack-labs/leapdb/pkg/connections/postgres"
	_ "github.com/leapstack-labs/leapdb/pkg/connections/sqlite"
)

const defaultPool = "default"

// session is one started pool and one connection taken from it.
type session struct {
	pools *connection.Pools
	pool  connection.Pool
	conn  connection.Connection
}

func loadedConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg := config.FromContext(cmd.Context())
	if cfg == nil {
		return nil, errors.New("configuration not loaded")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// openSession starts the configured pool and connects to it.
func openSession(cmd *cobra.Command) (*session, error) {
	cfg, err := loadedConfig(cmd)
	if err != nil {
		return nil, err
	}
	ctx := cmd.Context()

	pools := connection.NewPools(config.GetLogger(ctx))
	pool, err := pools.Start(ctx, defaultPool, cfg.Connection)
	if err != nil {
		return nil, fmt.Errorf("failed to start %s pool: %w", cfg.Connection.Driver, err)
	}
	conn, err := pools.Connect(ctx, defaultPool)
	if err != nil {
		return nil, errors.Join(err, pools.Shutdown())
	}
	return &session{pools: pools, pool: pool, conn: conn}, nil
}

func (s *session) Close() error {
	return errors.Join(s.conn.Disconnect(), s.pools.Shutdown())
}

// configuredDialect resolves the dialect for the configured driver without
// opening a connection.
func configuredDialect(cmd *cobra.Command) (*dialect.Dialect, *config.Config, error) {
	cfg, err := loadedConfig(cmd)
	if err != nil {
		return nil, nil, err
	}
	d, err := dialect.Lookup(cfg.Connection.Driver)
	if err != nil {
		return nil, nil, err
	}
	return d, cfg, nil
}
