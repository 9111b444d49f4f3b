// Package duckdb provides the DuckDB driver, backed by go-duckdb.
//
// Import this package with a blank identifier to register the driver:
//
//	import _ "github.com/leapstack-labs/leapdb/pkg/connections/duckdb"
package duckdb

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"maps"
	"slices"
	"strings"

	"github.com/leapstack-labs/leapdb/pkg/connection"
	"github.com/leapstack-labs/leapdb/pkg/core"
	"github.com/leapstack-labs/leapdb/pkg/dialect"
	duckdbdialect "github.com/leapstack-labs/leapdb/pkg/dialects/duckdb"

	_ "github.com/marcboeker/go-duckdb" // duckdb driver
)

// DriverName is the registered driver name.
const DriverName = "duckdb"

// New creates a stopped DuckDB pool. An empty path opens an in-memory
// database shared by every session of the pool.
func New(cfg core.ConnectionConfig, logger *slog.Logger) (*connection.SQLPool, error) {
	d, err := dialect.Lookup(duckdbdialect.Name)
	if err != nil {
		return nil, err
	}
	params, err := ParseParams(cfg.Params)
	if err != nil {
		return nil, err
	}

	dsn := cfg.DSN
	if dsn == "" && cfg.Path != ":memory:" {
		dsn = cfg.Path
	}

	return &connection.SQLPool{
		Name:          DriverName,
		Cfg:           cfg,
		Logger:        logger,
		LazyConnect:   true,
		DialectDef:    d,
		SchemaOptions: connection.SchemaOptions(cfg),
		Open: func(ctx context.Context) (*sql.DB, error) {
			db, err := sql.Open("duckdb", dsn)
			if err != nil {
				return nil, fmt.Errorf("failed to open duckdb database: %w", err)
			}
			for _, ext := range params.Extensions {
				if _, err := db.ExecContext(ctx, "install "+ext); err != nil {
					_ = db.Close()
					return nil, fmt.Errorf("failed to install extension %s: %w", ext, err)
				}
			}
			return db, nil
		},
		Setup: params.setup,
	}, nil
}

// setup loads extensions and applies settings on a fresh session.
func (p *Params) setup(ctx context.Context, conn *sql.Conn) error {
	for _, ext := range p.Extensions {
		if _, err := conn.ExecContext(ctx, "load "+ext); err != nil {
			return fmt.Errorf("failed to load extension %s: %w", ext, err)
		}
	}
	for _, key := range slices.Sorted(maps.Keys(p.Settings)) {
		value := strings.ReplaceAll(p.Settings[key], "'", "''")
		if _, err := conn.ExecContext(ctx, fmt.Sprintf("set %s = '%s'", key, value)); err != nil {
			return fmt.Errorf("failed to apply setting %s: %w", key, err)
		}
	}
	return nil
}

func init() {
	connection.Register(DriverName, func(cfg core.ConnectionConfig, logger *slog.Logger) (connection.Pool, error) {
		return New(cfg, logger)
	})
}
