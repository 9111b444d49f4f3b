// Package sqlite provides the SQLite driver, backed by modernc.org/sqlite.
//
// Import this package with a blank identifier to register the driver:
//
//	import _ "github.com/leapstack-labs/leapdb/pkg/connections/sqlite"
package sqlite

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
	sqlitedialect "github.com/leapstack-labs/leapdb/pkg/dialects/sqlite"

	_ "modernc.org/sqlite" // sqlite driver
)

// DriverName is the registered driver name.
const DriverName = "sqlite"

// MemoryPath opens a private in-memory database.
const MemoryPath = ":memory:"

// defaultPragmas are applied to every session unless overridden in
// ConnectionConfig.Options.
var defaultPragmas = map[string]string{
	"busy_timeout": "5000",
	"journal_mode": "WAL",
	"foreign_keys": "1",
}

// New creates a stopped SQLite pool. The database file is opened by
// Startup; connections check out a session on their first statement.
func New(cfg core.ConnectionConfig, logger *slog.Logger) (*connection.SQLPool, error) {
	d, err := dialect.Lookup(sqlitedialect.Name)
	if err != nil {
		return nil, err
	}

	dsn := cfg.DSN
	if dsn == "" {
		dsn = BuildDSN(cfg.Path, cfg.Options)
	}
	// Every session of ":memory:" would see its own empty database, and a
	// recycled session takes the database with it.
	memory := IsMemory(cfg)
	if memory {
		cfg.Pool.MaxConns = 1
	}

	return &connection.SQLPool{
		Name:                 DriverName,
		Cfg:                  cfg,
		Logger:               logger,
		LazyConnect:          true,
		SupportsLastInsertID: true,
		PinSessions:          memory,
		DialectDef:           d,
		SchemaOptions:        connection.SchemaOptions(cfg),
		Open: func(_ context.Context) (*sql.DB, error) {
			db, err := sql.Open("sqlite", dsn)
			if err != nil {
				return nil, fmt.Errorf("failed to open sqlite database: %w", err)
			}
			return db, nil
		},
	}, nil
}

// IsMemory reports whether cfg opens an in-memory database.
func IsMemory(cfg core.ConnectionConfig) bool {
	if cfg.DSN != "" {
		return strings.Contains(cfg.DSN, MemoryPath) || strings.Contains(cfg.DSN, "mode=memory")
	}
	return cfg.Path == "" || cfg.Path == MemoryPath
}

// BuildDSN builds a modernc file URI for path with one _pragma parameter per
// entry of the default pragmas merged with options.
func BuildDSN(path string, options map[string]string) string {
	if path == "" {
		path = MemoryPath
	}
	pragmas := maps.Clone(defaultPragmas)
	maps.Copy(pragmas, options)

	params := make([]string, 0, len(pragmas))
	for _, k := range slices.Sorted(maps.Keys(pragmas)) {
		params = append(params, fmt.Sprintf("_pragma=%s(%s)", k, pragmas[k]))
	}
	return "file:" + path + "?" + strings.Join(params, "&")
}

func init() {
	connection.Register(DriverName, func(cfg core.ConnectionConfig, logger *slog.Logger) (connection.Pool, error) {
		return New(cfg, logger)
	})
}
