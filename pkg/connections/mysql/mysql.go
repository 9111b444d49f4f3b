// Package mysql provides the MySQL driver, backed by go-sql-driver/mysql.
//
// Import this package with a blank identifier to register the driver:
//
//	import _ "github.com/leapstack-labs/leapdb/pkg/connections/mysql"
package mysql

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"net"
	"strconv"

	"github.com/go-sql-driver/mysql"

	"github.com/leapstack-labs/leapdb/pkg/connection"
	"github.com/leapstack-labs/leapdb/pkg/core"
	"github.com/leapstack-labs/leapdb/pkg/dialect"
	mysqldialect "github.com/leapstack-labs/leapdb/pkg/dialects/mysql"
)

// DriverName is the registered driver name.
const DriverName = "mysql"

// DefaultPort is used when the config leaves the port unset.
const DefaultPort = 3306

// New creates a stopped MySQL pool. Connections must Connect before their
// first statement.
func New(cfg core.ConnectionConfig, logger *slog.Logger) (*connection.SQLPool, error) {
	d, err := dialect.Lookup(mysqldialect.Name)
	if err != nil {
		return nil, err
	}
	mcfg, err := BuildConfig(cfg)
	if err != nil {
		return nil, err
	}

	return &connection.SQLPool{
		Name:                 DriverName,
		Cfg:                  cfg,
		Logger:               logger,
		SupportsLastInsertID: true,
		DialectDef:           d,
		SchemaOptions:        connection.SchemaOptions(cfg),
		Open: func(_ context.Context) (*sql.DB, error) {
			connector, err := mysql.NewConnector(mcfg)
			if err != nil {
				return nil, fmt.Errorf("failed to create mysql connector: %w", err)
			}
			return sql.OpenDB(connector), nil
		},
	}, nil
}

// BuildConfig converts cfg to a driver config. A DSN takes precedence over
// the individual fields. Multi-statement batches and time parsing are
// always enabled.
func BuildConfig(cfg core.ConnectionConfig) (*mysql.Config, error) {
	var mcfg *mysql.Config
	if cfg.DSN != "" {
		parsed, err := mysql.ParseDSN(cfg.DSN)
		if err != nil {
			return nil, fmt.Errorf("invalid mysql dsn: %w", err)
		}
		mcfg = parsed
	} else {
		host := cfg.Host
		if host == "" {
			host = "localhost"
		}
		port := cfg.Port
		if port == 0 {
			port = DefaultPort
		}

		mcfg = mysql.NewConfig()
		mcfg.User = cfg.Username
		mcfg.Passwd = cfg.Password
		mcfg.Net = "tcp"
		mcfg.Addr = net.JoinHostPort(host, strconv.Itoa(port))
		mcfg.DBName = cfg.Database
	}

	if len(cfg.Options) > 0 && mcfg.Params == nil {
		mcfg.Params = make(map[string]string, len(cfg.Options))
	}
	for k, v := range cfg.Options {
		mcfg.Params[k] = v
	}
	mcfg.MultiStatements = true
	mcfg.ParseTime = true
	return mcfg, nil
}

func init() {
	connection.Register(DriverName, func(cfg core.ConnectionConfig, logger *slog.Logger) (connection.Pool, error) {
		return New(cfg, logger)
	})
}
