// Package postgres provides the PostgreSQL driver, backed by pgxpool.
//
// Import this package with a blank identifier to register the driver:
//
//	import _ "github.com/leapstack-labs/leapdb/pkg/connections/postgres"
package postgres

import (
	"context"
	"fmt"
	"log/slog"
	"maps"
	"slices"
	"sync"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/leapstack-labs/leapdb/pkg/connection"
	"github.com/leapstack-labs/leapdb/pkg/core"
	"github.com/leapstack-labs/leapdb/pkg/dialect"
	"github.com/leapstack-labs/leapdb/pkg/schema"

	pgdialect "github.com/leapstack-labs/leapdb/pkg/dialects/postgres"
)

// DriverName is the registered driver name.
const DriverName = "postgres"

// DefaultPort is used when the config leaves the port unset.
const DefaultPort = 5432

// Pool is a Pool over a pgxpool.Pool.
type Pool struct {
	cfg        core.ConnectionConfig
	logger     *slog.Logger
	dialect    *dialect.Dialect
	schemaOpts []schema.Option

	mu   sync.RWMutex
	pool *pgxpool.Pool
}

// New creates a stopped PostgreSQL pool. If logger is nil, a discard
// logger is used.
func New(cfg core.ConnectionConfig, logger *slog.Logger) (*Pool, error) {
	d, err := dialect.Lookup(pgdialect.Name)
	if err != nil {
		return nil, err
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Pool{
		cfg:        cfg,
		logger:     logger,
		dialect:    d,
		schemaOpts: connection.SchemaOptions(cfg),
	}, nil
}

// Driver returns the registered driver name.
func (p *Pool) Driver() string {
	return DriverName
}

// Dialect returns the postgres dialect.
func (p *Pool) Dialect() *dialect.Dialect {
	return p.dialect
}

// Startup creates the pgx pool and pings the server. Starting a started
// pool is a no-op.
func (p *Pool) Startup(ctx context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.pool != nil {
		return nil
	}

	pcfg, err := pgxpool.ParseConfig(BuildDSN(p.cfg))
	if err != nil {
		return fmt.Errorf("invalid postgres config: %w", err)
	}
	limits := p.cfg.Pool.WithDefaults()
	pcfg.MaxConns = int32(min(limits.MaxConns, 1<<31-1)) //nolint:gosec // clamped above
	pcfg.MaxConnIdleTime = limits.IdleTimeout

	p.logger.Debug("connecting to postgres",
		slog.String("host", pcfg.ConnConfig.Host),
		slog.String("database", pcfg.ConnConfig.Database))

	pool, err := pgxpool.NewWithConfig(ctx, pcfg)
	if err != nil {
		return fmt.Errorf("failed to open postgres pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return fmt.Errorf("failed to ping postgres: %w", err)
	}

	p.pool = pool
	p.logger.Info("connection pool started",
		slog.String("driver", DriverName),
		slog.Int("max_conns", limits.MaxConns))
	return nil
}

// Shutdown closes every pooled connection. It waits for checked-out
// connections to be released.
func (p *Pool) Shutdown() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.pool == nil {
		return nil
	}
	p.pool.Close()
	p.pool = nil
	p.logger.Info("connection pool stopped", slog.String("driver", DriverName))
	return nil
}

// NewConnection creates an unconnected connection bound to the pool.
func (p *Pool) NewConnection() connection.Connection {
	return &Connection{pool: p}
}

func (p *Pool) acquire(ctx context.Context) (*pgxpool.Conn, error) {
	p.mu.RLock()
	pool := p.pool
	p.mu.RUnlock()
	if pool == nil {
		return nil, connection.ErrPoolNotStarted
	}

	ctx, cancel := context.WithTimeout(ctx, p.cfg.Pool.WithDefaults().AcquireTimeout)
	defer cancel()
	conn, err := pool.Acquire(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to acquire postgres connection: %w", err)
	}
	return conn, nil
}

// BuildDSN returns cfg.DSN, or a key=value connection string built from the
// individual fields. sslmode defaults to disable.
func BuildDSN(cfg core.ConnectionConfig) string {
	if cfg.DSN != "" {
		return cfg.DSN
	}

	host := cfg.Host
	if host == "" {
		host = "localhost"
	}
	port := cfg.Port
	if port == 0 {
		port = DefaultPort
	}
	sslmode := "disable"
	if mode, ok := cfg.Options["sslmode"]; ok {
		sslmode = mode
	}

	dsn := fmt.Sprintf("host=%s port=%d dbname=%s sslmode=%s", host, port, cfg.Database, sslmode)
	if cfg.Username != "" {
		dsn += fmt.Sprintf(" user=%s", cfg.Username)
	}
	if cfg.Password != "" {
		dsn += fmt.Sprintf(" password=%s", cfg.Password)
	}
	for _, k := range slices.Sorted(maps.Keys(cfg.Options)) {
		if k == "sslmode" {
			continue
		}
		dsn += fmt.Sprintf(" %s=%s", k, cfg.Options[k])
	}
	return dsn
}

func init() {
	connection.Register(DriverName, func(cfg core.ConnectionConfig, logger *slog.Logger) (connection.Pool, error) {
		return New(cfg, logger)
	})
}
