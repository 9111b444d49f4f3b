package connection

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"sync"

	"github.com/leapstack-labs/leapdb/pkg/core"
	"github.com/leapstack-labs/leapdb/pkg/dialect"
	"github.com/leapstack-labs/leapdb/pkg/schema"
)

// SQLPool is a Pool over a database/sql handle. Drivers built on
// database/sql fill in Open and, optionally, Setup.
type SQLPool struct {
	Name   string
	Cfg    core.ConnectionConfig
	Logger *slog.Logger

	// Open creates the shared handle. It is called once by Startup.
	Open func(ctx context.Context) (*sql.DB, error)

	// Setup runs on every session right after it is checked out.
	Setup func(ctx context.Context, conn *sql.Conn) error

	// LazyConnect lets connections check out a session on their first
	// statement instead of failing with a ProtocolError.
	LazyConnect bool

	// SupportsLastInsertID reports generated keys in summary rows.
	SupportsLastInsertID bool

	// PinSessions keeps idle sessions open for the life of the pool. Set it
	// when the database lives inside the session, as in-memory SQLite does.
	PinSessions bool

	DialectDef    *dialect.Dialect
	SchemaOptions []schema.Option

	mu sync.RWMutex
	db *sql.DB
}

// Driver returns the registered driver name.
func (p *SQLPool) Driver() string {
	return p.Name
}

// Dialect returns the pool's dialect.
func (p *SQLPool) Dialect() *dialect.Dialect {
	return p.DialectDef
}

// Startup opens the shared handle, applies the pool limits and pings the
// database. Starting a started pool is a no-op.
func (p *SQLPool) Startup(ctx context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.db != nil {
		return nil
	}

	db, err := p.Open(ctx)
	if err != nil {
		return fmt.Errorf("failed to open %s pool: %w", p.Name, err)
	}

	limits := p.Cfg.Pool.WithDefaults()
	db.SetMaxOpenConns(limits.MaxConns)
	db.SetMaxIdleConns(limits.MaxConns)
	if p.PinSessions {
		db.SetConnMaxIdleTime(0)
		db.SetConnMaxLifetime(0)
	} else {
		db.SetConnMaxIdleTime(limits.IdleTimeout)
	}

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return fmt.Errorf("failed to ping %s: %w", p.Name, err)
	}

	p.db = db
	p.logger().Info("connection pool started",
		slog.String("driver", p.Name),
		slog.Int("max_conns", limits.MaxConns))
	return nil
}

// Shutdown closes the shared handle. Connections still checked out fail
// on their next statement.
func (p *SQLPool) Shutdown() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.db == nil {
		return nil
	}
	err := p.db.Close()
	p.db = nil
	p.logger().Info("connection pool stopped", slog.String("driver", p.Name))
	if err != nil {
		return fmt.Errorf("failed to close %s pool: %w", p.Name, err)
	}
	return nil
}

// DB returns the shared handle, or nil before Startup.
func (p *SQLPool) DB() *sql.DB {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.db
}

// NewConnection creates an unconnected connection bound to the pool.
func (p *SQLPool) NewConnection() Connection {
	return NewSQLConnection(p)
}

// acquire checks a session out, waiting at most the acquire timeout.
func (p *SQLPool) acquire(ctx context.Context) (*sql.Conn, error) {
	db := p.DB()
	if db == nil {
		return nil, ErrPoolNotStarted
	}

	ctx, cancel := context.WithTimeout(ctx, p.Cfg.Pool.WithDefaults().AcquireTimeout)
	defer cancel()

	conn, err := db.Conn(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to acquire %s connection: %w", p.Name, err)
	}
	if p.Setup != nil {
		if err := p.Setup(ctx, conn); err != nil {
			_ = conn.Close()
			return nil, fmt.Errorf("failed to set up %s connection: %w", p.Name, err)
		}
	}
	return conn, nil
}

func (p *SQLPool) logger() *slog.Logger {
	if p.Logger == nil {
		return slog.New(slog.DiscardHandler)
	}
	return p.Logger
}

// SchemaOptions derives DDL grammar options from cfg.
func SchemaOptions(cfg core.ConnectionConfig) []schema.Option {
	var opts []schema.Option
	if cfg.StrictEscaping {
		opts = append(opts, schema.WithStrictEscaping())
	}
	return opts
}
