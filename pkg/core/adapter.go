package core

import (
	"context"
	"fmt"
	"strconv"
	"time"
)

// Executor runs compiled statements. Connections implement it; builders
// hold one to serve their terminal operations.
type Executor interface {
	// RunQuery executes a statement and returns its rows.
	// Statements that produce no rows return a single summary row.
	RunQuery(ctx context.Context, sql CompiledSQL) ([]Row, error)

	// RunCursor executes a statement and returns a forward-only cursor.
	RunCursor(ctx context.Context, sql CompiledSQL) (Cursor, error)
}

// Cursor is a forward-only, chunked row reader.
// Callers must Close a cursor; an unclosed cursor holds its connection.
type Cursor interface {
	// Read returns up to n rows. An empty slice means the cursor is drained.
	Read(ctx context.Context, n int) ([]Row, error)

	// Close releases the underlying result set.
	Close() error
}

// Row is a single result row keyed by column name.
type Row map[string]any

// Int64 reads column as an integer. Drivers report counts as any integer
// kind, a float, or text.
func (r Row) Int64(column string) (int64, error) {
	switch n := r[column].(type) {
	case int64:
		return n, nil
	case int:
		return int64(n), nil
	case int32:
		return int64(n), nil
	case uint64:
		return int64(n), nil //nolint:gosec // counts fit in int64
	case float64:
		return int64(n), nil
	case []byte:
		return strconv.ParseInt(string(n), 10, 64)
	case string:
		return strconv.ParseInt(n, 10, 64)
	default:
		return 0, fmt.Errorf("column %s: unexpected integer type %T", column, n)
	}
}

// Summary row columns returned for statements that produce no rows.
const (
	ColumnRowsAffected = "rows_affected"
	ColumnLastInsertID = "last_insert_id"
)

// ConnectionConfig holds configuration for connecting to a database.
type ConnectionConfig struct {
	Driver   string            `koanf:"driver"`
	Path     string            `koanf:"path"`
	Host     string            `koanf:"host"`
	Port     int               `koanf:"port"`
	Database string            `koanf:"database"`
	Username string            `koanf:"username"`
	Password string            `koanf:"password"`
	Options  map[string]string `koanf:"options"`
	Pool     PoolConfig        `koanf:"pool"`

	// DSN, when set, replaces the connection string built from the fields above.
	DSN string `koanf:"dsn"`

	// Params holds driver-specific settings, decoded by each driver.
	Params map[string]any `koanf:"params"`

	// StrictEscaping makes DDL string literals double every single quote.
	StrictEscaping bool `koanf:"strict_escaping"`
}

// PoolConfig holds the sizing and timeout knobs of a connection pool.
type PoolConfig struct {
	// MaxConns caps concurrently checked-out connections.
	MaxConns int `koanf:"max_conns"`

	// AcquireTimeout bounds how long Connect waits for a free connection.
	AcquireTimeout time.Duration `koanf:"acquire_timeout"`

	// IdleTimeout recycles connections left unused for this long.
	IdleTimeout time.Duration `koanf:"idle_timeout"`
}

// Default pool settings.
const (
	DefaultMaxConns       = 20
	DefaultAcquireTimeout = 30 * time.Second
	DefaultIdleTimeout    = 10 * time.Second
)

// WithDefaults returns a copy of the pool config with zero values replaced by defaults.
func (p PoolConfig) WithDefaults() PoolConfig {
	if p.MaxConns <= 0 {
		p.MaxConns = DefaultMaxConns
	}
	if p.AcquireTimeout <= 0 {
		p.AcquireTimeout = DefaultAcquireTimeout
	}
	if p.IdleTimeout <= 0 {
		p.IdleTimeout = DefaultIdleTimeout
	}
	return p
}
