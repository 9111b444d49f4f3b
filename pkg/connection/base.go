package connection

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/leapstack-labs/leapdb/pkg/core"
	"github.com/leapstack-labs/leapdb/pkg/lexer"
	"github.com/leapstack-labs/leapdb/pkg/query"
	"github.com/leapstack-labs/leapdb/pkg/schema"
)

// sqlTarget is the part of *sql.Conn and *sql.Tx used to run statements.
type sqlTarget interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

// BaseSQLConnection is a Connection over one session of an SQLPool.
type BaseSQLConnection struct {
	pool *SQLPool

	conn *sql.Conn
	tx   *sql.Tx
}

// NewSQLConnection creates an unconnected connection on pool.
func NewSQLConnection(pool *SQLPool) *BaseSQLConnection {
	return &BaseSQLConnection{pool: pool}
}

// Connect checks a session out of the pool.
func (c *BaseSQLConnection) Connect(ctx context.Context) error {
	if c.conn != nil {
		return nil
	}
	conn, err := c.pool.acquire(ctx)
	if err != nil {
		return err
	}
	c.conn = conn
	return nil
}

// Disconnect rolls back an open transaction and returns the session.
func (c *BaseSQLConnection) Disconnect() error {
	if c.conn == nil {
		return nil
	}
	var errs []error
	if c.tx != nil {
		if err := c.tx.Rollback(); err != nil && !errors.Is(err, sql.ErrTxDone) {
			errs = append(errs, fmt.Errorf("failed to roll back on disconnect: %w", err))
		}
		c.tx = nil
	}
	if err := c.conn.Close(); err != nil {
		errs = append(errs, fmt.Errorf("failed to release connection: %w", err))
	}
	c.conn = nil
	return errors.Join(errs...)
}

// IsConnected returns true if a session is checked out.
func (c *BaseSQLConnection) IsConnected() bool {
	return c.conn != nil
}

func (c *BaseSQLConnection) target(ctx context.Context, op string) (sqlTarget, error) {
	if c.conn == nil {
		if !c.pool.LazyConnect {
			return nil, NotConnected(op, "run a query")
		}
		if err := c.Connect(ctx); err != nil {
			return nil, err
		}
	}
	if c.tx != nil {
		return c.tx, nil
	}
	return c.conn, nil
}

// RunQuery executes a compiled statement. Row-returning statements return
// their rows; others return one summary row with rows_affected and
// last_insert_id.
func (c *BaseSQLConnection) RunQuery(ctx context.Context, compiled core.CompiledSQL) ([]core.Row, error) {
	target, err := c.target(ctx, "run query")
	if err != nil {
		return nil, err
	}
	c.pool.logger().Debug("executing query",
		slog.String("sql", compiled.SQL),
		slog.Int("bindings", len(compiled.Bindings)))

	if lexer.ReturnsRows(compiled.SQL) {
		//nolint:rowserrcheck // ScanRows checks rows.Err
		rows, err := target.QueryContext(ctx, compiled.SQL, compiled.Bindings...)
		if err != nil {
			return nil, fmt.Errorf("failed to execute query: %w", err)
		}
		defer func() { _ = rows.Close() }()
		return ScanRows(rows)
	}

	result, err := target.ExecContext(ctx, compiled.SQL, compiled.Bindings...)
	if err != nil {
		return nil, fmt.Errorf("failed to execute statement: %w", err)
	}
	return []core.Row{c.summary(result)}, nil
}

func (c *BaseSQLConnection) summary(result sql.Result) core.Row {
	row := core.Row{core.ColumnRowsAffected: int64(0), core.ColumnLastInsertID: nil}
	if n, err := result.RowsAffected(); err == nil {
		row[core.ColumnRowsAffected] = n
	}
	if c.pool.SupportsLastInsertID {
		if id, err := result.LastInsertId(); err == nil {
			row[core.ColumnLastInsertID] = id
		}
	}
	return row
}

// RunCursor executes a select and returns a cursor over its rows. The
// connection is busy until the cursor is closed.
func (c *BaseSQLConnection) RunCursor(ctx context.Context, compiled core.CompiledSQL) (core.Cursor, error) {
	target, err := c.target(ctx, "run cursor")
	if err != nil {
		return nil, err
	}
	c.pool.logger().Debug("opening cursor", slog.String("sql", compiled.SQL))

	//nolint:rowserrcheck // the cursor checks rows.Err
	rows, err := target.QueryContext(ctx, compiled.SQL, compiled.Bindings...)
	if err != nil {
		return nil, fmt.Errorf("failed to open cursor: %w", err)
	}
	return NewRowsCursor(rows)
}

// BeginTransaction starts a transaction on the checked-out session.
func (c *BaseSQLConnection) BeginTransaction(ctx context.Context) error {
	if c.conn == nil {
		return NotConnected("begin transaction", "begin a transaction")
	}
	if c.tx != nil {
		return ErrTransactionActive
	}
	// database/sql rolls a transaction back when its context ends.
	tx, err := c.conn.BeginTx(context.WithoutCancel(ctx), nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	c.tx = tx
	return nil
}

// Commit commits the open transaction.
func (c *BaseSQLConnection) Commit(_ context.Context) error {
	if c.conn == nil {
		return NotConnected("commit", "commit a transaction")
	}
	if c.tx == nil {
		return ErrNoTransaction
	}
	tx := c.tx
	c.tx = nil
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// Rollback aborts the open transaction.
func (c *BaseSQLConnection) Rollback(_ context.Context) error {
	if c.conn == nil {
		return NotConnected("rollback", "roll back a transaction")
	}
	if c.tx == nil {
		return ErrNoTransaction
	}
	tx := c.tx
	c.tx = nil
	if err := tx.Rollback(); err != nil {
		return fmt.Errorf("failed to roll back transaction: %w", err)
	}
	return nil
}

// Query returns a builder bound to this connection.
func (c *BaseSQLConnection) Query() *query.Query {
	return query.New(c.QueryGrammar(), c)
}

// Schema returns a DDL façade bound to this connection.
func (c *BaseSQLConnection) Schema() *schema.Schema {
	return schema.New(c.SchemaGrammar(), c)
}

// QueryGrammar returns the dialect's query grammar.
func (c *BaseSQLConnection) QueryGrammar() query.Grammar {
	return c.pool.DialectDef.Query
}

// SchemaGrammar returns the dialect's DDL grammar.
func (c *BaseSQLConnection) SchemaGrammar() *schema.Grammar {
	return c.pool.DialectDef.SchemaGrammar(c.pool.SchemaOptions...)
}
