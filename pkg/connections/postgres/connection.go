package postgres

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/leapstack-labs/leapdb/pkg/connection"
	"github.com/leapstack-labs/leapdb/pkg/core"
	"github.com/leapstack-labs/leapdb/pkg/lexer"
	"github.com/leapstack-labs/leapdb/pkg/query"
	"github.com/leapstack-labs/leapdb/pkg/schema"
)

// querier is the part of *pgxpool.Conn and pgx.Tx used to run statements.
type querier interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

// Connection holds one acquired pgx connection and its open transaction.
type Connection struct {
	pool *Pool

	conn *pgxpool.Conn
	tx   pgx.Tx
}

// Connect acquires a connection from the pool.
func (c *Connection) Connect(ctx context.Context) error {
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

// Disconnect rolls back an open transaction and releases the connection.
func (c *Connection) Disconnect() error {
	if c.conn == nil {
		return nil
	}
	var err error
	if c.tx != nil {
		if rbErr := c.tx.Rollback(context.Background()); rbErr != nil && !errors.Is(rbErr, pgx.ErrTxClosed) {
			err = fmt.Errorf("failed to roll back on disconnect: %w", rbErr)
		}
		c.tx = nil
	}
	c.conn.Release()
	c.conn = nil
	return err
}

// IsConnected returns true if a connection is acquired.
func (c *Connection) IsConnected() bool {
	return c.conn != nil
}

func (c *Connection) target(op string) (querier, error) {
	if c.conn == nil {
		return nil, connection.NotConnected(op, "run a query")
	}
	if c.tx != nil {
		return c.tx, nil
	}
	return c.conn, nil
}

// RunQuery executes a compiled statement. Statements without bindings use
// the simple protocol, so DDL batches run in one call.
func (c *Connection) RunQuery(ctx context.Context, compiled core.CompiledSQL) ([]core.Row, error) {
	target, err := c.target("run query")
	if err != nil {
		return nil, err
	}
	c.pool.logger.Debug("executing query",
		slog.String("sql", compiled.SQL),
		slog.Int("bindings", len(compiled.Bindings)))

	if lexer.ReturnsRows(compiled.SQL) {
		rows, err := target.Query(ctx, compiled.SQL, compiled.Bindings...)
		if err != nil {
			return nil, fmt.Errorf("failed to execute query: %w", err)
		}
		defer rows.Close()

		out := []core.Row{}
		for rows.Next() {
			row, err := scanRow(rows)
			if err != nil {
				return nil, err
			}
			out = append(out, row)
		}
		if err := rows.Err(); err != nil {
			return nil, fmt.Errorf("failed to execute query: %w", err)
		}
		return out, nil
	}

	tag, err := target.Exec(ctx, compiled.SQL, compiled.Bindings...)
	if err != nil {
		return nil, fmt.Errorf("failed to execute statement: %w", err)
	}
	return []core.Row{{
		core.ColumnRowsAffected: tag.RowsAffected(),
		core.ColumnLastInsertID: nil,
	}}, nil
}

// RunCursor executes a select and streams its rows. The connection is busy
// until the cursor is closed.
func (c *Connection) RunCursor(ctx context.Context, compiled core.CompiledSQL) (core.Cursor, error) {
	target, err := c.target("run cursor")
	if err != nil {
		return nil, err
	}
	c.pool.logger.Debug("opening cursor", slog.String("sql", compiled.SQL))

	rows, err := target.Query(ctx, compiled.SQL, compiled.Bindings...)
	if err != nil {
		return nil, fmt.Errorf("failed to open cursor: %w", err)
	}
	return &cursor{rows: rows}, nil
}

// BeginTransaction starts a transaction on the acquired connection.
func (c *Connection) BeginTransaction(ctx context.Context) error {
	if c.conn == nil {
		return connection.NotConnected("begin transaction", "begin a transaction")
	}
	if c.tx != nil {
		return connection.ErrTransactionActive
	}
	tx, err := c.conn.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	c.tx = tx
	return nil
}

// Commit commits the open transaction.
func (c *Connection) Commit(ctx context.Context) error {
	if c.conn == nil {
		return connection.NotConnected("commit", "commit a transaction")
	}
	if c.tx == nil {
		return connection.ErrNoTransaction
	}
	tx := c.tx
	c.tx = nil
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// Rollback aborts the open transaction.
func (c *Connection) Rollback(ctx context.Context) error {
	if c.conn == nil {
		return connection.NotConnected("rollback", "roll back a transaction")
	}
	if c.tx == nil {
		return connection.ErrNoTransaction
	}
	tx := c.tx
	c.tx = nil
	if err := tx.Rollback(ctx); err != nil {
		return fmt.Errorf("failed to roll back transaction: %w", err)
	}
	return nil
}

// Query returns a builder bound to this connection.
func (c *Connection) Query() *query.Query {
	return query.New(c.QueryGrammar(), c)
}

// Schema returns a DDL façade bound to this connection.
func (c *Connection) Schema() *schema.Schema {
	return schema.New(c.SchemaGrammar(), c)
}

// QueryGrammar returns the postgres query grammar.
func (c *Connection) QueryGrammar() query.Grammar {
	return c.pool.dialect.Query
}

// SchemaGrammar returns the postgres DDL grammar.
func (c *Connection) SchemaGrammar() *schema.Grammar {
	return c.pool.dialect.SchemaGrammar(c.pool.schemaOpts...)
}

func scanRow(rows pgx.Rows) (core.Row, error) {
	values, err := rows.Values()
	if err != nil {
		return nil, fmt.Errorf("failed to scan row: %w", err)
	}
	fields := rows.FieldDescriptions()
	row := make(core.Row, len(fields))
	for i, fd := range fields {
		row[fd.Name] = values[i]
	}
	return row, nil
}

type cursor struct {
	rows pgx.Rows
	done bool
}

func (c *cursor) Read(ctx context.Context, n int) ([]core.Row, error) {
	out := []core.Row{}
	if c.done {
		return out, nil
	}
	for len(out) < n {
		if err := ctx.Err(); err != nil {
			return out, err
		}
		if !c.rows.Next() {
			c.done = true
			if err := c.rows.Err(); err != nil {
				return out, fmt.Errorf("error iterating rows: %w", err)
			}
			break
		}
		row, err := scanRow(c.rows)
		if err != nil {
			return out, err
		}
		out = append(out, row)
	}
	return out, nil
}

func (c *cursor) Close() error {
	c.done = true
	c.rows.Close()
	return c.rows.Err()
}

var (
	_ connection.Pool       = (*Pool)(nil)
	_ connection.Connection = (*Connection)(nil)
)
