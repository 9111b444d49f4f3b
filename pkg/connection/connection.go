// Package connection defines the driver boundary: pools hand out
// connections, connections run compiled statements.
//
// Concrete drivers live in pkg/connections/ and register themselves from
// init. Import one with a blank identifier to make it available to Open:
//
//	import _ "github.com/leapstack-labs/leapdb/pkg/connections/sqlite"
package connection

import (
	"context"

	"github.com/leapstack-labs/leapdb/pkg/core"
	"github.com/leapstack-labs/leapdb/pkg/dialect"
	"github.com/leapstack-labs/leapdb/pkg/query"
	"github.com/leapstack-labs/leapdb/pkg/schema"
)

// Connection is one checked-out database session. It runs one statement at
// a time; use several connections for concurrent work.
type Connection interface {
	core.Executor

	// Connect checks a session out of the pool. Connecting twice is a no-op.
	Connect(ctx context.Context) error

	// Disconnect rolls back any open transaction and returns the session to
	// the pool.
	Disconnect() error

	// IsConnected reports whether a session is checked out.
	IsConnected() bool

	BeginTransaction(ctx context.Context) error
	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error

	// Query returns a new builder bound to this connection.
	Query() *query.Query

	// Schema returns a DDL façade bound to this connection.
	Schema() *schema.Schema

	QueryGrammar() query.Grammar
	SchemaGrammar() *schema.Grammar
}

// Pool owns the shared resources of one database and hands out
// connections. Pools are created stopped; Startup must succeed before
// connections can connect, and Shutdown releases everything.
type Pool interface {
	// Driver returns the registered driver name.
	Driver() string

	// Dialect returns the dialect connections compile with.
	Dialect() *dialect.Dialect

	Startup(ctx context.Context) error
	Shutdown() error

	// NewConnection creates an unconnected connection bound to the pool.
	NewConnection() Connection
}
