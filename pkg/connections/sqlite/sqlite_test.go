package sqlite_test

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leapstack-labs/leapdb/internal/testutil"
	"github.com/leapstack-labs/leapdb/pkg/connection"
	"github.com/leapstack-labs/leapdb/pkg/connections/sqlite"
	"github.com/leapstack-labs/leapdb/pkg/core"
	"github.com/leapstack-labs/leapdb/pkg/query"
	"github.com/leapstack-labs/leapdb/pkg/schema"
)

func newPool(t *testing.T) *connection.SQLPool {
	t.Helper()
	pool, err := sqlite.New(core.ConnectionConfig{
		Driver: sqlite.DriverName,
		Path:   filepath.Join(t.TempDir(), "test.db"),
	}, testutil.NewTestLogger(t, "driver", "sqlite"))
	require.NoError(t, err)
	require.NoError(t, pool.Startup(context.Background()))
	t.Cleanup(func() { _ = pool.Shutdown() })
	return pool
}

func newConn(t *testing.T, pool connection.Pool) connection.Connection {
	t.Helper()
	conn := pool.NewConnection()
	require.NoError(t, conn.Connect(context.Background()))
	t.Cleanup(func() { _ = conn.Disconnect() })
	return conn
}

func seeded(t *testing.T) (*connection.SQLPool, connection.Connection) {
	t.Helper()
	pool := newPool(t)
	conn := newConn(t, pool)
	testutil.SeedPosts(context.Background(), t, conn)
	return pool, conn
}

func TestBuildDSN(t *testing.T) {
	tests := []struct {
		name    string
		path    string
		options map[string]string
		want    string
	}{
		{
			name: "default pragmas",
			path: "/tmp/app.db",
			want: "file:/tmp/app.db?_pragma=busy_timeout(5000)&_pragma=foreign_keys(1)&_pragma=journal_mode(WAL)",
		},
		{
			name:    "options override and extend pragmas",
			path:    "/tmp/app.db",
			options: map[string]string{"journal_mode": "DELETE", "synchronous": "NORMAL"},
			want:    "file:/tmp/app.db?_pragma=busy_timeout(5000)&_pragma=foreign_keys(1)&_pragma=journal_mode(DELETE)&_pragma=synchronous(NORMAL)",
		},
		{
			name: "empty path is in-memory",
			want: "file::memory:?_pragma=busy_timeout(5000)&_pragma=foreign_keys(1)&_pragma=journal_mode(WAL)",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, sqlite.BuildDSN(tt.path, tt.options))
		})
	}
}

func TestNew_MemoryUsesSingleSession(t *testing.T) {
	pool, err := sqlite.New(core.ConnectionConfig{Path: sqlite.MemoryPath}, nil)
	require.NoError(t, err)
	assert.Equal(t, 1, pool.Cfg.Pool.MaxConns)
	assert.True(t, pool.PinSessions)
	assert.Equal(t, sqlite.DriverName, pool.Driver())
	assert.Equal(t, "sqlite", pool.Dialect().Name)
}

func TestIsMemory(t *testing.T) {
	tests := []struct {
		name string
		cfg  core.ConnectionConfig
		want bool
	}{
		{"empty path", core.ConnectionConfig{}, true},
		{"memory path", core.ConnectionConfig{Path: sqlite.MemoryPath}, true},
		{"file path", core.ConnectionConfig{Path: "/tmp/app.db"}, false},
		{"memory dsn", core.ConnectionConfig{DSN: "file:test?mode=memory&cache=shared"}, true},
		{"file dsn", core.ConnectionConfig{DSN: "file:/tmp/app.db"}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, sqlite.IsMemory(tt.cfg))
		})
	}
}

func TestMemoryDatabaseSurvivesIdleTimeout(t *testing.T) {
	ctx := context.Background()
	pool, err := sqlite.New(core.ConnectionConfig{
		Path: sqlite.MemoryPath,
		Pool: core.PoolConfig{IdleTimeout: 50 * time.Millisecond},
	}, testutil.NewTestLogger(t, "driver", "sqlite"))
	require.NoError(t, err)
	require.NoError(t, pool.Startup(ctx))
	t.Cleanup(func() { _ = pool.Shutdown() })

	conn := pool.NewConnection()
	require.NoError(t, conn.Schema().CreateTable(ctx, "t", func(b *schema.Blueprint) {
		b.ID()
	}))
	require.NoError(t, conn.Disconnect())

	time.Sleep(300 * time.Millisecond)

	conn = newConn(t, pool)
	exists, err := conn.Schema().TableExists(ctx, "t")
	require.NoError(t, err)
	assert.True(t, exists)
}

func TestRegistered(t *testing.T) {
	assert.True(t, connection.IsRegistered(sqlite.DriverName))

	pool, err := connection.Open(core.ConnectionConfig{
		Driver: sqlite.DriverName,
		Path:   filepath.Join(t.TempDir(), "reg.db"),
	}, nil)
	require.NoError(t, err)
	assert.Equal(t, sqlite.DriverName, pool.Driver())
}

func TestConnection_LazyConnect(t *testing.T) {
	pool := newPool(t)
	conn := pool.NewConnection()
	t.Cleanup(func() { _ = conn.Disconnect() })

	assert.False(t, conn.IsConnected())
	exists, err := conn.Schema().TableExists(context.Background(), "posts")
	require.NoError(t, err)
	assert.False(t, exists)
	assert.True(t, conn.IsConnected())
}

func TestPosts_WhereAndDelete(t *testing.T) {
	ctx := context.Background()
	_, conn := seeded(t)

	rows, err := conn.Query().Table("posts").WhereOp("search_order", "<", "55").Get(ctx)
	require.NoError(t, err)
	assert.Len(t, rows, 51)

	summary, err := conn.Query().Table("posts").WhereOp("search_order", ">", 84).Delete(ctx)
	require.NoError(t, err)
	require.Len(t, summary, 1)
	assert.Equal(t, int64(16), summary[0][core.ColumnRowsAffected])

	rows, err = conn.Query().Table("posts").Get(ctx)
	require.NoError(t, err)
	assert.Len(t, rows, 84)
}

func TestPosts_Filters(t *testing.T) {
	ctx := context.Background()
	_, conn := seeded(t)

	tests := []struct {
		name  string
		build func(*query.Query) *query.Query
		want  int64
	}{
		{
			name:  "in list",
			build: func(q *query.Query) *query.Query { return q.WhereOp("id", "in", []int{1, 2, 3}) },
			want:  3,
		},
		{
			name:  "empty in list matches nothing",
			build: func(q *query.Query) *query.Query { return q.WhereOp("id", "in", []int{}) },
			want:  0,
		},
		{
			name: "or group",
			build: func(q *query.Query) *query.Query {
				return q.WhereOp("search_order", "=", 0).WhereOp("search_order", "=", 100, query.Or())
			},
			want: 2,
		},
		{
			name: "nested group",
			build: func(q *query.Query) *query.Query {
				return q.WhereOp("search_order", ">=", 55).WhereNested(func(n *query.Query) {
					n.WhereOp("search_order", "=", 55).WhereOp("search_order", "=", 56, query.Or())
				})
			},
			want: 4,
		},
		{
			name:  "raw fragment",
			build: func(q *query.Query) *query.Query { return q.WhereRaw("search_order between ? and ?", []core.Parameter{10, 19}) },
			want:  10,
		},
		{
			name:  "null check",
			build: func(q *query.Query) *query.Query { return q.WhereNull("body") },
			want:  0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.build(conn.Query().Table("posts")).Count(ctx)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestPosts_GroupByHaving(t *testing.T) {
	ctx := context.Background()
	_, conn := seeded(t)

	rows, err := conn.Query().Table("posts").
		Select("search_order", "count(*) as n").
		WhereOp("search_order", ">=", 55).
		WhereOp("search_order", "<=", 84).
		GroupBy("search_order").
		HavingRaw("count(*) > ?", []core.Parameter{1}).
		OrderBy("search_order").
		Get(ctx)
	require.NoError(t, err)
	// 51..83 cycle through 55..84, so 55, 56 and 57 appear twice.
	require.Len(t, rows, 3)
	assert.Equal(t, int64(55), rows[0]["search_order"])
	assert.Equal(t, int64(2), rows[0]["n"])
}

func TestPosts_FirstAndPaging(t *testing.T) {
	ctx := context.Background()
	_, conn := seeded(t)

	row, err := conn.Query().Table("posts").OrderBy("id", "desc").First(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(100), row["id"])
	assert.Equal(t, "post 99", row["title"])

	_, err = conn.Query().Table("posts").WhereOp("id", "<", 0).First(ctx)
	require.ErrorIs(t, err, query.ErrNoRows)

	rows, err := conn.Query().Table("posts").OrderBy("id").Limit(5).Offset(10).Get(ctx)
	require.NoError(t, err)
	require.Len(t, rows, 5)
	assert.Equal(t, int64(11), rows[0]["id"])
}

func TestPosts_InsertGetIDAndUpdate(t *testing.T) {
	ctx := context.Background()
	_, conn := seeded(t)

	rows, err := conn.Query().Table("posts").InsertGetID(ctx, map[string]core.Parameter{
		"title":        "fresh",
		"search_order": 500,
	})
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, int64(101), rows[0]["id"])

	summary, err := conn.Query().Table("posts").WhereOp("id", "=", 101).Update(ctx, map[string]core.Parameter{
		"title": "renamed",
	})
	require.NoError(t, err)
	assert.Equal(t, int64(1), summary[0][core.ColumnRowsAffected])

	row, err := conn.Query().Table("posts").WhereOp("id", "=", 101).First(ctx)
	require.NoError(t, err)
	assert.Equal(t, "renamed", row["title"])
	assert.Nil(t, row["body"])
}

func TestUpsert(t *testing.T) {
	ctx := context.Background()
	pool := newPool(t)
	conn := newConn(t, pool)

	require.NoError(t, conn.Schema().CreateTable(ctx, "settings", func(b *schema.Blueprint) {
		b.String("name").Unique()
		b.String("value")
		b.Integer("hits")
	}))

	upsert := func(value string, hits int, update ...string) {
		t.Helper()
		_, err := conn.Query().Table("settings").Upsert(ctx, map[string]core.Parameter{
			"name":  "theme",
			"value": value,
			"hits":  hits,
		}, []string{"name"}, update)
		require.NoError(t, err)
	}
	current := func() core.Row {
		t.Helper()
		row, err := conn.Query().Table("settings").WhereOp("name", "=", "theme").First(ctx)
		require.NoError(t, err)
		return row
	}

	upsert("dark", 1, "value")
	assert.Equal(t, core.Row{"name": "theme", "value": "dark", "hits": int64(1)}, current())

	// Only the named update fields change on conflict.
	upsert("light", 7, "value")
	assert.Equal(t, core.Row{"name": "theme", "value": "light", "hits": int64(1)}, current())

	// No update fields leaves the existing row alone.
	upsert("solarized", 9)
	assert.Equal(t, core.Row{"name": "theme", "value": "light", "hits": int64(1)}, current())

	count, err := conn.Query().Table("settings").Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)
}

func TestCursor(t *testing.T) {
	ctx := context.Background()
	_, conn := seeded(t)

	cursor, err := conn.Query().Table("posts").Select("id").OrderBy("id").GetCursor(ctx)
	require.NoError(t, err)

	var sizes []int
	var last any
	for {
		chunk, err := cursor.Read(ctx, 30)
		require.NoError(t, err)
		if len(chunk) == 0 {
			break
		}
		sizes = append(sizes, len(chunk))
		last = chunk[len(chunk)-1]["id"]
	}
	require.NoError(t, cursor.Close())

	assert.Equal(t, []int{30, 30, 30, 10}, sizes)
	assert.Equal(t, int64(100), last)
}

func TestTransaction_Isolation(t *testing.T) {
	ctx := context.Background()
	pool, writer := seeded(t)
	reader := newConn(t, pool)

	count := func(conn connection.Connection) int64 {
		t.Helper()
		n, err := conn.Query().Table("posts").Count(ctx)
		require.NoError(t, err)
		return n
	}

	require.NoError(t, writer.BeginTransaction(ctx))
	_, err := writer.Query().Table("posts").Insert(ctx, map[string]core.Parameter{
		"title":        "pending",
		"search_order": 1000,
	})
	require.NoError(t, err)

	assert.Equal(t, int64(101), count(writer))
	assert.Equal(t, int64(100), count(reader))

	require.NoError(t, writer.Commit(ctx))
	assert.Equal(t, int64(101), count(reader))
}

func TestTransaction_Rollback(t *testing.T) {
	ctx := context.Background()
	_, conn := seeded(t)

	require.NoError(t, conn.BeginTransaction(ctx))
	require.ErrorIs(t, conn.BeginTransaction(ctx), connection.ErrTransactionActive)

	_, err := conn.Query().Table("posts").Delete(ctx)
	require.NoError(t, err)
	require.NoError(t, conn.Rollback(ctx))
	require.ErrorIs(t, conn.Commit(ctx), connection.ErrNoTransaction)

	n, err := conn.Query().Table("posts").Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(100), n)
}

func TestSchema_Lifecycle(t *testing.T) {
	ctx := context.Background()
	_, conn := seeded(t)
	s := conn.Schema()

	require.NoError(t, s.AlterTable(ctx, "posts", func(b *schema.Blueprint) {
		b.String("slug").Nullable()
		b.Index("slug")
	}))
	_, err := conn.Query().Table("posts").WhereOp("id", "=", 1).Update(ctx, map[string]core.Parameter{"slug": "first"})
	require.NoError(t, err)

	require.NoError(t, s.RenameTable(ctx, "posts", "articles"))
	exists, err := s.TableExists(ctx, "posts")
	require.NoError(t, err)
	assert.False(t, exists)

	row, err := conn.Query().Table("articles").WhereOp("slug", "=", "first").First(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), row["id"])

	require.NoError(t, s.DropTable(ctx, "articles"))
	exists, err = s.TableExists(ctx, "articles")
	require.NoError(t, err)
	assert.False(t, exists)

	require.NoError(t, s.DropTableIfExists(ctx, "articles"))
}
