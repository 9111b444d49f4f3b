package duckdb_test

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leapstack-labs/leapdb/internal/testutil"
	"github.com/leapstack-labs/leapdb/pkg/connection"
	"github.com/leapstack-labs/leapdb/pkg/connections/duckdb"
	"github.com/leapstack-labs/leapdb/pkg/core"
)

func startPool(t *testing.T, cfg core.ConnectionConfig) *connection.SQLPool {
	t.Helper()
	pool, err := duckdb.New(cfg, testutil.NewTestLogger(t, "driver", "duckdb"))
	require.NoError(t, err)
	require.NoError(t, pool.Startup(context.Background()))
	t.Cleanup(func() { _ = pool.Shutdown() })
	return pool
}

func TestNew_InvalidParams(t *testing.T) {
	_, err := duckdb.New(core.ConnectionConfig{Params: map[string]any{"bogus": 1}}, nil)
	require.Error(t, err)
}

func TestPosts(t *testing.T) {
	ctx := context.Background()
	pool := startPool(t, core.ConnectionConfig{Path: filepath.Join(t.TempDir(), "test.duckdb")})
	conn := pool.NewConnection()
	t.Cleanup(func() { _ = conn.Disconnect() })

	testutil.SeedPosts(ctx, t, conn)

	rows, err := conn.Query().Table("posts").WhereOp("search_order", "<", 55).Get(ctx)
	require.NoError(t, err)
	assert.Len(t, rows, 51)

	_, err = conn.Query().Table("posts").WhereOp("search_order", ">", 84).Delete(ctx)
	require.NoError(t, err)

	n, err := conn.Query().Table("posts").Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(84), n)

	ids, err := conn.Query().Table("posts").InsertGetID(ctx, map[string]core.Parameter{
		"title":        "fresh",
		"search_order": 1,
	})
	require.NoError(t, err)
	require.Len(t, ids, 1)
	assert.EqualValues(t, 101, ids[0]["id"])

	exists, err := conn.Schema().TableExists(ctx, "posts")
	require.NoError(t, err)
	assert.True(t, exists)
}

func TestSetup_RejectsUnknownSetting(t *testing.T) {
	pool := startPool(t, core.ConnectionConfig{
		Params: map[string]any{"settings": map[string]any{"not_a_real_setting": "1"}},
	})
	err := pool.NewConnection().Connect(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not_a_real_setting")
}
