package mysql_test

import (
	"context"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leapstack-labs/leapdb/internal/testutil"
	"github.com/leapstack-labs/leapdb/pkg/connection"
	"github.com/leapstack-labs/leapdb/pkg/connections/mysql"
	"github.com/leapstack-labs/leapdb/pkg/core"
)

func TestBuildConfig(t *testing.T) {
	tests := []struct {
		name       string
		cfg        core.ConnectionConfig
		wantAddr   string
		wantUser   string
		wantDB     string
		wantParams map[string]string
	}{
		{
			name:     "defaults",
			cfg:      core.ConnectionConfig{Database: "app"},
			wantAddr: "localhost:3306",
			wantDB:   "app",
		},
		{
			name: "credentials and options",
			cfg: core.ConnectionConfig{
				Host:     "db",
				Port:     3307,
				Database: "app",
				Username: "root",
				Password: "secret",
				Options:  map[string]string{"charset": "utf8mb4"},
			},
			wantAddr:   "db:3307",
			wantUser:   "root",
			wantDB:     "app",
			wantParams: map[string]string{"charset": "utf8mb4"},
		},
		{
			name:     "dsn wins",
			cfg:      core.ConnectionConfig{DSN: "u:p@tcp(other:3306)/x", Database: "ignored"},
			wantAddr: "other:3306",
			wantUser: "u",
			wantDB:   "x",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mcfg, err := mysql.BuildConfig(tt.cfg)
			require.NoError(t, err)
			assert.Equal(t, "tcp", mcfg.Net)
			assert.Equal(t, tt.wantAddr, mcfg.Addr)
			assert.Equal(t, tt.wantUser, mcfg.User)
			assert.Equal(t, tt.wantDB, mcfg.DBName)
			assert.True(t, mcfg.MultiStatements)
			assert.True(t, mcfg.ParseTime)
			for k, v := range tt.wantParams {
				assert.Equal(t, v, mcfg.Params[k])
			}
		})
	}
}

func TestBuildConfig_InvalidDSN(t *testing.T) {
	_, err := mysql.BuildConfig(core.ConnectionConfig{DSN: "not a dsn"})
	require.Error(t, err)
}

func TestConnection_RequiresConnect(t *testing.T) {
	pool, err := mysql.New(core.ConnectionConfig{Database: "app"}, nil)
	require.NoError(t, err)

	_, err = pool.NewConnection().Query().Table("posts").Get(context.Background())
	var protoErr *connection.ProtocolError
	require.ErrorAs(t, err, &protoErr)
}

func TestIntegration_Posts(t *testing.T) {
	dsn := os.Getenv("LEAPDB_TEST_MYSQL_DSN")
	if dsn == "" {
		t.Skip("LEAPDB_TEST_MYSQL_DSN not set")
	}
	ctx := context.Background()

	pool, err := mysql.New(core.ConnectionConfig{DSN: dsn}, testutil.NewTestLogger(t, "driver", "mysql"))
	require.NoError(t, err)
	require.NoError(t, pool.Startup(ctx))
	t.Cleanup(func() { _ = pool.Shutdown() })

	conn := pool.NewConnection()
	require.NoError(t, conn.Connect(ctx))
	t.Cleanup(func() { _ = conn.Disconnect() })

	require.NoError(t, conn.Schema().DropTableIfExists(ctx, "posts"))
	testutil.SeedPosts(ctx, t, conn)
	t.Cleanup(func() { _ = conn.Schema().DropTableIfExists(ctx, "posts") })

	rows, err := conn.Query().Table("posts").WhereOp("search_order", "<", "55").Get(ctx)
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
}
