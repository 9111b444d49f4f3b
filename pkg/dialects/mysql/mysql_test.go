package mysql_test

import (
	"testing"

	"github.com/leapstack-labs/leapdb/pkg/core"
	"github.com/leapstack-labs/leapdb/pkg/dialect"
	"github.com/leapstack-labs/leapdb/pkg/dialects/mysql"
	"github.com/leapstack-labs/leapdb/pkg/query"
	"github.com/leapstack-labs/leapdb/pkg/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistered(t *testing.T) {
	d, err := dialect.Lookup("mariadb")
	require.NoError(t, err)
	assert.Equal(t, mysql.Name, d.Name)
}

func TestQueryGrammar(t *testing.T) {
	g := mysql.NewQueryGrammar()
	data := map[string]core.Parameter{"email": "a@b.c", "name": "A"}

	t.Run("insert get id is a plain insert", func(t *testing.T) {
		q := query.New(g, nil).Table("users")
		compiled, err := g.CompileInsertGetID(q, data, []string{"id"})
		require.NoError(t, err)
		assert.Equal(t, "insert into users (email, name) values (?, ?)", compiled.SQL)
	})

	t.Run("in expands", func(t *testing.T) {
		compiled, err := query.New(g, nil).Table("users").WhereOp("id", "not in", []int{4, 5}).ToSQL()
		require.NoError(t, err)
		assert.Equal(t, "select * from users where id not in (?, ?)", compiled.SQL)
		assert.Equal(t, []core.Parameter{4, 5}, compiled.Bindings)
	})

	t.Run("upsert", func(t *testing.T) {
		q := query.New(g, nil).Table("users")
		compiled, err := g.CompileUpsert(q, data, []string{"email"}, []string{"name"})
		require.NoError(t, err)
		assert.Equal(t, "insert into users (email, name) values (?, ?) on duplicate key update name = values(name)", compiled.SQL)
		assert.Equal(t, compiled.SQL, core.JoinParts(compiled.Parts))
	})

	t.Run("upsert without update fields", func(t *testing.T) {
		q := query.New(g, nil).Table("users")
		compiled, err := g.CompileUpsert(q, data, []string{"email"}, nil)
		require.NoError(t, err)
		assert.Equal(t, "insert into users (email, name) values (?, ?) on duplicate key update email = email", compiled.SQL)
	})

	t.Run("upsert with where is unsupported", func(t *testing.T) {
		q := query.New(g, nil).Table("users").WhereOp("id", ">", 1)
		_, err := g.CompileUpsert(q, data, []string{"email"}, []string{"name"})
		var unsupported *query.UnsupportedError
		require.ErrorAs(t, err, &unsupported)
		assert.Equal(t, mysql.Name, unsupported.Dialect)
	})
}

func TestSchemaGrammar(t *testing.T) {
	g := schema.NewGrammar(mysql.SchemaDialect{})

	b := schema.NewBlueprint("users", false)
	b.ID()
	b.String("email").Unique()
	b.UUID("token")
	b.Timestamps()
	b.Index("token").Using("btree")

	compiled, err := g.CompileCreateTable(b)
	require.NoError(t, err)
	assert.Equal(t, "create table users (id bigint unsigned auto_increment not null, email varchar(255) not null unique, "+
		"token char(36) not null, created_at datetime not null default CURRENT_TIMESTAMP, "+
		"updated_at datetime not null default CURRENT_TIMESTAMP, primary key (id)); "+
		"create index users_token_index on users (token) using btree", compiled.SQL)

	rename, err := g.CompileRenameTable("users", "accounts")
	require.NoError(t, err)
	assert.Equal(t, "rename table users to accounts", rename.SQL)
}
