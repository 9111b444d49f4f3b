package postgres_test

import (
	"testing"

	"github.com/leapstack-labs/leapdb/pkg/core"
	"github.com/leapstack-labs/leapdb/pkg/dialect"
	"github.com/leapstack-labs/leapdb/pkg/dialects/postgres"
	"github.com/leapstack-labs/leapdb/pkg/query"
	"github.com/leapstack-labs/leapdb/pkg/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistered(t *testing.T) {
	d, err := dialect.Lookup("postgresql")
	require.NoError(t, err)
	assert.Equal(t, postgres.Name, d.Name)
	assert.Equal(t, postgres.Name, d.Query.Name())
}

func TestQueryGrammar(t *testing.T) {
	g := postgres.NewQueryGrammar()

	t.Run("insert get id appends one returning clause", func(t *testing.T) {
		q := query.New(g, nil).Table("posts")
		compiled, err := g.CompileInsertGetID(q, map[string]core.Parameter{"title": "a", "body": "b"}, []string{"id", "version"})
		require.NoError(t, err)
		assert.Equal(t, "insert into posts (body, title) values ($1, $2) returning id, version", compiled.SQL)
		assert.Equal(t, compiled.SQL, core.JoinParts(compiled.Parts))
	})

	t.Run("counter restarts between insert and update", func(t *testing.T) {
		q := query.New(g, nil).Table("posts").WhereOp("id", "=", 1)
		data := map[string]core.Parameter{"title": "a"}

		insert, err := g.CompileInsert(q, data)
		require.NoError(t, err)
		update, err := g.CompileUpdate(q, data)
		require.NoError(t, err)

		assert.Equal(t, "insert into posts (title) values ($1)", insert.SQL)
		assert.Equal(t, "update posts set title = $1 where id = $2", update.SQL)
	})

	t.Run("in binds an array", func(t *testing.T) {
		compiled, err := query.New(g, nil).Table("posts").WhereOp("id", "in", []int64{1, 2}).ToSQL()
		require.NoError(t, err)
		assert.Equal(t, "select * from posts where id = ANY($1)", compiled.SQL)
		assert.Equal(t, []core.Parameter{[]int64{1, 2}}, compiled.Bindings)
	})

	t.Run("upsert", func(t *testing.T) {
		q := query.New(g, nil).Table("users")
		compiled, err := g.CompileUpsert(q,
			map[string]core.Parameter{"email": "a@b.c", "name": "A", "visits": 1},
			[]string{"email"}, []string{"name"})
		require.NoError(t, err)
		assert.Equal(t, "insert into users (email, name, visits) values ($1, $2, $3) on conflict (email) do update set name = excluded.name", compiled.SQL)
	})
}

func TestSchemaGrammar(t *testing.T) {
	g := schema.NewGrammar(postgres.SchemaDialect{})

	b := schema.NewBlueprint("events", false)
	b.ID()
	b.UUID("ref")
	b.JSON("payload").Nullable()
	b.Float("ratio")
	b.Double("score")
	b.Decimal("price", 8, 2)
	b.Index("payload").Using("gin")

	compiled, err := g.CompileCreateTable(b)
	require.NoError(t, err)
	assert.Equal(t, "create table events (id serial not null, ref uuid not null, payload jsonb, ratio real not null, "+
		"score double precision not null, price decimal(8, 2) not null, primary key (id)); "+
		"create index events_payload_index on events using gin (payload)", compiled.SQL)

	exists, err := g.CompileTableExists("events")
	require.NoError(t, err)
	assert.Equal(t, "select count(*) as count from information_schema.tables where table_schema = current_schema() and table_name = $1", exists.SQL)
}
