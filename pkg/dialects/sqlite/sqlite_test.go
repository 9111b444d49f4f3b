package sqlite_test

import (
	"testing"

	"github.com/leapstack-labs/leapdb/pkg/core"
	"github.com/leapstack-labs/leapdb/pkg/dialects/sqlite"
	"github.com/leapstack-labs/leapdb/pkg/query"
	"github.com/leapstack-labs/leapdb/pkg/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQueryGrammar(t *testing.T) {
	g := sqlite.NewQueryGrammar()

	q := query.New(g, nil).Table("posts")
	compiled, err := g.CompileInsertGetID(q, map[string]core.Parameter{"title": "x"}, []string{"id"})
	require.NoError(t, err)
	assert.Equal(t, "insert into posts (title) values (?) returning id", compiled.SQL)

	compiled, err = query.New(g, nil).Table("posts").WhereOp("id", "in", []int{1, 2}).ToSQL()
	require.NoError(t, err)
	assert.Equal(t, "select * from posts where id in (?, ?)", compiled.SQL)
}

func TestSchemaGrammar(t *testing.T) {
	g := schema.NewGrammar(sqlite.SchemaDialect{})

	t.Run("create", func(t *testing.T) {
		b := schema.NewBlueprint("posts", false)
		b.ID()
		b.String("title")
		b.Integer("search_order")
		b.Index("search_order")

		compiled, err := g.CompileCreateTable(b)
		require.NoError(t, err)
		assert.Equal(t, "create table posts (id integer not null, title text not null, search_order integer not null, primary key (id)); "+
			"create index posts_search_order_index on posts (search_order)", compiled.SQL)
	})

	t.Run("alter emits one statement per column", func(t *testing.T) {
		b := schema.NewBlueprint("posts", true)
		b.Text("summary").Nullable()
		b.Boolean("draft").Default(true)
		b.DropColumn("legacy")

		compiled, err := g.CompileAlterTable(b)
		require.NoError(t, err)
		assert.Equal(t, "alter table posts add column summary text; "+
			"alter table posts add column draft boolean not null default true; "+
			"alter table posts drop column legacy", compiled.SQL)
		assert.Equal(t, compiled.SQL, core.JoinParts(compiled.Parts))
	})

	t.Run("foreign keys cannot be added later", func(t *testing.T) {
		b := schema.NewBlueprint("posts", true)
		b.Foreign("user_id").References("users", "id")
		_, err := g.CompileAlterTable(b)
		var unsupported *query.UnsupportedError
		assert.ErrorAs(t, err, &unsupported)
	})
}
