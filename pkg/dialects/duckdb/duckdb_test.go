package duckdb_test

import (
	"testing"

	"github.com/leapstack-labs/leapdb/pkg/dialect"
	"github.com/leapstack-labs/leapdb/pkg/dialects/duckdb"
	"github.com/leapstack-labs/leapdb/pkg/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSchemaGrammar(t *testing.T) {
	d, err := dialect.Lookup(duckdb.Name)
	require.NoError(t, err)
	g := d.SchemaGrammar()

	b := schema.NewBlueprint("metrics", false)
	b.ID()
	b.Double("value")
	b.JSON("labels").Nullable()

	compiled, err := g.CompileCreateTable(b)
	require.NoError(t, err)
	assert.Equal(t, "create sequence if not exists metrics_id_seq; "+
		"create table metrics (id integer default nextval('metrics_id_seq') not null, value double not null, labels json, primary key (id))",
		compiled.SQL)

	alter := schema.NewBlueprint("metrics", true)
	alter.String("unit", 16).Nullable()
	alter.DropColumn("labels")
	compiled, err = g.CompileAlterTable(alter)
	require.NoError(t, err)
	assert.Equal(t, "alter table metrics add column unit varchar(16); alter table metrics drop column labels", compiled.SQL)
}
