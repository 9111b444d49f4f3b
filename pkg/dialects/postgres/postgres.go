// Package postgres provides the PostgreSQL dialect.
package postgres

import (
	"github.com/leapstack-labs/leapdb/pkg/core"
	"github.com/leapstack-labs/leapdb/pkg/dialect"
	"github.com/leapstack-labs/leapdb/pkg/query"
	"github.com/leapstack-labs/leapdb/pkg/schema"
)

// Name is the registered dialect name.
const Name = "postgres"

// QueryGrammar compiles queries with $n placeholders, array binding for
// "in", "returning" for generated keys and "on conflict" upserts.
type QueryGrammar struct {
	query.BaseGrammar
}

// NewQueryGrammar creates the PostgreSQL query grammar.
func NewQueryGrammar() *QueryGrammar {
	return &QueryGrammar{BaseGrammar: query.BaseGrammar{
		Dialect:      Name,
		Placeholder:  core.PlaceholderDollar,
		ArrayBinding: true,
	}}
}

// SchemaDialect maps column types for PostgreSQL.
type SchemaDialect struct{}

func (SchemaDialect) Name() string                       { return Name }
func (SchemaDialect) Placeholder() core.PlaceholderStyle { return core.PlaceholderDollar }

func (SchemaDialect) Features() schema.Features {
	return schema.Features{
		AlterConstraints: true,
		IndexType:        schema.IndexTypeBeforeColumns,
	}
}

func (SchemaDialect) TableExistsSQL() string {
	return "select count(*) as count from information_schema.tables where table_schema = current_schema() and table_name = ?"
}

func (SchemaDialect) ColumnType(_ string, col *schema.Column) (string, error) {
	switch col.Properties.Type {
	case schema.TypeSerial:
		return "serial", nil
	case schema.TypeFloat:
		return "real", nil
	case schema.TypeDouble:
		return "double precision", nil
	case schema.TypeJSON:
		return "jsonb", nil
	case schema.TypeUUID:
		return "uuid", nil
	}
	if typ, ok := schema.GenericColumnType(col); ok {
		return typ, nil
	}
	return "", &schema.UnknownColumnTypeError{Dialect: Name, Column: col.Name, Type: col.Properties.Type}
}

func init() {
	dialect.Register(&dialect.Dialect{
		Name:    Name,
		Aliases: []string{"postgresql", "pgx"},
		Query:   NewQueryGrammar(),
		Schema:  SchemaDialect{},
	})
}
