// Package duckdb provides the DuckDB dialect.
package duckdb

import (
	"github.com/leapstack-labs/leapdb/pkg/core"
	"github.com/leapstack-labs/leapdb/pkg/dialect"
	"github.com/leapstack-labs/leapdb/pkg/query"
	"github.com/leapstack-labs/leapdb/pkg/schema"
)

// Name is the registered dialect name.
const Name = "duckdb"

// NewQueryGrammar creates the DuckDB query grammar.
func NewQueryGrammar() *query.BaseGrammar {
	return &query.BaseGrammar{Dialect: Name, Placeholder: core.PlaceholderQuestion}
}

// SchemaDialect maps column types for DuckDB. DuckDB has no serial type;
// serial columns default to the next value of a per-column sequence.
type SchemaDialect struct{}

func (SchemaDialect) Name() string                       { return Name }
func (SchemaDialect) Placeholder() core.PlaceholderStyle { return core.PlaceholderQuestion }

func (SchemaDialect) Features() schema.Features {
	return schema.Features{
		AlterPerClause:  true,
		SerialSequences: true,
	}
}

func (SchemaDialect) TableExistsSQL() string {
	return "select count(*) as count from information_schema.tables where table_schema = current_schema() and table_name = ?"
}

func (SchemaDialect) ColumnType(table string, col *schema.Column) (string, error) {
	switch col.Properties.Type {
	case schema.TypeSerial:
		return "integer default nextval('" + schema.SequenceName(table, col.Name) + "')", nil
	case schema.TypeFloat:
		return "float", nil
	case schema.TypeDouble:
		return "double", nil
	case schema.TypeJSON:
		return "json", nil
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
		Name:   Name,
		Query:  NewQueryGrammar(),
		Schema: SchemaDialect{},
	})
}
