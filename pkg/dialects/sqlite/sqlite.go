// Package sqlite provides the SQLite dialect.
package sqlite

import (
	"github.com/leapstack-labs/leapdb/pkg/core"
	"github.com/leapstack-labs/leapdb/pkg/dialect"
	"github.com/leapstack-labs/leapdb/pkg/query"
	"github.com/leapstack-labs/leapdb/pkg/schema"
)

// Name is the registered dialect name.
const Name = "sqlite"

// NewQueryGrammar creates the SQLite query grammar: "?" placeholders,
// expanded "in" lists, "returning" and "on conflict" from the base grammar.
func NewQueryGrammar() *query.BaseGrammar {
	return &query.BaseGrammar{Dialect: Name, Placeholder: core.PlaceholderQuestion}
}

// SchemaDialect maps column types for SQLite. Serial columns are declared
// "integer" so the table-level primary key makes them rowid aliases.
type SchemaDialect struct{}

func (SchemaDialect) Name() string                       { return Name }
func (SchemaDialect) Placeholder() core.PlaceholderStyle { return core.PlaceholderQuestion }

func (SchemaDialect) Features() schema.Features {
	return schema.Features{AlterPerClause: true}
}

func (SchemaDialect) TableExistsSQL() string {
	return "select count(*) as count from sqlite_master where type = 'table' and name = ?"
}

func (SchemaDialect) ColumnType(_ string, col *schema.Column) (string, error) {
	switch col.Properties.Type {
	case schema.TypeSerial:
		return "integer", nil
	case schema.TypeString, schema.TypeChar, schema.TypeJSON, schema.TypeUUID:
		return "text", nil
	case schema.TypeFloat, schema.TypeDouble:
		return "real", nil
	case schema.TypeDecimal:
		return "numeric", nil
	}
	if typ, ok := schema.GenericColumnType(col); ok {
		return typ, nil
	}
	return "", &schema.UnknownColumnTypeError{Dialect: Name, Column: col.Name, Type: col.Properties.Type}
}

func init() {
	dialect.Register(&dialect.Dialect{
		Name:    Name,
		Aliases: []string{"sqlite3"},
		Query:   NewQueryGrammar(),
		Schema:  SchemaDialect{},
	})
}
