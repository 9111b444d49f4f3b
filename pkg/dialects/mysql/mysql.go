// Package mysql provides the MySQL dialect.
package mysql

import (
	"github.com/leapstack-labs/leapdb/pkg/core"
	"github.com/leapstack-labs/leapdb/pkg/dialect"
	"github.com/leapstack-labs/leapdb/pkg/query"
	"github.com/leapstack-labs/leapdb/pkg/schema"
)

// Name is the registered dialect name.
const Name = "mysql"

// QueryGrammar compiles queries with "?" placeholders. MySQL has no
// returning clause: generated keys come from the driver's last insert id.
type QueryGrammar struct {
	query.BaseGrammar
}

// NewQueryGrammar creates the MySQL query grammar.
func NewQueryGrammar() *QueryGrammar {
	return &QueryGrammar{BaseGrammar: query.BaseGrammar{
		Dialect:     Name,
		Placeholder: core.PlaceholderQuestion,
	}}
}

// CompileInsertGetID compiles a plain insert. The connection reports the
// generated key as last_insert_id.
func (g *QueryGrammar) CompileInsertGetID(q *query.Query, data map[string]core.Parameter, _ []string) (core.CompiledSQL, error) {
	return g.CompileInsert(q, data)
}

// CompileUpsert compiles "on duplicate key update c = values(c)". The
// conflict target is whichever unique key the row collides with, so
// conflictFields only supply the no-op assignment when updateFields is empty.
func (g *QueryGrammar) CompileUpsert(q *query.Query, data map[string]core.Parameter, conflictFields, updateFields []string) (core.CompiledSQL, error) {
	if len(conflictFields) == 0 {
		return core.CompiledSQL{}, query.ErrConflictFieldsRequired
	}
	s, _, err := g.InsertStatement(q, data)
	if err != nil {
		return core.CompiledSQL{}, err
	}
	if len(q.Parts().Where) > 0 {
		return core.CompiledSQL{}, &query.UnsupportedError{Dialect: Name, Feature: "where on upsert"}
	}

	s.Emit("on", "duplicate", "key", "update")
	if len(updateFields) == 0 {
		s.Emit(conflictFields[0], "=", conflictFields[0])
		return s.Compiled(), nil
	}
	for i, col := range updateFields {
		if i > 0 {
			s.Emit(",")
		}
		s.Emit(col, "=", "values(", col, ")")
	}
	return s.Compiled(), nil
}

// SchemaDialect maps column types for MySQL.
type SchemaDialect struct{}

func (SchemaDialect) Name() string                       { return Name }
func (SchemaDialect) Placeholder() core.PlaceholderStyle { return core.PlaceholderQuestion }

func (SchemaDialect) Features() schema.Features {
	return schema.Features{
		AlterConstraints:     true,
		RenameTableStatement: true,
		IndexType:            schema.IndexTypeAfterColumns,
	}
}

func (SchemaDialect) TableExistsSQL() string {
	return "select count(*) as count from information_schema.tables where table_schema = database() and table_name = ?"
}

func (SchemaDialect) ColumnType(_ string, col *schema.Column) (string, error) {
	switch col.Properties.Type {
	case schema.TypeSerial:
		return "bigint unsigned auto_increment", nil
	case schema.TypeFloat:
		return "float", nil
	case schema.TypeDouble:
		return "double", nil
	case schema.TypeJSON:
		return "json", nil
	case schema.TypeUUID:
		return "char(36)", nil
	case schema.TypeTimestamp:
		return "datetime", nil
	}
	if typ, ok := schema.GenericColumnType(col); ok {
		return typ, nil
	}
	return "", &schema.UnknownColumnTypeError{Dialect: Name, Column: col.Name, Type: col.Properties.Type}
}

func init() {
	dialect.Register(&dialect.Dialect{
		Name:    Name,
		Aliases: []string{"mariadb"},
		Query:   NewQueryGrammar(),
		Schema:  SchemaDialect{},
	})
}
