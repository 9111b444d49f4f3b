package schema

import (
	"strings"

	"github.com/leapstack-labs/leapdb/pkg/core"
	"github.com/leapstack-labs/leapdb/pkg/query"
)

// statementSeparator joins the statements of one compiled DDL batch.
const statementSeparator = "; "

// Grammar compiles blueprints into DDL for one dialect.
type Grammar struct {
	dialect        Dialect
	strictEscaping bool
}

// Option configures a Grammar.
type Option func(*Grammar)

// WithStrictEscaping doubles every single quote in string literals.
func WithStrictEscaping() Option {
	return func(g *Grammar) { g.strictEscaping = true }
}

// NewGrammar creates a DDL grammar for d.
func NewGrammar(d Dialect, opts ...Option) *Grammar {
	g := &Grammar{dialect: d}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Dialect returns the dialect the grammar compiles for.
func (g *Grammar) Dialect() Dialect {
	return g.dialect
}

// Name returns the dialect name.
func (g *Grammar) Name() string {
	return g.dialect.Name()
}

// batch collects the token arrays of several statements.
type batch [][]string

func (b *batch) add(parts ...string) {
	*b = append(*b, parts)
}

// compiled joins the statements with "; ". The separator is attached to the
// last token of each statement so the parts still join to the same text.
func (b batch) compiled() core.CompiledSQL {
	var parts []string
	var sqls []string
	for i, stmt := range b {
		sqls = append(sqls, core.JoinParts(stmt))
		stmt = append([]string(nil), stmt...)
		if i < len(b)-1 && len(stmt) > 0 {
			stmt[len(stmt)-1] += ";"
		}
		parts = append(parts, stmt...)
	}
	return core.CompiledSQL{
		SQL:      strings.Join(sqls, statementSeparator),
		Bindings: []core.Parameter{},
		Parts:    parts,
	}
}

// CompileBlueprint compiles b as create table or alter table depending on
// ExistingTable.
func (g *Grammar) CompileBlueprint(b *Blueprint) (core.CompiledSQL, error) {
	if b.ExistingTable {
		return g.CompileAlterTable(b)
	}
	return g.CompileCreateTable(b)
}

// CompileCreateTable compiles "create table T (columns, primary key, foreign
// keys)" followed by one create index statement per index, in declared order.
func (g *Grammar) CompileCreateTable(b *Blueprint) (core.CompiledSQL, error) {
	if b.TableName == "" {
		return core.CompiledSQL{}, ErrTableNameRequired
	}
	if len(b.Columns) == 0 {
		return core.CompiledSQL{}, ErrEmptyBlueprint
	}

	var out batch
	g.sequences(&out, b)

	stmt := []string{"create", "table", b.TableName, "("}
	for i, col := range b.Columns {
		def, err := g.columnDefinition(b.TableName, col)
		if err != nil {
			return core.CompiledSQL{}, err
		}
		if i > 0 {
			stmt = append(stmt, ",")
		}
		stmt = append(stmt, def...)
	}
	if len(b.PrimaryKeys) > 0 {
		stmt = append(stmt, ",")
		stmt = append(stmt, primaryKey(b.PrimaryKeys)...)
	}
	for _, fk := range b.ForeignKeys {
		stmt = append(stmt, ",")
		stmt = append(stmt, foreignKey(fk)...)
	}
	stmt = append(stmt, ")")
	out.add(stmt...)

	g.indexes(&out, b)
	return out.compiled(), nil
}

// CompileAlterTable compiles "alter table T add column ..., drop column ..."
// followed by the index statements. With only indexes to add, the batch holds
// just the index statements.
func (g *Grammar) CompileAlterTable(b *Blueprint) (core.CompiledSQL, error) {
	if b.TableName == "" {
		return core.CompiledSQL{}, ErrTableNameRequired
	}

	var clauses [][]string
	for _, col := range b.Columns {
		def, err := g.columnDefinition(b.TableName, col)
		if err != nil {
			return core.CompiledSQL{}, err
		}
		clauses = append(clauses, append([]string{"add", "column"}, def...))
	}
	for _, name := range b.DropColumns {
		clauses = append(clauses, []string{"drop", "column", name})
	}
	if len(b.PrimaryKeys) > 0 || len(b.ForeignKeys) > 0 {
		if !g.dialect.Features().AlterConstraints {
			return core.CompiledSQL{}, &query.UnsupportedError{Dialect: g.Name(), Feature: "adding constraints to an existing table"}
		}
		if len(b.PrimaryKeys) > 0 {
			clauses = append(clauses, append([]string{"add"}, primaryKey(b.PrimaryKeys)...))
		}
		for _, fk := range b.ForeignKeys {
			clauses = append(clauses, append([]string{"add"}, foreignKey(fk)...))
		}
	}
	if len(clauses) == 0 && len(b.Indexes) == 0 {
		return core.CompiledSQL{}, ErrEmptyBlueprint
	}

	var out batch
	g.sequences(&out, b)
	switch {
	case len(clauses) == 0:
	case g.dialect.Features().AlterPerClause:
		for _, clause := range clauses {
			out.add(append([]string{"alter", "table", b.TableName}, clause...)...)
		}
	default:
		stmt := []string{"alter", "table", b.TableName}
		for i, clause := range clauses {
			if i > 0 {
				stmt = append(stmt, ",")
			}
			stmt = append(stmt, clause...)
		}
		out.add(stmt...)
	}

	g.indexes(&out, b)
	return out.compiled(), nil
}

// CompileDropTable compiles "drop table T".
func (g *Grammar) CompileDropTable(table string) (core.CompiledSQL, error) {
	if table == "" {
		return core.CompiledSQL{}, ErrTableNameRequired
	}
	return core.NewCompiledSQL([]string{"drop", "table", table}, nil), nil
}

// CompileDropTableIfExists compiles "drop table if exists T".
func (g *Grammar) CompileDropTableIfExists(table string) (core.CompiledSQL, error) {
	if table == "" {
		return core.CompiledSQL{}, ErrTableNameRequired
	}
	return core.NewCompiledSQL([]string{"drop", "table", "if", "exists", table}, nil), nil
}

// CompileRenameTable compiles a table rename.
func (g *Grammar) CompileRenameTable(from, to string) (core.CompiledSQL, error) {
	if from == "" || to == "" {
		return core.CompiledSQL{}, ErrTableNameRequired
	}
	if g.dialect.Features().RenameTableStatement {
		return core.NewCompiledSQL([]string{"rename", "table", from, "to", to}, nil), nil
	}
	return core.NewCompiledSQL([]string{"alter", "table", from, "rename", "to", to}, nil), nil
}

// CompileTableExists compiles the dialect's table lookup with the table name
// bound.
func (g *Grammar) CompileTableExists(table string) (core.CompiledSQL, error) {
	if table == "" {
		return core.CompiledSQL{}, ErrTableNameRequired
	}
	s := (&query.BaseGrammar{Placeholder: g.dialect.Placeholder()}).NewStatement()
	if err := s.Raw(g.dialect.TableExistsSQL(), []core.Parameter{table}); err != nil {
		return core.CompiledSQL{}, err
	}
	return s.Compiled(), nil
}

func (g *Grammar) columnDefinition(table string, col *Column) ([]string, error) {
	typ, err := g.dialect.ColumnType(table, col)
	if err != nil {
		return nil, err
	}
	def := []string{col.Name, typ}
	if !col.Properties.Nullable {
		def = append(def, "not", "null")
	}
	if col.Properties.Unique {
		def = append(def, "unique")
	}
	if col.Properties.HasDefault {
		def = append(def, "default", g.Escape(col.Properties.Default))
	}
	return def, nil
}

func (g *Grammar) sequences(out *batch, b *Blueprint) {
	if !g.dialect.Features().SerialSequences {
		return
	}
	for _, col := range b.Columns {
		if col.Properties.Type == TypeSerial {
			out.add("create", "sequence", "if", "not", "exists", SequenceName(b.TableName, col.Name))
		}
	}
}

func (g *Grammar) indexes(out *batch, b *Blueprint) {
	for _, idx := range b.Indexes {
		stmt := []string{"create"}
		if idx.Unique {
			stmt = append(stmt, "unique")
		}
		stmt = append(stmt, "index", idx.IndexName(b.TableName), "on", b.TableName)

		position := g.dialect.Features().IndexType
		if idx.Type != "" && position == IndexTypeBeforeColumns {
			stmt = append(stmt, "using", idx.Type)
		}
		stmt = append(stmt, "(")
		stmt = appendList(stmt, idx.Columns)
		stmt = append(stmt, ")")
		if idx.Type != "" && position == IndexTypeAfterColumns {
			stmt = append(stmt, "using", idx.Type)
		}
		out.add(stmt...)
	}
}

func primaryKey(columns []string) []string {
	stmt := []string{"primary", "key", "("}
	stmt = appendList(stmt, columns)
	return append(stmt, ")")
}

func foreignKey(fk *ForeignKeyConstraint) []string {
	stmt := []string{
		"foreign", "key", "(", fk.Column, ")",
		"references", fk.Reference.Table, "(", fk.Reference.Column, ")",
	}
	if fk.OnDeleteAction != "" {
		stmt = append(stmt, "on", "delete", string(fk.OnDeleteAction))
	}
	if fk.OnUpdateAction != "" {
		stmt = append(stmt, "on", "update", string(fk.OnUpdateAction))
	}
	return stmt
}

func appendList(stmt, items []string) []string {
	for i, item := range items {
		if i > 0 {
			stmt = append(stmt, ",")
		}
		stmt = append(stmt, item)
	}
	return stmt
}
