package schema

import (
	"strconv"

	"github.com/leapstack-labs/leapdb/pkg/core"
)

// Dialect supplies the DDL details that differ between databases.
type Dialect interface {
	Name() string
	Placeholder() core.PlaceholderStyle

	// ColumnType maps a column to its SQL type. table is passed for types
	// that depend on per-table objects such as sequences.
	ColumnType(table string, col *Column) (string, error)

	// TableExistsSQL returns a query with a single "?" marker for the table
	// name. It must return one row with a "count" column.
	TableExistsSQL() string

	Features() Features
}

// IndexTypePosition says where "using <type>" goes in create index.
type IndexTypePosition int

const (
	// IndexTypeIgnored drops the index type.
	IndexTypeIgnored IndexTypePosition = iota
	// IndexTypeBeforeColumns writes "on t using gin (cols)".
	IndexTypeBeforeColumns
	// IndexTypeAfterColumns writes "on t (cols) using btree".
	IndexTypeAfterColumns
)

// Features toggles structural DDL variations.
type Features struct {
	// AlterPerClause emits one alter table statement per added or dropped column.
	AlterPerClause bool

	// AlterConstraints allows adding primary and foreign keys to an existing table.
	AlterConstraints bool

	// SerialSequences creates "<table>_<column>_seq" before the table for
	// every serial column.
	SerialSequences bool

	// RenameTableStatement uses "rename table a to b" instead of
	// "alter table a rename to b".
	RenameTableStatement bool

	IndexType IndexTypePosition
}

// GenericColumnType maps the types every supported dialect spells the same
// way. It reports false for types the dialect must map itself.
func GenericColumnType(col *Column) (string, bool) {
	p := col.Properties
	switch p.Type {
	case TypeString:
		return "varchar(" + strconv.Itoa(p.Length) + ")", true
	case TypeText:
		return "text", true
	case TypeInteger:
		return "integer", true
	case TypeBigInteger:
		return "bigint", true
	case TypeDecimal:
		return "decimal(" + strconv.Itoa(p.Length) + ", " + strconv.Itoa(p.Scale) + ")", true
	case TypeBoolean:
		return "boolean", true
	case TypeChar:
		return "char(" + strconv.Itoa(p.Length) + ")", true
	case TypeDate:
		return "date", true
	case TypeTimestamp:
		return "timestamp", true
	}
	return "", false
}

// SequenceName names the sequence backing a serial column.
func SequenceName(table, column string) string {
	return table + "_" + column + "_seq"
}
