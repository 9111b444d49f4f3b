package schema

import "github.com/leapstack-labs/leapdb/pkg/core"

// ColumnType is a dialect-neutral column type. Dialects map it to SQL.
type ColumnType string

// Column types.
const (
	TypeString     ColumnType = "string"
	TypeText       ColumnType = "text"
	TypeInteger    ColumnType = "integer"
	TypeBigInteger ColumnType = "bigInteger"
	TypeFloat      ColumnType = "float"
	TypeDouble     ColumnType = "double"
	TypeDecimal    ColumnType = "decimal"
	TypeBoolean    ColumnType = "boolean"
	TypeChar       ColumnType = "char"
	TypeDate       ColumnType = "date"
	TypeTimestamp  ColumnType = "timestamp"
	TypeJSON       ColumnType = "json"
	TypeUUID       ColumnType = "uuid"
	TypeSerial     ColumnType = "serial"
)

// Default lengths for sized types.
const (
	DefaultStringLength = 255
	DefaultCharLength   = 1
)

// ColumnProperties describes a column's type and constraints.
type ColumnProperties struct {
	Type     ColumnType
	Length   int
	Scale    int
	Nullable bool
	Unique   bool

	// Default is escaped into the DDL when HasDefault is set.
	Default    core.Parameter
	HasDefault bool
}

// Column is one column definition. Its methods configure it in place.
type Column struct {
	Name       string
	Properties ColumnProperties
}

// Length sets the length of string and char columns, or the precision of
// decimal columns.
func (c *Column) Length(n int) *Column {
	c.Properties.Length = n
	return c
}

// Nullable allows null values. Columns are not null otherwise.
func (c *Column) Nullable() *Column {
	c.Properties.Nullable = true
	return c
}

// Unique adds a unique constraint to the column.
func (c *Column) Unique() *Column {
	c.Properties.Unique = true
	return c
}

// Default sets the column default. Use core.Raw for SQL expressions.
func (c *Column) Default(value core.Parameter) *Column {
	c.Properties.Default = value
	c.Properties.HasDefault = true
	return c
}
