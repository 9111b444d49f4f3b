package schema

import "github.com/leapstack-labs/leapdb/pkg/core"

// Blueprint collects the definition of one table, for creation or for
// alteration of an existing table.
type Blueprint struct {
	TableName     string
	ExistingTable bool
	Columns       []*Column
	DropColumns   []string
	PrimaryKeys   []string
	ForeignKeys   []*ForeignKeyConstraint
	Indexes       []*IndexConstraint
}

// NewBlueprint starts a blueprint for table. existing selects alter table
// over create table.
func NewBlueprint(table string, existing bool) *Blueprint {
	return &Blueprint{TableName: table, ExistingTable: existing}
}

func (b *Blueprint) addColumn(name string, typ ColumnType) *Column {
	c := &Column{Name: name, Properties: ColumnProperties{Type: typ}}
	b.Columns = append(b.Columns, c)
	return c
}

// String adds a varchar column. Length defaults to 255.
func (b *Blueprint) String(name string, length ...int) *Column {
	c := b.addColumn(name, TypeString)
	c.Properties.Length = DefaultStringLength
	if len(length) > 0 {
		c.Properties.Length = length[0]
	}
	return c
}

// Text adds an unbounded text column.
func (b *Blueprint) Text(name string) *Column {
	return b.addColumn(name, TypeText)
}

// Integer adds an integer column.
func (b *Blueprint) Integer(name string) *Column {
	return b.addColumn(name, TypeInteger)
}

// BigInteger adds a 64-bit integer column.
func (b *Blueprint) BigInteger(name string) *Column {
	return b.addColumn(name, TypeBigInteger)
}

// Float adds a single precision column.
func (b *Blueprint) Float(name string) *Column {
	return b.addColumn(name, TypeFloat)
}

// Double adds a double precision column.
func (b *Blueprint) Double(name string) *Column {
	return b.addColumn(name, TypeDouble)
}

// Decimal adds a fixed precision column.
func (b *Blueprint) Decimal(name string, precision, scale int) *Column {
	c := b.addColumn(name, TypeDecimal)
	c.Properties.Length = precision
	c.Properties.Scale = scale
	return c
}

// Boolean adds a boolean column.
func (b *Blueprint) Boolean(name string) *Column {
	return b.addColumn(name, TypeBoolean)
}

// Char adds a fixed length column. Length defaults to 1.
func (b *Blueprint) Char(name string, length ...int) *Column {
	c := b.addColumn(name, TypeChar)
	c.Properties.Length = DefaultCharLength
	if len(length) > 0 {
		c.Properties.Length = length[0]
	}
	return c
}

// Date adds a date column.
func (b *Blueprint) Date(name string) *Column {
	return b.addColumn(name, TypeDate)
}

// Timestamp adds a timestamp column.
func (b *Blueprint) Timestamp(name string) *Column {
	return b.addColumn(name, TypeTimestamp)
}

// JSON adds a json column.
func (b *Blueprint) JSON(name string) *Column {
	return b.addColumn(name, TypeJSON)
}

// UUID adds a uuid column.
func (b *Blueprint) UUID(name string) *Column {
	return b.addColumn(name, TypeUUID)
}

// Serial adds an auto-incrementing integer column.
func (b *Blueprint) Serial(name string) *Column {
	return b.addColumn(name, TypeSerial)
}

// ID adds a serial "id" column and makes it the primary key.
func (b *Blueprint) ID() *Column {
	c := b.Serial("id")
	b.Primary("id")
	return c
}

// Timestamps adds created_at and updated_at, both defaulting to
// CURRENT_TIMESTAMP.
func (b *Blueprint) Timestamps() {
	b.Timestamp("created_at").Default(core.Raw("CURRENT_TIMESTAMP"))
	b.Timestamp("updated_at").Default(core.Raw("CURRENT_TIMESTAMP"))
}

// Primary appends columns to the primary key.
func (b *Blueprint) Primary(columns ...string) {
	b.PrimaryKeys = append(b.PrimaryKeys, columns...)
}

// Foreign starts a foreign key on column.
func (b *Blueprint) Foreign(column string) *ForeignKeyConstraint {
	fk := &ForeignKeyConstraint{Column: column}
	b.ForeignKeys = append(b.ForeignKeys, fk)
	return fk
}

// Index adds a non-unique index over columns.
func (b *Blueprint) Index(columns ...string) *IndexConstraint {
	idx := &IndexConstraint{Columns: columns}
	b.Indexes = append(b.Indexes, idx)
	return idx
}

// UniqueIndex adds a unique index over columns.
func (b *Blueprint) UniqueIndex(columns ...string) *IndexConstraint {
	idx := &IndexConstraint{Columns: columns, Unique: true}
	b.Indexes = append(b.Indexes, idx)
	return idx
}

// DropColumn removes columns from an existing table.
func (b *Blueprint) DropColumn(names ...string) {
	b.DropColumns = append(b.DropColumns, names...)
}
