package schema

import "strings"

// ReferentialAction is a foreign key on delete / on update action.
type ReferentialAction string

const (
	Cascade  ReferentialAction = "cascade"
	SetNull  ReferentialAction = "set null"
	Restrict ReferentialAction = "restrict"
	NoAction ReferentialAction = "no action"
)

// Reference names the column a foreign key points at.
type Reference struct {
	Table  string
	Column string
}

// ForeignKeyConstraint links a column to a column of another table.
type ForeignKeyConstraint struct {
	Column         string
	Reference      Reference
	OnDeleteAction ReferentialAction
	OnUpdateAction ReferentialAction
}

// References sets the referenced table and column.
func (f *ForeignKeyConstraint) References(table, column string) *ForeignKeyConstraint {
	f.Reference = Reference{Table: table, Column: column}
	return f
}

// OnDelete sets the action taken when the referenced row is deleted.
func (f *ForeignKeyConstraint) OnDelete(action ReferentialAction) *ForeignKeyConstraint {
	f.OnDeleteAction = action
	return f
}

// OnUpdate sets the action taken when the referenced key changes.
func (f *ForeignKeyConstraint) OnUpdate(action ReferentialAction) *ForeignKeyConstraint {
	f.OnUpdateAction = action
	return f
}

// IndexConstraint is a secondary index, compiled to its own create index
// statement after the table statement.
type IndexConstraint struct {
	Columns []string
	Unique  bool
	Name    string
	Type    string
}

// Named overrides the derived index name.
func (i *IndexConstraint) Named(name string) *IndexConstraint {
	i.Name = name
	return i
}

// Using sets the index method, e.g. "btree" or "gin", where the dialect
// supports one.
func (i *IndexConstraint) Using(indexType string) *IndexConstraint {
	i.Type = indexType
	return i
}

// IndexName returns the explicit name or derives
// "<table>_<columns>_<index|unique>".
func (i *IndexConstraint) IndexName(table string) string {
	if i.Name != "" {
		return i.Name
	}
	kind := "index"
	if i.Unique {
		kind = "unique"
	}
	return table + "_" + strings.Join(i.Columns, "_") + "_" + kind
}
