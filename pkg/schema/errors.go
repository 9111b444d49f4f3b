package schema

import (
	"errors"
	"fmt"
)

var (
	// ErrTableNameRequired is returned when a blueprint has no table name.
	ErrTableNameRequired = errors.New("blueprint has no table name")

	// ErrEmptyBlueprint is returned when a blueprint defines nothing to do.
	ErrEmptyBlueprint = errors.New("blueprint has no columns or indexes")
)

// UnknownColumnTypeError is returned when a dialect has no mapping for a
// column type.
type UnknownColumnTypeError struct {
	Dialect string
	Column  string
	Type    ColumnType
}

func (e *UnknownColumnTypeError) Error() string {
	return fmt.Sprintf("%s: unknown type %q for column %q", e.Dialect, e.Type, e.Column)
}
