package query

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidOperator is recorded when a condition uses an operator
	// outside the allow-list.
	ErrInvalidOperator = errors.New("invalid operator")

	// ErrInvalidDirection is recorded when an order term is neither asc nor desc.
	ErrInvalidDirection = errors.New("invalid order direction")

	// ErrSubqueryRequired is recorded when JoinSub is given no subquery.
	ErrSubqueryRequired = errors.New("join requires a subquery")

	// ErrTableRequired is returned when a statement is compiled without a table.
	ErrTableRequired = errors.New("query has no table")

	// ErrBindingMismatch is returned when a raw fragment's "?" markers do not
	// match its bindings.
	ErrBindingMismatch = errors.New("raw fragment placeholders do not match bindings")

	// ErrEmptyData is returned when insert, update or upsert receive no columns.
	ErrEmptyData = errors.New("no columns to write")

	// ErrConflictFieldsRequired is returned by upsert without conflict columns.
	ErrConflictFieldsRequired = errors.New("upsert requires conflict fields")

	// ErrNoExecutor is returned by terminal operations on a query without a connection.
	ErrNoExecutor = errors.New("query is not bound to a connection")

	// ErrNoRows is returned by First when nothing matches.
	ErrNoRows = errors.New("no rows in result set")
)

// UnsupportedError is returned when a dialect cannot express a statement.
type UnsupportedError struct {
	Dialect string
	Feature string
}

func (e *UnsupportedError) Error() string {
	return fmt.Sprintf("%s does not support %s", e.Dialect, e.Feature)
}
