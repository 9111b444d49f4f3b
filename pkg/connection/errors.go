package connection

import (
	"errors"
	"fmt"
)

var (
	// ErrNoTransaction is returned by Commit and Rollback without BeginTransaction.
	ErrNoTransaction = errors.New("no transaction in progress")

	// ErrTransactionActive is returned by BeginTransaction inside a transaction.
	ErrTransactionActive = errors.New("transaction already in progress")

	// ErrPoolNotStarted is returned when connecting through a stopped pool.
	ErrPoolNotStarted = errors.New("connection pool is not started")
)

// ProtocolError reports a connection used out of order, such as a commit
// before Connect.
type ProtocolError struct {
	Op      string
	Message string
}

func (e *ProtocolError) Error() string {
	return fmt.Sprintf("%s: %s", e.Op, e.Message)
}

// NotConnected returns the ProtocolError for op attempted before Connect.
func NotConnected(op, action string) error {
	return &ProtocolError{Op: op, Message: "no active connection to " + action}
}

// UnknownDriverError is returned when an unknown driver is requested.
type UnknownDriverError struct {
	Driver    string
	Available []string
}

func (e *UnknownDriverError) Error() string {
	return fmt.Sprintf("unknown driver %q\nAvailable drivers: %v\nHint: Check connection.driver in leapdb.yaml", e.Driver, e.Available)
}
