package connection

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/leapstack-labs/leapdb/pkg/core"
)

// ScanRows reads every remaining row. Text columns returned as []byte are
// converted to string.
func ScanRows(rows *sql.Rows) ([]core.Row, error) {
	columns, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("failed to read columns: %w", err)
	}

	out := []core.Row{}
	for rows.Next() {
		row, err := scanRow(rows, columns)
		if err != nil {
			return nil, err
		}
		out = append(out, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}
	return out, nil
}

func scanRow(rows *sql.Rows, columns []string) (core.Row, error) {
	values := make([]any, len(columns))
	ptrs := make([]any, len(columns))
	for i := range values {
		ptrs[i] = &values[i]
	}
	if err := rows.Scan(ptrs...); err != nil {
		return nil, fmt.Errorf("failed to scan row: %w", err)
	}

	row := make(core.Row, len(columns))
	for i, col := range columns {
		if b, ok := values[i].([]byte); ok {
			row[col] = string(b)
			continue
		}
		row[col] = values[i]
	}
	return row, nil
}

// RowsCursor is a Cursor over *sql.Rows.
type RowsCursor struct {
	rows    *sql.Rows
	columns []string
	done    bool
}

// NewRowsCursor wraps rows. It closes rows if the columns cannot be read.
func NewRowsCursor(rows *sql.Rows) (*RowsCursor, error) {
	columns, err := rows.Columns()
	if err != nil {
		_ = rows.Close()
		return nil, fmt.Errorf("failed to read columns: %w", err)
	}
	return &RowsCursor{rows: rows, columns: columns}, nil
}

// Read returns up to n rows. It returns an empty slice once drained.
func (c *RowsCursor) Read(ctx context.Context, n int) ([]core.Row, error) {
	out := []core.Row{}
	if c.done {
		return out, nil
	}
	for len(out) < n {
		if err := ctx.Err(); err != nil {
			return out, err
		}
		if !c.rows.Next() {
			c.done = true
			if err := c.rows.Err(); err != nil {
				return out, fmt.Errorf("error iterating rows: %w", err)
			}
			break
		}
		row, err := scanRow(c.rows, c.columns)
		if err != nil {
			return out, err
		}
		out = append(out, row)
	}
	return out, nil
}

// Close releases the result set.
func (c *RowsCursor) Close() error {
	c.done = true
	return c.rows.Close()
}
