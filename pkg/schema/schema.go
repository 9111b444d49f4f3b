// Package schema builds table definitions and compiles them into DDL.
//
// A Blueprint collects columns, keys and indexes for one table. A Grammar
// renders it through a Dialect. Schema ties both to an executor.
package schema

import (
	"context"
	"fmt"

	"github.com/leapstack-labs/leapdb/pkg/core"
)

// Schema runs DDL built from blueprints.
type Schema struct {
	grammar  *Grammar
	executor core.Executor
}

// New creates a Schema that compiles with grammar and runs on executor.
func New(grammar *Grammar, executor core.Executor) *Schema {
	return &Schema{grammar: grammar, executor: executor}
}

// Grammar returns the schema's grammar.
func (s *Schema) Grammar() *Grammar {
	return s.grammar
}

// CreateTable creates table from the blueprint filled in by fn.
func (s *Schema) CreateTable(ctx context.Context, table string, fn func(*Blueprint)) error {
	b := NewBlueprint(table, false)
	fn(b)
	return s.Build(ctx, b)
}

// AlterTable alters table with the changes filled in by fn.
func (s *Schema) AlterTable(ctx context.Context, table string, fn func(*Blueprint)) error {
	b := NewBlueprint(table, true)
	fn(b)
	return s.Build(ctx, b)
}

// Build compiles and runs a blueprint.
func (s *Schema) Build(ctx context.Context, b *Blueprint) error {
	compiled, err := s.grammar.CompileBlueprint(b)
	if err != nil {
		return err
	}
	return s.exec(ctx, compiled)
}

// DropTable drops table.
func (s *Schema) DropTable(ctx context.Context, table string) error {
	compiled, err := s.grammar.CompileDropTable(table)
	if err != nil {
		return err
	}
	return s.exec(ctx, compiled)
}

// DropTableIfExists drops table when present.
func (s *Schema) DropTableIfExists(ctx context.Context, table string) error {
	compiled, err := s.grammar.CompileDropTableIfExists(table)
	if err != nil {
		return err
	}
	return s.exec(ctx, compiled)
}

// RenameTable renames from to to.
func (s *Schema) RenameTable(ctx context.Context, from, to string) error {
	compiled, err := s.grammar.CompileRenameTable(from, to)
	if err != nil {
		return err
	}
	return s.exec(ctx, compiled)
}

// TableExists reports whether table exists.
func (s *Schema) TableExists(ctx context.Context, table string) (bool, error) {
	compiled, err := s.grammar.CompileTableExists(table)
	if err != nil {
		return false, err
	}
	rows, err := s.executor.RunQuery(ctx, compiled)
	if err != nil {
		return false, fmt.Errorf("failed to check table %s: %w", table, err)
	}
	if len(rows) == 0 {
		return false, nil
	}
	n, err := rows[0].Int64("count")
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (s *Schema) exec(ctx context.Context, compiled core.CompiledSQL) error {
	if _, err := s.executor.RunQuery(ctx, compiled); err != nil {
		return fmt.Errorf("failed to execute DDL: %w", err)
	}
	return nil
}
