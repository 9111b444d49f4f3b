package commands

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/leapstack-labs/leapdb/pkg/core"
)

// QueryOptions holds options for the query command.
type QueryOptions struct {
	Input string
}

// NewQueryCommand creates the query command.
func NewQueryCommand() *cobra.Command {
	opts := &QueryOptions{}

	cmd := &cobra.Command{
		Use:   "query [SQL] [BINDING...]",
		Short: "Run a SQL statement against the configured database",
		Long: `Run one SQL statement, or a batch of statements, on the configured
database. Extra arguments are bound to the statement's placeholders in order,
using the dialect's placeholder style.

Statements that return no rows print a summary row with rows_affected and
last_insert_id.`,
		Example: `  # Select rows
  leapdb query "select * from posts where search_order < ?" 55

  # Read the statement from a file
  leapdb query --input schema.sql

  # Output as JSON
  leapdb query "select count(*) as n from posts" -o json`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runQuery(cmd, args, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.Input, "input", "i", "", "Read SQL from file")
	return cmd
}

func runQuery(cmd *cobra.Command, args []string, opts *QueryOptions) error {
	var sql string
	switch {
	case opts.Input != "":
		content, err := os.ReadFile(opts.Input)
		if err != nil {
			return fmt.Errorf("failed to read SQL file: %w", err)
		}
		sql = string(content)
	case len(args) > 0:
		sql, args = args[0], args[1:]
	default:
		return errors.New("no SQL given\nHint: pass a statement or use --input")
	}
	sql = strings.TrimSpace(sql)

	bindings := make([]core.Parameter, len(args))
	for i, a := range args {
		bindings[i] = a
	}

	s, err := openSession(cmd)
	if err != nil {
		return err
	}
	defer func() { _ = s.Close() }()

	rows, err := s.conn.RunQuery(cmd.Context(), core.NewCompiledSQL([]string{sql}, bindings))
	if err != nil {
		return err
	}
	cfg, _ := loadedConfig(cmd)
	return renderRows(cmd.OutOrStdout(), rows, nil, cfg.Output)
}
