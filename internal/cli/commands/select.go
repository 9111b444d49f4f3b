package commands

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/leapstack-labs/leapdb/pkg/core"
	"github.com/leapstack-labs/leapdb/pkg/query"
)

// SelectOptions holds options for the select command.
type SelectOptions struct {
	Columns []string
	Where   []string
	OrderBy []string
	Limit   int
	Offset  int
	Count   bool
	DryRun  bool
}

// NewSelectCommand creates the select command.
func NewSelectCommand() *cobra.Command {
	opts := &SelectOptions{}

	cmd := &cobra.Command{
		Use:   "select TABLE",
		Short: "Build and run a select with the query builder",
		Long: `Build a select statement from flags, compile it for the configured
dialect and run it. Values in --where are always bound, never inlined.

Each --where is "column operator value". The "in" and "not in" operators take
a comma-separated list; "is null" and "is not null" take no value.`,
		Example: `  leapdb select posts --where "search_order < 55" --order "id desc" --limit 10
  leapdb select posts --where "id in 1,2,3" --count
  leapdb select posts --columns id,title --dry-run`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSelect(cmd, args[0], opts)
		},
	}

	cmd.Flags().StringSliceVarP(&opts.Columns, "columns", "c", nil, "Columns to select (default *)")
	cmd.Flags().StringArrayVarP(&opts.Where, "where", "w", nil, `Condition "column operator value" (repeatable, joined with and)`)
	cmd.Flags().StringArrayVar(&opts.OrderBy, "order", nil, `Order term "column [asc|desc]" (repeatable)`)
	cmd.Flags().IntVar(&opts.Limit, "limit", -1, "Maximum rows to return")
	cmd.Flags().IntVar(&opts.Offset, "offset", -1, "Rows to skip")
	cmd.Flags().BoolVar(&opts.Count, "count", false, "Print the number of matching rows instead")
	cmd.Flags().BoolVar(&opts.DryRun, "dry-run", false, "Print the compiled SQL and bindings without running it")
	return cmd
}

func runSelect(cmd *cobra.Command, table string, opts *SelectOptions) error {
	d, cfg, err := configuredDialect(cmd)
	if err != nil {
		return err
	}

	build := func(q *query.Query) (*query.Query, error) {
		q.Table(table)
		if len(opts.Columns) > 0 {
			q.Select(opts.Columns...)
		}
		for _, w := range opts.Where {
			if err := applyWhere(q, w); err != nil {
				return nil, err
			}
		}
		for _, term := range opts.OrderBy {
			fields := strings.Fields(term)
			if len(fields) == 0 {
				continue
			}
			q.OrderBy(fields[0], fields[1:]...)
		}
		q.Limit(opts.Limit).Offset(opts.Offset)
		return q, q.Err()
	}

	if opts.DryRun {
		q, err := build(query.New(d.Query, nil))
		if err != nil {
			return err
		}
		compile := d.Query.ToSQL
		if opts.Count {
			compile = d.Query.CompileCount
		}
		compiled, err := compile(q)
		if err != nil {
			return err
		}
		return printCompiled(cmd, compiled)
	}

	s, err := openSession(cmd)
	if err != nil {
		return err
	}
	defer func() { _ = s.Close() }()

	q, err := build(s.conn.Query())
	if err != nil {
		return err
	}
	if opts.Count {
		n, err := q.Count(cmd.Context())
		if err != nil {
			return err
		}
		_, _ = fmt.Fprintln(cmd.OutOrStdout(), n)
		return nil
	}

	rows, err := q.Get(cmd.Context())
	if err != nil {
		return err
	}
	return renderRows(cmd.OutOrStdout(), rows, resultColumns(opts.Columns), cfg.Output)
}

// applyWhere parses "column operator value" and adds it to q.
func applyWhere(q *query.Query, cond string) error {
	fields := strings.Fields(cond)
	if len(fields) < 2 {
		return fmt.Errorf("invalid condition %q: want \"column operator value\"", cond)
	}
	column, rest := fields[0], fields[1:]

	op := strings.ToLower(rest[0])
	rest = rest[1:]
	if (op == "not" || op == "is") && len(rest) > 0 {
		next := strings.ToLower(rest[0])
		switch {
		case op == "is" && next == "null":
			q.WhereNull(column)
			return nil
		case op == "is" && next == "not" && len(rest) > 1 && strings.EqualFold(rest[1], "null"):
			q.WhereOp(column, "is not", core.Raw("null"))
			return nil
		case op == "not":
			op += " " + next
			rest = rest[1:]
		}
	}
	if len(rest) == 0 {
		return fmt.Errorf("invalid condition %q: missing value", cond)
	}

	value := strings.Join(rest, " ")
	if op == "in" || op == "not in" {
		items := strings.Split(value, ",")
		values := make([]core.Parameter, len(items))
		for i, item := range items {
			values[i] = strings.TrimSpace(item)
		}
		q.WhereOp(column, op, values)
		return nil
	}
	q.WhereOp(column, op, value)
	return nil
}

func printCompiled(cmd *cobra.Command, compiled core.CompiledSQL) error {
	out := cmd.OutOrStdout()
	_, _ = fmt.Fprintln(out, compiled.SQL)
	for i, b := range compiled.Bindings {
		_, _ = fmt.Fprintf(out, "  $%d = %s\n", i+1, formatValue(b))
	}
	return nil
}
