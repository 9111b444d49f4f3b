package commands

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/leapstack-labs/leapdb/pkg/connection"
	"github.com/leapstack-labs/leapdb/pkg/core"
	"github.com/leapstack-labs/leapdb/pkg/schema"
)

// DDLOptions holds options shared by the ddl subcommands.
type DDLOptions struct {
	Columns    []string
	Drop       []string
	Indexes    []string
	Unique     []string
	Primary    []string
	ID         bool
	Timestamps bool
	IfExists   bool
	DryRun     bool
}

// NewDDLCommand creates the ddl command.
func NewDDLCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ddl",
		Short: "Compile and run schema statements",
		Long: `Build table definitions from flags and compile them for the configured
dialect. Use --dry-run to print the statements without connecting.

Columns are given as name:type[:modifier...]. Types: string, text, integer,
biginteger, float, double, decimal, boolean, char, date, timestamp, json,
uuid, serial. Modifiers: nullable, unique, and numbers for length (string,
char) or precision and scale (decimal).`,
	}

	cmd.AddCommand(newDDLCreateCommand())
	cmd.AddCommand(newDDLAlterCommand())
	cmd.AddCommand(newDDLDropCommand())
	cmd.AddCommand(newDDLRenameCommand())
	cmd.AddCommand(newDDLExistsCommand())
	return cmd
}

func newDDLCreateCommand() *cobra.Command {
	opts := &DDLOptions{}
	cmd := &cobra.Command{
		Use:     "create TABLE",
		Short:   "Create a table",
		Example: `  leapdb ddl create posts --id --column title:string:120 --column body:text:nullable --timestamps`,
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			b := schema.NewBlueprint(args[0], false)
			if err := opts.apply(b); err != nil {
				return err
			}
			return runDDL(cmd, opts.DryRun, func(g *schema.Grammar) (core.CompiledSQL, error) {
				return g.CompileBlueprint(b)
			})
		},
	}
	opts.blueprintFlags(cmd)
	return cmd
}

func newDDLAlterCommand() *cobra.Command {
	opts := &DDLOptions{}
	cmd := &cobra.Command{
		Use:     "alter TABLE",
		Short:   "Add or drop columns and indexes on an existing table",
		Example: `  leapdb ddl alter posts --column slug:string:nullable --unique slug --drop legacy_flag`,
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			b := schema.NewBlueprint(args[0], true)
			if err := opts.apply(b); err != nil {
				return err
			}
			b.DropColumn(opts.Drop...)
			return runDDL(cmd, opts.DryRun, func(g *schema.Grammar) (core.CompiledSQL, error) {
				return g.CompileBlueprint(b)
			})
		},
	}
	opts.blueprintFlags(cmd)
	cmd.Flags().StringSliceVar(&opts.Drop, "drop", nil, "Columns to drop")
	return cmd
}

func newDDLDropCommand() *cobra.Command {
	opts := &DDLOptions{}
	cmd := &cobra.Command{
		Use:   "drop TABLE",
		Short: "Drop a table",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDDL(cmd, opts.DryRun, func(g *schema.Grammar) (core.CompiledSQL, error) {
				if opts.IfExists {
					return g.CompileDropTableIfExists(args[0])
				}
				return g.CompileDropTable(args[0])
			})
		},
	}
	cmd.Flags().BoolVar(&opts.IfExists, "if-exists", false, "Do nothing if the table does not exist")
	cmd.Flags().BoolVar(&opts.DryRun, "dry-run", false, "Print the statements without running them")
	return cmd
}

func newDDLRenameCommand() *cobra.Command {
	opts := &DDLOptions{}
	cmd := &cobra.Command{
		Use:   "rename FROM TO",
		Short: "Rename a table",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDDL(cmd, opts.DryRun, func(g *schema.Grammar) (core.CompiledSQL, error) {
				return g.CompileRenameTable(args[0], args[1])
			})
		},
	}
	cmd.Flags().BoolVar(&opts.DryRun, "dry-run", false, "Print the statements without running them")
	return cmd
}

func newDDLExistsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "exists TABLE",
		Short: "Report whether a table exists",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openSession(cmd)
			if err != nil {
				return err
			}
			defer func() { _ = s.Close() }()

			exists, err := s.conn.Schema().TableExists(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), exists)
			return nil
		},
	}
}

func (o *DDLOptions) blueprintFlags(cmd *cobra.Command) {
	cmd.Flags().StringArrayVar(&o.Columns, "column", nil, "Column name:type[:modifier...] (repeatable)")
	cmd.Flags().StringArrayVar(&o.Indexes, "index", nil, "Comma-separated columns of an index (repeatable)")
	cmd.Flags().StringArrayVar(&o.Unique, "unique", nil, "Comma-separated columns of a unique index (repeatable)")
	cmd.Flags().StringSliceVar(&o.Primary, "primary", nil, "Primary key columns")
	cmd.Flags().BoolVar(&o.ID, "id", false, "Add a serial id primary key")
	cmd.Flags().BoolVar(&o.Timestamps, "timestamps", false, "Add created_at and updated_at")
	cmd.Flags().BoolVar(&o.DryRun, "dry-run", false, "Print the statements without running them")
}

// apply adds the flag-defined columns and constraints to b.
func (o *DDLOptions) apply(b *schema.Blueprint) error {
	if o.ID {
		b.ID()
	}
	for _, spec := range o.Columns {
		if err := addColumn(b, spec); err != nil {
			return err
		}
	}
	if o.Timestamps {
		b.Timestamps()
	}
	if len(o.Primary) > 0 {
		b.Primary(o.Primary...)
	}
	for _, cols := range o.Indexes {
		b.Index(strings.Split(cols, ",")...)
	}
	for _, cols := range o.Unique {
		b.UniqueIndex(strings.Split(cols, ",")...)
	}
	return nil
}

// addColumn parses name:type[:modifier...] and adds the column to b.
func addColumn(b *schema.Blueprint, spec string) error {
	parts := strings.Split(spec, ":")
	if len(parts) < 2 || parts[0] == "" {
		return fmt.Errorf("invalid column %q: want name:type[:modifier...]", spec)
	}
	name, typ := parts[0], strings.ToLower(parts[1])

	var sizes []int
	var nullable, unique bool
	for _, mod := range parts[2:] {
		switch strings.ToLower(mod) {
		case "nullable":
			nullable = true
		case "unique":
			unique = true
		default:
			n, err := strconv.Atoi(mod)
			if err != nil {
				return fmt.Errorf("invalid column %q: unknown modifier %q", spec, mod)
			}
			sizes = append(sizes, n)
		}
	}

	var col *schema.Column
	switch typ {
	case "string", "varchar":
		col = b.String(name, sizes...)
	case "char":
		col = b.Char(name, sizes...)
	case "text":
		col = b.Text(name)
	case "integer", "int":
		col = b.Integer(name)
	case "biginteger", "bigint":
		col = b.BigInteger(name)
	case "float":
		col = b.Float(name)
	case "double":
		col = b.Double(name)
	case "decimal":
		precision, scale := 10, 0
		if len(sizes) > 0 {
			precision = sizes[0]
		}
		if len(sizes) > 1 {
			scale = sizes[1]
		}
		col = b.Decimal(name, precision, scale)
	case "boolean", "bool":
		col = b.Boolean(name)
	case "date":
		col = b.Date(name)
	case "timestamp":
		col = b.Timestamp(name)
	case "json":
		col = b.JSON(name)
	case "uuid":
		col = b.UUID(name)
	case "serial":
		col = b.Serial(name)
	default:
		return fmt.Errorf("invalid column %q: unknown type %q", spec, typ)
	}
	if nullable {
		col.Nullable()
	}
	if unique {
		col.Unique()
	}
	return nil
}

// runDDL compiles with the configured dialect and either prints or runs
// the result.
func runDDL(cmd *cobra.Command, dryRun bool, compile func(*schema.Grammar) (core.CompiledSQL, error)) error {
	d, cfg, err := configuredDialect(cmd)
	if err != nil {
		return err
	}

	if dryRun {
		compiled, err := compile(d.SchemaGrammar(connection.SchemaOptions(cfg.Connection)...))
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

	compiled, err := compile(s.conn.SchemaGrammar())
	if err != nil {
		return err
	}
	if _, err := s.conn.RunQuery(cmd.Context(), compiled); err != nil {
		return err
	}
	_, _ = fmt.Fprintln(cmd.OutOrStdout(), "ok")
	return nil
}
