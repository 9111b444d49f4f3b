package commands

import (
	"encoding/json"
	"fmt"
	"io"
	"maps"
	"slices"
	"strings"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"

	"github.com/leapstack-labs/leapdb/internal/config"
	"github.com/leapstack-labs/leapdb/pkg/core"
)

// renderRows writes rows in format. columns fixes the column order; when
// empty, the sorted union of the row keys is used.
func renderRows(w io.Writer, rows []core.Row, columns []string, format string) error {
	if len(columns) == 0 {
		columns = rowColumns(rows)
	}
	switch format {
	case config.OutputJSON:
		return renderJSON(w, rows)
	case config.OutputMarkdown:
		return renderTable(w, columns, rows, true)
	default:
		return renderTable(w, columns, rows, false)
	}
}

func renderTable(w io.Writer, cols []string, rows []core.Row, markdown bool) error {
	if len(rows) == 0 {
		_, _ = fmt.Fprintln(w, "(0 rows)")
		return nil
	}

	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleLight)

	header := make(table.Row, len(cols))
	for i, col := range cols {
		header[i] = col
	}
	t.AppendHeader(header)

	for _, result := range rows {
		row := make(table.Row, len(cols))
		for i, col := range cols {
			row[i] = formatValue(result[col])
		}
		t.AppendRow(row)
	}

	if markdown {
		t.RenderMarkdown()
	} else {
		t.Render()
	}
	_, _ = fmt.Fprintf(w, "(%d rows)\n", len(rows))
	return nil
}

func renderJSON(w io.Writer, rows []core.Row) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(rows)
}

func rowColumns(rows []core.Row) []string {
	seen := make(map[string]struct{})
	for _, row := range rows {
		for col := range row {
			seen[col] = struct{}{}
		}
	}
	return slices.Sorted(maps.Keys(seen))
}

// resultColumns maps select expressions to the keys drivers report for
// them. It returns nil if any expression is a wildcard.
func resultColumns(exprs []string) []string {
	out := make([]string, 0, len(exprs))
	for _, expr := range exprs {
		lower := strings.ToLower(expr)
		switch {
		case strings.HasSuffix(expr, "*"):
			return nil
		case strings.Contains(lower, " as "):
			i := strings.LastIndex(lower, " as ")
			out = append(out, strings.TrimSpace(expr[i+4:]))
		case strings.Contains(expr, ".") && !strings.Contains(expr, "("):
			out = append(out, expr[strings.LastIndex(expr, ".")+1:])
		default:
			out = append(out, expr)
		}
	}
	return out
}

func formatValue(v any) string {
	switch v := v.(type) {
	case nil:
		return "NULL"
	case time.Time:
		return v.Format(time.RFC3339)
	case []byte:
		return string(v)
	default:
		return fmt.Sprintf("%v", v)
	}
}
