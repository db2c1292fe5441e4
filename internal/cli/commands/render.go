package commands

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"golang.org/x/term"

	rbtable "github.com/rowbench/rowbench/internal/table"
)

// resolveFormat maps the configured output mode to a concrete one. "auto"
// picks the bordered table on a terminal and plain tab-separated text when
// piped.
func resolveFormat(format string) string {
	switch format {
	case "", "auto":
		if term.IsTerminal(int(os.Stdout.Fd())) {
			return "table"
		}
		return "plain"
	default:
		return format
	}
}

// renderRows writes a result set in the given format, columns in the
// given order.
func renderRows(w io.Writer, format string, cols []string, rows []rbtable.Row) error {
	switch resolveFormat(format) {
	case "json":
		return renderJSON(w, rows)
	case "plain":
		return renderPlain(w, cols, rows)
	case "table":
		return renderTable(w, cols, rows)
	default:
		return fmt.Errorf("unknown output format %q", format)
	}
}

func renderTable(w io.Writer, cols []string, rows []rbtable.Row) error {
	if len(rows) == 0 {
		_, _ = fmt.Fprintln(w, "(0 rows)")
		return nil
	}

	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleLight)

	headerRow := make(table.Row, len(cols))
	for i, col := range cols {
		headerRow[i] = col
	}
	t.AppendHeader(headerRow)

	for _, row := range rows {
		out := make(table.Row, len(cols))
		for i, col := range cols {
			out[i] = rbtable.FormatValue(row[col])
		}
		t.AppendRow(out)
	}

	t.Render()
	_, _ = fmt.Fprintf(w, "(%d rows)\n", len(rows))
	return nil
}

func renderPlain(w io.Writer, cols []string, rows []rbtable.Row) error {
	_, _ = fmt.Fprintln(w, strings.Join(cols, "\t"))
	for _, row := range rows {
		values := make([]string, len(cols))
		for i, col := range cols {
			values[i] = rbtable.FormatValue(row[col])
		}
		_, _ = fmt.Fprintln(w, strings.Join(values, "\t"))
	}
	return nil
}

func renderJSON(w io.Writer, rows []rbtable.Row) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(rows)
}
