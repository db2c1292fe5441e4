package browse

import (
	"net/http"
	"strings"

	"github.com/rowbench/rowbench/internal/history"
	"github.com/rowbench/rowbench/internal/session"
	"github.com/rowbench/rowbench/internal/table"
	"github.com/rowbench/rowbench/internal/ui/views"
)

// Form field prefixes. The page renders one input per display column under
// each prefix; handlers strip the prefix to recover the column name.
const (
	filterPrefix = "filter_"
	addPrefix    = "add_"
	updatePrefix = "upd_"
)

const historyPanelSize = 20

// formValues extracts prefixed per-column values from a parsed form,
// keyed by column name. Columns without a field are absent from the map.
func formValues(r *http.Request, prefix string, columns []table.ColumnSchema) map[string]string {
	out := make(map[string]string, len(columns))
	for _, col := range columns {
		key := prefix + col.Name
		if !r.Form.Has(key) {
			continue
		}
		out[col.Name] = r.Form.Get(key)
	}
	return out
}

// anyNonBlank reports whether at least one value has non-whitespace content.
func anyNonBlank(values map[string]string) bool {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return true
		}
	}
	return false
}

// buildGrid converts a result set into its view, in schema column order.
// The id column renders read only.
func buildGrid(schema []table.ColumnSchema, idColumn string, rows []table.Row) *views.Grid {
	grid := &views.Grid{
		Truncated: len(rows) >= table.ResultLimit,
	}
	for _, col := range schema {
		grid.Columns = append(grid.Columns, col.Name)
	}
	for i, row := range rows {
		gr := views.GridRow{Index: i}
		for _, col := range schema {
			gr.Cells = append(gr.Cells, views.Cell{
				Row:      i,
				Column:   col.Name,
				Value:    table.FormatValue(row[col.Name]),
				ReadOnly: col.Name == idColumn,
			})
		}
		grid.Rows = append(grid.Rows, gr)
	}
	return grid
}

// buildUpdateForm converts a pending edit into its view, display columns
// only, in schema order.
func buildUpdateForm(pending *session.PendingEdit, idColumn string, display []table.ColumnSchema) *views.UpdateForm {
	form := &views.UpdateForm{
		IDColumn: idColumn,
		IDValue:  pending.IDValue,
	}
	values := pending.FormValues(display)
	for _, col := range display {
		form.Fields = append(form.Fields, views.Column{Name: col.Name, Value: values[col.Name]})
	}
	return form
}

// buildHistory converts write log entries into their view.
func buildHistory(entries []history.Entry) []views.HistoryEntry {
	out := make([]views.HistoryEntry, 0, len(entries))
	for _, e := range entries {
		out = append(out, views.HistoryEntry{
			Op:      e.Op,
			RowID:   e.RowID,
			OK:      e.OK,
			Message: e.Message,
			When:    e.CreatedAt.Local().Format("2006-01-02 15:04:05"),
		})
	}
	return out
}
