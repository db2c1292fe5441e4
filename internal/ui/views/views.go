// Package views renders the HTML fragments the browse page is assembled
// from. Fragments are rendered to strings and shipped to the browser as
// datastar element patches, keyed by element id.
package views

import (
	"embed"
	"fmt"
	"html/template"
	"strings"
)

//go:embed templates/*.html
var files embed.FS

var templates = template.Must(template.ParseFS(files, "templates/*.html"))

// Column is one input field: a column name and its current raw value.
type Column struct {
	Name  string
	Value string
}

// Cell is one grid cell. ReadOnly cells render as plain text; the id
// column is never editable in place.
type Cell struct {
	Row      int
	Column   string
	Value    string
	ReadOnly bool
}

// GridRow is one row of the results grid.
type GridRow struct {
	Index int
	Cells []Cell
}

// Grid is the search result view. A non-empty Error replaces the rows.
type Grid struct {
	Columns   []string
	Rows      []GridRow
	Truncated bool
	Error     string
}

// Banner is the one-shot status message view.
type Banner struct {
	Success bool
	Text    string
}

// UpdateForm is the pending-edit confirmation form.
type UpdateForm struct {
	IDColumn string
	IDValue  int64
	Fields   []Column
}

// HistoryEntry is one recent write in the history panel.
type HistoryEntry struct {
	Op      string
	RowID   int64
	OK      bool
	Message string
	When    string
}

// Page is the full browse page.
type Page struct {
	Title     string
	Table     string
	Fatal     string // set when the warehouse or schema is unavailable
	Banner    *Banner
	Filters   []Column
	AddFields []Column
	Grid      *Grid // nil renders the search prompt
	Update    *UpdateForm
	History   []HistoryEntry
}

// Render executes the named template and returns the HTML.
func Render(name string, data any) (string, error) {
	var b strings.Builder
	if err := templates.ExecuteTemplate(&b, name, data); err != nil {
		return "", fmt.Errorf("failed to render %s: %w", name, err)
	}
	return b.String(), nil
}
