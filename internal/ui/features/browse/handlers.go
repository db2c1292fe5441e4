package browse

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/starfederation/datastar-go/datastar"

	"github.com/rowbench/rowbench/internal/history"
	"github.com/rowbench/rowbench/internal/session"
	"github.com/rowbench/rowbench/internal/table"
	"github.com/rowbench/rowbench/internal/ui/notifier"
	"github.com/rowbench/rowbench/internal/ui/views"
)

// Handlers serves the browse page and its datastar endpoints: search,
// in-grid cell edits, the update form, row insertion, and the live
// update stream.
type Handlers struct {
	svc      *table.Service
	sessions *session.Manager
	writeLog *history.Store
	notify   *notifier.Notifier
	logger   *slog.Logger
}

// NewHandlers creates a new Handlers instance.
func NewHandlers(svc *table.Service, sessions *session.Manager, writeLog *history.Store, notify *notifier.Notifier, logger *slog.Logger) *Handlers {
	return &Handlers{
		svc:      svc,
		sessions: sessions,
		writeLog: writeLog,
		notify:   notify,
		logger:   logger,
	}
}

// Page renders the full browse page. A warehouse or schema failure takes
// over the whole page; everything downstream needs the column list.
func (h *Handlers) Page(w http.ResponseWriter, r *http.Request) {
	sess := h.sessions.Attach(w, r)

	page := views.Page{
		Title: "Browse",
		Table: h.svc.Table(),
	}

	display, err := h.svc.DisplayColumns(r.Context())
	if err != nil {
		page.Fatal = err.Error()
		h.renderPage(w, page)
		return
	}
	schema, err := h.svc.Schema(r.Context())
	if err != nil {
		page.Fatal = err.Error()
		h.renderPage(w, page)
		return
	}

	filters := sess.Filters()
	for _, col := range display {
		page.Filters = append(page.Filters, views.Column{Name: col.Name, Value: filters[col.Name]})
		page.AddFields = append(page.AddFields, views.Column{Name: col.Name})
	}

	if rows, ok := sess.Results(filters); ok && filters != nil {
		page.Grid = buildGrid(schema, h.svc.IDColumn(), rows)
	}
	if pending := sess.PendingEdit(); pending != nil {
		page.Update = buildUpdateForm(pending, h.svc.IDColumn(), display)
	}
	page.Banner = bannerFromFlash(sess.TakeFlash())
	page.History = h.recentHistory()

	h.renderPage(w, page)
}

func (h *Handlers) renderPage(w http.ResponseWriter, page views.Page) {
	html, err := views.Render("page", page)
	if err != nil {
		h.logger.Error("page render failed", "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write([]byte(html))
}

// SearchSSE runs the per-column substring search and patches the results
// grid. An all-blank filter set never reaches the warehouse; it resets the
// grid to the prompt state.
func (h *Handlers) SearchSSE(w http.ResponseWriter, r *http.Request) {
	// The session cookie must go out before the SSE headers do.
	sess := h.sessions.Attach(w, r)
	sse := datastar.NewSSE(w, r)

	display, schema, ok := h.columnsOrConsole(sse, r)
	if !ok {
		return
	}

	if err := r.ParseForm(); err != nil {
		_ = sse.ConsoleError(err)
		return
	}
	filters := formValues(r, filterPrefix, display)

	if !anyNonBlank(filters) {
		sess.InvalidateResults()
		h.patchGrid(sse, nil)
		return
	}

	rows, ok := sess.Results(filters)
	if !ok {
		var err error
		rows, err = h.svc.Search(r.Context(), filters)
		if err != nil {
			h.patchGrid(sse, &views.Grid{Error: err.Error()})
			return
		}
		sess.SetResults(filters, rows)
	}

	h.patchGrid(sse, buildGrid(schema, h.svc.IDColumn(), rows))
}

// CellSSE records an in-grid cell edit as the session's pending edit and
// patches the update form seeded from it. Edits to the same row accumulate;
// an edit on a different row starts over from that row.
func (h *Handlers) CellSSE(w http.ResponseWriter, r *http.Request) {
	sess := h.sessions.Attach(w, r)
	sse := datastar.NewSSE(w, r)

	display, _, ok := h.columnsOrConsole(sse, r)
	if !ok {
		return
	}

	if err := r.ParseForm(); err != nil {
		_ = sse.ConsoleError(err)
		return
	}
	rowIndex, err := strconv.Atoi(r.Form.Get("row"))
	if err != nil {
		_ = sse.ConsoleError(fmt.Errorf("bad row index %q", r.Form.Get("row")))
		return
	}
	column := r.Form.Get("column")
	value := r.Form.Get("value")

	row, ok := sess.CachedRow(rowIndex)
	if !ok {
		// The grid went stale under the browser. Make the user search again.
		h.patchNotice(sse, "The results are out of date. Run the search again before editing.")
		return
	}
	if column == h.svc.IDColumn() {
		_ = sse.ConsoleError(fmt.Errorf("column %q is not editable", column))
		return
	}

	idValue, ok := table.AsInt64(row[h.svc.IDColumn()])
	if !ok {
		h.patchNotice(sse, fmt.Sprintf("Row has no usable %s value; cannot edit it.", h.svc.IDColumn()))
		return
	}

	pending := sess.PendingEdit()
	if pending == nil || pending.RowIndex != rowIndex {
		pending = &session.PendingEdit{
			RowIndex: rowIndex,
			IDValue:  idValue,
			Original: row,
			Deltas:   map[string]string{},
		}
	}
	pending.Deltas[column] = value
	sess.SetPendingEdit(pending)

	h.patchUpdateForm(sse, buildUpdateForm(pending, h.svc.IDColumn(), display))
}

// UpdateSSE applies the confirmed update form to the warehouse, one row by
// id, then refreshes the grid and the write history.
func (h *Handlers) UpdateSSE(w http.ResponseWriter, r *http.Request) {
	sess := h.sessions.Attach(w, r)
	sse := datastar.NewSSE(w, r)

	display, schema, ok := h.columnsOrConsole(sse, r)
	if !ok {
		return
	}

	pending := sess.PendingEdit()
	if pending == nil {
		h.patchBanner(sse, &views.Banner{Text: "Nothing to update. Edit a cell first."})
		return
	}

	if err := r.ParseForm(); err != nil {
		_ = sse.ConsoleError(err)
		return
	}
	record := formValues(r, updatePrefix, display)

	if err := h.svc.Update(r.Context(), pending.IDValue, record); err != nil {
		h.recordWrite("update", pending.IDValue, false, err.Error())
		h.patchBanner(sse, &views.Banner{Text: fmt.Sprintf("Update failed: %v", err)})
		h.patchHistory(sse)
		return
	}
	h.recordWrite("update", pending.IDValue, true,
		fmt.Sprintf("updated %d column(s)", len(record)))

	sess.ClearPendingEdit()
	sess.SetFlash(true, fmt.Sprintf("Row %d updated.", pending.IDValue))
	h.afterWrite(sse, r, sess, schema)
}

// AddSSE inserts a new row with a freshly allocated id from the add form.
func (h *Handlers) AddSSE(w http.ResponseWriter, r *http.Request) {
	sess := h.sessions.Attach(w, r)
	sse := datastar.NewSSE(w, r)

	display, schema, ok := h.columnsOrConsole(sse, r)
	if !ok {
		return
	}

	if err := r.ParseForm(); err != nil {
		_ = sse.ConsoleError(err)
		return
	}
	record := formValues(r, addPrefix, display)

	id, err := h.svc.Insert(r.Context(), record)
	if err != nil {
		h.recordWrite("insert", id, false, err.Error())
		h.patchBanner(sse, &views.Banner{Text: fmt.Sprintf("Add failed: %v", err)})
		h.patchHistory(sse)
		return
	}
	h.recordWrite("insert", id, true, "row inserted")

	sess.SetFlash(true, fmt.Sprintf("Row added with %s %d.", h.svc.IDColumn(), id))
	_ = sse.ExecuteScript("document.getElementById('add-form').reset()")
	h.afterWrite(sse, r, sess, schema)
}

// ClearSSE drops the whole session state: filters, cached results, pending
// edit, and any flash.
func (h *Handlers) ClearSSE(w http.ResponseWriter, r *http.Request) {
	sess := h.sessions.Attach(w, r)
	sse := datastar.NewSSE(w, r)

	sess.Reset()
	_ = sse.ExecuteScript("document.getElementById('filter-form').reset()")
	h.patchGrid(sse, nil)
	h.patchUpdateForm(sse, nil)
	h.patchBanner(sse, nil)
	h.patchNotice(sse, "")
}

// UpdatesSSE is the long-lived stream behind the page. When another session
// (or the file watcher) changes the table, the client is told its view is
// stale and the history panel is refreshed.
func (h *Handlers) UpdatesSSE(w http.ResponseWriter, r *http.Request) {
	sse := datastar.NewSSE(w, r)

	ch := h.notify.Subscribe()
	defer h.notify.Unsubscribe(ch)

	for {
		select {
		case <-r.Context().Done():
			return
		case <-ch:
			h.patchNotice(sse, "The table changed. Run the search again to refresh results.")
			h.patchHistory(sse)
		}
	}
}

// afterWrite is the shared tail of a successful or failed-but-recorded
// write: invalidate caches, rerun the previous search if there was one, and
// repaint every affected fragment.
func (h *Handlers) afterWrite(sse *datastar.ServerSentEventGenerator, r *http.Request, sess *session.Context, schema []table.ColumnSchema) {
	filters := sess.Filters()
	// Every session's cache is stale now, not just the writer's.
	h.sessions.InvalidateAllResults()
	h.notify.Broadcast()

	var grid *views.Grid
	if anyNonBlank(filters) {
		rows, err := h.svc.Search(r.Context(), filters)
		if err != nil {
			grid = &views.Grid{Error: err.Error()}
		} else {
			sess.SetResults(filters, rows)
			grid = buildGrid(schema, h.svc.IDColumn(), rows)
		}
	}

	h.patchBanner(sse, bannerFromFlash(sess.TakeFlash()))
	h.patchGrid(sse, grid)
	h.patchUpdateForm(sse, nil)
	h.patchHistory(sse)
}

// columnsOrConsole loads the display columns and schema, reporting fatal
// failures to the browser console. Connection and schema errors leave
// nothing sensible to patch.
func (h *Handlers) columnsOrConsole(sse *datastar.ServerSentEventGenerator, r *http.Request) ([]table.ColumnSchema, []table.ColumnSchema, bool) {
	display, err := h.svc.DisplayColumns(r.Context())
	if err != nil {
		h.consoleFatal(sse, err)
		return nil, nil, false
	}
	schema, err := h.svc.Schema(r.Context())
	if err != nil {
		h.consoleFatal(sse, err)
		return nil, nil, false
	}
	return display, schema, true
}

func (h *Handlers) consoleFatal(sse *datastar.ServerSentEventGenerator, err error) {
	var connErr *table.ConnectionError
	var schemaErr *table.SchemaError
	if errors.As(err, &connErr) || errors.As(err, &schemaErr) {
		h.logger.Error("warehouse unavailable", "error", err)
	}
	_ = sse.ConsoleError(err)
}

func bannerFromFlash(f *session.Flash) *views.Banner {
	if f == nil {
		return nil
	}
	return &views.Banner{Success: f.Success, Text: f.Text}
}

func (h *Handlers) recordWrite(op string, rowID int64, ok bool, message string) {
	if err := h.writeLog.Record(op, rowID, ok, message); err != nil {
		h.logger.Warn("write log record failed", "op", op, "error", err)
	}
}

func (h *Handlers) recentHistory() []views.HistoryEntry {
	entries, err := h.writeLog.Recent(historyPanelSize)
	if err != nil {
		h.logger.Warn("write log read failed", "error", err)
		return nil
	}
	return buildHistory(entries)
}

// Fragment patch helpers. Each renders one template against its data and
// morphs the matching element id in the page.

func (h *Handlers) patchGrid(sse *datastar.ServerSentEventGenerator, grid *views.Grid) {
	h.patch(sse, "grid", grid)
}

func (h *Handlers) patchUpdateForm(sse *datastar.ServerSentEventGenerator, form *views.UpdateForm) {
	h.patch(sse, "update-form", form)
}

func (h *Handlers) patchBanner(sse *datastar.ServerSentEventGenerator, banner *views.Banner) {
	h.patch(sse, "banner", banner)
}

func (h *Handlers) patchNotice(sse *datastar.ServerSentEventGenerator, text string) {
	h.patch(sse, "notice", text)
}

func (h *Handlers) patchHistory(sse *datastar.ServerSentEventGenerator) {
	h.patch(sse, "history", h.recentHistory())
}

func (h *Handlers) patch(sse *datastar.ServerSentEventGenerator, name string, data any) {
	html, err := views.Render(name, data)
	if err != nil {
		h.logger.Error("fragment render failed", "fragment", name, "error", err)
		_ = sse.ConsoleError(err)
		return
	}
	if err := sse.PatchElements(html); err != nil {
		_ = sse.ConsoleError(err)
	}
}
