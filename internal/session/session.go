// Package session holds the per-browser interaction state: the cached
// search result set, the pending grid edit, and the one-shot status message.
// The state lives in a Context object handed to each handler.
package session

import (
	"sync"
	"time"

	"github.com/rowbench/rowbench/internal/table"
)

// Flash is a one-shot status message produced by a write operation. It
// survives exactly one render: TakeFlash consumes it.
type Flash struct {
	Success bool
	Text    string
}

// PendingEdit is the single not-yet-persisted grid edit awaiting
// confirmation via the update form. A new grid edit overwrites it.
type PendingEdit struct {
	// RowIndex is the edited row's index in the cached result set.
	RowIndex int

	// IDValue is the surrogate key of the row being edited, taken from
	// the original row, never from the edit.
	IDValue int64

	// Original is the row as fetched.
	Original table.Row

	// Deltas maps edited columns to their new raw values.
	Deltas map[string]string
}

// FormValues merges the original row with the edit deltas to produce the
// raw values seeding the update form, in the given column order.
func (p *PendingEdit) FormValues(columns []table.ColumnSchema) map[string]string {
	values := make(map[string]string, len(columns))
	for _, col := range columns {
		values[col.Name] = table.FormatValue(p.Original[col.Name])
	}
	for name, raw := range p.Deltas {
		values[name] = raw
	}
	return values
}

// Context is one browser session's interaction state.
type Context struct {
	mu       sync.Mutex
	filters  map[string]string
	results  []table.Row
	haveRes  bool
	pending  *PendingEdit
	flash    *Flash
	lastSeen time.Time
}

func newContext() *Context {
	return &Context{lastSeen: time.Now()}
}

// SetResults caches a result set together with the filters that produced it.
func (c *Context) SetResults(filters map[string]string, rows []table.Row) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.filters = cloneFilters(filters)
	c.results = rows
	c.haveRes = true
}

// Results returns the cached result set for the given filters. The cache
// only serves the exact filters that produced it; anything else misses.
func (c *Context) Results(filters map[string]string) ([]table.Row, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.haveRes || !filtersEqual(c.filters, filters) {
		return nil, false
	}
	return c.results, true
}

// Filters returns a copy of the filters behind the cached result set, or
// nil when nothing is cached.
func (c *Context) Filters() map[string]string {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.haveRes {
		return nil
	}
	return cloneFilters(c.filters)
}

// CachedRow returns the cached row at index, if present.
func (c *Context) CachedRow(index int) (table.Row, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.haveRes || index < 0 || index >= len(c.results) {
		return nil, false
	}
	return c.results[index], true
}

// InvalidateResults drops the cached result set, forcing a refetch.
func (c *Context) InvalidateResults() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.filters = nil
	c.results = nil
	c.haveRes = false
}

// SetPendingEdit replaces the pending edit.
func (c *Context) SetPendingEdit(edit *PendingEdit) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.pending = edit
}

// PendingEdit returns the pending edit, or nil.
func (c *Context) PendingEdit() *PendingEdit {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.pending
}

// ClearPendingEdit discards the pending edit.
func (c *Context) ClearPendingEdit() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.pending = nil
}

// SetFlash stores the one-shot status message.
func (c *Context) SetFlash(success bool, text string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.flash = &Flash{Success: success, Text: text}
}

// TakeFlash returns the status message and discards it.
func (c *Context) TakeFlash() *Flash {
	c.mu.Lock()
	defer c.mu.Unlock()
	f := c.flash
	c.flash = nil
	return f
}

// Reset drops everything: cached results, pending edit, flash. Used when
// all filters are cleared.
func (c *Context) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.filters = nil
	c.results = nil
	c.haveRes = false
	c.pending = nil
	c.flash = nil
}

func (c *Context) touch() {
	c.mu.Lock()
	c.lastSeen = time.Now()
	c.mu.Unlock()
}

func (c *Context) idleSince() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lastSeen
}

func cloneFilters(filters map[string]string) map[string]string {
	out := make(map[string]string, len(filters))
	for k, v := range filters {
		out[k] = v
	}
	return out
}

func filtersEqual(a, b map[string]string) bool {
	if len(a) != len(b) {
		return false
	}
	for k, v := range a {
		if b[k] != v {
			return false
		}
	}
	return true
}
