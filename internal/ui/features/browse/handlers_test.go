package browse

import (
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rowbench/rowbench/internal/history"
	"github.com/rowbench/rowbench/internal/session"
	"github.com/rowbench/rowbench/internal/table"
	"github.com/rowbench/rowbench/internal/ui/notifier"
	"github.com/rowbench/rowbench/internal/warehouse"
)

type fixture struct {
	handlers *Handlers
	svc      *table.Service
	sessions *session.Manager
	cookies  []*http.Cookie
}

// setupFixture wires handlers around an in-memory DuckDB with a seeded
// people table and an in-memory write log.
func setupFixture(t *testing.T) *fixture {
	t.Helper()

	svc := table.New(table.Config{
		Target:   warehouse.Config{Type: "duckdb", Path: ":memory:"},
		Table:    "people",
		IDColumn: "id",
	}, nil)
	t.Cleanup(func() { _ = svc.Close() })

	ctx := context.Background()
	a, err := svc.EnsureConnected(ctx)
	require.NoError(t, err)
	require.NoError(t, a.Exec(ctx,
		"CREATE TABLE people (id BIGINT, name VARCHAR, age BIGINT, active BOOLEAN)"))
	require.NoError(t, a.Exec(ctx,
		"INSERT INTO people VALUES (1, 'Johnny', 34, true), (2, 'Maria', 28, false)"))

	writeLog := history.NewStore()
	require.NoError(t, writeLog.Open(":memory:"))
	t.Cleanup(func() { _ = writeLog.Close() })

	sessions := session.NewManager("test-secret")
	logger := slog.New(slog.DiscardHandler)

	return &fixture{
		handlers: NewHandlers(svc, sessions, writeLog, notifier.New(), logger),
		svc:      svc,
		sessions: sessions,
	}
}

// do runs one handler with the fixture's session cookies and keeps any
// cookie the response sets, so consecutive calls share a session.
func (f *fixture) do(handler http.HandlerFunc, method, target string, form url.Values) *httptest.ResponseRecorder {
	var req *http.Request
	if form != nil {
		req = httptest.NewRequest(method, target, strings.NewReader(form.Encode()))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	for _, c := range f.cookies {
		req.AddCookie(c)
	}

	rec := httptest.NewRecorder()
	handler(rec, req)

	if cookies := rec.Result().Cookies(); len(cookies) > 0 {
		f.cookies = cookies
	}
	return rec
}

func TestPage(t *testing.T) {
	f := setupFixture(t)

	rec := f.do(f.handlers.Page, http.MethodGet, "/", nil)

	assert.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, "<!doctype html>")
	assert.Contains(t, body, "<code>people</code>")
	assert.Contains(t, body, `name="filter_name"`)
	assert.Contains(t, body, `name="add_name"`)
	// The id column never gets a filter or add input.
	assert.NotContains(t, body, `name="filter_id"`)
	assert.NotContains(t, body, `name="add_id"`)
}

func TestPage_WarehouseUnavailable(t *testing.T) {
	svc := table.New(table.Config{
		Target:   warehouse.Config{Type: "no-such-warehouse"},
		Table:    "people",
		IDColumn: "id",
	}, nil)

	writeLog := history.NewStore()
	require.NoError(t, writeLog.Open(":memory:"))
	t.Cleanup(func() { _ = writeLog.Close() })

	h := NewHandlers(svc, session.NewManager("s"), writeLog, notifier.New(), slog.New(slog.DiscardHandler))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	h.Page(rec, req)

	body := rec.Body.String()
	assert.Contains(t, body, "fatal")
	assert.Contains(t, body, "connection failed")
	assert.NotContains(t, body, "filter-form")
}

func TestSearchSSE(t *testing.T) {
	f := setupFixture(t)

	rec := f.do(f.handlers.SearchSSE, http.MethodPost, "/api/search",
		url.Values{"filter_name": {"joHN"}})

	body := rec.Body.String()
	assert.Contains(t, body, `id="results"`)
	assert.Contains(t, body, "Johnny")
	assert.NotContains(t, body, "Maria")
}

func TestSearchSSE_AllBlankShowsPrompt(t *testing.T) {
	f := setupFixture(t)

	rec := f.do(f.handlers.SearchSSE, http.MethodPost, "/api/search",
		url.Values{"filter_name": {"   "}})

	body := rec.Body.String()
	assert.Contains(t, body, "Enter one or more filters")
	assert.NotContains(t, body, "Johnny")
}

func TestSearchSSE_NoMatches(t *testing.T) {
	f := setupFixture(t)

	rec := f.do(f.handlers.SearchSSE, http.MethodPost, "/api/search",
		url.Values{"filter_name": {"zzz"}})

	assert.Contains(t, rec.Body.String(), "No data found")
}

func TestCellSSE_SeedsUpdateForm(t *testing.T) {
	f := setupFixture(t)

	f.do(f.handlers.SearchSSE, http.MethodPost, "/api/search",
		url.Values{"filter_name": {"maria"}})

	rec := f.do(f.handlers.CellSSE, http.MethodPost, "/api/cell", url.Values{
		"row":    {"0"},
		"column": {"name"},
		"value":  {"Marie"},
	})

	body := rec.Body.String()
	assert.Contains(t, body, `id="update-form"`)
	assert.Contains(t, body, "Marie")
	// The form is pinned to Maria's id, and untouched columns keep their
	// fetched values.
	assert.Contains(t, body, "<strong>2</strong>")
	assert.Contains(t, body, `value="28"`)
}

func TestCellSSE_WithoutSearchAsksForRefresh(t *testing.T) {
	f := setupFixture(t)

	rec := f.do(f.handlers.CellSSE, http.MethodPost, "/api/cell", url.Values{
		"row":    {"0"},
		"column": {"name"},
		"value":  {"x"},
	})

	assert.Contains(t, rec.Body.String(), "out of date")
}

func TestCellSSE_SameRowEditsAccumulate(t *testing.T) {
	f := setupFixture(t)

	f.do(f.handlers.SearchSSE, http.MethodPost, "/api/search",
		url.Values{"filter_name": {"maria"}})
	f.do(f.handlers.CellSSE, http.MethodPost, "/api/cell",
		url.Values{"row": {"0"}, "column": {"name"}, "value": {"Marie"}})
	rec := f.do(f.handlers.CellSSE, http.MethodPost, "/api/cell",
		url.Values{"row": {"0"}, "column": {"age"}, "value": {"29"}})

	body := rec.Body.String()
	assert.Contains(t, body, `value="Marie"`)
	assert.Contains(t, body, `value="29"`)
}

func TestUpdateSSE_AppliesPendingEdit(t *testing.T) {
	f := setupFixture(t)
	ctx := context.Background()

	f.do(f.handlers.SearchSSE, http.MethodPost, "/api/search",
		url.Values{"filter_name": {"maria"}})
	f.do(f.handlers.CellSSE, http.MethodPost, "/api/cell",
		url.Values{"row": {"0"}, "column": {"name"}, "value": {"Marie"}})

	rec := f.do(f.handlers.UpdateSSE, http.MethodPost, "/api/update", url.Values{
		"upd_name":   {"Marie"},
		"upd_age":    {"29"},
		"upd_active": {"yes"},
	})

	body := rec.Body.String()
	assert.Contains(t, body, "Row 2 updated")

	rows, err := f.svc.Search(ctx, map[string]string{"name": "marie"})
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "Marie", rows[0]["name"])
	assert.Equal(t, int64(29), rows[0]["age"])
	assert.Equal(t, true, rows[0]["active"])
}

func TestUpdateSSE_WithoutPendingEdit(t *testing.T) {
	f := setupFixture(t)

	rec := f.do(f.handlers.UpdateSSE, http.MethodPost, "/api/update",
		url.Values{"upd_name": {"x"}})

	assert.Contains(t, rec.Body.String(), "Nothing to update")
}

func TestAddSSE(t *testing.T) {
	f := setupFixture(t)
	ctx := context.Background()

	rec := f.do(f.handlers.AddSSE, http.MethodPost, "/api/add", url.Values{
		"add_name":   {"Zed"},
		"add_age":    {"51"},
		"add_active": {"t"},
	})

	assert.Contains(t, rec.Body.String(), "Row added with id 3")

	rows, err := f.svc.Search(ctx, map[string]string{"name": "zed"})
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, int64(3), rows[0]["id"])
	assert.Equal(t, int64(51), rows[0]["age"])
	assert.Equal(t, true, rows[0]["active"])
}

func TestClearSSE_ResetsSession(t *testing.T) {
	f := setupFixture(t)

	f.do(f.handlers.SearchSSE, http.MethodPost, "/api/search",
		url.Values{"filter_name": {"maria"}})
	f.do(f.handlers.CellSSE, http.MethodPost, "/api/cell",
		url.Values{"row": {"0"}, "column": {"name"}, "value": {"x"}})

	rec := f.do(f.handlers.ClearSSE, http.MethodPost, "/api/clear", nil)

	body := rec.Body.String()
	assert.Contains(t, body, "Enter one or more filters")
	assert.Contains(t, body, "filter-form')")

	// A cell edit after clearing must not find a cached row.
	rec = f.do(f.handlers.CellSSE, http.MethodPost, "/api/cell",
		url.Values{"row": {"0"}, "column": {"name"}, "value": {"x"}})
	assert.Contains(t, rec.Body.String(), "out of date")
}

func TestUpdateSSE_RefreshesGridWithActiveFilters(t *testing.T) {
	f := setupFixture(t)

	f.do(f.handlers.SearchSSE, http.MethodPost, "/api/search",
		url.Values{"filter_name": {"a"}}) // matches Maria
	f.do(f.handlers.CellSSE, http.MethodPost, "/api/cell",
		url.Values{"row": {"0"}, "column": {"age"}, "value": {"30"}})

	rec := f.do(f.handlers.UpdateSSE, http.MethodPost, "/api/update", url.Values{
		"upd_name":   {"Maria"},
		"upd_age":    {"30"},
		"upd_active": {"false"},
	})

	// The repainted grid carries the fresh value.
	body := rec.Body.String()
	assert.Contains(t, body, `id="results"`)
	assert.Contains(t, body, `value="30"`)
}
