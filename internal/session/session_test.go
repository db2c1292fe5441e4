package session

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rowbench/rowbench/internal/table"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestContext_ResultsCacheKeyedOnFilters(t *testing.T) {
	ctx := newContext()
	filters := map[string]string{"name": "jo"}
	rows := []table.Row{{"id": int64(1), "name": "John"}}

	ctx.SetResults(filters, rows)

	got, ok := ctx.Results(map[string]string{"name": "jo"})
	require.True(t, ok)
	assert.Equal(t, rows, got)

	// Different filters miss: the stale set must not be reused.
	_, ok = ctx.Results(map[string]string{"name": "am"})
	assert.False(t, ok)

	ctx.InvalidateResults()
	_, ok = ctx.Results(filters)
	assert.False(t, ok)
}

func TestContext_CachedRow(t *testing.T) {
	ctx := newContext()
	ctx.SetResults(map[string]string{"name": "a"}, []table.Row{
		{"id": int64(2)},
		{"id": int64(1)},
	})

	row, ok := ctx.CachedRow(1)
	require.True(t, ok)
	assert.Equal(t, int64(1), row["id"])

	_, ok = ctx.CachedRow(5)
	assert.False(t, ok)
	_, ok = ctx.CachedRow(-1)
	assert.False(t, ok)
}

func TestContext_FlashIsOneShot(t *testing.T) {
	ctx := newContext()
	ctx.SetFlash(true, "Row inserted successfully!")

	f := ctx.TakeFlash()
	require.NotNil(t, f)
	assert.True(t, f.Success)
	assert.Equal(t, "Row inserted successfully!", f.Text)

	// Consumed: the second render sees nothing.
	assert.Nil(t, ctx.TakeFlash())
}

func TestContext_PendingEditOverwritten(t *testing.T) {
	ctx := newContext()

	first := &PendingEdit{RowIndex: 0, IDValue: 1}
	second := &PendingEdit{RowIndex: 2, IDValue: 3}

	ctx.SetPendingEdit(first)
	ctx.SetPendingEdit(second)
	assert.Equal(t, second, ctx.PendingEdit())

	ctx.ClearPendingEdit()
	assert.Nil(t, ctx.PendingEdit())
}

func TestContext_Reset(t *testing.T) {
	ctx := newContext()
	ctx.SetResults(map[string]string{"name": "a"}, []table.Row{{"id": int64(1)}})
	ctx.SetPendingEdit(&PendingEdit{IDValue: 1})
	ctx.SetFlash(false, "boom")

	ctx.Reset()

	_, ok := ctx.Results(map[string]string{"name": "a"})
	assert.False(t, ok)
	assert.Nil(t, ctx.PendingEdit())
	assert.Nil(t, ctx.TakeFlash())
}

func TestPendingEdit_FormValuesMergesDeltas(t *testing.T) {
	columns := []table.ColumnSchema{
		{Name: "name", Type: table.TypeString},
		{Name: "age", Type: table.TypeInt64},
		{Name: "score", Type: table.TypeFloat64},
	}
	edit := &PendingEdit{
		Original: table.Row{"name": "Dana", "age": int64(33), "score": nil},
		Deltas:   map[string]string{"age": "34"},
	}

	values := edit.FormValues(columns)
	assert.Equal(t, "Dana", values["name"])
	assert.Equal(t, "34", values["age"])
	assert.Equal(t, "", values["score"], "NULL prefills as empty")
}

func TestManager_AttachReusesContextAcrossRequests(t *testing.T) {
	m := NewManager("test-secret")

	req1 := httptest.NewRequest(http.MethodGet, "/", nil)
	rec1 := httptest.NewRecorder()
	ctx1 := m.Attach(rec1, req1)
	require.NotNil(t, ctx1)
	assert.Equal(t, 1, m.Len())

	// Replay the issued cookie; the same context must come back.
	req2 := httptest.NewRequest(http.MethodGet, "/", nil)
	for _, c := range rec1.Result().Cookies() {
		req2.AddCookie(c)
	}
	ctx2 := m.Attach(httptest.NewRecorder(), req2)
	assert.Same(t, ctx1, ctx2)
	assert.Equal(t, 1, m.Len())

	// No cookie means a fresh context.
	req3 := httptest.NewRequest(http.MethodGet, "/", nil)
	ctx3 := m.Attach(httptest.NewRecorder(), req3)
	assert.NotSame(t, ctx1, ctx3)
	assert.Equal(t, 2, m.Len())
}
