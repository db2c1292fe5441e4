package warehouse

import (
	"context"
	"fmt"
	"log/slog"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMockAdapter(t *testing.T) (*baseAdapter, sqlmock.Sqlmock) {
	t.Helper()

	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = mockDB.Close() })

	b := &baseAdapter{
		db:     sqlx.NewDb(mockDB, "sqlmock"),
		logger: slog.New(slog.DiscardHandler),
	}
	return b, mock
}

func TestBaseQuery_BindsArguments(t *testing.T) {
	b, mock := newMockAdapter(t)
	ctx := context.Background()

	mock.ExpectQuery(`SELECT \* FROM people WHERE LOWER\(CAST\(name AS VARCHAR\)\) LIKE \$1`).
		WithArgs("%jo%").
		WillReturnRows(sqlmock.NewRows([]string{"id", "name"}).AddRow(int64(1), "Johnny"))

	rows, err := b.Query(ctx, "SELECT * FROM people WHERE LOWER(CAST(name AS VARCHAR)) LIKE $1", "%jo%")
	require.NoError(t, err)
	defer func() { _ = rows.Close() }()

	require.True(t, rows.Next())
	row := map[string]any{}
	require.NoError(t, rows.MapScan(row))
	assert.Equal(t, "Johnny", row["name"])

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestBaseExec_BindsArguments(t *testing.T) {
	b, mock := newMockAdapter(t)
	ctx := context.Background()

	mock.ExpectExec(`UPDATE people SET name = \$1 WHERE id = \$2`).
		WithArgs("Marie", int64(2)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := b.Exec(ctx, "UPDATE people SET name = $1 WHERE id = $2", "Marie", int64(2))
	require.NoError(t, err)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestBaseExec_WrapsError(t *testing.T) {
	b, mock := newMockAdapter(t)

	mock.ExpectExec(`DELETE FROM people`).
		WillReturnError(fmt.Errorf("permission denied"))

	err := b.Exec(context.Background(), "DELETE FROM people")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to execute statement")
	assert.Contains(t, err.Error(), "permission denied")
}

func TestTableColumns_SchemaLookup(t *testing.T) {
	b, mock := newMockAdapter(t)

	mock.ExpectQuery(`FROM information_schema\.columns`).
		WithArgs("public", "people").
		WillReturnRows(sqlmock.NewRows([]string{"column_name", "data_type", "is_nullable", "ordinal_position"}).
			AddRow("id", "bigint", "NO", 1).
			AddRow("name", "character varying", "YES", 2))

	cols, err := b.tableColumns(context.Background(), "people", "public", "$1", "$2")
	require.NoError(t, err)

	require.Len(t, cols, 2)
	assert.Equal(t, "id", cols[0].Name)
	assert.False(t, cols[0].Nullable)
	assert.Equal(t, "name", cols[1].Name)
	assert.True(t, cols[1].Nullable)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTableColumns_QualifiedNameOverridesDefaultSchema(t *testing.T) {
	b, mock := newMockAdapter(t)

	mock.ExpectQuery(`FROM information_schema\.columns`).
		WithArgs("analytics", "events").
		WillReturnRows(sqlmock.NewRows([]string{"column_name", "data_type", "is_nullable", "ordinal_position"}).
			AddRow("id", "bigint", "NO", 1))

	_, err := b.tableColumns(context.Background(), "analytics.events", "public", "$1", "$2")
	require.NoError(t, err)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTableColumns_EmptyResultIsNotFound(t *testing.T) {
	b, mock := newMockAdapter(t)

	mock.ExpectQuery(`FROM information_schema\.columns`).
		WithArgs("public", "missing").
		WillReturnRows(sqlmock.NewRows([]string{"column_name", "data_type", "is_nullable", "ordinal_position"}))

	_, err := b.tableColumns(context.Background(), "missing", "public", "$1", "$2")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not found")
}

func TestBase_NotConnected(t *testing.T) {
	b := &baseAdapter{logger: slog.New(slog.DiscardHandler)}
	ctx := context.Background()

	err := b.Exec(ctx, "SELECT 1")
	assert.Error(t, err)

	_, err = b.Query(ctx, "SELECT 1")
	assert.Error(t, err)

	_, err = b.tableColumns(ctx, "t", "public", "$1", "$2")
	assert.Error(t, err)

	assert.NoError(t, b.Close())
}
