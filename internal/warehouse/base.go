package warehouse

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jmoiron/sqlx"
)

// baseAdapter provides common sqlx-backed functionality for adapters.
// Embed it in concrete adapter implementations to get standard Close, Exec,
// Query and metadata implementations.
type baseAdapter struct {
	db     *sqlx.DB
	cfg    Config
	logger *slog.Logger
}

// Close closes the warehouse connection.
func (b *baseAdapter) Close() error {
	if b.db != nil {
		b.logger.Debug("closing warehouse connection")
		return b.db.Close()
	}
	return nil
}

// Exec executes a parameterized statement that doesn't return rows.
func (b *baseAdapter) Exec(ctx context.Context, sqlStr string, args ...any) error {
	if b.db == nil {
		return fmt.Errorf("warehouse connection not established")
	}
	if _, err := b.db.ExecContext(ctx, sqlStr, args...); err != nil {
		return fmt.Errorf("failed to execute statement: %w", err)
	}
	return nil
}

// Query executes a parameterized statement that returns rows.
func (b *baseAdapter) Query(ctx context.Context, sqlStr string, args ...any) (*Rows, error) {
	if b.db == nil {
		return nil, fmt.Errorf("warehouse connection not established")
	}
	//nolint:rowserrcheck // rows.Err() must be checked by caller after iteration completes
	rows, err := b.db.QueryxContext(ctx, sqlStr, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to execute query: %w", err)
	}
	return &Rows{Rows: rows}, nil
}

// tableColumns is the shared information_schema.columns lookup. The two
// placeholders are supplied by the concrete adapter so the query matches
// its bind style.
func (b *baseAdapter) tableColumns(ctx context.Context, table, defaultSchema, ph1, ph2 string) ([]Column, error) {
	if b.db == nil {
		return nil, fmt.Errorf("warehouse connection not established")
	}

	schema, tableName := ParseQualifiedName(table, defaultSchema)

	//nolint:gosec // ph1/ph2 are dialect placeholders, not user input
	query := fmt.Sprintf(`
		SELECT
			column_name,
			data_type,
			is_nullable,
			ordinal_position
		FROM information_schema.columns
		WHERE table_schema = %s AND table_name = %s
		ORDER BY ordinal_position
	`, ph1, ph2)

	rows, err := b.db.QueryContext(ctx, query, schema, tableName)
	if err != nil {
		return nil, fmt.Errorf("failed to query column metadata: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var columns []Column
	for rows.Next() {
		var col Column
		var nullable string
		if err := rows.Scan(&col.Name, &col.Type, &nullable, &col.Position); err != nil {
			return nil, fmt.Errorf("failed to scan column metadata: %w", err)
		}
		col.Nullable = nullable == "YES"
		columns = append(columns, col)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating column metadata: %w", err)
	}

	if len(columns) == 0 {
		return nil, fmt.Errorf("table %s not found", table)
	}

	return columns, nil
}

// isConnected reports whether the connection is established.
func (b *baseAdapter) isConnected() bool {
	return b.db != nil
}
