package warehouse

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jmoiron/sqlx"
	_ "github.com/marcboeker/go-duckdb" // duckdb driver
)

func init() {
	Register("duckdb", func(logger *slog.Logger) Adapter { return NewDuckDB(logger) })
}

// DuckDB implements the Adapter interface for DuckDB.
type DuckDB struct {
	baseAdapter
}

// NewDuckDB creates a new DuckDB adapter instance.
// If logger is nil, a discard logger is used.
func NewDuckDB(logger *slog.Logger) *DuckDB {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &DuckDB{baseAdapter: baseAdapter{logger: logger}}
}

// Connect establishes a connection to DuckDB.
// Use ":memory:" as the path for an in-memory database.
func (a *DuckDB) Connect(ctx context.Context, cfg Config) error {
	path := cfg.Path
	if path == "" {
		path = ":memory:"
	}

	a.logger.Debug("connecting to duckdb", slog.String("path", path))

	db, err := sqlx.Open("duckdb", path)
	if err != nil {
		return fmt.Errorf("failed to open duckdb connection: %w", err)
	}

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return fmt.Errorf("failed to ping duckdb: %w", err)
	}

	a.db = db
	a.cfg = cfg
	return nil
}

// TableColumns retrieves column metadata for a table.
func (a *DuckDB) TableColumns(ctx context.Context, table string) ([]Column, error) {
	schema := a.cfg.Schema
	if schema == "" {
		schema = "main"
	}
	return a.tableColumns(ctx, table, schema, "?", "?")
}

// Placeholder returns the DuckDB bind placeholder.
func (a *DuckDB) Placeholder(_ int) string {
	return "?"
}

// DialectName returns the SQL dialect name for this adapter.
func (a *DuckDB) DialectName() string {
	return "duckdb"
}

var _ Adapter = (*DuckDB)(nil)
