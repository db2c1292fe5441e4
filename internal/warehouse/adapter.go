// Package warehouse provides database adapter interfaces and implementations
// for the analytical table Rowbench fronts.
//
// This package contains the contract that all warehouse adapters must
// implement. Concrete adapters (DuckDB, Postgres) register themselves with
// the registry in their init() functions.
package warehouse

import (
	"context"

	"github.com/jmoiron/sqlx"
)

// Config holds the configuration for connecting to a warehouse.
type Config struct {
	// Type specifies the warehouse type (e.g., "duckdb", "postgres")
	Type string `koanf:"type"`

	// Path is the file path for file-based warehouses (DuckDB).
	// Use ":memory:" for an in-memory database.
	Path string `koanf:"path"`

	// Host is the hostname for network-based warehouses
	Host string `koanf:"host"`

	// Port is the port number for network-based warehouses
	Port int `koanf:"port"`

	// Database is the database name
	Database string `koanf:"database"`

	// Username for authentication
	Username string `koanf:"username"`

	// Password for authentication
	Password string `koanf:"password"`

	// Schema is the schema holding the table
	Schema string `koanf:"schema"`

	// Options contains additional driver-specific options
	Options map[string]string `koanf:"options"`
}

// Column represents a column in a warehouse table.
type Column struct {
	// Name is the column name
	Name string

	// Type is the declared data type as reported by the driver
	Type string

	// Nullable indicates whether the column allows NULL values
	Nullable bool

	// Position is the ordinal position of the column in the table
	Position int
}

// Rows wraps sqlx.Rows to provide a consistent interface across adapters.
// The sqlx embedding gives callers MapScan, scanning a result row straight
// into a map[string]any keyed by column name.
type Rows struct {
	*sqlx.Rows
}

// Adapter defines the interface that all warehouse adapters must implement.
// All user-supplied values travel through args as bound parameters; adapters
// never interpolate them into SQL text.
type Adapter interface {
	// Connect establishes a connection to the warehouse using the provided config.
	Connect(ctx context.Context, cfg Config) error

	// Close closes the warehouse connection and releases resources.
	Close() error

	// Exec executes a parameterized statement that doesn't return rows
	// (INSERT, UPDATE).
	Exec(ctx context.Context, sql string, args ...any) error

	// Query executes a parameterized statement that returns rows.
	Query(ctx context.Context, sql string, args ...any) (*Rows, error)

	// TableColumns retrieves column metadata for a table, ordered by
	// ordinal position. The table reference may be schema-qualified
	// ("schema.table").
	TableColumns(ctx context.Context, table string) ([]Column, error)

	// Placeholder returns the bind placeholder for the n-th parameter
	// (1-based): "?" for DuckDB, "$n" for Postgres.
	Placeholder(n int) string

	// DialectName returns the SQL dialect name for this adapter.
	DialectName() string
}

// ParseQualifiedName splits a table reference into schema and name, using
// defaultSchema when the reference is unqualified.
func ParseQualifiedName(table, defaultSchema string) (schema, name string) {
	for i := 0; i < len(table); i++ {
		if table[i] == '.' {
			return table[:i], table[i+1:]
		}
	}
	return defaultSchema, table
}
