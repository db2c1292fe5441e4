package table

import (
	"context"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/rowbench/rowbench/internal/warehouse"
)

// schemaTTL is the freshness window for the cached column metadata.
const schemaTTL = time.Hour

// Config identifies the one table a Service operates on.
type Config struct {
	// Target is the warehouse connection configuration.
	Target warehouse.Config

	// Table is the table name, optionally schema-qualified.
	Table string

	// IDColumn is the surrogate key column. System-generated, never
	// user-edited, hidden from every input surface.
	IDColumn string
}

// Service owns the memoized warehouse handle, the schema cache, and the
// query/write operations for the fronted table. One Service per process;
// all session handlers share it.
type Service struct {
	cfg    Config
	logger *slog.Logger

	mu       sync.Mutex
	adapter  warehouse.Adapter
	connErr  error
	schema   []ColumnSchema
	schemaAt time.Time
}

// New creates a Service for the configured table.
// If logger is nil, a discard logger is used.
func New(cfg Config, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Service{cfg: cfg, logger: logger}
}

// EnsureConnected returns the warehouse handle, connecting on first use.
// Both outcomes are memoized for the process lifetime: a failed connect
// leaves the Service permanently unavailable and every caller short-circuits
// with the same ConnectionError.
func (s *Service) EnsureConnected(ctx context.Context) (warehouse.Adapter, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ensureConnectedLocked(ctx)
}

func (s *Service) ensureConnectedLocked(ctx context.Context) (warehouse.Adapter, error) {
	if s.connErr != nil {
		return nil, s.connErr
	}
	if s.adapter != nil {
		return s.adapter, nil
	}

	a, err := warehouse.New(s.cfg.Target, s.logger)
	if err != nil {
		s.connErr = &ConnectionError{Err: err}
		return nil, s.connErr
	}
	if err := a.Connect(ctx, s.cfg.Target); err != nil {
		s.logger.Error("warehouse connect failed", "error", err)
		s.connErr = &ConnectionError{Err: err}
		return nil, s.connErr
	}

	s.adapter = a
	return a, nil
}

// Schema returns the column metadata for the table, cached for up to an
// hour. A failed fetch is a SchemaError: without the schema neither the id
// column nor the display columns can be derived, so callers must stop.
func (s *Service) Schema(ctx context.Context) ([]ColumnSchema, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.schema != nil && time.Since(s.schemaAt) < schemaTTL {
		return s.schema, nil
	}

	a, err := s.ensureConnectedLocked(ctx)
	if err != nil {
		return nil, err
	}

	cols, err := a.TableColumns(ctx, s.cfg.Table)
	if err != nil {
		return nil, &SchemaError{Table: s.cfg.Table, Err: err}
	}

	schema := make([]ColumnSchema, len(cols))
	for i, c := range cols {
		schema[i] = ColumnSchema{
			Name:         c.Name,
			Type:         NormalizeType(c.Type),
			DeclaredType: c.Type,
		}
	}

	s.schema = schema
	s.schemaAt = time.Now()
	return schema, nil
}

// DisplayColumns returns the schema minus the id column. These are the only
// columns offered for filtering, adding, and editing.
func (s *Service) DisplayColumns(ctx context.Context) ([]ColumnSchema, error) {
	schema, err := s.Schema(ctx)
	if err != nil {
		return nil, err
	}

	display := make([]ColumnSchema, 0, len(schema))
	for _, c := range schema {
		if c.Name == s.cfg.IDColumn {
			continue
		}
		display = append(display, c)
	}
	return display, nil
}

// InvalidateSchema drops the cached column metadata so the next access
// refetches it.
func (s *Service) InvalidateSchema() {
	s.mu.Lock()
	s.schema = nil
	s.mu.Unlock()
}

// IDColumn returns the surrogate key column name.
func (s *Service) IDColumn() string { return s.cfg.IDColumn }

// Table returns the configured table name.
func (s *Service) Table() string { return s.cfg.Table }

// tableRef returns the reference used in SQL: schema-qualified when the
// target declares a schema and the table name isn't already qualified.
func (s *Service) tableRef() string {
	if strings.Contains(s.cfg.Table, ".") || s.cfg.Target.Schema == "" {
		return s.cfg.Table
	}
	return s.cfg.Target.Schema + "." + s.cfg.Table
}

// Close releases the warehouse handle.
func (s *Service) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.adapter != nil {
		return s.adapter.Close()
	}
	return nil
}

// columnType looks up the normalized type for a column name.
func columnType(schema []ColumnSchema, name string) (FieldType, bool) {
	for _, c := range schema {
		if c.Name == name {
			return c.Type, true
		}
	}
	return "", false
}
