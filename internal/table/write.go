package table

import (
	"context"
	"fmt"
	"strings"
)

// Insert allocates the next surrogate key, coerces each display-column value
// to its declared type, and appends a single row. The returned id is the one
// stored. The record never carries the id itself; fabricated entries for it
// are ignored.
func (s *Service) Insert(ctx context.Context, record map[string]string) (int64, error) {
	schema, err := s.Schema(ctx)
	if err != nil {
		return 0, err
	}
	a, err := s.EnsureConnected(ctx)
	if err != nil {
		return 0, err
	}

	id, err := s.NextID(ctx)
	if err != nil {
		return 0, err
	}

	cols := []string{s.cfg.IDColumn}
	args := []any{id}
	for _, col := range schema {
		if col.Name == s.cfg.IDColumn {
			continue
		}
		raw, ok := record[col.Name]
		if !ok {
			continue
		}
		cols = append(cols, col.Name)
		args = append(args, Coerce(raw, col.Type))
	}

	placeholders := make([]string, len(cols))
	for i := range cols {
		placeholders[i] = a.Placeholder(i + 1)
	}

	query := fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)",
		s.tableRef(), strings.Join(cols, ", "), strings.Join(placeholders, ", "))

	if err := a.Exec(ctx, query, args...); err != nil {
		return 0, &WriteError{Op: "insert", Err: err}
	}

	s.logger.Info("row inserted", "id", id)
	return id, nil
}

// Update rewrites one row identified by its surrogate key. Each raw value is
// coerced to the column's declared type; the id column never appears in the
// SET clause. There is no affected-row check, so updating a row that was
// deleted concurrently is a silent no-op.
func (s *Service) Update(ctx context.Context, id int64, record map[string]string) error {
	schema, err := s.Schema(ctx)
	if err != nil {
		return err
	}
	a, err := s.EnsureConnected(ctx)
	if err != nil {
		return err
	}

	if _, ok := columnType(schema, s.cfg.IDColumn); !ok {
		return &WriteError{Op: "update",
			Err: fmt.Errorf("unique id column %q not found in table schema", s.cfg.IDColumn)}
	}

	var (
		sets []string
		args []any
	)
	for _, col := range schema {
		if col.Name == s.cfg.IDColumn {
			continue
		}
		raw, ok := record[col.Name]
		if !ok {
			continue
		}
		sets = append(sets, fmt.Sprintf("%s = %s", col.Name, a.Placeholder(len(args)+1)))
		args = append(args, Coerce(raw, col.Type))
	}

	if len(sets) == 0 {
		return &WriteError{Op: "update", Err: fmt.Errorf("no columns to update")}
	}

	query := fmt.Sprintf("UPDATE %s SET %s WHERE %s = %s",
		s.tableRef(), strings.Join(sets, ", "), s.cfg.IDColumn, a.Placeholder(len(args)+1))
	args = append(args, id)

	if err := a.Exec(ctx, query, args...); err != nil {
		return &WriteError{Op: "update", Err: err}
	}

	s.logger.Info("row updated", "id", id)
	return nil
}
